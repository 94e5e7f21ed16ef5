package writer

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/cloudfoundry/bosh-chksum/chksum"
)

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// AsyncWriter is a Writer bound to a context. Once the context is done
// Write returns the context's error and nothing more is hashed.
type AsyncWriter[D any] struct {
	*Writer[D]

	ctx  context.Context
	stop func() bool
}

func NewAsync[D any](ctx context.Context, inner io.Writer, hash chksum.Digester[D]) *AsyncWriter[D] {
	w := &AsyncWriter[D]{
		Writer: New(inner, hash),
		ctx:    ctx,
		stop:   func() bool { return false },
	}

	if deadliner, ok := inner.(writeDeadliner); ok {
		w.stop = context.AfterFunc(ctx, func() {
			deadliner.SetWriteDeadline(time.Unix(1, 0)) //nolint:errcheck
		})
	}

	return w
}

func (w *AsyncWriter[D]) Write(p []byte) (int, error) {
	if err := w.ctx.Err(); err != nil {
		return 0, err
	}

	n, err := w.Writer.Write(p)
	if err != nil && errors.Is(err, os.ErrDeadlineExceeded) {
		if ctxErr := w.ctx.Err(); ctxErr != nil {
			return n, ctxErr
		}
	}

	return n, err
}

func (w *AsyncWriter[D]) Context() context.Context {
	return w.ctx
}

func (w *AsyncWriter[D]) Close() error {
	w.stop()
	return w.Writer.Close()
}
