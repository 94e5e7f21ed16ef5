package reader

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/cloudfoundry/bosh-chksum/chksum"
)

type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

// AsyncReader is a Reader bound to a context. Once the context is done
// Read returns the context's error without touching the wrapped reader.
// A read already blocked on a source with read deadlines (net.Conn,
// os.File pipes) is interrupted as well.
type AsyncReader[D any] struct {
	*Reader[D]

	ctx  context.Context
	stop func() bool
}

func NewAsync[D any](ctx context.Context, inner io.Reader, hash chksum.Digester[D]) *AsyncReader[D] {
	r := &AsyncReader[D]{
		Reader: New(inner, hash),
		ctx:    ctx,
		stop:   func() bool { return false },
	}

	if deadliner, ok := inner.(readDeadliner); ok {
		r.stop = context.AfterFunc(ctx, func() {
			deadliner.SetReadDeadline(time.Unix(1, 0)) //nolint:errcheck
		})
	}

	return r
}

func (r *AsyncReader[D]) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}

	n, err := r.Reader.Read(p)
	if err != nil && errors.Is(err, os.ErrDeadlineExceeded) {
		if ctxErr := r.ctx.Err(); ctxErr != nil {
			return n, ctxErr
		}
	}

	return n, err
}

func (r *AsyncReader[D]) Context() context.Context {
	return r.ctx
}

// Close detaches from the context and closes the wrapped reader when it
// is an io.Closer.
func (r *AsyncReader[D]) Close() error {
	r.stop()
	return r.Reader.Close()
}
