package chksum

import (
	"context"
	"io"
	"os"

	bosherr "github.com/cloudfoundry/bosh-chksum/errors"
)

// BufferSize is the chunk size used when streaming sources. Digests do
// not depend on it.
const BufferSize = 8 * 1024

type readFunc func(p []byte) (int, error)

// consume updates h with every chunk next returns until io.EOF. It is
// shared by the blocking and the context-aware paths, which differ only in
// the next function they pass.
func consume(h Hash, buf []byte, next readFunc) error {
	for {
		n, err := next(buf)
		if n > 0 {
			h.Update(buf[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// interruptible checks ctx before every read so a cancelled computation
// stops at the next chunk boundary.
func interruptible(ctx context.Context, next readFunc) readFunc {
	return func(p []byte) (int, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return next(p)
	}
}

func stream(ctx context.Context, h Hash, r io.Reader, name string) error {
	err := consume(h, make([]byte, BufferSize), interruptible(ctx, r.Read))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && err == ctxErr {
			return err
		}
		return IOError{Err: bosherr.WrapErrorf(err, "Reading '%s' for digest calculation", name)}
	}

	return nil
}

// ReaderSource streams an io.Reader until end of stream.
type ReaderSource struct {
	r    io.Reader
	name string
}

func Reader(r io.Reader) ReaderSource {
	return ReaderSource{r: r, name: "stream"}
}

// NamedReader is Reader with name used in error messages.
func NamedReader(r io.Reader, name string) ReaderSource {
	return ReaderSource{r: r, name: name}
}

// Stdin reads the process standard input until it is closed.
func Stdin() ReaderSource {
	return ReaderSource{r: os.Stdin, name: "stdin"}
}

func (s ReaderSource) ChksumWith(h Hash) error {
	return s.ChksumWithContext(context.Background(), h)
}

func (s ReaderSource) ChksumWithContext(ctx context.Context, h Hash) error {
	return stream(ctx, h, s.r, s.name)
}
