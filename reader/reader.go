// Package reader decorates an io.Reader so every byte it returns is also
// fed into a hash. The bytes and errors a caller sees are exactly those of
// the wrapped reader.
package reader

import (
	"io"

	"github.com/cloudfoundry/bosh-chksum/chksum"
)

type Reader[D any] struct {
	inner io.Reader
	hash  chksum.Digester[D]
}

func New[D any](inner io.Reader, hash chksum.Digester[D]) *Reader[D] {
	return &Reader[D]{inner: inner, hash: hash}
}

// Read hashes p[:n] before returning, including when err is non-nil.
func (r *Reader[D]) Read(p []byte) (int, error) {
	n, err := r.inner.Read(p)
	if n > 0 {
		r.hash.Update(p[:n])
	}
	return n, err
}

// Digest covers every byte returned by Read so far.
func (r *Reader[D]) Digest() D {
	return r.hash.Digest()
}

func (r *Reader[D]) Hash() chksum.Digester[D] {
	return r.hash
}

func (r *Reader[D]) Unwrap() io.Reader {
	return r.inner
}

// Close closes the wrapped reader when it is an io.Closer.
func (r *Reader[D]) Close() error {
	if closer, ok := r.inner.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
