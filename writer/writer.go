// Package writer decorates an io.Writer so every byte it accepts is also
// fed into a hash.
package writer

import (
	"io"

	"github.com/cloudfoundry/bosh-chksum/chksum"
)

type Writer[D any] struct {
	inner io.Writer
	hash  chksum.Digester[D]
}

func New[D any](inner io.Writer, hash chksum.Digester[D]) *Writer[D] {
	return &Writer[D]{inner: inner, hash: hash}
}

// Write hashes only the n bytes the wrapped writer accepted.
func (w *Writer[D]) Write(p []byte) (int, error) {
	n, err := w.inner.Write(p)
	if n > 0 {
		w.hash.Update(p[:n])
	}
	return n, err
}

// Digest covers every byte the wrapped writer has accepted so far.
func (w *Writer[D]) Digest() D {
	return w.hash.Digest()
}

func (w *Writer[D]) Hash() chksum.Digester[D] {
	return w.hash
}

func (w *Writer[D]) Unwrap() io.Writer {
	return w.inner
}

// Flush forwards to the wrapped writer when it buffers.
func (w *Writer[D]) Flush() error {
	if flusher, ok := w.inner.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

func (w *Writer[D]) Close() error {
	if closer, ok := w.inner.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
