package http

import (
	"io"
	"strings"
)

// NewStringReadCloser returns a response body that serves s.
func NewStringReadCloser(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}
