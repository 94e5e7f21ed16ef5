package sha2256

import (
	"context"
	"io"

	"github.com/cloudfoundry/bosh-chksum/writer"
)

type Writer = writer.Writer[Digest]

type AsyncWriter = writer.AsyncWriter[Digest]

func NewWriter(inner io.Writer) *Writer {
	return NewWriterWithHash(inner, Default())
}

// NewWriterWithHash continues from the bytes hash has already seen.
func NewWriterWithHash(inner io.Writer, hash *SHA256) *Writer {
	return writer.New[Digest](inner, hash)
}

func NewAsyncWriter(ctx context.Context, inner io.Writer) *AsyncWriter {
	return NewAsyncWriterWithHash(ctx, inner, Default())
}

func NewAsyncWriterWithHash(ctx context.Context, inner io.Writer, hash *SHA256) *AsyncWriter {
	return writer.NewAsync[Digest](ctx, inner, hash)
}
