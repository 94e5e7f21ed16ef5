package sha2256

import (
	"context"
	"io"

	"github.com/cloudfoundry/bosh-chksum/reader"
)

type Reader = reader.Reader[Digest]

type AsyncReader = reader.AsyncReader[Digest]

func NewReader(inner io.Reader) *Reader {
	return NewReaderWithHash(inner, Default())
}

// NewReaderWithHash continues from the bytes hash has already seen.
func NewReaderWithHash(inner io.Reader, hash *SHA256) *Reader {
	return reader.New[Digest](inner, hash)
}

func NewAsyncReader(ctx context.Context, inner io.Reader) *AsyncReader {
	return NewAsyncReaderWithHash(ctx, inner, Default())
}

func NewAsyncReaderWithHash(ctx context.Context, inner io.Reader, hash *SHA256) *AsyncReader {
	return reader.NewAsync[Digest](ctx, inner, hash)
}
