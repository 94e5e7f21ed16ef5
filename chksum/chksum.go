// Package chksum feeds byte slices, strings, streams, files and directory
// trees into an incremental hash. Algorithm packages such as sha2256 wrap
// these functions with their own hash and digest types.
package chksum

import (
	"context"
)

func Sum[D any](h Digester[D], data Hashable) D {
	data.HashWith(h)
	return h.Digest()
}

// Chksum returns the zero digest together with any error; a partially
// updated hash is never finalized.
func Chksum[D any](h Digester[D], data Chksumable) (D, error) {
	if err := data.ChksumWith(h); err != nil {
		var zero D
		return zero, err
	}

	return h.Digest(), nil
}

func ChksumContext[D any](ctx context.Context, h Digester[D], data AsyncChksumable) (D, error) {
	if err := data.ChksumWithContext(ctx, h); err != nil {
		var zero D
		return zero, err
	}

	return h.Digest(), nil
}
