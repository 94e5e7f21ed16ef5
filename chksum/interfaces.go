package chksum

import (
	"context"
)

//go:generate counterfeiter . Hash

// Hash is an incremental hash state. Update never fails and Reset returns
// the state to what it was at construction.
type Hash interface {
	Update(data []byte)
	Reset()
}

// Digester is a Hash that can report the digest of every byte passed to
// Update since construction or the last Reset, without changing its state.
type Digester[D any] interface {
	Hash
	Digest() D
}

// Hashable is in-memory data that is fed into a Hash without failing.
type Hashable interface {
	HashWith(h Hash)
}

// Chksumable is data whose bytes may have to be read from an I/O source.
type Chksumable interface {
	ChksumWith(h Hash) error
}

// AsyncChksumable is a Chksumable that gives up at the next I/O boundary
// once ctx is done.
type AsyncChksumable interface {
	ChksumWithContext(ctx context.Context, h Hash) error
}
