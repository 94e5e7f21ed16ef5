package chksum

import (
	"context"
)

// Bytes is in-memory data hashed with a single Update.
type Bytes []byte

func (b Bytes) HashWith(h Hash) {
	h.Update(b)
}

func (b Bytes) ChksumWith(h Hash) error {
	b.HashWith(h)
	return nil
}

func (b Bytes) ChksumWithContext(_ context.Context, h Hash) error {
	b.HashWith(h)
	return nil
}

// String hashes the UTF-8 bytes of a string.
type String string

func (s String) HashWith(h Hash) {
	h.Update([]byte(s))
}

func (s String) ChksumWith(h Hash) error {
	s.HashWith(h)
	return nil
}

func (s String) ChksumWithContext(_ context.Context, h Hash) error {
	s.HashWith(h)
	return nil
}
