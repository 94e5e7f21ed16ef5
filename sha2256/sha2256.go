// Package sha2256 computes SHA-2 256 digests of bytes, strings, streams,
// files and directory trees, and wraps readers and writers so the digest
// of the bytes passing through them is available at any time.
package sha2256

import (
	"context"
	"crypto/sha256"
	"encoding"
	"hash"

	"github.com/cloudfoundry/bosh-chksum/chksum"
	bosherr "github.com/cloudfoundry/bosh-chksum/errors"
)

const (
	AlgorithmName = "sha256"
	DigestLength  = sha256.Size
	BlockLength   = sha256.BlockSize
)

// SHA256 is an incremental SHA-2 256 state. It is not safe for concurrent
// use.
type SHA256 struct {
	inner hash.Hash
}

var _ chksum.Digester[Digest] = &SHA256{}

func New() *SHA256 {
	return &SHA256{inner: sha256.New()}
}

// Default is the factory used by the package level helpers. It returns a
// fresh state on every call.
func Default() *SHA256 {
	return New()
}

func (s *SHA256) Update(data []byte) {
	s.inner.Write(data) //nolint:errcheck
}

func (s *SHA256) Reset() {
	s.inner.Reset()
}

// Digest finalizes a copy of the state; further Updates continue from
// where they left off.
func (s *SHA256) Digest() Digest {
	var digest Digest
	s.inner.Sum(digest[:0])
	return digest
}

func (s *SHA256) MarshalBinary() ([]byte, error) {
	return s.inner.(encoding.BinaryMarshaler).MarshalBinary()
}

func (s *SHA256) UnmarshalBinary(state []byte) error {
	err := s.inner.(encoding.BinaryUnmarshaler).UnmarshalBinary(state)
	if err != nil {
		return bosherr.WrapError(err, "Restoring sha256 state")
	}
	return nil
}

// Clone returns an independent state that has seen the same bytes.
func (s *SHA256) Clone() *SHA256 {
	state, err := s.MarshalBinary()
	if err != nil {
		panic("Internal inconsistency: " + err.Error())
	}

	clone := New()
	if err := clone.UnmarshalBinary(state); err != nil {
		panic("Internal inconsistency: " + err.Error())
	}

	return clone
}

// Sum returns the digest of data.
func Sum(data []byte) Digest {
	return Digest(sha256.Sum256(data))
}

func Hash(data chksum.Hashable) Digest {
	return chksum.Sum[Digest](Default(), data)
}

func Chksum(data chksum.Chksumable) (Digest, error) {
	return chksum.Chksum[Digest](Default(), data)
}

func ChksumContext(ctx context.Context, data chksum.AsyncChksumable) (Digest, error) {
	return chksum.ChksumContext[Digest](ctx, Default(), data)
}

type Result struct {
	Digest Digest
	Err    error
}

// AsyncChksum computes the digest in its own goroutine. The channel
// delivers exactly one Result and is then closed.
func AsyncChksum(ctx context.Context, data chksum.AsyncChksumable) <-chan Result {
	results := make(chan Result, 1)

	go func() {
		defer close(results)

		digest, err := ChksumContext(ctx, data)
		results <- Result{Digest: digest, Err: err}
	}()

	return results
}
