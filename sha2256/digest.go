package sha2256

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	godigest "github.com/opencontainers/go-digest"

	bosherr "github.com/cloudfoundry/bosh-chksum/errors"
)

// Digest is a SHA-2 256 digest. Equality and ordering are byte-wise.
type Digest [DigestLength]byte

func NewDigest(digest [DigestLength]byte) Digest {
	return Digest(digest)
}

// ParseDigest decodes 64 hex characters in either case.
func ParseDigest(encoded string) (Digest, error) {
	var digest Digest

	if len(encoded) != hex.EncodedLen(DigestLength) {
		return digest, bosherr.Errorf("Expected %d hex characters for %s digest but received %d", hex.EncodedLen(DigestLength), AlgorithmName, len(encoded))
	}

	_, err := hex.Decode(digest[:], []byte(encoded))
	if err != nil {
		return Digest{}, bosherr.WrapErrorf(err, "Decoding %s digest '%s'", AlgorithmName, encoded)
	}

	return digest, nil
}

func FromOCI(digest godigest.Digest) (Digest, error) {
	err := digest.Validate()
	if err != nil {
		return Digest{}, bosherr.WrapErrorf(err, "Validating digest '%s'", digest)
	}

	if digest.Algorithm() != godigest.SHA256 {
		return Digest{}, bosherr.Errorf("Expected %s algorithm but received %s", AlgorithmName, digest.Algorithm())
	}

	return ParseDigest(digest.Encoded())
}

func (d Digest) Bytes() []byte {
	return d[:]
}

func (d Digest) Array() [DigestLength]byte {
	return d
}

func (d Digest) HexLower() string {
	return hex.EncodeToString(d[:])
}

func (d Digest) HexUpper() string {
	return strings.ToUpper(d.HexLower())
}

func (d Digest) String() string {
	return d.HexLower()
}

// Format supports %x and %X; every other verb prints lowercase hex.
func (d Digest) Format(f fmt.State, verb rune) {
	switch verb {
	case 'X':
		fmt.Fprint(f, d.HexUpper())
	default:
		fmt.Fprint(f, d.HexLower())
	}
}

func (d Digest) Compare(other Digest) int {
	return bytes.Compare(d[:], other[:])
}

func (d Digest) Equal(other Digest) bool {
	return d == other
}

// Verify compares d, the expected digest, against actual.
func (d Digest) Verify(actual Digest) error {
	if d != actual {
		return bosherr.Errorf(`Expected %s digest "%s" but received "%s"`, AlgorithmName, d, actual)
	}

	return nil
}

func (d Digest) OCI() godigest.Digest {
	return godigest.NewDigestFromEncoded(godigest.SHA256, d.HexLower())
}

func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.HexLower()), nil
}

func (d *Digest) UnmarshalText(text []byte) error {
	digest, err := ParseDigest(string(text))
	if err != nil {
		return err
	}

	*d = digest
	return nil
}
