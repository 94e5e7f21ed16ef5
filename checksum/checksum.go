package checksum

import (
	"context"
	"fmt"
	"io"
	"strings"

	godigest "github.com/opencontainers/go-digest"

	"github.com/cloudfoundry/bosh-chksum/chksum"
	bosherr "github.com/cloudfoundry/bosh-chksum/errors"
	boshlog "github.com/cloudfoundry/bosh-chksum/logger"
	"github.com/cloudfoundry/bosh-chksum/sha2256"
	boshsys "github.com/cloudfoundry/bosh-chksum/system"
)

type ChecksumFactory interface {
	CreateFromPath(path string) (Checksum, error)
	CreateFromPathContext(ctx context.Context, path string) (Checksum, error)
	CreateFromReader(reader io.Reader) (Checksum, error)
}

// Checksum is a digest together with the name of the algorithm that
// produced it, written as "sha256:<hex>".
type Checksum interface {
	Algorithm() string
	Checksum() string
	Digest() sha2256.Digest
	String() string
	Verify(Checksum) error
}

type checksumImpl struct {
	digest    sha2256.Digest
	uppercase bool
}

func (c checksumImpl) Algorithm() string {
	return sha2256.AlgorithmName
}

func (c checksumImpl) Checksum() string {
	if c.uppercase {
		return c.digest.HexUpper()
	}
	return c.digest.HexLower()
}

func (c checksumImpl) Digest() sha2256.Digest {
	return c.digest
}

func (c checksumImpl) String() string {
	return fmt.Sprintf("%s:%s", c.Algorithm(), c.Checksum())
}

func (c checksumImpl) Verify(checksum Checksum) error {
	if c.Algorithm() != checksum.Algorithm() {
		return bosherr.Errorf(`Expected %s algorithm but received %s`, c.Algorithm(), checksum.Algorithm())
	} else if c.digest != checksum.Digest() {
		return bosherr.Errorf(`Expected %s checksum "%s" but received "%s"`, c.Algorithm(), c.digest, checksum.Digest())
	}

	return nil
}

func NewChecksum(digest sha2256.Digest) Checksum {
	return checksumImpl{digest: digest}
}

// NewUppercaseChecksum renders its hex in uppercase. It verifies equal to
// the lowercase form of the same digest.
func NewUppercaseChecksum(digest sha2256.Digest) Checksum {
	return checksumImpl{digest: digest, uppercase: true}
}

type checksumFactoryImpl struct {
	walker chksum.Walker
}

func NewChecksumFactory(fs boshsys.FileSystem, logger boshlog.Logger) ChecksumFactory {
	return checksumFactoryImpl{
		walker: chksum.NewWalker(fs, logger),
	}
}

// CreateFromPath digests a file, or every regular file under a directory.
func (f checksumFactoryImpl) CreateFromPath(path string) (Checksum, error) {
	digest, err := sha2256.Chksum(f.walker.Path(path))
	if err != nil {
		return nil, bosherr.WrapErrorf(err, "Calculating checksum of '%s'", path)
	}

	return NewChecksum(digest), nil
}

func (f checksumFactoryImpl) CreateFromPathContext(ctx context.Context, path string) (Checksum, error) {
	digest, err := sha2256.ChksumContext(ctx, f.walker.Path(path))
	if err != nil {
		return nil, bosherr.WrapErrorf(err, "Calculating checksum of '%s'", path)
	}

	return NewChecksum(digest), nil
}

func (f checksumFactoryImpl) CreateFromReader(reader io.Reader) (Checksum, error) {
	digest, err := sha2256.Chksum(chksum.Reader(reader))
	if err != nil {
		return nil, bosherr.WrapError(err, "Calculating checksum of stream")
	}

	return NewChecksum(digest), nil
}

// ParseString accepts "sha256:<hex>" and bare hex. Hex may be in either
// case.
func ParseString(checksum string) (Checksum, error) {
	pieces := strings.SplitN(checksum, ":", 2)

	if len(pieces) == 1 {
		pieces = []string{sha2256.AlgorithmName, pieces[0]}
	}

	if pieces[0] != sha2256.AlgorithmName {
		return nil, bosherr.Errorf("Unrecognized checksum algorithm: %s", pieces[0])
	}

	digest, err := sha2256.ParseDigest(pieces[1])
	if err != nil {
		return nil, bosherr.WrapErrorf(err, "Parsing checksum: %s", checksum)
	}

	return NewChecksum(digest), nil
}

func FromOCI(digest godigest.Digest) (Checksum, error) {
	parsed, err := sha2256.FromOCI(digest)
	if err != nil {
		return nil, err
	}

	return NewChecksum(parsed), nil
}
