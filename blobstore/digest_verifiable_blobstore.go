package blobstore

import (
	"fmt"

	"github.com/cloudfoundry/bosh-chksum/checksum"
	bosherr "github.com/cloudfoundry/bosh-chksum/errors"
)

type digestVerifiableBlobstore struct {
	blobstore       Blobstore
	checksumFactory checksum.ChecksumFactory
}

// NewDigestVerifiableBlobstore re-digests every file that crosses the
// inner blobstore boundary and compares it with the expected checksum.
func NewDigestVerifiableBlobstore(blobstore Blobstore, checksumFactory checksum.ChecksumFactory) Blobstore {
	return digestVerifiableBlobstore{
		blobstore:       blobstore,
		checksumFactory: checksumFactory,
	}
}

func (b digestVerifiableBlobstore) Get(blobID string, fingerprint checksum.Checksum) (string, error) {
	fileName, err := b.blobstore.Get(blobID, fingerprint)
	if err != nil {
		return "", bosherr.WrapError(err, "Getting blob from inner blobstore")
	}

	if fingerprint == nil {
		return fileName, nil
	}

	actualChecksum, err := b.checksumFactory.CreateFromPath(fileName)
	if err != nil {
		return "", err
	}

	err = fingerprint.Verify(actualChecksum)
	if err != nil {
		return "", bosherr.WrapError(err, fmt.Sprintf(`Checking downloaded blob "%s"`, blobID))
	}

	return fileName, nil
}

func (b digestVerifiableBlobstore) Delete(blobID string) error {
	return b.blobstore.Delete(blobID)
}

func (b digestVerifiableBlobstore) CleanUp(fileName string) error {
	return b.blobstore.CleanUp(fileName)
}

func (b digestVerifiableBlobstore) Create(fileName string) (string, checksum.Checksum, error) {
	expectedChecksum, err := b.checksumFactory.CreateFromPath(fileName)
	if err != nil {
		return "", nil, err
	}

	blobID, fingerprint, err := b.blobstore.Create(fileName)
	if err != nil {
		return "", nil, err
	}

	err = expectedChecksum.Verify(fingerprint)
	if err != nil {
		return "", nil, bosherr.WrapError(err, fmt.Sprintf(`Checking uploaded blob "%s"`, blobID))
	}

	return blobID, fingerprint, nil
}

func (b digestVerifiableBlobstore) Validate() error {
	return b.blobstore.Validate()
}
