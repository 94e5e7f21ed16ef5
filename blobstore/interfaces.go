package blobstore

import (
	"github.com/cloudfoundry/bosh-chksum/checksum"
)

// Blobstore stores files under the sha256 digest of their content. The
// blob ID of a stored file is its lowercase hex digest.
type Blobstore interface {
	// Get returns the path of a private copy of the blob, verified
	// against fingerprint. A nil fingerprint verifies against the blob ID.
	Get(blobID string, fingerprint checksum.Checksum) (fileName string, err error)

	CleanUp(fileName string) (err error)

	Create(fileName string) (blobID string, fingerprint checksum.Checksum, err error)

	Delete(blobID string) (err error)

	Validate() (err error)
}
