package fakes

import (
	"sync"

	"github.com/cloudfoundry/bosh-chksum/checksum"
)

// FakeBlobstore records every call and answers with the configured
// results.
type FakeBlobstore struct {
	GetBlobIDs      []string
	GetFingerprints []checksum.Checksum
	GetFileName     string
	GetError        error

	CreateFileNames   []string
	CreateBlobID      string
	CreateFingerprint checksum.Checksum
	CreateErr         error

	DeleteBlobID string
	DeleteErr    error

	CleanUpFileName string
	CleanUpErr      error

	ValidateError error

	mutex sync.Mutex
}

func NewFakeBlobstore() *FakeBlobstore {
	return &FakeBlobstore{}
}

func (bs *FakeBlobstore) Get(blobID string, fingerprint checksum.Checksum) (string, error) {
	bs.mutex.Lock()
	defer bs.mutex.Unlock()

	bs.GetBlobIDs = append(bs.GetBlobIDs, blobID)
	bs.GetFingerprints = append(bs.GetFingerprints, fingerprint)

	return bs.GetFileName, bs.GetError
}

func (bs *FakeBlobstore) Create(fileName string) (string, checksum.Checksum, error) {
	bs.mutex.Lock()
	defer bs.mutex.Unlock()

	bs.CreateFileNames = append(bs.CreateFileNames, fileName)

	return bs.CreateBlobID, bs.CreateFingerprint, bs.CreateErr
}

func (bs *FakeBlobstore) Delete(blobID string) error {
	bs.DeleteBlobID = blobID
	return bs.DeleteErr
}

func (bs *FakeBlobstore) CleanUp(fileName string) error {
	bs.CleanUpFileName = fileName
	return bs.CleanUpErr
}

func (bs *FakeBlobstore) Validate() error {
	return bs.ValidateError
}
