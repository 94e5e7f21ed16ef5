package blobstore

import (
	"context"
	"os"

	"github.com/cloudfoundry/bosh-chksum/checksum"
	bosherr "github.com/cloudfoundry/bosh-chksum/errors"
	boshsys "github.com/cloudfoundry/bosh-chksum/system"
)

type localBlobstore struct {
	fs      boshsys.FileSystem
	manager BlobManager
}

func NewLocalBlobstore(fs boshsys.FileSystem, manager BlobManager) Blobstore {
	return localBlobstore{fs: fs, manager: manager}
}

func (b localBlobstore) Get(blobID string, fingerprint checksum.Checksum) (string, error) {
	if fingerprint == nil {
		var err error
		fingerprint, err = checksum.ParseString(blobID)
		if err != nil {
			return "", bosherr.Errorf("Invalid blob id '%s'", blobID)
		}
	}

	return b.manager.GetPath(blobID, fingerprint)
}

func (b localBlobstore) CleanUp(fileName string) error {
	return b.fs.RemoveAll(fileName)
}

func (b localBlobstore) Create(fileName string) (string, checksum.Checksum, error) {
	file, err := b.fs.OpenFile(fileName, os.O_RDONLY, 0)
	if err != nil {
		return "", nil, bosherr.WrapErrorf(err, "Opening file '%s' for blob creation", fileName)
	}
	defer file.Close() //nolint:errcheck

	fingerprint, err := b.manager.Write(context.Background(), file)
	if err != nil {
		return "", nil, bosherr.WrapErrorf(err, "Creating blob from '%s'", fileName)
	}

	return fingerprint.Checksum(), fingerprint, nil
}

func (b localBlobstore) Delete(blobID string) error {
	return b.manager.Delete(blobID)
}

func (b localBlobstore) Validate() error {
	if err := b.manager.createDirStructure(); err != nil {
		return bosherr.WrapError(err, "Preparing blob store directories")
	}

	return nil
}
