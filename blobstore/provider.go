package blobstore

import (
	"github.com/cloudfoundry/bosh-chksum/checksum"
	bosherr "github.com/cloudfoundry/bosh-chksum/errors"
	boshlog "github.com/cloudfoundry/bosh-chksum/logger"
	"github.com/cloudfoundry/bosh-chksum/system"
	boshuuid "github.com/cloudfoundry/bosh-chksum/uuid"
)

const (
	BlobstoreTypeLocal = "local"

	BlobstorePathOption = "blobstore_path"
)

type Provider struct {
	fs              system.FileSystem
	uuidGen         boshuuid.Generator
	checksumFactory checksum.ChecksumFactory
	logger          boshlog.Logger
}

func NewProvider(
	fs system.FileSystem,
	uuidGen boshuuid.Generator,
	checksumFactory checksum.ChecksumFactory,
	logger boshlog.Logger,
) Provider {
	return Provider{
		fs:              fs,
		uuidGen:         uuidGen,
		checksumFactory: checksumFactory,
		logger:          logger,
	}
}

func (p Provider) Get(storeType string, options map[string]interface{}) (blobstore Blobstore, err error) {
	switch storeType {
	case BlobstoreTypeLocal:
		workdir, ok := options[BlobstorePathOption].(string)
		if !ok || workdir == "" {
			return nil, bosherr.Errorf("Missing '%s' option for %s blobstore", BlobstorePathOption, storeType)
		}

		blobstore = NewLocalBlobstore(p.fs, NewBlobManager(p.fs, p.uuidGen, workdir, p.logger))

	default:
		return nil, bosherr.Errorf("Unknown blobstore type '%s'", storeType)
	}

	blobstore = NewDigestVerifiableBlobstore(blobstore, p.checksumFactory)

	err = blobstore.Validate()
	if err != nil {
		err = bosherr.WrapError(err, "Validating blobstore")
	}
	return
}
