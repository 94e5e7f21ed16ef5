package blobstore

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/cloudfoundry/bosh-chksum/checksum"
	bosherr "github.com/cloudfoundry/bosh-chksum/errors"
	boshlog "github.com/cloudfoundry/bosh-chksum/logger"
	"github.com/cloudfoundry/bosh-chksum/sha2256"
	boshsys "github.com/cloudfoundry/bosh-chksum/system"
	boshuuid "github.com/cloudfoundry/bosh-chksum/uuid"
)

const blobManagerLogTag = "blobManager"

// BlobManager keeps blobs in <workdir>/blobs/<sha256 hex>. Blobs are
// written to <workdir>/tmp first and renamed into place once their
// digest is known.
type BlobManager struct {
	fs      boshsys.FileSystem
	uuidGen boshuuid.Generator
	workdir string
	logger  boshlog.Logger
}

func NewBlobManager(fs boshsys.FileSystem, uuidGen boshuuid.Generator, workdir string, logger boshlog.Logger) BlobManager {
	return BlobManager{
		fs:      fs,
		uuidGen: uuidGen,
		workdir: workdir,
		logger:  logger,
	}
}

func (m BlobManager) Fetch(blobID string) (boshsys.File, error, int) {
	if err := validateBlobID(blobID); err != nil {
		return nil, err, 400
	}

	if err := m.createDirStructure(); err != nil {
		return nil, err, 500
	}

	file, err := m.fs.OpenFile(m.blobPath(blobID), os.O_RDONLY, 0)
	if err != nil {
		return nil, bosherr.WrapError(err, "Reading blob"), statusForErr(err)
	}

	return file, nil, 200
}

// Write stores everything r yields and returns its checksum. Writing
// content that is already stored replaces the blob with identical bytes.
func (m BlobManager) Write(ctx context.Context, r io.Reader) (checksum.Checksum, error) {
	if err := m.createDirStructure(); err != nil {
		return nil, err
	}

	tempPath, err := m.tempPath()
	if err != nil {
		return nil, err
	}

	file, err := m.fs.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0640)
	if err != nil {
		return nil, bosherr.WrapError(err, "Opening blob store file")
	}

	w := sha2256.NewAsyncWriter(ctx, file)

	_, err = io.Copy(w, r)
	closeErr := w.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		m.removeTemp(tempPath)
		return nil, bosherr.WrapError(err, "Updating blob")
	}

	digest := w.Digest()
	blobID := digest.HexLower()

	err = m.fs.Rename(tempPath, m.blobPath(blobID))
	if err != nil {
		m.removeTemp(tempPath)
		return nil, bosherr.WrapErrorf(err, "Moving blob '%s' into place", blobID)
	}

	m.logger.Debug(blobManagerLogTag, "Stored blob '%s'", blobID)

	return checksum.NewChecksum(digest), nil
}

// GetPath copies the blob into the work directory and verifies the copy
// while writing it.
func (m BlobManager) GetPath(blobID string, fingerprint checksum.Checksum) (string, error) {
	if err := validateBlobID(blobID); err != nil {
		return "", err
	}

	if err := m.createDirStructure(); err != nil {
		return "", err
	}

	if !m.BlobExists(blobID) {
		return "", bosherr.Errorf("Blob '%s' not found", blobID)
	}

	tempFilePath, actual, err := m.copyToTmpFile(m.blobPath(blobID))
	if err != nil {
		return "", err
	}

	err = fingerprint.Verify(actual)
	if err != nil {
		m.removeTemp(tempFilePath)
		return "", bosherr.WrapErrorf(err, "Checking blob '%s'", blobID)
	}

	return tempFilePath, nil
}

func (m BlobManager) Delete(blobID string) error {
	if err := validateBlobID(blobID); err != nil {
		return err
	}

	if err := m.createDirStructure(); err != nil {
		return err
	}

	return m.fs.RemoveAll(m.blobPath(blobID))
}

func (m BlobManager) BlobExists(blobID string) bool {
	if validateBlobID(blobID) != nil {
		return false
	}

	if err := m.createDirStructure(); err != nil {
		return false
	}

	_, err := m.fs.Stat(m.blobPath(blobID))
	return !errors.Is(err, fs.ErrNotExist)
}

func (m BlobManager) copyToTmpFile(srcPath string) (string, checksum.Checksum, error) {
	destPath, err := m.tempPath()
	if err != nil {
		return "", nil, err
	}

	src, err := m.fs.OpenFile(srcPath, os.O_RDONLY, 0)
	if err != nil {
		return "", nil, bosherr.WrapError(err, "Opening source file")
	}
	defer src.Close() //nolint:errcheck

	dest, err := m.fs.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0640)
	if err != nil {
		return "", nil, bosherr.WrapError(err, "Creating destination file")
	}

	r := sha2256.NewReader(src)
	_, err = io.Copy(dest, r)
	if closeErr := dest.Close(); err == nil && closeErr != nil {
		err = bosherr.WrapError(closeErr, "Closing destination file")
	} else if err != nil {
		err = bosherr.WrapError(err, "Copying file")
	}
	if err != nil {
		m.removeTemp(destPath)
		return "", nil, err
	}

	return destPath, checksum.NewChecksum(r.Digest()), nil
}

func (m BlobManager) tempPath() (string, error) {
	id, err := m.uuidGen.Generate()
	if err != nil {
		return "", bosherr.WrapError(err, "Generating temporary blob name")
	}

	return path.Join(m.tmpPath(), id), nil
}

func (m BlobManager) removeTemp(tempPath string) {
	if err := m.fs.RemoveAll(tempPath); err != nil {
		m.logger.Warn(blobManagerLogTag, "Failed to remove temporary blob '%s': %s", tempPath, err)
	}
}

func (m BlobManager) createDirStructure() error {
	if err := m.mkdir(m.blobsPath()); err != nil {
		return err
	}

	if err := m.mkdir(m.tmpPath()); err != nil {
		return err
	}

	return nil
}

func (m BlobManager) blobsPath() string {
	return path.Join(m.workdir, "blobs")
}

func (m BlobManager) tmpPath() string {
	return path.Join(m.workdir, "tmp")
}

func (m BlobManager) blobPath(id string) string {
	return path.Join(m.blobsPath(), id)
}

func (m BlobManager) mkdir(path string) error {
	if _, err := m.fs.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := m.fs.MkdirAll(path, 0750); err != nil {
			return bosherr.WrapErrorf(err, "Creating blob store directory '%s'", path)
		}
	}

	return nil
}

func validateBlobID(blobID string) error {
	digest, err := sha2256.ParseDigest(blobID)
	if err != nil || digest.HexLower() != blobID {
		return bosherr.Errorf("Invalid blob id '%s'", blobID)
	}

	return nil
}

func statusForErr(err error) int {
	if err == nil {
		return 200
	}

	if errors.Is(err, fs.ErrNotExist) {
		return 404
	}

	return 500
}
