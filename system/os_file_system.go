package system

import (
	"os"
	"path/filepath"

	fsWrapper "github.com/charlievieth/fs"

	bosherr "github.com/cloudfoundry/bosh-chksum/errors"
	boshlog "github.com/cloudfoundry/bosh-chksum/logger"
)

type osFileSystem struct {
	logger boshlog.Logger
	logTag string

	tempRoot string
}

func NewOsFileSystem(logger boshlog.Logger) FileSystem {
	return &osFileSystem{logger: logger, logTag: "File System"}
}

// NewOsFileSystemWithStrictTempRoot creates temporary files and
// directories below tempRoot instead of the OS default.
func NewOsFileSystemWithStrictTempRoot(logger boshlog.Logger, tempRoot string) FileSystem {
	return &osFileSystem{logger: logger, logTag: "File System", tempRoot: tempRoot}
}

func (fs *osFileSystem) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	fs.logger.Debug(fs.logTag, "Opening file '%s'", path)

	file, err := fsWrapper.OpenFile(path, flag, perm)
	if err != nil {
		return nil, err
	}

	return file, nil
}

func (fs *osFileSystem) Stat(path string) (os.FileInfo, error) {
	return fsWrapper.Stat(path)
}

func (fs *osFileSystem) Lstat(path string) (os.FileInfo, error) {
	return fsWrapper.Lstat(path)
}

func (fs *osFileSystem) MkdirAll(path string, perm os.FileMode) error {
	fs.logger.Debug(fs.logTag, "Making dir '%s' with perm %#o", path, perm)
	return fsWrapper.MkdirAll(path, perm)
}

func (fs *osFileSystem) RemoveAll(fileOrDir string) error {
	fs.logger.Debug(fs.logTag, "Remove all '%s'", fileOrDir)
	return fsWrapper.RemoveAll(fileOrDir)
}

func (fs *osFileSystem) Rename(oldPath, newPath string) error {
	fs.logger.Debug(fs.logTag, "Renaming '%s' to '%s'", oldPath, newPath)
	return fsWrapper.Rename(oldPath, newPath)
}

func (fs *osFileSystem) Symlink(oldPath, newPath string) error {
	fs.logger.Debug(fs.logTag, "Symlinking oldPath '%s' with newPath '%s'", oldPath, newPath)
	return symlink(oldPath, newPath)
}

func (fs *osFileSystem) Readlink(path string) (string, error) {
	return os.Readlink(path)
}

func (fs *osFileSystem) ReadFileString(path string) (string, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return "", bosherr.WrapErrorf(err, "Reading file '%s'", path)
	}

	return string(bytes), nil
}

func (fs *osFileSystem) WriteFileString(path, content string) error {
	fs.logger.Debug(fs.logTag, "Writing '%s'", path)

	err := fs.MkdirAll(filepath.Dir(path), os.ModePerm)
	if err != nil {
		return bosherr.WrapErrorf(err, "Creating parent directory for '%s'", path)
	}

	file, err := fsWrapper.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return bosherr.WrapErrorf(err, "Creating file '%s'", path)
	}

	defer file.Close()

	_, err = file.WriteString(content)
	if err != nil {
		return bosherr.WrapErrorf(err, "Writing content to file '%s'", path)
	}

	return nil
}

func (fs *osFileSystem) TempFile(prefix string) (File, error) {
	fs.logger.Debug(fs.logTag, "Creating temp file with prefix '%s'", prefix)

	file, err := os.CreateTemp(fs.tempRoot, prefix)
	if err != nil {
		return nil, bosherr.WrapError(err, "Creating temp file")
	}

	return file, nil
}

func (fs *osFileSystem) TempDir(prefix string) (string, error) {
	fs.logger.Debug(fs.logTag, "Creating temp dir with prefix '%s'", prefix)

	path, err := os.MkdirTemp(fs.tempRoot, prefix)
	if err != nil {
		return "", bosherr.WrapError(err, "Creating temp dir")
	}

	return path, nil
}

func (fs *osFileSystem) Walk(root string, walkFunc filepath.WalkFunc) error {
	return filepath.Walk(root, walkFunc)
}
