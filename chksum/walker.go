package chksum

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	bosherr "github.com/cloudfoundry/bosh-chksum/errors"
	boshlog "github.com/cloudfoundry/bosh-chksum/logger"
	boshsys "github.com/cloudfoundry/bosh-chksum/system"
)

const walkerLogTag = "chksumWalker"

// readDirBatch bounds how many entries are held in memory per directory.
const readDirBatch = 256

// Walker resolves paths, open files and open directories against a
// FileSystem.
//
// A directory's digest covers the bytes of every regular file below it,
// concatenated in the order the filesystem enumerates entries. Entries are
// classified without following symlinks: symlinks, sockets, devices and
// named pipes inside a directory are skipped. A path given directly to
// Path is classified after following symlinks.
type Walker struct {
	fs     boshsys.FileSystem
	logger boshlog.Logger
}

func NewWalker(fs boshsys.FileSystem, logger boshlog.Logger) Walker {
	return Walker{fs: fs, logger: logger}
}

func osWalker() Walker {
	logger := boshlog.NewLogger(boshlog.LevelNone)
	return NewWalker(boshsys.NewOsFileSystem(logger), logger)
}

func (w Walker) Path(path string) PathSource {
	return PathSource{walker: w, path: path}
}

func (w Walker) File(file boshsys.File) FileSource {
	return FileSource{walker: w, file: file}
}

func (w Walker) Dir(dir boshsys.File) DirSource {
	return DirSource{walker: w, dir: dir}
}

// Path resolves path on the OS filesystem when the digest is computed.
func Path(path string) PathSource {
	return osWalker().Path(path)
}

// File wraps an already-open file; a directory handle is enumerated.
// The caller keeps ownership of the handle.
func File(file boshsys.File) FileSource {
	return osWalker().File(file)
}

// Dir wraps an already-open directory handle.
func Dir(dir boshsys.File) DirSource {
	return osWalker().Dir(dir)
}

type PathSource struct {
	walker Walker
	path   string
}

func (s PathSource) ChksumWith(h Hash) error {
	return s.ChksumWithContext(context.Background(), h)
}

func (s PathSource) ChksumWithContext(ctx context.Context, h Hash) error {
	return wrapIOError(ctx, s.walker.path(ctx, h, s.path))
}

type FileSource struct {
	walker Walker
	file   boshsys.File
}

func (s FileSource) ChksumWith(h Hash) error {
	return s.ChksumWithContext(context.Background(), h)
}

func (s FileSource) ChksumWithContext(ctx context.Context, h Hash) error {
	return wrapIOError(ctx, s.walker.file(ctx, h, s.file))
}

type DirSource struct {
	walker Walker
	dir    boshsys.File
}

func (s DirSource) ChksumWith(h Hash) error {
	return s.ChksumWithContext(context.Background(), h)
}

func (s DirSource) ChksumWithContext(ctx context.Context, h Hash) error {
	return wrapIOError(ctx, s.walker.dir(ctx, h, s.dir))
}

func (w Walker) path(ctx context.Context, h Hash, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := w.fs.Stat(path)
	if err != nil {
		return bosherr.WrapErrorf(err, "Checking '%s' for digest calculation", path)
	}

	if info.IsDir() {
		return w.openDir(ctx, h, path)
	}

	return w.openFile(ctx, h, path)
}

func (w Walker) file(ctx context.Context, h Hash, file boshsys.File) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := file.Stat()
	if err != nil {
		return bosherr.WrapErrorf(err, "Checking '%s' for digest calculation", file.Name())
	}

	if info.IsDir() {
		return w.dir(ctx, h, file)
	}

	return stream(ctx, h, file, file.Name())
}

func (w Walker) dir(ctx context.Context, h Hash, dir boshsys.File) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		entries, readErr := dir.ReadDir(readDirBatch)

		for _, entry := range entries {
			err := w.entry(ctx, h, filepath.Join(dir.Name(), entry.Name()), entry)
			if err != nil {
				return err
			}
		}

		if readErr == io.EOF || (readErr == nil && len(entries) == 0) {
			return nil
		}
		if readErr != nil {
			return bosherr.WrapErrorf(readErr, "Reading directory '%s' for digest calculation", dir.Name())
		}
	}
}

func (w Walker) entry(ctx context.Context, h Hash, path string, entry fs.DirEntry) error {
	mode := entry.Type()

	switch {
	case mode.IsDir():
		return w.openDir(ctx, h, path)
	case mode.IsRegular():
		return w.openFile(ctx, h, path)
	default:
		w.logger.Debug(walkerLogTag, "Skipping '%s' with mode %s for digest calculation", path, mode)
		return nil
	}
}

func (w Walker) openDir(ctx context.Context, h Hash, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir, err := w.fs.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return bosherr.WrapErrorf(err, "Opening directory '%s' for digest calculation", path)
	}
	defer dir.Close() //nolint:errcheck

	return w.dir(ctx, h, dir)
}

func (w Walker) openFile(ctx context.Context, h Hash, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file, err := w.fs.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return bosherr.WrapErrorf(err, "Opening file '%s' for digest calculation", path)
	}
	defer file.Close() //nolint:errcheck

	return stream(ctx, h, file, path)
}
