package system

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// File is the subset of *os.File used for digest calculation:
// byte streams for regular files and batched entry enumeration for
// directories.
type File interface {
	io.ReadWriteCloser
	Name() string
	Stat() (os.FileInfo, error)
	ReadDir(n int) ([]fs.DirEntry, error)
}

type FileSystem interface {
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	// Stat follows symlinks, Lstat does not.
	Stat(path string) (os.FileInfo, error)
	Lstat(path string) (os.FileInfo, error)

	MkdirAll(path string, perm os.FileMode) error
	RemoveAll(fileOrDir string) error
	Rename(oldPath, newPath string) error
	Symlink(oldPath, newPath string) error
	Readlink(path string) (string, error)

	ReadFileString(path string) (string, error)
	WriteFileString(path, content string) error

	TempFile(prefix string) (File, error)
	TempDir(prefix string) (string, error)

	Walk(root string, walkFunc filepath.WalkFunc) error
}
