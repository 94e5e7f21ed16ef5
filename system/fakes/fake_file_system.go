package fakes

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	boshsys "github.com/cloudfoundry/bosh-chksum/system"
)

type FakeFileType int

const (
	FakeFileTypeFile FakeFileType = iota
	FakeFileTypeSymlink
	FakeFileTypeDir
	FakeFileTypeSocket
)

type FakeFileStats struct {
	FileType      FakeFileType
	FileMode      os.FileMode
	SymlinkTarget string
	Content       []byte
	ModTime       time.Time

	children []string
}

// FakeFileSystem keeps directory entries in creation order, which lets
// tests pin the enumeration order a real filesystem would otherwise
// decide.
type FakeFileSystem struct {
	lock  sync.Mutex
	files map[string]*FakeFileStats

	// OpenFileErr fails every open; OpenFileErrs fails opens of one path.
	OpenFileErr  error
	OpenFileErrs map[string]error

	StatErrs   map[string]error
	ReadErrs   map[string]error
	ReadDirErr error
	WriteErrs  map[string]error
	CloseErrs  map[string]error

	RenameErr    error
	RemoveAllErr error
	TempFileErr  error
	WalkErr      error

	OpenedFiles []*FakeFile

	tempCount int
}

func NewFakeFileSystem() *FakeFileSystem {
	return &FakeFileSystem{
		files:        map[string]*FakeFileStats{"/": {FileType: FakeFileTypeDir, FileMode: os.ModeDir | 0755}},
		OpenFileErrs: map[string]error{},
		StatErrs:     map[string]error{},
		ReadErrs:     map[string]error{},
		WriteErrs:    map[string]error{},
		CloseErrs:    map[string]error{},
	}
}

func (fs *FakeFileSystem) OpenFile(path string, flag int, perm os.FileMode) (boshsys.File, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	path = fs.clean(path)

	if fs.OpenFileErr != nil {
		return nil, fs.OpenFileErr
	}
	if err := fs.OpenFileErrs[path]; err != nil {
		return nil, err
	}

	stats, err := fs.resolve(path)
	if err != nil {
		if flag&os.O_CREATE == 0 {
			return nil, err
		}
		stats = fs.create(path, &FakeFileStats{FileType: FakeFileTypeFile, FileMode: perm})
	}

	if stats.FileType == FakeFileTypeSocket {
		return nil, &os.PathError{Op: "open", Path: path, Err: errors.New("no such device or address")}
	}

	if flag&os.O_TRUNC != 0 {
		stats.Content = nil
	}

	file := &FakeFile{fs: fs, path: path, stats: stats}
	fs.OpenedFiles = append(fs.OpenedFiles, file)

	return file, nil
}

func (fs *FakeFileSystem) Stat(path string) (os.FileInfo, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	path = fs.clean(path)
	if err := fs.StatErrs[path]; err != nil {
		return nil, err
	}

	stats, err := fs.resolve(path)
	if err != nil {
		return nil, err
	}

	return newFakeFileInfo(filepath.Base(path), stats), nil
}

func (fs *FakeFileSystem) Lstat(path string) (os.FileInfo, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	path = fs.clean(path)
	if err := fs.StatErrs[path]; err != nil {
		return nil, err
	}

	stats, found := fs.files[path]
	if !found {
		return nil, &os.PathError{Op: "lstat", Path: path, Err: os.ErrNotExist}
	}

	return newFakeFileInfo(filepath.Base(path), stats), nil
}

func (fs *FakeFileSystem) MkdirAll(path string, perm os.FileMode) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.mkdirAll(fs.clean(path), perm)
	return nil
}

func (fs *FakeFileSystem) RemoveAll(fileOrDir string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if fs.RemoveAllErr != nil {
		return fs.RemoveAllErr
	}

	fileOrDir = fs.clean(fileOrDir)
	for name := range fs.files {
		if name == fileOrDir || strings.HasPrefix(name, fileOrDir+"/") {
			delete(fs.files, name)
		}
	}
	fs.unlink(fileOrDir)

	return nil
}

func (fs *FakeFileSystem) Rename(oldPath, newPath string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if fs.RenameErr != nil {
		return fs.RenameErr
	}

	oldPath, newPath = fs.clean(oldPath), fs.clean(newPath)

	stats, found := fs.files[oldPath]
	if !found {
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: os.ErrNotExist}
	}

	delete(fs.files, oldPath)
	fs.unlink(oldPath)
	fs.unlink(newPath)
	fs.create(newPath, stats)

	return nil
}

func (fs *FakeFileSystem) Symlink(oldPath, newPath string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.create(fs.clean(newPath), &FakeFileStats{
		FileType:      FakeFileTypeSymlink,
		FileMode:      os.ModeSymlink | 0777,
		SymlinkTarget: fs.clean(oldPath),
	})
	return nil
}

func (fs *FakeFileSystem) Readlink(path string) (string, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	path = fs.clean(path)

	stats, found := fs.files[path]
	if !found {
		return "", &os.PathError{Op: "readlink", Path: path, Err: os.ErrNotExist}
	}
	if stats.FileType != FakeFileTypeSymlink {
		return "", &os.PathError{Op: "readlink", Path: path, Err: errors.New("invalid argument")}
	}

	return stats.SymlinkTarget, nil
}

func (fs *FakeFileSystem) ReadFileString(path string) (string, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	stats, err := fs.resolve(fs.clean(path))
	if err != nil {
		return "", err
	}

	return string(stats.Content), nil
}

func (fs *FakeFileSystem) WriteFileString(path, content string) error {
	return fs.WriteFile(path, []byte(content))
}

func (fs *FakeFileSystem) WriteFile(path string, content []byte) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	path = fs.clean(path)
	if stats, found := fs.files[path]; found {
		stats.Content = append([]byte(nil), content...)
		return nil
	}

	fs.create(path, &FakeFileStats{
		FileType: FakeFileTypeFile,
		FileMode: 0644,
		Content:  append([]byte(nil), content...),
	})
	return nil
}

// RegisterSocket adds an entry that is neither a regular file, a directory
// nor a symlink.
func (fs *FakeFileSystem) RegisterSocket(path string) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.create(fs.clean(path), &FakeFileStats{FileType: FakeFileTypeSocket, FileMode: os.ModeSocket | 0755})
}

func (fs *FakeFileSystem) FileExists(path string) bool {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	_, found := fs.files[fs.clean(path)]
	return found
}

func (fs *FakeFileSystem) TempFile(prefix string) (boshsys.File, error) {
	if fs.TempFileErr != nil {
		return nil, fs.TempFileErr
	}

	fs.lock.Lock()
	fs.tempCount++
	name := fmt.Sprintf("/tmp/%s%d", prefix, fs.tempCount)
	fs.lock.Unlock()

	return fs.OpenFile(name, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0600)
}

func (fs *FakeFileSystem) TempDir(prefix string) (string, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.tempCount++
	name := fmt.Sprintf("/tmp/%s%d", prefix, fs.tempCount)
	fs.mkdirAll(name, 0700)

	return name, nil
}

func (fs *FakeFileSystem) Walk(root string, walkFunc filepath.WalkFunc) error {
	if fs.WalkErr != nil {
		return walkFunc("", nil, fs.WalkErr)
	}

	return fs.walk(fs.clean(root), walkFunc)
}

func (fs *FakeFileSystem) walk(root string, walkFunc filepath.WalkFunc) error {
	info, err := fs.Lstat(root)
	if err != nil {
		return walkFunc(root, nil, err)
	}

	if err := walkFunc(root, info, nil); err != nil {
		if info.IsDir() && err == filepath.SkipDir {
			return nil
		}
		return err
	}

	if !info.IsDir() {
		return nil
	}

	for _, child := range fs.childrenOf(root) {
		if err := fs.walk(path.Join(root, child), walkFunc); err != nil {
			return err
		}
	}

	return nil
}

func (fs *FakeFileSystem) childrenOf(dir string) []string {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	stats, found := fs.files[dir]
	if !found {
		return nil
	}

	return append([]string(nil), stats.children...)
}

func (fs *FakeFileSystem) clean(p string) string {
	return path.Clean(filepath.ToSlash(p))
}

func (fs *FakeFileSystem) resolve(p string) (*FakeFileStats, error) {
	for i := 0; i < 40; i++ {
		stats, found := fs.files[p]
		if !found {
			return nil, &os.PathError{Op: "stat", Path: p, Err: os.ErrNotExist}
		}
		if stats.FileType != FakeFileTypeSymlink {
			return stats, nil
		}
		p = stats.SymlinkTarget
	}

	return nil, &os.PathError{Op: "stat", Path: p, Err: errors.New("too many levels of symbolic links")}
}

func (fs *FakeFileSystem) create(p string, stats *FakeFileStats) *FakeFileStats {
	fs.mkdirAll(path.Dir(p), 0755)
	if _, found := fs.files[p]; !found {
		parent := fs.files[path.Dir(p)]
		parent.children = append(parent.children, path.Base(p))
	}
	fs.files[p] = stats
	return stats
}

func (fs *FakeFileSystem) mkdirAll(p string, perm os.FileMode) {
	if _, found := fs.files[p]; found {
		return
	}

	stats := &FakeFileStats{FileType: FakeFileTypeDir, FileMode: os.ModeDir | perm}
	if path.Dir(p) == p {
		fs.files[p] = stats
		return
	}

	fs.mkdirAll(path.Dir(p), perm)
	fs.create(p, stats)
}

func (fs *FakeFileSystem) unlink(p string) {
	parent, found := fs.files[path.Dir(p)]
	if !found {
		return
	}

	base := path.Base(p)
	for i, child := range parent.children {
		if child == base {
			parent.children = append(parent.children[:i:i], parent.children[i+1:]...)
			return
		}
	}
}

type FakeFile struct {
	fs    *FakeFileSystem
	path  string
	stats *FakeFileStats

	readOffset int
	dirOffset  int

	Closed bool
}

func (f *FakeFile) Name() string { return f.path }

func (f *FakeFile) Read(b []byte) (int, error) {
	f.fs.lock.Lock()
	defer f.fs.lock.Unlock()

	if f.stats.FileType == FakeFileTypeDir {
		return 0, &os.PathError{Op: "read", Path: f.path, Err: errors.New("is a directory")}
	}
	if err := f.fs.ReadErrs[f.path]; err != nil {
		return 0, err
	}
	if f.readOffset >= len(f.stats.Content) {
		return 0, io.EOF
	}

	n := copy(b, f.stats.Content[f.readOffset:])
	f.readOffset += n

	return n, nil
}

func (f *FakeFile) Write(b []byte) (int, error) {
	f.fs.lock.Lock()
	defer f.fs.lock.Unlock()

	if err := f.fs.WriteErrs[f.path]; err != nil {
		return 0, err
	}

	f.stats.Content = append(f.stats.Content, b...)
	return len(b), nil
}

func (f *FakeFile) Close() error {
	f.fs.lock.Lock()
	defer f.fs.lock.Unlock()

	f.Closed = true
	return f.fs.CloseErrs[f.path]
}

func (f *FakeFile) Stat() (os.FileInfo, error) {
	return newFakeFileInfo(filepath.Base(f.path), f.stats), nil
}

// ReadDir follows the os.File contract: with n > 0 it returns at most n
// entries and io.EOF once the directory is exhausted.
func (f *FakeFile) ReadDir(n int) ([]fs.DirEntry, error) {
	if f.stats.FileType != FakeFileTypeDir {
		return nil, &os.PathError{Op: "readdirent", Path: f.path, Err: errors.New("not a directory")}
	}
	if f.fs.ReadDirErr != nil {
		return nil, f.fs.ReadDirErr
	}

	children := f.fs.childrenOf(f.path)
	remaining := children[min(f.dirOffset, len(children)):]

	if n > 0 {
		if len(remaining) == 0 {
			return nil, io.EOF
		}
		remaining = remaining[:min(n, len(remaining))]
	}
	f.dirOffset += len(remaining)

	entries := make([]fs.DirEntry, 0, len(remaining))
	for _, child := range remaining {
		info, err := f.fs.Lstat(path.Join(f.path, child))
		if err != nil {
			return entries, err
		}
		entries = append(entries, fs.FileInfoToDirEntry(info))
	}

	return entries, nil
}

type FakeFileInfo struct {
	name  string
	stats FakeFileStats
}

func newFakeFileInfo(name string, stats *FakeFileStats) FakeFileInfo {
	return FakeFileInfo{name: name, stats: *stats}
}

func (fi FakeFileInfo) Name() string       { return fi.name }
func (fi FakeFileInfo) Size() int64        { return int64(len(fi.stats.Content)) }
func (fi FakeFileInfo) ModTime() time.Time { return fi.stats.ModTime }
func (fi FakeFileInfo) IsDir() bool        { return fi.stats.FileType == FakeFileTypeDir }
func (fi FakeFileInfo) Sys() interface{}   { return nil }

func (fi FakeFileInfo) Mode() os.FileMode {
	switch fi.stats.FileType {
	case FakeFileTypeDir:
		return fi.stats.FileMode | os.ModeDir
	case FakeFileTypeSymlink:
		return fi.stats.FileMode | os.ModeSymlink
	case FakeFileTypeSocket:
		return fi.stats.FileMode | os.ModeSocket
	default:
		return fi.stats.FileMode &^ os.ModeType
	}
}
