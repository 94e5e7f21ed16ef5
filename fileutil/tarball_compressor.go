package fileutil

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	gzip "github.com/klauspost/pgzip"

	"github.com/cloudfoundry/bosh-chksum/checksum"
	bosherr "github.com/cloudfoundry/bosh-chksum/errors"
	"github.com/cloudfoundry/bosh-chksum/sha2256"
	boshsys "github.com/cloudfoundry/bosh-chksum/system"
)

type tarballCompressor struct {
	fs boshsys.FileSystem
}

func NewTarballCompressor(
	fs boshsys.FileSystem,
) Compressor {
	return tarballCompressor{fs: fs}
}

func (c tarballCompressor) CompressFilesInDir(dir string, options CompressorOptions) (string, checksum.Checksum, error) {
	return c.CompressSpecificFilesInDir(dir, []string{"."}, options)
}

func (c tarballCompressor) CompressSpecificFilesInDir(dir string, files []string, options CompressorOptions) (string, checksum.Checksum, error) {
	tarball, err := c.fs.TempFile("bosh-chksum-TarballCompressor-CompressSpecificFilesInDir")
	if err != nil {
		return "", nil, bosherr.WrapError(err, "Creating temporary file for tarball")
	}

	defer tarball.Close() //nolint:errcheck

	digestWriter := sha2256.NewWriter(tarball)

	var zw *gzip.Writer
	var tw *tar.Writer

	if options.NoCompression {
		tw = tar.NewWriter(digestWriter)
	} else {
		zw = gzip.NewWriter(digestWriter)
		tw = tar.NewWriter(zw)
	}

	for _, file := range files {
		err = c.fs.Walk(filepath.Join(dir, file), func(f string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if filepath.Base(f) == ".DS_Store" {
				return nil
			}

			relPath, err := filepath.Rel(dir, f)
			if err != nil {
				return bosherr.WrapError(err, "Resolving relative tar path")
			}
			if relPath == "." {
				return nil
			}

			return c.addToTar(tw, f, filepath.ToSlash(relPath), fi)
		})
		if err != nil {
			c.CleanUp(tarball.Name()) //nolint:errcheck
			return "", nil, bosherr.WrapError(err, "Creating tgz")
		}
	}

	if err = tw.Close(); err != nil {
		return "", nil, bosherr.WrapError(err, "Closing tar writer")
	}

	if zw != nil {
		if err = zw.Close(); err != nil {
			return "", nil, bosherr.WrapError(err, "Closing gzip writer")
		}
	}

	return tarball.Name(), checksum.NewChecksum(digestWriter.Digest()), nil
}

func (c tarballCompressor) addToTar(tw *tar.Writer, path, name string, fi os.FileInfo) error {
	var link string
	if fi.Mode()&os.ModeSymlink != 0 {
		var err error
		link, err = c.fs.Readlink(path)
		if err != nil {
			return bosherr.WrapErrorf(err, "Reading symlink '%s'", path)
		}
	}

	header, err := tar.FileInfoHeader(fi, link)
	if err != nil {
		return bosherr.WrapError(err, "Reading tar header")
	}

	header.Name = name
	if fi.IsDir() {
		header.Name += "/"
	}

	if err := tw.WriteHeader(header); err != nil {
		return bosherr.WrapError(err, "Writing tar header")
	}

	if !fi.Mode().IsRegular() {
		return nil
	}

	data, err := c.fs.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return bosherr.WrapError(err, "Reading tar source file")
	}
	defer data.Close() //nolint:errcheck

	if _, err := io.Copy(tw, data); err != nil {
		return bosherr.WrapError(err, "Copying data into tar")
	}

	return nil
}

func (c tarballCompressor) DecompressFileToDir(tarballPath string, dir string, options CompressorOptions) error {
	if _, err := c.fs.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return bosherr.WrapErrorf(err, "Determine target dir '%s'", dir)
	}

	tarball, err := c.fs.OpenFile(tarballPath, os.O_RDONLY, 0)
	if err != nil {
		return bosherr.WrapError(err, "Opening tarball")
	}
	defer tarball.Close() //nolint:errcheck

	digestReader := sha2256.NewReader(tarball)

	var source io.Reader = digestReader
	var zr *gzip.Reader
	if !options.NoCompression {
		zr, err = gzip.NewReader(digestReader)
		if err != nil {
			return bosherr.WrapError(err, "Creating gzip reader")
		}
		defer zr.Close() //nolint:errcheck
		source = zr
	}

	err = c.extract(tar.NewReader(source), tarballPath, dir, options)
	if err != nil {
		return err
	}

	if options.Fingerprint == nil {
		return nil
	}

	// The gzip reader may stop before the end of the file and must not
	// read ahead concurrently with the drain below.
	if zr != nil {
		zr.Close() //nolint:errcheck
	}
	if _, err := io.Copy(io.Discard, digestReader); err != nil {
		return bosherr.WrapError(err, "Reading tarball")
	}

	err = options.Fingerprint.Verify(checksum.NewChecksum(digestReader.Digest()))
	if err != nil {
		return bosherr.WrapErrorf(err, "Checking tarball '%s'", tarballPath)
	}

	return nil
}

func (c tarballCompressor) extract(tr *tar.Reader, tarballPath, dir string, options CompressorOptions) error {
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}

		if err != nil {
			return bosherr.WrapError(err, "Loading next file header")
		}

		name := filepath.Clean(filepath.FromSlash(header.Name))

		if options.PathInArchive != "" && !strings.HasPrefix(name, filepath.Clean(options.PathInArchive)) {
			continue
		}

		if options.StripComponents > 0 {
			components := strings.Split(name, string(filepath.Separator))
			if len(components) <= options.StripComponents {
				continue
			}

			name = filepath.Join(components[options.StripComponents:]...)
		}

		fullName := filepath.Join(dir, name)
		if !strings.HasPrefix(fullName, filepath.Clean(dir)+string(filepath.Separator)) {
			return bosherr.Errorf("Archive entry '%s' escapes '%s'", header.Name, dir)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := c.fs.MkdirAll(fullName, fs.FileMode(header.Mode)); err != nil {
				return bosherr.WrapError(err, "Decompressing directory")
			}
		case tar.TypeReg:
			if err := c.writeFile(tr, fullName, fs.FileMode(header.Mode)); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := c.fs.Symlink(header.Linkname, fullName); err != nil {
				return bosherr.WrapError(err, "Decompressing symlink")
			}
		default:
			return fmt.Errorf("unknown type: %v in %s for tar: %s",
				header.Typeflag, header.Name, tarballPath)
		}
	}
}

func (c tarballCompressor) writeFile(r io.Reader, path string, mode fs.FileMode) error {
	if err := c.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return bosherr.WrapError(err, "Creating parent directory")
	}

	outFile, err := c.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return bosherr.WrapError(err, "Creating decompressed file")
	}
	defer outFile.Close() //nolint:errcheck

	if _, err := io.Copy(outFile, r); err != nil {
		return bosherr.WrapError(err, "Decompressing file contents")
	}

	return nil
}

func (c tarballCompressor) CleanUp(tarballPath string) error {
	return c.fs.RemoveAll(tarballPath)
}
