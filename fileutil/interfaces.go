package fileutil

import (
	"github.com/cloudfoundry/bosh-chksum/checksum"
)

type CompressorOptions struct {
	NoCompression   bool
	PathInArchive   string
	StripComponents int

	// Fingerprint, when set, is checked against the archive bytes read
	// by DecompressFileToDir.
	Fingerprint checksum.Checksum
}

type Compressor interface {
	// CompressFilesInDir returns the path to a new tarball of dir and
	// the checksum of the tarball's bytes.
	CompressFilesInDir(dir string, options CompressorOptions) (string, checksum.Checksum, error)

	CompressSpecificFilesInDir(dir string, files []string, options CompressorOptions) (string, checksum.Checksum, error)

	DecompressFileToDir(tarballPath string, dir string, options CompressorOptions) (err error)

	// CleanUp cleans up compressed file after it was used
	CleanUp(tarballPath string) error
}
