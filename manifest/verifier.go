package manifest

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/cloudfoundry/bosh-chksum/checksum"
	bosherr "github.com/cloudfoundry/bosh-chksum/errors"
	boshlog "github.com/cloudfoundry/bosh-chksum/logger"
)

const verifierLogTag = "manifestVerifier"

type Verifier struct {
	checksumFactory checksum.ChecksumFactory
	logger          boshlog.Logger
}

func NewVerifier(checksumFactory checksum.ChecksumFactory, logger boshlog.Logger) Verifier {
	return Verifier{checksumFactory: checksumFactory, logger: logger}
}

// Verify digests every entry, resolving relative paths against baseDir,
// and reports all mismatches together. Cancellation stops at the current
// entry.
func (v Verifier) Verify(ctx context.Context, baseDir string, m Manifest) error {
	var errs []error

	for _, entry := range m.Entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		expected, err := checksum.ParseString(entry.Checksum)
		if err != nil {
			errs = append(errs, bosherr.WrapErrorf(err, "Parsing checksum of '%s'", entry.Path))
			continue
		}

		if !isFilesystemPath(entry.Path) {
			errs = append(errs, bosherr.Errorf("Cannot verify '%s': only filesystem paths can be checked", entry.Path))
			continue
		}

		path := entry.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}

		actual, err := v.checksumFactory.CreateFromPathContext(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			errs = append(errs, err)
			continue
		}

		err = expected.Verify(actual)
		if err != nil {
			errs = append(errs, bosherr.WrapErrorf(err, "Verifying '%s'", entry.Path))
			continue
		}

		v.logger.Debug(verifierLogTag, "Verified '%s'", entry.Path)
	}

	if len(errs) > 0 {
		return bosherr.NewMultiError(errs...)
	}

	return nil
}

// isFilesystemPath rules out stdin and URL entries, which cannot be read
// again.
func isFilesystemPath(path string) bool {
	if path == "" || path == "-" {
		return false
	}

	return !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://")
}
