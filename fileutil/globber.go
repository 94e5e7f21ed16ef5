package fileutil

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar"

	bosherr "github.com/cloudfoundry/bosh-chksum/errors"
	boshlog "github.com/cloudfoundry/bosh-chksum/logger"
	boshsys "github.com/cloudfoundry/bosh-chksum/system"
)

const globberLogTag = "globber"

type Globber interface {
	// Glob returns the files under dir matching any filter, relative to
	// dir and in the order the filters were given. A filter naming a
	// directory matches every file below it.
	Glob(dir string, filters []string) ([]string, error)
}

type doublestarGlobber struct {
	fs     boshsys.FileSystem
	logger boshlog.Logger
}

func NewGlobber(
	fs boshsys.FileSystem,
	logger boshlog.Logger,
) Globber {
	return doublestarGlobber{fs: fs, logger: logger}
}

func (g doublestarGlobber) Glob(dir string, filters []string) ([]string, error) {
	seen := map[string]bool{}
	files := []string{}

	for _, filterPath := range g.convertDirectoriesToGlobs(dir, filters) {
		matches, err := doublestar.Glob(filterPath)
		if err != nil {
			return nil, bosherr.WrapErrorf(err, "Finding files matching filter '%s'", filterPath)
		}

		for _, match := range matches {
			fileInfo, err := g.fs.Stat(match)
			if err != nil {
				return nil, bosherr.WrapErrorf(err, "Getting file info for '%s'", match)
			}

			if fileInfo.IsDir() {
				continue
			}

			relativePath := strings.TrimPrefix(strings.TrimPrefix(filepath.ToSlash(match), filepath.ToSlash(dir)), "/")
			if seen[relativePath] {
				continue
			}

			seen[relativePath] = true
			files = append(files, relativePath)
		}
	}

	g.logger.Debug(globberLogTag, "Matched %d files under '%s'", len(files), dir)

	return files, nil
}

func (g doublestarGlobber) convertDirectoriesToGlobs(dir string, filters []string) []string {
	convertedFilters := []string{}
	for _, filter := range filters {
		src := filepath.Join(dir, filter)
		fileInfo, err := g.fs.Stat(src)
		if err == nil && fileInfo.IsDir() {
			convertedFilters = append(convertedFilters, filepath.Join(src, "**", "*"))
		} else {
			convertedFilters = append(convertedFilters, src)
		}
	}

	return convertedFilters
}

// MatchAny reports whether the slash-separated name matches one of
// patterns. An empty pattern list matches everything.
func MatchAny(patterns []string, name string) (bool, error) {
	if len(patterns) == 0 {
		return true, nil
	}

	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, name)
		if err != nil {
			return false, bosherr.WrapErrorf(err, "Matching '%s' against '%s'", name, pattern)
		}
		if matched {
			return true, nil
		}
	}

	return false, nil
}
