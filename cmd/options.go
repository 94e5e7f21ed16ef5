package cmd

import (
	"time"

	bosherr "github.com/cloudfoundry/bosh-chksum/errors"
)

type Options struct {
	LogLevel string `long:"log-level" description:"Log level written to stderr" choice:"DEBUG" choice:"INFO" choice:"WARN" choice:"ERROR" choice:"NONE" default:"NONE"`

	Uppercase bool `long:"uppercase" short:"u" description:"Print digests as uppercase hex"`
	Tag       bool `long:"tag" description:"Prefix digests with the algorithm name"`

	Jobs    int           `long:"jobs" short:"j" description:"Number of sources digested at once" default:"1"`
	Timeout time.Duration `long:"timeout" description:"Give up after this long, e.g. 30s"`

	Include []string `long:"include" description:"Only digest files below a directory source matching this glob (repeatable)"`
	Gunzip  bool     `long:"gunzip" description:"Digest the decompressed bytes of gzip sources"`

	Manifest string `long:"manifest" description:"Write a YAML manifest of the computed digests to this file"`
	Check    string `long:"check" description:"Verify the digests listed in this YAML manifest"`
	Store    string `long:"store" description:"Copy sources into the content-addressed blob store in this directory"`
	Archive  string `long:"archive" description:"Write a tgz of each directory source into this directory and print the archive digest"`

	CACert  string `long:"ca-cert" description:"PEM file with CA certificates trusted for https sources"`
	Retries uint   `long:"retries" description:"Attempts made for each http(s) source" default:"3"`

	Args struct {
		Sources []string `positional-arg-name:"SOURCE" description:"File, directory, - for stdin, or http(s) URL"`
	} `positional-args:"yes"`
}

// UsageError reports options that are out of range or cannot be combined.
type UsageError struct {
	Err error
}

func (e UsageError) Error() string {
	return e.Err.Error()
}

func (e UsageError) Unwrap() error {
	return e.Err
}

func usageErrorf(msg string, args ...interface{}) error {
	return UsageError{Err: bosherr.Errorf(msg, args...)}
}

// Validate rejects option combinations before any source is touched.
// Manifest entries must be recomputable by --check from the path alone.
func (o Options) Validate() error {
	if o.Jobs < 1 {
		return usageErrorf("Expected --jobs to be at least 1 but received %d", o.Jobs)
	}

	stdinCount := 0
	for _, source := range o.Args.Sources {
		if source == stdinSource {
			stdinCount++
		}
	}
	if stdinCount > 1 {
		return usageErrorf("Expected '%s' to be given at most once but received it %d times", stdinSource, stdinCount)
	}

	if o.Manifest == "" {
		return nil
	}

	if o.Archive != "" {
		return usageErrorf("Cannot combine --manifest with --archive")
	}

	if o.Gunzip {
		return usageErrorf("Cannot combine --manifest with --gunzip")
	}

	sources := o.Args.Sources
	if len(sources) == 0 {
		sources = []string{stdinSource}
	}

	for _, source := range sources {
		if source == stdinSource || isURL(source) {
			return usageErrorf("Cannot record '%s' in --manifest: only filesystem paths can be checked", source)
		}
	}

	return nil
}
