package cmd

import (
	"context"
	"crypto/x509"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/cloudfoundry/bosh-chksum/blobstore"
	"github.com/cloudfoundry/bosh-chksum/checksum"
	"github.com/cloudfoundry/bosh-chksum/chksum"
	bosherr "github.com/cloudfoundry/bosh-chksum/errors"
	"github.com/cloudfoundry/bosh-chksum/fileutil"
	boshhttp "github.com/cloudfoundry/bosh-chksum/http"
	"github.com/cloudfoundry/bosh-chksum/httpclient"
	boshlog "github.com/cloudfoundry/bosh-chksum/logger"
	"github.com/cloudfoundry/bosh-chksum/manifest"
	"github.com/cloudfoundry/bosh-chksum/sha2256"
	boshsys "github.com/cloudfoundry/bosh-chksum/system"
	boshuuid "github.com/cloudfoundry/bosh-chksum/uuid"
)

const (
	runnerLogTag = "runner"

	stdinSource = "-"

	retryDelay = 500 * time.Millisecond
)

// Runner digests every source named on the command line and prints one
// line per digest in the order the sources were given.
type Runner struct {
	fs      boshsys.FileSystem
	uuidGen boshuuid.Generator
	clock   clock.Clock
	stdin   io.Reader
	stdout  io.Writer
	logger  boshlog.Logger
}

func NewRunner(
	fs boshsys.FileSystem,
	uuidGen boshuuid.Generator,
	clock clock.Clock,
	stdin io.Reader,
	stdout io.Writer,
	logger boshlog.Logger,
) Runner {
	return Runner{
		fs:      fs,
		uuidGen: uuidGen,
		clock:   clock,
		stdin:   stdin,
		stdout:  stdout,
		logger:  logger,
	}
}

// entry is one printed line. A directory source filtered by --include
// yields one entry per matching file.
type entry struct {
	name     string
	checksum checksum.Checksum
}

// job holds the collaborators built once per run from Options.
type job struct {
	opts            Options
	checksumFactory checksum.ChecksumFactory
	globber         fileutil.Globber
	compressor      fileutil.Compressor
	downloader      boshhttp.Downloader
	store           blobstore.Blobstore
}

func (r Runner) Run(ctx context.Context, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	j, err := r.newJob(opts)
	if err != nil {
		return err
	}

	if opts.Check != "" {
		return r.check(ctx, j)
	}

	sources := opts.Args.Sources
	if len(sources) == 0 {
		sources = []string{stdinSource}
	}

	results := make([][]entry, len(sources))
	errs := make([]error, len(sources))

	g := new(errgroup.Group)
	g.SetLimit(opts.Jobs)

	for i, source := range sources {
		g.Go(func() error {
			start := r.clock.Now()
			results[i], errs[i] = r.source(ctx, j, source)
			r.logger.Debug(runnerLogTag, "Digested '%s' in %s", source, r.clock.Since(start))
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck

	var failures []error

	for i, source := range sources {
		if errs[i] != nil {
			failures = append(failures, bosherr.WrapErrorf(errs[i], "Digesting '%s'", source))
			continue
		}

		for _, e := range results[i] {
			fmt.Fprintf(r.stdout, "%s  %s\n", r.render(opts, e.checksum), e.name) //nolint:errcheck
		}
	}

	if opts.Manifest != "" {
		if err := r.saveManifest(opts.Manifest, results); err != nil {
			failures = append(failures, err)
		}
	}

	if len(failures) > 0 {
		return bosherr.NewMultiError(failures...)
	}

	return nil
}

// saveManifest records relative sources relative to the manifest's own
// directory, which is where --check resolves them.
func (r Runner) saveManifest(path string, results [][]entry) error {
	m := manifest.New()
	manifestDir := filepath.Dir(path)

	for _, entries := range results {
		for _, e := range entries {
			name, err := relativeTo(manifestDir, e.name)
			if err != nil {
				return bosherr.WrapErrorf(err, "Recording '%s' in manifest", e.name)
			}
			m.Add(name, e.checksum)
		}
	}

	return m.Save(r.fs, path)
}

func relativeTo(dir, path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return absPath, nil
	}

	return rel, nil
}

func (r Runner) newJob(opts Options) (job, error) {
	j := job{
		opts:            opts,
		checksumFactory: checksum.NewChecksumFactory(r.fs, r.logger),
		globber:         fileutil.NewGlobber(r.fs, r.logger),
		compressor:      fileutil.NewTarballCompressor(r.fs),
	}

	var certPool *x509.CertPool
	if opts.CACert != "" {
		pem, err := r.fs.ReadFileString(opts.CACert)
		if err != nil {
			return job{}, bosherr.WrapErrorf(err, "Reading CA certificate '%s'", opts.CACert)
		}

		certPool = x509.NewCertPool()
		if !certPool.AppendCertsFromPEM([]byte(pem)) {
			return job{}, bosherr.Errorf("No certificates found in '%s'", opts.CACert)
		}
	}

	retries := opts.Retries
	if retries == 0 {
		retries = 1
	}

	client := boshhttp.NewRetryClient(httpclient.CreateDefaultClient(certPool), retries, retryDelay, r.logger)
	j.downloader = boshhttp.NewDownloader(client, r.logger)

	if opts.Store != "" {
		provider := blobstore.NewProvider(r.fs, r.uuidGen, j.checksumFactory, r.logger)

		store, err := provider.Get(blobstore.BlobstoreTypeLocal, map[string]interface{}{
			blobstore.BlobstorePathOption: opts.Store,
		})
		if err != nil {
			return job{}, bosherr.WrapErrorf(err, "Opening blob store '%s'", opts.Store)
		}

		j.store = store
	}

	return j, nil
}

func (r Runner) render(opts Options, c checksum.Checksum) string {
	if opts.Uppercase {
		c = checksum.NewUppercaseChecksum(c.Digest())
	}

	if opts.Tag {
		return c.String()
	}

	return c.Checksum()
}

func (r Runner) source(ctx context.Context, j job, source string) ([]entry, error) {
	if source == stdinSource {
		c, err := r.stream(ctx, j, source, io.NopCloser(r.stdin))
		if err != nil {
			return nil, err
		}
		return []entry{{name: source, checksum: c}}, nil
	}

	if isURL(source) {
		body, err := j.downloader.Open(ctx, source)
		if err != nil {
			return nil, err
		}

		c, err := r.stream(ctx, j, source, body)
		if err != nil {
			return nil, err
		}
		return []entry{{name: source, checksum: c}}, nil
	}

	info, err := r.fs.Stat(source)
	if err != nil {
		return nil, chksum.IOError{Err: bosherr.WrapErrorf(err, "Checking '%s' for digest calculation", source)}
	}

	if info.IsDir() {
		return r.directory(ctx, j, source)
	}

	if j.opts.Gunzip || j.store != nil {
		file, err := r.fs.OpenFile(source, os.O_RDONLY, 0)
		if err != nil {
			return nil, chksum.IOError{Err: bosherr.WrapErrorf(err, "Opening file '%s' for digest calculation", source)}
		}

		c, err := r.stream(ctx, j, source, file)
		if err != nil {
			return nil, err
		}
		return []entry{{name: source, checksum: c}}, nil
	}

	c, err := j.checksumFactory.CreateFromPathContext(ctx, source)
	if err != nil {
		return nil, err
	}

	return []entry{{name: source, checksum: c}}, nil
}

func (r Runner) directory(ctx context.Context, j job, dir string) ([]entry, error) {
	if j.opts.Gunzip {
		return nil, bosherr.Errorf("Cannot gunzip directory '%s'", dir)
	}

	if j.store != nil {
		return nil, bosherr.Errorf("Cannot store directory '%s'", dir)
	}

	if j.opts.Archive != "" {
		c, err := r.archive(ctx, j, dir)
		if err != nil {
			return nil, err
		}
		return []entry{{name: dir, checksum: c}}, nil
	}

	if len(j.opts.Include) == 0 {
		c, err := j.checksumFactory.CreateFromPathContext(ctx, dir)
		if err != nil {
			return nil, err
		}
		return []entry{{name: dir, checksum: c}}, nil
	}

	files, err := j.globber.Glob(dir, j.opts.Include)
	if err != nil {
		return nil, err
	}

	entries := make([]entry, 0, len(files))
	for _, file := range files {
		path := filepath.Join(dir, file)

		c, err := j.checksumFactory.CreateFromPathContext(ctx, path)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry{name: path, checksum: c})
	}

	return entries, nil
}

// stream digests rc, decompressing it first with --gunzip and copying it
// into the blob store with --store.
func (r Runner) stream(ctx context.Context, j job, name string, rc io.ReadCloser) (checksum.Checksum, error) {
	defer rc.Close() //nolint:errcheck

	var source io.Reader = rc

	if j.opts.Gunzip {
		zr, err := pgzip.NewReader(rc)
		if err != nil {
			return nil, chksum.IOError{Err: bosherr.WrapErrorf(err, "Opening gzip stream '%s'", name)}
		}
		defer zr.Close() //nolint:errcheck

		source = zr
	}

	if j.store != nil {
		return r.storeStream(ctx, j, name, source)
	}

	digest, err := sha2256.ChksumContext(ctx, chksum.NamedReader(source, name))
	if err != nil {
		return nil, err
	}

	return checksum.NewChecksum(digest), nil
}

func (r Runner) storeStream(ctx context.Context, j job, name string, source io.Reader) (checksum.Checksum, error) {
	tempFile, err := r.fs.TempFile("bosh-chksum-store")
	if err != nil {
		return nil, bosherr.WrapError(err, "Creating temporary file for blob")
	}
	defer r.fs.RemoveAll(tempFile.Name()) //nolint:errcheck

	w := sha2256.NewAsyncWriter(ctx, tempFile)

	_, err = io.Copy(w, source)
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, chksum.IOError{Err: bosherr.WrapErrorf(err, "Copying '%s' for blob creation", name)}
	}

	blobID, fingerprint, err := j.store.Create(tempFile.Name())
	if err != nil {
		return nil, err
	}

	err = checksum.NewChecksum(w.Digest()).Verify(fingerprint)
	if err != nil {
		return nil, bosherr.WrapErrorf(err, "Checking stored blob '%s'", blobID)
	}

	r.logger.Debug(runnerLogTag, "Stored '%s' as blob '%s'", name, blobID)

	return fingerprint, nil
}

func (r Runner) archive(ctx context.Context, j job, dir string) (checksum.Checksum, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files := []string{"."}
	if len(j.opts.Include) > 0 {
		var err error
		files, err = j.globber.Glob(dir, j.opts.Include)
		if err != nil {
			return nil, err
		}
	}

	tarballPath, fingerprint, err := j.compressor.CompressSpecificFilesInDir(dir, files, fileutil.CompressorOptions{})
	if err != nil {
		return nil, bosherr.WrapErrorf(err, "Archiving '%s'", dir)
	}
	defer j.compressor.CleanUp(tarballPath) //nolint:errcheck

	err = r.fs.MkdirAll(j.opts.Archive, os.ModePerm)
	if err != nil {
		return nil, bosherr.WrapErrorf(err, "Creating archive directory '%s'", j.opts.Archive)
	}

	archivePath := filepath.Join(j.opts.Archive, filepath.Base(filepath.Clean(dir))+".tgz")

	err = r.copyFile(ctx, tarballPath, archivePath, fingerprint)
	if err != nil {
		return nil, err
	}

	r.logger.Debug(runnerLogTag, "Archived '%s' to '%s'", dir, archivePath)

	return fingerprint, nil
}

// copyFile copies src to dst and checks the copied bytes against
// fingerprint.
func (r Runner) copyFile(ctx context.Context, src, dst string, fingerprint checksum.Checksum) error {
	srcFile, err := r.fs.OpenFile(src, os.O_RDONLY, 0)
	if err != nil {
		return bosherr.WrapErrorf(err, "Opening archive '%s'", src)
	}

	digestReader := sha2256.NewAsyncReader(ctx, srcFile)
	defer digestReader.Close() //nolint:errcheck

	dstFile, err := r.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return bosherr.WrapErrorf(err, "Creating archive '%s'", dst)
	}

	_, err = io.Copy(dstFile, digestReader)
	if closeErr := dstFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return bosherr.WrapErrorf(err, "Writing archive '%s'", dst)
	}

	return fingerprint.Verify(checksum.NewChecksum(digestReader.Digest()))
}

func (r Runner) check(ctx context.Context, j job) error {
	m, err := manifest.Load(r.fs, j.opts.Check)
	if err != nil {
		return err
	}

	verifier := manifest.NewVerifier(j.checksumFactory, r.logger)

	err = verifier.Verify(ctx, filepath.Dir(j.opts.Check), m)
	if err != nil {
		return err
	}

	for _, e := range m.Entries {
		fmt.Fprintf(r.stdout, "%s: OK\n", e.Path) //nolint:errcheck
	}

	return nil
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
