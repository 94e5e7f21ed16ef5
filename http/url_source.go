package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/cloudfoundry/bosh-chksum/chksum"
	bosherr "github.com/cloudfoundry/bosh-chksum/errors"
	boshlog "github.com/cloudfoundry/bosh-chksum/logger"
)

const downloaderLogTag = "downloader"

// Downloader streams the bodies of GET requests.
type Downloader struct {
	client Client
	logger boshlog.Logger
}

func NewDownloader(client Client, logger boshlog.Logger) Downloader {
	return Downloader{client: client, logger: logger}
}

// Open returns the body of a 2xx response to a GET for url. The caller
// closes the body.
func (d Downloader) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, bosherr.WrapErrorf(err, "Building request for '%s'", url)
	}

	d.logger.Debug(downloaderLogTag, "Downloading '%s'", url)

	resp, err := d.client.Do(req)
	if err != nil {
		discardBody(resp)
		return nil, bosherr.WrapErrorf(err, "Downloading '%s'", url)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		discardBody(resp)
		return nil, bosherr.Errorf("Downloading '%s': unexpected response %d", url, resp.StatusCode)
	}

	return resp.Body, nil
}

func (d Downloader) Source(url string) URLSource {
	return URLSource{downloader: d, url: url}
}

// URLSource is the body of a remote resource.
type URLSource struct {
	downloader Downloader
	url        string
}

func (s URLSource) ChksumWith(h chksum.Hash) error {
	return s.ChksumWithContext(context.Background(), h)
}

func (s URLSource) ChksumWithContext(ctx context.Context, h chksum.Hash) error {
	body, err := s.downloader.Open(ctx, s.url)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return ctxErr
		}
		return chksum.IOError{Err: err}
	}
	defer body.Close() //nolint:errcheck

	return chksum.NamedReader(body, s.url).ChksumWithContext(ctx, h)
}
