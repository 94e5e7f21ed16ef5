package http

import (
	"io"
	"net/http"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/jpillora/backoff"

	bosherr "github.com/cloudfoundry/bosh-chksum/errors"
	boshlog "github.com/cloudfoundry/bosh-chksum/logger"
)

const retryClientLogTag = "retryClient"

// maxDelayFactor caps the exponential delay at a multiple of the first
// retry delay.
const maxDelayFactor = 16

type Client interface {
	Do(*http.Request) (*http.Response, error)
}

type RetryClient interface {
	Client
	GetWithHeaders(url string, headers map[string]string) (resp *http.Response, err error)
	Get(url string) (resp *http.Response, err error)
}

type attemptableFunc func(req *http.Request, resp *http.Response, err error) (bool, error)

type retryClient struct {
	delegate              Client
	maxAttempts           uint
	retryDelay            time.Duration
	clock                 clock.Clock
	logger                boshlog.Logger
	isResponseAttemptable attemptableFunc
}

// NewRetryClient retries transport errors and any response outside the
// 2xx and 3xx ranges.
func NewRetryClient(
	delegate Client,
	maxAttempts uint,
	retryDelay time.Duration,
	logger boshlog.Logger,
) RetryClient {
	return NewRetryClientWithClock(delegate, maxAttempts, retryDelay, clock.NewClock(), logger)
}

func NewRetryClientWithClock(
	delegate Client,
	maxAttempts uint,
	retryDelay time.Duration,
	clock clock.Clock,
	logger boshlog.Logger,
) RetryClient {
	return &retryClient{
		delegate:              delegate,
		maxAttempts:           maxAttempts,
		retryDelay:            retryDelay,
		clock:                 clock,
		logger:                logger,
		isResponseAttemptable: isFailedResponse,
	}
}

// NewNetworkSafeRetryClient retries transport errors, and gateway timeouts
// only for requests that are safe to repeat.
func NewNetworkSafeRetryClient(
	delegate Client,
	maxAttempts uint,
	retryDelay time.Duration,
	logger boshlog.Logger,
) RetryClient {
	return &retryClient{
		delegate:              delegate,
		maxAttempts:           maxAttempts,
		retryDelay:            retryDelay,
		clock:                 clock.NewClock(),
		logger:                logger,
		isResponseAttemptable: isNetworkFailure,
	}
}

func NewDefaultRetryClient(
	maxAttempts uint,
	retryDelay time.Duration,
	logger boshlog.Logger,
) RetryClient {
	return NewRetryClient(&http.Client{}, maxAttempts, retryDelay, logger)
}

func isFailedResponse(_ *http.Request, resp *http.Response, err error) (bool, error) {
	if err != nil {
		return true, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return true, bosherr.Errorf("Request failed, response: %s", resp.Status)
	}

	return false, nil
}

func isNetworkFailure(req *http.Request, resp *http.Response, err error) (bool, error) {
	if err != nil {
		return true, bosherr.WrapError(err, "Retry")
	}

	isSafeMethod := req.Method == "" || req.Method == http.MethodGet || req.Method == http.MethodHead
	if isSafeMethod && (resp.StatusCode == http.StatusGatewayTimeout || resp.StatusCode == http.StatusServiceUnavailable) {
		return true, bosherr.Errorf("Request failed, response: %d", resp.StatusCode)
	}

	return false, nil
}

func (r *retryClient) Do(req *http.Request) (*http.Response, error) {
	b := &backoff.Backoff{
		Min:    r.retryDelay,
		Max:    r.retryDelay * maxDelayFactor,
		Factor: 2,
	}

	var (
		resp *http.Response
		err  error
	)

	for attempt := uint(1); ; attempt++ {
		if attempt > 1 {
			if err := r.rewindBody(req); err != nil {
				return resp, err
			}
		}

		r.logger.Debug(retryClientLogTag, "Making attempt #%d for %s %s", attempt, req.Method, req.URL)

		var delegateErr error
		resp, delegateErr = r.delegate.Do(req)

		var retry bool
		retry, err = r.isResponseAttemptable(req, resp, delegateErr)
		if !retry {
			return resp, nil
		}

		if attempt >= r.maxAttempts {
			return resp, err
		}

		r.logger.Debug(retryClientLogTag, "Attempt #%d failed: %s", attempt, err)
		discardBody(resp)

		if err := r.wait(req, b); err != nil {
			return nil, err
		}
	}
}

func (r *retryClient) wait(req *http.Request, b *backoff.Backoff) error {
	if r.retryDelay <= 0 {
		return nil
	}

	timer := r.clock.NewTimer(b.Duration())
	defer timer.Stop()

	select {
	case <-req.Context().Done():
		return req.Context().Err()
	case <-timer.C():
		return nil
	}
}

func (r *retryClient) rewindBody(req *http.Request) error {
	if req.Body == nil || req.GetBody == nil {
		return nil
	}

	body, err := req.GetBody()
	if err != nil {
		return bosherr.WrapError(err, "Rewinding request body")
	}

	req.Body = body
	return nil
}

func discardBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}

	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck
	_ = resp.Body.Close()                 //nolint:errcheck
}

func (r *retryClient) GetWithHeaders(url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}

	for key, value := range headers {
		req.Header.Add(key, value)
	}

	return r.Do(req)
}

func (r *retryClient) Get(url string) (*http.Response, error) {
	return r.GetWithHeaders(url, map[string]string{})
}
