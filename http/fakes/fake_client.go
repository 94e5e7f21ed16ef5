package fakes

import (
	"bytes"
	"io"
	"net/http"
	"sync"
)

type doBehavior struct {
	resp *http.Response
	err  error
}

type FakeClient struct {
	StatusCode int
	CallCount  int
	Error      error
	Requests   []*http.Request

	// RequestBodies holds the body each request carried, read before the
	// response is returned.
	RequestBodies []string

	responseMessage string
	doBehaviors     []doBehavior
	mutex           sync.Mutex
}

func NewFakeClient() *FakeClient {
	return &FakeClient{}
}

func (c *FakeClient) SetMessage(message string) {
	c.responseMessage = message
}

// AddDoBehavior queues a response for the next Do call. Queued responses
// are used in order before falling back to StatusCode and Error.
func (c *FakeClient) AddDoBehavior(resp *http.Response, err error) {
	c.doBehaviors = append(c.doBehaviors, doBehavior{resp: resp, err: err})
}

// Calls is CallCount guarded for use while Do runs on another goroutine.
func (c *FakeClient) Calls() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.CallCount
}

func (c *FakeClient) Do(req *http.Request) (*http.Response, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.CallCount++
	c.Requests = append(c.Requests, req)

	if req.Body != nil {
		body, _ := io.ReadAll(req.Body) //nolint:errcheck
		c.RequestBodies = append(c.RequestBodies, string(body))
	}

	if len(c.doBehaviors) > 0 {
		behavior := c.doBehaviors[0]
		c.doBehaviors = c.doBehaviors[1:]
		if behavior.resp != nil {
			behavior.resp.Request = req
		}
		return behavior.resp, behavior.err
	}

	resp := &http.Response{
		Body:       io.NopCloser(bytes.NewBufferString(c.responseMessage)),
		StatusCode: c.StatusCode,
		Status:     http.StatusText(c.StatusCode),
		Request:    req,
	}

	return resp, c.Error
}
