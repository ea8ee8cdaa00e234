package ovh

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testAppKey      = "APPLICATION_KEY"
	testAppSecret   = "APPLICATION_SECRET"
	testConsumerKey = "CONSUMER_KEY"
	testLocalTime   = 1566485765
	testServerTime  = 1566485767
	testBaseURL     = "https://eu.api.ovh.com/1.0"
)

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

type recordedRequest struct {
	Method  string
	URL     string
	Header  http.Header
	Body    []byte
	HasBody bool
}

// fakeAPI answers /auth/time itself and hands every other request to handler.
type fakeAPI struct {
	mu        sync.Mutex
	requests  []recordedRequest
	timeCalls atomic.Int32

	timeHandler func() (*http.Response, error)
	handler     func(*http.Request) (*http.Response, error)
}

func (f *fakeAPI) Do(r *http.Request) (*http.Response, error) {
	rec := recordedRequest{Method: r.Method, URL: r.URL.String(), Header: r.Header.Clone()}
	if r.Body != nil {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		rec.Body, rec.HasBody = b, true
	}

	if r.URL.Path == "/1.0"+EndpointTime {
		f.timeCalls.Add(1)
		if f.timeHandler != nil {
			return f.timeHandler()
		}
		return newResponse(http.StatusOK, "1566485767"), nil
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()
	if f.handler == nil {
		return newResponse(http.StatusOK, "null"), nil
	}
	return f.handler(r)
}

func (f *fakeAPI) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func newTestClient(t *testing.T, api *fakeAPI, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{
		WithHTTPClient(api),
		WithClock(fixedClock{t: time.Unix(testLocalTime, 0)}),
	}, opts...)
	c, err := NewClient("ovh-eu", testAppKey, testAppSecret, testConsumerKey, opts...)
	require.NoError(t, err)
	return c
}

func requireKind(t *testing.T, err error, want Kind) {
	t.Helper()
	require.Error(t, err)
	got, ok := KindOf(err)
	require.True(t, ok, "not a client error: %v", err)
	require.Equal(t, want, got, "unexpected error: %v", err)
}
