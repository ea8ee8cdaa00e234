package ovh

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
)

// Doer sends a single HTTP request. *http.Client satisfies it; tests substitute
// fakes.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

func defaultHTTPClient() *http.Client {
	// Deadlines come from the per-call context.
	return &http.Client{}
}

// send performs one request and returns the body of a 2xx response. Any other
// status is classified; failures before a response are transport, timeout or
// cancellation errors.
func send(ctx context.Context, c Doer, method, url string, headers http.Header, body []byte) ([]byte, error) {
	var reader io.Reader
	if method != http.MethodGet {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, newError(KindInvalidArgument, "cannot build request", err)
	}
	for k, v := range headers {
		req.Header[k] = v
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, requestError(ctx, "an error occurred while issuing the HTTP call", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, requestError(ctx, "an error occurred while reading the response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, Classify(resp.StatusCode, b)
	}
	return b, nil
}

func requestError(ctx context.Context, message string, cause error) *Error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return contextError(ctxErr)
	}
	switch {
	case errors.Is(cause, context.DeadlineExceeded):
		return newError(KindTimeout, "request deadline exceeded", cause)
	case errors.Is(cause, context.Canceled):
		return newError(KindCancelled, "request cancelled", cause)
	}
	return newError(KindTransport, message, cause)
}

func contextError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(KindTimeout, "request deadline exceeded", err)
	}
	return newError(KindCancelled, "request cancelled", err)
}
