// Package ovh is a client for the OVH REST API. It signs authenticated requests
// with the application secret and consumer key, keeps the request timestamps in
// sync with the server clock and maps API failures onto typed errors.
package ovh

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	DefaultTimeout            = 180 * time.Second
	DefaultParameterSeparator = ','
)

// Client is safe for concurrent use. The application key and secret never
// change after NewClient; the consumer key can be set later once it has been
// obtained with RequestConsumerKey.
type Client struct {
	endpoint  string
	appKey    string
	appSecret string
	separator rune
	timeout   time.Duration
	http      Doer
	clock     Clock

	mu          sync.RWMutex
	consumerKey string

	delta deltaCell
}

type Option func(*Client)

// WithHTTPClient replaces the transport. It is shared by every call of the client.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.http = d
		}
	}
}

// WithClock replaces the local time source.
func WithClock(clock Clock) Option {
	return func(c *Client) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithTimeout sets the default deadline applied to each call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithParameterSeparator sets the value separator announced on batch calls.
func WithParameterSeparator(sep rune) Option {
	return func(c *Client) {
		if sep != 0 {
			c.separator = sep
		}
	}
}

// NewClient creates a client for a named endpoint (see Endpoints). No credential
// is checked at this point; consumerKey may be empty.
func NewClient(endpoint, appKey, appSecret, consumerKey string, opts ...Option) (*Client, error) {
	base, err := ResolveEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	c := &Client{
		endpoint:    base,
		appKey:      appKey,
		appSecret:   appSecret,
		consumerKey: consumerKey,
		separator:   DefaultParameterSeparator,
		timeout:     DefaultTimeout,
		http:        defaultHTTPClient(),
		clock:       SystemClock,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Endpoint() string              { return c.endpoint }
func (c *Client) ApplicationKey() string        { return c.appKey }
func (c *Client) ParameterSeparator() rune      { return c.separator }
func (c *Client) DefaultTimeout() time.Duration { return c.timeout }

func (c *Client) ConsumerKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.consumerKey
}

func (c *Client) SetConsumerKey(consumerKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consumerKey = consumerKey
}

// TimeDelta returns the offset in seconds between the server clock and the
// local clock. The first call queries /auth/time; the result is then reused for
// the lifetime of the client.
func (c *Client) TimeDelta(ctx context.Context) (int64, error) {
	return c.delta.get(ctx, c.fetchTimeDelta)
}

func (c *Client) fetchTimeDelta(ctx context.Context) (int64, error) {
	raw, err := c.Call(ctx, http.MethodGet, EndpointTime, nil, WithoutAuth())
	if err != nil {
		return 0, err
	}
	var server int64
	if err := json.Unmarshal(raw, &server); err != nil {
		return 0, newError(KindInvalidResponse, "cannot decode server time", err)
	}
	return server - c.clock.Now().Unix(), nil
}

type callOptions struct {
	noAuth  bool
	batch   bool
	query   *QueryParams
	timeout time.Duration
}

type CallOption func(*callOptions)

// WithoutAuth sends the call without consumer key, timestamp and signature.
func WithoutAuth() CallOption {
	return func(o *callOptions) { o.noAuth = true }
}

// AsBatch marks the call as addressing several resources separated by the
// client's parameter separator.
func AsBatch() CallOption {
	return func(o *callOptions) { o.batch = true }
}

// WithQuery appends the encoded parameters to the path.
func WithQuery(q *QueryParams) CallOption {
	return func(o *callOptions) { o.query = q }
}

// WithCallTimeout overrides the client default timeout for one call.
func WithCallTimeout(d time.Duration) CallOption {
	return func(o *callOptions) { o.timeout = d }
}

// Call issues a request and returns the raw body of a 2xx response. path is
// relative to the endpoint base URL. A nil body means no payload. Calls are
// authenticated unless WithoutAuth is given.
//
// The signature covers method exactly as passed while the request line uses its
// upper-case form.
func (c *Client) Call(ctx context.Context, method, path string, body []byte, opts ...CallOption) ([]byte, error) {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}

	target := c.endpoint + strings.TrimPrefix(path, "/") + o.query.Encode()

	headers := http.Header{}
	headers.Set(HeaderApplication, c.appKey)
	if body != nil && !strings.EqualFold(method, http.MethodGet) {
		headers.Set("Content-Type", "application/json")
	}
	if o.batch {
		headers.Set(HeaderBatch, string(c.separator))
	}

	if !o.noAuth {
		consumerKey := c.ConsumerKey()
		if c.appSecret == "" {
			return nil, newError(KindInvalidKey, "application secret is missing", nil)
		}
		if consumerKey == "" {
			return nil, newError(KindInvalidKey, "consumer key is missing", nil)
		}
		delta, err := c.TimeDelta(ctx)
		if err != nil {
			return nil, err
		}
		ts := c.clock.Now().Unix() + delta
		headers.Set(HeaderConsumer, consumerKey)
		headers.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
		headers.Set(HeaderSignature, Sign(c.appSecret, consumerKey, ts, method, target, body))
	}

	timeout := c.timeout
	if o.timeout > 0 {
		timeout = o.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return send(ctx, c.http, strings.ToUpper(method), target, headers, body)
}

// CallJSON is Call with a JSON encoded payload and a JSON decoded result. A
// []byte (or json.RawMessage) in is sent as is; a nil in sends no payload. An
// empty response body leaves out untouched; a nil out discards the body.
func (c *Client) CallJSON(ctx context.Context, method, path string, in, out any, opts ...CallOption) error {
	body, err := encodeBody(in)
	if err != nil {
		return err
	}
	raw, err := c.Call(ctx, method, path, body, opts...)
	if err != nil {
		return err
	}
	return decodeBody(raw, out)
}

func (c *Client) Get(ctx context.Context, path string, out any, opts ...CallOption) error {
	return c.CallJSON(ctx, http.MethodGet, path, nil, out, opts...)
}

func (c *Client) Post(ctx context.Context, path string, in, out any, opts ...CallOption) error {
	return c.CallJSON(ctx, http.MethodPost, path, in, out, opts...)
}

func (c *Client) Put(ctx context.Context, path string, in, out any, opts ...CallOption) error {
	return c.CallJSON(ctx, http.MethodPut, path, in, out, opts...)
}

func (c *Client) Delete(ctx context.Context, path string, out any, opts ...CallOption) error {
	return c.CallJSON(ctx, http.MethodDelete, path, nil, out, opts...)
}

func encodeBody(in any) ([]byte, error) {
	switch v := in.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	}
	b, err := json.Marshal(in)
	if err != nil {
		return nil, newError(KindInvalidArgument, "cannot encode request body", err)
	}
	return b, nil
}

func decodeBody(raw []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if p, ok := out.(*[]byte); ok {
		*p = append((*p)[:0], raw...)
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return newError(KindInvalidResponse, "cannot decode response body", err)
	}
	return nil
}
