// Package client talks to the URBANFLOW REST backend. Every call resolves to
// a Response envelope rather than an error, so callers branch on
// Response.Error instead of handling transport failures separately.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/urbanflow/client/internal/common"
	"github.com/urbanflow/client/internal/session"
)

const (
	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"
	mimeJSON            = "application/json"
)

// Query holds query string parameters. Empty values are dropped.
type Query map[string]string

// RequestOptions describes a single call. The zero value is a GET with no
// body and no extra headers.
type RequestOptions struct {
	Method  string
	Body    any
	Headers map[string]string
	Query   Query
}

type Client struct {
	baseURL string
	session *session.Session
	rest    *resty.Client
}

type options struct {
	timeout    time.Duration
	httpClient *http.Client
}

type Option func(*options)

// WithTimeout bounds each request. Zero leaves the transport default.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithHTTPClient sends requests through hc instead of a fresh client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// New returns a client for baseURL. The base URL is fixed for the lifetime
// of the client. A nil session is replaced by an ephemeral one.
func New(baseURL string, sess *session.Session, opts ...Option) *Client {

	var o options

	for _, opt := range opts {
		opt(&o)
	}

	var rest *resty.Client
	if o.httpClient != nil {
		rest = resty.NewWithClient(o.httpClient)
	} else {
		rest = resty.New()
	}

	rest.SetLogger(logrus.StandardLogger())

	if o.timeout > 0 {
		rest.SetTimeout(o.timeout)
	}

	rest.SetHeader("User-Agent", common.GetUserAgent())

	if sess == nil {
		sess = session.NewEphemeral()
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		session: sess,
		rest:    rest,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Session() *session.Session {
	return c.session
}

// SetToken authenticates subsequent requests with token.
func (c *Client) SetToken(ctx context.Context, token string) error {
	return c.session.SetToken(ctx, token)
}

// ClearToken returns the client to anonymous requests.
func (c *Client) ClearToken(ctx context.Context) error {
	return c.session.ClearToken(ctx)
}

// Request performs a call whose response body is decoded without a fixed
// shape.
func (c *Client) Request(ctx context.Context, endpoint string, opts RequestOptions) Response[any] {
	return Do[any](ctx, c, endpoint, opts)
}

// Do performs a call against endpoint, a path relative to the base URL, and
// decodes a successful body into T.
//
// Headers are applied in increasing precedence: the JSON content type, then
// the caller's headers, then the session's bearer token. A caller supplied
// Authorization header is only sent when the session is anonymous.
func Do[T any](ctx context.Context, c *Client, endpoint string, opts RequestOptions) Response[T] {

	if ctx == nil {
		ctx = context.Background()
	}

	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if len(method) == 0 {
		method = http.MethodGet
	}

	finalUrl := c.baseURL + endpoint

	if _, err := url.Parse(finalUrl); err != nil {
		return requestFailure[T](fmt.Errorf("invalid endpoint %q: %w", endpoint, err))
	}

	token, generation := c.session.Snapshot()

	headers := buildHeaders(opts.Headers, token)

	restBuilder := c.rest.R().
		SetContext(ctx).
		SetHeaders(headers)

	if query := opts.Query.values(); len(query) > 0 {
		restBuilder.SetQueryParams(query)
	}

	if opts.Body != nil && common.MethodAllowsBody(method) {
		body, err := json.Marshal(opts.Body)
		if err != nil {
			return requestFailure[T](fmt.Errorf("failed to encode body: %w", err))
		}
		restBuilder.SetBody(body)
	}

	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		logrus.WithFields(logrus.Fields{
			"method":  method,
			"url":     finalUrl,
			"headers": redactHeaders(headers),
		}).Traceln("Sending request")
	}

	started := time.Now()

	resp, err := common.MakeRequestFromBuilder(restBuilder, method, finalUrl)

	fields := logrus.Fields{
		"method":   method,
		"url":      finalUrl,
		"duration": time.Since(started),
	}

	if err != nil {
		if errors.Is(err, common.ErrUnsupportedMethod) {
			return requestFailure[T](err)
		}
		logrus.WithFields(fields).WithError(err).Debugln("Request failed before a response was received")
		return networkFailure[T]()
	}

	status := resp.StatusCode()
	fields["status"] = status

	logrus.WithFields(fields).Debugln("Received response")

	if len(token) > 0 && c.session.Generation() != generation {
		logrus.WithFields(fields).Debugln("Discarding response for a replaced session")
		return failure[T](KindStale, StaleSessionMessage, status)
	}

	result := decodeResponse[T](status, resp.Body())

	if !result.OK() {
		logrus.WithFields(fields).WithField("kind", result.Kind).Debugln(result.Error)
	}

	return result
}

func buildHeaders(custom map[string]string, token string) map[string]string {

	headers := map[string]string{
		headerContentType: mimeJSON,
	}

	for key, value := range custom {
		headers[http.CanonicalHeaderKey(key)] = value
	}

	if len(token) > 0 {
		headers[headerAuthorization] = "Bearer " + token
	}

	return headers
}

// redactHeaders copies headers with credentials masked for logging.
func redactHeaders(headers map[string]string) map[string]string {

	redacted := make(map[string]string, len(headers))
	for key, value := range headers {
		if key == headerAuthorization && len(value) > 0 {
			value = "[REDACTED]"
		}
		redacted[key] = value
	}

	return redacted
}

func (q Query) values() map[string]string {

	if len(q) == 0 {
		return nil
	}

	values := make(map[string]string, len(q))
	for key, value := range q {
		if len(value) == 0 {
			continue
		}
		values[key] = value
	}

	return values
}
