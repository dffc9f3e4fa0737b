package degreed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/eh7/edx-enterprise/httpclient"
	"github.com/eh7/edx-enterprise/internal/metrics"
	"github.com/eh7/edx-enterprise/oauth2client"
)

const maxResponseSize = 10 << 20

// Client sends completion and content data to Degreed. Each call obtains a
// bearer token from the client's own token cache, fetching a new one only
// when the cached token has expired.
//
// A Client is meant to be owned by one worker.
type Client struct {
	config     ProviderConfig
	httpClient *http.Client
	tokens     *oauth2client.TokenManager
	urls       map[ResourceKind]string
	logger     *zap.Logger
	metrics    *metrics.Recorder
}

type options struct {
	baseTransport http.RoundTripper
	timeout       time.Duration
	clock         clock.PassiveClock
	logger        *zap.Logger
	metrics       *metrics.Recorder
	expiryLeeway  time.Duration
	tlsCAFile     string
	tlsCertFile   string
	tlsKeyFile    string
	tlsEnabled    bool
}

// Option configures a Client.
type Option func(*options)

// WithBaseTransport sets the transport used for token and resource requests.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.baseTransport = rt
	}
}

// WithTimeout bounds every request. The default is httpclient.DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithClock sets the clock token expiry is evaluated against.
func WithClock(clk clock.PassiveClock) Option {
	return func(o *options) {
		o.clock = clk
	}
}

// WithLogger sets the logger for the client and its token cache.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records token fetches and transmissions.
func WithMetrics(r *metrics.Recorder) Option {
	return func(o *options) {
		o.metrics = r
	}
}

// WithExpiryLeeway treats tokens as expired d before their expiry.
func WithExpiryLeeway(d time.Duration) Option {
	return func(o *options) {
		o.expiryLeeway = d
	}
}

// WithTLS configures a custom CA and an optional client certificate.
func WithTLS(caFile, certFile, keyFile string) Option {
	return func(o *options) {
		o.tlsEnabled = true
		o.tlsCAFile = caFile
		o.tlsCertFile = certFile
		o.tlsKeyFile = keyFile
	}
}

// NewClient creates a Client for config. No request is made until the first
// call.
//
// Parameters:
//   - ctx: Context whose values are kept for token requests; its cancellation bounds nothing
//   - config: Provider endpoints and credentials, validated and completed with defaults
//   - opts: Optional configuration options (WithBaseTransport, WithTimeout, WithClock, WithLogger, WithMetrics, WithExpiryLeeway, WithTLS)
//
// Returns:
//   - *Client: Client owning its own token cache
//   - error: Validation error if config is incomplete, or a build error for TLS settings
func NewClient(ctx context.Context, config ProviderConfig, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config = config.WithDefaults()

	o := options{
		timeout: httpclient.DefaultTimeout,
		clock:   clock.RealClock{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	oauthConfig, err := config.OAuth2Config()
	if err != nil {
		return nil, err
	}

	urls := make(map[ResourceKind]string, 2)
	for _, kind := range []ResourceKind{KindCompletion, KindContent} {
		u, err := config.ResourceURL(kind)
		if err != nil {
			return nil, err
		}
		urls[kind] = u
	}

	logger := o.logger.With(zap.String("channel", ChannelCode))

	builder := httpclient.NewBuilder().
		WithOAuth2(ctx, oauthConfig,
			oauth2client.WithClock(o.clock),
			oauth2client.WithLogger(logger),
			oauth2client.WithMetrics(o.metrics),
			oauth2client.WithExpiryLeeway(o.expiryLeeway),
		).
		WithTimeout(o.timeout)
	if o.baseTransport != nil {
		builder = builder.WithBaseTransport(o.baseTransport)
	}
	if o.tlsEnabled {
		builder = builder.WithTLS(o.tlsCAFile, o.tlsCertFile, o.tlsKeyFile)
	}

	httpClient, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("degreed: build HTTP client: %w", err)
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
		tokens:     builder.TokenManager(),
		urls:       urls,
		logger:     logger,
		metrics:    o.metrics,
	}, nil
}

// Config returns the configuration the client was built with.
func (c *Client) Config() ProviderConfig {
	return c.config
}

// Create POSTs payload to the endpoint for kind.
func (c *Client) Create(ctx context.Context, kind ResourceKind, payload any) (Result, error) {
	return c.send(ctx, http.MethodPost, kind, payload)
}

// Delete sends payload to the endpoint for kind with the DELETE method.
func (c *Client) Delete(ctx context.Context, kind ResourceKind, payload any) (Result, error) {
	return c.send(ctx, http.MethodDelete, kind, payload)
}

// CreateCourseCompletion sends a completion for userID.
func (c *Client) CreateCourseCompletion(ctx context.Context, userID string, payload any) (Result, error) {
	c.logger.Debug("sending course completion", zap.String("user_id", userID))
	return c.Create(ctx, KindCompletion, payload)
}

// DeleteCourseCompletion withdraws a completion for userID.
func (c *Client) DeleteCourseCompletion(ctx context.Context, userID string, payload any) (Result, error) {
	c.logger.Debug("deleting course completion", zap.String("user_id", userID))
	return c.Delete(ctx, KindCompletion, payload)
}

// CreateCourseContent creates or updates course content.
func (c *Client) CreateCourseContent(ctx context.Context, payload any) (Result, error) {
	return c.Create(ctx, KindContent, payload)
}

// DeleteCourseContent removes course content.
func (c *Client) DeleteCourseContent(ctx context.Context, payload any) (Result, error) {
	return c.Delete(ctx, KindContent, payload)
}

func (c *Client) send(ctx context.Context, method string, kind ResourceKind, payload any) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	target, ok := c.urls[kind]
	if !ok {
		return Result{}, fmt.Errorf("degreed: unknown resource kind %q", kind)
	}

	body, err := encodePayload(payload)
	if err != nil {
		return Result{}, fmt.Errorf("degreed: encode %s payload: %w", kind, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("degreed: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.Transmission(ChannelCode, string(kind), method, 0)
		return Result{}, classify(method, target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		c.metrics.Transmission(ChannelCode, string(kind), method, 0)
		return Result{}, &oauth2client.TransportError{Op: "read " + method + " response", URL: target, StatusCode: resp.StatusCode, Err: err}
	}

	c.metrics.Transmission(ChannelCode, string(kind), method, resp.StatusCode)
	c.logger.Debug("degreed: transmission complete",
		zap.String("method", method),
		zap.String("kind", string(kind)),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode))

	return Result{StatusCode: resp.StatusCode, Body: string(data)}, nil
}

// classify surfaces token failures with their own identity and wraps any
// other failure in a TransportError.
func classify(method, target string, err error) error {
	var authErr *oauth2client.AuthenticationError
	if errors.As(err, &authErr) {
		return authErr
	}
	var transportErr *oauth2client.TransportError
	if errors.As(err, &transportErr) {
		return transportErr
	}
	return &oauth2client.TransportError{Op: method, URL: target, Err: err}
}

// encodePayload passes raw bodies through and marshals anything else as JSON.
func encodePayload(payload any) ([]byte, error) {
	switch p := payload.(type) {
	case nil:
		return []byte("{}"), nil
	case []byte:
		return p, nil
	case string:
		return []byte(p), nil
	case json.RawMessage:
		return p, nil
	default:
		return json.Marshal(p)
	}
}

// TokenManager returns the token cache backing the client.
func (c *Client) TokenManager() *oauth2client.TokenManager {
	return c.tokens
}
