package oauth2client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"k8s.io/utils/clock"

	"github.com/eh7/edx-enterprise/internal/metrics"
)

// TokenManager caches one bearer token and fetches a new one when the cached
// token is missing or expired. Expiry is evaluated against the injected clock
// on every call.
type TokenManager struct {
	config       Config
	fetcher      TokenFetcher
	token        *oauth2.Token
	mu           sync.Mutex
	ctx          context.Context // used by Token, which has no context parameter
	clock        clock.PassiveClock
	httpClient   *http.Client
	expiryLeeway time.Duration
	logger       *zap.Logger
	metrics      *metrics.Recorder
}

// TokenManager satisfies oauth2.TokenSource.
var _ oauth2.TokenSource = (*TokenManager)(nil)

// Option is a functional option for configuring TokenManager.
type Option func(*TokenManager)

// WithLogger sets the logger for token acquisition events.
func WithLogger(logger *zap.Logger) Option {
	return func(tm *TokenManager) {
		if logger != nil {
			tm.logger = logger
		}
	}
}

// WithClock sets the clock used to stamp and check token expiry.
func WithClock(clk clock.PassiveClock) Option {
	return func(tm *TokenManager) {
		if clk != nil {
			tm.clock = clk
		}
	}
}

// WithHTTPClient sets the client used for token endpoint requests.
func WithHTTPClient(client *http.Client) Option {
	return func(tm *TokenManager) {
		tm.httpClient = client
	}
}

// WithExpiryLeeway treats tokens as expired d before their expiry instant.
// The default is zero: a token is valid while now is before its expiry.
func WithExpiryLeeway(d time.Duration) Option {
	return func(tm *TokenManager) {
		if d >= 0 {
			tm.expiryLeeway = d
		}
	}
}

// WithMetrics records token fetch outcomes.
func WithMetrics(r *metrics.Recorder) Option {
	return func(tm *TokenManager) {
		tm.metrics = r
	}
}

// WithFetcher replaces the token endpoint exchange.
func WithFetcher(f TokenFetcher) Option {
	return func(tm *TokenManager) {
		tm.fetcher = f
	}
}

// NewTokenManager creates a token manager for the given endpoint configuration.
// No request is made until a token is first needed.
//
// Parameters:
//   - ctx: Context whose values (e.g. oauth2.HTTPClient) are kept for token requests; its cancellation is not
//   - config: Token endpoint URL, client credentials, optional username/password and scopes
//   - opts: Optional configuration options (WithLogger, WithClock, WithHTTPClient, WithExpiryLeeway, WithMetrics, WithFetcher)
func NewTokenManager(ctx context.Context, config Config, opts ...Option) *TokenManager {
	// Keep token requests independent from caller cancellations while preserving values.
	if ctx == nil {
		ctx = context.Background()
	} else {
		ctx = context.WithoutCancel(ctx)
	}

	tm := &TokenManager{
		config: config,
		ctx:    ctx,
		clock:  clock.RealClock{},
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(tm)
	}

	if tm.fetcher == nil {
		tm.fetcher = NewFetcher(config, tm.httpClient, tm.clock)
	}

	return tm
}

// TokenWithContext returns the cached token while it is valid, otherwise it
// performs exactly one token exchange and caches the result. A failed
// exchange leaves the cache empty.
func (tm *TokenManager) TokenWithContext(ctx context.Context) (*oauth2.Token, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.tokenValid() {
		return tm.token, nil
	}

	tm.token = nil

	token, err := tm.fetcher.Fetch(ctx)
	if err != nil {
		tm.metrics.TokenFetched(fetchOutcome(err))
		tm.logger.Warn("oauth2: token fetch failed",
			zap.String("token_url", tm.config.TokenURL),
			zap.Error(err))
		return nil, fmt.Errorf("oauth2: failed to fetch token: %w", err)
	}

	tm.token = token
	tm.metrics.TokenFetched(metrics.OutcomeSuccess)
	tm.logger.Info("oauth2: obtained new access token",
		zap.String("token_url", tm.config.TokenURL),
		zap.Time("expires", token.Expiry))

	return token, nil
}

// GetTokenWithContext returns a valid access token string.
//
// Parameters:
//   - ctx: Context for the token request (used for cancellation and deadlines)
//
// Returns:
//   - string: Valid access token
//   - error: *AuthenticationError or *TransportError if the fetch fails
func (tm *TokenManager) GetTokenWithContext(ctx context.Context) (string, error) {
	token, err := tm.TokenWithContext(ctx)
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

// Token implements oauth2.TokenSource using the context given to NewTokenManager.
func (tm *TokenManager) Token() (*oauth2.Token, error) {
	return tm.TokenWithContext(tm.ctx)
}

// Invalidate drops the cached token so the next call fetches a new one.
func (tm *TokenManager) Invalidate() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.token = nil
}

// Valid reports whether a cached token is present and unexpired.
func (tm *TokenManager) Valid() bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.tokenValid()
}

// tokenValid must be called with mu held.
func (tm *TokenManager) tokenValid() bool {
	if tm.token == nil || tm.token.AccessToken == "" {
		return false
	}
	return tm.clock.Now().Add(tm.expiryLeeway).Before(tm.token.Expiry)
}

func fetchOutcome(err error) string {
	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		return metrics.OutcomeAuthentication
	}
	return metrics.OutcomeTransport
}
