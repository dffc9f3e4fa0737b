package oauth2client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"k8s.io/utils/clock"
)

// Grant types sent to the token endpoint.
const (
	GrantTypeClientCredentials = "client_credentials"
	GrantTypePassword          = "password"
)

const maxTokenResponseSize = 1 << 20

// Config describes a token endpoint and the credentials presented to it.
type Config struct {
	// TokenURL is the absolute token endpoint URL.
	TokenURL string

	// ClientID and ClientSecret are sent as HTTP Basic credentials.
	ClientID     string
	ClientSecret string

	// Username and Password switch the exchange to the password grant.
	Username string
	Password string

	// Scopes are sent space-separated in the scope parameter.
	Scopes []string
}

// GrantType returns the grant the configuration exchanges.
func (c Config) GrantType() string {
	if c.Username != "" {
		return GrantTypePassword
	}
	return GrantTypeClientCredentials
}

// TokenFetcher performs one token exchange.
type TokenFetcher interface {
	Fetch(ctx context.Context) (*oauth2.Token, error)
}

// Fetcher exchanges credentials for a bearer token with a single POST.
type Fetcher struct {
	config     Config
	httpClient *http.Client
	clock      clock.PassiveClock
}

// NewFetcher creates a Fetcher.
//
// Parameters:
//   - config: Token endpoint and credentials
//   - httpClient: Client for token requests (optional, falls back to the oauth2.HTTPClient context value, then http.DefaultClient)
//   - clk: Clock stamping token expiry (optional, uses wall time if nil)
func NewFetcher(config Config, httpClient *http.Client, clk clock.PassiveClock) *Fetcher {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Fetcher{
		config:     config,
		httpClient: httpClient,
		clock:      clk,
	}
}

type tokenResponse struct {
	AccessToken *string          `json:"access_token"`
	ExpiresIn   *json.RawMessage `json:"expires_in"`
	TokenType   string           `json:"token_type"`
	Scope       string           `json:"scope"`
}

// Fetch performs the exchange. The returned token expires expires_in seconds
// after the response was received.
func (f *Fetcher) Fetch(ctx context.Context) (*oauth2.Token, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := f.newTokenRequest(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := f.client(ctx).Do(req)
	if err != nil {
		return nil, &TransportError{Op: "token request", URL: f.config.TokenURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenResponseSize))
	if err != nil {
		return nil, &TransportError{Op: "read token response", URL: f.config.TokenURL, Err: err}
	}

	// Key presence decides, not the status code: a non-2xx answer carrying
	// both keys still yields a token.
	return f.parseToken(resp, body)
}

func (f *Fetcher) newTokenRequest(ctx context.Context) (*http.Request, error) {
	values := url.Values{}
	values.Set("grant_type", f.config.GrantType())
	if f.config.Username != "" {
		values.Set("username", f.config.Username)
		values.Set("password", f.config.Password)
	}
	if len(f.config.Scopes) > 0 {
		values.Set("scope", strings.Join(f.config.Scopes, " "))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.config.TokenURL, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("oauth2: failed to create token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(f.config.ClientID, f.config.ClientSecret)

	return req, nil
}

func (f *Fetcher) parseToken(resp *http.Response, body []byte) (*oauth2.Token, error) {
	status := resp.StatusCode

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		authErr := &AuthenticationError{URL: f.config.TokenURL, StatusCode: status, Body: body, Err: err}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			authErr.InvalidKeys = []string{typeErr.Field}
		}
		return nil, authErr
	}

	var missing []string
	if tr.AccessToken == nil || *tr.AccessToken == "" {
		missing = append(missing, "access_token")
	}
	if tr.ExpiresIn == nil {
		missing = append(missing, "expires_in")
	}
	if len(missing) > 0 {
		authErr := &AuthenticationError{URL: f.config.TokenURL, StatusCode: status, MissingKeys: missing, Body: body}
		if status < 200 || status > 299 {
			authErr.Err = &oauth2.RetrieveError{Response: resp, Body: body}
		}
		return nil, authErr
	}

	expiresIn, err := parseExpiresIn(*tr.ExpiresIn)
	if err != nil {
		return nil, &AuthenticationError{
			URL:         f.config.TokenURL,
			StatusCode:  status,
			InvalidKeys: []string{"expires_in"},
			Body:        body,
			Err:         err,
		}
	}

	tokenType := tr.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	token := &oauth2.Token{
		AccessToken: *tr.AccessToken,
		TokenType:   tokenType,
		Expiry:      f.clock.Now().Add(time.Duration(expiresIn) * time.Second),
		ExpiresIn:   expiresIn,
	}
	if tr.Scope != "" {
		token = token.WithExtra(map[string]interface{}{"scope": tr.Scope})
	}

	return token, nil
}

// parseExpiresIn accepts a JSON number or a string holding one. Fractional
// seconds are truncated.
func parseExpiresIn(raw json.RawMessage) (int64, error) {
	text := string(raw)
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, err
		}
		text = strings.TrimSpace(text)
	}

	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n, nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v > math.MaxInt64 || v < math.MinInt64 {
		return 0, fmt.Errorf("expires_in %s is not a number of seconds", raw)
	}
	return int64(v), nil
}

func (f *Fetcher) client(ctx context.Context) *http.Client {
	if f.httpClient != nil {
		return f.httpClient
	}
	if c, ok := ctx.Value(oauth2.HTTPClient).(*http.Client); ok && c != nil {
		return c
	}
	return http.DefaultClient
}
