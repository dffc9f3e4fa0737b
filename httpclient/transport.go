package httpclient

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/eh7/edx-enterprise/oauth2client"
)

// OAuth2Transport is an http.RoundTripper that adds OAuth2 Bearer tokens to
// outgoing HTTP requests.
//
// The token is read from the TokenManager on every request, so an expired
// token is replaced before the request is sent. If the token cannot be
// obtained the request is not sent.
type OAuth2Transport struct {
	// Base is the underlying HTTP transport. If nil, http.DefaultTransport is used.
	Base http.RoundTripper

	// TokenManager provides OAuth2 access tokens.
	TokenManager *oauth2client.TokenManager

	// RetryUnauthorized replays a request once with a fresh token when the
	// server answers 401 Unauthorized. Requests whose body cannot be
	// replayed are not retried.
	RetryUnauthorized bool
}

// RoundTrip implements http.RoundTripper.
func (t *OAuth2Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.TokenManager == nil {
		return nil, errors.New("httpclient: TokenManager is nil")
	}

	token, err := t.TokenManager.GetTokenWithContext(req.Context())
	if err != nil {
		closeRequestBody(req)
		return nil, fmt.Errorf("httpclient: failed to get token: %w", err)
	}

	resp, err := t.send(req, req.Body, token)
	if err != nil || resp.StatusCode != http.StatusUnauthorized || !t.canRetry(req) {
		return resp, err
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	t.TokenManager.Invalidate()

	token, err = t.TokenManager.GetTokenWithContext(req.Context())
	if err != nil {
		return nil, fmt.Errorf("httpclient: failed to refresh token after 401: %w", err)
	}

	var body io.ReadCloser
	if req.GetBody != nil {
		body, err = req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("httpclient: failed to replay request body: %w", err)
		}
	}

	return t.send(req, body, token)
}

func (t *OAuth2Transport) canRetry(req *http.Request) bool {
	if !t.RetryUnauthorized {
		return false
	}
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}

func (t *OAuth2Transport) send(req *http.Request, body io.ReadCloser, token string) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	reqClone := req.Clone(req.Context())
	reqClone.Body = body
	reqClone.Header.Set("Authorization", "Bearer "+token)

	return t.base().RoundTrip(reqClone)
}

func (t *OAuth2Transport) base() http.RoundTripper {
	if t.Base == nil {
		return http.DefaultTransport
	}
	return t.Base
}

func closeRequestBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}

// NewOAuth2Transport creates an OAuth2Transport that retries once on 401.
// The base transport defaults to http.DefaultTransport if not specified.
func NewOAuth2Transport(tm *oauth2client.TokenManager, base http.RoundTripper) *OAuth2Transport {
	if base == nil {
		base = http.DefaultTransport
	}

	return &OAuth2Transport{
		Base:              base,
		TokenManager:      tm,
		RetryUnauthorized: true,
	}
}
