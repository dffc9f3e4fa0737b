package oauth2client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/eh7/edx-enterprise/internal/testutil"
)

var fetchNow = time.Date(2017, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestFetcher(t *testing.T, provider *testutil.MockProvider, config Config) (*Fetcher, *clocktesting.FakeClock) {
	t.Helper()

	if config.TokenURL == "" {
		config.TokenURL = provider.URL("oauth/token")
	}
	clk := clocktesting.NewFakeClock(fetchNow)
	return NewFetcher(config, &http.Client{Transport: provider}, clk), clk
}

func TestFetcher_Fetch_ClientCredentials(t *testing.T) {
	provider := testutil.NewMockProvider(t)
	provider.HandleJSON(http.MethodPost, "oauth/token", http.StatusOK, testutil.TokenResponse("access_token", 1800))

	f, _ := newTestFetcher(t, provider, Config{ClientID: "client_id", ClientSecret: "client_secret"})

	token, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if token.AccessToken != "access_token" {
		t.Errorf("expected access token 'access_token', got %q", token.AccessToken)
	}
	if token.TokenType != "Bearer" {
		t.Errorf("expected default token type Bearer, got %q", token.TokenType)
	}
	if want := fetchNow.Add(1800 * time.Second); !token.Expiry.Equal(want) {
		t.Errorf("expected expiry %s, got %s", want, token.Expiry)
	}

	calls := provider.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected exactly one token request, got %d", len(calls))
	}

	call := calls[0]
	if call.Method != http.MethodPost {
		t.Errorf("expected POST, got %s", call.Method)
	}
	if ct := call.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
		t.Errorf("unexpected content type: %s", ct)
	}

	form, err := url.ParseQuery(string(call.Body))
	if err != nil {
		t.Fatalf("token request body is not a form: %v", err)
	}
	if got := form.Get("grant_type"); got != GrantTypeClientCredentials {
		t.Errorf("expected client_credentials grant, got %q", got)
	}
	if form.Has("username") || form.Has("password") {
		t.Error("client credentials grant must not send username or password")
	}

	user, pass, ok := (&http.Request{Header: call.Header}).BasicAuth()
	if !ok || user != "client_id" || pass != "client_secret" {
		t.Errorf("expected basic auth client_id/client_secret, got %q/%q (ok=%v)", user, pass, ok)
	}
}

func TestFetcher_Fetch_PasswordGrantWithScopes(t *testing.T) {
	provider := testutil.NewMockProvider(t)
	provider.HandleJSON(http.MethodPost, "oauth/token", http.StatusOK, testutil.TokenResponse("access_token", 1800))

	f, _ := newTestFetcher(t, provider, Config{
		ClientID:     "client_id",
		ClientSecret: "client_secret",
		Username:     "user_id",
		Password:     "user_pass",
		Scopes:       []string{"provider_completion", "provider_content"},
	})

	if _, err := f.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	form, err := url.ParseQuery(string(provider.Calls()[0].Body))
	if err != nil {
		t.Fatalf("token request body is not a form: %v", err)
	}

	expected := map[string]string{
		"grant_type": GrantTypePassword,
		"username":   "user_id",
		"password":   "user_pass",
		"scope":      "provider_completion provider_content",
	}
	for key, want := range expected {
		if got := form.Get(key); got != want {
			t.Errorf("form field %s: expected %q, got %q", key, want, got)
		}
	}
}

func TestFetcher_Fetch_ZeroExpiresInIsExpiredImmediately(t *testing.T) {
	provider := testutil.NewMockProvider(t)
	provider.HandleJSON(http.MethodPost, "oauth/token", http.StatusOK, testutil.TokenResponse("access_token", 0))

	f, _ := newTestFetcher(t, provider, Config{})

	token, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !token.Expiry.Equal(fetchNow) {
		t.Errorf("expected expiry at fetch time %s, got %s", fetchNow, token.Expiry)
	}
}

func TestFetcher_Fetch_MissingKeys(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		missing []string
	}{
		{name: "empty object", body: `{}`, missing: []string{"access_token", "expires_in"}},
		{name: "missing expires_in", body: `{"access_token": "access_token"}`, missing: []string{"expires_in"}},
		{name: "missing access_token", body: `{"expires_in": 1800}`, missing: []string{"access_token"}},
		{name: "null access_token", body: `{"access_token": null, "expires_in": 1800}`, missing: []string{"access_token"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := testutil.NewMockProvider(t)
			provider.HandleJSON(http.MethodPost, "oauth/token", http.StatusOK, tt.body)

			f, _ := newTestFetcher(t, provider, Config{})

			token, err := f.Fetch(context.Background())
			if err == nil {
				t.Fatalf("expected error, got token %+v", token)
			}

			var authErr *AuthenticationError
			if !errors.As(err, &authErr) {
				t.Fatalf("expected *AuthenticationError, got %T: %v", err, err)
			}
			if !errors.Is(err, ErrInvalidTokenResponse) {
				t.Error("expected error to match ErrInvalidTokenResponse")
			}
			if authErr.StatusCode != http.StatusOK {
				t.Errorf("expected status 200, got %d", authErr.StatusCode)
			}
			if len(authErr.MissingKeys) != len(tt.missing) {
				t.Fatalf("expected missing keys %v, got %v", tt.missing, authErr.MissingKeys)
			}
			for i, key := range tt.missing {
				if authErr.MissingKeys[i] != key {
					t.Errorf("expected missing key %s at %d, got %s", key, i, authErr.MissingKeys[i])
				}
			}
		})
	}
}

func TestFetcher_Fetch_ExpiresInForms(t *testing.T) {
	tests := []struct {
		name      string
		expiresIn string
		want      int64
	}{
		{name: "integer", expiresIn: `1800`, want: 1800},
		{name: "float", expiresIn: `1800.0`, want: 1800},
		{name: "fractional float", expiresIn: `1800.9`, want: 1800},
		{name: "numeric string", expiresIn: `"1800"`, want: 1800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := testutil.NewMockProvider(t)
			provider.HandleJSON(http.MethodPost, "oauth/token", http.StatusOK,
				`{"access_token": "access_token", "expires_in": `+tt.expiresIn+`}`)

			f, _ := newTestFetcher(t, provider, Config{})

			token, err := f.Fetch(context.Background())
			if err != nil {
				t.Fatalf("Fetch failed: %v", err)
			}
			if token.ExpiresIn != tt.want {
				t.Errorf("expected expires_in %d, got %d", tt.want, token.ExpiresIn)
			}
			if want := fetchNow.Add(time.Duration(tt.want) * time.Second); !token.Expiry.Equal(want) {
				t.Errorf("expected expiry %s, got %s", want, token.Expiry)
			}
		})
	}
}

func TestFetcher_Fetch_InvalidKeyType(t *testing.T) {
	tests := []struct {
		name string
		body string
		key  string
	}{
		{name: "non-numeric expires_in", body: `{"access_token": "access_token", "expires_in": "soon"}`, key: "expires_in"},
		{name: "boolean expires_in", body: `{"access_token": "access_token", "expires_in": true}`, key: "expires_in"},
		{name: "numeric access_token", body: `{"access_token": 123, "expires_in": 1800}`, key: "access_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := testutil.NewMockProvider(t)
			provider.HandleJSON(http.MethodPost, "oauth/token", http.StatusOK, tt.body)

			f, _ := newTestFetcher(t, provider, Config{})

			_, err := f.Fetch(context.Background())

			var authErr *AuthenticationError
			if !errors.As(err, &authErr) {
				t.Fatalf("expected *AuthenticationError, got %T: %v", err, err)
			}
			if len(authErr.InvalidKeys) != 1 || authErr.InvalidKeys[0] != tt.key {
				t.Errorf("expected invalid key %s, got %v", tt.key, authErr.InvalidKeys)
			}
			if len(authErr.MissingKeys) != 0 {
				t.Errorf("expected no missing keys, got %v", authErr.MissingKeys)
			}
			if msg := err.Error(); !strings.Contains(msg, "invalid value for "+tt.key) || strings.Contains(msg, "not valid JSON") {
				t.Errorf("unexpected error message: %s", msg)
			}
		})
	}
}

func TestFetcher_Fetch_EmptyBody(t *testing.T) {
	provider := testutil.NewMockProvider(t)
	provider.HandleJSON(http.MethodPost, "oauth/token", http.StatusOK, "")

	f, _ := newTestFetcher(t, provider, Config{})

	_, err := f.Fetch(context.Background())

	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthenticationError, got %T: %v", err, err)
	}
	if authErr.Err == nil {
		t.Error("expected decoding error to be recorded")
	}
}

func TestFetcher_Fetch_NonSuccessStatusWithTokenKeys(t *testing.T) {
	// Key presence is the only check: the status code does not reject a
	// body that carries both keys.
	provider := testutil.NewMockProvider(t)
	provider.HandleJSON(http.MethodPost, "oauth/token", http.StatusUnauthorized, testutil.TokenResponse("access_token", 1800))

	f, _ := newTestFetcher(t, provider, Config{})

	token, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if token.AccessToken != "access_token" {
		t.Errorf("unexpected access token: %s", token.AccessToken)
	}
}

func TestFetcher_Fetch_NonSuccessStatusWithErrorBody(t *testing.T) {
	provider := testutil.NewMockProvider(t)
	provider.HandleJSON(http.MethodPost, "oauth/token", http.StatusUnauthorized, `{"error": "invalid_client"}`)

	f, _ := newTestFetcher(t, provider, Config{})

	_, err := f.Fetch(context.Background())

	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthenticationError, got %T: %v", err, err)
	}
	if authErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", authErr.StatusCode)
	}

	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		t.Fatal("expected *oauth2.RetrieveError in chain")
	}
	if string(retrieveErr.Body) != `{"error": "invalid_client"}` {
		t.Errorf("unexpected retrieve error body: %s", retrieveErr.Body)
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		t.Error("a response that arrived is not a transport error")
	}
}

func TestFetcher_Fetch_NetworkFailure(t *testing.T) {
	provider := testutil.NewMockProvider(t)

	f, _ := newTestFetcher(t, provider, Config{})

	_, err := f.Fetch(context.Background())

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *TransportError, got %T: %v", err, err)
	}
	if transportErr.StatusCode != 0 {
		t.Errorf("expected no status code, got %d", transportErr.StatusCode)
	}
	if transportErr.Timeout() {
		t.Error("connection refusal is not a timeout")
	}
}

func TestFetcher_Fetch_UsesContextHTTPClient(t *testing.T) {
	server := testutil.NewMockOAuth2Server(t, nil)

	f := NewFetcher(Config{TokenURL: server.URL + "/token"}, nil, nil)

	token, err := f.Fetch(server.Ctx)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if token.AccessToken != "mock-access-token" {
		t.Errorf("unexpected token: %s", token.AccessToken)
	}
	if len(server.Requests()) != 1 {
		t.Errorf("expected one request through the context client, got %d", len(server.Requests()))
	}
}

func TestConfig_GrantType(t *testing.T) {
	if got := (Config{}).GrantType(); got != GrantTypeClientCredentials {
		t.Errorf("expected client_credentials, got %s", got)
	}
	if got := (Config{Username: "user"}).GrantType(); got != GrantTypePassword {
		t.Errorf("expected password, got %s", got)
	}
}
