package testutil

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
)

// DefaultProviderBaseURL is the base URL served by MockProvider.
const DefaultProviderBaseURL = "http://betatest.degreed.com/"

// RecordedRequest is a request observed by MockProvider.
type RecordedRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// MockProvider is an in-memory third-party API. It serves registered routes
// through its RoundTrip method and records every request in arrival order.
// Requests without a registered route fail with a transport error.
type MockProvider struct {
	BaseURL string

	mu     sync.Mutex
	routes map[string][]RoundTripFunc
	calls  []RecordedRequest
}

// NewMockProvider creates an empty MockProvider rooted at DefaultProviderBaseURL.
func NewMockProvider(tb testing.TB) *MockProvider {
	tb.Helper()

	return &MockProvider{
		BaseURL: DefaultProviderBaseURL,
		routes:  make(map[string][]RoundTripFunc),
	}
}

// URL returns the absolute URL of path on the provider.
func (m *MockProvider) URL(path string) string {
	return strings.TrimSuffix(m.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

// Handle registers handler for method and path. Registering the same route
// more than once queues the handlers; the last one keeps answering once the
// queue is drained.
func (m *MockProvider) Handle(method, path string, handler RoundTripFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := routeKey(method, m.URL(path))
	m.routes[key] = append(m.routes[key], handler)
}

// HandleJSON registers a fixed JSON response for method and path.
func (m *MockProvider) HandleJSON(method, path string, status int, body string) {
	m.Handle(method, path, func(req *http.Request) (*http.Response, error) {
		return JSONResponse(req, status, body), nil
	})
}

// RoundTrip implements http.RoundTripper.
func (m *MockProvider) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		_ = req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	url := req.URL.String()

	m.mu.Lock()
	m.calls = append(m.calls, RecordedRequest{
		Method: req.Method,
		URL:    url,
		Header: req.Header.Clone(),
		Body:   body,
	})

	key := routeKey(req.Method, url)
	handlers := m.routes[key]
	var handler RoundTripFunc
	if len(handlers) > 0 {
		handler = handlers[0]
		if len(handlers) > 1 {
			m.routes[key] = handlers[1:]
		}
	}
	m.mu.Unlock()

	if handler == nil {
		return nil, fmt.Errorf("testutil: connection refused by mock provider for %s %s", req.Method, url)
	}

	return handler(req)
}

// Calls returns the recorded requests.
func (m *MockProvider) Calls() []RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]RecordedRequest, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallURLs returns the URLs of the recorded requests in order.
func (m *MockProvider) CallURLs() []string {
	calls := m.Calls()
	urls := make([]string, len(calls))
	for i, c := range calls {
		urls[i] = c.URL
	}
	return urls
}

// CountCalls returns how many recorded requests hit method and path.
func (m *MockProvider) CountCalls(method, path string) int {
	url := m.URL(path)
	n := 0
	for _, c := range m.Calls() {
		if c.Method == method && c.URL == url {
			n++
		}
	}
	return n
}

// JSONResponse builds a response with a JSON content type.
func JSONResponse(req *http.Request, status int, body string) *http.Response {
	header := make(http.Header)
	header.Set("Content-Type", "application/json")

	return &http.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}
}

// TokenResponse renders a token endpoint body.
func TokenResponse(accessToken string, expiresIn int) string {
	return fmt.Sprintf(`{"access_token": %q, "expires_in": %d}`, accessToken, expiresIn)
}

func routeKey(method, url string) string {
	return method + " " + url
}
