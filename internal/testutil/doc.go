// Package testutil provides test helpers for the integrated channel packages.
//
// MockProvider is the main fixture: an in-memory third-party API that serves
// canned responses per method and URL through its RoundTrip method and
// records every request, so tests can assert on the exact sequence of token
// and resource round-trips.
//
// # Utilities
//
//   - MockProvider, JSONResponse, TokenResponse: stub provider endpoints and capture requests
//   - NewLocalHTTPServer: start an httptest server bound to 127.0.0.1
//   - MockOAuth2Server and StaticJSONResponse: a token endpoint reachable through the oauth2.HTTPClient context value
//   - RoundTripFunc: inline http.RoundTripper implementations
//   - WriteTestCACert / WriteTestCertAndKey: temporary self-signed certificates for TLS/mTLS tests
package testutil
