// Package oauth2client provides the OAuth2 token lifecycle used by integrated
// channel clients.
//
// A Fetcher performs one exchange against a provider's token endpoint
// (client-credentials, or the password grant when a username is configured)
// and converts the JSON response into an *oauth2.Token whose expiry is the
// fetch instant plus expires_in seconds. A TokenManager caches that token and
// fetches a new one only when the cached token is absent or expired on the
// injected clock.
//
// # Features
//
//   - Lazy, per-call expiry checks against an injectable k8s.io/utils/clock
//   - Response shape check on key presence: a response without access_token
//     or expires_in is an *AuthenticationError, whatever its status code
//   - Network failures are a *TransportError
//   - Implements oauth2.TokenSource
//   - Optional zap logging (WithLogger) and Prometheus metrics (WithMetrics)
//
// # Quick Start
//
//	tm := oauth2client.NewTokenManager(ctx, oauth2client.Config{
//	    TokenURL:     "https://betatest.degreed.com/oauth/token",
//	    ClientID:     "client-id",
//	    ClientSecret: "client-secret",
//	    Scopes:       []string{"provider_content"},
//	})
//
//	token, err := tm.GetTokenWithContext(ctx)
//
// # Notes
//
//   - A TokenManager owns its token. Give each worker its own manager instead
//     of sharing one across goroutines that transmit for different customers.
//   - Failures are never retried here; callers decide.
package oauth2client
