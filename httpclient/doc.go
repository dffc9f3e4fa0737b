// Package httpclient builds the *http.Client used to talk to integrated
// channel providers.
//
// A fluent Builder wires an oauth2client.TokenManager into an OAuth2Transport
// so every request carries "Authorization: Bearer <token>". The token is
// checked on each request; an expired token is replaced before the request
// is sent and a failed token exchange aborts the request. A 401 answer is
// replayed once with a fresh token; nothing else is retried.
//
// # Features
//
//   - OAuth2 bearer injection with lazy, per-request expiry checks
//   - Single replay on 401 Unauthorized (WithoutUnauthorizedRetry disables it)
//   - TLS 1.2+ by default, with custom CA/mTLS and optional InsecureSkipVerify
//   - Custom timeouts, base transport override, and redirect disabling
//
// # Quick Start
//
//	b := httpclient.NewBuilder().
//	    WithOAuth2(ctx, oauth2client.Config{
//	        TokenURL:     "https://betatest.degreed.com/oauth/token",
//	        ClientID:     "client-id",
//	        ClientSecret: "client-secret",
//	    }).
//	    WithTimeout(60 * time.Second)
//
//	client, err := b.Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Token requests share the base transport and timeout of the built client.
package httpclient
