package oauth2client

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrInvalidTokenResponse is matched by every AuthenticationError.
var ErrInvalidTokenResponse = errors.New("oauth2: invalid token response")

// AuthenticationError reports a token endpoint response that does not carry
// the keys required to build a token, whatever its HTTP status.
type AuthenticationError struct {
	// URL is the token endpoint that answered.
	URL string

	// StatusCode is the HTTP status of the response.
	StatusCode int

	// MissingKeys lists the required keys absent from the response body.
	MissingKeys []string

	// InvalidKeys lists keys present with a value of the wrong type.
	InvalidKeys []string

	// Body is the raw response body.
	Body []byte

	// Err is the decoding error when the body was not a JSON object or a key
	// had the wrong type, or an *oauth2.RetrieveError when the status was not
	// 2xx.
	Err error
}

func (e *AuthenticationError) Error() string {
	if len(e.InvalidKeys) > 0 {
		return fmt.Sprintf("oauth2: token response from %s (status %d) has invalid value for %s: %v", e.URL, e.StatusCode, strings.Join(e.InvalidKeys, ", "), e.Err)
	}
	if len(e.MissingKeys) == 0 {
		return fmt.Sprintf("oauth2: token response from %s (status %d) is not valid JSON: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("oauth2: token response from %s (status %d) missing required keys: %s", e.URL, e.StatusCode, strings.Join(e.MissingKeys, ", "))
}

// Unwrap returns the decoding error and ErrInvalidTokenResponse.
func (e *AuthenticationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidTokenResponse, e.Err}
	}
	return []error{ErrInvalidTokenResponse}
}

// TransportError reports a failed round-trip: the request could not be sent
// or the response could not be read.
type TransportError struct {
	// Op names the failed operation (e.g. "token request", "DELETE").
	Op string

	// URL is the request URL.
	URL string

	// StatusCode is set when a response arrived but its body could not be read.
	StatusCode int

	// Err is the underlying error.
	Err error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("oauth2: %s %s: status %d: %v", e.Op, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("oauth2: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a network timeout.
func (e *TransportError) Timeout() bool {
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}
