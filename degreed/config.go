package degreed

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/eh7/edx-enterprise/oauth2client"
)

// ChannelCode identifies the Degreed integrated channel.
const ChannelCode = "degreed"

// Default API paths, relative to the base URL.
const (
	DefaultOAuthPath      = "oauth/token"
	DefaultCompletionPath = "api/v1/provider/completion/course"
	DefaultCoursePath     = "api/v1/provider/content/course"
)

// OAuth scopes granting access to the provider endpoints.
const (
	ScopeCompletion = "provider_completion"
	ScopeContent    = "provider_content"
)

// ResourceKind selects a provider endpoint.
type ResourceKind string

// Resource kinds.
const (
	KindCompletion ResourceKind = "completion"
	KindContent    ResourceKind = "content"
)

// ProviderConfig holds everything needed to talk to one Degreed tenant.
// It is copied into the Client at construction.
type ProviderConfig struct {
	// BaseURL is the absolute root the paths below are resolved against.
	BaseURL string

	OAuthPath      string
	CompletionPath string
	CoursePath     string

	// ClientID and ClientSecret identify the enterprise customer.
	ClientID     string
	ClientSecret string

	// Username and Password are the global Degreed API user.
	Username string
	Password string

	// CompanyID is sent as orgCode.
	CompanyID string

	// ProviderCode identifies the content provider.
	ProviderCode string

	// Scopes requested with the token. Empty means both provider scopes.
	Scopes []string
}

// WithDefaults returns a copy with empty paths and scopes defaulted.
func (c ProviderConfig) WithDefaults() ProviderConfig {
	if c.OAuthPath == "" {
		c.OAuthPath = DefaultOAuthPath
	}
	if c.CompletionPath == "" {
		c.CompletionPath = DefaultCompletionPath
	}
	if c.CoursePath == "" {
		c.CoursePath = DefaultCoursePath
	}
	if len(c.Scopes) == 0 {
		c.Scopes = []string{ScopeCompletion, ScopeContent}
	} else {
		c.Scopes = append([]string(nil), c.Scopes...)
	}
	return c
}

// Validate checks that the configuration can produce absolute URLs and
// carries client credentials.
func (c ProviderConfig) Validate() error {
	var errs []error

	if c.BaseURL == "" {
		errs = append(errs, errors.New("base URL is required"))
	} else if u, err := url.Parse(c.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("base URL: %w", err))
	} else if !u.IsAbs() || u.Host == "" {
		errs = append(errs, fmt.Errorf("base URL %q must be absolute", c.BaseURL))
	}
	if c.ClientID == "" {
		errs = append(errs, errors.New("client ID is required"))
	}
	if c.ClientSecret == "" {
		errs = append(errs, errors.New("client secret is required"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("degreed: invalid provider config: %w", err)
	}
	return nil
}

// OAuthURL returns the token endpoint URL.
func (c ProviderConfig) OAuthURL() (string, error) {
	return c.resolve(c.WithDefaults().OAuthPath)
}

// ResourceURL returns the endpoint URL for kind.
func (c ProviderConfig) ResourceURL(kind ResourceKind) (string, error) {
	c = c.WithDefaults()
	switch kind {
	case KindCompletion:
		return c.resolve(c.CompletionPath)
	case KindContent:
		return c.resolve(c.CoursePath)
	default:
		return "", fmt.Errorf("degreed: unknown resource kind %q", kind)
	}
}

// OAuth2Config returns the token exchange configuration.
func (c ProviderConfig) OAuth2Config() (oauth2client.Config, error) {
	tokenURL, err := c.OAuthURL()
	if err != nil {
		return oauth2client.Config{}, err
	}

	c = c.WithDefaults()
	return oauth2client.Config{
		TokenURL:     tokenURL,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Username:     c.Username,
		Password:     c.Password,
		Scopes:       c.Scopes,
	}, nil
}

// resolve joins path onto the base URL the way a browser resolves a relative link.
func (c ProviderConfig) resolve(path string) (string, error) {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("degreed: parse base URL: %w", err)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("degreed: parse path %q: %w", path, err)
	}
	return base.ResolveReference(ref).String(), nil
}
