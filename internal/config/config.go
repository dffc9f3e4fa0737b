// Package config loads the TOML file describing learners, enterprise
// customers and their integrated channel configurations.
//
// Only the degreed channel has a client, so it is the only channel code a
// configuration may name. Other codes (e.g. cornerstone) are rejected at load
// time rather than silently skipped by the orchestrator.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/eh7/edx-enterprise/degreed"
)

// Load reads and validates the configuration file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes and validates a configuration document.
func Parse(data []byte) (*File, error) {
	f := &File{}
	md, err := toml.Decode(string(data), f)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parsing config: unknown key %q", undecoded[0].String())
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks references between learners and customers and rejects
// channels other than Degreed.
func (f *File) Validate() error {
	var errs []error

	learners := make(map[string]bool, len(f.Learners))
	for i, l := range f.Learners {
		switch {
		case l.Username == "":
			errs = append(errs, fmt.Errorf("learners[%d]: username is required", i))
		case learners[l.Username]:
			errs = append(errs, fmt.Errorf("learners[%d]: duplicate username %q", i, l.Username))
		}
		learners[l.Username] = true
	}

	customers := make(map[string]bool, len(f.Customers))
	for i, c := range f.Customers {
		switch {
		case c.UUID == "":
			errs = append(errs, fmt.Errorf("customers[%d]: uuid is required", i))
		case customers[c.UUID]:
			errs = append(errs, fmt.Errorf("customers[%d]: duplicate uuid %q", i, c.UUID))
		}
		customers[c.UUID] = true

		for _, username := range c.Learners {
			if !learners[username] {
				errs = append(errs, fmt.Errorf("customers[%d]: unknown learner %q", i, username))
			}
		}

		for j, ch := range c.Channels {
			if ch.Channel != degreed.ChannelCode {
				errs = append(errs, fmt.Errorf("customers[%d].channels[%d]: unsupported channel %q (only %q has a client)", i, j, ch.Channel, degreed.ChannelCode))
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Customer returns the customer with the given UUID.
func (f *File) Customer(uuid string) (*Customer, bool) {
	for i := range f.Customers {
		if f.Customers[i].UUID == uuid {
			return &f.Customers[i], true
		}
	}
	return nil, false
}

// DegreedProvider builds the provider settings for one of a customer's
// Degreed channels.
func (f *File) DegreedProvider(ch Channel) degreed.ProviderConfig {
	return degreed.ProviderConfig{
		BaseURL:        f.Degreed.BaseURL,
		OAuthPath:      f.Degreed.OAuthAPIPath,
		CompletionPath: f.Degreed.CompletionStatusAPIPath,
		CoursePath:     f.Degreed.CourseAPIPath,
		ClientID:       ch.Key,
		ClientSecret:   ch.Secret,
		Username:       f.Degreed.UserID,
		Password:       f.Degreed.UserPassword,
		CompanyID:      ch.DegreedCompanyID,
		ProviderCode:   ch.ProviderCode,
	}
}
