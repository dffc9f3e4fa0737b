package config

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/eh7/edx-enterprise/degreed"
	"github.com/eh7/edx-enterprise/publisher"
	"github.com/eh7/edx-enterprise/transmission"
)

// ErrCustomerNotFound is returned for an unknown customer UUID.
var ErrCustomerNotFound = errors.New("config: customer not found")

// ErrChannelNotConfigured is returned when a customer has no configuration
// for the requested channel.
var ErrChannelNotConfigured = errors.New("config: channel not configured")

// Store serves a loaded File to the transmission orchestrator.
type Store struct {
	file          *File
	learners      map[string]transmission.Learner
	publisher     publisher.Publisher
	logger        *zap.Logger
	clientOptions []degreed.Option
}

var (
	_ transmission.UserDirectory      = (*Store)(nil)
	_ transmission.ConfigurationStore = (*Store)(nil)
)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithPublisher sets the audit publisher handed to channel configurations.
func WithPublisher(p publisher.Publisher) StoreOption {
	return func(s *Store) {
		s.publisher = p
	}
}

// WithLogger sets the logger handed to channel configurations.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClientOptions adds options applied to every Degreed client.
func WithClientOptions(opts ...degreed.Option) StoreOption {
	return func(s *Store) {
		s.clientOptions = append(s.clientOptions, opts...)
	}
}

// NewStore creates a Store over f.
func NewStore(f *File, opts ...StoreOption) *Store {
	s := &Store{
		file:     f,
		learners: make(map[string]transmission.Learner, len(f.Learners)),
		logger:   zap.NewNop(),
	}
	for _, l := range f.Learners {
		s.learners[l.Username] = transmission.Learner{ID: l.ID, Username: l.Username, Email: l.Email}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LookupLearner implements transmission.UserDirectory.
func (s *Store) LookupLearner(_ context.Context, username string) (transmission.Learner, error) {
	learner, ok := s.learners[username]
	if !ok {
		return transmission.Learner{}, fmt.Errorf("%w: %q", transmission.ErrLearnerNotFound, username)
	}
	return learner, nil
}

// ConfigurationsForLearner implements transmission.ConfigurationStore. It
// returns every channel configuration of every customer the learner belongs
// to, enabled or not.
func (s *Store) ConfigurationsForLearner(_ context.Context, learner transmission.Learner) ([]transmission.ChannelConfiguration, error) {
	var configs []transmission.ChannelConfiguration
	for i := range s.file.Customers {
		c := &s.file.Customers[i]
		if !slices.Contains(c.Learners, learner.Username) {
			continue
		}
		for _, ch := range c.Channels {
			configs = append(configs, s.degreedConfiguration(c, ch))
		}
	}
	return configs, nil
}

// DegreedConfiguration returns the Degreed configuration of a customer.
func (s *Store) DegreedConfiguration(customerUUID string) (*degreed.CustomerConfiguration, error) {
	c, ok := s.file.Customer(customerUUID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCustomerNotFound, customerUUID)
	}
	for _, ch := range c.Channels {
		if ch.Channel == degreed.ChannelCode {
			return s.degreedConfiguration(c, ch), nil
		}
	}
	return nil, fmt.Errorf("%w: %s for customer %q", ErrChannelNotConfigured, degreed.ChannelCode, customerUUID)
}

func (s *Store) degreedConfiguration(c *Customer, ch Channel) *degreed.CustomerConfiguration {
	return &degreed.CustomerConfiguration{
		CustomerUUID:         c.UUID,
		CustomerName:         c.Name,
		Enabled:              ch.Active,
		RealTimeTransmission: ch.RealTimeLearnerTransmission,
		Provider:             s.file.DegreedProvider(ch),
		Publisher:            s.publisher,
		Logger:               s.logger,
		ClientOptions:        s.clientOptions,
	}
}
