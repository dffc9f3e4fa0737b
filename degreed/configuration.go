package degreed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/eh7/edx-enterprise/publisher"
	"github.com/eh7/edx-enterprise/transmission"
)

// CustomerConfiguration is one enterprise customer's Degreed configuration.
type CustomerConfiguration struct {
	// CustomerUUID and CustomerName identify the enterprise customer.
	CustomerUUID string
	CustomerName string

	Enabled              bool
	RealTimeTransmission bool

	Provider ProviderConfig

	// Publisher receives an audit event per transmission. Nil discards them.
	Publisher publisher.Publisher

	// Logger is shared by the clients and transmitters built from the configuration.
	Logger *zap.Logger

	// ClientOptions are applied to every Client built from the configuration.
	ClientOptions []Option
}

var _ transmission.ChannelConfiguration = (*CustomerConfiguration)(nil)

func (c *CustomerConfiguration) String() string {
	return fmt.Sprintf("<DegreedEnterpriseCustomerConfiguration for Enterprise %s>", c.CustomerName)
}

// ChannelCode returns "degreed".
func (c *CustomerConfiguration) ChannelCode() string {
	return ChannelCode
}

// Active reports whether the configuration is enabled.
func (c *CustomerConfiguration) Active() bool {
	return c.Enabled
}

// RealTimeLearnerTransmission reports whether completions are sent as they happen.
func (c *CustomerConfiguration) RealTimeLearnerTransmission() bool {
	return c.RealTimeTransmission
}

// LearnerDataExporter returns an exporter for the customer's company.
func (c *CustomerConfiguration) LearnerDataExporter(userAgent string) transmission.LearnerDataExporter {
	return NewLearnerExporter(c.Provider.CompanyID, userAgent)
}

// LearnerDataTransmitter builds a transmitter over a new Client, so every
// caller owns its token cache.
func (c *CustomerConfiguration) LearnerDataTransmitter() (transmission.LearnerDataTransmitter, error) {
	client, err := c.NewClient(context.Background())
	if err != nil {
		return nil, err
	}
	return NewLearnerTransmitter(client, c.CustomerUUID, c.Publisher, c.Logger), nil
}

// NewClient builds a Client for the customer's provider settings.
func (c *CustomerConfiguration) NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	all := make([]Option, 0, len(c.ClientOptions)+len(opts)+1)
	all = append(all, WithLogger(c.Logger))
	all = append(all, c.ClientOptions...)
	all = append(all, opts...)

	client, err := NewClient(ctx, c.Provider, all...)
	if err != nil {
		return nil, fmt.Errorf("degreed: client for %s: %w", c, err)
	}
	return client, nil
}
