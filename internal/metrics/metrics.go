// Package metrics holds the Prometheus collectors shared by the token manager
// and the channel clients.
package metrics

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "integrated_channels"

// Token fetch outcomes.
const (
	OutcomeSuccess        = "success"
	OutcomeAuthentication = "authentication_error"
	OutcomeTransport      = "transport_error"
)

// Recorder records token fetches and resource transmissions.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	tokenFetches  *prometheus.CounterVec
	transmissions *prometheus.CounterVec
}

// NewRecorder creates a Recorder and registers its collectors with reg.
// Collectors that are already registered on reg are reused.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		return nil, errors.New("metrics: registerer is required")
	}

	tokenFetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_fetches_total",
		Help:      "OAuth2 token endpoint round-trips by outcome.",
	}, []string{"outcome"})

	transmissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transmissions_total",
		Help:      "Resource endpoint requests by channel, resource kind, method and status code.",
	}, []string{"channel", "kind", "method", "code"})

	var err error
	if tokenFetches, err = register(reg, tokenFetches); err != nil {
		return nil, err
	}
	if transmissions, err = register(reg, transmissions); err != nil {
		return nil, err
	}

	return &Recorder{
		tokenFetches:  tokenFetches,
		transmissions: transmissions,
	}, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("metrics: register collector: %w", err)
	}
	return c, nil
}

// TokenFetched counts one token endpoint round-trip.
func (r *Recorder) TokenFetched(outcome string) {
	if r == nil {
		return
	}
	r.tokenFetches.WithLabelValues(outcome).Inc()
}

// Transmission counts one resource request. A statusCode of 0 means the
// request failed before a response was received.
func (r *Recorder) Transmission(channel, kind, method string, statusCode int) {
	if r == nil {
		return
	}
	code := "error"
	if statusCode > 0 {
		code = strconv.Itoa(statusCode)
	}
	r.transmissions.WithLabelValues(channel, kind, method, code).Inc()
}
