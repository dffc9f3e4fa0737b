package transmission

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"k8s.io/utils/clock"
)

// UserAgent identifies exporters created by the Orchestrator.
const UserAgent = "celery-integrated-channels"

// PassingGrade is the grade reported for real-time transmissions.
const PassingGrade = "Pass"

// Orchestrator transmits learner data to every enabled channel configuration.
type Orchestrator struct {
	users   UserDirectory
	configs ConfigurationStore
	logger  *zap.Logger
	clock   clock.PassiveClock
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. The default discards all output.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock sets the clock used for completion dates and durations.
func WithClock(clk clock.PassiveClock) Option {
	return func(o *Orchestrator) {
		if clk != nil {
			o.clock = clk
		}
	}
}

// NewOrchestrator creates an Orchestrator over the given collaborators.
func NewOrchestrator(users UserDirectory, configs ConfigurationStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		users:   users,
		configs: configs,
		logger:  zap.NewNop(),
		clock:   clock.RealClock{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// TransmitSingleLearnerData sends the completion of courseRunID by username
// to every configuration that is active and has real-time transmission
// enabled. A failing configuration does not stop the others; all failures are
// returned joined.
func (o *Orchestrator) TransmitSingleLearnerData(ctx context.Context, username, courseRunID string) error {
	start := o.clock.Now()

	learner, err := o.users.LookupLearner(ctx, username)
	if err != nil {
		return fmt.Errorf("transmission: lookup learner %q: %w", username, err)
	}

	o.logger.Info(fmt.Sprintf("Started transmitting single learner data for user: [%s] and course [%s]", username, courseRunID))

	configs, err := o.configs.ConfigurationsForLearner(ctx, learner)
	if err != nil {
		return fmt.Errorf("transmission: list configurations for %q: %w", username, err)
	}

	var errs []error
	for _, cfg := range configs {
		if !cfg.Active() || !cfg.RealTimeLearnerTransmission() {
			o.logger.Debug("skipping configuration without real-time transmission",
				zap.String("channel", cfg.ChannelCode()),
				zap.Stringer("configuration", cfg))
			continue
		}

		o.logger.Info(fmt.Sprintf("Processing learner [%d] for integrated channel using configuration: [%s]", learner.ID, cfg))

		if err := o.transmit(ctx, cfg, learner, courseRunID); err != nil {
			o.logger.Error("learner data transmission failed",
				zap.String("channel", cfg.ChannelCode()),
				zap.Stringer("configuration", cfg),
				zap.Error(err))
			errs = append(errs, err)
		}
	}

	duration := o.clock.Since(start).Seconds()
	o.logger.Info(fmt.Sprintf("Finished transmitting single learner data for user: [%s] and course [%s] in [%.6f] seconds", username, courseRunID, duration))

	return errors.Join(errs...)
}

func (o *Orchestrator) transmit(ctx context.Context, cfg ChannelConfiguration, learner Learner, courseRunID string) error {
	transmitter, err := cfg.LearnerDataTransmitter()
	if err != nil {
		return fmt.Errorf("transmission: %s transmitter for %s: %w", cfg.ChannelCode(), cfg, err)
	}

	exporter := cfg.LearnerDataExporter(UserAgent)

	err = transmitter.Transmit(ctx, exporter, LearnerTransmission{
		Learner:       learner,
		CourseRunID:   courseRunID,
		CompletedDate: o.clock.Now(),
		Grade:         PassingGrade,
		IsPassing:     true,
	})
	if err != nil {
		return fmt.Errorf("transmission: %s transmit for %s: %w", cfg.ChannelCode(), cfg, err)
	}
	return nil
}
