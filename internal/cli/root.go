// Package cli implements the channelsync command line.
package cli

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eh7/edx-enterprise/degreed"
	"github.com/eh7/edx-enterprise/httpclient"
	"github.com/eh7/edx-enterprise/internal/config"
	"github.com/eh7/edx-enterprise/internal/metrics"
	"github.com/eh7/edx-enterprise/publisher"
	"github.com/eh7/edx-enterprise/publisher/kafka"
)

const envPrefix = "CHANNELSYNC"

const rootLongDesc string = `Transmit learner data and course content to integrated channels.

Customers, learners and channel credentials are read from a TOML file
(--config). Every flag can also be set through the environment, e.g.
CHANNELSYNC_LOG_LEVEL=debug.

Examples:
  channelsync content delete --customer <uuid> --file course.json
  channelsync completion create --customer <uuid> --file completion.json --user edx
  channelsync transmit-learner edx course-v1:edX+DemoX+Demo_Course`

const rootShortDesc string = "Transmit learner data to integrated channels"

// Option configures the root command.
type Option func(*app)

// WithTransport sends every provider request through rt.
func WithTransport(rt http.RoundTripper) Option {
	return func(a *app) {
		a.transport = rt
	}
}

// withPublisherFactory replaces the configuration-driven publisher.
func withPublisherFactory(open func(config.PublisherSettings) (publisher.Publisher, error)) Option {
	return func(a *app) {
		a.openPublisher = open
	}
}

// app holds what the commands share once setup has loaded the
// configuration.
type app struct {
	v             *viper.Viper
	transport     http.RoundTripper
	openPublisher func(config.PublisherSettings) (publisher.Publisher, error)

	logger    *zap.Logger
	registry  *prometheus.Registry
	recorder  *metrics.Recorder
	publisher publisher.Publisher
	store     *config.Store
}

// NewRootCmd builds the channelsync command tree.
func NewRootCmd(opts ...Option) *cobra.Command {
	a := &app{v: viper.New(), openPublisher: newPublisher}
	for _, opt := range opts {
		opt(a)
	}

	cmd := &cobra.Command{
		Use:          "channelsync",
		Short:        rootShortDesc,
		Long:         rootLongDesc,
		SilenceUsage: true,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.PersistentFlags()
	flags.StringP("config", "c", "channelsync.toml", "Configuration file path")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.Duration("timeout", httpclient.DefaultTimeout, "Timeout for every provider request")
	flags.String("metrics-file", "", "Write Prometheus metrics to this file on exit")

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(flags); err != nil {
		panic(fmt.Sprintf("cli: bind flags: %v", err))
	}

	cmd.AddCommand(
		newResourceCmd(a, degreed.KindCompletion),
		newResourceCmd(a, degreed.KindContent),
		newTransmitLearnerCmd(a),
	)

	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	level, err := zapcore.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	a.logger = zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(cmd.ErrOrStderr()),
		level,
	))

	a.registry = prometheus.NewRegistry()
	if a.recorder, err = metrics.NewRecorder(a.registry); err != nil {
		return err
	}

	file, err := config.Load(a.v.GetString("config"))
	if err != nil {
		return err
	}

	if a.publisher, err = a.openPublisher(file.Publisher); err != nil {
		return err
	}

	clientOpts := []degreed.Option{
		degreed.WithMetrics(a.recorder),
		degreed.WithTimeout(a.v.GetDuration("timeout")),
	}
	if a.transport != nil {
		clientOpts = append(clientOpts, degreed.WithBaseTransport(a.transport))
	}

	a.store = config.NewStore(file,
		config.WithLogger(a.logger),
		config.WithPublisher(a.publisher),
		config.WithClientOptions(clientOpts...),
	)
	return nil
}

// runE runs setup and fn, then releases what setup acquired whatever either
// returned. Cobra validates args and required flags before RunE, so a rejected
// invocation acquires nothing.
func (a *app) runE(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			err = errors.Join(err, a.teardown())
		}()
		if err := a.setup(cmd); err != nil {
			return err
		}
		return fn(cmd, args)
	}
}

func (a *app) teardown() error {
	var errs []error
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	if path := a.v.GetString("metrics-file"); path != "" && a.registry != nil {
		if err := prometheus.WriteToTextfile(path, a.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return errors.Join(errs...)
}

func newPublisher(s config.PublisherSettings) (publisher.Publisher, error) {
	if len(s.Kafka.Brokers) == 0 {
		return publisher.NewNopPublisher(), nil
	}
	p, err := kafka.NewPublisher(kafka.Config{
		Brokers:        s.Kafka.Brokers,
		Topic:          s.Kafka.Topic,
		ClientID:       s.Kafka.ClientID,
		PublishTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("kafka publisher: %w", err)
	}
	return p, nil
}
