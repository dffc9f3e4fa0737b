package transmission

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrLearnerNotFound is returned by a UserDirectory that does not know a username.
var ErrLearnerNotFound = errors.New("transmission: learner not found")

// Learner identifies a user of the LMS.
type Learner struct {
	ID       int64
	Username string
	Email    string
}

// LearnerTransmission carries the data handed to a channel transmitter for
// one learner and one course run.
type LearnerTransmission struct {
	Learner       Learner
	CourseRunID   string
	CompletedDate time.Time
	Grade         string
	IsPassing     bool
}

// LearnerDataRecord is one channel-specific record produced by an exporter.
type LearnerDataRecord interface {
	// Serialize renders the request body for the channel.
	Serialize() ([]byte, error)

	// Completed reports whether the record marks the course as completed.
	Completed() bool

	// CourseID is the course run the record refers to.
	CourseID() string
}

// LearnerDataExporter turns a transmission into channel records.
type LearnerDataExporter interface {
	Export(ctx context.Context, t LearnerTransmission) ([]LearnerDataRecord, error)
}

// LearnerDataTransmitter sends the records produced by an exporter.
type LearnerDataTransmitter interface {
	Transmit(ctx context.Context, exporter LearnerDataExporter, t LearnerTransmission) error
}

// ChannelConfiguration is one enterprise customer's configuration for one
// integrated channel.
type ChannelConfiguration interface {
	fmt.Stringer

	// ChannelCode names the channel, e.g. "degreed".
	ChannelCode() string

	// Active reports whether the configuration is enabled at all.
	Active() bool

	// RealTimeLearnerTransmission reports whether learner data is sent as
	// soon as it is available.
	RealTimeLearnerTransmission() bool

	// LearnerDataExporter returns an exporter identifying itself with userAgent.
	LearnerDataExporter(userAgent string) LearnerDataExporter

	// LearnerDataTransmitter returns a transmitter owned by the caller.
	LearnerDataTransmitter() (LearnerDataTransmitter, error)
}

// UserDirectory resolves usernames.
type UserDirectory interface {
	LookupLearner(ctx context.Context, username string) (Learner, error)
}

// ConfigurationStore lists the channel configurations that apply to a learner.
type ConfigurationStore interface {
	ConfigurationsForLearner(ctx context.Context, learner Learner) ([]ChannelConfiguration, error)
}
