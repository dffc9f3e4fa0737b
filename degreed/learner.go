package degreed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/eh7/edx-enterprise/publisher"
	"github.com/eh7/edx-enterprise/transmission"
)

const completionDateFormat = "2006-01-02"

// CompletionRecord is one learner's course status ready for transmission.
type CompletionRecord struct {
	OrgCode       string
	EmployeeID    string
	CourseRunID   string
	CompletedDate time.Time
	IsCompleted   bool
}

var _ transmission.LearnerDataRecord = CompletionRecord{}

// Serialize renders the completion payload. The completion date is only sent
// for completed records.
func (r CompletionRecord) Serialize() ([]byte, error) {
	completion := Completion{
		EmployeeID: r.EmployeeID,
		ID:         r.CourseRunID,
	}
	if r.IsCompleted {
		completion.CompletionDate = r.CompletedDate.UTC().Format(completionDateFormat)
	}

	return json.Marshal(CompletionPayload{
		OrgCode:     r.OrgCode,
		Completions: []Completion{completion},
	})
}

// Completed reports whether the learner completed the course run.
func (r CompletionRecord) Completed() bool {
	return r.IsCompleted
}

// CourseID returns the course run identifier.
func (r CompletionRecord) CourseID() string {
	return r.CourseRunID
}

// LearnerExporter builds completion records for one enterprise customer.
type LearnerExporter struct {
	orgCode   string
	userAgent string
}

var _ transmission.LearnerDataExporter = (*LearnerExporter)(nil)

// NewLearnerExporter creates an exporter for the Degreed company orgCode.
func NewLearnerExporter(orgCode, userAgent string) *LearnerExporter {
	return &LearnerExporter{orgCode: orgCode, userAgent: userAgent}
}

// UserAgent returns the identity the exporter was created with.
func (e *LearnerExporter) UserAgent() string {
	return e.userAgent
}

// Export returns one record for t. A learner is identified by email; a
// transmission without a passing grade or completion date withdraws the
// completion.
func (e *LearnerExporter) Export(_ context.Context, t transmission.LearnerTransmission) ([]transmission.LearnerDataRecord, error) {
	if t.Learner.Email == "" {
		return nil, fmt.Errorf("degreed: learner %d has no email address", t.Learner.ID)
	}
	if t.CourseRunID == "" {
		return nil, errors.New("degreed: course run ID is required")
	}

	return []transmission.LearnerDataRecord{CompletionRecord{
		OrgCode:       e.orgCode,
		EmployeeID:    t.Learner.Email,
		CourseRunID:   t.CourseRunID,
		CompletedDate: t.CompletedDate,
		IsCompleted:   t.IsPassing && !t.CompletedDate.IsZero(),
	}}, nil
}

// CompletionClient sends completion payloads.
type CompletionClient interface {
	CreateCourseCompletion(ctx context.Context, userID string, payload any) (Result, error)
	DeleteCourseCompletion(ctx context.Context, userID string, payload any) (Result, error)
}

// LearnerTransmitter sends exported records and publishes an audit event
// for each attempt.
type LearnerTransmitter struct {
	client    CompletionClient
	customer  string
	publisher publisher.Publisher
	logger    *zap.Logger
}

var _ transmission.LearnerDataTransmitter = (*LearnerTransmitter)(nil)

// NewLearnerTransmitter creates a transmitter for the enterprise customer
// identified by customer. A nil publisher or logger discards output.
func NewLearnerTransmitter(client CompletionClient, customer string, pub publisher.Publisher, logger *zap.Logger) *LearnerTransmitter {
	if pub == nil {
		pub = publisher.NewNopPublisher()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LearnerTransmitter{
		client:    client,
		customer:  customer,
		publisher: pub,
		logger:    logger,
	}
}

// Transmit exports t and sends every record: completed records are created,
// the others are deleted. Non-2xx answers are reported as *StatusError. All
// records are attempted; the failures are returned joined.
func (tr *LearnerTransmitter) Transmit(ctx context.Context, exporter transmission.LearnerDataExporter, t transmission.LearnerTransmission) error {
	records, err := exporter.Export(ctx, t)
	if err != nil {
		return fmt.Errorf("degreed: export learner data: %w", err)
	}

	var errs []error
	for _, record := range records {
		if err := tr.send(ctx, t.Learner.Username, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (tr *LearnerTransmitter) send(ctx context.Context, userID string, record transmission.LearnerDataRecord) error {
	body, err := record.Serialize()
	if err != nil {
		return fmt.Errorf("degreed: serialize record for %s: %w", record.CourseID(), err)
	}

	method := http.MethodPost
	send := tr.client.CreateCourseCompletion
	if !record.Completed() {
		method = http.MethodDelete
		send = tr.client.DeleteCourseCompletion
	}

	result, err := send(ctx, userID, body)
	tr.audit(ctx, method, result.StatusCode, body)
	if err != nil {
		return fmt.Errorf("degreed: %s completion for %s: %w", method, record.CourseID(), err)
	}

	tr.logger.Info("degreed: learner data transmitted",
		zap.String("customer", tr.customer),
		zap.String("course_id", record.CourseID()),
		zap.String("method", method),
		zap.Int("status", result.StatusCode))

	if !result.OK() {
		return &StatusError{Method: method, Kind: KindCompletion, CourseID: record.CourseID(), Result: result}
	}
	return nil
}

// audit failures are logged, never returned.
func (tr *LearnerTransmitter) audit(ctx context.Context, method string, status int, body []byte) {
	event, err := publisher.NewEvent(publisher.Transmission{
		Channel:    ChannelCode,
		Customer:   tr.customer,
		Kind:       string(KindCompletion),
		Method:     method,
		StatusCode: status,
		Record:     body,
	})
	if err == nil {
		err = tr.publisher.Publish(ctx, event)
	}
	if err != nil {
		tr.logger.Warn("degreed: failed to publish transmission event", zap.Error(err))
	}
}
