package publisher

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaTransmissionV1 is the schema identifier for transmission events.
	SchemaTransmissionV1 = "integratedchannels.transmission.v1"
)

// ErrEmptyChannel indicates an event without a channel code.
var ErrEmptyChannel = errors.New("cannot create event with empty channel")

// ErrEmptyCustomer indicates an event without an enterprise customer.
var ErrEmptyCustomer = errors.New("cannot create event with empty customer")

// ErrInvalidRecord indicates a record that is not valid JSON.
var ErrInvalidRecord = errors.New("cannot create event from invalid JSON record")

// Transmission describes one resource request sent to a channel.
type Transmission struct {
	Channel    string
	Customer   string
	Kind       string
	Method     string
	StatusCode int
	Record     []byte
}

// Event is the publish payload for a single transmission.
type Event struct {
	Schema     string          `json:"schema"`
	ID         string          `json:"id"`
	Channel    string          `json:"channel"`
	Kind       string          `json:"kind"`
	Method     string          `json:"method"`
	StatusCode int             `json:"status_code"`
	Customer   string          `json:"customer"`
	OccurredAt time.Time       `json:"occurred_at"`
	Record     json.RawMessage `json:"record,omitempty"`
}

// NewEvent creates an Event from a transmission. StatusCode 0 records a
// request that failed before a response arrived.
func NewEvent(t Transmission) (*Event, error) {
	if t.Channel == "" {
		return nil, ErrEmptyChannel
	}

	if t.Customer == "" {
		return nil, ErrEmptyCustomer
	}

	var record json.RawMessage
	if len(t.Record) > 0 {
		if !json.Valid(t.Record) {
			return nil, ErrInvalidRecord
		}
		record = append(json.RawMessage(nil), t.Record...)
	}

	return &Event{
		Schema:     SchemaTransmissionV1,
		ID:         uuid.NewString(),
		Channel:    t.Channel,
		Kind:       t.Kind,
		Method:     t.Method,
		StatusCode: t.StatusCode,
		Customer:   t.Customer,
		OccurredAt: time.Now().UTC(),
		Record:     record,
	}, nil
}
