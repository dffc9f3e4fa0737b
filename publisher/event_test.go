package publisher

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func buildTransmission() Transmission {
	return Transmission{
		Channel:    "degreed",
		Customer:   "a1b2c3d4-0000-4000-8000-000000000001",
		Kind:       "completion",
		Method:     "POST",
		StatusCode: 200,
		Record:     []byte(`{"orgCode":"company_id","completions":[{"employeeId":"abc123","id":"course-v1:edX+DemoX+Demo_Course"}]}`),
	}
}

var _ = Describe("NewEvent", func() {
	It("returns an error when channel is empty", func() {
		t := buildTransmission()
		t.Channel = ""

		event, err := NewEvent(t)
		Expect(err).To(MatchError(ErrEmptyChannel))
		Expect(event).To(BeNil())
	})

	It("returns an error when customer is empty", func() {
		t := buildTransmission()
		t.Customer = ""

		event, err := NewEvent(t)
		Expect(err).To(MatchError(ErrEmptyCustomer))
		Expect(event).To(BeNil())
	})

	It("returns an error when the record is not JSON", func() {
		t := buildTransmission()
		t.Record = []byte("not json")

		event, err := NewEvent(t)
		Expect(err).To(MatchError(ErrInvalidRecord))
		Expect(event).To(BeNil())
	})

	It("sets schema, id, timestamp, and a copy of the record", func() {
		t := buildTransmission()

		before := time.Now()
		event, err := NewEvent(t)
		after := time.Now()

		Expect(err).NotTo(HaveOccurred())
		Expect(event).NotTo(BeNil())
		Expect(event.Schema).To(Equal(SchemaTransmissionV1))
		_, err = uuid.Parse(event.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(event.Channel).To(Equal("degreed"))
		Expect(event.Kind).To(Equal("completion"))
		Expect(event.Method).To(Equal("POST"))
		Expect(event.StatusCode).To(Equal(200))
		Expect(event.OccurredAt).To(BeTemporally(">=", before.Add(-time.Millisecond)))
		Expect(event.OccurredAt).To(BeTemporally("<=", after.Add(50*time.Millisecond)))
		Expect(event.Record).To(MatchJSON(t.Record))

		t.Record[0] = '['
		Expect(json.Valid(event.Record)).To(BeTrue())
	})

	It("gives every event a distinct id", func() {
		first, err := NewEvent(buildTransmission())
		Expect(err).NotTo(HaveOccurred())
		second, err := NewEvent(buildTransmission())
		Expect(err).NotTo(HaveOccurred())

		Expect(first.ID).NotTo(Equal(second.ID))
	})

	It("omits an empty record from the payload", func() {
		t := buildTransmission()
		t.Record = nil

		event, err := NewEvent(t)
		Expect(err).NotTo(HaveOccurred())

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(payload)).NotTo(ContainSubstring(`"record"`))
	})
})
