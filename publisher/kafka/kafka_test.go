package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	basepublisher "github.com/eh7/edx-enterprise/publisher"
)

type mockWriter struct {
	writes     []Message
	deadlines  []time.Time
	writeErr   error
	closeErr   error
	closeCalls int
}

func (m *mockWriter) WriteMessages(ctx context.Context, messages ...Message) error {
	if m.writeErr != nil {
		return m.writeErr
	}

	deadline, _ := ctx.Deadline()
	m.deadlines = append(m.deadlines, deadline)
	m.writes = append(m.writes, messages...)
	return nil
}

func (m *mockWriter) Close() error {
	m.closeCalls++
	return m.closeErr
}

func buildKafkaTestEvent() *basepublisher.Event {
	event, err := basepublisher.NewEvent(basepublisher.Transmission{
		Channel:    "degreed",
		Customer:   "customer-uuid",
		Kind:       "content",
		Method:     "DELETE",
		StatusCode: 200,
		Record:     []byte(`{"courses":[{"contentId":"content-id"}]}`),
	})
	Expect(err).NotTo(HaveOccurred())
	return event
}

var _ = Describe("NewPublisher", func() {
	It("returns an error when brokers are not configured", func() {
		pub, err := NewPublisher(Config{
			Topic: "integratedchannels.transmissions.v1",
		})

		Expect(err).To(MatchError(errMissingBrokers))
		Expect(pub).To(BeNil())
	})

	It("returns an error when topic is empty", func() {
		pub, err := NewPublisher(Config{
			Brokers: []string{"localhost:9092"},
		})

		Expect(err).To(MatchError(errMissingTopic))
		Expect(pub).To(BeNil())
	})

	It("creates a publisher without dialing the brokers", func() {
		pub, err := NewPublisher(Config{
			Brokers:  []string{"localhost:9092"},
			Topic:    "integratedchannels.transmissions.v1",
			ClientID: "channelsync",
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(pub.publishTimeout).To(Equal(defaultPublishTimeout))
		Expect(pub.Close()).To(Succeed())
	})
})

var _ = Describe("Publisher", func() {
	It("writes one message keyed by customer containing the marshaled Event", func() {
		writer := &mockWriter{}
		pub, err := newPublisherWithWriter(Config{
			Topic:          "integratedchannels.transmissions.v1",
			PublishTimeout: 2 * time.Second,
		}, writer)
		Expect(err).NotTo(HaveOccurred())

		event := buildKafkaTestEvent()
		Expect(pub.Publish(context.Background(), event)).To(Succeed())

		Expect(writer.writes).To(HaveLen(1))
		Expect(string(writer.writes[0].Key)).To(Equal("customer-uuid"))
		Expect(writer.deadlines[0]).To(BeTemporally("~", time.Now().Add(2*time.Second), time.Second))

		var decoded basepublisher.Event
		Expect(json.Unmarshal(writer.writes[0].Value, &decoded)).To(Succeed())
		Expect(decoded.Schema).To(Equal(basepublisher.SchemaTransmissionV1))
		Expect(decoded.ID).To(Equal(event.ID))
		Expect(decoded.Record).To(MatchJSON(`{"courses":[{"contentId":"content-id"}]}`))
	})

	It("returns writer errors from Publish", func() {
		writer := &mockWriter{
			writeErr: errors.New("write failed"),
		}
		pub, err := newPublisherWithWriter(Config{
			Topic: "integratedchannels.transmissions.v1",
		}, writer)
		Expect(err).NotTo(HaveOccurred())

		err = pub.Publish(context.Background(), buildKafkaTestEvent())
		Expect(err).To(MatchError(ContainSubstring("write failed")))
	})

	It("returns an error from Publish for nil events", func() {
		writer := &mockWriter{}
		pub, err := newPublisherWithWriter(Config{
			Topic: "integratedchannels.transmissions.v1",
		}, writer)
		Expect(err).NotTo(HaveOccurred())

		Expect(pub.Publish(context.Background(), nil)).To(MatchError(errNilEvent))
		Expect(writer.writes).To(BeEmpty())
	})

	It("rejects events without a customer", func() {
		writer := &mockWriter{}
		pub, err := newPublisherWithWriter(Config{
			Topic: "integratedchannels.transmissions.v1",
		}, writer)
		Expect(err).NotTo(HaveOccurred())

		event := buildKafkaTestEvent()
		event.Customer = ""
		Expect(pub.Publish(context.Background(), event)).To(MatchError(basepublisher.ErrEmptyCustomer))
	})

	It("delegates Close to the underlying writer", func() {
		writer := &mockWriter{}
		pub, err := newPublisherWithWriter(Config{
			Topic: "integratedchannels.transmissions.v1",
		}, writer)
		Expect(err).NotTo(HaveOccurred())

		Expect(pub.Close()).To(Succeed())
		Expect(writer.closeCalls).To(Equal(1))
	})
})
