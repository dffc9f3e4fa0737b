package publisher

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NopPublisher", func() {
	It("implements Publisher", func() {
		var p Publisher = NewNopPublisher()
		Expect(p).NotTo(BeNil())
	})

	It("returns nil from Publish", func() {
		p := NewNopPublisher()
		event, err := NewEvent(buildTransmission())
		Expect(err).NotTo(HaveOccurred())

		Expect(p.Publish(context.Background(), event)).To(Succeed())
	})

	It("returns nil from Close", func() {
		Expect(NewNopPublisher().Close()).To(Succeed())
	})
})
