package state_test

import (
	"fabline/domain/state"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Statuses", func() {
	It("should validate order statuses", func() {
		for _, s := range state.OrderStatuses {
			Expect(state.IsValidOrderStatus(s)).To(BeTrue())
		}
		Expect(state.IsValidOrderStatus("SHIPPED")).To(BeFalse())
		Expect(state.IsValidOrderStatus("")).To(BeFalse())
	})

	It("should validate external job statuses", func() {
		for _, s := range state.ExternalJobStatuses {
			Expect(state.IsValidExternalJobStatus(s)).To(BeTrue())
		}
		Expect(state.IsValidExternalJobStatus("DONE")).To(BeFalse())
	})

	It("should settle external jobs on delivery, approval and cancellation", func() {
		Expect(state.IsSettledExternalJobStatus(state.ExternalJobDelivered)).To(BeTrue())
		Expect(state.IsSettledExternalJobStatus(state.ExternalJobApproved)).To(BeTrue())
		Expect(state.IsSettledExternalJobStatus(state.ExternalJobCancelled)).To(BeTrue())

		Expect(state.IsSettledExternalJobStatus(state.ExternalJobRequested)).To(BeFalse())
		Expect(state.IsSettledExternalJobStatus(state.ExternalJobOrdered)).To(BeFalse())
		Expect(state.IsSettledExternalJobStatus(state.ExternalJobInProgress)).To(BeFalse())
	})
})
