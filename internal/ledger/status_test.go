package ledger

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DeriveStatus", func() {
	var (
		invoice *Invoice
		now     time.Time
		status  Status
	)

	BeforeEach(func() {
		now = time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)
		invoice = &Invoice{
			Status:  StatusUnpaid,
			DueDate: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
		}
	})

	JustBeforeEach(func() {
		status = DeriveStatus(invoice, now)
	})

	When("the invoice is unpaid with a future due date", func() {
		It("reports UNPAID", func() {
			Expect(status).To(Equal(StatusUnpaid))
		})
	})

	When("the invoice is unpaid and due today", func() {
		BeforeEach(func() {
			invoice.DueDate = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
		})

		It("reports UNPAID, not OVERDUE", func() {
			Expect(status).To(Equal(StatusUnpaid))
		})
	})

	When("the invoice is unpaid and past due", func() {
		BeforeEach(func() {
			invoice.DueDate = time.Date(2024, 1, 9, 23, 59, 0, 0, time.UTC)
		})

		It("reports OVERDUE", func() {
			Expect(status).To(Equal(StatusOverdue))
		})
	})

	When("the invoice is paid", func() {
		BeforeEach(func() {
			invoice.Status = StatusPaid
		})

		It("reports PAID", func() {
			Expect(status).To(Equal(StatusPaid))
		})

		When("the due date is long past", func() {
			BeforeEach(func() {
				invoice.DueDate = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
			})

			It("still reports PAID", func() {
				Expect(status).To(Equal(StatusPaid))
			})
		})
	})
})

var _ = Describe("IsDueSoon", func() {
	due := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	It("is true when the due date is within the next three days", func() {
		now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
		Expect(IsDueSoon(due, now)).To(BeTrue())
	})

	It("is true on the due date itself", func() {
		now := time.Date(2024, 1, 3, 23, 0, 0, 0, time.UTC)
		Expect(IsDueSoon(due, now)).To(BeTrue())
	})

	It("is true exactly three days ahead", func() {
		now := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
		Expect(IsDueSoon(due, now)).To(BeTrue())
	})

	It("is false more than three days ahead", func() {
		now := time.Date(2023, 12, 30, 0, 0, 0, 0, time.UTC)
		Expect(IsDueSoon(due, now)).To(BeFalse())
	})

	It("is false once the due date has passed", func() {
		now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
		Expect(IsDueSoon(due, now)).To(BeFalse())
	})
})
