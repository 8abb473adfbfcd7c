package ledger

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pocketfolio/invoice-tracker/internal/scanning"
)

var _ = Describe("NormalizeExtraction", func() {
	var (
		payload *scanning.InvoiceData
		idGen   *seqIDGenerator
		now     time.Time
		invoice *Invoice
		err     error
	)

	BeforeEach(func() {
		idGen = &seqIDGenerator{prefix: "id"}
		now = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
		payload = &scanning.InvoiceData{
			VendorName: "Acme Inc",
			Date:       "2024-01-10",
			DueDate:    "2024-02-09",
			Currency:   "EUR",
			Category:   "Office",
			Tags:       []string{"supplies", "q1"},
			Items: []scanning.ItemData{
				{Description: "Paper", Quantity: 2, Rate: 4.50},
				{Description: "Toner", Quantity: 1, Rate: 39.99},
			},
		}
	})

	JustBeforeEach(func() {
		invoice, err = NormalizeExtraction(payload, "USD", idGen, now)
	})

	When("all fields are present", func() {
		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("reproduces the payload fields exactly", func() {
			Expect(invoice.VendorName).To(Equal("Acme Inc"))
			Expect(invoice.Date).To(Equal(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)))
			Expect(invoice.DueDate).To(Equal(time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC)))
			Expect(invoice.Currency).To(Equal("EUR"))
			Expect(invoice.Category).To(Equal("Office"))
			Expect(invoice.Tags).To(Equal([]string{"supplies", "q1"}))
			Expect(invoice.Items).To(HaveLen(2))
		})

		It("recomputes the total from the items", func() {
			Expect(invoice.Total).To(BeNumerically("~", 48.99, 1e-9))
		})

		It("assigns fresh unique item identifiers", func() {
			Expect(invoice.Items[0].ID).NotTo(BeEmpty())
			Expect(invoice.Items[1].ID).NotTo(BeEmpty())
			Expect(invoice.Items[0].ID).NotTo(Equal(invoice.Items[1].ID))
		})

		It("forces status UNPAID and type expense", func() {
			Expect(invoice.Status).To(Equal(StatusUnpaid))
			Expect(invoice.Type).To(Equal(TypeExpense))
		})
	})

	When("optional fields are missing", func() {
		BeforeEach(func() {
			payload.Date = ""
			payload.DueDate = ""
			payload.Currency = ""
			payload.Category = ""
			payload.Tags = nil
			payload.Items = []scanning.ItemData{
				{Description: "", Quantity: 0, Rate: 12.00},
			}
		})

		It("defaults the item description and quantity", func() {
			Expect(invoice.Items[0].Description).To(Equal("Item"))
			Expect(invoice.Items[0].Quantity).To(Equal(1.0))
		})

		It("defaults the dates to today", func() {
			Expect(invoice.Date).To(Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
			Expect(invoice.DueDate).To(Equal(invoice.Date))
		})

		It("falls back to the preferred currency", func() {
			Expect(invoice.Currency).To(Equal("USD"))
		})

		It("defaults the category and tags", func() {
			Expect(invoice.Category).To(Equal("General"))
			Expect(invoice.Tags).To(BeEmpty())
		})

		It("computes the total with defaults applied", func() {
			Expect(invoice.Total).To(BeNumerically("~", 12.00, 1e-9))
		})
	})

	When("tags contain duplicates", func() {
		BeforeEach(func() {
			payload.Tags = []string{"office", "q1", "office", "  ", "q1"}
		})

		It("keeps first occurrences in order", func() {
			Expect(invoice.Tags).To(Equal([]string{"office", "q1"}))
		})
	})

	When("the vendor name is blank", func() {
		BeforeEach(func() {
			payload.VendorName = ""
			payload.Items = []scanning.ItemData{
				{Description: "Coffee", Quantity: 2, Rate: 3},
			}
		})

		It("fails with a recoverable extraction error", func() {
			var exErr *ExtractionError
			Expect(errors.As(err, &exErr)).To(BeTrue())
			Expect(errors.Is(err, ErrVendorMissing)).To(BeTrue())
		})

		It("still computes the display total for the manual form", func() {
			Expect(ComputeDisplayTotal(payload)).To(BeNumerically("~", 6.00, 1e-9))
		})
	})
})
