package ledger

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pocketfolio/invoice-tracker/internal/scanning"
)

var _ = Describe("Service", func() {
	var (
		db        *mockDB
		storage   *mockStorage
		extractor *mockExtractor
		idGen     *seqIDGenerator
		timeSrc   *mockTimeSource
		store     *Store
		service   *Service
	)

	BeforeEach(func() {
		db = newMockDB()
		storage = newMockStorage()
		extractor = newMockExtractor()
		idGen = &seqIDGenerator{prefix: "id"}
		timeSrc = &mockTimeSource{now: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}

		var err error
		store, err = NewStoreWithDeps(db, idGen, timeSrc)
		Expect(err).NotTo(HaveOccurred())
		service = NewServiceWithDeps(store, extractor, storage, idGen, timeSrc)
	})

	Describe("ScanInvoice", func() {
		var (
			result *ScanResult
			err    error
		)

		JustBeforeEach(func() {
			result, err = service.ScanInvoice(context.Background(), "invoice.jpg", []byte("fake image data"), "image/jpeg")
		})

		When("extraction succeeds and the draft is valid", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("auto-saves the invoice", func() {
				Expect(result.Saved).To(BeTrue())
				Expect(store.Invoices()).To(HaveLen(1))
			})

			It("carries the extracted fields into the saved invoice", func() {
				Expect(result.Invoice.VendorName).To(Equal("Acme Office Supply"))
				Expect(result.Invoice.Total).To(BeNumerically("~", 48.99, 1e-9))
				Expect(result.Invoice.Status).To(Equal(StatusUnpaid))
			})

			It("stores the source image and links it", func() {
				Expect(storage.files).To(HaveKey(result.Invoice.SourceFile))
				Expect(result.Invoice.ContentType).To(Equal("image/jpeg"))
			})

			It("creates the vendor profile", func() {
				profiles := store.Profiles()
				Expect(profiles).To(HaveLen(1))
				Expect(profiles[0].Name).To(Equal("Acme Office Supply"))
			})
		})

		When("the extractor fails", func() {
			BeforeEach(func() {
				extractor.extractErr = errors.New("no readable content")
			})

			It("is recoverable, not an error", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Saved).To(BeFalse())
				Expect(result.Reason).To(ContainSubstring("could not read invoice"))
			})

			It("cleans up the stored image", func() {
				Expect(storage.files).To(BeEmpty())
			})

			It("saves nothing", func() {
				Expect(store.Invoices()).To(BeEmpty())
			})
		})

		When("the payload has no vendor name", func() {
			BeforeEach(func() {
				extractor.data = &scanning.InvoiceData{
					VendorName: "",
					Items: []scanning.ItemData{
						{Description: "Coffee", Quantity: 2, Rate: 3},
					},
				}
			})

			It("routes to manual entry with the raw payload", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Saved).To(BeFalse())
				Expect(result.Extraction).NotTo(BeNil())
				Expect(result.Extraction.Items).To(HaveLen(1))
			})

			It("still computes the display total", func() {
				Expect(result.DisplayTotal).To(BeNumerically("~", 6.00, 1e-9))
			})

			It("saves nothing", func() {
				Expect(store.Invoices()).To(BeEmpty())
			})
		})

		When("the image cannot be stored", func() {
			var setupErr error

			BeforeEach(func() {
				setupErr = errors.New("storage error")
				storage.saveErr = setupErr
			})

			It("returns the error", func() {
				Expect(err).To(MatchError(setupErr))
			})
		})

		When("the ledger write fails", func() {
			BeforeEach(func() {
				db.saveLedgerErr = errors.New("disk full")
			})

			It("surfaces a storage error", func() {
				var serr *StorageError
				Expect(errors.As(err, &serr)).To(BeTrue())
			})

			It("cleans up the stored image", func() {
				Expect(storage.files).To(BeEmpty())
			})
		})
	})

	Describe("SaveInvoice", func() {
		It("saves a valid invoice", func() {
			saved, err := service.SaveInvoice(&Invoice{
				VendorName: "Acme",
				Date:       time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
				DueDate:    time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC),
				Items:      []InvoiceItem{{ID: "i1", Description: "Work", Quantity: 1, Rate: 100}},
				Type:       TypeExpense,
				Status:     StatusUnpaid,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.ID).NotTo(BeEmpty())
			Expect(store.Invoices()).To(HaveLen(1))
		})

		It("rejects an incomplete invoice with field errors", func() {
			_, err := service.SaveInvoice(&Invoice{VendorName: " "})
			var verrs ValidationErrors
			Expect(errors.As(err, &verrs)).To(BeTrue())
			Expect(store.Invoices()).To(BeEmpty())
		})
	})

	Describe("DeleteInvoices", func() {
		BeforeEach(func() {
			inv := &Invoice{
				ID:         "a",
				VendorName: "Acme",
				Date:       time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
				DueDate:    time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC),
				Items:      []InvoiceItem{{ID: "i1", Description: "Work", Quantity: 1, Rate: 100}},
				SourceFile: "a_invoice.jpg",
			}
			_, err := store.Save(inv)
			Expect(err).NotTo(HaveOccurred())
			storage.files["a_invoice.jpg"] = []byte("data")
		})

		It("removes the invoices and their source images", func() {
			Expect(service.DeleteInvoices([]string{"a"})).To(Succeed())
			Expect(store.Invoices()).To(BeEmpty())
			Expect(storage.files).NotTo(HaveKey("a_invoice.jpg"))
		})

		When("the file delete fails", func() {
			BeforeEach(func() {
				storage.deleteErr = errors.New("storage delete error")
			})

			It("still removes the invoice", func() {
				Expect(service.DeleteInvoices([]string{"a"})).To(Succeed())
				Expect(store.Invoices()).To(BeEmpty())
			})
		})
	})

	Describe("ListInvoices", func() {
		BeforeEach(func() {
			overdue := &Invoice{
				ID: "o", VendorName: "Acme",
				Date:    time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
				DueDate: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
				Items:   []InvoiceItem{{ID: "i1", Description: "Work", Quantity: 1, Rate: 10}},
				Status:  StatusUnpaid,
			}
			soon := &Invoice{
				ID: "s", VendorName: "Beta",
				Date:    time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
				DueDate: time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC),
				Items:   []InvoiceItem{{ID: "i1", Description: "Work", Quantity: 1, Rate: 10}},
				Status:  StatusUnpaid,
			}
			for _, inv := range []*Invoice{overdue, soon} {
				_, err := store.Save(inv)
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("derives status and due-soon flags without storing them", func() {
			views := map[string]*InvoiceView{}
			for _, v := range service.ListInvoices() {
				views[v.ID] = v
			}

			Expect(views["o"].DerivedStatus).To(Equal(StatusOverdue))
			Expect(views["o"].Status).To(Equal(StatusUnpaid)) // stored value untouched
			Expect(views["o"].DueSoon).To(BeFalse())

			Expect(views["s"].DerivedStatus).To(Equal(StatusUnpaid))
			Expect(views["s"].DueSoon).To(BeTrue())
		})
	})
})
