package ledger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pocketfolio/invoice-tracker/internal/scanning"
)

// extractTimeout bounds the external AI call so a hung provider cannot
// block the save path.
const extractTimeout = 60 * time.Second

// ScanResult is the outcome of a capture. Either the invoice was valid and
// auto-saved, or it needs manual review and the result carries whatever
// partial data exists to pre-fill the form.
type ScanResult struct {
	Saved bool `json:"saved"`

	// Invoice is the saved record when Saved, or the normalized draft when
	// the draft failed validation.
	Invoice *Invoice `json:"invoice,omitempty"`

	// Extraction is the raw payload when it could not be normalized at all
	// (e.g. no vendor name).
	Extraction *scanning.InvoiceData `json:"extraction,omitempty"`

	// DisplayTotal is the computed item total for an un-normalizable
	// payload, so the form can still show it.
	DisplayTotal float64 `json:"display_total,omitempty"`

	FieldErrors ValidationErrors `json:"field_errors,omitempty"`
	Reason      string           `json:"reason,omitempty"`
}

// Service wires the capture path together: image storage, AI extraction,
// normalization, validation and the ledger store.
type Service struct {
	store      *Store
	extractor  scanning.Extractor
	storage    Storage
	idGen      IDGenerator
	timeSource TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(store *Store, extractor scanning.Extractor, storage Storage) *Service {
	return NewServiceWithDeps(store, extractor, storage, &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(store *Store, extractor scanning.Extractor, storage Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		store:      store,
		extractor:  extractor,
		storage:    storage,
		idGen:      idGen,
		timeSource: timeSrc,
	}
}

// ScanInvoice runs the capture path for an uploaded invoice image: store
// the image, extract fields, normalize, validate, and auto-save when the
// draft is complete. Extraction and validation failures are recoverable
// and reported through the ScanResult, never as errors; only
// infrastructure failures (file or ledger writes) return an error.
func (s *Service) ScanInvoice(ctx context.Context, filename string, data []byte, contentType string) (*ScanResult, error) {
	fileID := s.idGen.Generate()
	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", fileID, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	extraction, err := s.extractor.ExtractInvoice(ctx, data, contentType)
	if err != nil {
		slog.Error("Failed to extract invoice",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		s.storage.Delete(savedPath)
		return &ScanResult{
			Reason: (&ExtractionError{Reason: "could not read invoice", Err: err}).Error(),
		}, nil
	}

	draft, err := NormalizeExtraction(extraction, s.store.BaseCurrency(), s.idGen, s.timeSource.Now())
	if err != nil {
		// No usable vendor name. Hand the raw payload back for manual
		// entry, with the item total still computed for display.
		s.storage.Delete(savedPath)
		return &ScanResult{
			Extraction:   extraction,
			DisplayTotal: ComputeDisplayTotal(extraction),
			Reason:       err.Error(),
		}, nil
	}

	draft.SourceFile = savedPath
	draft.ContentType = contentType

	if verr := Validate(draft); verr != nil {
		return &ScanResult{
			Invoice:     draft,
			FieldErrors: verr.(ValidationErrors),
			Reason:      "invoice is incomplete, review required",
		}, nil
	}

	saved, err := s.store.Save(draft)
	if err != nil {
		s.storage.Delete(savedPath)
		return nil, err
	}

	return &ScanResult{Saved: true, Invoice: saved}, nil
}

// SaveInvoice validates and saves a manually entered or edited invoice.
func (s *Service) SaveInvoice(inv *Invoice) (*Invoice, error) {
	if err := Validate(inv); err != nil {
		return nil, err
	}
	return s.store.Save(inv)
}

// DeleteInvoices removes the given invoices and their stored source images.
func (s *Service) DeleteInvoices(ids []string) error {
	removed, err := s.store.BulkDelete(ids)
	if err != nil {
		return err
	}
	for _, inv := range removed {
		if inv.SourceFile == "" {
			continue
		}
		if err := s.storage.Delete(inv.SourceFile); err != nil {
			slog.Warn("Failed to delete file", "filename", inv.SourceFile, "error", err)
		}
	}
	return nil
}

// MarkPaid marks the given invoices as paid.
func (s *Service) MarkPaid(ids []string) error {
	return s.store.BulkMarkPaid(ids)
}

// InvoiceView is an invoice together with its derived, read-time fields.
type InvoiceView struct {
	*Invoice
	DerivedStatus Status `json:"derived_status"`
	DueSoon       bool   `json:"due_soon"`
}

// ListInvoices returns all invoices with derived status and due-soon
// flags computed against the current time.
func (s *Service) ListInvoices() []*InvoiceView {
	now := s.timeSource.Now()
	invoices := s.store.Invoices()
	views := make([]*InvoiceView, len(invoices))
	for i, inv := range invoices {
		views[i] = &InvoiceView{
			Invoice:       inv,
			DerivedStatus: DeriveStatus(inv, now),
			DueSoon:       inv.Status != StatusPaid && IsDueSoon(inv.DueDate, now),
		}
	}
	return views
}

// Profiles returns all vendor profiles.
func (s *Service) Profiles() []*CustomerProfile {
	return s.store.Profiles()
}

// Balance returns the balance sheet view.
func (s *Service) Balance() BalanceSheet {
	return s.store.Balance()
}

// ExportCSV writes the current invoice collection as CSV.
func (s *Service) ExportCSV(w io.Writer) error {
	return WriteCSV(w, s.store.Invoices(), s.timeSource.Now())
}

// GetInvoiceFile retrieves the stored source image for an invoice.
func (s *Service) GetInvoiceFile(id string) ([]byte, string, error) {
	inv, err := s.store.Get(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting invoice: %w", err)
	}
	if inv.SourceFile == "" {
		return nil, "", fmt.Errorf("invoice has no source file: %s", id)
	}
	data, err := s.storage.Get(inv.SourceFile)
	if err != nil {
		return nil, "", fmt.Errorf("getting invoice file: %w", err)
	}
	return data, inv.ContentType, nil
}

// BaseCurrency returns the preferred currency code.
func (s *Service) BaseCurrency() string {
	return s.store.BaseCurrency()
}

// SetBaseCurrency updates the preferred currency code.
func (s *Service) SetBaseCurrency(code string) error {
	return s.store.SetBaseCurrency(code)
}
