package scanning

import "context"

// ItemData is a loosely-typed line item from the extraction payload.
// Missing fields are defaulted downstream, not here.
type ItemData struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
}

// InvoiceData contains the fields extracted from an invoice image. Every
// field is optional; the ledger normalizer decides what is usable.
type InvoiceData struct {
	VendorName string     `json:"vendor_name"`
	Date       string     `json:"date"`     // ISO 8601 (YYYY-MM-DD)
	DueDate    string     `json:"due_date"` // ISO 8601 (YYYY-MM-DD)
	Currency   string     `json:"currency"`
	Category   string     `json:"category"`
	Tags       []string   `json:"tags"`
	Items      []ItemData `json:"items"`
}

// Extractor defines the interface for AI invoice extraction.
type Extractor interface {
	// ExtractInvoice analyzes an invoice image/PDF and extracts its fields.
	// The context bounds the external call; a hung provider must not block
	// the save path.
	ExtractInvoice(ctx context.Context, imageData []byte, contentType string) (*InvoiceData, error)
	// Close releases provider resources.
	Close() error
}
