package ledger

import "time"

// Status is the persisted payment status of an invoice. Only PAID and
// UNPAID are ever stored; OVERDUE exists purely as a derived, read-time
// value (see DeriveStatus).
type Status string

const (
	StatusPaid    Status = "PAID"
	StatusUnpaid  Status = "UNPAID"
	StatusOverdue Status = "OVERDUE"
)

// InvoiceType distinguishes money going out from money coming in.
type InvoiceType string

const (
	TypeExpense InvoiceType = "expense"
	TypeIncome  InvoiceType = "income"
)

// InvoiceItem is a single line on an invoice. Items belong to exactly one
// invoice and are never shared.
type InvoiceItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
}

// LineTotal returns quantity x rate for this item.
func (it InvoiceItem) LineTotal() float64 {
	return it.Quantity * it.Rate
}

// Invoice is a tracked invoice with its line items and cached total.
// Total is recomputed from the items on every save; ID is immutable after
// creation.
type Invoice struct {
	ID         string        `json:"id"`
	VendorName string        `json:"vendor_name"`
	ProfileID  string        `json:"profile_id,omitempty"`
	Date       time.Time     `json:"date"`
	DueDate    time.Time     `json:"due_date"`
	Items      []InvoiceItem `json:"items"`
	Total      float64       `json:"total"`
	Category   string        `json:"category"`
	Tags       []string      `json:"tags"`
	Type       InvoiceType   `json:"type"`
	Currency   string        `json:"currency"`
	Status     Status        `json:"status"`
	// SourceFile points at the captured image the invoice was extracted
	// from, when one exists.
	SourceFile  string    `json:"source_file,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemsTotal sums quantity x rate over all line items.
func (inv *Invoice) ItemsTotal() float64 {
	var total float64
	for _, it := range inv.Items {
		total += it.LineTotal()
	}
	return total
}

// CustomerProfile is the denormalized per-vendor aggregate. It is
// maintained entirely by the reconciler and never edited directly; vendors
// are matched case-insensitively on trimmed name.
type CustomerProfile struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	TotalSpent      float64   `json:"total_spent"`
	InvoiceCount    int       `json:"invoice_count"`
	LastInvoiceDate time.Time `json:"last_invoice_date"`
}

// BalanceSheet is a read-time view over the ledger. Totals are summed
// across currencies without conversion.
type BalanceSheet struct {
	TotalExpenses float64 `json:"total_expenses"`
	NetBalance    float64 `json:"net_balance"`
}
