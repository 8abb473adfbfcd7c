package ledger

import (
	"strings"
	"time"

	"github.com/pocketfolio/invoice-tracker/internal/scanning"
)

const (
	defaultItemDescription = "Item"
	defaultCategory        = "General"
)

// NormalizeExtraction turns a loosely-typed extraction payload into a
// well-formed invoice draft ready for validation. Missing optional fields
// are defaulted, the total is computed from the line items, and every item
// gets a fresh identifier.
//
// A payload without a usable vendor name fails with an ExtractionError so
// the caller can route to manual entry; the vendor is never silently
// defaulted.
func NormalizeExtraction(data *scanning.InvoiceData, baseCurrency string, idGen IDGenerator, now time.Time) (*Invoice, error) {
	vendor := strings.TrimSpace(data.VendorName)
	if vendor == "" {
		return nil, &ExtractionError{Reason: "no vendor name", Err: ErrVendorMissing}
	}

	items := make([]InvoiceItem, 0, len(data.Items))
	for _, it := range data.Items {
		item := InvoiceItem{
			ID:          idGen.Generate(),
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
			Rate:        it.Rate,
		}
		if item.Description == "" {
			item.Description = defaultItemDescription
		}
		if item.Quantity <= 0 {
			item.Quantity = 1
		}
		if item.Rate < 0 {
			item.Rate = 0
		}
		items = append(items, item)
	}

	date := parseDate(data.Date)
	if date.IsZero() {
		date = dateOnly(now)
	}
	dueDate := parseDate(data.DueDate)
	if dueDate.IsZero() {
		dueDate = date
	}

	currency := strings.ToUpper(strings.TrimSpace(data.Currency))
	if currency == "" {
		currency = baseCurrency
	}
	category := strings.TrimSpace(data.Category)
	if category == "" {
		category = defaultCategory
	}

	inv := &Invoice{
		ID:         idGen.Generate(),
		VendorName: vendor,
		Date:       date,
		DueDate:    dueDate,
		Items:      items,
		Category:   category,
		Tags:       dedupeTags(data.Tags),
		Type:       TypeExpense,
		Currency:   currency,
		Status:     StatusUnpaid,
		UpdatedAt:  now,
	}
	inv.Total = inv.ItemsTotal()
	return inv, nil
}

// ComputeDisplayTotal sums a raw extraction payload's line items with the
// same defaults the normalizer applies, so a draft that failed the vendor
// check can still show its total in the manual form.
func ComputeDisplayTotal(data *scanning.InvoiceData) float64 {
	var total float64
	for _, it := range data.Items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		rate := it.Rate
		if rate < 0 {
			rate = 0
		}
		total += qty * rate
	}
	return total
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// dedupeTags drops duplicate tags while keeping first-occurrence order.
func dedupeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
