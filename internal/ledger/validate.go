package ledger

import (
	"fmt"
	"strings"
)

// Validate checks a candidate invoice for the structural completeness
// required before it may be saved. It returns ValidationErrors listing
// every problem, or nil when the invoice is saveable.
//
// Note dueDate >= date is expected but deliberately not enforced here;
// back-dated due dates are allowed.
func Validate(inv *Invoice) error {
	var errs ValidationErrors

	if strings.TrimSpace(inv.VendorName) == "" {
		errs = append(errs, FieldError{Field: "vendor_name", Message: "vendor name is required"})
	}
	if inv.Date.IsZero() {
		errs = append(errs, FieldError{Field: "date", Message: "invoice date is required"})
	}
	if inv.DueDate.IsZero() {
		errs = append(errs, FieldError{Field: "due_date", Message: "due date is required"})
	}
	if len(inv.Items) == 0 {
		errs = append(errs, FieldError{Field: "items", Message: "at least one line item is required"})
	}
	for i, it := range inv.Items {
		if strings.TrimSpace(it.Description) == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("items[%d].description", i),
				Message: "description is required",
			})
		}
		if it.Quantity <= 0 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "quantity must be greater than zero",
			})
		}
		if it.Rate < 0 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("items[%d].rate", i),
				Message: "rate must not be negative",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// IsValid reports whether the invoice passes Validate. Used as the
// auto-save gate after extraction; an invalid draft routes to manual
// review rather than being rejected.
func IsValid(inv *Invoice) bool {
	return Validate(inv) == nil
}
