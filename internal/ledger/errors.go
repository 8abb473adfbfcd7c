package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// ErrVendorMissing is returned when an extraction payload carries no usable
// vendor name. It is recoverable: the caller routes the user to manual
// entry instead of discarding the capture.
var ErrVendorMissing = errors.New("extraction contains no vendor name")

// ExtractionError wraps a failure in the capture/extraction path. All
// extraction failures are recoverable; the partial data travels with the
// error so the manual form can be pre-filled.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed: %s", e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// FieldError is a single validation failure with a user-facing message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects the structural problems found in a candidate
// invoice. A non-empty value blocks save; the data is never dropped.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return "invalid invoice: " + strings.Join(msgs, "; ")
}

// StorageError wraps a persistence failure. Ledger durability is the whole
// point of the system, so these are surfaced, never swallowed.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
