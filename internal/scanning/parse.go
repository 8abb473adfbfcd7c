package scanning

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// dateFormats are the formats models commonly emit despite the prompt.
var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
}

// parseInvoiceJSON parses the JSON response from the model into an
// extraction payload. Dates are canonicalized to YYYY-MM-DD and blanked
// when unparseable; the vendor name is trimmed but never defaulted, so a
// payload with no vendor stays visibly unusable downstream.
func parseInvoiceJSON(text string) (*InvoiceData, error) {
	text = strings.TrimSpace(text)

	// Remove markdown code blocks if present
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}
	text = text[startIdx : endIdx+1]

	var data InvoiceData
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	data.VendorName = strings.TrimSpace(data.VendorName)
	data.Date = canonicalDate(data.Date)
	data.DueDate = canonicalDate(data.DueDate)
	data.Currency = strings.ToUpper(strings.TrimSpace(data.Currency))
	data.Category = strings.TrimSpace(data.Category)

	return &data, nil
}

// canonicalDate normalizes a date string to YYYY-MM-DD, returning "" when
// no known format matches.
func canonicalDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, format := range dateFormats {
		if d, err := time.Parse(format, s); err == nil {
			return d.Format("2006-01-02")
		}
	}
	return ""
}
