package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
)

// csvHeader is the export column contract. Status is the derived value,
// not the stored one.
var csvHeader = []string{"Vendor", "Date", "DueDate", "Total", "Currency", "Status", "Tags"}

// WriteCSV writes the given invoices as CSV. Totals are formatted with two
// decimals, tags are comma-joined and quoting follows RFC 4180 (fields
// containing quotes or commas are double-quote escaped by the writer).
func WriteCSV(w io.Writer, invoices []*Invoice, now time.Time) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, inv := range invoices {
		record := []string{
			inv.VendorName,
			inv.Date.Format("2006-01-02"),
			inv.DueDate.Format("2006-01-02"),
			fmt.Sprintf("%.2f", inv.Total),
			inv.Currency,
			string(DeriveStatus(inv, now)),
			strings.Join(inv.Tags, ","),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
