package ledger

import "strings"

// profileKey is the case-insensitive matching key for vendor names. No
// canonicalization beyond trimming and case-folding: "Acme Inc." and
// "Acme Inc" are distinct vendors.
func profileKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ReconcileProfiles recomputes the vendor aggregates affected by saving an
// invoice. previous is the stored version being replaced, or nil for a new
// invoice. The input slice is not mutated; the updated collection and the
// profile id assigned to the saving invoice are returned.
//
// When updating, the previous version's contribution is undone first
// (count and spend floored at zero), then the new version is applied to
// the matching profile, creating it if needed. Finally any profile left
// with zero invoices is dropped, except the profile just touched.
func ReconcileProfiles(profiles []*CustomerProfile, saving *Invoice, previous *Invoice, idGen IDGenerator) ([]*CustomerProfile, string) {
	updated := make([]*CustomerProfile, 0, len(profiles)+1)
	for _, p := range profiles {
		cp := *p
		updated = append(updated, &cp)
	}

	if previous != nil {
		if prev := findProfile(updated, previous.VendorName); prev != nil {
			prev.InvoiceCount--
			if prev.InvoiceCount < 0 {
				prev.InvoiceCount = 0
			}
			prev.TotalSpent -= previous.Total
			if prev.TotalSpent < 0 {
				prev.TotalSpent = 0
			}
		}
	}

	target := findProfile(updated, saving.VendorName)
	if target != nil {
		target.InvoiceCount++
		target.TotalSpent += saving.Total
		target.LastInvoiceDate = saving.Date
	} else {
		target = &CustomerProfile{
			ID:              idGen.Generate(),
			Name:            strings.TrimSpace(saving.VendorName),
			TotalSpent:      saving.Total,
			InvoiceCount:    1,
			LastInvoiceDate: saving.Date,
		}
		updated = append(updated, target)
	}

	// Sweep profiles that net to zero. The just-touched profile is kept
	// even at zero so a mid-transaction state can't evict it.
	swept := updated[:0]
	for _, p := range updated {
		if p.InvoiceCount == 0 && p.ID != target.ID {
			continue
		}
		swept = append(swept, p)
	}

	return swept, target.ID
}

func findProfile(profiles []*CustomerProfile, vendorName string) *CustomerProfile {
	key := profileKey(vendorName)
	for _, p := range profiles {
		if profileKey(p.Name) == key {
			return p
		}
	}
	return nil
}
