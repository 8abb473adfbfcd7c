package ledger

import "time"

// dueSoonWindow is how many days ahead an unpaid invoice counts as due soon.
const dueSoonWindow = 3

// dateOnly truncates a timestamp to midnight so comparisons ignore the
// time of day.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DeriveStatus computes the effective status of an invoice relative to now.
// A paid invoice stays PAID no matter the due date; an unpaid invoice whose
// due date is before today is OVERDUE.
func DeriveStatus(inv *Invoice, now time.Time) Status {
	if inv.Status == StatusPaid {
		return StatusPaid
	}
	if dateOnly(inv.DueDate).Before(dateOnly(now)) {
		return StatusOverdue
	}
	return StatusUnpaid
}

// IsDueSoon reports whether dueDate falls within the inclusive window from
// today through today+3 days, comparing calendar dates only.
func IsDueSoon(dueDate, now time.Time) bool {
	today := dateOnly(now)
	due := dateOnly(dueDate)
	if due.Before(today) {
		return false
	}
	return !due.After(today.AddDate(0, 0, dueSoonWindow))
}
