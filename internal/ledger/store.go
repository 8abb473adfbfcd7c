package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDGenerator generates unique identifiers for invoices, items and profiles.
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Store owns the canonical invoice and profile collections. Every mutation
// is applied as one in-memory transform and persisted as whole collections
// before the new state is committed; a failed write leaves the previous
// state in place.
//
// All access is serialized by a mutex. That covers concurrent HTTP
// handlers within this process only; multiple processes sharing the
// database file are not supported.
type Store struct {
	mu sync.Mutex

	db         DB
	idGen      IDGenerator
	timeSource TimeSource

	invoices []*Invoice
	profiles []*CustomerProfile
	currency string
}

// NewStore creates a Store backed by db with default ID generation and
// time source, loading the persisted collections.
func NewStore(db DB) (*Store, error) {
	return NewStoreWithDeps(db, &uuidGenerator{}, &defaultTimeSource{})
}

// NewStoreWithDeps creates a Store with custom dependencies for testing.
func NewStoreWithDeps(db DB, idGen IDGenerator, timeSrc TimeSource) (*Store, error) {
	invoices, err := db.LoadInvoices()
	if err != nil {
		return nil, &StorageError{Op: "loading invoices", Err: err}
	}
	profiles, err := db.LoadProfiles()
	if err != nil {
		return nil, &StorageError{Op: "loading profiles", Err: err}
	}
	currency, err := db.LoadCurrency()
	if err != nil {
		return nil, &StorageError{Op: "loading currency", Err: err}
	}

	return &Store{
		db:         db,
		idGen:      idGen,
		timeSource: timeSrc,
		invoices:   invoices,
		profiles:   profiles,
		currency:   currency,
	}, nil
}

// Save stores an invoice, replacing any stored version sharing its ID, and
// reconciles the affected vendor profiles. The cached total is recomputed
// from the line items and UpdatedAt is refreshed. New invoices are
// prepended so recency sorts first by default.
func (s *Store) Save(inv *Invoice) (*Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saving := *inv
	if saving.ID == "" {
		saving.ID = s.idGen.Generate()
	}
	if saving.Status != StatusPaid {
		saving.Status = StatusUnpaid
	}
	saving.Total = saving.ItemsTotal()
	saving.UpdatedAt = s.timeSource.Now()

	var previous *Invoice
	idx := -1
	for i, existing := range s.invoices {
		if existing.ID == saving.ID {
			previous = existing
			idx = i
			break
		}
	}

	profiles, profileID := ReconcileProfiles(s.profiles, &saving, previous, s.idGen)
	saving.ProfileID = profileID

	invoices := make([]*Invoice, 0, len(s.invoices)+1)
	if idx >= 0 {
		invoices = append(invoices, s.invoices...)
		invoices[idx] = &saving
	} else {
		invoices = append(invoices, &saving)
		invoices = append(invoices, s.invoices...)
	}

	if err := s.db.SaveLedger(invoices, profiles); err != nil {
		return nil, &StorageError{Op: "saving ledger", Err: err}
	}

	s.invoices = invoices
	s.profiles = profiles
	return &saving, nil
}

// BulkDelete removes the invoices with the given IDs and returns them.
//
// Profile aggregates are not adjusted on delete: a vendor's count and
// spend keep their pre-delete values, so the count/spend invariant is
// known to drift after deletes. Callers relying on it must account for
// this.
func (s *Store) BulkDelete(ids []string) ([]*Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idSet := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}

	kept := make([]*Invoice, 0, len(s.invoices))
	removed := make([]*Invoice, 0, len(ids))
	for _, inv := range s.invoices {
		if _, ok := idSet[inv.ID]; ok {
			removed = append(removed, inv)
			continue
		}
		kept = append(kept, inv)
	}
	if len(removed) == 0 {
		return nil, nil
	}

	if err := s.db.SaveLedger(kept, s.profiles); err != nil {
		return nil, &StorageError{Op: "saving ledger", Err: err}
	}

	s.invoices = kept
	return removed, nil
}

// BulkMarkPaid sets status PAID and refreshes UpdatedAt on the matching
// invoices. Profiles are unaffected. There is no operation back from PAID
// to UNPAID.
func (s *Store) BulkMarkPaid(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idSet := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}

	now := s.timeSource.Now()
	invoices := make([]*Invoice, len(s.invoices))
	for i, inv := range s.invoices {
		if _, ok := idSet[inv.ID]; ok {
			updated := *inv
			updated.Status = StatusPaid
			updated.UpdatedAt = now
			invoices[i] = &updated
		} else {
			invoices[i] = inv
		}
	}

	if err := s.db.SaveLedger(invoices, s.profiles); err != nil {
		return &StorageError{Op: "saving ledger", Err: err}
	}

	s.invoices = invoices
	return nil
}

// Get returns the invoice with the given ID.
func (s *Store) Get(id string) (*Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, inv := range s.invoices {
		if inv.ID == id {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("invoice not found: %s", id)
}

// Invoices returns a snapshot of the invoice collection.
func (s *Store) Invoices() []*Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Invoice, len(s.invoices))
	for i, inv := range s.invoices {
		cp := *inv
		out[i] = &cp
	}
	return out
}

// Profiles returns a snapshot of the profile collection.
func (s *Store) Profiles() []*CustomerProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*CustomerProfile, len(s.profiles))
	for i, p := range s.profiles {
		cp := *p
		out[i] = &cp
	}
	return out
}

// Balance computes the balance sheet view over all expense invoices.
// Totals are summed across currencies without conversion.
func (s *Store) Balance() BalanceSheet {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expenses float64
	for _, inv := range s.invoices {
		if inv.Type == TypeExpense {
			expenses += inv.Total
		}
	}
	return BalanceSheet{
		TotalExpenses: expenses,
		NetBalance:    -expenses,
	}
}

// BaseCurrency returns the user's preferred currency code.
func (s *Store) BaseCurrency() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currency
}

// SetBaseCurrency persists the preferred currency code.
func (s *Store) SetBaseCurrency(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.SaveCurrency(code); err != nil {
		return &StorageError{Op: "saving currency", Err: err}
	}
	s.currency = code
	return nil
}
