package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	ledgerBucketName   = "ledger"
	settingsBucketName = "settings"

	invoicesKey = "invoices"
	profilesKey = "profiles"
	currencyKey = "currency"
)

// DefaultCurrency is used until the user picks a base currency.
const DefaultCurrency = "USD"

// DB defines the persistence surface for the ledger: two whole-collection
// values plus the base-currency preference. Collections are always written
// together; a partial write of one without the other must not be possible.
type DB interface {
	// LoadInvoices returns the persisted invoice collection.
	LoadInvoices() ([]*Invoice, error)

	// LoadProfiles returns the persisted profile collection.
	LoadProfiles() ([]*CustomerProfile, error)

	// SaveLedger persists both collections atomically.
	SaveLedger(invoices []*Invoice, profiles []*CustomerProfile) error

	// LoadCurrency returns the base currency preference, or DefaultCurrency
	// when none is stored.
	LoadCurrency() (string, error)

	// SaveCurrency persists the base currency preference.
	SaveCurrency(code string) error

	// Close closes the database.
	Close() error
}

// BoltDB implements the DB interface using BoltDB.
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(ledgerBucketName)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(settingsBucketName)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// LoadInvoices returns the persisted invoice collection.
func (b *BoltDB) LoadInvoices() ([]*Invoice, error) {
	invoices := make([]*Invoice, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(ledgerBucketName)).Get([]byte(invoicesKey))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &invoices); err != nil {
			return fmt.Errorf("unmarshaling invoices: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// LoadProfiles returns the persisted profile collection.
func (b *BoltDB) LoadProfiles() ([]*CustomerProfile, error) {
	profiles := make([]*CustomerProfile, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(ledgerBucketName)).Get([]byte(profilesKey))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &profiles); err != nil {
			return fmt.Errorf("unmarshaling profiles: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// SaveLedger writes both collections in a single transaction, so either
// both land on disk or neither does.
func (b *BoltDB) SaveLedger(invoices []*Invoice, profiles []*CustomerProfile) error {
	invoiceData, err := json.Marshal(invoices)
	if err != nil {
		return fmt.Errorf("marshaling invoices: %w", err)
	}
	profileData, err := json.Marshal(profiles)
	if err != nil {
		return fmt.Errorf("marshaling profiles: %w", err)
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(ledgerBucketName))
		if err := bucket.Put([]byte(invoicesKey), invoiceData); err != nil {
			return fmt.Errorf("writing invoices: %w", err)
		}
		if err := bucket.Put([]byte(profilesKey), profileData); err != nil {
			return fmt.Errorf("writing profiles: %w", err)
		}
		return nil
	})
}

// LoadCurrency returns the stored base currency preference.
func (b *BoltDB) LoadCurrency() (string, error) {
	code := DefaultCurrency
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(settingsBucketName)).Get([]byte(currencyKey))
		if data != nil {
			code = string(data)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

// SaveCurrency persists the base currency preference.
func (b *BoltDB) SaveCurrency(code string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(settingsBucketName)).Put([]byte(currencyKey), []byte(code))
	})
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
