package ledger

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/custodiaorg/libcustodia-go/custody"
)

var (
	bucketPool     = []byte("pool")
	bucketAccounts = []byte("accounts")
)

// BoltLedger is a persistent custody.Gateway backed by bbolt. The pool
// bucket maps asset id to balance; the accounts bucket maps
// recipient\x00asset to the amount paid out so far. A transfer debits the
// pool and credits the account in one bolt transaction, so no failure can
// create or destroy funds.
type BoltLedger struct {
	db *bbolt.DB
}

var _ custody.Gateway = (*BoltLedger)(nil)

// OpenBoltLedger opens or creates the ledger database at dbPath. The parent
// directory is created if it does not exist.
func OpenBoltLedger(dbPath string) (*BoltLedger, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("ledger: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("ledger: open bolt db: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketPool, bucketAccounts} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger: create buckets: %w", err)
	}
	return &BoltLedger{db: db}, nil
}

// Close closes the underlying database.
func (l *BoltLedger) Close() error { return l.db.Close() }

// Deposit credits the pool.
func (l *BoltLedger) Deposit(asset custody.AssetID, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	return l.db.Update(func(tx *bbolt.Tx) error {
		pool := tx.Bucket(bucketPool)
		balance := decodeAmount(pool.Get([]byte(asset)))
		if balance+amount < balance {
			return ErrBalanceOverflow
		}
		return pool.Put([]byte(asset), encodeAmount(balance+amount))
	})
}

// BalanceOf reports the pool's balance of the asset.
func (l *BoltLedger) BalanceOf(asset custody.AssetID) (uint64, error) {
	var balance uint64
	err := l.db.View(func(tx *bbolt.Tx) error {
		balance = decodeAmount(tx.Bucket(bucketPool).Get([]byte(asset)))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("ledger: read balance: %w", err)
	}
	return balance, nil
}

// Transfer debits the pool and credits the recipient's account atomically.
func (l *BoltLedger) Transfer(asset custody.AssetID, recipient custody.Identity, amount uint64) error {
	if recipient == custody.NoIdentity {
		return ErrInvalidRecipient
	}
	if amount == 0 {
		return ErrZeroAmount
	}
	return l.db.Update(func(tx *bbolt.Tx) error {
		pool := tx.Bucket(bucketPool)
		balance := decodeAmount(pool.Get([]byte(asset)))
		if balance < amount {
			return ErrInsufficientFunds
		}
		if err := pool.Put([]byte(asset), encodeAmount(balance-amount)); err != nil {
			return fmt.Errorf("debit pool: %w", err)
		}
		accounts := tx.Bucket(bucketAccounts)
		key := accountKey(recipient, asset)
		paid := decodeAmount(accounts.Get(key))
		if err := accounts.Put(key, encodeAmount(paid+amount)); err != nil {
			return fmt.Errorf("credit account: %w", err)
		}
		return nil
	})
}

// AccountBalance reports what the recipient has been paid so far.
func (l *BoltLedger) AccountBalance(recipient custody.Identity, asset custody.AssetID) (uint64, error) {
	var paid uint64
	err := l.db.View(func(tx *bbolt.Tx) error {
		paid = decodeAmount(tx.Bucket(bucketAccounts).Get(accountKey(recipient, asset)))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("ledger: read account: %w", err)
	}
	return paid, nil
}

// accountKey joins recipient and asset with a NUL byte. Identifiers are
// opaque but NUL-free in practice; the separator only has to be unambiguous
// against the empty (native) asset id.
func accountKey(recipient custody.Identity, asset custody.AssetID) []byte {
	key := make([]byte, 0, len(recipient)+1+len(asset))
	key = append(key, recipient...)
	key = append(key, 0x00)
	key = append(key, asset...)
	return key
}

func encodeAmount(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func decodeAmount(data []byte) uint64 {
	if len(data) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(data)
}
