// Package storage persists custody state snapshots in bbolt, optionally
// sealed at rest with a passphrase-derived key, so a hosting process can
// restart without weakening any state-machine invariant.
package storage

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/custodiaorg/libcustodia-go/custody"
)

var (
	bucketSnapshot = []byte("snapshot")
	keyCurrent     = []byte("current")
)

// SnapshotStore stores the latest custody.Snapshot. A non-empty passphrase
// turns on at-rest sealing: the gob-encoded snapshot is encrypted with
// AES-256-GCM under an HKDF-derived key before it reaches the bucket.
type SnapshotStore struct {
	db      *bbolt.DB
	sealKey []byte // nil when sealing is off
}

// OpenSnapshotStore opens or creates the snapshot database at dbPath. The
// parent directory is created if it does not exist.
func OpenSnapshotStore(dbPath, passphrase string) (*SnapshotStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("storage: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: open bolt db: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSnapshot)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: create bucket: %w", err)
	}
	s := &SnapshotStore{db: db}
	if passphrase != "" {
		s.sealKey, err = deriveSealKey(passphrase)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return s, nil
}

// Close closes the underlying database.
func (s *SnapshotStore) Close() error { return s.db.Close() }

// Save replaces the stored snapshot.
func (s *SnapshotStore) Save(snap custody.Snapshot) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return fmt.Errorf("storage: encode snapshot: %w", err)
	}
	data := buf.Bytes()
	if s.sealKey != nil {
		var err error
		data, err = seal(s.sealKey, data)
		if err != nil {
			return err
		}
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSnapshot).Put(keyCurrent, data)
	})
}

// Load returns the stored snapshot, or ErrNoSnapshot when none was saved.
func (s *SnapshotStore) Load() (custody.Snapshot, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		stored := tx.Bucket(bucketSnapshot).Get(keyCurrent)
		if stored != nil {
			data = make([]byte, len(stored))
			copy(data, stored)
		}
		return nil
	})
	if err != nil {
		return custody.Snapshot{}, fmt.Errorf("storage: read snapshot: %w", err)
	}
	if data == nil {
		return custody.Snapshot{}, ErrNoSnapshot
	}
	if s.sealKey != nil {
		data, err = open(s.sealKey, data)
		if err != nil {
			return custody.Snapshot{}, err
		}
	}
	var snap custody.Snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return custody.Snapshot{}, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	return snap, nil
}
