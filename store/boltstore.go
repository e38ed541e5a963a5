// Package store persists ledger and distribution state in a bbolt database.
// Each Delta is written in a single bbolt transaction, so a record set is
// either fully durable or not written at all.
package store

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

// BoltStore wraps a bbolt database holding any number of ledgers and one
// distribution engine.
type BoltStore struct {
	db *bbolt.DB
}

// Open opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func Open(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open bolt db: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// Ledger returns the ledger store for the named ledger.
func (s *BoltStore) Ledger(name string) *BoltLedgerStore {
	return &BoltLedgerStore{db: s.db, prefix: "ledger/" + name + "/"}
}

// Engine returns the distribution engine store.
func (s *BoltStore) Engine() *BoltEngineStore {
	return &BoltEngineStore{db: s.db, prefix: "distribution/"}
}

// ---------------------------------------------------------------------------
// Encoding helpers
// ---------------------------------------------------------------------------

var (
	keyAdmin  = []byte("admin")
	keyPaused = []byte("paused")
	keyTotal  = []byte("total")
)

func u64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func readU64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("%w: expected 8 bytes, got %d", ErrCorruptRecord, len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

func boolByte(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

// compositeKey joins parts, each prefixed with a 2-byte length.
func compositeKey(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += 2 + len(p)
	}
	k := make([]byte, 0, n)
	for _, p := range parts {
		k = binary.BigEndian.AppendUint16(k, uint16(len(p)))
		k = append(k, p...)
	}
	return k
}

// splitKey reverses compositeKey. The returned parts alias k.
func splitKey(k []byte, want int) ([][]byte, error) {
	parts := make([][]byte, 0, want)
	for len(k) > 0 {
		if len(k) < 2 {
			return nil, fmt.Errorf("%w: truncated key", ErrCorruptRecord)
		}
		n := int(binary.BigEndian.Uint16(k))
		k = k[2:]
		if len(k) < n {
			return nil, fmt.Errorf("%w: truncated key part", ErrCorruptRecord)
		}
		parts = append(parts, k[:n])
		k = k[n:]
	}
	if len(parts) != want {
		return nil, fmt.Errorf("%w: key has %d parts, want %d", ErrCorruptRecord, len(parts), want)
	}
	return parts, nil
}

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// bucket returns the named bucket, creating it on first write.
func bucket(tx *bbolt.Tx, name string) (*bbolt.Bucket, error) {
	b, err := tx.CreateBucketIfNotExists([]byte(name))
	if err != nil {
		return nil, fmt.Errorf("store: create bucket %q: %w", name, err)
	}
	return b, nil
}

// putOrDelete stores v under k, or removes k when remove is true.
func putOrDelete(b *bbolt.Bucket, k, v []byte, remove bool) error {
	if remove {
		return b.Delete(k)
	}
	return b.Put(k, v)
}

// forEach iterates a bucket that may not exist yet.
func forEach(tx *bbolt.Tx, name string, fn func(k, v []byte) error) error {
	b := tx.Bucket([]byte(name))
	if b == nil {
		return nil
	}
	return b.ForEach(fn)
}
