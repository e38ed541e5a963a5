package store

import (
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/bitfsorg/libyield-go/ledger"
)

// BoltLedgerStore persists one ledger's records in bbolt.
type BoltLedgerStore struct {
	db     *bbolt.DB
	prefix string
}

// Compile-time interface check.
var _ ledger.Store = (*BoltLedgerStore)(nil)

func (s *BoltLedgerStore) name(b string) string { return s.prefix + b }

// Apply writes every record in d in one transaction.
func (s *BoltLedgerStore) Apply(d *ledger.Delta) error {
	if d == nil {
		return ErrNilDelta
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		meta, err := bucket(tx, s.name("meta"))
		if err != nil {
			return err
		}
		if d.Admin != nil {
			if err := meta.Put(keyAdmin, []byte(*d.Admin)); err != nil {
				return fmt.Errorf("store: put admin: %w", err)
			}
		}
		if d.Paused != nil {
			if err := meta.Put(keyPaused, boolByte(*d.Paused)); err != nil {
				return fmt.Errorf("store: put paused: %w", err)
			}
		}
		if d.TotalSupply != nil {
			if err := meta.Put(keyTotal, u64(*d.TotalSupply)); err != nil {
				return fmt.Errorf("store: put supply: %w", err)
			}
		}

		if len(d.Balances) > 0 {
			b, err := bucket(tx, s.name("balances"))
			if err != nil {
				return err
			}
			for a, v := range d.Balances {
				if err := putOrDelete(b, []byte(a), u64(v), v == 0); err != nil {
					return fmt.Errorf("store: put balance: %w", err)
				}
			}
		}

		if len(d.Allowances) > 0 {
			b, err := bucket(tx, s.name("allowances"))
			if err != nil {
				return err
			}
			for k, v := range d.Allowances {
				key := compositeKey([]byte(k.Owner), []byte(k.Spender))
				if err := putOrDelete(b, key, u64(v), v == 0); err != nil {
					return fmt.Errorf("store: put allowance: %w", err)
				}
			}
		}

		if len(d.Locks) > 0 {
			b, err := bucket(tx, s.name("locks"))
			if err != nil {
				return err
			}
			for k, v := range d.Locks {
				key := compositeKey([]byte(k.Owner), u64(uint64(k.Farm)))
				if v == nil {
					if err := b.Delete(key); err != nil {
						return fmt.Errorf("store: delete lock: %w", err)
					}
					continue
				}
				data, err := encodeGob(v)
				if err != nil {
					return fmt.Errorf("encode lock: %w", err)
				}
				if err := b.Put(key, data); err != nil {
					return fmt.Errorf("store: put lock: %w", err)
				}
			}
		}

		if len(d.Minters) > 0 {
			b, err := bucket(tx, s.name("minters"))
			if err != nil {
				return err
			}
			for m, on := range d.Minters {
				if err := putOrDelete(b, []byte(m), []byte{}, !on); err != nil {
					return fmt.Errorf("store: put minter: %w", err)
				}
			}
		}
		return nil
	})
}

// Load reads the ledger's full state.
func (s *BoltLedgerStore) Load() (*ledger.State, error) {
	st := ledger.NewState("")
	err := s.db.View(func(tx *bbolt.Tx) error {
		if meta := tx.Bucket([]byte(s.name("meta"))); meta != nil {
			st.Admin = ledger.Account(meta.Get(keyAdmin))
			if v := meta.Get(keyPaused); len(v) == 1 {
				st.Paused = v[0] == 1
			}
			if v := meta.Get(keyTotal); v != nil {
				total, err := readU64(v)
				if err != nil {
					return err
				}
				st.TotalSupply = total
			}
		}

		if err := forEach(tx, s.name("balances"), func(k, v []byte) error {
			bal, err := readU64(v)
			if err != nil {
				return err
			}
			st.Balances[ledger.Account(k)] = bal
			return nil
		}); err != nil {
			return err
		}

		if err := forEach(tx, s.name("allowances"), func(k, v []byte) error {
			parts, err := splitKey(k, 2)
			if err != nil {
				return err
			}
			amt, err := readU64(v)
			if err != nil {
				return err
			}
			st.Allowances[ledger.AllowanceKey{
				Owner:   ledger.Account(parts[0]),
				Spender: ledger.Account(parts[1]),
			}] = amt
			return nil
		}); err != nil {
			return err
		}

		if err := forEach(tx, s.name("locks"), func(k, v []byte) error {
			parts, err := splitKey(k, 2)
			if err != nil {
				return err
			}
			farm, err := readU64(parts[1])
			if err != nil {
				return err
			}
			var lk ledger.Lock
			if err := decodeGob(v, &lk); err != nil {
				return fmt.Errorf("%w: lock: %w", ErrCorruptRecord, err)
			}
			st.Locks[ledger.LockKey{Owner: ledger.Account(parts[0]), Farm: ledger.FarmID(farm)}] = lk
			return nil
		}); err != nil {
			return err
		}

		return forEach(tx, s.name("minters"), func(k, _ []byte) error {
			st.Minters[ledger.Account(k)] = true
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("store: load ledger: %w", err)
	}
	return st, nil
}
