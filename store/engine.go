package store

import (
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/bitfsorg/libyield-go/distribution"
)

// BoltEngineStore persists distribution engine records in bbolt.
type BoltEngineStore struct {
	db     *bbolt.DB
	prefix string
}

// Compile-time interface check.
var _ distribution.Store = (*BoltEngineStore)(nil)

func (s *BoltEngineStore) name(b string) string { return s.prefix + b }

func farmKey(f distribution.FarmID) []byte { return u64(uint64(f)) }

func periodKey(k distribution.PeriodKey) []byte {
	return compositeKey(u64(uint64(k.Farm)), u64(k.Period))
}

func claimKey(k distribution.ClaimKey) []byte {
	return compositeKey(u64(uint64(k.Farm)), []byte(k.Claimant))
}

func putGob(b *bbolt.Bucket, k []byte, v interface{}) error {
	data, err := encodeGob(v)
	if err != nil {
		return fmt.Errorf("encode %T: %w", v, err)
	}
	return b.Put(k, data)
}

// Apply writes every record in d in one transaction.
func (s *BoltEngineStore) Apply(d *distribution.Delta) error {
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
		if d.TotalDistributed != nil {
			if err := meta.Put(keyTotal, u64(*d.TotalDistributed)); err != nil {
				return fmt.Errorf("store: put total distributed: %w", err)
			}
		}

		if len(d.Oracles) > 0 {
			b, err := bucket(tx, s.name("oracles"))
			if err != nil {
				return err
			}
			for o, on := range d.Oracles {
				if err := putOrDelete(b, []byte(o), []byte{}, !on); err != nil {
					return fmt.Errorf("store: put oracle: %w", err)
				}
			}
		}

		if len(d.Reports) > 0 {
			b, err := bucket(tx, s.name("reports"))
			if err != nil {
				return err
			}
			for f, r := range d.Reports {
				if r == nil {
					if err := b.Delete(farmKey(f)); err != nil {
						return fmt.Errorf("store: delete report: %w", err)
					}
					continue
				}
				if err := putGob(b, farmKey(f), r); err != nil {
					return fmt.Errorf("store: put report: %w", err)
				}
			}
		}

		for _, m := range []struct {
			bucket string
			values map[distribution.FarmID]uint64
		}{
			{"pending", d.Pending},
			{"report_distributed", d.ReportDistributed},
		} {
			if len(m.values) == 0 {
				continue
			}
			b, err := bucket(tx, s.name(m.bucket))
			if err != nil {
				return err
			}
			for f, v := range m.values {
				if err := putOrDelete(b, farmKey(f), u64(v), v == 0); err != nil {
					return fmt.Errorf("store: put %s: %w", m.bucket, err)
				}
			}
		}

		if len(d.Active) > 0 {
			b, err := bucket(tx, s.name("active"))
			if err != nil {
				return err
			}
			for f, on := range d.Active {
				if err := putOrDelete(b, farmKey(f), []byte{}, !on); err != nil {
					return fmt.Errorf("store: put active: %w", err)
				}
			}
		}

		if len(d.Claims) > 0 {
			b, err := bucket(tx, s.name("claims"))
			if err != nil {
				return err
			}
			for k, c := range d.Claims {
				if err := putGob(b, claimKey(k), c); err != nil {
					return fmt.Errorf("store: put claim: %w", err)
				}
			}
		}

		if len(d.History) > 0 {
			b, err := bucket(tx, s.name("history"))
			if err != nil {
				return err
			}
			for k, h := range d.History {
				if err := putGob(b, periodKey(k), h); err != nil {
					return fmt.Errorf("store: put history: %w", err)
				}
			}
		}

		if len(d.Disputes) > 0 {
			b, err := bucket(tx, s.name("disputes"))
			if err != nil {
				return err
			}
			for k, v := range d.Disputes {
				if err := putGob(b, periodKey(k), v); err != nil {
					return fmt.Errorf("store: put dispute: %w", err)
				}
			}
		}
		return nil
	})
}

// Load reads the engine's full state.
func (s *BoltEngineStore) Load() (*distribution.State, error) {
	st := distribution.NewState("")
	err := s.db.View(func(tx *bbolt.Tx) error {
		if meta := tx.Bucket([]byte(s.name("meta"))); meta != nil {
			st.Admin = distribution.Account(meta.Get(keyAdmin))
			if v := meta.Get(keyPaused); len(v) == 1 {
				st.Paused = v[0] == 1
			}
			if v := meta.Get(keyTotal); v != nil {
				total, err := readU64(v)
				if err != nil {
					return err
				}
				st.TotalDistributed = total
			}
		}

		if err := forEach(tx, s.name("oracles"), func(k, _ []byte) error {
			st.Oracles[distribution.Account(k)] = true
			return nil
		}); err != nil {
			return err
		}

		if err := forEach(tx, s.name("reports"), func(k, v []byte) error {
			f, err := readU64(k)
			if err != nil {
				return err
			}
			var r distribution.YieldReport
			if err := decodeGob(v, &r); err != nil {
				return fmt.Errorf("%w: report: %w", ErrCorruptRecord, err)
			}
			st.Reports[distribution.FarmID(f)] = r
			return nil
		}); err != nil {
			return err
		}

		for name, dst := range map[string]map[distribution.FarmID]uint64{
			"pending":            st.Pending,
			"report_distributed": st.ReportDistributed,
		} {
			if err := forEach(tx, s.name(name), func(k, v []byte) error {
				f, err := readU64(k)
				if err != nil {
					return err
				}
				amt, err := readU64(v)
				if err != nil {
					return err
				}
				dst[distribution.FarmID(f)] = amt
				return nil
			}); err != nil {
				return err
			}
		}

		if err := forEach(tx, s.name("active"), func(k, _ []byte) error {
			f, err := readU64(k)
			if err != nil {
				return err
			}
			st.Active[distribution.FarmID(f)] = true
			return nil
		}); err != nil {
			return err
		}

		if err := forEach(tx, s.name("claims"), func(k, v []byte) error {
			parts, err := splitKey(k, 2)
			if err != nil {
				return err
			}
			f, err := readU64(parts[0])
			if err != nil {
				return err
			}
			var c distribution.Claim
			if err := decodeGob(v, &c); err != nil {
				return fmt.Errorf("%w: claim: %w", ErrCorruptRecord, err)
			}
			st.Claims[distribution.ClaimKey{Farm: distribution.FarmID(f), Claimant: distribution.Account(parts[1])}] = c
			return nil
		}); err != nil {
			return err
		}

		if err := forEach(tx, s.name("history"), func(k, v []byte) error {
			pk, err := parsePeriodKey(k)
			if err != nil {
				return err
			}
			var h distribution.History
			if err := decodeGob(v, &h); err != nil {
				return fmt.Errorf("%w: history: %w", ErrCorruptRecord, err)
			}
			st.History[pk] = h
			return nil
		}); err != nil {
			return err
		}

		return forEach(tx, s.name("disputes"), func(k, v []byte) error {
			pk, err := parsePeriodKey(k)
			if err != nil {
				return err
			}
			var d distribution.Dispute
			if err := decodeGob(v, &d); err != nil {
				return fmt.Errorf("%w: dispute: %w", ErrCorruptRecord, err)
			}
			st.Disputes[pk] = d
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("store: load engine: %w", err)
	}
	return st, nil
}

func parsePeriodKey(k []byte) (distribution.PeriodKey, error) {
	parts, err := splitKey(k, 2)
	if err != nil {
		return distribution.PeriodKey{}, err
	}
	f, err := readU64(parts[0])
	if err != nil {
		return distribution.PeriodKey{}, err
	}
	p, err := readU64(parts[1])
	if err != nil {
		return distribution.PeriodKey{}, err
	}
	return distribution.PeriodKey{Farm: distribution.FarmID(f), Period: p}, nil
}
