package ledger

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/bsv-blockchain/go-sdk/chainhash"
)

// Digest returns the double-SHA256 of the canonical encoding of the state.
// Two ledgers with equal state always produce equal digests, which lets an
// external auditor compare checkpoints without reading every record.
func (l *Ledger) Digest() chainhash.Hash {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return chainhash.DoubleHashH(encodeState(l.st))
}

// encodeState writes the state with every map in sorted key order.
func encodeState(s *State) []byte {
	var buf bytes.Buffer
	putString(&buf, string(s.Admin))
	if s.Paused {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	putUint64(&buf, s.TotalSupply)

	accounts := make([]Account, 0, len(s.Balances))
	for a := range s.Balances {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i] < accounts[j] })
	putUint64(&buf, uint64(len(accounts)))
	for _, a := range accounts {
		putString(&buf, string(a))
		putUint64(&buf, s.Balances[a])
	}

	allowances := make([]AllowanceKey, 0, len(s.Allowances))
	for k := range s.Allowances {
		allowances = append(allowances, k)
	}
	sort.Slice(allowances, func(i, j int) bool {
		if allowances[i].Owner != allowances[j].Owner {
			return allowances[i].Owner < allowances[j].Owner
		}
		return allowances[i].Spender < allowances[j].Spender
	})
	putUint64(&buf, uint64(len(allowances)))
	for _, k := range allowances {
		putString(&buf, string(k.Owner))
		putString(&buf, string(k.Spender))
		putUint64(&buf, s.Allowances[k])
	}

	locks := make([]LockKey, 0, len(s.Locks))
	for k := range s.Locks {
		locks = append(locks, k)
	}
	sort.Slice(locks, func(i, j int) bool {
		if locks[i].Owner != locks[j].Owner {
			return locks[i].Owner < locks[j].Owner
		}
		return locks[i].Farm < locks[j].Farm
	})
	putUint64(&buf, uint64(len(locks)))
	for _, k := range locks {
		putString(&buf, string(k.Owner))
		putUint64(&buf, uint64(k.Farm))
		putUint64(&buf, s.Locks[k].Amount)
		putUint64(&buf, s.Locks[k].UnlockHeight)
	}

	minters := make([]Account, 0, len(s.Minters))
	for m := range s.Minters {
		minters = append(minters, m)
	}
	sort.Slice(minters, func(i, j int) bool { return minters[i] < minters[j] })
	putUint64(&buf, uint64(len(minters)))
	for _, m := range minters {
		putString(&buf, string(m))
	}
	return buf.Bytes()
}

func putUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func putString(buf *bytes.Buffer, s string) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(len(s)))
	buf.Write(b[:])
	buf.WriteString(s)
}
