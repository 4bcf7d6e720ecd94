package wal

import (
	"github.com/mit-pdos/go-vsfs/util"
)

// scanTxn walks records from pos until a commit record. It reports false if
// the log ends, or turns out malformed, before a commit is found; such a tail
// is never applied.
func (r *region) scanTxn(pos uint64, used uint64) (Txn, bool) {
	txn := Txn{Start: LogPosition(pos)}
	for pos < used {
		rec, ok := DecodeRecord(r.b[pos:used])
		if !ok {
			util.DPrintf(3, "scanTxn: unreadable record at %d\n", pos)
			return Txn{}, false
		}
		pos += rec.Size()
		switch rec := rec.(type) {
		case CommitRecord:
			txn.End = LogPosition(pos)
			return txn, true
		case DataRecord:
			txn.Updates = append(txn.Updates, MkBlockData(rec.Addr, rec.Block))
		}
	}
	util.DPrintf(3, "scanTxn: no commit after %d\n", txn.Start)
	return Txn{}, false
}

// scan returns the complete transactions at the front of the log, in order.
func (r *region) scan() []Txn {
	h := r.hdr()
	if !h.valid() {
		return nil
	}
	var txns []Txn
	pos := LOGHDRSZ
	for pos < h.used {
		txn, ok := r.scanTxn(pos, h.used)
		if !ok {
			break
		}
		txns = append(txns, txn)
		pos = uint64(txn.End)
	}
	return txns
}

// Scan reports the committed transactions currently in the journal.
func (l *Walog) Scan() ([]Txn, error) {
	r, err := readRegion(l.d)
	if err != nil {
		return nil, err
	}
	return r.scan(), nil
}

// Used reports the journal's bytes in use, header included, and whether the
// header was valid.
func (l *Walog) Used() (uint64, bool, error) {
	r, err := readRegion(l.d)
	if err != nil {
		return 0, false, err
	}
	h := r.hdr()
	return h.used, h.valid(), nil
}
