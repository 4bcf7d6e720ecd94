package wal

import (
	"fmt"

	"github.com/mit-pdos/go-vsfs/util"
)

// logRecords encodes the updates of one transaction, then its commit record,
// into the region starting at pos and returns the end position.
func (r *region) logRecords(pos uint64, bufs []Update) uint64 {
	for _, buf := range bufs {
		rec := DataRecord{Addr: buf.Addr, Block: buf.Block}
		util.DPrintf(5, "logRecords: %d at log byte %d\n", buf.Addr, pos)
		copy(r.b[pos:], rec.Encode())
		pos += rec.Size()
	}
	cr := CommitRecord{}
	copy(r.b[pos:], cr.Encode())
	return pos + cr.Size()
}

// Append durably commits bufs as one transaction and returns the log position
// just past its commit record.
//
// The records are written and flushed first; the header update that follows
// is the commit point. A crash before it leaves the previous log intact, with
// the new records as ignored garbage past used. A header with a bad magic is
// treated as an empty journal and rewritten.
//
// Home blocks are not touched; Install copies them out later.
func (l *Walog) Append(bufs []Update) (LogPosition, error) {
	r, err := readRegion(l.d)
	if err != nil {
		return 0, err
	}
	h := r.hdr()
	if !h.valid() {
		util.DPrintf(1, "Append: invalid journal header %+v, resetting\n", h)
		h = emptyHdr()
	}

	start := h.used
	end := start + TxnSize(uint64(len(bufs)))
	if end > LOGBYTES {
		util.DPrintf(1, "Append: %d updates need %d bytes, %d free\n",
			len(bufs), end-start, LOGBYTES-start)
		return 0, ErrLogFull
	}

	r.logRecords(start, bufs)
	if err := r.writeRange(l.d, start, end); err != nil {
		return 0, err
	}
	if err := l.d.Barrier(); err != nil {
		return 0, fmt.Errorf("flushing journal records: %w", err)
	}

	// atomic commit
	h.used = end
	if err := r.writeHdr(l.d, h); err != nil {
		return 0, err
	}
	if err := l.d.Barrier(); err != nil {
		return 0, fmt.Errorf("flushing journal header: %w", err)
	}
	util.DPrintf(3, "Append: committed %d updates at [%d, %d)\n", len(bufs), start, end)
	return LogPosition(end), nil
}
