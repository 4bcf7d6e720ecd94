package wal

import (
	"fmt"

	"github.com/mit-pdos/go-vsfs/util"
)

// installBlocks writes the updates of one transaction to their home blocks.
func (l *Walog) installBlocks(bufs []Update) error {
	for i, buf := range bufs {
		util.DPrintf(5, "installBlocks: write log record %d to %d\n", i, buf.Addr)
		if err := l.d.Write(buf.Addr, buf.Block); err != nil {
			return fmt.Errorf("installing block %d: %w", buf.Addr, err)
		}
	}
	return nil
}

// Install applies every committed transaction and empties the journal. It
// returns the number of transactions applied.
func (l *Walog) Install() (uint64, error) {
	return l.InstallN(-1)
}

// InstallN applies at most max committed transactions (all of them if max is
// negative), oldest first, and then empties the journal.
//
// Emptying is unconditional: committed transactions beyond max are
// discarded, not kept for a later install.
//
// Replay is a plain overwrite of home blocks with logged images, so running
// it again after a crash part-way through yields the same blocks.
func (l *Walog) InstallN(max int) (uint64, error) {
	r, err := readRegion(l.d)
	if err != nil {
		return 0, err
	}
	h := r.hdr()
	if !h.valid() || h.used == LOGHDRSZ {
		util.DPrintf(3, "InstallN: nothing to install\n")
		return 0, nil
	}

	var n uint64
	for _, txn := range r.scan() {
		if max >= 0 && n >= uint64(max) {
			util.DPrintf(1, "InstallN: cap %d reached, dropping the rest\n", max)
			break
		}
		util.DPrintf(3, "InstallN: txn [%d, %d) with %d blocks\n",
			txn.Start, txn.End, len(txn.Updates))
		if err := l.installBlocks(txn.Updates); err != nil {
			return n, err
		}
		n++
	}
	if n > 0 {
		if err := l.d.Barrier(); err != nil {
			return n, fmt.Errorf("flushing installed blocks: %w", err)
		}
	}

	if err := r.writeHdr(l.d, emptyHdr()); err != nil {
		return n, err
	}
	if err := l.d.Barrier(); err != nil {
		return n, fmt.Errorf("flushing journal header: %w", err)
	}
	util.DPrintf(1, "InstallN: installed %d transactions\n", n)
	return n, nil
}
