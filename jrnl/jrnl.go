// Package jrnl is the top-level journal API.
//
// It provides atomic operations that are buffered locally and manipulate
// whole blocks via buffers of type *buf.Buf.
//
// The caller uses this interface by beginning an operation Op, reading and
// modifying blocks within it, and finally committing it. Reads see the latest
// committed state, including transactions that are still waiting in the
// journal to be installed. Committing appends one Data record per dirty
// block, in the order the blocks were first read, followed by a commit
// record; home blocks change only when the journal is installed.
//
// To abort an operation simply stop using it.
package jrnl

import (
	"github.com/mit-pdos/go-vsfs/buf"
	"github.com/mit-pdos/go-vsfs/common"
	"github.com/mit-pdos/go-vsfs/disk"
	"github.com/mit-pdos/go-vsfs/util"
	"github.com/mit-pdos/go-vsfs/wal"
)

// Op is an in-progress journal operation.
//
// Call CommitWait to persist the operation's writes.
type Op struct {
	log  *wal.Walog
	bufs *buf.BufMap // map of bufs read/written by this operation
}

// Begin starts a local journal operation with no writes.
func Begin(log *wal.Walog) *Op {
	op := &Op{
		log:  log,
		bufs: buf.MkBufMap(),
	}
	util.DPrintf(3, "Begin: %p\n", op)
	return op
}

// ReadBuf returns the operation's copy of block blkno, loading it on first
// use.
func (op *Op) ReadBuf(blkno common.Bnum) (*buf.Buf, error) {
	b := op.bufs.Lookup(blkno)
	if b == nil {
		blk, err := op.log.Read(blkno)
		if err != nil {
			return nil, err
		}
		b = buf.MkBuf(blkno, blk)
		op.bufs.Insert(b)
	}
	return b, nil
}

// OverWrite replaces block blkno without reading it.
func (op *Op) OverWrite(blkno common.Bnum, data disk.Block) {
	var b = op.bufs.Lookup(blkno)
	if b == nil {
		b = buf.MkBuf(blkno, data)
		op.bufs.Insert(b)
	} else {
		b.Blk = data
	}
	b.SetDirty()
}

// NDirty reports the number of blocks this operation will log.
func (op *Op) NDirty() uint64 {
	return op.bufs.Ndirty()
}

// CommitWait durably logs the dirty blocks as one transaction.
//
// On error the operation had no logical effect; wal.ErrLogFull means the
// journal must be installed before the operation can fit.
func (op *Op) CommitWait() error {
	bufs := op.bufs.DirtyBufs()
	if len(bufs) == 0 {
		util.DPrintf(5, "commit read-only op\n")
		return nil
	}
	var txn []wal.Update
	for _, b := range bufs {
		txn = append(txn, wal.MkBlockData(b.Blkno, b.Blk))
	}
	util.DPrintf(3, "Commit %p: %d blocks\n", op, len(txn))
	_, err := op.log.Append(txn)
	return err
}
