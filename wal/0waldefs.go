package wal

import (
	"errors"

	"github.com/mit-pdos/go-vsfs/common"
	"github.com/mit-pdos/go-vsfs/disk"
)

// ErrLogFull means a transaction does not fit in the unused part of the
// journal. Nothing was written; installing the journal makes room.
var ErrLogFull = errors.New("journal full")

// LogPosition is a byte offset into the journal region.
type LogPosition uint64

// Update is the new contents of one home block.
type Update struct {
	Addr  common.Bnum
	Block disk.Block
}

func MkBlockData(bn common.Bnum, blk disk.Block) Update {
	b := Update{Addr: bn, Block: blk}
	return b
}

// Txn is a committed transaction found in the journal: the updates of its
// Data records in log order, and the byte range [Start, End) it occupies,
// commit record included.
type Txn struct {
	Start   LogPosition
	End     LogPosition
	Updates []Update
}

// Walog accesses the journal of one disk. It keeps no state between calls:
// every operation rereads the header, so separate processes (or separate
// Walogs) see each other's committed appends.
type Walog struct {
	d disk.Disk
}

func MkLog(d disk.Disk) *Walog {
	return &Walog{d: d}
}

// LogSz is the number of journal bytes available for records.
func (l *Walog) LogSz() uint64 {
	return LOGBYTES - LOGHDRSZ
}

// TxnSize is the number of journal bytes a transaction of nblocks updates
// takes, commit record included.
func TxnSize(nblocks uint64) uint64 {
	return nblocks*DATARECSZ + COMMITRECSZ
}
