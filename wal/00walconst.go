// Package wal implements the on-disk write-ahead journal.
//
// The journal occupies LOGBLOCKS blocks starting at common.LOGSTART and is
// addressed as one byte region:
//
//	[ hdr {magic, used} | rec | rec | ... | rec | garbage ]
//	  0                  LOGHDRSZ             used     LOGBYTES
//
// Every record starts with a {type:u16, size:u16} prefix. A Data record
// carries the home block number and the complete new image of that block; a
// Commit record carries nothing and ends a transaction. Only bytes in
// [LOGHDRSZ, used) are part of the log. Writing the header with the new used
// value is the commit point of an append; installing resets used to
// LOGHDRSZ.
package wal

import (
	"github.com/mit-pdos/go-vsfs/common"
	"github.com/mit-pdos/go-vsfs/disk"
)

const (
	LOGHDRSZ = uint64(8) // magic and bytes used
	LOGBYTES = common.LOGBLOCKS * disk.BlockSize

	RECHDRSZ    = uint64(4) // type and size
	DATARECSZ   = RECHDRSZ + 4 + disk.BlockSize
	COMMITRECSZ = RECHDRSZ
)

const (
	REC_DATA   uint16 = 1
	REC_COMMIT uint16 = 2
)
