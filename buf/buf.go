// Package buf holds in-memory copies of whole disk blocks read or written by
// a journal operation.
package buf

import (
	"github.com/mit-pdos/go-vsfs/addr"
	"github.com/mit-pdos/go-vsfs/common"
	"github.com/mit-pdos/go-vsfs/disk"
)

// A Buf is the working copy of one disk block
type Buf struct {
	Blkno common.Bnum
	Blk   disk.Block
	dirty bool // has this block been written to?
}

func MkBuf(blkno common.Bnum, blk disk.Block) *Buf {
	b := &Buf{
		Blkno: blkno,
		Blk:   blk,
		dirty: false,
	}
	return b
}

// Object returns the sz bytes of the object at a, which must live in this
// block. Writes through the slice are not tracked; call SetDirty.
func (buf *Buf) Object(a addr.Addr, sz uint64) []byte {
	if a.Blkno != buf.Blkno {
		panic("object is not in this block")
	}
	return a.Slice(buf.Blk, sz)
}

func (buf *Buf) IsDirty() bool {
	return buf.dirty
}

func (buf *Buf) SetDirty() {
	buf.dirty = true
}
