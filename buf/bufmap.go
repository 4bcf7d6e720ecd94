package buf

import (
	"github.com/mit-pdos/go-vsfs/common"
)

//
// A map from block numbers to bufs that remembers insertion order.
//

type BufMap struct {
	addrs map[common.Bnum]*Buf
	order []common.Bnum
}

func MkBufMap() *BufMap {
	a := &BufMap{
		addrs: make(map[common.Bnum]*Buf),
	}
	return a
}

func (bmap *BufMap) Insert(buf *Buf) {
	if _, ok := bmap.addrs[buf.Blkno]; !ok {
		bmap.order = append(bmap.order, buf.Blkno)
	}
	bmap.addrs[buf.Blkno] = buf
}

func (bmap *BufMap) Lookup(blkno common.Bnum) *Buf {
	return bmap.addrs[blkno]
}

func (bmap *BufMap) Ndirty() uint64 {
	n := uint64(0)
	for _, b := range bmap.addrs {
		if b.dirty {
			n += 1
		}
	}
	return n
}

// Bufs returns every buf in the order it was first inserted.
func (bmap *BufMap) Bufs() []*Buf {
	bufs := make([]*Buf, 0, len(bmap.order))
	for _, blkno := range bmap.order {
		bufs = append(bufs, bmap.addrs[blkno])
	}
	return bufs
}

// DirtyBufs returns the dirty bufs in insertion order.
func (bmap *BufMap) DirtyBufs() []*Buf {
	var bufs []*Buf
	for _, b := range bmap.Bufs() {
		if b.dirty {
			bufs = append(bufs, b)
		}
	}
	return bufs
}
