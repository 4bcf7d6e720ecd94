// Package alloc allocates numbers out of an on-disk bitmap block.
//
// An Alloc works directly on an in-memory copy of the bitmap block; it does
// no I/O. Bit n lives in byte n/8 at position n%8 (least significant first),
// and a set bit means allocated.
package alloc

import (
	"fmt"

	"github.com/mit-pdos/go-vsfs/common"
	"github.com/mit-pdos/go-vsfs/util"
)

type Alloc struct {
	bitmap []byte
	max    uint64 // number of valid bits
}

// MkAlloc wraps bitmap, tracking the first max bits.
func MkAlloc(bitmap []byte, max uint64) *Alloc {
	if max > uint64(len(bitmap))*8 || max > common.NBITBLOCK {
		panic(fmt.Errorf("bitmap of %d bytes cannot hold %d bits", len(bitmap), max))
	}
	return &Alloc{bitmap: bitmap, max: max}
}

func (a *Alloc) checkNum(n uint64) {
	if n >= a.max {
		panic(fmt.Errorf("bit %d out of range [0, %d)", n, a.max))
	}
}

func (a *Alloc) IsUsed(n uint64) bool {
	a.checkNum(n)
	return a.bitmap[n/8]&(1<<(n%8)) != 0
}

func (a *Alloc) MarkUsed(n uint64) {
	a.checkNum(n)
	a.bitmap[n/8] = a.bitmap[n/8] | (1 << (n % 8))
}

func (a *Alloc) FreeNum(n uint64) {
	a.checkNum(n)
	a.bitmap[n/8] = a.bitmap[n/8] & ^(1 << (n % 8))
}

// FindFree returns the lowest clear bit without claiming it.
func (a *Alloc) FindFree() (uint64, bool) {
	for n := uint64(0); n < a.max; n++ {
		if !a.IsUsed(n) {
			util.DPrintf(10, "FindFree: %d\n", n)
			return n, true
		}
	}
	return 0, false
}

// AllocNum claims the lowest clear bit.
func (a *Alloc) AllocNum() (uint64, bool) {
	n, ok := a.FindFree()
	if ok {
		a.MarkUsed(n)
	}
	return n, ok
}

func popCnt(b byte) uint64 {
	var count uint64
	var x = b
	for i := uint64(0); i < 8; i++ {
		count += uint64(x & 1)
		x = x >> 1
	}
	return count
}

// NumFree counts clear bits among the tracked ones.
func (a *Alloc) NumFree() uint64 {
	var used uint64
	for _, b := range a.bitmap[:a.max/8] {
		used += popCnt(b)
	}
	for n := a.max / 8 * 8; n < a.max; n++ {
		if a.IsUsed(n) {
			used++
		}
	}
	return a.max - used
}
