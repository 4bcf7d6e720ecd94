// Package dir manages the fixed-size entry slots of a directory block.
//
// A slot is free when the first byte of its name is zero. Slots are filled
// in ascending order and never compacted.
package dir

import (
	"bytes"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-vsfs/addr"
	"github.com/mit-pdos/go-vsfs/common"
	"github.com/mit-pdos/go-vsfs/util"
)

// MaxNameLen is the longest name kept; the last name byte is always NUL.
const MaxNameLen = common.DIRNAMELEN - 1

type Dirent struct {
	Inum common.Inum
	Name string
}

// NameBytes truncates and NUL-pads name to the on-disk name field.
func NameBytes(name string) []byte {
	b := make([]byte, common.DIRNAMELEN)
	copy(b[:MaxNameLen], name)
	return b
}

// CanonicalName is name as it reads back after a round trip through a slot.
func CanonicalName(name string) string {
	return decodeName(NameBytes(name))
}

func decodeName(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func (de Dirent) Encode() []byte {
	enc := marshal.NewEnc(common.DIRENTSZ)
	enc.PutInt32(uint32(de.Inum))
	enc.PutBytes(NameBytes(de.Name))
	return enc.Finish()
}

func Decode(b []byte) Dirent {
	dec := marshal.NewDec(b)
	inum := common.Inum(dec.GetInt32())
	name := decodeName(dec.GetBytes(common.DIRNAMELEN))
	return Dirent{Inum: inum, Name: name}
}

func slot(blk []byte, n uint64) []byte {
	return addr.DirentAddr(0, n).Slice(blk, common.DIRENTSZ)
}

func IsFree(blk []byte, n uint64) bool {
	return slot(blk, n)[4] == 0
}

// FindFree returns the lowest free slot in the directory block.
func FindFree(blk []byte) (uint64, bool) {
	for n := uint64(0); n < common.DIRENTBLK; n++ {
		if IsFree(blk, n) {
			util.DPrintf(10, "dir.FindFree: slot %d\n", n)
			return n, true
		}
	}
	return 0, false
}

// Put writes de into slot n.
func Put(blk []byte, n uint64, de Dirent) {
	copy(slot(blk, n), de.Encode())
}

func Get(blk []byte, n uint64) Dirent {
	return Decode(slot(blk, n))
}

// List returns the used slots in slot order.
func List(blk []byte) []Dirent {
	var des []Dirent
	for n := uint64(0); n < common.DIRENTBLK; n++ {
		if !IsFree(blk, n) {
			des = append(des, Get(blk, n))
		}
	}
	return des
}

// Lookup finds the entry whose stored name equals the truncated form of name.
func Lookup(blk []byte, name string) (common.Inum, bool) {
	want := CanonicalName(name)
	for _, de := range List(blk) {
		if de.Name == want {
			return de.Inum, true
		}
	}
	return 0, false
}

// SizeThrough is the directory size implied by slot n being in use.
func SizeThrough(n uint64) uint64 {
	return (n + 1) * common.DIRENTSZ
}
