// Package inode encodes the fixed-size records of the inode table.
package inode

import (
	"time"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-vsfs/addr"
	"github.com/mit-pdos/go-vsfs/common"
	"github.com/mit-pdos/go-vsfs/util"
)

type Inode struct {
	Kind   uint16
	Nlink  uint16
	Size   uint32 // bytes
	Direct [common.NDIRECT]uint32
	Ctime  uint32
	Mtime  uint32
}

// New returns a fresh inode of the given kind with one link, stamped with now.
func New(kind uint16, now time.Time) *Inode {
	ts := uint32(now.Unix())
	return &Inode{Kind: kind, Nlink: 1, Ctime: ts, Mtime: ts}
}

func (ip *Inode) IsFree() bool {
	return ip.Kind == common.INODE_KIND_FREE
}

func (ip *Inode) IsDir() bool {
	return ip.Kind == common.INODE_KIND_DIR
}

// Encode returns the INODESZ on-disk image of ip; the tail is zero padding.
func (ip *Inode) Encode() []byte {
	enc := marshal.NewEnc(common.INODESZ)
	enc.PutInt32(util.PackU16s(ip.Kind, ip.Nlink))
	enc.PutInt32(ip.Size)
	for _, bn := range ip.Direct {
		enc.PutInt32(bn)
	}
	enc.PutInt32(ip.Ctime)
	enc.PutInt32(ip.Mtime)
	return enc.Finish()
}

func Decode(b []byte) *Inode {
	ip := &Inode{}
	dec := marshal.NewDec(b)
	ip.Kind, ip.Nlink = util.UnpackU16s(dec.GetInt32())
	ip.Size = dec.GetInt32()
	for i := range ip.Direct {
		ip.Direct[i] = dec.GetInt32()
	}
	ip.Ctime = dec.GetInt32()
	ip.Mtime = dec.GetInt32()
	return ip
}

// Load decodes inode inum out of its inode table block.
func Load(blk []byte, inum common.Inum) *Inode {
	a := addr.InodeAddr(inum)
	return Decode(a.Slice(blk, common.INODESZ))
}

// Store overwrites the whole slot of inode inum in its inode table block.
func (ip *Inode) Store(blk []byte, inum common.Inum) {
	a := addr.InodeAddr(inum)
	copy(a.Slice(blk, common.INODESZ), ip.Encode())
}

// Block returns the inode table block holding inum.
func Block(inum common.Inum) common.Bnum {
	return addr.InodeAddr(inum).Blkno
}
