// Package super reads, checks and writes the superblock at block 0.
package super

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-vsfs/alloc"
	"github.com/mit-pdos/go-vsfs/common"
	"github.com/mit-pdos/go-vsfs/disk"
	"github.com/mit-pdos/go-vsfs/inode"
	"github.com/mit-pdos/go-vsfs/util"
	"github.com/mit-pdos/go-vsfs/wal"
)

var (
	ErrBadMagic = errors.New("not a vsfs image")
	ErrGeometry = errors.New("image geometry does not match this build")
)

type FsSuper struct {
	Magic      uint32
	BlockSize  uint32
	NBlocks    uint32
	NInode     uint32
	LogStart   uint32
	InodeBmap  uint32
	DataBmap   uint32
	InodeStart uint32
	DataStart  uint32
	UUID       uuid.UUID
}

// MkFsSuper describes the compile-time layout.
func MkFsSuper() *FsSuper {
	return &FsSuper{
		Magic:      common.SUPERMAGIC,
		BlockSize:  uint32(disk.BlockSize),
		NBlocks:    uint32(common.NBLOCKS),
		NInode:     uint32(common.NINODE),
		LogStart:   uint32(common.LOGSTART),
		InodeBmap:  uint32(common.INODEBMAP),
		DataBmap:   uint32(common.DATABMAP),
		InodeStart: uint32(common.INODESTART),
		DataStart:  uint32(common.DATASTART),
	}
}

func (sb *FsSuper) Encode() disk.Block {
	enc := marshal.NewEnc(disk.BlockSize)
	enc.PutInt32(sb.Magic)
	enc.PutInt32(sb.BlockSize)
	enc.PutInt32(sb.NBlocks)
	enc.PutInt32(sb.NInode)
	enc.PutInt32(sb.LogStart)
	enc.PutInt32(sb.InodeBmap)
	enc.PutInt32(sb.DataBmap)
	enc.PutInt32(sb.InodeStart)
	enc.PutInt32(sb.DataStart)
	enc.PutBytes(sb.UUID[:])
	return enc.Finish()
}

func Decode(b disk.Block) *FsSuper {
	sb := &FsSuper{}
	dec := marshal.NewDec(b)
	sb.Magic = dec.GetInt32()
	sb.BlockSize = dec.GetInt32()
	sb.NBlocks = dec.GetInt32()
	sb.NInode = dec.GetInt32()
	sb.LogStart = dec.GetInt32()
	sb.InodeBmap = dec.GetInt32()
	sb.DataBmap = dec.GetInt32()
	sb.InodeStart = dec.GetInt32()
	sb.DataStart = dec.GetInt32()
	copy(sb.UUID[:], dec.GetBytes(uint64(len(sb.UUID))))
	return sb
}

// Validate checks the magic and that every region index matches the layout
// compiled into this binary.
func (sb *FsSuper) Validate() error {
	if sb.Magic != common.SUPERMAGIC {
		return fmt.Errorf("magic %#x: %w", sb.Magic, ErrBadMagic)
	}
	want := MkFsSuper()
	want.UUID = sb.UUID
	if *sb != *want {
		return fmt.Errorf("superblock %+v, expected %+v: %w", *sb, *want, ErrGeometry)
	}
	return nil
}

// Read loads and validates the superblock of d.
func Read(d disk.Disk) (*FsSuper, error) {
	sz, err := d.Size()
	if err != nil {
		return nil, err
	}
	if sz < common.NBLOCKS {
		return nil, fmt.Errorf("disk has %d blocks, need %d: %w", sz, common.NBLOCKS, ErrGeometry)
	}
	b, err := d.Read(common.SUPERBLK)
	if err != nil {
		return nil, fmt.Errorf("reading superblock: %w", err)
	}
	sb := Decode(b)
	if err := sb.Validate(); err != nil {
		return nil, err
	}
	return sb, nil
}

// Format lays out an empty file system on d: an empty journal, bitmaps that
// reserve the root inode and its directory block, and an empty root
// directory.
func Format(d disk.Disk, now time.Time) (*FsSuper, error) {
	sz, err := d.Size()
	if err != nil {
		return nil, err
	}
	if sz < common.NBLOCKS {
		return nil, fmt.Errorf("disk has %d blocks, need %d: %w", sz, common.NBLOCKS, ErrGeometry)
	}
	util.DPrintf(1, "Format: %d blocks\n", common.NBLOCKS)

	zero := make(disk.Block, disk.BlockSize)
	for bn := common.LOGSTART; bn < common.NBLOCKS; bn++ {
		if err := d.Write(bn, zero); err != nil {
			return nil, fmt.Errorf("formatting: %w", err)
		}
	}
	if err := wal.InitLog(d); err != nil {
		return nil, fmt.Errorf("formatting journal: %w", err)
	}

	ibmap := make(disk.Block, disk.BlockSize)
	alloc.MkAlloc(ibmap, common.NINODE).MarkUsed(uint64(common.ROOTINUM))
	dbmap := make(disk.Block, disk.BlockSize)
	alloc.MkAlloc(dbmap, common.NDATABLK).MarkUsed(common.ROOTDIRBLK - common.DATASTART)

	iblk := make(disk.Block, disk.BlockSize)
	root := inode.New(common.INODE_KIND_DIR, now)
	root.Nlink = 2
	root.Direct[0] = uint32(common.ROOTDIRBLK)
	root.Store(iblk, common.ROOTINUM)

	sb := MkFsSuper()
	sb.UUID = uuid.New()

	writes := []struct {
		bn  common.Bnum
		blk disk.Block
	}{
		{common.INODEBMAP, ibmap},
		{common.DATABMAP, dbmap},
		{inode.Block(common.ROOTINUM), iblk},
		{common.SUPERBLK, sb.Encode()},
	}
	for _, w := range writes {
		if err := d.Write(w.bn, w.blk); err != nil {
			return nil, fmt.Errorf("formatting: %w", err)
		}
	}
	if err := d.Barrier(); err != nil {
		return nil, fmt.Errorf("formatting: %w", err)
	}
	return sb, nil
}
