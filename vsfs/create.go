package vsfs

import (
	"fmt"

	"github.com/mit-pdos/go-vsfs/alloc"
	"github.com/mit-pdos/go-vsfs/common"
	"github.com/mit-pdos/go-vsfs/dir"
	"github.com/mit-pdos/go-vsfs/inode"
	"github.com/mit-pdos/go-vsfs/jrnl"
	"github.com/mit-pdos/go-vsfs/util"
)

// Create logs the creation of an empty file called name in the root
// directory and returns its inode number.
//
// Names longer than dir.MaxNameLen are truncated. If no inode or directory
// slot is free, Create returns ok=false and writes nothing.
//
// The transaction logs the inode bitmap, the data bitmap, the root directory
// block and the new inode's table block, in that order, plus the root
// inode's table block when that is a different block. Only the journal is
// written; the file appears in place after Install.
func (fs *Fs) Create(name string) (common.Inum, bool, error) {
	if name == "" || name[0] == 0 {
		return 0, false, ErrInvalidName
	}
	util.DPrintf(1, "Create: %q\n", name)

	op := jrnl.Begin(fs.log)
	ibmap, err := op.ReadBuf(common.INODEBMAP)
	if err != nil {
		return 0, false, err
	}
	dbmap, err := op.ReadBuf(common.DATABMAP)
	if err != nil {
		return 0, false, err
	}
	dblk, err := op.ReadBuf(common.ROOTDIRBLK)
	if err != nil {
		return 0, false, err
	}

	if _, ok := dir.Lookup(dblk.Blk, name); ok {
		return 0, false, fmt.Errorf("%q: %w", dir.CanonicalName(name), ErrExists)
	}

	ia := alloc.MkAlloc(ibmap.Blk, common.NINODE)
	da := alloc.MkAlloc(dbmap.Blk, common.NDATABLK)
	// images formatted with all-zero bitmaps do not reserve the root
	ia.MarkUsed(uint64(common.ROOTINUM))
	da.MarkUsed(common.ROOTDIRBLK - common.DATASTART)

	n, ok := ia.FindFree()
	if !ok {
		util.DPrintf(1, "Create: out of inodes\n")
		return 0, false, nil
	}
	slot, ok := dir.FindFree(dblk.Blk)
	if !ok {
		util.DPrintf(1, "Create: root directory full\n")
		return 0, false, nil
	}
	inum := common.Inum(n)

	ia.MarkUsed(n)
	ibmap.SetDirty()
	dbmap.SetDirty()
	dir.Put(dblk.Blk, slot, dir.Dirent{Inum: inum, Name: name})
	dblk.SetDirty()

	iblk, err := op.ReadBuf(inode.Block(inum))
	if err != nil {
		return 0, false, err
	}
	ip := inode.New(common.INODE_KIND_FILE, fs.clock())
	ip.Store(iblk.Blk, inum)
	iblk.SetDirty()

	rblk, err := op.ReadBuf(inode.Block(common.ROOTINUM))
	if err != nil {
		return 0, false, err
	}
	root := inode.Load(rblk.Blk, common.ROOTINUM)
	if sz := dir.SizeThrough(slot); uint64(root.Size) < sz {
		root.Size = uint32(sz)
		root.Store(rblk.Blk, common.ROOTINUM)
		rblk.SetDirty()
	}

	if err := op.CommitWait(); err != nil {
		return 0, false, fmt.Errorf("committing create %q: %w", name, err)
	}
	util.DPrintf(3, "Create: %q -> inode %d slot %d\n", name, inum, slot)
	return inum, true, nil
}
