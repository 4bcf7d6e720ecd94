package addr

import (
	"github.com/mit-pdos/go-vsfs/common"
)

// Addr identifies the start of a disk object.
//
// Blkno is the block number containing the object, and Off is the location of
// the object within the block in bytes. The size of the object is determined
// by the context in which Addr is used.
type Addr struct {
	Blkno common.Bnum
	Off   uint64 // offset in bytes
}

func MkAddr(blkno common.Bnum, off uint64) Addr {
	return Addr{Blkno: blkno, Off: off}
}

// InodeAddr locates inode inum in the inode table.
func InodeAddr(inum common.Inum) Addr {
	return MkAddr(common.INODESTART+uint64(inum)/common.INODEBLK,
		(uint64(inum)%common.INODEBLK)*common.INODESZ)
}

// DirentAddr locates directory slot n inside the directory block blkno.
func DirentAddr(blkno common.Bnum, n uint64) Addr {
	return MkAddr(blkno, n*common.DIRENTSZ)
}

// Slice returns the sz bytes of blk that hold the object.
func (a Addr) Slice(blk []byte, sz uint64) []byte {
	return blk[a.Off : a.Off+sz]
}
