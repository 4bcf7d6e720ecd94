// Package common holds the static layout of a vsfs image.
//
// Every region is fixed at compile time; the superblock records the same
// numbers so an image can be checked against the binary that opens it.
//
//	[ super | journal (LOGBLOCKS) | inode bmap | data bmap | inodes | data ]
//	  0       LOGSTART              INODEBMAP    DATABMAP    INODESTART DATASTART
package common

import (
	"github.com/mit-pdos/go-vsfs/disk"
)

type Inum uint64
type Bnum = uint64

const (
	NBITBLOCK uint64 = disk.BlockSize * 8

	INODESZ  uint64 = 128 // on-disk size
	INODEBLK uint64 = disk.BlockSize / INODESZ
	NDIRECT  uint64 = 8

	DIRENTSZ   uint64 = 32
	DIRNAMELEN uint64 = DIRENTSZ - 4 // name bytes after the inum
	DIRENTBLK  uint64 = disk.BlockSize / DIRENTSZ
)

const (
	SUPERBLK   Bnum   = 0
	LOGSTART   Bnum   = 1
	LOGBLOCKS  uint64 = 16
	INODEBMAP  Bnum   = LOGSTART + LOGBLOCKS
	DATABMAP   Bnum   = INODEBMAP + 1
	INODESTART Bnum   = DATABMAP + 1
	NINODEBLK  uint64 = 2
	DATASTART  Bnum   = INODESTART + NINODEBLK
	NDATABLK   uint64 = 64
	NBLOCKS    uint64 = DATASTART + NDATABLK

	NINODE uint64 = NINODEBLK * INODEBLK

	// the root directory owns a single block at the start of the data region
	ROOTDIRBLK Bnum = DATASTART
)

const (
	ROOTINUM Inum = 0
)

const (
	SUPERMAGIC uint32 = 0x56534653 // "VSFS"
	LOGMAGIC   uint32 = 0x4A524E4C // "JRNL"
)

// Inode kinds
const (
	INODE_KIND_FREE uint16 = 0
	INODE_KIND_FILE uint16 = 1
	INODE_KIND_DIR  uint16 = 2
)
