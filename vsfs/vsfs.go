// Package vsfs is the handle to one vsfs image: it creates files through the
// journal and installs committed journal transactions.
package vsfs

import (
	"errors"
	"fmt"
	"time"

	"github.com/mit-pdos/go-vsfs/common"
	"github.com/mit-pdos/go-vsfs/dir"
	"github.com/mit-pdos/go-vsfs/disk"
	"github.com/mit-pdos/go-vsfs/inode"
	"github.com/mit-pdos/go-vsfs/super"
	"github.com/mit-pdos/go-vsfs/util"
	"github.com/mit-pdos/go-vsfs/wal"
)

var (
	ErrInvalidName = errors.New("invalid file name")
	ErrExists      = errors.New("file exists")
)

type Fs struct {
	d     disk.Disk
	Super *super.FsSuper
	log   *wal.Walog
	clock func() time.Time
}

type Option func(*Fs)

// WithClock sets the source of inode timestamps.
func WithClock(now func() time.Time) Option {
	return func(fs *Fs) {
		fs.clock = now
	}
}

// Open checks the superblock of d and returns a handle to it. The handle
// does not own d; closing d is up to the caller.
func Open(d disk.Disk, opts ...Option) (*Fs, error) {
	sb, err := super.Read(d)
	if err != nil {
		return nil, err
	}
	fs := &Fs{
		d:     d,
		Super: sb,
		log:   wal.MkLog(d),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(fs)
	}
	util.DPrintf(1, "Open: volume %s\n", sb.UUID)
	return fs, nil
}

// OpenFile opens the image at path. Close releases the file.
func OpenFile(path string, opts ...Option) (*Fs, error) {
	d, err := disk.OpenFileDisk(path)
	if err != nil {
		return nil, err
	}
	fs, err := Open(d, opts...)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return fs, nil
}

// Mkfs creates (or overwrites) the image at path with an empty file system.
func Mkfs(path string, now time.Time) (*super.FsSuper, error) {
	d, err := disk.NewFileDisk(path, common.NBLOCKS)
	if err != nil {
		return nil, err
	}
	defer d.Close()
	return super.Format(d, now)
}

func (fs *Fs) Close() error {
	return fs.d.Close()
}

// Install replays every committed transaction into place and empties the
// journal.
func (fs *Fs) Install() (uint64, error) {
	return fs.log.Install()
}

// InstallN replays at most max transactions (all if max < 0). The journal is
// emptied afterwards either way, so transactions past max are lost.
func (fs *Fs) InstallN(max int) (uint64, error) {
	return fs.log.InstallN(max)
}

// Pending returns the committed transactions not yet installed.
func (fs *Fs) Pending() ([]wal.Txn, error) {
	return fs.log.Scan()
}

// List returns the root directory as of the latest committed transaction.
func (fs *Fs) List() ([]dir.Dirent, error) {
	blk, err := fs.log.Read(common.ROOTDIRBLK)
	if err != nil {
		return nil, err
	}
	return dir.List(blk), nil
}

// Stat returns inode inum as of the latest committed transaction.
func (fs *Fs) Stat(inum common.Inum) (*inode.Inode, error) {
	if uint64(inum) >= common.NINODE {
		return nil, fmt.Errorf("inode %d out of range", inum)
	}
	blk, err := fs.log.Read(inode.Block(inum))
	if err != nil {
		return nil, err
	}
	return inode.Load(blk, inum), nil
}
