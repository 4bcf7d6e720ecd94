package wal

import (
	"github.com/mit-pdos/go-vsfs/common"
	"github.com/mit-pdos/go-vsfs/disk"
	"github.com/mit-pdos/go-vsfs/util"
)

// ReadLogged returns the image of blkno written by the latest committed but
// not yet installed transaction, if any.
func (l *Walog) ReadLogged(blkno common.Bnum) (disk.Block, bool, error) {
	txns, err := l.Scan()
	if err != nil {
		return nil, false, err
	}
	var blk disk.Block
	var found bool
	for _, txn := range txns {
		for _, u := range txn.Updates {
			if u.Addr == blkno {
				blk = u.Block
				found = true
			}
		}
	}
	if found {
		util.DPrintf(5, "ReadLogged: %d from journal\n", blkno)
		return util.CloneByteSlice(blk), true, nil
	}
	return nil, false, nil
}

// Read from only the installed state.
func (l *Walog) ReadInstalled(blkno common.Bnum) (disk.Block, error) {
	return l.d.Read(blkno)
}

// Read returns the latest committed contents of blkno: the journal's image if
// one is pending, otherwise the home block.
func (l *Walog) Read(blkno common.Bnum) (disk.Block, error) {
	blk, ok, err := l.ReadLogged(blkno)
	if err != nil {
		return nil, err
	}
	if ok {
		return blk, nil
	}
	return l.ReadInstalled(blkno)
}
