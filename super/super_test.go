package super

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-vsfs/alloc"
	"github.com/mit-pdos/go-vsfs/common"
	"github.com/mit-pdos/go-vsfs/dir"
	"github.com/mit-pdos/go-vsfs/disk"
	"github.com/mit-pdos/go-vsfs/inode"
	"github.com/mit-pdos/go-vsfs/wal"
)

func TestLayout(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(common.Bnum(17), common.INODEBMAP)
	assert.Equal(common.Bnum(18), common.DATABMAP)
	assert.Equal(common.Bnum(19), common.INODESTART)
	assert.Equal(common.Bnum(21), common.DATASTART)
	assert.Equal(uint64(85), common.NBLOCKS)
	assert.Equal(uint64(64), common.NINODE)
}

func TestEncodeLayout(t *testing.T) {
	sb := MkFsSuper()
	sb.UUID = uuid.New()
	b := sb.Encode()
	assert.Len(t, b, int(disk.BlockSize))
	assert.Equal(t, []byte{0x53, 0x46, 0x53, 0x56}, []byte(b[:4]))
	assert.Equal(t, []byte{0, 0x10, 0, 0}, []byte(b[4:8]), "block size 4096")
	assert.Equal(t, sb.UUID[:], []byte(b[36:52]))
	assert.Equal(t, sb, Decode(b))
}

func TestFormat(t *testing.T) {
	assert := assert.New(t)
	d := disk.NewMemDisk(common.NBLOCKS)
	now := time.Unix(1700000000, 0)
	sb, err := Format(d, now)
	require.NoError(t, err)
	assert.NotEqual(uuid.Nil, sb.UUID)

	got, err := Read(d)
	require.NoError(t, err)
	assert.Equal(sb, got)

	used, ok, err := wal.MkLog(d).Used()
	require.NoError(t, err)
	assert.True(ok)
	assert.Equal(wal.LOGHDRSZ, used, "empty journal")

	ibmap, _ := d.Read(common.INODEBMAP)
	ia := alloc.MkAlloc(ibmap, common.NINODE)
	assert.True(ia.IsUsed(uint64(common.ROOTINUM)))
	assert.Equal(common.NINODE-1, ia.NumFree())

	dbmap, _ := d.Read(common.DATABMAP)
	assert.Equal(common.NDATABLK-1, alloc.MkAlloc(dbmap, common.NDATABLK).NumFree())

	iblk, _ := d.Read(inode.Block(common.ROOTINUM))
	root := inode.Load(iblk, common.ROOTINUM)
	assert.True(root.IsDir())
	assert.Equal(uint32(0), root.Size)
	assert.Equal(uint32(common.ROOTDIRBLK), root.Direct[0])
	assert.Equal(uint32(now.Unix()), root.Ctime)

	dblk, _ := d.Read(common.ROOTDIRBLK)
	assert.Empty(dir.List(dblk))
}

func TestReadRejects(t *testing.T) {
	d := disk.NewMemDisk(common.NBLOCKS)
	_, err := Read(d)
	assert.True(t, errors.Is(err, ErrBadMagic))

	sb := MkFsSuper()
	sb.InodeStart++
	require.NoError(t, d.Write(common.SUPERBLK, sb.Encode()))
	_, err = Read(d)
	assert.True(t, errors.Is(err, ErrGeometry))

	_, err = Read(disk.NewMemDisk(common.NBLOCKS - 1))
	assert.True(t, errors.Is(err, ErrGeometry), "disk too small")
	_, err = Format(disk.NewMemDisk(10), time.Now())
	assert.True(t, errors.Is(err, ErrGeometry))
}
