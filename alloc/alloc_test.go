package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mit-pdos/go-vsfs/common"
	"github.com/mit-pdos/go-vsfs/disk"
)

func TestPopCnt(t *testing.T) {
	assert.Equal(t, uint64(0), popCnt(0))
	assert.Equal(t, uint64(1), popCnt(1))
	assert.Equal(t, uint64(1), popCnt(2))
	assert.Equal(t, uint64(2), popCnt(3))
	assert.Equal(t, uint64(8), popCnt(255))
}

func TestAlloc(t *testing.T) {
	assert := assert.New(t)
	max := uint64(32)
	a := MkAlloc(make([]byte, disk.BlockSize), max)

	assert.Equal(max, a.NumFree(), "everything should be initially free")

	n, ok := a.AllocNum()
	assert.True(ok)
	assert.Equal(uint64(0), n, "lowest index first")

	a.MarkUsed(n + 1)
	n2, ok := a.AllocNum()
	assert.True(ok)
	assert.Equal(uint64(2), n2, "should not allocate something marked used")

	assert.Equal(max-3, a.NumFree(), "should have used 3 items")

	a.FreeNum(n)
	assert.False(a.IsUsed(n))
	n3, _ := a.FindFree()
	assert.Equal(n, n3, "freed bit is reused first")
	assert.Equal(max-2, a.NumFree(), "should have freed")
}

func TestBitLayout(t *testing.T) {
	bm := make([]byte, disk.BlockSize)
	a := MkAlloc(bm, common.NINODE)
	a.MarkUsed(0)
	a.MarkUsed(9)
	assert.Equal(t, byte(0x01), bm[0])
	assert.Equal(t, byte(0x02), bm[1])
}

func TestExhausted(t *testing.T) {
	bm := make([]byte, disk.BlockSize)
	for i := range bm {
		bm[i] = 0xff
	}
	a := MkAlloc(bm, common.NINODE)
	_, ok := a.FindFree()
	assert.False(t, ok)
	assert.Equal(t, uint64(0), a.NumFree())

	// bits past max are ignored even if clear
	bm = make([]byte, disk.BlockSize)
	bm[0] = 0x7f
	a = MkAlloc(bm, 7)
	_, ok = a.AllocNum()
	assert.False(t, ok)
}

func TestOutOfRange(t *testing.T) {
	a := MkAlloc(make([]byte, 1), 8)
	assert.Panics(t, func() { a.MarkUsed(8) })
	assert.Panics(t, func() { MkAlloc(make([]byte, 1), 9) })
}
