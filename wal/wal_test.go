package wal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/mit-pdos/go-vsfs/common"
	"github.com/mit-pdos/go-vsfs/disk"
)

type WalSuite struct {
	suite.Suite
	d disk.Disk
	l *Walog
}

func (suite *WalSuite) SetupTest() {
	suite.d = disk.NewMemDisk(common.NBLOCKS)
	suite.Require().NoError(InitLog(suite.d))
	suite.l = MkLog(suite.d)
}

func TestWal(t *testing.T) {
	suite.Run(t, new(WalSuite))
}

func mkBlock(b byte) disk.Block {
	block := make(disk.Block, disk.BlockSize)
	for i := range block {
		block[i] = b
	}
	return block
}

var block0 = mkBlock(0)
var block1 = mkBlock(1)
var block2 = mkBlock(2)

// contiguousTxn gives a transaction that writes b to data blocks [start,
// start+numWrites)
func contiguousTxn(start uint64, numWrites int, b disk.Block) []Update {
	var txn []Update
	for i := 0; i < numWrites; i++ {
		a := common.DATASTART + start + uint64(i)
		txn = append(txn, MkBlockData(a, b))
	}
	return txn
}

func (suite *WalSuite) installed(bn common.Bnum) disk.Block {
	b, err := suite.l.ReadInstalled(common.DATASTART + bn)
	suite.Require().NoError(err)
	return b
}

func (suite *WalSuite) read(bn common.Bnum) disk.Block {
	b, err := suite.l.Read(common.DATASTART + bn)
	suite.Require().NoError(err)
	return b
}

func (suite *WalSuite) used() uint64 {
	used, ok, err := suite.l.Used()
	suite.Require().NoError(err)
	suite.True(ok, "header should be valid")
	return used
}

func (suite *WalSuite) append(txn []Update) LogPosition {
	pos, err := suite.l.Append(txn)
	suite.Require().NoError(err)
	return pos
}

func (suite *WalSuite) install(max int) uint64 {
	n, err := suite.l.InstallN(max)
	suite.Require().NoError(err)
	return n
}

func (suite *WalSuite) TestEmptyInstall() {
	suite.Equal(uint64(0), suite.install(-1))
	suite.Equal(LOGHDRSZ, suite.used())
}

func (suite *WalSuite) TestAppendOnlyTouchesJournal() {
	pos := suite.append(contiguousTxn(1, 2, block1))
	suite.Equal(LogPosition(LOGHDRSZ+TxnSize(2)), pos)
	suite.Equal(uint64(pos), suite.used())
	suite.Equal(block0, suite.installed(1), "home block untouched before install")
	suite.Equal(block1, suite.read(1), "reads see the logged image")
	suite.Equal(block1, suite.read(2))
}

func (suite *WalSuite) TestInstall() {
	suite.append(contiguousTxn(1, 2, block1))
	suite.append(contiguousTxn(2, 2, block2))
	suite.Equal(uint64(2), suite.install(-1))
	suite.Equal(LOGHDRSZ, suite.used())
	suite.Equal(block1, suite.installed(1))
	suite.Equal(block2, suite.installed(2), "later transaction wins")
	suite.Equal(block2, suite.installed(3))

	txns, err := suite.l.Scan()
	suite.NoError(err)
	suite.Empty(txns)
}

func (suite *WalSuite) TestInstallIdempotent() {
	suite.append(contiguousTxn(1, 3, block1))
	suite.Equal(uint64(1), suite.install(-1))
	snapshot := [][]byte{suite.installed(1), suite.installed(2), suite.installed(3)}

	suite.Equal(uint64(0), suite.install(-1), "second install applies nothing")
	suite.Equal(LOGHDRSZ, suite.used())
	suite.Equal(snapshot, [][]byte{suite.installed(1), suite.installed(2), suite.installed(3)})
}

func (suite *WalSuite) TestReplayRecordIdempotent() {
	txn := contiguousTxn(4, 1, block2)
	for i := 0; i < 3; i++ {
		suite.Require().NoError(suite.l.installBlocks(txn))
		suite.Equal(block2, suite.installed(4))
	}
}

func (suite *WalSuite) TestCappedInstall() {
	suite.append(contiguousTxn(1, 1, block1))
	suite.append(contiguousTxn(2, 1, block1))
	suite.append(contiguousTxn(3, 1, block1))
	txns, err := suite.l.Scan()
	suite.NoError(err)
	suite.Len(txns, 3)

	suite.Equal(uint64(1), suite.install(1))
	suite.Equal(block1, suite.installed(1))
	suite.Equal(block0, suite.installed(2), "capped out")
	suite.Equal(block0, suite.installed(3), "capped out")
	suite.Equal(LOGHDRSZ, suite.used(), "journal is emptied regardless of the cap")
	suite.Equal(block0, suite.read(2), "dropped transactions are gone")
}

func (suite *WalSuite) TestIncompleteTailNotInstalled() {
	suite.append(contiguousTxn(1, 1, block1))

	// a data record made visible by the header without its commit record
	r, err := readRegion(suite.d)
	suite.Require().NoError(err)
	h := r.hdr()
	rec := DataRecord{Addr: common.DATASTART + 2, Block: block2}
	copy(r.b[h.used:], rec.Encode())
	suite.Require().NoError(r.writeRange(suite.d, h.used, h.used+DATARECSZ))
	h.used += DATARECSZ
	suite.Require().NoError(r.writeHdr(suite.d, h))

	txns, err := suite.l.Scan()
	suite.NoError(err)
	suite.Len(txns, 1)
	suite.Equal(block0, suite.read(2), "uncommitted image is invisible")

	suite.Equal(uint64(1), suite.install(-1))
	suite.Equal(block1, suite.installed(1))
	suite.Equal(block0, suite.installed(2), "incomplete transaction not applied")
	suite.Equal(LOGHDRSZ, suite.used())
}

func (suite *WalSuite) TestInvalidHeaderMeansEmpty() {
	d := disk.NewMemDisk(common.NBLOCKS)
	l := MkLog(d)
	_, ok, err := l.Used()
	suite.NoError(err)
	suite.False(ok, "zeroed journal has no magic")

	n, err := l.Install()
	suite.NoError(err)
	suite.Equal(uint64(0), n)

	pos, err := l.Append(contiguousTxn(1, 1, block1))
	suite.NoError(err)
	suite.Equal(LogPosition(LOGHDRSZ+TxnSize(1)), pos, "append starts an empty journal")
	used, ok, _ := l.Used()
	suite.True(ok)
	suite.Equal(uint64(pos), used)
}

func (suite *WalSuite) TestLogFull() {
	n := 0
	for {
		_, err := suite.l.Append(contiguousTxn(0, 4, block1))
		if err != nil {
			suite.True(errors.Is(err, ErrLogFull))
			break
		}
		n++
	}
	suite.Equal(int((LOGBYTES-LOGHDRSZ)/TxnSize(4)), n)
	used := suite.used()
	suite.Equal(LOGHDRSZ+uint64(n)*TxnSize(4), used, "refused append changes nothing")

	suite.Equal(uint64(n), suite.install(-1))
	suite.append(contiguousTxn(0, 4, block2))
}

func (suite *WalSuite) TestOversizedTxn() {
	_, err := suite.l.Append(contiguousTxn(0, int(common.LOGBLOCKS), block1))
	suite.True(errors.Is(err, ErrLogFull))
	suite.Equal(LOGHDRSZ, suite.used())
}

func (suite *WalSuite) TestReadLoggedLatest() {
	suite.append(contiguousTxn(5, 1, block1))
	suite.append(contiguousTxn(5, 1, block2))
	b, ok, err := suite.l.ReadLogged(common.DATASTART + 5)
	suite.NoError(err)
	suite.True(ok)
	suite.Equal(block2, b)

	_, ok, err = suite.l.ReadLogged(common.DATASTART + 6)
	suite.NoError(err)
	suite.False(ok)
}

// crashAppend runs an append on a disk that loses every write after the
// first k and reports whether the append returned success.
func crashAppend(d disk.Disk, k uint64, txn []Update) bool {
	cd := disk.NewCrashDisk(d, k)
	_, err := MkLog(cd).Append(txn)
	return err == nil
}

func TestAppendAtomicUnderCrash(t *testing.T) {
	txn := contiguousTxn(1, 4, block1)
	for k := uint64(0); ; k++ {
		d := disk.NewMemDisk(common.NBLOCKS)
		assert.NoError(t, InitLog(d))
		ok := crashAppend(d, k, txn)

		l := MkLog(d)
		n, err := l.Install()
		assert.NoError(t, err)

		var applied []bool
		for _, u := range txn {
			b, _ := d.Read(u.Addr)
			applied = append(applied, b[0] == 1)
		}
		for _, a := range applied {
			assert.Equal(t, applied[0], a, "crash after %d writes: partial txn", k)
		}
		if ok {
			assert.Equal(t, uint64(1), n)
			assert.True(t, applied[0], "committed append must be installed")
			break
		}
		assert.Equal(t, uint64(0), n, "crash after %d writes", k)
		assert.False(t, applied[0], "crash after %d writes", k)
	}
}

func TestInstallRetryAfterCrash(t *testing.T) {
	txn := contiguousTxn(1, 4, block1)
	for k := uint64(0); k <= uint64(len(txn)); k++ {
		d := disk.NewMemDisk(common.NBLOCKS)
		assert.NoError(t, InitLog(d))
		_, err := MkLog(d).Append(txn)
		assert.NoError(t, err)

		_, err = MkLog(disk.NewCrashDisk(d, k)).Install()
		assert.Error(t, err)

		n, err := MkLog(d).Install()
		assert.NoError(t, err)
		assert.Equal(t, uint64(1), n, "journal survives a crashed install")
		for _, u := range txn {
			b, _ := d.Read(u.Addr)
			assert.Equal(t, block1, b)
		}
	}
}
