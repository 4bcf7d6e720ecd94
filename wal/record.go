package wal

import (
	"fmt"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-vsfs/common"
	"github.com/mit-pdos/go-vsfs/disk"
	"github.com/mit-pdos/go-vsfs/util"
)

// Record is one journal record: either a DataRecord or a CommitRecord.
type Record interface {
	Type() uint16
	Size() uint64
	Encode() []byte
}

// DataRecord redoes a write of a whole home block.
type DataRecord struct {
	Addr  common.Bnum
	Block disk.Block
}

// CommitRecord ends a transaction.
type CommitRecord struct{}

var _ Record = DataRecord{}
var _ Record = CommitRecord{}

func (r DataRecord) Type() uint16 { return REC_DATA }
func (r DataRecord) Size() uint64 { return DATARECSZ }

func (r DataRecord) Encode() []byte {
	if uint64(len(r.Block)) != disk.BlockSize {
		panic(fmt.Errorf("data record for %d is not block-sized (%d bytes)",
			r.Addr, len(r.Block)))
	}
	enc := marshal.NewEnc(DATARECSZ)
	enc.PutInt32(util.PackU16s(REC_DATA, uint16(DATARECSZ)))
	enc.PutInt32(uint32(r.Addr))
	enc.PutBytes(r.Block)
	return enc.Finish()
}

func (r CommitRecord) Type() uint16 { return REC_COMMIT }
func (r CommitRecord) Size() uint64 { return COMMITRECSZ }

func (r CommitRecord) Encode() []byte {
	enc := marshal.NewEnc(COMMITRECSZ)
	enc.PutInt32(util.PackU16s(REC_COMMIT, uint16(COMMITRECSZ)))
	return enc.Finish()
}

func decodeRecHdr(b []byte) (uint16, uint64) {
	dec := marshal.NewDec(b[:RECHDRSZ])
	typ, sz := util.UnpackU16s(dec.GetInt32())
	return typ, uint64(sz)
}

// DecodeRecord parses the record at the start of b, which holds the rest of
// the used log. It fails if the record is truncated, has a size that does
// not match its type, or has an unknown type.
func DecodeRecord(b []byte) (Record, bool) {
	if uint64(len(b)) < RECHDRSZ {
		return nil, false
	}
	typ, sz := decodeRecHdr(b)
	if sz < RECHDRSZ || sz > uint64(len(b)) {
		return nil, false
	}
	switch typ {
	case REC_COMMIT:
		if sz != COMMITRECSZ {
			return nil, false
		}
		return CommitRecord{}, true
	case REC_DATA:
		if sz != DATARECSZ {
			return nil, false
		}
		dec := marshal.NewDec(b[RECHDRSZ:sz])
		bn := common.Bnum(dec.GetInt32())
		blk := util.CloneByteSlice(dec.GetBytes(disk.BlockSize))
		return DataRecord{Addr: bn, Block: blk}, true
	default:
		return nil, false
	}
}
