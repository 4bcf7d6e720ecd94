package wal

import (
	"fmt"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-vsfs/common"
	"github.com/mit-pdos/go-vsfs/disk"
	"github.com/mit-pdos/go-vsfs/util"
)

type hdr struct {
	magic uint32
	used  uint64
}

func (h hdr) valid() bool {
	return h.magic == common.LOGMAGIC && h.used >= LOGHDRSZ && h.used <= LOGBYTES
}

func emptyHdr() hdr {
	return hdr{magic: common.LOGMAGIC, used: LOGHDRSZ}
}

func (h hdr) encode() []byte {
	enc := marshal.NewEnc(LOGHDRSZ)
	enc.PutInt32(h.magic)
	enc.PutInt32(uint32(h.used))
	return enc.Finish()
}

func decodeHdr(b []byte) hdr {
	dec := marshal.NewDec(b[:LOGHDRSZ])
	magic := dec.GetInt32()
	used := uint64(dec.GetInt32())
	return hdr{magic: magic, used: used}
}

// region is an in-memory copy of the whole journal.
type region struct {
	b []byte
}

func readRegion(d disk.Disk) (*region, error) {
	r := &region{b: make([]byte, LOGBYTES)}
	for i := uint64(0); i < common.LOGBLOCKS; i++ {
		off := i * disk.BlockSize
		err := d.ReadTo(common.LOGSTART+i, r.b[off:off+disk.BlockSize])
		if err != nil {
			return nil, fmt.Errorf("reading journal: %w", err)
		}
	}
	return r, nil
}

func (r *region) hdr() hdr {
	return decodeHdr(r.b)
}

func (r *region) setHdr(h hdr) {
	copy(r.b[:LOGHDRSZ], h.encode())
}

// writeRange writes every journal block that overlaps [start, end).
func (r *region) writeRange(d disk.Disk, start uint64, end uint64) error {
	if start >= end {
		return nil
	}
	first := start / disk.BlockSize
	last := util.RoundUp(end, disk.BlockSize)
	for i := first; i < last; i++ {
		off := i * disk.BlockSize
		util.DPrintf(5, "writeRange: journal block %d\n", i)
		err := d.Write(common.LOGSTART+i, r.b[off:off+disk.BlockSize])
		if err != nil {
			return fmt.Errorf("writing journal: %w", err)
		}
	}
	return nil
}

// writeHdr persists the header. The header lives in the first journal block,
// so that block is rewritten as a whole.
func (r *region) writeHdr(d disk.Disk, h hdr) error {
	r.setHdr(h)
	return r.writeRange(d, 0, LOGHDRSZ)
}

// InitLog writes an empty journal header.
func InitLog(d disk.Disk) error {
	r, err := readRegion(d)
	if err != nil {
		return err
	}
	if err := r.writeHdr(d, emptyHdr()); err != nil {
		return err
	}
	return d.Barrier()
}
