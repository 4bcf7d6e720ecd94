package disk

import "errors"

// ErrCrashed is returned by a CrashDisk for every write issued after its
// crash point.
var ErrCrashed = errors.New("simulated crash")

// CrashDisk wraps a Disk and stops persisting writes after a fixed number of
// them, modelling a machine that loses power mid-operation. Reads always go to
// the underlying disk, so reopening the wrapped disk shows exactly the
// writes that landed.
type CrashDisk struct {
	Disk
	budget  uint64
	writes  uint64
	crashed bool
}

func NewCrashDisk(d Disk, writesBeforeCrash uint64) *CrashDisk {
	return &CrashDisk{Disk: d, budget: writesBeforeCrash}
}

func (d *CrashDisk) Write(a uint64, v Block) error {
	if d.writes >= d.budget {
		d.crashed = true
		return ErrCrashed
	}
	d.writes++
	return d.Disk.Write(a, v)
}

func (d *CrashDisk) Barrier() error {
	if d.crashed {
		return ErrCrashed
	}
	return d.Disk.Barrier()
}

// Writes is the number of writes that reached the underlying disk.
func (d *CrashDisk) Writes() uint64 {
	return d.writes
}

func (d *CrashDisk) Crashed() bool {
	return d.crashed
}
