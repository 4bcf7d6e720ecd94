package util

import "log"

// Debug is the highest DPrintf level that is printed.
var Debug uint64 = 0

func SetDebug(level uint64) {
	Debug = level
}

func DPrintf(level uint64, format string, a ...interface{}) {
	if level <= Debug {
		log.Printf(format, a...)
	}
}

func RoundUp(n uint64, sz uint64) uint64 {
	return (n + sz - 1) / sz
}

func Min(n uint64, m uint64) uint64 {
	if n < m {
		return n
	} else {
		return m
	}
}

// SumOverflows reports whether n + m wraps around.
func SumOverflows(n uint64, m uint64) bool {
	return n+m < n
}

func CloneByteSlice(s []byte) []byte {
	s2 := make([]byte, len(s))
	copy(s2, s)
	return s2
}

// PackU16s packs two 16-bit fields into the little-endian layout of a u32, lo
// first.
func PackU16s(lo uint16, hi uint16) uint32 {
	return uint32(lo) | uint32(hi)<<16
}

func UnpackU16s(x uint32) (uint16, uint16) {
	return uint16(x), uint16(x >> 16)
}
