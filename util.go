package otf

import (
	"encoding/binary"
	"fmt"
)

// ErrInvalidFontData is returned if the font file is structurally damaged.
var ErrInvalidFontData = fmt.Errorf("invalid font data")

// ErrMissingTable is returned when a required table is absent from the font.
type ErrMissingTable struct {
	Tag string
}

func (err ErrMissingTable) Error() string {
	return err.Tag + ": missing table"
}

// calcChecksum sums the data as big-endian uint32 words. A trailing partial
// word is zero-padded.
func calcChecksum(b []byte) uint32 {
	var sum uint32
	n := len(b) &^ 3
	for i := 0; i < n; i += 4 {
		sum += binary.BigEndian.Uint32(b[i : i+4])
	}
	if n < len(b) {
		var word [4]byte
		copy(word[:], b[n:])
		sum += binary.BigEndian.Uint32(word[:])
	}
	return sum
}

func tablePadding(length uint32) uint32 {
	return (4 - length&3) & 3
}

// Uint8ToFlags converts a uint8 in 8 booleans from least to most significant.
func Uint8ToFlags(v uint8) (flags [8]bool) {
	for i := 0; i < 8; i++ {
		flags[i] = v&(1<<i) != 0
	}
	return
}

// Uint16ToFlags converts a uint16 in 16 booleans from least to most significant.
func Uint16ToFlags(v uint16) (flags [16]bool) {
	for i := 0; i < 16; i++ {
		flags[i] = v&(1<<i) != 0
	}
	return
}

func flagsToUint8(flags [8]bool) (v uint8) {
	for i := 0; i < 8; i++ {
		if flags[i] {
			v |= 1 << i
		}
	}
	return
}

func flagsToUint16(flags [16]bool) (v uint16) {
	for i := 0; i < 16; i++ {
		if flags[i] {
			v |= 1 << i
		}
	}
	return
}
