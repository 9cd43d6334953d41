package otf

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestSearchParams(t *testing.T) {
	var tests = []struct {
		count                                 int
		entrySize                             uint16
		searchRange, entrySelector, rangeShift uint16
	}{
		{1, 16, 16, 0, 0},
		{2, 16, 32, 1, 0},
		{3, 16, 32, 1, 16},
		{16, 16, 256, 4, 0},
		{17, 16, 256, 4, 16},
		{39, 6, 192, 5, 42},
	}
	for _, tt := range tests {
		searchRange, entrySelector, rangeShift := searchParams(tt.count, tt.entrySize)
		test.T(t, searchRange, tt.searchRange)
		test.T(t, entrySelector, tt.entrySelector)
		test.T(t, rangeShift, tt.rangeShift)
	}
}

func TestCalcChecksum(t *testing.T) {
	test.T(t, calcChecksum([]byte{0x00, 0x00, 0x00, 0x01}), uint32(1))
	test.T(t, calcChecksum([]byte{0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x02}), uint32(3))

	// trailing partial word is zero padded
	test.T(t, calcChecksum([]byte{0x00, 0x00, 0x00, 0x01, 0x01}), uint32(0x01000001))

	// sums wrap around
	test.T(t, calcChecksum([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0x00, 0x00, 0x02}), uint32(1))
}

func TestTablePadding(t *testing.T) {
	test.T(t, tablePadding(0), uint32(0))
	test.T(t, tablePadding(1), uint32(3))
	test.T(t, tablePadding(2), uint32(2))
	test.T(t, tablePadding(3), uint32(1))
	test.T(t, tablePadding(4), uint32(0))
}

func TestTableDirectoryFind(t *testing.T) {
	b, err := testFont().Write()
	test.Error(t, err)
	dir, tables, err := parseTableDirectory(b)
	test.Error(t, err)

	record, ok := dir.Find("glyf")
	test.That(t, ok)
	test.T(t, record.Length, uint32(len(tables["glyf"])))

	_, ok = dir.Find("CFF ")
	test.That(t, !ok)
}
