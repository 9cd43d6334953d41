package otf

import (
	"fmt"
	"math"
	"sort"

	"github.com/tdewolff/parse/v2"
)

const (
	sfntVersionTrueType = uint32(0x00010000)
	sfntVersionCFF      = uint32(0x4F54544F) // OTTO
)

type tableRecord struct {
	Tag      string
	Checksum uint32
	Offset   uint32
	Length   uint32
}

// tableDirectory is the front matter of an SFNT file. Records are kept sorted
// ascending by tag.
type tableDirectory struct {
	SfntVersion uint32
	Records     []tableRecord
}

func (dir *tableDirectory) Find(tag string) (tableRecord, bool) {
	i := sort.Search(len(dir.Records), func(i int) bool {
		return tag <= dir.Records[i].Tag
	})
	if i < len(dir.Records) && dir.Records[i].Tag == tag {
		return dir.Records[i], true
	}
	return tableRecord{}, false
}

// searchParams derives the binary search fields of directory-like headers:
// searchRange is the largest power of two not exceeding count times the entry
// size, entrySelector its exponent, and rangeShift the remainder.
func searchParams(count int, entrySize uint16) (searchRange, entrySelector, rangeShift uint16) {
	entrySelector = uint16(math.Log2(float64(count)))
	searchRange = 1 << entrySelector * entrySize
	rangeShift = uint16(count)*entrySize - searchRange
	return
}

// parseTableDirectory reads the directory and slices each table's window out
// of the input. Windows are capped so that table parsers cannot read past
// their declared length.
func parseTableDirectory(b []byte) (*tableDirectory, map[string][]byte, error) {
	if len(b) < 12 || uint(math.MaxUint32) < uint(len(b)) {
		return nil, nil, ErrInvalidFontData
	}

	r := parse.NewBinaryReader(b)
	sfntVersion := r.ReadUint32()
	if sfntVersion != sfntVersionTrueType && sfntVersion != sfntVersionCFF {
		return nil, nil, fmt.Errorf("bad SFNT version")
	}
	numTables := r.ReadUint16()
	if numTables == 0 {
		return nil, nil, ErrInvalidFontData
	}
	_ = r.ReadUint16()                  // searchRange
	_ = r.ReadUint16()                  // entrySelector
	_ = r.ReadUint16()                  // rangeShift
	if r.Len() < 16*uint32(numTables) { // can never exceed uint32 as numTables is uint16
		return nil, nil, ErrInvalidFontData
	}

	dir := &tableDirectory{
		SfntVersion: sfntVersion,
		Records:     make([]tableRecord, numTables),
	}
	tables := make(map[string][]byte, numTables)
	end := 12 + 16*uint32(numTables)
	for i := 0; i < int(numTables); i++ {
		tag := r.ReadString(4)
		checksum := r.ReadUint32()
		offset := r.ReadUint32()
		length := r.ReadUint32()
		if 0 < i && tag <= dir.Records[i-1].Tag {
			return nil, nil, ErrInvalidFontData
		}

		padding := tablePadding(length)
		if offset < end || uint32(len(b)) < offset || uint32(len(b))-offset < length || uint32(len(b))-offset-length < padding {
			return nil, nil, ErrInvalidFontData
		}
		dir.Records[i] = tableRecord{
			Tag:      tag,
			Checksum: checksum,
			Offset:   offset,
			Length:   length,
		}
		tables[tag] = b[offset : offset+length : offset+length]
	}
	return dir, tables, nil
}
