package otf

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/tdewolff/parse/v2"
)

// MaxCmapSegments is the maximum number of cmap segments that will be accepted.
const MaxCmapSegments = 20000

// cmapPriority lists the recognized (platform,encoding) pairs in lookup order.
var cmapPriority = [][2]uint16{
	{uint16(PlatformUnicode), uint16(EncodingUnicode2FullRepertoire)},
	{uint16(PlatformWindows), uint16(EncodingWindowsUnicodeFullRepertoir)},
	{uint16(PlatformUnicode), uint16(EncodingUnicode2BMP)},
	{uint16(PlatformWindows), uint16(EncodingWindowsUnicodeBMP)},
}

type cmapSubtable interface {
	Get(rune) (uint16, bool)
	Runes() []rune
	write(w *parse.BinaryWriter) error
}

type cmapEncodingRecord struct {
	PlatformID PlatformID
	EncodingID EncodingID
	Subtable   cmapSubtable
}

type cmapTable struct {
	Records []cmapEncodingRecord
}

// Get returns the glyph ID for the given rune, trying the recognized
// (platform,encoding) pairs in priority order. It returns 0 when the rune is
// not mapped.
func (cmap *cmapTable) Get(r rune) uint16 {
	for _, pair := range cmapPriority {
		for _, record := range cmap.Records {
			if uint16(record.PlatformID) != pair[0] || uint16(record.EncodingID) != pair[1] {
				continue
			}
			if glyphID, ok := record.Subtable.Get(r); ok && glyphID != 0 {
				return glyphID
			}
		}
	}
	return 0
}

// Runes returns the sorted set of code points mapped to a nonzero glyph by any
// of the subtables.
func (cmap *cmapTable) Runes() []rune {
	seen := map[rune]bool{}
	var subtables []cmapSubtable
	for _, record := range cmap.Records {
		shared := false
		for _, subtable := range subtables {
			if subtable == record.Subtable {
				shared = true
				break
			}
		}
		if !shared {
			subtables = append(subtables, record.Subtable)
		}
	}
	rs := []rune{}
	for _, subtable := range subtables {
		for _, r := range subtable.Runes() {
			if !seen[r] {
				seen[r] = true
				rs = append(rs, r)
			}
		}
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i] < rs[j] })
	return rs
}

////////////////////////////////////////////////////////////////

type cmapFormat4 struct {
	StartCode     []uint16
	EndCode       []uint16
	IdDelta       []int16
	IdRangeOffset []uint16
	GlyphIdArray  []uint16
}

func (subtable *cmapFormat4) Get(r rune) (uint16, bool) {
	if r < 0 || 65536 <= r {
		return 0, false
	}
	n := len(subtable.StartCode)
	for i := 0; i < n; i++ {
		if subtable.StartCode[i] <= uint16(r) && uint16(r) <= subtable.EndCode[i] {
			if subtable.IdRangeOffset[i] == 0 {
				// modulo 65536 through the uint16 cast and addition overflow
				return uint16(subtable.IdDelta[i]) + uint16(r), true
			}
			// idRangeOffset is a byte offset from its own word position into
			// the glyph ID array
			index := int(subtable.IdRangeOffset[i]/2) + int(uint16(r)-subtable.StartCode[i]) - (n - i)
			glyphID := subtable.GlyphIdArray[index] // index validated on parse
			if glyphID == 0 {
				return 0, false
			}
			return glyphID + uint16(subtable.IdDelta[i]), true
		}
	}
	return 0, false
}

func (subtable *cmapFormat4) Runes() []rune {
	rs := []rune{}
	for i := 0; i < len(subtable.StartCode); i++ {
		for c := uint32(subtable.StartCode[i]); c <= uint32(subtable.EndCode[i]); c++ {
			if glyphID, ok := subtable.Get(rune(c)); ok && glyphID != 0 {
				rs = append(rs, rune(c))
			}
		}
	}
	return rs
}

func (subtable *cmapFormat4) write(w *parse.BinaryWriter) error {
	start := w.Len()
	w.WriteUint16(4) // format
	w.WriteUint16(0) // length (set later)
	w.WriteUint16(0) // language

	segCount := uint16(len(subtable.StartCode))
	searchRange := uint16(math.Exp2(math.Floor(math.Log2(float64(segCount)))))
	entrySelector := uint16(math.Log2(float64(searchRange)))
	w.WriteUint16(segCount * 2)                 // segCountX2
	w.WriteUint16(searchRange * 2)              // searchRange
	w.WriteUint16(entrySelector)                // entrySelector
	w.WriteUint16((segCount - searchRange) * 2) // rangeShift

	for _, endCode := range subtable.EndCode {
		w.WriteUint16(endCode)
	}
	w.WriteUint16(0) // reservedPad
	for _, startCode := range subtable.StartCode {
		w.WriteUint16(startCode)
	}
	for _, idDelta := range subtable.IdDelta {
		w.WriteInt16(idDelta)
	}
	for _, idRangeOffset := range subtable.IdRangeOffset {
		w.WriteUint16(idRangeOffset)
	}
	for _, glyphID := range subtable.GlyphIdArray {
		w.WriteUint16(glyphID)
	}

	length := w.Len() - start
	if math.MaxUint16 < length {
		return fmt.Errorf("cmap: format 4 subtable too long")
	}
	binary.BigEndian.PutUint16(w.Bytes()[start+2:], uint16(length))
	return nil
}

////////////////////////////////////////////////////////////////

type cmapFormat12 struct {
	StartCharCode []uint32
	EndCharCode   []uint32
	StartGlyphID  []uint32
}

func (subtable *cmapFormat12) Get(r rune) (uint16, bool) {
	if r < 0 {
		return 0, false
	}
	for i := 0; i < len(subtable.StartCharCode); i++ {
		if subtable.StartCharCode[i] <= uint32(r) && uint32(r) <= subtable.EndCharCode[i] {
			return uint16((uint32(r) - subtable.StartCharCode[i]) + subtable.StartGlyphID[i]), true
		}
	}
	return 0, false
}

func (subtable *cmapFormat12) Runes() []rune {
	rs := []rune{}
	for i := 0; i < len(subtable.StartCharCode); i++ {
		for c := subtable.StartCharCode[i]; c <= subtable.EndCharCode[i]; c++ {
			if glyphID, ok := subtable.Get(rune(c)); ok && glyphID != 0 {
				rs = append(rs, rune(c))
			}
		}
	}
	return rs
}

func (subtable *cmapFormat12) write(w *parse.BinaryWriter) error {
	numGroups := uint32(len(subtable.StartCharCode))
	w.WriteUint16(12)                // format
	w.WriteUint16(0)                 // reserved
	w.WriteUint32(16 + 12*numGroups) // length
	w.WriteUint32(0)                 // language
	w.WriteUint32(numGroups)
	for i := 0; i < int(numGroups); i++ {
		w.WriteUint32(subtable.StartCharCode[i])
		w.WriteUint32(subtable.EndCharCode[i])
		w.WriteUint32(subtable.StartGlyphID[i])
	}
	return nil
}

////////////////////////////////////////////////////////////////

func cmapRecognizedPair(platformID, encodingID uint16) bool {
	for _, pair := range cmapPriority {
		if pair[0] == platformID && pair[1] == encodingID {
			return true
		}
	}
	return false
}

func (font *Font) parseCmap() error {
	if font.Maxp == nil {
		return fmt.Errorf("cmap: missing maxp table")
	}

	b, ok := font.Tables["cmap"]
	if !ok {
		return ErrMissingTable{"cmap"}
	} else if len(b) < 4 {
		return fmt.Errorf("cmap: bad table")
	}

	font.Cmap = &cmapTable{}
	r := parse.NewBinaryReader(b)
	if r.ReadUint16() != 0 {
		return fmt.Errorf("cmap: bad version")
	}
	numTables := r.ReadUint16()
	if uint32(len(b)) < 4+8*uint32(numTables) {
		return fmt.Errorf("cmap: bad table")
	}

	// encoding records sharing a subtable offset share the decoded subtable
	subtables := map[uint32]cmapSubtable{}
	for j := 0; j < int(numTables); j++ {
		platformID := r.ReadUint16()
		encodingID := r.ReadUint16()
		offset := r.ReadUint32()
		if !cmapRecognizedPair(platformID, encodingID) {
			continue
		}
		if uint32(len(b))-8 < offset {
			return fmt.Errorf("cmap: bad subtable %d", j)
		}

		subtable, ok := subtables[offset]
		if !ok {
			var err error
			subtable, err = font.parseCmapSubtable(b[offset:], j)
			if err != nil {
				return err
			} else if subtable == nil {
				// unsupported format, drop the record
				continue
			}
			subtables[offset] = subtable
		}
		font.Cmap.Records = append(font.Cmap.Records, cmapEncodingRecord{
			PlatformID: PlatformID(platformID),
			EncodingID: EncodingID(encodingID),
			Subtable:   subtable,
		})
	}
	if len(font.Cmap.Records) == 0 {
		return fmt.Errorf("cmap: no supported encoding records")
	}
	return nil
}

func (font *Font) parseCmapSubtable(b []byte, j int) (cmapSubtable, error) {
	rs := parse.NewBinaryReader(b)
	format := rs.ReadUint16()
	var length uint32
	switch format {
	case 0, 2, 4, 6:
		if rs.Len() < 2 {
			return nil, fmt.Errorf("cmap: bad subtable %d", j)
		}
		length = uint32(rs.ReadUint16())
	case 8, 10, 12, 13:
		if rs.Len() < 6 {
			return nil, fmt.Errorf("cmap: bad subtable %d", j)
		}
		_ = rs.ReadUint16() // reserved
		length = rs.ReadUint32()
	case 14:
		if rs.Len() < 4 {
			return nil, fmt.Errorf("cmap: bad subtable %d", j)
		}
		length = rs.ReadUint32()
	default:
		return nil, fmt.Errorf("cmap: bad format %d for subtable %d", format, j)
	}
	if length < 8 || uint32(len(b)) < length {
		return nil, fmt.Errorf("cmap: bad subtable %d", j)
	}
	rs.SetLen(length - rs.Pos())

	switch format {
	case 4:
		return font.parseCmapFormat4(rs, j)
	case 12:
		return font.parseCmapFormat12(rs, j)
	}
	return nil, nil
}

func (font *Font) parseCmapFormat4(rs *parse.BinaryReader, j int) (cmapSubtable, error) {
	if rs.Len() < 10 {
		return nil, fmt.Errorf("cmap: bad subtable %d", j)
	}
	_ = rs.ReadUint16() // language

	segCount := rs.ReadUint16()
	if segCount%2 != 0 || segCount == 0 {
		return nil, fmt.Errorf("cmap: bad segCount in subtable %d", j)
	}
	segCount /= 2
	if MaxCmapSegments < segCount {
		return nil, fmt.Errorf("cmap: too many segments in subtable %d", j)
	}
	_ = rs.ReadUint16() // searchRange
	_ = rs.ReadUint16() // entrySelector
	_ = rs.ReadUint16() // rangeShift

	subtable := &cmapFormat4{}
	if rs.Len() < 2+8*uint32(segCount) {
		return nil, fmt.Errorf("cmap: bad subtable %d", j)
	}
	subtable.EndCode = make([]uint16, segCount)
	for i := 0; i < int(segCount); i++ {
		endCode := rs.ReadUint16()
		if 0 < i && endCode <= subtable.EndCode[i-1] {
			return nil, fmt.Errorf("cmap: bad endCode in subtable %d", j)
		}
		subtable.EndCode[i] = endCode
	}
	_ = rs.ReadUint16() // reservedPad
	subtable.StartCode = make([]uint16, segCount)
	for i := 0; i < int(segCount); i++ {
		startCode := rs.ReadUint16()
		if subtable.EndCode[i] < startCode || 0 < i && startCode <= subtable.EndCode[i-1] {
			return nil, fmt.Errorf("cmap: bad startCode in subtable %d", j)
		}
		subtable.StartCode[i] = startCode
	}
	if subtable.StartCode[segCount-1] != 0xFFFF || subtable.EndCode[segCount-1] != 0xFFFF {
		return nil, fmt.Errorf("cmap: bad last startCode or endCode in subtable %d", j)
	}

	subtable.IdDelta = make([]int16, segCount)
	for i := 0; i < int(segCount-1); i++ {
		subtable.IdDelta[i] = rs.ReadInt16()
	}
	_ = rs.ReadUint16() // last value may be invalid
	subtable.IdDelta[segCount-1] = 1

	// the glyph ID array occupies whatever remains of the subtable
	glyphIdArrayLength := rs.Len() - 2*uint32(segCount)
	if glyphIdArrayLength%2 != 0 {
		return nil, fmt.Errorf("cmap: bad subtable %d", j)
	}
	glyphIdArrayLength /= 2

	subtable.IdRangeOffset = make([]uint16, segCount)
	for i := 0; i < int(segCount-1); i++ {
		idRangeOffset := rs.ReadUint16()
		if idRangeOffset%2 != 0 {
			return nil, fmt.Errorf("cmap: bad idRangeOffset in subtable %d", j)
		} else if idRangeOffset != 0 {
			index := int(idRangeOffset/2) + int(subtable.EndCode[i]-subtable.StartCode[i]) - (int(segCount) - i)
			if index < 0 || glyphIdArrayLength <= uint32(index) {
				return nil, fmt.Errorf("cmap: bad idRangeOffset in subtable %d", j)
			}
		}
		subtable.IdRangeOffset[i] = idRangeOffset
	}
	_ = rs.ReadUint16() // last value may be invalid
	subtable.IdRangeOffset[segCount-1] = 0

	subtable.GlyphIdArray = make([]uint16, glyphIdArrayLength)
	for i := 0; i < int(glyphIdArrayLength); i++ {
		glyphID := rs.ReadUint16()
		if glyphID != 0 && font.Maxp.NumGlyphs <= glyphID {
			return nil, fmt.Errorf("cmap: bad glyphID in subtable %d", j)
		}
		subtable.GlyphIdArray[i] = glyphID
	}
	return subtable, nil
}

func (font *Font) parseCmapFormat12(rs *parse.BinaryReader, j int) (cmapSubtable, error) {
	if rs.Len() < 8 {
		return nil, fmt.Errorf("cmap: bad subtable %d", j)
	}
	_ = rs.ReadUint32() // language
	numGroups := rs.ReadUint32()
	if MaxCmapSegments < numGroups {
		return nil, fmt.Errorf("cmap: too many segments in subtable %d", j)
	} else if rs.Len() < 12*numGroups {
		return nil, fmt.Errorf("cmap: bad subtable %d", j)
	}

	subtable := &cmapFormat12{}
	subtable.StartCharCode = make([]uint32, numGroups)
	subtable.EndCharCode = make([]uint32, numGroups)
	subtable.StartGlyphID = make([]uint32, numGroups)
	for i := 0; i < int(numGroups); i++ {
		startCharCode := rs.ReadUint32()
		endCharCode := rs.ReadUint32()
		startGlyphID := rs.ReadUint32()
		if endCharCode < startCharCode || 0 < i && startCharCode <= subtable.EndCharCode[i-1] {
			return nil, fmt.Errorf("cmap: bad character code range in subtable %d", j)
		} else if uint32(font.Maxp.NumGlyphs) <= endCharCode-startCharCode || uint32(font.Maxp.NumGlyphs)-(endCharCode-startCharCode) <= startGlyphID {
			return nil, fmt.Errorf("cmap: bad glyphID in subtable %d", j)
		}
		subtable.StartCharCode[i] = startCharCode
		subtable.EndCharCode[i] = endCharCode
		subtable.StartGlyphID[i] = startGlyphID
	}
	return subtable, nil
}

////////////////////////////////////////////////////////////////

// Write serializes the table. Encoding records sharing a decoded subtable
// point at a single copy of its serialization.
func (cmap *cmapTable) Write() ([]byte, error) {
	if len(cmap.Records) == 0 {
		return nil, fmt.Errorf("cmap: no encoding records")
	}

	var subtables []cmapSubtable
	var bodies [][]byte
	index := func(subtable cmapSubtable) (int, error) {
		for i := range subtables {
			if subtables[i] == subtable {
				return i, nil
			}
		}
		w := parse.NewBinaryWriter([]byte{})
		if err := subtable.write(w); err != nil {
			return 0, err
		}
		subtables = append(subtables, subtable)
		bodies = append(bodies, w.Bytes())
		return len(subtables) - 1, nil
	}

	indices := make([]int, len(cmap.Records))
	for i, record := range cmap.Records {
		var err error
		if indices[i], err = index(record.Subtable); err != nil {
			return nil, err
		}
	}

	offsets := make([]uint32, len(subtables))
	offset := 4 + 8*uint32(len(cmap.Records))
	for i, body := range bodies {
		offsets[i] = offset
		offset += uint32(len(body))
	}

	w := parse.NewBinaryWriter(make([]byte, 0, offset))
	w.WriteUint16(0) // version
	w.WriteUint16(uint16(len(cmap.Records)))
	for i, record := range cmap.Records {
		w.WriteUint16(uint16(record.PlatformID))
		w.WriteUint16(uint16(record.EncodingID))
		w.WriteUint32(offsets[indices[i]])
	}
	for _, body := range bodies {
		w.WriteBytes(body)
	}
	return w.Bytes(), nil
}

////////////////////////////////////////////////////////////////

// buildCmap constructs a new character map for the given rune to glyph ID
// assignment. Code points within the basic multilingual plane go into a
// format 4 subtable, anything beyond into format 12, exposed under both the
// Unicode and Windows encoding records.
func buildCmap(runeMap map[rune]uint16) *cmapTable {
	rs := make([]rune, 0, len(runeMap))
	var maxRune rune
	for r := range runeMap {
		rs = append(rs, r)
		if maxRune < r {
			maxRune = r
		}
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i] < rs[j] })

	if maxRune <= 0xFFFF {
		subtable := buildCmapFormat4(rs, runeMap)
		return &cmapTable{Records: []cmapEncodingRecord{
			{PlatformUnicode, EncodingUnicode2BMP, subtable},
			{PlatformWindows, EncodingWindowsUnicodeBMP, subtable},
		}}
	}
	subtable := buildCmapFormat12(rs, runeMap)
	return &cmapTable{Records: []cmapEncodingRecord{
		{PlatformUnicode, EncodingUnicode2FullRepertoire, subtable},
		{PlatformWindows, EncodingWindowsUnicodeFullRepertoir, subtable},
	}}
}

func buildCmapFormat4(rs []rune, runeMap map[rune]uint16) *cmapFormat4 {
	subtable := &cmapFormat4{}
	var rangeIndex []int // glyph ID array index per segment, -1 for delta segments
	addSegment := func(firstCode, lastCode rune, glyphIDs []uint16, contiguous bool) {
		subtable.EndCode = append(subtable.EndCode, uint16(lastCode))
		subtable.StartCode = append(subtable.StartCode, uint16(firstCode))
		if contiguous {
			delta := int(glyphIDs[0]) - int(firstCode)
			if math.MaxInt16 < delta {
				delta -= 65536
			} else if delta < math.MinInt16 {
				delta += 65536
			}
			subtable.IdDelta = append(subtable.IdDelta, int16(delta))
			rangeIndex = append(rangeIndex, -1)
		} else {
			subtable.IdDelta = append(subtable.IdDelta, 0)
			rangeIndex = append(rangeIndex, len(subtable.GlyphIdArray))
			subtable.GlyphIdArray = append(subtable.GlyphIdArray, glyphIDs...)
		}
	}

	if 0 < len(rs) {
		i0 := 0
		glyphIDs := []uint16{runeMap[rs[0]]}
		for i := 1; i <= len(rs); i++ {
			if i == len(rs) || rs[i-1]+1 != rs[i] {
				// Split runs of consecutive code points into segments. A
				// stretch of contiguous glyph IDs of nine or more gets its own
				// delta segment, the rest goes through the glyph ID array.
				j0, jc := 0, 0
				for j := 1; j <= len(glyphIDs); j++ {
					if j == len(glyphIDs) || glyphIDs[j-1]+1 != glyphIDs[j] && 8 < j-jc {
						if 8 < j-jc && j0 != jc {
							addSegment(rs[i0+j0], rs[i0+(jc-1)], glyphIDs[j0:jc], false)
							addSegment(rs[i0+jc], rs[i0+(j-1)], glyphIDs[jc:j], true)
							j0, jc = j, j
						} else if j == len(glyphIDs) {
							addSegment(rs[i0+j0], rs[i0+(j-1)], glyphIDs[j0:j], j0 == jc)
						}
						if j == len(glyphIDs) {
							break
						}
					} else if glyphIDs[j-1]+1 != glyphIDs[j] {
						jc = j
					}
				}
				if i == len(rs) {
					break
				}
				glyphIDs = glyphIDs[:0]
				i0 = i
			}
			glyphIDs = append(glyphIDs, runeMap[rs[i]])
		}
	}
	if len(rs) == 0 || rs[len(rs)-1] != 0xFFFF {
		addSegment(0xFFFF, 0xFFFF, []uint16{0}, true) // maps to .notdef
	}

	// resolve glyph ID array indices into byte offsets relative to the
	// idRangeOffset word itself
	segCount := len(subtable.StartCode)
	subtable.IdRangeOffset = make([]uint16, segCount)
	for i, index := range rangeIndex {
		if index != -1 {
			subtable.IdRangeOffset[i] = uint16(2 * (segCount - i + index))
		}
	}
	return subtable
}

func buildCmapFormat12(rs []rune, runeMap map[rune]uint16) *cmapFormat12 {
	subtable := &cmapFormat12{}
	if len(rs) == 0 {
		return subtable
	}
	startCharCode := uint32(rs[0])
	startGlyphID := uint32(runeMap[rs[0]])
	n := uint32(1)
	for i := 1; i < len(rs); i++ {
		r := rs[i]
		glyphID := runeMap[r]
		if r == rs[i-1] {
			continue
		} else if uint32(r) == startCharCode+n && uint32(glyphID) == startGlyphID+n {
			n++
		} else {
			subtable.StartCharCode = append(subtable.StartCharCode, startCharCode)
			subtable.EndCharCode = append(subtable.EndCharCode, startCharCode+n-1)
			subtable.StartGlyphID = append(subtable.StartGlyphID, startGlyphID)
			startCharCode = uint32(r)
			startGlyphID = uint32(glyphID)
			n = 1
		}
	}
	subtable.StartCharCode = append(subtable.StartCharCode, startCharCode)
	subtable.EndCharCode = append(subtable.EndCharCode, startCharCode+n-1)
	subtable.StartGlyphID = append(subtable.StartGlyphID, startGlyphID)
	return subtable
}
