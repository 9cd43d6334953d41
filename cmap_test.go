package otf

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestCmapFormat4(t *testing.T) {
	// 'a'..'c' map to scattered glyph IDs and go through the glyph ID array,
	// 'p'..'x' are contiguous and become a delta segment
	runeMap := map[rune]uint16{'a': 5, 'b': 9, 'c': 7}
	for i, r := range []rune("pqrstuvwx") {
		runeMap[r] = uint16(20 + i)
	}

	font := &Font{
		Tables: map[string][]byte{},
		Maxp:   &maxpTable{NumGlyphs: 40},
	}
	cmap := buildCmap(runeMap)
	b, err := cmap.Write()
	test.Error(t, err)
	font.Tables["cmap"] = b
	test.Error(t, font.parseCmap())

	test.T(t, len(font.Cmap.Records), 2)
	test.T(t, font.Cmap.Records[0].PlatformID, PlatformUnicode)
	test.T(t, font.Cmap.Records[0].EncodingID, EncodingUnicode2BMP)
	test.T(t, font.Cmap.Records[1].PlatformID, PlatformWindows)
	test.T(t, font.Cmap.Records[1].EncodingID, EncodingWindowsUnicodeBMP)

	for r, glyphID := range runeMap {
		test.T(t, font.Cmap.Get(r), glyphID)
	}
	test.T(t, font.Cmap.Get('d'), uint16(0))
	test.T(t, font.Cmap.Get('o'), uint16(0))
	test.T(t, font.Cmap.Get(0xFFFF), uint16(0))
	test.T(t, font.Cmap.Get(0x10000), uint16(0))

	rs := font.Cmap.Runes()
	test.T(t, len(rs), len(runeMap))
	test.T(t, rs[0], 'a')
	test.T(t, rs[len(rs)-1], 'x')
}

func TestCmapFormat12(t *testing.T) {
	runeMap := map[rune]uint16{
		'A':     1,
		'B':     2,
		0x1F600: 3,
		0x1F601: 4,
	}

	font := &Font{
		Tables: map[string][]byte{},
		Maxp:   &maxpTable{NumGlyphs: 5},
	}
	cmap := buildCmap(runeMap)
	b, err := cmap.Write()
	test.Error(t, err)
	font.Tables["cmap"] = b
	test.Error(t, font.parseCmap())

	test.T(t, font.Cmap.Records[0].EncodingID, EncodingUnicode2FullRepertoire)
	test.T(t, font.Cmap.Records[1].EncodingID, EncodingWindowsUnicodeFullRepertoir)

	for r, glyphID := range runeMap {
		test.T(t, font.Cmap.Get(r), glyphID)
	}
	test.T(t, font.Cmap.Get('C'), uint16(0))
	test.T(t, font.Cmap.Get(0x1F602), uint16(0))
}

func TestCmapSharedSubtable(t *testing.T) {
	// both encoding records point at the same subtable body
	font := &Font{
		Tables: map[string][]byte{},
		Maxp:   &maxpTable{NumGlyphs: 3},
	}
	cmap := buildCmap(map[rune]uint16{'A': 1, 'B': 2})
	b, err := cmap.Write()
	test.Error(t, err)
	font.Tables["cmap"] = b
	test.Error(t, font.parseCmap())

	test.T(t, len(font.Cmap.Records), 2)
	test.That(t, font.Cmap.Records[0].Subtable == font.Cmap.Records[1].Subtable)
}

func TestCmapUnsupportedDropped(t *testing.T) {
	font := &Font{
		Tables: map[string][]byte{},
		Maxp:   &maxpTable{NumGlyphs: 3},
	}

	// a single Macintosh encoding record is not recognized
	font.Tables["cmap"] = []byte{
		0x00, 0x00, // version
		0x00, 0x01, // numTables
		0x00, 0x01, 0x00, 0x00, // platformID, encodingID
		0x00, 0x00, 0x00, 0x0C, // offset
		0x00, 0x00, 0x01, 0x06, 0x00, 0x00, // format 0 stub
	}
	test.That(t, font.parseCmap() != nil)
}
