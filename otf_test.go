package otf

import (
	"encoding/binary"
	"testing"
	"time"
	"unicode/utf16"

	"github.com/tdewolff/test"
)

func utf16be(s string) []byte {
	var b []byte
	for _, v := range utf16.Encode([]rune(s)) {
		b = append(b, byte(v>>8), byte(v))
	}
	return b
}

// testFont synthesizes a six glyph TrueType font: .notdef (empty), the simple
// glyphs A, B and D, a composite C referencing A, and one unmapped glyph.
func testFont() *Font {
	simple := func(xmin, ymin, xmax, ymax int16) *glyphData {
		return &glyphData{
			NumberOfContours: 1,
			XMin:             xmin,
			YMin:             ymin,
			XMax:             xmax,
			YMax:             ymax,
			Description:      []byte{0x00, 0x05, 0x01, 0x00, 0x00, 0x00},
		}
	}
	glyf := &glyfTable{Glyphs: []*glyphData{
		nil,
		simple(10, 0, 490, 700),
		simple(20, 0, 480, 710),
		{
			NumberOfContours: -1,
			XMin:             10,
			YMin:             0,
			XMax:             490,
			YMax:             700,
			Description:      []byte{0x00, 0x00, 0x00, 0x01, 0x00, 0x00},
		},
		simple(30, -10, 470, 720),
		simple(40, 0, 460, 730),
	}}
	_, offsets := glyf.Write()
	loca := &locaTable{Format: 0, Offsets: offsets}

	font := &Font{
		SfntVersion: sfntVersionTrueType,
		IsTrueType:  true,
		Tables: map[string][]byte{
			"cvt ": {0x00, 0x0A, 0x00, 0x14},
		},
		Glyf: glyf,
		Loca: loca,
	}
	font.Head = &headTable{
		FontRevision:     0x00010000,
		UnitsPerEm:       1000,
		Created:          time.Date(2010, 4, 1, 12, 0, 0, 0, time.UTC),
		Modified:         time.Date(2020, 8, 1, 12, 0, 0, 0, time.UTC),
		XMin:             10,
		YMin:             -10,
		XMax:             490,
		YMax:             730,
		LowestRecPPEM:    8,
		IndexToLocFormat: loca.Format,
	}
	font.Maxp = &maxpTable{
		Version:     maxpVersionTrueType,
		NumGlyphs:   6,
		MaxPoints:   12,
		MaxContours: 2,
		MaxZones:    1,
	}
	font.Hhea = &hheaTable{
		Ascender:         800,
		Descender:        -200,
		LineGap:          100,
		AdvanceWidthMax:  800,
		CaretSlopeRise:   1,
		NumberOfHMetrics: 6,
	}
	font.Hmtx = &hmtxTable{HMetrics: []hmtxLongHorMetric{
		{500, 0},
		{600, 10},
		{600, 20},
		{600, 10},
		{600, 30},
		{600, 40},
	}}
	font.Cmap = buildCmap(map[rune]uint16{'A': 1, 'B': 2, 'C': 3, 'D': 4})
	font.Name = &nameTable{Records: []nameRecord{
		{PlatformWindows, EncodingWindowsUnicodeBMP, 0x0409, NameFontFamily, utf16be("Testa")},
		{PlatformWindows, EncodingWindowsUnicodeBMP, 0x0409, NamePostScript, utf16be("Testa-Regular")},
	}}
	font.OS2 = &os2Table{
		Version:        4,
		XAvgCharWidth:  580,
		UsWeightClass:  400,
		UsWidthClass:   5,
		SFamilyClass:   0x0102,
		AchVendID:      [4]byte{'T', 'E', 'S', 'T'},
		FsSelection:    0x0040,
		STypoAscender:  780,
		STypoDescender: -180,
		STypoLineGap:   90,
		UsWinAscent:    820,
		UsWinDescent:   210,
		SxHeight:       480,
		SCapHeight:     690,
	}
	font.Post = &postTable{
		Version:            postVersion3,
		ItalicAngle:        0.0,
		UnderlinePosition:  -100,
		UnderlineThickness: 50,
	}
	font.Kern = &kernTable{Subtables: []kernFormat0{{
		Coverage: Uint8ToFlags(0x01),
		Pairs: []kernPair{
			{uint32(1)<<16 | 2, -50},
			{uint32(2)<<16 | 4, 30},
		},
	}}}
	return font
}

func TestWriteParse(t *testing.T) {
	b, err := testFont().Write()
	test.Error(t, err)

	font, err := Parse(b)
	test.Error(t, err)

	test.T(t, font.NumGlyphs(), uint16(6))
	test.T(t, font.GlyphIndex('A'), uint16(1))
	test.T(t, font.GlyphIndex('B'), uint16(2))
	test.T(t, font.GlyphIndex('C'), uint16(3))
	test.T(t, font.GlyphIndex('D'), uint16(4))
	test.T(t, font.GlyphIndex('E'), uint16(0))

	test.T(t, font.GlyphAdvance(0), uint16(500))
	test.T(t, font.CharAdvance('A'), uint16(600))
	test.T(t, font.LeftSideBearing(2), int16(20))
	test.T(t, font.Kerning(1, 2), int16(-50))
	test.T(t, font.Kerning(2, 1), int16(0))

	test.T(t, font.Head.UnitsPerEm, uint16(1000))
	test.That(t, font.Head.Created.Equal(time.Date(2010, 4, 1, 12, 0, 0, 0, time.UTC)))
	test.That(t, font.Head.Modified.Equal(time.Date(2020, 8, 1, 12, 0, 0, 0, time.UTC)))
	test.T(t, font.FamilyName(), "Testa")
	test.T(t, font.PostScriptName(), "Testa-Regular")
	test.T(t, font.ItalicAngle(), 0.0)
	test.T(t, font.CapHeight(), int16(690))
	test.T(t, font.IsItalic(), false)
	test.T(t, font.IsSerif(), true)
	test.T(t, font.IsScript(), false)
	test.T(t, font.IsFixedPitch(), false)

	xmin, ymin, xmax, ymax := font.Bounds()
	test.T(t, xmin, int16(10))
	test.T(t, ymin, int16(-10))
	test.T(t, xmax, int16(490))
	test.T(t, ymax, int16(730))

	xmin, ymin, xmax, ymax, err = font.GlyphBounds(4)
	test.Error(t, err)
	test.T(t, ymax, int16(720))

	test.T(t, font.Tables["cvt "], []byte{0x00, 0x0A, 0x00, 0x14})

	components, _, err := font.Glyf.Get(3).Components()
	test.Error(t, err)
	test.T(t, len(components), 1)
	test.T(t, components[0], uint16(1))
}

func TestWriteChecksums(t *testing.T) {
	b, err := testFont().Write()
	test.Error(t, err)

	// the file checksum including checksumAdjustment is invariant
	test.T(t, calcChecksum(b), uint32(checksumAdjustmentMagic))

	dir, tables, err := parseTableDirectory(b)
	test.Error(t, err)
	test.T(t, dir.SfntVersion, sfntVersionTrueType)
	for _, record := range dir.Records {
		test.T(t, record.Offset%4, uint32(0))
		test.T(t, record.Length, uint32(len(tables[record.Tag])))
		if record.Tag == "head" {
			continue // includes checksumAdjustment
		}
		padded := b[record.Offset : record.Offset+record.Length+tablePadding(record.Length)]
		test.T(t, calcChecksum(padded), record.Checksum)
	}
}

func TestVerticalMetrics(t *testing.T) {
	font := testFont()

	// win metrics with external leading
	ascender, descender, lineGap := font.VerticalMetrics()
	test.T(t, ascender, uint16(820))
	test.T(t, descender, uint16(210))
	test.T(t, lineGap, uint16(70))

	// typo metrics override
	font.OS2.FsSelection |= 0x0080
	ascender, descender, lineGap = font.VerticalMetrics()
	test.T(t, ascender, uint16(780))
	test.T(t, descender, uint16(180))
	test.T(t, lineGap, uint16(90))
}

func TestParseErrors(t *testing.T) {
	font := testFont()
	b, err := font.Write()
	test.Error(t, err)

	_, err = Parse(b[:8])
	test.That(t, err != nil)

	// break the sfnt version
	bad := append([]byte{}, b...)
	binary.BigEndian.PutUint32(bad, 0x00020000)
	_, err = Parse(bad)
	test.That(t, err != nil)

	// swap the first two directory records to break the tag order
	bad = append([]byte{}, b...)
	copy(bad[12:28], b[28:44])
	copy(bad[28:44], b[12:28])
	_, err = Parse(bad)
	test.T(t, err, ErrInvalidFontData)
}
