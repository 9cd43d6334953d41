// Package otf parses, validates, re-serializes and subsets OpenType and
// TrueType font files.
package otf

import (
	"fmt"
	"sort"
)

// Font is a parsed OpenType font.
type Font struct {
	SfntVersion       uint32
	IsCFF, IsTrueType bool // only one can be true
	Tables            map[string][]byte

	// required
	Cmap *cmapTable
	Head *headTable
	Hhea *hheaTable
	Hmtx *hmtxTable
	Maxp *maxpTable
	Name *nameTable
	OS2  *os2Table
	Post *postTable

	// TrueType
	Glyf *glyfTable
	Loca *locaTable

	// optional
	Kern *kernTable
}

// Parse parses an OpenType file format (TTF, OTF).
func Parse(b []byte) (*Font, error) {
	dir, tables, err := parseTableDirectory(b)
	if err != nil {
		return nil, err
	}

	font := &Font{}
	font.SfntVersion = dir.SfntVersion
	font.IsCFF = dir.SfntVersion == sfntVersionCFF
	font.IsTrueType = dir.SfntVersion == sfntVersionTrueType
	font.Tables = tables

	requiredTables := []string{"OS/2", "cmap", "head", "hhea", "hmtx", "maxp", "name", "post"}
	if font.IsTrueType {
		requiredTables = append(requiredTables, "glyf", "loca")
	} else if font.IsCFF {
		if _, ok := tables["CFF "]; !ok {
			return nil, ErrMissingTable{"CFF "}
		}
	}
	for _, requiredTable := range requiredTables {
		if _, ok := tables[requiredTable]; !ok {
			return nil, ErrMissingTable{requiredTable}
		}
	}

	// head and maxp before the tables that depend on them
	if err := font.parseHead(); err != nil {
		return nil, err
	} else if err := font.parseMaxp(); err != nil {
		return nil, err
	}
	if font.IsTrueType {
		if err := font.parseLoca(); err != nil {
			return nil, err
		}
	}

	tags := make([]string, 0, len(tables))
	for tag := range tables {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		var err error
		switch tag {
		case "cmap":
			err = font.parseCmap()
		case "glyf":
			err = font.parseGlyf()
		case "hhea":
			err = font.parseHhea()
		case "hmtx":
			err = font.parseHmtx()
		case "kern":
			err = font.parseKern()
		case "name":
			err = font.parseName()
		case "OS/2":
			err = font.parseOS2()
		case "post":
			err = font.parsePost()
		}
		if err != nil {
			return nil, err
		}
	}
	if font.OS2.Version <= 1 {
		font.estimateOS2()
	}
	return font, nil
}

// NumGlyphs returns the number of glyphs the font contains.
func (font *Font) NumGlyphs() uint16 {
	return font.Maxp.NumGlyphs
}

// GlyphIndex returns the glyphID for a given rune. When the rune is not defined it returns 0.
func (font *Font) GlyphIndex(r rune) uint16 {
	return font.Cmap.Get(r)
}

// GlyphName returns the name of the glyph. It returns an empty string when no name exists.
func (font *Font) GlyphName(glyphID uint16) string {
	return font.Post.Get(glyphID)
}

// FindGlyphName returns the glyphID for a given glyph name. When the name is not defined it returns 0.
func (font *Font) FindGlyphName(name string) uint16 {
	return font.Post.Find(name)
}

// GlyphAdvance returns the (horizontal) advance width of the glyph.
func (font *Font) GlyphAdvance(glyphID uint16) uint16 {
	return font.Hmtx.Advance(glyphID)
}

// CharAdvance returns the advance width of the glyph mapped to by the given rune.
func (font *Font) CharAdvance(r rune) uint16 {
	return font.Hmtx.Advance(font.Cmap.Get(r))
}

// LeftSideBearing returns the left side bearing of the glyph.
func (font *Font) LeftSideBearing(glyphID uint16) int16 {
	return font.Hmtx.LeftSideBearing(glyphID)
}

// Bounds returns the union bounding rectangle (xmin,ymin,xmax,ymax) of all glyphs.
func (font *Font) Bounds() (int16, int16, int16, int16) {
	return font.Head.XMin, font.Head.YMin, font.Head.XMax, font.Head.YMax
}

// GlyphBounds returns the bounding rectangle (xmin,ymin,xmax,ymax) of the glyph.
func (font *Font) GlyphBounds(glyphID uint16) (int16, int16, int16, int16, error) {
	if !font.IsTrueType {
		return 0, 0, 0, 0, fmt.Errorf("only TrueType is supported")
	}
	glyph := font.Glyf.Get(glyphID)
	if glyph == nil {
		return 0, 0, 0, 0, fmt.Errorf("glyf: bad glyphID %d", glyphID)
	}
	return glyph.XMin, glyph.YMin, glyph.XMax, glyph.YMax, nil
}

// VerticalMetrics returns the ascender, descender, and line gap values. It returns the "win" values, or the "typo" values if OS/2.FsSelection.USE_TYPO_METRICS is set. If those are zero or not set, default to the "hhea" values.
func (font *Font) VerticalMetrics() (uint16, uint16, uint16) {
	var ascender, descender, lineGap uint16
	if 0 < font.Hhea.Ascender {
		ascender = uint16(font.Hhea.Ascender)
	}
	if font.Hhea.Descender < 0 {
		descender = uint16(-font.Hhea.Descender)
	}
	if 0 < font.Hhea.LineGap {
		lineGap = uint16(font.Hhea.LineGap)
	}

	if (font.OS2.FsSelection & 0x0080) != 0 { // USE_TYPO_METRICS
		if 0 < font.OS2.STypoAscender && font.OS2.STypoDescender < 0 {
			ascender = uint16(font.OS2.STypoAscender)
			descender = uint16(-font.OS2.STypoDescender)
			if 0 < font.OS2.STypoLineGap {
				lineGap = uint16(font.OS2.STypoLineGap)
			} else {
				lineGap = 0
			}
		}
	} else {
		if font.OS2.UsWinAscent != 0 && font.OS2.UsWinDescent != 0 {
			ascender, descender = font.OS2.UsWinAscent, font.OS2.UsWinDescent
			externalLeading := int(font.Hhea.Ascender-font.Hhea.Descender+font.Hhea.LineGap) - int(font.OS2.UsWinAscent+font.OS2.UsWinDescent)
			if 0 < externalLeading {
				lineGap = uint16(externalLeading)
			} else {
				lineGap = 0
			}
		}
	}
	return ascender, descender, lineGap
}

// Kerning returns the kerning between two glyphs, i.e. the advance correction for glyph pairs.
func (font *Font) Kerning(left, right uint16) int16 {
	if font.Kern == nil {
		return 0
	}
	return font.Kern.Get(left, right)
}

// ItalicAngle returns the italic angle in counter-clockwise degrees from the vertical.
func (font *Font) ItalicAngle() float64 {
	return font.Post.ItalicAngle
}

// CapHeight returns the height of the uppercase letters above the baseline.
func (font *Font) CapHeight() int16 {
	return font.OS2.SCapHeight
}

// XHeight returns the height of the lowercase letters above the baseline.
func (font *Font) XHeight() int16 {
	return font.OS2.SxHeight
}

// IsFixedPitch returns true when the font is monospaced.
func (font *Font) IsFixedPitch() bool {
	return font.Post.IsFixedPitch != 0
}

// IsItalic returns true when the font is italic or oblique.
func (font *Font) IsItalic() bool {
	return font.OS2.FsSelection&0x0001 != 0 || font.Head.MacStyle[1]
}

// IsSerif returns true when the font's family class is a serif class.
func (font *Font) IsSerif() bool {
	class := font.OS2.SFamilyClass >> 8
	return 1 <= class && class <= 7
}

// IsScript returns true when the font's family class is the script class.
func (font *Font) IsScript() bool {
	return font.OS2.SFamilyClass>>8 == 10
}

// FamilyName returns the font's family name.
func (font *Font) FamilyName() string {
	records := font.Name.Get(NameFontFamily)
	if len(records) == 0 {
		return ""
	}
	return records[0].String()
}

// PostScriptName returns the font's PostScript name.
func (font *Font) PostScriptName() string {
	records := font.Name.Get(NamePostScript)
	if len(records) == 0 {
		return ""
	}
	return records[0].String()
}

// estimateOS2 fills in the x-height and cap-height from the glyph outlines
// when the OS/2 table version predates those fields.
func (font *Font) estimateOS2() {
	if !font.IsTrueType {
		return
	}
	if glyph := font.Glyf.Get(font.GlyphIndex('x')); glyph != nil {
		font.OS2.SxHeight = glyph.YMax
	}
	if glyph := font.Glyf.Get(font.GlyphIndex('H')); glyph != nil {
		font.OS2.SCapHeight = glyph.YMax
	}
}
