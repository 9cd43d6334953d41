package otf

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestSubsetGlyphs(t *testing.T) {
	font := testFont()

	// requesting the composite C pulls in its component A
	subset, err := font.SubsetGlyphs([]Glyph{{ID: 3, CodePoints: []rune{'C'}}})
	test.Error(t, err)

	test.T(t, subset.NumGlyphs(), uint16(3)) // .notdef, A, C
	test.T(t, subset.GlyphIndex('C'), uint16(2))
	test.T(t, subset.GlyphIndex('A'), uint16(0)) // A kept without code points

	components, _, err := subset.Glyf.Get(2).Components()
	test.Error(t, err)
	test.T(t, components[0], uint16(1)) // remapped from old glyph 1

	// old advances carry over under the new numbering
	test.T(t, subset.GlyphAdvance(0), uint16(500))
	test.T(t, subset.GlyphAdvance(1), uint16(600))
	test.T(t, subset.GlyphAdvance(2), uint16(600))

	// the original font is untouched
	test.T(t, font.NumGlyphs(), uint16(6))
	test.T(t, font.GlyphIndex('C'), uint16(3))
	components, _, err = font.Glyf.Get(3).Components()
	test.Error(t, err)
	test.T(t, components[0], uint16(1))
}

func TestSubsetMetricsTrim(t *testing.T) {
	font := testFont()

	subset, err := font.SubsetGlyphs([]Glyph{
		{ID: 1, CodePoints: []rune{'A'}},
		{ID: 2, CodePoints: []rune{'B'}},
	})
	test.Error(t, err)

	// glyphs 1 and 2 share an advance, the trailing metric is trimmed
	test.T(t, subset.Hhea.NumberOfHMetrics, uint16(2))
	test.T(t, len(subset.Hmtx.HMetrics), 2)
	test.T(t, len(subset.Hmtx.LeftSideBearings), 1)
	test.T(t, subset.GlyphAdvance(2), uint16(600))
	test.T(t, subset.LeftSideBearing(2), int16(20))

	// kerning between A and B survives under the same new ids
	test.T(t, subset.Kerning(1, 2), int16(-50))

	b, err := subset.Write()
	test.Error(t, err)
	reparsed, err := Parse(b)
	test.Error(t, err)
	test.T(t, reparsed.NumGlyphs(), uint16(3))
	test.T(t, reparsed.GlyphIndex('A'), uint16(1))
	test.T(t, reparsed.GlyphIndex('B'), uint16(2))
	test.T(t, reparsed.Kerning(1, 2), int16(-50))
	test.T(t, reparsed.Post.Version, uint32(postVersion3))
}

func TestSubsetKernDropped(t *testing.T) {
	font := testFont()

	// glyph 4 only kerns against glyph 2, which is not retained
	subset, err := font.SubsetGlyphs([]Glyph{{ID: 4, CodePoints: []rune{'D'}}})
	test.Error(t, err)
	test.That(t, subset.Kern == nil)

	b, err := subset.Write()
	test.Error(t, err)
	reparsed, err := Parse(b)
	test.Error(t, err)
	test.That(t, reparsed.Kern == nil)
}

func TestSubsetText(t *testing.T) {
	font := testFont()

	subset, err := font.Subset("DAD")
	test.Error(t, err)

	// .notdef, A and D; duplicate characters collapse
	test.T(t, subset.NumGlyphs(), uint16(3))
	test.T(t, subset.GlyphIndex('A'), uint16(1))
	test.T(t, subset.GlyphIndex('D'), uint16(2))
	test.T(t, subset.GlyphIndex('B'), uint16(0))
}

func TestSubsetFullCharacterSet(t *testing.T) {
	font := testFont()
	runes := font.Cmap.Runes()

	subset, err := font.Subset(string(runes))
	test.Error(t, err)

	// every previously mapped character stays mapped
	for _, r := range runes {
		test.That(t, subset.GlyphIndex(r) != 0)
		test.T(t, subset.GlyphAdvance(subset.GlyphIndex(r)), font.GlyphAdvance(font.GlyphIndex(r)))
	}

	b, err := subset.Write()
	test.Error(t, err)
	reparsed, err := Parse(b)
	test.Error(t, err)
	for _, r := range runes {
		test.T(t, reparsed.GlyphIndex(r), subset.GlyphIndex(r))
	}
}

func TestSubsetDistinctCharacters(t *testing.T) {
	font := testFont()

	// unmapped characters are dropped, duplicates collapse
	subset, err := font.Subset("DAD BAD")
	test.Error(t, err)
	test.T(t, subset.NumGlyphs(), uint16(4)) // .notdef, A, B, D
}

func TestSubsetBadGlyph(t *testing.T) {
	font := testFont()
	_, err := font.SubsetGlyphs([]Glyph{{ID: 6}})
	test.That(t, err != nil)
}
