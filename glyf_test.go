package otf

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestGlyfCompositeLength(t *testing.T) {
	length, more := glyfCompositeLength(0x0000)
	test.T(t, length, uint32(6))
	test.T(t, more, false)

	length, _ = glyfCompositeLength(0x0001) // ARG_1_AND_2_ARE_WORDS
	test.T(t, length, uint32(8))

	length, _ = glyfCompositeLength(0x0008) // WE_HAVE_A_SCALE
	test.T(t, length, uint32(8))

	length, _ = glyfCompositeLength(0x0041) // words + x and y scale
	test.T(t, length, uint32(12))

	length, _ = glyfCompositeLength(0x0081) // words + two by two
	test.T(t, length, uint32(16))

	_, more = glyfCompositeLength(0x0020) // MORE_COMPONENTS
	test.T(t, more, true)
}

func TestGlyfComponents(t *testing.T) {
	glyph := &glyphData{
		NumberOfContours: -1,
		Description: []byte{
			0x00, 0x21, 0x00, 0x05, 0x00, 0x00, 0x00, 0x00, // word args, more components follow
			0x00, 0x01, 0x00, 0x07, 0x00, 0x00, 0x00, 0x00,
		},
	}
	components, positions, err := glyph.Components()
	test.Error(t, err)
	test.T(t, len(components), 2)
	test.T(t, components[0], uint16(5))
	test.T(t, components[1], uint16(7))
	test.T(t, positions[0], uint32(2))
	test.T(t, positions[1], uint32(10))

	// truncated component record
	glyph.Description = glyph.Description[:12]
	_, _, err = glyph.Components()
	test.That(t, err != nil)
}

func TestGlyfWriteOffsets(t *testing.T) {
	glyf := &glyfTable{Glyphs: []*glyphData{
		nil,
		{NumberOfContours: 1, Description: []byte{0x01}}, // 11 bytes, padded to 12
		{NumberOfContours: 1, Description: []byte{0x01, 0x02}},
	}}
	b, offsets := glyf.Write()

	test.T(t, offsets[0], uint32(0))
	test.T(t, offsets[1], uint32(0)) // empty glyph
	test.T(t, offsets[2], uint32(12))
	test.T(t, offsets[3], uint32(24))
	test.T(t, len(b), 24)
	for _, offset := range offsets {
		test.T(t, offset%4, uint32(0))
	}
}
