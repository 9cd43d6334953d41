package otf

import (
	"fmt"
	"math"

	"github.com/tdewolff/parse/v2"
)

// locaTable holds the glyph offsets into the glyf table. Offsets has
// numGlyphs+1 entries and is monotonically non-decreasing. Format mirrors
// head.indexToLocFormat.
type locaTable struct {
	Format  int16
	Offsets []uint32
}

func (loca *locaTable) Get(glyphID uint16) (uint32, bool) {
	if len(loca.Offsets) <= int(glyphID) {
		return 0, false
	}
	return loca.Offsets[glyphID], true
}

func (font *Font) parseLoca() error {
	if font.Head == nil {
		return fmt.Errorf("loca: missing head table")
	} else if font.Maxp == nil {
		return fmt.Errorf("loca: missing maxp table")
	}

	b, ok := font.Tables["loca"]
	if !ok {
		return ErrMissingTable{"loca"}
	}

	font.Loca = &locaTable{
		Format:  font.Head.IndexToLocFormat,
		Offsets: make([]uint32, int(font.Maxp.NumGlyphs)+1),
	}
	r := parse.NewBinaryReader(b)
	if font.Loca.Format == 0 {
		if uint32(len(b)) != 2*(uint32(font.Maxp.NumGlyphs)+1) {
			return fmt.Errorf("loca: bad table")
		}
		for i := 0; i < int(font.Maxp.NumGlyphs)+1; i++ {
			font.Loca.Offsets[i] = 2 * uint32(r.ReadUint16())
		}
	} else {
		if uint32(len(b)) != 4*(uint32(font.Maxp.NumGlyphs)+1) {
			return fmt.Errorf("loca: bad table")
		}
		for i := 0; i < int(font.Maxp.NumGlyphs)+1; i++ {
			font.Loca.Offsets[i] = r.ReadUint32()
		}
	}
	for i := 1; i < len(font.Loca.Offsets); i++ {
		if font.Loca.Offsets[i] < font.Loca.Offsets[i-1] {
			return fmt.Errorf("loca: bad offsets")
		}
	}
	return nil
}

func (loca *locaTable) Write() ([]byte, error) {
	if loca.Format == 0 {
		w := parse.NewBinaryWriter(make([]byte, 0, 2*len(loca.Offsets)))
		for _, offset := range loca.Offsets {
			if offset%2 != 0 || math.MaxUint16 < offset/2 {
				return nil, fmt.Errorf("loca: offset %d does not fit short format", offset)
			}
			w.WriteUint16(uint16(offset / 2))
		}
		return w.Bytes(), nil
	}
	w := parse.NewBinaryWriter(make([]byte, 0, 4*len(loca.Offsets)))
	for _, offset := range loca.Offsets {
		w.WriteUint32(offset)
	}
	return w.Bytes(), nil
}
