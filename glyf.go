package otf

import (
	"encoding/binary"
	"fmt"

	"github.com/tdewolff/parse/v2"
)

// glyphData is a single glyf entry. Description holds the outline data
// following the 10-byte header and is not interpreted further, except for the
// component records of composite glyphs.
type glyphData struct {
	NumberOfContours       int16
	XMin, YMin, XMax, YMax int16
	Description            []byte
}

func (glyph *glyphData) IsComposite() bool {
	return glyph.NumberOfContours < 0
}

// Components returns the direct component glyph IDs of a composite glyph,
// with the byte position of each ID within Description.
func (glyph *glyphData) Components() ([]uint16, []uint32, error) {
	if !glyph.IsComposite() {
		return nil, nil, nil
	}
	var glyphIDs []uint16
	var positions []uint32
	offset := uint32(0)
	for {
		if uint32(len(glyph.Description)) < offset+4 {
			return nil, nil, fmt.Errorf("glyf: bad composite glyph")
		}
		flags := binary.BigEndian.Uint16(glyph.Description[offset:])
		glyphIDs = append(glyphIDs, binary.BigEndian.Uint16(glyph.Description[offset+2:]))
		positions = append(positions, offset+2)

		length, more := glyfCompositeLength(flags)
		if uint32(len(glyph.Description)) < offset+length {
			return nil, nil, fmt.Errorf("glyf: bad composite glyph")
		}
		offset += length
		if !more {
			break
		}
	}
	return glyphIDs, positions, nil
}

// glyfCompositeLength gives the byte length of a composite component record
// for the given flags, and whether more components follow.
func glyfCompositeLength(flags uint16) (length uint32, more bool) {
	length = 4 + 2
	if flags&0x0001 != 0 { // ARG_1_AND_2_ARE_WORDS
		length += 2
	}
	if flags&0x0008 != 0 { // WE_HAVE_A_SCALE
		length += 2
	} else if flags&0x0040 != 0 { // WE_HAVE_AN_X_AND_Y_SCALE
		length += 4
	} else if flags&0x0080 != 0 { // WE_HAVE_A_TWO_BY_TWO
		length += 8
	}
	more = flags&0x0020 != 0 // MORE_COMPONENTS
	return
}

// glyfTable holds one entry per glyph, nil for glyphs without an outline.
type glyfTable struct {
	Glyphs []*glyphData
}

func (glyf *glyfTable) Get(glyphID uint16) *glyphData {
	if len(glyf.Glyphs) <= int(glyphID) {
		return nil
	}
	return glyf.Glyphs[glyphID]
}

func (font *Font) parseGlyf() error {
	if font.Loca == nil {
		return fmt.Errorf("glyf: missing loca table")
	} else if font.Maxp == nil {
		return fmt.Errorf("glyf: missing maxp table")
	}

	b, ok := font.Tables["glyf"]
	if !ok {
		return ErrMissingTable{"glyf"}
	} else if uint32(len(b)) < font.Loca.Offsets[len(font.Loca.Offsets)-1] {
		return fmt.Errorf("glyf: bad table")
	}

	font.Glyf = &glyfTable{
		Glyphs: make([]*glyphData, font.Maxp.NumGlyphs),
	}
	for glyphID := 0; glyphID < int(font.Maxp.NumGlyphs); glyphID++ {
		start := font.Loca.Offsets[glyphID]
		end := font.Loca.Offsets[glyphID+1]
		if start == end {
			continue
		} else if end-start < 10 {
			return fmt.Errorf("glyf: bad glyph %d", glyphID)
		}

		r := parse.NewBinaryReader(b[start:end:end])
		glyph := &glyphData{}
		glyph.NumberOfContours = r.ReadInt16()
		glyph.XMin = r.ReadInt16()
		glyph.YMin = r.ReadInt16()
		glyph.XMax = r.ReadInt16()
		glyph.YMax = r.ReadInt16()
		glyph.Description = b[start+10 : end : end]
		if glyph.IsComposite() {
			glyphIDs, _, err := glyph.Components()
			if err != nil {
				return fmt.Errorf("glyf: bad glyph %d", glyphID)
			}
			for _, componentID := range glyphIDs {
				if font.Maxp.NumGlyphs <= componentID {
					return fmt.Errorf("glyf: bad component glyphID %d in glyph %d", componentID, glyphID)
				}
			}
		}
		font.Glyf.Glyphs[glyphID] = glyph
	}
	return nil
}

// Write serializes all glyphs and returns the glyph offsets for the loca
// table. Each glyph is padded to a four byte boundary so that offsets stay
// representable in the short loca format.
func (glyf *glyfTable) Write() ([]byte, []uint32) {
	w := parse.NewBinaryWriter([]byte{})
	offsets := make([]uint32, len(glyf.Glyphs)+1)
	for i, glyph := range glyf.Glyphs {
		if glyph == nil {
			offsets[i+1] = w.Len()
			continue
		}
		w.WriteInt16(glyph.NumberOfContours)
		w.WriteInt16(glyph.XMin)
		w.WriteInt16(glyph.YMin)
		w.WriteInt16(glyph.XMax)
		w.WriteInt16(glyph.YMax)
		w.WriteBytes(glyph.Description)
		for w.Len()%4 != 0 {
			w.WriteUint8(0)
		}
		offsets[i+1] = w.Len()
	}
	return w.Bytes(), offsets
}
