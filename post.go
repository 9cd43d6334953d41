package otf

import (
	"fmt"
	"math"

	"github.com/tdewolff/parse/v2"
)

const (
	postVersion1 = 0x00010000
	postVersion2 = 0x00020000
	postVersion3 = 0x00030000
)

type postTable struct {
	Version            uint32
	ItalicAngle        float64
	UnderlinePosition  int16
	UnderlineThickness int16
	IsFixedPitch       uint32
	MinMemType42       uint32
	MaxMemType42       uint32
	MinMemType1        uint32
	MaxMemType1        uint32

	// version 2
	NumGlyphs      uint16
	GlyphNameIndex []uint16
	stringData     [][]byte
	nameMap        map[string]uint16
}

// Get returns the name of the glyph, or the empty string when no name exists.
func (post *postTable) Get(glyphID uint16) string {
	if len(post.GlyphNameIndex) <= int(glyphID) {
		return ""
	}
	index := post.GlyphNameIndex[glyphID]
	if index < 258 {
		return macintoshGlyphNames[index]
	} else if len(post.stringData) <= int(index)-258 {
		return ""
	}
	return string(post.stringData[index-258])
}

// Find returns the glyphID for a given glyph name, or 0 when the name is not defined.
func (post *postTable) Find(name string) uint16 {
	if post.nameMap == nil {
		post.nameMap = make(map[string]uint16, len(post.GlyphNameIndex))
		for glyphID, index := range post.GlyphNameIndex {
			if index < 258 {
				post.nameMap[macintoshGlyphNames[index]] = uint16(glyphID)
			} else if int(index)-258 < len(post.stringData) {
				post.nameMap[string(post.stringData[index-258])] = uint16(glyphID)
			}
		}
	}
	return post.nameMap[name]
}

func (font *Font) parsePost() error {
	if font.Maxp == nil {
		return fmt.Errorf("post: missing maxp table")
	}

	b, ok := font.Tables["post"]
	if !ok {
		return ErrMissingTable{"post"}
	} else if len(b) < 32 {
		return fmt.Errorf("post: bad table")
	}

	font.Post = &postTable{}
	r := parse.NewBinaryReader(b)
	font.Post.Version = r.ReadUint32()
	font.Post.ItalicAngle = float64(r.ReadInt32()) / (1 << 16)
	font.Post.UnderlinePosition = r.ReadInt16()
	font.Post.UnderlineThickness = r.ReadInt16()
	font.Post.IsFixedPitch = r.ReadUint32()
	font.Post.MinMemType42 = r.ReadUint32()
	font.Post.MaxMemType42 = r.ReadUint32()
	font.Post.MinMemType1 = r.ReadUint32()
	font.Post.MaxMemType1 = r.ReadUint32()
	if font.Post.Version == postVersion1 && font.IsTrueType && len(b) == 32 {
		font.Post.GlyphNameIndex = make([]uint16, 258)
		for i := 0; i < 258; i++ {
			font.Post.GlyphNameIndex[i] = uint16(i)
		}
		return nil
	} else if font.Post.Version == postVersion2 && font.IsTrueType && 34 <= len(b) {
		font.Post.NumGlyphs = r.ReadUint16()
		if font.Post.NumGlyphs != font.Maxp.NumGlyphs {
			return fmt.Errorf("post: numGlyphs does not match maxp table numGlyphs")
		} else if uint32(len(b)) < 34+2*uint32(font.Post.NumGlyphs) {
			return fmt.Errorf("post: bad table")
		}

		numStrings := 0
		font.Post.GlyphNameIndex = make([]uint16, font.Post.NumGlyphs)
		for i := 0; i < int(font.Post.NumGlyphs); i++ {
			font.Post.GlyphNameIndex[i] = r.ReadUint16()
			if 258 <= font.Post.GlyphNameIndex[i] {
				numStrings++
			}
		}

		font.Post.stringData = make([][]byte, 0, numStrings)
		for 2 <= r.Len() {
			length := r.ReadUint8()
			if r.Len() < uint32(length) || 63 < length {
				return fmt.Errorf("post: bad stringData")
			}
			font.Post.stringData = append(font.Post.stringData, r.ReadBytes(uint32(length)))
		}
		if 1 < r.Len() || len(font.Post.stringData) != numStrings {
			return fmt.Errorf("post: bad stringData")
		}
		return nil
	} else if font.Post.Version == 0x00025000 && font.IsTrueType && len(b) == 32 {
		return fmt.Errorf("post: version 2.5 not supported")
	} else if font.Post.Version == postVersion3 && len(b) == 32 {
		// no PostScript glyph names provided
		return nil
	}
	return fmt.Errorf("post: bad version")
}

func (post *postTable) Write() ([]byte, error) {
	if post.Version != postVersion1 && post.Version != postVersion2 && post.Version != postVersion3 {
		return nil, fmt.Errorf("post: bad version")
	}

	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint32(post.Version)
	w.WriteInt32(int32(post.ItalicAngle * (1 << 16)))
	w.WriteInt16(post.UnderlinePosition)
	w.WriteInt16(post.UnderlineThickness)
	w.WriteUint32(post.IsFixedPitch)
	w.WriteUint32(post.MinMemType42)
	w.WriteUint32(post.MaxMemType42)
	w.WriteUint32(post.MinMemType1)
	w.WriteUint32(post.MaxMemType1)
	if post.Version != postVersion2 {
		return w.Bytes(), nil
	}

	if math.MaxUint16 < len(post.GlyphNameIndex) {
		return nil, fmt.Errorf("post: too many glyphs")
	}
	w.WriteUint16(uint16(len(post.GlyphNameIndex)))
	for _, index := range post.GlyphNameIndex {
		w.WriteUint16(index)
	}
	for _, data := range post.stringData {
		if 63 < len(data) {
			return nil, fmt.Errorf("post: bad stringData")
		}
		w.WriteUint8(uint8(len(data)))
		w.WriteBytes(data)
	}
	return w.Bytes(), nil
}
