package otf

import (
	"fmt"

	"github.com/tdewolff/parse/v2"
)

type hmtxLongHorMetric struct {
	AdvanceWidth    uint16
	LeftSideBearing int16
}

type hmtxTable struct {
	HMetrics         []hmtxLongHorMetric
	LeftSideBearings []int16
}

func (hmtx *hmtxTable) LeftSideBearing(glyphID uint16) int16 {
	if uint16(len(hmtx.HMetrics)) <= glyphID {
		return hmtx.LeftSideBearings[glyphID-uint16(len(hmtx.HMetrics))]
	}
	return hmtx.HMetrics[glyphID].LeftSideBearing
}

// Advance returns the advance width of the glyph. Glyphs beyond the long
// metric range share the advance of the last long metric.
func (hmtx *hmtxTable) Advance(glyphID uint16) uint16 {
	if uint16(len(hmtx.HMetrics)) <= glyphID {
		glyphID = uint16(len(hmtx.HMetrics)) - 1
	}
	return hmtx.HMetrics[glyphID].AdvanceWidth
}

func (font *Font) parseHmtx() error {
	if font.Hhea == nil {
		return fmt.Errorf("hmtx: missing hhea table")
	} else if font.Maxp == nil {
		return fmt.Errorf("hmtx: missing maxp table")
	}

	b, ok := font.Tables["hmtx"]
	length := 4*uint32(font.Hhea.NumberOfHMetrics) + 2*uint32(font.Maxp.NumGlyphs-font.Hhea.NumberOfHMetrics)
	if !ok {
		return ErrMissingTable{"hmtx"}
	} else if uint32(len(b)) != length {
		return fmt.Errorf("hmtx: bad table")
	}

	font.Hmtx = &hmtxTable{}
	font.Hmtx.HMetrics = make([]hmtxLongHorMetric, font.Hhea.NumberOfHMetrics)
	font.Hmtx.LeftSideBearings = make([]int16, font.Maxp.NumGlyphs-font.Hhea.NumberOfHMetrics)

	r := parse.NewBinaryReader(b)
	for i := 0; i < int(font.Hhea.NumberOfHMetrics); i++ {
		font.Hmtx.HMetrics[i].AdvanceWidth = r.ReadUint16()
		font.Hmtx.HMetrics[i].LeftSideBearing = r.ReadInt16()
	}
	for i := 0; i < int(font.Maxp.NumGlyphs-font.Hhea.NumberOfHMetrics); i++ {
		font.Hmtx.LeftSideBearings[i] = r.ReadInt16()
	}
	return nil
}

func (hmtx *hmtxTable) Write() []byte {
	n := 4*len(hmtx.HMetrics) + 2*len(hmtx.LeftSideBearings)
	w := parse.NewBinaryWriter(make([]byte, 0, n))
	for _, metric := range hmtx.HMetrics {
		w.WriteUint16(metric.AdvanceWidth)
		w.WriteInt16(metric.LeftSideBearing)
	}
	for _, lsb := range hmtx.LeftSideBearings {
		w.WriteInt16(lsb)
	}
	return w.Bytes()
}
