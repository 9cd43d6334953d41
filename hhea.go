package otf

import (
	"fmt"

	"github.com/tdewolff/parse/v2"
)

type hheaTable struct {
	Ascender            int16
	Descender           int16
	LineGap             int16
	AdvanceWidthMax     uint16
	MinLeftSideBearing  int16
	MinRightSideBearing int16
	XMaxExtent          int16
	CaretSlopeRise      int16
	CaretSlopeRun       int16
	CaretOffset         int16
	MetricDataFormat    int16
	NumberOfHMetrics    uint16
}

func (font *Font) parseHhea() error {
	if font.Maxp == nil {
		return fmt.Errorf("hhea: missing maxp table")
	}

	b, ok := font.Tables["hhea"]
	if !ok {
		return ErrMissingTable{"hhea"}
	} else if len(b) != 36 {
		return fmt.Errorf("hhea: bad table")
	}

	font.Hhea = &hheaTable{}
	r := parse.NewBinaryReader(b)
	majorVersion := r.ReadUint16()
	minorVersion := r.ReadUint16()
	if majorVersion != 1 || minorVersion != 0 {
		return fmt.Errorf("hhea: bad version")
	}
	font.Hhea.Ascender = r.ReadInt16()
	font.Hhea.Descender = r.ReadInt16()
	font.Hhea.LineGap = r.ReadInt16()
	font.Hhea.AdvanceWidthMax = r.ReadUint16()
	font.Hhea.MinLeftSideBearing = r.ReadInt16()
	font.Hhea.MinRightSideBearing = r.ReadInt16()
	font.Hhea.XMaxExtent = r.ReadInt16()
	font.Hhea.CaretSlopeRise = r.ReadInt16()
	font.Hhea.CaretSlopeRun = r.ReadInt16()
	font.Hhea.CaretOffset = r.ReadInt16()
	_ = r.ReadInt16() // reserved
	_ = r.ReadInt16() // reserved
	_ = r.ReadInt16() // reserved
	_ = r.ReadInt16() // reserved
	font.Hhea.MetricDataFormat = r.ReadInt16()
	font.Hhea.NumberOfHMetrics = r.ReadUint16()
	if font.Maxp.NumGlyphs < font.Hhea.NumberOfHMetrics || font.Hhea.NumberOfHMetrics == 0 {
		return fmt.Errorf("hhea: bad numberOfHMetrics")
	}
	return nil
}

func (hhea *hheaTable) Write() []byte {
	w := parse.NewBinaryWriter(make([]byte, 0, 36))
	w.WriteUint16(1) // majorVersion
	w.WriteUint16(0) // minorVersion
	w.WriteInt16(hhea.Ascender)
	w.WriteInt16(hhea.Descender)
	w.WriteInt16(hhea.LineGap)
	w.WriteUint16(hhea.AdvanceWidthMax)
	w.WriteInt16(hhea.MinLeftSideBearing)
	w.WriteInt16(hhea.MinRightSideBearing)
	w.WriteInt16(hhea.XMaxExtent)
	w.WriteInt16(hhea.CaretSlopeRise)
	w.WriteInt16(hhea.CaretSlopeRun)
	w.WriteInt16(hhea.CaretOffset)
	w.WriteInt16(0) // reserved
	w.WriteInt16(0) // reserved
	w.WriteInt16(0) // reserved
	w.WriteInt16(0) // reserved
	w.WriteInt16(hhea.MetricDataFormat)
	w.WriteUint16(hhea.NumberOfHMetrics)
	return w.Bytes()
}
