package otf

import (
	"fmt"

	"github.com/tdewolff/parse/v2"
)

const (
	maxpVersionCFF      = uint32(0x00005000)
	maxpVersionTrueType = uint32(0x00010000)
)

// maxpTable is the maximum profile. The CFF variant carries only the glyph
// count, the TrueType variant adds the interpreter limits.
type maxpTable struct {
	Version   uint32
	NumGlyphs uint16

	// TrueType only
	MaxPoints             uint16
	MaxContours           uint16
	MaxCompositePoints    uint16
	MaxCompositeContours  uint16
	MaxZones              uint16
	MaxTwilightPoints     uint16
	MaxStorage            uint16
	MaxFunctionDefs       uint16
	MaxInstructionDefs    uint16
	MaxStackElements      uint16
	MaxSizeOfInstructions uint16
	MaxComponentElements  uint16
	MaxComponentDepth     uint16
}

func (font *Font) parseMaxp() error {
	b, ok := font.Tables["maxp"]
	if !ok {
		return ErrMissingTable{"maxp"}
	} else if len(b) < 6 {
		return fmt.Errorf("maxp: bad table")
	}

	font.Maxp = &maxpTable{}
	r := parse.NewBinaryReader(b)
	font.Maxp.Version = r.ReadUint32()
	font.Maxp.NumGlyphs = r.ReadUint16()
	switch font.Maxp.Version {
	case maxpVersionCFF:
		if font.IsTrueType || len(b) != 6 {
			return fmt.Errorf("maxp: bad table")
		}
		return nil
	case maxpVersionTrueType:
		if font.IsCFF || len(b) != 32 {
			return fmt.Errorf("maxp: bad table")
		}
		font.Maxp.MaxPoints = r.ReadUint16()
		font.Maxp.MaxContours = r.ReadUint16()
		font.Maxp.MaxCompositePoints = r.ReadUint16()
		font.Maxp.MaxCompositeContours = r.ReadUint16()
		font.Maxp.MaxZones = r.ReadUint16()
		font.Maxp.MaxTwilightPoints = r.ReadUint16()
		font.Maxp.MaxStorage = r.ReadUint16()
		font.Maxp.MaxFunctionDefs = r.ReadUint16()
		font.Maxp.MaxInstructionDefs = r.ReadUint16()
		font.Maxp.MaxStackElements = r.ReadUint16()
		font.Maxp.MaxSizeOfInstructions = r.ReadUint16()
		font.Maxp.MaxComponentElements = r.ReadUint16()
		font.Maxp.MaxComponentDepth = r.ReadUint16()
		return nil
	}
	return fmt.Errorf("maxp: bad version")
}

func (maxp *maxpTable) Write() ([]byte, error) {
	w := parse.NewBinaryWriter(make([]byte, 0, 32))
	w.WriteUint32(maxp.Version)
	w.WriteUint16(maxp.NumGlyphs)
	switch maxp.Version {
	case maxpVersionCFF:
		return w.Bytes(), nil
	case maxpVersionTrueType:
		w.WriteUint16(maxp.MaxPoints)
		w.WriteUint16(maxp.MaxContours)
		w.WriteUint16(maxp.MaxCompositePoints)
		w.WriteUint16(maxp.MaxCompositeContours)
		w.WriteUint16(maxp.MaxZones)
		w.WriteUint16(maxp.MaxTwilightPoints)
		w.WriteUint16(maxp.MaxStorage)
		w.WriteUint16(maxp.MaxFunctionDefs)
		w.WriteUint16(maxp.MaxInstructionDefs)
		w.WriteUint16(maxp.MaxStackElements)
		w.WriteUint16(maxp.MaxSizeOfInstructions)
		w.WriteUint16(maxp.MaxComponentElements)
		w.WriteUint16(maxp.MaxComponentDepth)
		return w.Bytes(), nil
	}
	return nil, fmt.Errorf("maxp: bad version")
}
