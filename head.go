package otf

import (
	"fmt"
	"math"
	"time"

	"github.com/tdewolff/parse/v2"
)

const headMagicNumber = 0x5F0F3CF5

type headTable struct {
	FontRevision           uint32
	Flags                  [16]bool
	UnitsPerEm             uint16
	Created, Modified      time.Time
	XMin, YMin, XMax, YMax int16
	MacStyle               [16]bool
	LowestRecPPEM          uint16
	FontDirectionHint      int16
	IndexToLocFormat       int16
	GlyphDataFormat        int16
}

var macEpoch = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)

func (font *Font) parseHead() error {
	b, ok := font.Tables["head"]
	if !ok {
		return ErrMissingTable{"head"}
	} else if len(b) != 54 {
		return fmt.Errorf("head: bad table")
	}

	font.Head = &headTable{}
	r := parse.NewBinaryReader(b)
	majorVersion := r.ReadUint16()
	minorVersion := r.ReadUint16()
	if majorVersion != 1 || minorVersion != 0 {
		return fmt.Errorf("head: bad version")
	}
	font.Head.FontRevision = r.ReadUint32()
	_ = r.ReadUint32()                         // checksumAdjustment
	if r.ReadUint32() != headMagicNumber {
		return fmt.Errorf("head: bad magic number")
	}
	font.Head.Flags = Uint16ToFlags(r.ReadUint16())
	font.Head.UnitsPerEm = r.ReadUint16()
	created := r.ReadUint64()
	modified := r.ReadUint64()
	if math.MaxInt64 < created || math.MaxInt64 < modified {
		return fmt.Errorf("head: created and/or modified dates too large")
	}
	font.Head.Created = macEpoch.Add(time.Second * time.Duration(created))
	font.Head.Modified = macEpoch.Add(time.Second * time.Duration(modified))
	font.Head.XMin = r.ReadInt16()
	font.Head.YMin = r.ReadInt16()
	font.Head.XMax = r.ReadInt16()
	font.Head.YMax = r.ReadInt16()
	font.Head.MacStyle = Uint16ToFlags(r.ReadUint16())
	font.Head.LowestRecPPEM = r.ReadUint16()
	font.Head.FontDirectionHint = r.ReadInt16()
	font.Head.IndexToLocFormat = r.ReadInt16()
	if font.Head.IndexToLocFormat != 0 && font.Head.IndexToLocFormat != 1 {
		return fmt.Errorf("head: bad indexToLocFormat")
	}
	font.Head.GlyphDataFormat = r.ReadInt16()
	return nil
}

// Write serializes the table. The checksumAdjustment field is written as zero,
// the layout engine fills it in after the whole file is assembled.
func (head *headTable) Write() []byte {
	w := parse.NewBinaryWriter(make([]byte, 0, 54))
	w.WriteUint16(1) // majorVersion
	w.WriteUint16(0) // minorVersion
	w.WriteUint32(head.FontRevision)
	w.WriteUint32(0) // checksumAdjustment
	w.WriteUint32(headMagicNumber)
	w.WriteUint16(flagsToUint16(head.Flags))
	w.WriteUint16(head.UnitsPerEm)
	w.WriteUint64(uint64(head.Created.Sub(macEpoch) / time.Second))
	w.WriteUint64(uint64(head.Modified.Sub(macEpoch) / time.Second))
	w.WriteInt16(head.XMin)
	w.WriteInt16(head.YMin)
	w.WriteInt16(head.XMax)
	w.WriteInt16(head.YMax)
	w.WriteUint16(flagsToUint16(head.MacStyle))
	w.WriteUint16(head.LowestRecPPEM)
	w.WriteInt16(head.FontDirectionHint)
	w.WriteInt16(head.IndexToLocFormat)
	w.WriteInt16(head.GlyphDataFormat)
	return w.Bytes()
}
