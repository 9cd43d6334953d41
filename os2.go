package otf

import (
	"fmt"

	"github.com/tdewolff/parse/v2"
)

type os2Table struct {
	Version                 uint16
	XAvgCharWidth           int16
	UsWeightClass           uint16
	UsWidthClass            uint16
	FsType                  uint16
	YSubscriptXSize         int16
	YSubscriptYSize         int16
	YSubscriptXOffset       int16
	YSubscriptYOffset       int16
	YSuperscriptXSize       int16
	YSuperscriptYSize       int16
	YSuperscriptXOffset     int16
	YSuperscriptYOffset     int16
	YStrikeoutSize          int16
	YStrikeoutPosition      int16
	SFamilyClass            int16
	BFamilyType             uint8
	BSerifStyle             uint8
	BWeight                 uint8
	BProportion             uint8
	BContrast               uint8
	BStrokeVariation        uint8
	BArmStyle               uint8
	BLetterform             uint8
	BMidline                uint8
	BXHeight                uint8
	UlUnicodeRange1         uint32
	UlUnicodeRange2         uint32
	UlUnicodeRange3         uint32
	UlUnicodeRange4         uint32
	AchVendID               [4]byte
	FsSelection             uint16
	UsFirstCharIndex        uint16
	UsLastCharIndex         uint16
	STypoAscender           int16
	STypoDescender          int16
	STypoLineGap            int16
	UsWinAscent             uint16
	UsWinDescent            uint16
	UlCodePageRange1        uint32
	UlCodePageRange2        uint32
	SxHeight                int16
	SCapHeight              int16
	UsDefaultChar           uint16
	UsBreakChar             uint16
	UsMaxContent            uint16
	UsLowerOpticalPointSize uint16
	UsUpperOpticalPointSize uint16
}

func (font *Font) parseOS2() error {
	b, ok := font.Tables["OS/2"]
	if !ok {
		return ErrMissingTable{"OS/2"}
	} else if len(b) < 68 {
		return fmt.Errorf("OS/2: bad table")
	}

	r := parse.NewBinaryReader(b)
	font.OS2 = &os2Table{}
	font.OS2.Version = r.ReadUint16()
	if 5 < font.OS2.Version {
		return fmt.Errorf("OS/2: bad version")
	} else if font.OS2.Version == 0 && len(b) != 68 && len(b) != 78 ||
		font.OS2.Version == 1 && len(b) != 86 ||
		2 <= font.OS2.Version && font.OS2.Version <= 4 && len(b) != 96 ||
		font.OS2.Version == 5 && len(b) != 100 {
		return fmt.Errorf("OS/2: bad table")
	}
	font.OS2.XAvgCharWidth = r.ReadInt16()
	font.OS2.UsWeightClass = r.ReadUint16()
	font.OS2.UsWidthClass = r.ReadUint16()
	font.OS2.FsType = r.ReadUint16()
	font.OS2.YSubscriptXSize = r.ReadInt16()
	font.OS2.YSubscriptYSize = r.ReadInt16()
	font.OS2.YSubscriptXOffset = r.ReadInt16()
	font.OS2.YSubscriptYOffset = r.ReadInt16()
	font.OS2.YSuperscriptXSize = r.ReadInt16()
	font.OS2.YSuperscriptYSize = r.ReadInt16()
	font.OS2.YSuperscriptXOffset = r.ReadInt16()
	font.OS2.YSuperscriptYOffset = r.ReadInt16()
	font.OS2.YStrikeoutSize = r.ReadInt16()
	font.OS2.YStrikeoutPosition = r.ReadInt16()
	font.OS2.SFamilyClass = r.ReadInt16()
	font.OS2.BFamilyType = r.ReadUint8()
	font.OS2.BSerifStyle = r.ReadUint8()
	font.OS2.BWeight = r.ReadUint8()
	font.OS2.BProportion = r.ReadUint8()
	font.OS2.BContrast = r.ReadUint8()
	font.OS2.BStrokeVariation = r.ReadUint8()
	font.OS2.BArmStyle = r.ReadUint8()
	font.OS2.BLetterform = r.ReadUint8()
	font.OS2.BMidline = r.ReadUint8()
	font.OS2.BXHeight = r.ReadUint8()
	font.OS2.UlUnicodeRange1 = r.ReadUint32()
	font.OS2.UlUnicodeRange2 = r.ReadUint32()
	font.OS2.UlUnicodeRange3 = r.ReadUint32()
	font.OS2.UlUnicodeRange4 = r.ReadUint32()
	copy(font.OS2.AchVendID[:], r.ReadBytes(4))
	font.OS2.FsSelection = r.ReadUint16()
	font.OS2.UsFirstCharIndex = r.ReadUint16()
	font.OS2.UsLastCharIndex = r.ReadUint16()
	if 78 <= len(b) {
		font.OS2.STypoAscender = r.ReadInt16()
		font.OS2.STypoDescender = r.ReadInt16()
		font.OS2.STypoLineGap = r.ReadInt16()
		font.OS2.UsWinAscent = r.ReadUint16()
		font.OS2.UsWinDescent = r.ReadUint16()
	}
	if font.OS2.Version == 0 {
		return nil
	}
	font.OS2.UlCodePageRange1 = r.ReadUint32()
	font.OS2.UlCodePageRange2 = r.ReadUint32()
	if font.OS2.Version == 1 {
		return nil
	}
	font.OS2.SxHeight = r.ReadInt16()
	font.OS2.SCapHeight = r.ReadInt16()
	font.OS2.UsDefaultChar = r.ReadUint16()
	font.OS2.UsBreakChar = r.ReadUint16()
	font.OS2.UsMaxContent = r.ReadUint16()
	if font.OS2.Version <= 4 {
		return nil
	}
	font.OS2.UsLowerOpticalPointSize = r.ReadUint16()
	font.OS2.UsUpperOpticalPointSize = r.ReadUint16()
	return nil
}

func (os2 *os2Table) Write() []byte {
	w := parse.NewBinaryWriter(make([]byte, 0, 100))
	w.WriteUint16(os2.Version)
	w.WriteInt16(os2.XAvgCharWidth)
	w.WriteUint16(os2.UsWeightClass)
	w.WriteUint16(os2.UsWidthClass)
	w.WriteUint16(os2.FsType)
	w.WriteInt16(os2.YSubscriptXSize)
	w.WriteInt16(os2.YSubscriptYSize)
	w.WriteInt16(os2.YSubscriptXOffset)
	w.WriteInt16(os2.YSubscriptYOffset)
	w.WriteInt16(os2.YSuperscriptXSize)
	w.WriteInt16(os2.YSuperscriptYSize)
	w.WriteInt16(os2.YSuperscriptXOffset)
	w.WriteInt16(os2.YSuperscriptYOffset)
	w.WriteInt16(os2.YStrikeoutSize)
	w.WriteInt16(os2.YStrikeoutPosition)
	w.WriteInt16(os2.SFamilyClass)
	w.WriteUint8(os2.BFamilyType)
	w.WriteUint8(os2.BSerifStyle)
	w.WriteUint8(os2.BWeight)
	w.WriteUint8(os2.BProportion)
	w.WriteUint8(os2.BContrast)
	w.WriteUint8(os2.BStrokeVariation)
	w.WriteUint8(os2.BArmStyle)
	w.WriteUint8(os2.BLetterform)
	w.WriteUint8(os2.BMidline)
	w.WriteUint8(os2.BXHeight)
	w.WriteUint32(os2.UlUnicodeRange1)
	w.WriteUint32(os2.UlUnicodeRange2)
	w.WriteUint32(os2.UlUnicodeRange3)
	w.WriteUint32(os2.UlUnicodeRange4)
	w.WriteBytes(os2.AchVendID[:])
	w.WriteUint16(os2.FsSelection)
	w.WriteUint16(os2.UsFirstCharIndex)
	w.WriteUint16(os2.UsLastCharIndex)
	w.WriteInt16(os2.STypoAscender)
	w.WriteInt16(os2.STypoDescender)
	w.WriteInt16(os2.STypoLineGap)
	w.WriteUint16(os2.UsWinAscent)
	w.WriteUint16(os2.UsWinDescent)
	if os2.Version == 0 {
		return w.Bytes()
	}
	w.WriteUint32(os2.UlCodePageRange1)
	w.WriteUint32(os2.UlCodePageRange2)
	if os2.Version == 1 {
		return w.Bytes()
	}
	w.WriteInt16(os2.SxHeight)
	w.WriteInt16(os2.SCapHeight)
	w.WriteUint16(os2.UsDefaultChar)
	w.WriteUint16(os2.UsBreakChar)
	w.WriteUint16(os2.UsMaxContent)
	if os2.Version <= 4 {
		return w.Bytes()
	}
	w.WriteUint16(os2.UsLowerOpticalPointSize)
	w.WriteUint16(os2.UsUpperOpticalPointSize)
	return w.Bytes()
}
