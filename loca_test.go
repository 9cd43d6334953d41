package otf

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestLocaMaxGlyphCount(t *testing.T) {
	// 65535 glyphs is a legal maxp value and needs 65536 offsets
	font := &Font{
		Head: &headTable{IndexToLocFormat: 0},
		Maxp: &maxpTable{NumGlyphs: 65535},
	}
	b := make([]byte, 2*65536)
	b[len(b)-2] = 0x01 // last offset 0x0100, doubled on read
	font.Tables = map[string][]byte{"loca": b}
	test.Error(t, font.parseLoca())

	test.T(t, len(font.Loca.Offsets), 65536)
	test.T(t, font.Loca.Offsets[65535], uint32(0x200))
}

func TestLocaBadOffsets(t *testing.T) {
	font := &Font{
		Head: &headTable{IndexToLocFormat: 0},
		Maxp: &maxpTable{NumGlyphs: 1},
	}
	font.Tables = map[string][]byte{"loca": {0x00, 0x02, 0x00, 0x01}}
	test.That(t, font.parseLoca() != nil)
}
