package otf

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestMaxpCFF(t *testing.T) {
	maxp := &maxpTable{Version: maxpVersionCFF, NumGlyphs: 12}
	b, err := maxp.Write()
	test.Error(t, err)
	test.T(t, len(b), 6)

	font := &Font{IsCFF: true, Tables: map[string][]byte{"maxp": b}}
	test.Error(t, font.parseMaxp())
	test.T(t, font.Maxp, maxp)

	// CFF variant is invalid in a TrueType font
	font = &Font{IsTrueType: true, Tables: map[string][]byte{"maxp": b}}
	test.That(t, font.parseMaxp() != nil)
}

func TestMaxpBadVersion(t *testing.T) {
	font := &Font{Tables: map[string][]byte{"maxp": {0x00, 0x00, 0x20, 0x00, 0x00, 0x0C}}}
	test.That(t, font.parseMaxp() != nil)
}
