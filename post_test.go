package otf

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestPostVersion2(t *testing.T) {
	post := &postTable{
		Version:            postVersion2,
		ItalicAngle:        -12.5,
		UnderlinePosition:  -100,
		UnderlineThickness: 50,
		GlyphNameIndex:     []uint16{0, 36, 37, 38, 39, 258},
		stringData:         [][]byte{[]byte("custom")},
	}
	b, err := post.Write()
	test.Error(t, err)

	font := &Font{
		IsTrueType: true,
		Tables:     map[string][]byte{"post": b},
		Maxp:       &maxpTable{NumGlyphs: 6},
	}
	test.Error(t, font.parsePost())

	test.T(t, font.Post.Version, uint32(postVersion2))
	test.T(t, font.Post.ItalicAngle, -12.5)
	test.T(t, font.Post.Get(0), ".notdef")
	test.T(t, font.Post.Get(1), "A")
	test.T(t, font.Post.Get(4), "D")
	test.T(t, font.Post.Get(5), "custom")
	test.T(t, font.Post.Get(6), "")

	test.T(t, font.Post.Find("A"), uint16(1))
	test.T(t, font.Post.Find("custom"), uint16(5))
	test.T(t, font.Post.Find("missing"), uint16(0))
}

func TestPostVersion1(t *testing.T) {
	post := &postTable{Version: postVersion1}
	b, err := post.Write()
	test.Error(t, err)

	font := &Font{
		IsTrueType: true,
		Tables:     map[string][]byte{"post": b},
		Maxp:       &maxpTable{NumGlyphs: 258},
	}
	test.Error(t, font.parsePost())

	// version 1 implies the standard Macintosh glyph order
	test.T(t, font.Post.Get(0), ".notdef")
	test.T(t, font.Post.Get(3), "space")
	test.T(t, font.Post.Find("space"), uint16(3))
}

func TestPostVersion25Rejected(t *testing.T) {
	font := &Font{
		IsTrueType: true,
		Tables: map[string][]byte{"post": {
			0x00, 0x02, 0x50, 0x00,
			0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		}},
		Maxp: &maxpTable{NumGlyphs: 6},
	}
	test.That(t, font.parsePost() != nil)
}
