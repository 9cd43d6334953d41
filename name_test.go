package otf

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestNameFormat1(t *testing.T) {
	name := &nameTable{
		Format: 1,
		Records: []nameRecord{
			{PlatformWindows, EncodingWindowsUnicodeBMP, 0x0409, NameFontFamily, utf16be("Testa")},
			{PlatformMacintosh, EncodingMacintoshRoman, 0, NameFontFamily, []byte("Testa")},
			{PlatformWindows, EncodingWindowsUnicodeBMP, 0x8000, NameDesigner, utf16be("N. N.")},
		},
		LangTags: []nameLangTagRecord{
			{utf16be("nl-NL")},
		},
	}

	font := &Font{Tables: map[string][]byte{"name": name.Write()}}
	test.Error(t, font.parseName())

	test.T(t, font.Name.Format, uint16(1))
	records := font.Name.Get(NameFontFamily)
	test.T(t, len(records), 2)
	test.T(t, records[0].String(), "Testa")
	test.T(t, records[1].String(), "Testa")
	test.T(t, font.Name.Get(NameDesigner)[0].String(), "N. N.")
	test.T(t, font.Name.Get(NamePostScript), []nameRecord{})
	test.T(t, font.Name.LangTags[0].String(), "nl-NL")
}

func TestNameBadTable(t *testing.T) {
	font := &Font{Tables: map[string][]byte{"name": {0x00, 0x02, 0x00, 0x00, 0x00, 0x06}}}
	test.That(t, font.parseName() != nil)

	// record length exceeds the storage area
	font.Tables["name"] = []byte{
		0x00, 0x00, // format
		0x00, 0x01, // count
		0x00, 0x12, // storageOffset
		0x00, 0x03, 0x00, 0x01, 0x04, 0x09, 0x00, 0x01,
		0x00, 0x10, 0x00, 0x00, // length, offset
	}
	test.That(t, font.parseName() != nil)
}
