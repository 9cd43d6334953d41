package otf

import (
	"fmt"

	"github.com/tdewolff/parse/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type nameRecord struct {
	Platform PlatformID
	Encoding EncodingID
	Language uint16
	Name     NameID
	Value    []byte
}

// String decodes the record value, UTF-16BE for the Unicode and Windows
// platforms and MacRoman for the Macintosh platform. Undecodable values are
// returned raw.
func (record nameRecord) String() string {
	var decoder *encoding.Decoder
	if record.Platform == PlatformUnicode || record.Platform == PlatformWindows {
		decoder = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	} else if record.Platform == PlatformMacintosh && record.Encoding == EncodingMacintoshRoman {
		decoder = charmap.Macintosh.NewDecoder()
	}
	if decoder == nil {
		return string(record.Value)
	}
	s, _, err := transform.String(decoder, string(record.Value))
	if err == nil {
		return s
	}
	return string(record.Value)
}

type nameLangTagRecord struct {
	Value []byte
}

func (record nameLangTagRecord) String() string {
	decoder := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	s, _, err := transform.String(decoder, string(record.Value))
	if err == nil {
		return s
	}
	return string(record.Value)
}

// nameTable is the naming table, format 0 or 1. Format 1 adds language tag
// records.
type nameTable struct {
	Format   uint16
	Records  []nameRecord
	LangTags []nameLangTagRecord
}

// Get returns all records with the given name identifier.
func (name *nameTable) Get(id NameID) []nameRecord {
	records := []nameRecord{}
	for _, record := range name.Records {
		if record.Name == id {
			records = append(records, record)
		}
	}
	return records
}

func (font *Font) parseName() error {
	b, ok := font.Tables["name"]
	if !ok {
		return ErrMissingTable{"name"}
	} else if len(b) < 6 {
		return fmt.Errorf("name: bad table")
	}

	font.Name = &nameTable{}
	r := parse.NewBinaryReader(b)
	font.Name.Format = r.ReadUint16()
	if font.Name.Format != 0 && font.Name.Format != 1 {
		return fmt.Errorf("name: bad version")
	}
	count := r.ReadUint16()
	storageOffset := r.ReadUint16()
	if uint32(len(b)) < 6+12*uint32(count) || uint16(len(b)) < storageOffset {
		return fmt.Errorf("name: bad table")
	}
	font.Name.Records = make([]nameRecord, count)
	for i := 0; i < int(count); i++ {
		font.Name.Records[i].Platform = PlatformID(r.ReadUint16())
		font.Name.Records[i].Encoding = EncodingID(r.ReadUint16())
		font.Name.Records[i].Language = r.ReadUint16()
		font.Name.Records[i].Name = NameID(r.ReadUint16())

		length := r.ReadUint16()
		offset := r.ReadUint16()
		if uint16(len(b))-storageOffset < offset || uint16(len(b))-storageOffset-offset < length {
			return fmt.Errorf("name: bad table")
		}
		font.Name.Records[i].Value = b[storageOffset+offset : storageOffset+offset+length]
	}
	if font.Name.Format == 1 {
		if uint32(len(b)) < 6+12*uint32(count)+2 {
			return fmt.Errorf("name: bad table")
		}
		langTagCount := r.ReadUint16()
		if uint32(len(b)) < 6+12*uint32(count)+2+4*uint32(langTagCount) {
			return fmt.Errorf("name: bad table")
		}
		font.Name.LangTags = make([]nameLangTagRecord, langTagCount)
		for i := 0; i < int(langTagCount); i++ {
			length := r.ReadUint16()
			offset := r.ReadUint16()
			if uint16(len(b))-storageOffset < offset || uint16(len(b))-storageOffset-offset < length {
				return fmt.Errorf("name: bad table")
			}
			font.Name.LangTags[i].Value = b[storageOffset+offset : storageOffset+offset+length]
		}
	}
	return nil
}

// Write serializes the table, rebuilding the string storage area and the
// record offsets into it.
func (name *nameTable) Write() []byte {
	headerLength := 6 + 12*uint32(len(name.Records))
	if name.Format == 1 {
		headerLength += 2 + 4*uint32(len(name.LangTags))
	}

	storage := parse.NewBinaryWriter([]byte{})
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(name.Format)
	w.WriteUint16(uint16(len(name.Records)))
	w.WriteUint16(uint16(headerLength)) // storageOffset
	for _, record := range name.Records {
		w.WriteUint16(uint16(record.Platform))
		w.WriteUint16(uint16(record.Encoding))
		w.WriteUint16(record.Language)
		w.WriteUint16(uint16(record.Name))
		w.WriteUint16(uint16(len(record.Value)))
		w.WriteUint16(uint16(storage.Len()))
		storage.WriteBytes(record.Value)
	}
	if name.Format == 1 {
		w.WriteUint16(uint16(len(name.LangTags)))
		for _, record := range name.LangTags {
			w.WriteUint16(uint16(len(record.Value)))
			w.WriteUint16(uint16(storage.Len()))
			storage.WriteBytes(record.Value)
		}
	}
	w.WriteBytes(storage.Bytes())
	return w.Bytes()
}
