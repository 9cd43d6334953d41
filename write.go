package otf

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/tdewolff/parse/v2"
)

// checksumAdjustmentMagic minus the file checksum gives the value of the
// head table's checksumAdjustment field.
const checksumAdjustmentMagic = 0xB1B0AFBA

func (font *Font) validate() error {
	numGlyphs := int(font.Maxp.NumGlyphs)
	if font.Hmtx != nil && font.Hhea != nil {
		if len(font.Hmtx.HMetrics) != int(font.Hhea.NumberOfHMetrics) {
			return fmt.Errorf("hmtx: number of metrics does not match hhea table")
		} else if len(font.Hmtx.HMetrics)+len(font.Hmtx.LeftSideBearings) != numGlyphs {
			return fmt.Errorf("hmtx: number of metrics does not match maxp table numGlyphs")
		}
	}
	if font.IsTrueType {
		if len(font.Glyf.Glyphs) != numGlyphs {
			return fmt.Errorf("glyf: number of glyphs does not match maxp table numGlyphs")
		} else if len(font.Loca.Offsets) != numGlyphs+1 {
			return fmt.Errorf("loca: number of offsets does not match maxp table numGlyphs")
		} else if font.Loca.Format != font.Head.IndexToLocFormat {
			return fmt.Errorf("loca: format does not match head table indexToLocFormat")
		}
	}
	return nil
}

// Write writes out the font file. Decoded tables are re-encoded, unparsed
// tables are carried over verbatim, and the table directory, per-table
// checksums and the head table's checksumAdjustment are recomputed.
func (font *Font) Write() ([]byte, error) {
	if err := font.validate(); err != nil {
		return nil, err
	}

	tables := make(map[string][]byte, len(font.Tables))

	head := *font.Head
	if font.IsTrueType {
		glyfData, offsets := font.Glyf.Write()
		loca := &locaTable{Format: 0, Offsets: offsets}
		if 2*math.MaxUint16 < offsets[len(offsets)-1] {
			loca.Format = 1
		}
		locaData, err := loca.Write()
		if err != nil {
			return nil, err
		}
		head.IndexToLocFormat = loca.Format
		tables["glyf"] = glyfData
		tables["loca"] = locaData
	}
	tables["head"] = head.Write()
	tables["hhea"] = font.Hhea.Write()
	tables["hmtx"] = font.Hmtx.Write()
	if maxpData, err := font.Maxp.Write(); err != nil {
		return nil, err
	} else {
		tables["maxp"] = maxpData
	}
	if cmapData, err := font.Cmap.Write(); err != nil {
		return nil, err
	} else {
		tables["cmap"] = cmapData
	}
	tables["name"] = font.Name.Write()
	tables["OS/2"] = font.OS2.Write()
	if postData, err := font.Post.Write(); err != nil {
		return nil, err
	} else {
		tables["post"] = postData
	}
	if font.Kern != nil && 0 < len(font.Kern.Subtables) {
		tables["kern"] = font.Kern.Write()
	}
	for tag, table := range font.Tables {
		if _, ok := tables[tag]; !ok && tag != "kern" {
			tables[tag] = table
		}
	}

	tags := make([]string, 0, len(tables))
	for tag := range tables {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	// write header
	w := parse.NewBinaryWriter([]byte{})
	if font.IsCFF {
		w.WriteUint32(sfntVersionCFF)
	} else {
		w.WriteUint32(sfntVersionTrueType)
	}
	numTables := uint16(len(tags))
	searchRange, entrySelector, rangeShift := searchParams(int(numTables), 16)
	w.WriteUint16(numTables)
	w.WriteUint16(searchRange)
	w.WriteUint16(entrySelector)
	w.WriteUint16(rangeShift)

	// the table records are written at the end
	w.WriteBytes(make([]byte, 16*int(numTables)))

	// write tables
	var checksumAdjustmentPos uint32
	offsets, lengths := make([]uint32, numTables), make([]uint32, numTables)
	for i, tag := range tags {
		offsets[i] = w.Len()
		if tag == "head" {
			checksumAdjustmentPos = w.Len() + 8
		}
		w.WriteBytes(tables[tag])
		lengths[i] = w.Len() - offsets[i]

		padding := tablePadding(lengths[i])
		for j := 0; j < int(padding); j++ {
			w.WriteUint8(0)
		}
	}

	// add table record entries
	buf := w.Bytes()
	for i, tag := range tags {
		pos := 12 + i<<4
		copy(buf[pos:], []byte(tag))
		padding := tablePadding(lengths[i])
		checksum := calcChecksum(buf[offsets[i] : offsets[i]+lengths[i]+padding])
		binary.BigEndian.PutUint32(buf[pos+4:], checksum)
		binary.BigEndian.PutUint32(buf[pos+8:], offsets[i])
		binary.BigEndian.PutUint32(buf[pos+12:], lengths[i])
	}
	binary.BigEndian.PutUint32(buf[checksumAdjustmentPos:], checksumAdjustmentMagic-calcChecksum(buf))
	return buf, nil
}
