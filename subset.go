package otf

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
)

// Glyph couples a glyph id with the code points that map to it.
type Glyph struct {
	ID         uint16
	CodePoints []rune
}

// Subset returns a new font containing only the glyphs needed to render the
// given text. The original font is not modified.
func (font *Font) Subset(text string) (*Font, error) {
	glyphMap := map[uint16][]rune{}
	ids := []uint16{}
	for _, r := range text {
		glyphID := font.Cmap.Get(r)
		if glyphID == 0 {
			continue
		}
		codePoints, ok := glyphMap[glyphID]
		if !ok {
			ids = append(ids, glyphID)
		}
		seen := false
		for _, c := range codePoints {
			if c == r {
				seen = true
				break
			}
		}
		if !seen {
			glyphMap[glyphID] = append(codePoints, r)
		}
	}

	glyphs := make([]Glyph, 0, len(ids))
	for _, glyphID := range ids {
		glyphs = append(glyphs, Glyph{ID: glyphID, CodePoints: glyphMap[glyphID]})
	}
	return font.SubsetGlyphs(glyphs)
}

// SubsetGlyphs returns a new font containing only the given glyphs, their
// composite dependencies, and glyph 0 (.notdef). Glyph ids are renumbered
// densely in ascending order of their old ids. The original font is not
// modified.
func (font *Font) SubsetGlyphs(glyphs []Glyph) (*Font, error) {
	if font.IsCFF {
		return nil, fmt.Errorf("CFF: subsetting not supported")
	}

	// collect the retained set, .notdef always included
	codePoints := map[uint16][]rune{}
	retained := map[uint16]bool{0: true}
	for _, glyph := range glyphs {
		if font.Maxp.NumGlyphs <= glyph.ID {
			return nil, fmt.Errorf("glyf: bad glyphID %d", glyph.ID)
		}
		retained[glyph.ID] = true
		codePoints[glyph.ID] = append(codePoints[glyph.ID], glyph.CodePoints...)
	}

	// pull in composite dependencies, they get no code points
	worklist := make([]uint16, 0, len(retained))
	for glyphID := range retained {
		worklist = append(worklist, glyphID)
	}
	for 0 < len(worklist) {
		glyphID := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		glyph := font.Glyf.Get(glyphID)
		if glyph == nil || !glyph.IsComposite() {
			continue
		}
		components, _, err := glyph.Components()
		if err != nil {
			return nil, err
		}
		for _, componentID := range components {
			if !retained[componentID] {
				retained[componentID] = true
				worklist = append(worklist, componentID)
			}
		}
	}

	// old ids in ascending order define the new numbering
	glyphIDs := make([]uint16, 0, len(retained))
	for glyphID := range retained {
		glyphIDs = append(glyphIDs, glyphID)
	}
	sort.Slice(glyphIDs, func(i, j int) bool { return glyphIDs[i] < glyphIDs[j] })
	glyphMap := make(map[uint16]uint16, len(glyphIDs))
	for subsetGlyphID, glyphID := range glyphIDs {
		glyphMap[glyphID] = uint16(subsetGlyphID)
	}

	subset := &Font{
		SfntVersion: font.SfntVersion,
		IsCFF:       font.IsCFF,
		IsTrueType:  font.IsTrueType,
		Tables:      map[string][]byte{},
	}

	// glyf with component ids remapped
	subset.Glyf = &glyfTable{Glyphs: make([]*glyphData, len(glyphIDs))}
	for subsetGlyphID, glyphID := range glyphIDs {
		glyph := font.Glyf.Get(glyphID)
		if glyph == nil {
			continue
		}
		copied := *glyph
		copied.Description = append([]byte{}, glyph.Description...)
		if glyph.IsComposite() {
			components, positions, err := glyph.Components()
			if err != nil {
				return nil, err
			}
			for i, componentID := range components {
				binary.BigEndian.PutUint16(copied.Description[positions[i]:], glyphMap[componentID])
			}
		}
		subset.Glyf.Glyphs[subsetGlyphID] = &copied
	}

	// loca recomputed from the packed glyf, short format when it fits
	_, offsets := subset.Glyf.Write()
	subset.Loca = &locaTable{Format: 0, Offsets: offsets}
	if 2*math.MaxUint16 < offsets[len(offsets)-1] {
		subset.Loca.Format = 1
	}

	head := *font.Head
	head.IndexToLocFormat = subset.Loca.Format
	subset.Head = &head

	maxp := *font.Maxp
	maxp.NumGlyphs = uint16(len(glyphIDs))
	subset.Maxp = &maxp

	// trim trailing metrics sharing the last advance
	numberOfHMetrics := uint16(len(glyphIDs))
	if 1 < numberOfHMetrics {
		advance := font.Hmtx.Advance(glyphIDs[numberOfHMetrics-1])
		for 1 < numberOfHMetrics {
			if font.Hmtx.Advance(glyphIDs[numberOfHMetrics-2]) != advance {
				break
			}
			numberOfHMetrics--
		}
	}
	hhea := *font.Hhea
	hhea.NumberOfHMetrics = numberOfHMetrics
	subset.Hhea = &hhea

	subset.Hmtx = &hmtxTable{
		HMetrics:         make([]hmtxLongHorMetric, numberOfHMetrics),
		LeftSideBearings: make([]int16, len(glyphIDs)-int(numberOfHMetrics)),
	}
	for subsetGlyphID, glyphID := range glyphIDs {
		lsb := font.Hmtx.LeftSideBearing(glyphID)
		if subsetGlyphID < int(numberOfHMetrics) {
			subset.Hmtx.HMetrics[subsetGlyphID].AdvanceWidth = font.Hmtx.Advance(glyphID)
			subset.Hmtx.HMetrics[subsetGlyphID].LeftSideBearing = lsb
		} else {
			subset.Hmtx.LeftSideBearings[subsetGlyphID-int(numberOfHMetrics)] = lsb
		}
	}

	// new cmap from the retained code points
	runeMap := map[rune]uint16{}
	for glyphID, rs := range codePoints {
		for _, r := range rs {
			runeMap[r] = glyphMap[glyphID]
		}
	}
	subset.Cmap = buildCmap(runeMap)

	subset.Name = font.Name
	subset.OS2 = font.OS2

	// glyph names are dropped, version 3 keeps only the metrics
	subset.Post = &postTable{
		Version:            postVersion3,
		ItalicAngle:        font.Post.ItalicAngle,
		UnderlinePosition:  font.Post.UnderlinePosition,
		UnderlineThickness: font.Post.UnderlineThickness,
		IsFixedPitch:       font.Post.IsFixedPitch,
		MinMemType42:       font.Post.MinMemType42,
		MaxMemType42:       font.Post.MaxMemType42,
		MinMemType1:        font.Post.MinMemType1,
		MaxMemType1:        font.Post.MaxMemType1,
	}

	if font.Kern != nil {
		kernSubtables := []kernFormat0{}
		for _, subtable := range font.Kern.Subtables {
			pairs := []kernPair{}
			for l, lOrig := range glyphIDs {
				if lOrig == 0 {
					continue
				}
				for r, rOrig := range glyphIDs {
					if rOrig == 0 {
						continue
					}
					if value := subtable.Get(lOrig, rOrig); value != 0 {
						pairs = append(pairs, kernPair{
							Key:   uint32(l)<<16 | uint32(r),
							Value: value,
						})
					}
				}
			}
			if 0 < len(pairs) {
				kernSubtables = append(kernSubtables, kernFormat0{
					Coverage: subtable.Coverage,
					Pairs:    pairs,
				})
			}
		}
		if 0 < len(kernSubtables) {
			subset.Kern = &kernTable{Subtables: kernSubtables}
		}
	}

	// tables that are not rebuilt are carried over verbatim
	for tag, table := range font.Tables {
		switch tag {
		case "OS/2", "cmap", "glyf", "head", "hhea", "hmtx", "kern", "loca", "maxp", "name", "post":
		default:
			subset.Tables[tag] = table
		}
	}
	return subset, nil
}
