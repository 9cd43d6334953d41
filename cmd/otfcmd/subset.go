package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/tdewolff/prompt"
	"github.com/typefile/otf"
)

type Subset struct {
	Force    bool     `short:"f" desc:"Force overwriting existing files."`
	Glyphs   []string `short:"g" name:"glyph" desc:"List of glyph IDs to keep, eg. 1-100."`
	Chars    []string `short:"c" name:"char" desc:"List of literal characters to keep, eg. a-z."`
	Names    []string `short:"n" name:"name" desc:"List of glyph names to keep, eg. space."`
	Unicodes []string `short:"u" name:"unicode" desc:"List of unicode IDs to keep, eg. f0fc-f0ff."`
	Output   string   `short:"o" desc:"Output font file."`
	Input    string   `index:"0" desc:"Input font file."`
}

func (cmd *Subset) Run() error {
	if cmd.Output == "" {
		cmd.Output = cmd.Input
	}

	b, err := os.ReadFile(cmd.Input)
	if err != nil {
		return err
	}
	font, err := otf.Parse(b)
	if err != nil {
		return fmt.Errorf("%v: %v", cmd.Input, err)
	}

	codePoints := map[uint16][]rune{}
	addRune := func(r rune) {
		glyphID := font.GlyphIndex(r)
		if glyphID == 0 {
			Warning.Printf("glyph not found: %s", string(r))
			return
		}
		codePoints[glyphID] = append(codePoints[glyphID], r)
	}

	for _, glyph := range cmd.Glyphs {
		if dash := strings.IndexByte(glyph, '-'); dash != -1 {
			first, err := strconv.ParseUint(glyph[:dash], 10, 16)
			if err != nil {
				return fmt.Errorf("invalid glyph ID: %v", err)
			}
			last, err := strconv.ParseUint(glyph[dash+1:], 10, 16)
			if err != nil {
				return fmt.Errorf("invalid glyph ID: %v", err)
			}
			if last < first {
				return fmt.Errorf("invalid glyph ID range: %d-%d", first, last)
			}
			for first != last+1 {
				codePoints[uint16(first)] = nil
				first++
			}
		} else {
			glyphID, err := strconv.ParseUint(glyph, 10, 16)
			if err != nil {
				return fmt.Errorf("invalid glyph ID: %v", err)
			}
			codePoints[uint16(glyphID)] = nil
		}
	}

	for _, s := range cmd.Chars {
		prev := rune(-1)
		rangeChars := false
		for _, r := range s {
			if prev != -1 && r == '-' {
				rangeChars = true
			} else if rangeChars {
				for i := prev + 1; i <= r; i++ {
					addRune(i)
				}
				rangeChars = false
				prev = -1
			} else {
				addRune(r)
				prev = r
			}
		}
		if rangeChars {
			addRune('-')
		}
	}

	for _, name := range cmd.Names {
		glyphID := font.FindGlyphName(name)
		if glyphID == 0 {
			Warning.Println("glyph name not found:", name)
		} else {
			codePoints[glyphID] = nil
		}
	}

	for _, code := range cmd.Unicodes {
		if dash := strings.IndexByte(code, '-'); dash != -1 {
			first, err := strconv.ParseInt(code[:dash], 16, 32)
			if err != nil {
				return fmt.Errorf("invalid unicode codepoint: %v", err)
			}
			last, err := strconv.ParseInt(code[dash+1:], 16, 32)
			if err != nil {
				return fmt.Errorf("invalid unicode codepoint: %v", err)
			}
			if last < first || first < 0 {
				return fmt.Errorf("invalid unicode range: U+%4X-U+%4X", first, last)
			}
			for first != last+1 {
				addRune(rune(first))
				first++
			}
		} else {
			codepoint, err := strconv.ParseInt(code, 16, 32)
			if err != nil {
				return fmt.Errorf("invalid unicode codepoint: %v", err)
			} else if codepoint < 0 {
				return fmt.Errorf("invalid unicode codepoint: U+%4X", codepoint)
			}
			addRune(rune(codepoint))
		}
	}

	glyphIDs := make([]uint16, 0, len(codePoints))
	for glyphID := range codePoints {
		glyphIDs = append(glyphIDs, glyphID)
	}
	sort.Slice(glyphIDs, func(i, j int) bool { return glyphIDs[i] < glyphIDs[j] })

	glyphs := make([]otf.Glyph, 0, len(glyphIDs))
	for _, glyphID := range glyphIDs {
		glyphs = append(glyphs, otf.Glyph{ID: glyphID, CodePoints: codePoints[glyphID]})
	}

	font, err = font.SubsetGlyphs(glyphs)
	if err != nil {
		return err
	}
	out, err := font.Write()
	if err != nil {
		return err
	}

	fmt.Println("Number of glyphs:", font.NumGlyphs())
	ratio := 1.0
	if 0 < len(b) {
		ratio = float64(len(out)) / float64(len(b))
	}
	fmt.Printf("File size: %6v => %6v (%.1f%%)\n", formatBytes(uint64(len(b))), formatBytes(uint64(len(out))), ratio*100.0)

	if !cmd.Force && cmd.Output != cmd.Input {
		if _, err := os.Stat(cmd.Output); err == nil {
			if !prompt.YesNo(fmt.Sprintf("%s already exists, overwrite?", cmd.Output), false) {
				return nil
			}
		}
	}
	return os.WriteFile(cmd.Output, out, 0o644)
}

func formatBytes(size uint64) string {
	if size < 10 {
		return fmt.Sprintf("%d B", size)
	}

	units := []string{"B", "kB", "MB", "GB", "TB", "PB", "EB"}
	scale := int(math.Floor((math.Log10(float64(size)) + math.Log10(2.0)) / 3.0))
	value := float64(size) / math.Pow10(scale*3)
	format := "%.0f %s"
	if value < 10.0 {
		format = "%.1f %s"
	}
	return fmt.Sprintf(format, value, units[scale])
}
