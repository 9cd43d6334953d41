package main

import (
	"fmt"
	"math"
	"os"

	"github.com/tdewolff/parse/v2"
	"github.com/typefile/otf"
)

type Info struct {
	Input string `index:"0" desc:"Input file"`
}

func (cmd *Info) Run() error {
	b, err := os.ReadFile(cmd.Input)
	if err != nil {
		return err
	}
	font, err := otf.Parse(b)
	if err != nil {
		return err
	}

	version := "TrueType"
	if font.IsCFF {
		version = "CFF"
	}
	fmt.Printf("File: %s\n\n", cmd.Input)
	fmt.Printf("sfntVersion: 0x%08X (%s)\n", font.SfntVersion, version)
	fmt.Printf("Family name: %s\n", font.FamilyName())
	fmt.Printf("PostScript name: %s\n", font.PostScriptName())
	fmt.Printf("Number of glyphs: %d\n", font.NumGlyphs())
	ascender, descender, lineGap := font.VerticalMetrics()
	fmt.Printf("Vertical metrics: ascender=%d descender=%d lineGap=%d\n", ascender, descender, lineGap)
	fmt.Printf("\nTable directory:\n")

	r := parse.NewBinaryReader(b)
	_ = r.ReadUint32() // sfntVersion
	numTables := int(r.ReadUint16())
	_ = r.ReadBytes(6)

	nLen := int(math.Log10(float64(len(b))) + 1)
	for i := 0; i < numTables; i++ {
		tag := r.ReadString(4)
		checksum := r.ReadUint32()
		offset := r.ReadUint32()
		length := r.ReadUint32()
		fmt.Printf("  %2d  %s  checksum=0x%08X  offset=%*d  length=%*d\n", i, tag, checksum, nLen, offset, nLen, length)
	}
	return nil
}
