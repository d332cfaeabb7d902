//go:build mage

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	pnm "github.com/jbuchbinder/gopnm"
)

// fixtureDir holds the sample tree written by Fixtures.
const fixtureDir = "sample"

// fixtureFiles are the sources Fixtures writes, with their sizes. The
// names exercise the matching rules: suffixed copies match, hidden
// directories are skipped, and upper-case extensions do not match.
var fixtureFiles = []struct {
	path string
	w, h int
}{
	{"gradient.ppm", 256, 128},
	{"gradient.ppm.bak", 64, 64},
	{"nested/deep/tile.ppm", 32, 32},
	{"nested/photo.ppm", 640, 480},
	{"nested/UPPER.PPM", 16, 16},
	{".hidden/skipped.ppm", 8, 8},
}

// Fixtures writes a sample PPM tree under sample/ for trying the CLI by hand
// (cd sample && ../bin/ppmconv).
func Fixtures() error {
	for _, f := range fixtureFiles {
		path := filepath.Join(fixtureDir, filepath.FromSlash(f.path))
		if err := writeFixture(path, f.w, f.h); err != nil {
			return err
		}
		fmt.Println("  ", path)
	}
	fmt.Printf("Wrote %d fixtures to %s/\n", len(fixtureFiles), fixtureDir)
	return nil
}

func writeFixture(path string, w, h int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 255 / max(w-1, 1)),
				G: uint8(y * 255 / max(h-1, 1)),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := pnm.Encode(out, img, pnm.PPM); err != nil {
		out.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return out.Close()
}
