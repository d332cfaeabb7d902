// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package codec

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

// flat is an image.Image with no backing buffer, forcing Clone's fallback.
type flat struct {
	c color.Color
	r image.Rectangle
}

func (f flat) ColorModel() color.Model { return color.RGBAModel }
func (f flat) Bounds() image.Rectangle { return f.r }
func (f flat) At(int, int) color.Color { return f.c }

func TestCloneIsIndependent(t *testing.T) {
	tests := []struct {
		name string
		src  image.Image
		poke func(image.Image)
	}{
		{
			name: "rgba",
			src:  gradient(3, 3),
			poke: func(img image.Image) { img.(*image.RGBA).Pix[0] = 7 },
		},
		{
			name: "gray",
			src:  image.NewGray(image.Rect(0, 0, 2, 2)),
			poke: func(img image.Image) { img.(*image.Gray).Pix[0] = 7 },
		},
		{
			name: "gray16",
			src:  image.NewGray16(image.Rect(0, 0, 2, 2)),
			poke: func(img image.Image) { img.(*image.Gray16).Pix[0] = 7 },
		},
		{
			name: "rgba64",
			src:  image.NewRGBA64(image.Rect(0, 0, 2, 2)),
			poke: func(img image.Image) { img.(*image.RGBA64).Pix[0] = 7 },
		},
		{
			name: "paletted",
			src:  image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black, color.White}),
			poke: func(img image.Image) { img.(*image.Paletted).Pix[0] = 1 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := color.NRGBA64Model.Convert(tt.src.At(0, 0))
			cp := Clone(tt.src)
			assert.IsType(t, tt.src, cp, "clone keeps the concrete type")

			tt.poke(tt.src)
			assert.Equal(t, before, color.NRGBA64Model.Convert(cp.At(0, 0)),
				"mutating the source must not affect the clone")
		})
	}
}

func TestCloneFallback(t *testing.T) {
	src := flat{c: color.RGBA{R: 10, G: 20, B: 30, A: 255}, r: image.Rect(0, 0, 2, 2)}
	cp := Clone(src)

	assert.IsType(t, &image.NRGBA64{}, cp)
	assert.Equal(t, src.Bounds(), cp.Bounds())
	assert.Equal(t, color.NRGBA64Model.Convert(src.c), cp.At(1, 1))
}

func TestCloneKeepsOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 8, 9))
	assert.Equal(t, src.Bounds(), Clone(src).Bounds())
}

func TestFit(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		maxW, maxH   int
		wantW, wantH int
	}{
		{name: "disabled", w: 40, h: 20, wantW: 40, wantH: 20},
		{name: "already fits", w: 40, h: 20, maxW: 100, maxH: 100, wantW: 40, wantH: 20},
		{name: "width bound", w: 40, h: 20, maxW: 20, wantW: 20, wantH: 10},
		{name: "height bound", w: 40, h: 20, maxH: 5, wantW: 10, wantH: 5},
		{name: "box", w: 40, h: 40, maxW: 10, maxH: 20, wantW: 10, wantH: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fit(gradient(tt.w, tt.h), tt.maxW, tt.maxH).Bounds()
			assert.Equal(t, tt.wantW, got.Dx())
			assert.Equal(t, tt.wantH, got.Dy())
		})
	}
}
