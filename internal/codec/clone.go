// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package codec

import (
	"image"
	"slices"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// Clone returns a copy of src that shares no pixel memory with it. Common
// concrete types keep their layout; anything else is drawn into NRGBA64 so
// no precision is lost.
func Clone(src image.Image) image.Image {
	switch s := src.(type) {
	case *image.RGBA:
		return &image.RGBA{Pix: slices.Clone(s.Pix), Stride: s.Stride, Rect: s.Rect}
	case *image.NRGBA:
		return &image.NRGBA{Pix: slices.Clone(s.Pix), Stride: s.Stride, Rect: s.Rect}
	case *image.RGBA64:
		return &image.RGBA64{Pix: slices.Clone(s.Pix), Stride: s.Stride, Rect: s.Rect}
	case *image.NRGBA64:
		return &image.NRGBA64{Pix: slices.Clone(s.Pix), Stride: s.Stride, Rect: s.Rect}
	case *image.Gray:
		return &image.Gray{Pix: slices.Clone(s.Pix), Stride: s.Stride, Rect: s.Rect}
	case *image.Gray16:
		return &image.Gray16{Pix: slices.Clone(s.Pix), Stride: s.Stride, Rect: s.Rect}
	case *image.Alpha:
		return &image.Alpha{Pix: slices.Clone(s.Pix), Stride: s.Stride, Rect: s.Rect}
	case *image.CMYK:
		return &image.CMYK{Pix: slices.Clone(s.Pix), Stride: s.Stride, Rect: s.Rect}
	case *image.Paletted:
		return &image.Paletted{
			Pix:     slices.Clone(s.Pix),
			Stride:  s.Stride,
			Rect:    s.Rect,
			Palette: slices.Clone(s.Palette),
		}
	case *image.YCbCr:
		return &image.YCbCr{
			Y:              slices.Clone(s.Y),
			Cb:             slices.Clone(s.Cb),
			Cr:             slices.Clone(s.Cr),
			YStride:        s.YStride,
			CStride:        s.CStride,
			SubsampleRatio: s.SubsampleRatio,
			Rect:           s.Rect,
		}
	}

	b := src.Bounds()
	dst := image.NewNRGBA64(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	return dst
}

// Fit shrinks img to fit within maxW x maxH, keeping aspect ratio. A zero
// bound leaves that axis free. Images already inside the box are returned
// as is; Fit never enlarges.
func Fit(img image.Image, maxW, maxH int) image.Image {
	if maxW <= 0 && maxH <= 0 {
		return img
	}
	b := img.Bounds()
	if maxW <= 0 {
		maxW = b.Dx()
	}
	if maxH <= 0 {
		maxH = b.Dy()
	}
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return img
	}
	return resize.Thumbnail(uint(maxW), uint(maxH), img, resize.Lanczos3)
}
