// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package codec

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"sort"

	pnm "github.com/jbuchbinder/gopnm"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	// Decoders registered with the image package for DecodeConfig/Decode.
	_ "golang.org/x/image/webp"
)

// EncodeFunc writes img to w in one format.
type EncodeFunc func(w io.Writer, img image.Image) error

// Registry maps format names to encoders. Decoders are looked up through
// the image package's own registry, which gopnm and x/image populate.
type Registry struct {
	encoders map[string]EncodeFunc
}

// NewRegistry returns a Registry holding the built-in encoders configured
// from opts: png, jpeg, gif, bmp, tiff, and ppm.
func NewRegistry(opts Options) *Registry {
	r := &Registry{encoders: make(map[string]EncodeFunc)}

	pngEnc := &png.Encoder{CompressionLevel: pngLevel(opts.PNGCompression)}
	r.Register("png", pngEnc.Encode)

	quality := opts.JPEGQuality
	if quality <= 0 {
		quality = jpeg.DefaultQuality
	}
	r.Register("jpeg", func(w io.Writer, img image.Image) error {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	})
	r.Register("gif", func(w io.Writer, img image.Image) error {
		return gif.Encode(w, img, nil)
	})
	r.Register("bmp", bmp.Encode)
	r.Register("tiff", func(w io.Writer, img image.Image) error {
		return tiff.Encode(w, img, nil)
	})
	r.Register("ppm", func(w io.Writer, img image.Image) error {
		return pnm.Encode(w, img, pnm.PPM)
	})
	return r
}

// Register adds or replaces the encoder for format.
func (r *Registry) Register(format string, fn EncodeFunc) {
	r.encoders[format] = fn
}

// Lookup returns the encoder for format.
func (r *Registry) Lookup(format string) (EncodeFunc, error) {
	fn, ok := r.encoders[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return fn, nil
}

// Formats lists registered encoder names in sorted order.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.encoders))
	for name := range r.encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func pngLevel(name string) png.CompressionLevel {
	switch name {
	case "none":
		return png.NoCompression
	case "speed":
		return png.BestSpeed
	case "best":
		return png.BestCompression
	default:
		return png.DefaultCompression
	}
}
