// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package codec decodes source images and encodes outputs. The conversion
// loop treats a Codec as opaque: it hands over a path, gets back an
// independent in-memory Picture, and later asks for that Picture to be
// written somewhere else in a named format.
package codec

import (
	"errors"
	"fmt"
	"image"

	"github.com/pdiddy/ppmconv/pkg/types"
)

var (
	// ErrTooLarge is returned when a source exceeds Limits.MaxPixels.
	ErrTooLarge = errors.New("image exceeds decoded pixel limit")

	// ErrUnsupportedFormat is returned when no encoder exists for a format.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Codec decodes and encodes images for one backend.
type Codec interface {
	// Name identifies the backend ("native", "imagemagick").
	Name() string

	// Decode reads the file at path and returns a Picture that no longer
	// depends on the file: the handle is closed before Decode returns.
	Decode(path string) (*Picture, error)

	// Encode writes pic to path in the given format, creating or
	// truncating the file.
	Encode(pic *Picture, path, format string) error
}

// Picture is a decoded image owned by a single conversion.
type Picture struct {
	// Image holds pixels for backends that decode in-process.
	Image image.Image

	// Raw holds the encoded source bytes for pass-through backends.
	Raw []byte

	Width  int
	Height int

	// Format is the decoder's name for the source format, or "" if unknown.
	Format string
}

// Release drops the pixel and byte buffers.
func (p *Picture) Release() {
	p.Image = nil
	p.Raw = nil
}

// Limits bounds what a decoder will accept.
type Limits struct {
	// MaxPixels caps width*height. Zero means unlimited.
	MaxPixels int64
}

// Check returns ErrTooLarge if a w x h image is over the limit.
func (l Limits) Check(w, h int) error {
	if l.MaxPixels <= 0 {
		return nil
	}
	if int64(w)*int64(h) > l.MaxPixels {
		return fmt.Errorf("%dx%d > %d pixels: %w", w, h, l.MaxPixels, ErrTooLarge)
	}
	return nil
}

// Options configures a backend.
type Options struct {
	Limits Limits

	// MaxWidth and MaxHeight shrink larger images, keeping aspect ratio.
	// Zero leaves that axis unbounded.
	MaxWidth  int
	MaxHeight int

	// PNGCompression is one of default, none, speed, best.
	PNGCompression string

	// JPEGQuality is used by the jpeg encoder.
	JPEGQuality int
}

// OptionsFromConfig maps conversion settings onto backend options.
func OptionsFromConfig(cfg types.ConversionConfig) Options {
	return Options{
		Limits:         Limits{MaxPixels: cfg.MaxDecodedPixels},
		MaxWidth:       cfg.MaxWidth,
		MaxHeight:      cfg.MaxHeight,
		PNGCompression: cfg.PNGCompression,
		JPEGQuality:    cfg.JPEGQuality,
	}
}
