// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package codec

import (
	"bytes"
	"fmt"
	"image"
	"os"

	"github.com/pdiddy/ppmconv/internal/container"
)

// magickFormats maps target format names to ImageMagick coder prefixes.
var magickFormats = map[string]string{
	"png":  "png",
	"jpeg": "jpeg",
	"gif":  "gif",
	"bmp":  "bmp",
	"tiff": "tiff",
	"ppm":  "ppm",
}

// Magick converts by piping source bytes through an ImageMagick container.
// Pixels never enter the process; Decode keeps the encoded bytes and
// Encode streams them to the container.
type Magick struct {
	runtime container.Runtime
	image   string
	opts    Options
}

// NewMagick verifies that image is present in rt and returns the backend.
func NewMagick(rt container.Runtime, image string, opts Options) (*Magick, error) {
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("imagemagick image not available in %s: %w", rt.Name(), err)
	}
	return &Magick{runtime: rt, image: image, opts: opts}, nil
}

// Name returns "imagemagick".
func (m *Magick) Name() string { return "imagemagick" }

// Decode reads the whole file into memory. When a Go decoder recognizes
// the header, dimensions are filled in and the pixel limit applies;
// otherwise the bytes pass through and ImageMagick has the final say.
func (m *Magick) Decode(path string) (*Picture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("decoding %s: empty file", path)
	}

	pic := &Picture{Raw: raw}
	if cfg, format, err := image.DecodeConfig(bytes.NewReader(raw)); err == nil {
		if err := m.opts.Limits.Check(cfg.Width, cfg.Height); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		pic.Width, pic.Height, pic.Format = cfg.Width, cfg.Height, format
	}
	return pic, nil
}

// Encode runs "magick - [-resize WxH>] <coder>:-" with the source bytes on
// stdin and the output file on stdout.
func (m *Magick) Encode(pic *Picture, path, format string) error {
	if pic == nil || len(pic.Raw) == 0 {
		return fmt.Errorf("encoding %s: no source data", path)
	}
	coder, ok := magickFormats[format]
	if !ok {
		return fmt.Errorf("encoding %s: %w: %s", path, ErrUnsupportedFormat, format)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := m.runtime.Run(m.image, m.args(coder), bytes.NewReader(pic.Raw), out); err != nil {
		out.Close()
		return fmt.Errorf("converting %s with imagemagick: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

func (m *Magick) args(coder string) []string {
	args := []string{"-"}
	if m.opts.MaxWidth > 0 || m.opts.MaxHeight > 0 {
		geom := ""
		if m.opts.MaxWidth > 0 {
			geom += fmt.Sprint(m.opts.MaxWidth)
		}
		geom += "x"
		if m.opts.MaxHeight > 0 {
			geom += fmt.Sprint(m.opts.MaxHeight)
		}
		args = append(args, "-resize", geom+">")
	}
	if coder == "jpeg" && m.opts.JPEGQuality > 0 {
		args = append(args, "-quality", fmt.Sprint(m.opts.JPEGQuality))
	}
	return append(args, coder+":-")
}
