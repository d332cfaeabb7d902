// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package codec

import (
	"fmt"
	"image"
	"io"
	"os"
)

// Native decodes with the image package (PPM/PGM/PBM via gopnm plus the
// x/image formats) and encodes through a Registry, all in-process.
type Native struct {
	opts     Options
	registry *Registry
}

// NewNative creates the in-process backend.
func NewNative(opts Options) *Native {
	return &Native{opts: opts, registry: NewRegistry(opts)}
}

// Name returns "native".
func (n *Native) Name() string { return "native" }

// Registry exposes the encoder registry so callers can add formats.
func (n *Native) Registry() *Registry { return n.registry }

// Decode checks the header against the pixel limit, decodes the whole file,
// and returns a deep copy. The file is closed before Decode returns.
func (n *Native) Decode(path string) (*Picture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	if err := n.opts.Limits.Check(cfg.Width, cfg.Height); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding %s: %w", path, err)
	}

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	pic := &Picture{
		Image:  Clone(img),
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: format,
	}
	f.Close()
	return pic, nil
}

// Encode writes pic to path, downscaling first when MaxWidth/MaxHeight
// are set.
func (n *Native) Encode(pic *Picture, path, format string) error {
	if pic == nil || pic.Image == nil {
		return fmt.Errorf("encoding %s: no pixel data", path)
	}
	enc, err := n.registry.Lookup(format)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	img := Fit(pic.Image, n.opts.MaxWidth, n.opts.MaxHeight)

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := enc(out, img); err != nil {
		out.Close()
		return fmt.Errorf("encoding %s as %s: %w", path, format, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
