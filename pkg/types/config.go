// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Backend identifies the codec implementation used for decode and encode.
type Backend string

const (
	BackendNative      Backend = "native"
	BackendImageMagick Backend = "imagemagick"
)

// Target formats the native encoder registry knows about.
var targetFormats = map[string]bool{
	"png":  true,
	"jpeg": true,
	"gif":  true,
	"bmp":  true,
	"tiff": true,
	"ppm":  true,
}

// ConversionConfig holds settings for a batch conversion run.
type ConversionConfig struct {
	// Root is the directory the recursive scan starts from (default ".").
	Root string `json:"root" yaml:"root" mapstructure:"root"`

	// Pattern is matched against each file's base name (default "*.ppm*").
	// The trailing wildcard is deliberate: image.ppm.bak is eligible.
	Pattern string `json:"pattern" yaml:"pattern" mapstructure:"pattern"`

	// TrimLen is the number of characters cut from the end of the source
	// path before the marker is appended (default 4).
	TrimLen int `json:"trim_len" yaml:"trim_len" mapstructure:"trim_len"`

	// Marker is appended after trimming (default "-generated").
	Marker string `json:"marker" yaml:"marker" mapstructure:"marker"`

	// TargetFormat selects the output encoder and extension (default "png").
	TargetFormat string `json:"target_format" yaml:"target_format" mapstructure:"target_format"`

	// MaxDecodedPixels caps width*height of a decoded source. Zero means
	// unlimited, which is the default.
	MaxDecodedPixels int64 `json:"max_decoded_pixels" yaml:"max_decoded_pixels" mapstructure:"max_decoded_pixels"`

	// Workers is the number of files converted at once (default 1).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// Backend selects the codec: native or imagemagick.
	Backend Backend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// MagickImage is the container image used by the imagemagick backend.
	MagickImage string `json:"magick_image" yaml:"magick_image" mapstructure:"magick_image"`

	// MaxWidth and MaxHeight downscale larger images before encoding.
	// Zero disables downscaling on that axis.
	MaxWidth  int `json:"max_width" yaml:"max_width" mapstructure:"max_width"`
	MaxHeight int `json:"max_height" yaml:"max_height" mapstructure:"max_height"`

	// PNGCompression is one of default, none, speed, best.
	PNGCompression string `json:"png_compression" yaml:"png_compression" mapstructure:"png_compression"`

	// JPEGQuality applies when TargetFormat is jpeg (1-100, default 90).
	JPEGQuality int `json:"jpeg_quality" yaml:"jpeg_quality" mapstructure:"jpeg_quality"`
}

// HistoryConfig holds settings for the optional conversion ledger.
type HistoryConfig struct {
	// Enabled turns on recording of each conversion to SQLite.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Dir holds history.db (default ".ppmconv").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// MaxResults is the default row limit for listing (default 50).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// Config groups all settings read from flags, environment, and ppmconv.yaml.
type Config struct {
	Conversion ConversionConfig `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
	History    HistoryConfig    `json:"history" yaml:"history" mapstructure:"history"`

	// LogLevel is one of debug, info, warn, error (default warn).
	LogLevel string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
}

// Default returns the configuration that reproduces the classic
// ppm-to-png behavior: scan ".", match "*.ppm*", strip 4 characters,
// append "-generated.png", no pixel limit, one worker.
func Default() Config {
	return Config{
		Conversion: ConversionConfig{
			Root:           ".",
			Pattern:        "*.ppm*",
			TrimLen:        4,
			Marker:         "-generated",
			TargetFormat:   "png",
			Workers:        1,
			Backend:        BackendNative,
			MagickImage:    "dpokidov/imagemagick:latest",
			PNGCompression: "default",
			JPEGQuality:    90,
		},
		History: HistoryConfig{
			Dir:        ".ppmconv",
			MaxResults: 50,
		},
		LogLevel: "warn",
	}
}

// Validate returns an error if the configuration is inconsistent.
func (c Config) Validate() error {
	cc := c.Conversion
	if cc.Pattern == "" {
		return errors.New("config: pattern must not be empty")
	}
	if _, err := filepath.Match(cc.Pattern, ""); err != nil {
		return fmt.Errorf("config: pattern %q: %w", cc.Pattern, err)
	}
	if cc.TrimLen < 0 {
		return errors.New("config: trim_len must not be negative")
	}
	if !targetFormats[cc.TargetFormat] {
		return fmt.Errorf("config: unsupported target_format %q", cc.TargetFormat)
	}
	if cc.Workers < 1 {
		return errors.New("config: workers must be at least 1")
	}
	if cc.MaxDecodedPixels < 0 || cc.MaxWidth < 0 || cc.MaxHeight < 0 {
		return errors.New("config: limits must not be negative")
	}
	switch cc.Backend {
	case BackendNative, BackendImageMagick:
	default:
		return fmt.Errorf("config: unknown backend %q: use native or imagemagick", cc.Backend)
	}
	if cc.JPEGQuality < 1 || cc.JPEGQuality > 100 {
		return errors.New("config: jpeg_quality must be between 1 and 100")
	}
	switch cc.PNGCompression {
	case "default", "none", "speed", "best":
	default:
		return fmt.Errorf("config: unknown png_compression %q", cc.PNGCompression)
	}
	return nil
}
