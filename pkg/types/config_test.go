// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cc := cfg.Conversion
	assert.Equal(t, ".", cc.Root)
	assert.Equal(t, "*.ppm*", cc.Pattern)
	assert.Equal(t, 4, cc.TrimLen)
	assert.Equal(t, "-generated", cc.Marker)
	assert.Equal(t, "png", cc.TargetFormat)
	assert.Equal(t, int64(0), cc.MaxDecodedPixels, "default must not cap decoded pixels")
	assert.Equal(t, 1, cc.Workers)
	assert.False(t, cfg.History.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{
			name:   "empty pattern",
			mutate: func(c *Config) { c.Conversion.Pattern = "" },
			errMsg: "pattern must not be empty",
		},
		{
			name:   "malformed pattern",
			mutate: func(c *Config) { c.Conversion.Pattern = "[ppm" },
			errMsg: "pattern",
		},
		{
			name:   "negative trim",
			mutate: func(c *Config) { c.Conversion.TrimLen = -1 },
			errMsg: "trim_len",
		},
		{
			name:   "unknown target format",
			mutate: func(c *Config) { c.Conversion.TargetFormat = "heic" },
			errMsg: "unsupported target_format",
		},
		{
			name:   "zero workers",
			mutate: func(c *Config) { c.Conversion.Workers = 0 },
			errMsg: "workers",
		},
		{
			name:   "negative pixel limit",
			mutate: func(c *Config) { c.Conversion.MaxDecodedPixels = -5 },
			errMsg: "limits",
		},
		{
			name:   "unknown backend",
			mutate: func(c *Config) { c.Conversion.Backend = "gimp" },
			errMsg: "unknown backend",
		},
		{
			name:   "jpeg quality out of range",
			mutate: func(c *Config) { c.Conversion.JPEGQuality = 101 },
			errMsg: "jpeg_quality",
		},
		{
			name:   "unknown png compression",
			mutate: func(c *Config) { c.Conversion.PNGCompression = "max" },
			errMsg: "png_compression",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
