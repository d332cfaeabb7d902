// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Conversion records one source file turned into one output file.
type Conversion struct {
	// RunID groups conversions made by the same invocation.
	RunID string `json:"run_id,omitempty" yaml:"run_id,omitempty"`

	// Source is the path as discovered (relative to the scan root's parent
	// when the root is ".").
	Source string `json:"source" yaml:"source"`

	// Output is the derived output path.
	Output string `json:"output" yaml:"output"`

	// Width and Height are the decoded source dimensions.
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	// SourceFormat is the format name reported by the decoder (e.g. "ppm").
	SourceFormat string `json:"source_format" yaml:"source_format"`

	// TargetFormat is the encoder used for Output.
	TargetFormat string `json:"target_format" yaml:"target_format"`

	// Replaced reports whether an existing file at Output was deleted first.
	Replaced bool `json:"replaced" yaml:"replaced"`

	// OutputBytes is the size of the written file.
	OutputBytes int64 `json:"output_bytes" yaml:"output_bytes"`

	// Duration is the wall time spent on this file.
	Duration time.Duration `json:"duration" yaml:"duration"`

	// ConvertedAt is when the output was written.
	ConvertedAt time.Time `json:"converted_at" yaml:"converted_at"`
}
