// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ppmconv/pkg/types"
)

// Export is the document written by ExportYAML and ExportJSON.
type Export struct {
	Runs        []Run              `json:"runs" yaml:"runs"`
	Conversions []types.Conversion `json:"conversions" yaml:"conversions"`
}

const exportLimit = 100000

// ExportYAML writes runs and the conversions matching opts to w as YAML.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions, w io.Writer) error {
	doc, err := s.export(ctx, opts)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes runs and the conversions matching opts to w as JSON.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions, w io.Writer) error {
	doc, err := s.export(ctx, opts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

func (s *Store) export(ctx context.Context, opts QueryOptions) (Export, error) {
	opts.MaxResults = exportLimit
	convs, err := s.List(ctx, opts)
	if err != nil {
		return Export{}, fmt.Errorf("querying for export: %w", err)
	}
	runs, err := s.Runs(ctx, exportLimit)
	if err != nil {
		return Export{}, fmt.Errorf("querying for export: %w", err)
	}
	if opts.RunID != "" {
		filtered := runs[:0]
		for _, r := range runs {
			if r.ID == opts.RunID {
				filtered = append(filtered, r)
			}
		}
		runs = filtered
	}
	return Export{Runs: runs, Conversions: convs}, nil
}
