// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/ppmconv/pkg/types"
)

// QueryOptions filters List.
type QueryOptions struct {
	// Source matches conversions whose source path contains this text.
	Source string

	// RunID restricts results to one run.
	RunID string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// List returns conversions newest first.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]types.Conversion, error) {
	limit := opts.MaxResults
	if limit <= 0 {
		limit = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT run_id, source, output, width, height, source_format, target_format,
			replaced, output_bytes, duration_ns, converted_at
		FROM conversions WHERE 1=1`)
	if opts.Source != "" {
		qb.WriteString(` AND instr(source, ?) > 0`)
		args = append(args, opts.Source)
	}
	if opts.RunID != "" {
		qb.WriteString(` AND run_id = ?`)
		args = append(args, opts.RunID)
	}
	qb.WriteString(` ORDER BY id DESC LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying conversions: %w", err)
	}
	defer rows.Close()

	var out []types.Conversion
	for rows.Next() {
		var (
			c           types.Conversion
			runID       sql.NullString
			srcFormat   sql.NullString
			durationNS  int64
			convertedAt string
		)
		if err := rows.Scan(&runID, &c.Source, &c.Output, &c.Width, &c.Height, &srcFormat,
			&c.TargetFormat, &c.Replaced, &c.OutputBytes, &durationNS, &convertedAt); err != nil {
			return nil, fmt.Errorf("scanning conversion: %w", err)
		}
		c.RunID = runID.String
		c.SourceFormat = srcFormat.String
		c.Duration = time.Duration(durationNS)
		c.ConvertedAt = parseTime(convertedAt)
		out = append(out, c)
	}
	return out, rows.Err()
}

// Runs returns up to limit runs, newest first. Zero uses the store default.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, root, pattern, target_format, backend, converted, error
		 FROM runs ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r                 Run
			started           string
			finished, errText sql.NullString
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.Root, &r.Pattern,
			&r.TargetFormat, &r.Backend, &r.Converted, &errText); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt = parseTime(started)
		if finished.Valid {
			r.FinishedAt = parseTime(finished.String)
		}
		r.Error = errText.String
		out = append(out, r)
	}
	return out, rows.Err()
}
