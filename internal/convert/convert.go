// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert runs the batch conversion: discover source images, decode
// each one, replace any previous output, encode the new output, and report
// progress as it goes. The first error stops the batch.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"
	"unicode/utf8"

	"github.com/pdiddy/ppmconv/internal/codec"
	"github.com/pdiddy/ppmconv/internal/discover"
	"github.com/pdiddy/ppmconv/pkg/types"
)

// Recorder receives a record for every file converted successfully.
type Recorder interface {
	Record(ctx context.Context, c types.Conversion) error
}

// Options controls a conversion run.
type Options struct {
	Root         string
	Pattern      string
	TrimLen      int
	Marker       string
	TargetFormat string
	Workers      int

	// RunID is copied into each record.
	RunID string

	// Recorder is optional. Recording failures are logged, not fatal.
	Recorder Recorder

	// Logger receives diagnostics; progress lines never go here.
	Logger *slog.Logger
}

// OptionsFromConfig copies the relevant conversion settings.
func OptionsFromConfig(cfg types.ConversionConfig) Options {
	return Options{
		Root:         cfg.Root,
		Pattern:      cfg.Pattern,
		TrimLen:      cfg.TrimLen,
		Marker:       cfg.Marker,
		TargetFormat: cfg.TargetFormat,
		Workers:      cfg.Workers,
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// BatchResult holds the outcome of a run, including the partial outcome
// of a run that stopped on an error.
type BatchResult struct {
	Converted int
	Replaced  int
	Records   []types.Conversion
}

func (r *BatchResult) add(c types.Conversion) {
	r.Converted++
	if c.Replaced {
		r.Replaced++
	}
	r.Records = append(r.Records, c)
}

// OutputPath derives the output path by cutting the last trimLen characters
// (runes) off src and appending marker, a dot, and ext. The cut is a fixed
// offset, not extension-aware: with trimLen 4 both "scan.ppmx" and
// "scan.ppmé" become "scan.-generated.png". A byte that is not valid UTF-8
// counts as one character and is kept as is. A src shorter than trimLen
// leaves nothing before the marker.
func OutputPath(src string, trimLen int, marker, ext string) string {
	keep := len(src)
	for i := 0; i < trimLen && keep > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(src[:keep])
		keep -= size
	}
	return src[:keep] + marker + "." + ext
}

// ConvertFile converts one source file. It writes "<src> -->" to w before
// any work and "\t<out>" after the output is written. An existing file at
// the output path is deleted first.
func ConvertFile(ctx context.Context, c codec.Codec, src string, opts Options, w io.Writer) (types.Conversion, error) {
	if err := ctx.Err(); err != nil {
		return types.Conversion{}, err
	}
	start := time.Now()

	fmt.Fprintf(w, "%s -->\n", src)

	pic, err := c.Decode(src)
	if err != nil {
		return types.Conversion{}, &Error{Op: OpDecode, Path: src, Err: err}
	}
	defer pic.Release()

	out := OutputPath(src, opts.TrimLen, opts.Marker, opts.TargetFormat)

	replaced, err := removeExisting(out)
	if err != nil {
		return types.Conversion{}, &Error{Op: OpRemove, Path: out, Err: err}
	}

	if err := c.Encode(pic, out, opts.TargetFormat); err != nil {
		return types.Conversion{}, &Error{Op: OpEncode, Path: out, Err: err}
	}

	fmt.Fprintf(w, "\t%s\n", out)

	rec := types.Conversion{
		RunID:        opts.RunID,
		Source:       src,
		Output:       out,
		Width:        pic.Width,
		Height:       pic.Height,
		SourceFormat: pic.Format,
		TargetFormat: opts.TargetFormat,
		Replaced:     replaced,
		Duration:     time.Since(start),
		ConvertedAt:  time.Now().UTC(),
	}
	if info, err := os.Stat(out); err == nil {
		rec.OutputBytes = info.Size()
	}
	return rec, nil
}

// removeExisting deletes a file at path if there is one and reports
// whether it did.
func removeExisting(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, fmt.Errorf("%s is a directory", path)
	}
	if err := os.Remove(path); err != nil {
		return false, err
	}
	return true, nil
}

// Run discovers every source under opts.Root and converts each in turn.
// With Workers > 1 files are converted concurrently; see runParallel.
// The first error ends the run and is returned with the partial result.
func Run(ctx context.Context, c codec.Codec, opts Options, w io.Writer) (BatchResult, error) {
	log := opts.logger()
	log.Debug("conversion started",
		"root", opts.Root, "pattern", opts.Pattern, "codec", c.Name(),
		"format", opts.TargetFormat, "workers", opts.Workers)

	var (
		result BatchResult
		err    error
	)
	if opts.Workers > 1 {
		result, err = runParallel(ctx, c, opts, w)
	} else {
		result, err = runSequential(ctx, c, opts, w)
	}

	if err != nil {
		log.Debug("conversion stopped", "converted", result.Converted, "error", err)
		return result, err
	}
	log.Info("conversion finished", "converted", result.Converted, "replaced", result.Replaced)
	return result, nil
}

func runSequential(ctx context.Context, c codec.Codec, opts Options, w io.Writer) (BatchResult, error) {
	var result BatchResult
	err := discover.Walk(ctx, opts.Root, opts.Pattern, func(src string) error {
		rec, err := ConvertFile(ctx, c, src, opts, w)
		if err != nil {
			return err
		}
		record(ctx, opts, rec)
		result.add(rec)
		return nil
	})
	return result, classify(err, opts.Root)
}

// record hands rec to the Recorder, logging failures.
func record(ctx context.Context, opts Options, rec types.Conversion) {
	if opts.Recorder == nil {
		return
	}
	if err := opts.Recorder.Record(ctx, rec); err != nil {
		opts.logger().Warn("could not record conversion", "source", rec.Source, "error", err)
	}
}

// classify wraps errors that did not come from a conversion step as
// discovery errors. Cancellation passes through unchanged.
func classify(err error, root string) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &Error{Op: OpDiscover, Path: root, Err: err}
}
