// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/pdiddy/ppmconv/internal/codec"
	"github.com/pdiddy/ppmconv/internal/discover"
)

// runParallel converts with up to opts.Workers goroutines. Discovery
// completes before conversion starts. Sources that map to the same output
// path share one task and run in discovery order, so no two goroutines
// ever write the same file. Each file's progress lines are buffered and
// written in one piece when the file is done, so lines of different files
// never interleave. The first error cancels the remaining tasks.
func runParallel(ctx context.Context, c codec.Codec, opts Options, w io.Writer) (BatchResult, error) {
	sources, err := discover.Find(ctx, opts.Root, opts.Pattern)
	if err != nil {
		return BatchResult{}, classify(err, opts.Root)
	}

	lw := &lockedWriter{w: w}
	var (
		mu     sync.Mutex
		result BatchResult
	)

	p := pool.New().
		WithMaxGoroutines(opts.Workers).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()

	for _, group := range groupByOutput(sources, opts) {
		p.Go(func(ctx context.Context) error {
			for _, src := range group {
				var progress bytes.Buffer
				rec, err := ConvertFile(ctx, c, src, opts, &progress)
				if progress.Len() > 0 {
					lw.Write(progress.Bytes())
				}
				if err != nil {
					return err
				}
				record(ctx, opts, rec)

				mu.Lock()
				result.add(rec)
				mu.Unlock()
			}
			return nil
		})
	}

	err = p.Wait()
	return result, err
}

// groupByOutput partitions sources by derived output path, keeping the
// first-seen order of groups and of sources within a group.
func groupByOutput(sources []string, opts Options) [][]string {
	index := make(map[string]int, len(sources))
	var groups [][]string
	for _, src := range sources {
		out := OutputPath(src, opts.TrimLen, opts.Marker, opts.TargetFormat)
		if i, ok := index[out]; ok {
			groups[i] = append(groups[i], src)
			continue
		}
		index[out] = len(groups)
		groups = append(groups, []string{src})
	}
	return groups
}

// lockedWriter serializes writes from the worker goroutines.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
