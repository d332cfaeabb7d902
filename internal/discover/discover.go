// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover finds source images under a directory tree.
//
// Matching follows recursive shell-glob rules for a pattern such as
// "**/*.ppm*": every directory below the root is searched, the pattern is
// applied to the base name only, and entries whose name starts with a dot
// are neither matched nor descended into.
package discover

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// WalkFunc is called once per matching file. Returning an error stops the
// walk and Walk returns that error unchanged.
type WalkFunc func(path string) error

// Walk calls fn for each regular file under root whose base name matches
// pattern. Paths are passed as produced by filepath.WalkDir, so a root of
// "." yields "a/b/img.ppm". Within a directory, entries are visited in
// lexical order.
func Walk(ctx context.Context, root, pattern string, fn WalkFunc) error {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking %s: %w", path, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if path != root && hidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		ok, _ := filepath.Match(pattern, d.Name())
		if !ok || !isFile(path, d) {
			return nil
		}
		return fn(path)
	})
}

// isFile reports whether d is a regular file or a symlink whose target is
// one. Linked directories are never descended into.
func isFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Find collects all matches of Walk into a slice.
func Find(ctx context.Context, root, pattern string) ([]string, error) {
	var paths []string
	err := Walk(ctx, root, pattern, func(path string) error {
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
