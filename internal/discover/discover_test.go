// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeTree creates empty files at the given slash-separated paths under dir.
func makeTree(t *testing.T, dir string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(dir, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o644))
	}
}

func rel(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		r, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(r)
	}
	return out
}

func TestFind(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  []string
	}{
		{
			name:  "recursive discovery",
			files: []string{"a/b/c/img.ppm"},
			want:  []string{"a/b/c/img.ppm"},
		},
		{
			name:  "trailing wildcard is permissive",
			files: []string{"image.ppm", "image.ppmfoo", "image.ppm.bak", "scan.ppmx"},
			want:  []string{"image.ppm", "image.ppm.bak", "image.ppmfoo", "scan.ppmx"},
		},
		{
			name:  "non-matching names are ignored",
			files: []string{"photo.png", "notes.txt", "ppm", "x.pgm"},
			want:  nil,
		},
		{
			name:  "match is case-sensitive",
			files: []string{"LOUD.PPM", "quiet.ppm"},
			want:  []string{"quiet.ppm"},
		},
		{
			name:  "hidden files and directories are skipped",
			files: []string{".hidden.ppm", ".cache/inner.ppm", "visible/ok.ppm"},
			want:  []string{"visible/ok.ppm"},
		},
		{
			name:  "lexical order within a directory",
			files: []string{"b.ppm", "a.ppm", "sub/c.ppm"},
			want:  []string{"a.ppm", "b.ppm", "sub/c.ppm"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			makeTree(t, root, tt.files...)

			got, err := Find(context.Background(), root, "*.ppm*")
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, rel(t, root, got))
		})
	}
}

func TestFindFollowsFileSymlinks(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, "real.data", "dir/inner.ppm")
	require.NoError(t, os.Symlink("real.data", filepath.Join(root, "link.ppm")))
	require.NoError(t, os.Symlink("dir", filepath.Join(root, "linked.ppm.d")))
	require.NoError(t, os.Symlink("dir", filepath.Join(root, "dirlink.ppm")))
	require.NoError(t, os.Symlink("missing", filepath.Join(root, "dangling.ppm")))

	got, err := Find(context.Background(), root, "*.ppm*")
	require.NoError(t, err)
	assert.Equal(t, []string{"dir/inner.ppm", "link.ppm"}, rel(t, root, got),
		"file links are yielded; directory and dangling links are not, and linked directories are not descended")
}

func TestFindSkipsMatchingDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "frames.ppm.d"), 0o755))
	makeTree(t, root, "frames.ppm.d/f1.ppm")

	got, err := Find(context.Background(), root, "*.ppm*")
	require.NoError(t, err)
	assert.Equal(t, []string{"frames.ppm.d/f1.ppm"}, rel(t, root, got))
}

func TestWalkRelativeRoot(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, "x/y.ppm")
	t.Chdir(root)

	got, err := Find(context.Background(), ".", "*.ppm*")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("x", "y.ppm")}, got)
}

func TestWalkStopsOnCallbackError(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, "a.ppm", "b.ppm", "c.ppm")

	stop := errors.New("stop")
	var seen []string
	err := Walk(context.Background(), root, "*.ppm*", func(path string) error {
		seen = append(seen, filepath.Base(path))
		if len(seen) == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, []string{"a.ppm", "b.ppm"}, seen)
}

func TestWalkCanceled(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, "a.ppm")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Find(ctx, root, "*.ppm*")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWalkInvalidPattern(t *testing.T) {
	_, err := Find(context.Background(), t.TempDir(), "[ppm")
	require.Error(t, err)
	assert.ErrorIs(t, err, filepath.ErrBadPattern)
}

func TestWalkMissingRoot(t *testing.T) {
	_, err := Find(context.Background(), filepath.Join(t.TempDir(), "nope"), "*.ppm*")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
