package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkdirAll(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o755))
}

func touch(t *testing.T, path string) {
	t.Helper()
	mkdirAll(t, filepath.Dir(path))
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644))
}

func TestDiscover_ModeAny(t *testing.T) {
	top := t.TempDir()
	touch(t, filepath.Join(top, "001_alpha", "a.csv"))
	touch(t, filepath.Join(top, "001_alpha", "nested", "deep", "b.CSV"))
	touch(t, filepath.Join(top, "001_alpha", "notes.txt"))
	touch(t, filepath.Join(top, "beta", "c.csv"))
	mkdirAll(t, filepath.Join(top, "empty"))
	touch(t, filepath.Join(top, "loose.csv")) // top-level file, not a subfolder

	disc, err := Discover(context.Background(), Options{TopDir: top})
	require.NoError(t, err)

	require.Len(t, disc.Folders, 3)
	assert.Equal(t, "alpha", disc.Folders[0].DisplayName)
	assert.Len(t, disc.Folders[0].Files, 2, "recursive, case-insensitive .csv match")
	assert.Equal(t, "beta", disc.Folders[1].DisplayName)
	assert.Len(t, disc.Folders[1].Files, 1)
	assert.Equal(t, "empty", disc.Folders[2].DisplayName)
	assert.Empty(t, disc.Folders[2].Files, "zero-file folder stays in the result set")

	assert.Equal(t, 3, disc.TotalFiles())
	assert.Empty(t, disc.Warnings)
}

func TestDiscover_ModeSubdir(t *testing.T) {
	top := t.TempDir()
	touch(t, filepath.Join(top, "one", "bak", "kept.csv"))
	touch(t, filepath.Join(top, "one", "bak", "deeper", "skipped.csv")) // not direct child
	touch(t, filepath.Join(top, "two", "archive", "elsewhere.csv"))

	disc, err := Discover(context.Background(), Options{TopDir: top, Mode: ModeSubdir, SubdirName: "bak"})
	require.NoError(t, err)

	require.Len(t, disc.Folders, 2)
	assert.Len(t, disc.Folders[0].Files, 1)
	assert.Empty(t, disc.Folders[1].Files, "missing subdir contributes zero files, not an error")
	assert.Equal(t, 1, disc.TotalFiles())
}

func TestDiscover_SubdirNameMismatchYieldsZeroFilesEverywhere(t *testing.T) {
	top := t.TempDir()
	touch(t, filepath.Join(top, "f1", "bak", "a.csv"))
	touch(t, filepath.Join(top, "f2", "bak", "b.csv"))

	disc, err := Discover(context.Background(), Options{TopDir: top, Mode: ModeSubdir, SubdirName: "archive"})
	require.NoError(t, err)

	assert.Len(t, disc.Folders, 2, "folder list still populated")
	assert.Equal(t, 0, disc.TotalFiles())
	for _, f := range disc.Folders {
		assert.Empty(t, f.Files)
	}
}

func TestDiscover_PatternUnderscore(t *testing.T) {
	top := t.TempDir()
	touch(t, filepath.Join(top, "01_kept", "a.csv"))
	touch(t, filepath.Join(top, "dropped", "b.csv"))

	disc, err := Discover(context.Background(), Options{TopDir: top, Pattern: PatternUnderscore})
	require.NoError(t, err)

	require.Len(t, disc.Folders, 1)
	assert.Equal(t, "kept", disc.Folders[0].DisplayName)
}

func TestDiscover_UnlistableFolderBecomesWarning(t *testing.T) {
	top := t.TempDir()
	touch(t, filepath.Join(top, "good", "bak", "a.csv"))
	// "bad/bak" is a regular file, so listing it fails without killing the scan.
	mkdirAll(t, filepath.Join(top, "bad"))
	require.NoError(t, os.WriteFile(filepath.Join(top, "bad", "bak"), []byte("not a dir"), 0o644))

	disc, err := Discover(context.Background(), Options{TopDir: top, Mode: ModeSubdir})
	require.NoError(t, err)

	require.Len(t, disc.Warnings, 1)
	assert.Contains(t, disc.Warnings[0].Path, "bad")
	require.Len(t, disc.Folders, 1)
	assert.Equal(t, "good", disc.Folders[0].DisplayName)
}

func TestDiscover_TopDirUnreadableIsFatal(t *testing.T) {
	_, err := Discover(context.Background(), Options{TopDir: filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDiscovery)
}

func TestDiscover_Deterministic(t *testing.T) {
	top := t.TempDir()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		touch(t, filepath.Join(top, name, "one.csv"))
		touch(t, filepath.Join(top, name, "two.csv"))
	}

	first, err := Discover(context.Background(), Options{TopDir: top})
	require.NoError(t, err)
	second, err := Discover(context.Background(), Options{TopDir: top})
	require.NoError(t, err)

	require.Equal(t, len(first.Items), len(second.Items))
	for i := range first.Items {
		assert.Equal(t, first.Items[i].Path, second.Items[i].Path)
	}
	assert.Equal(t, "alpha", first.Folders[0].DisplayName)
	assert.Equal(t, "zeta", first.Folders[2].DisplayName)
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name   string
		delims string
		want   string
	}{
		{"123_store", "_- ", "store"},
		{"plain", "_- ", "plain"},
		{"a-b_c", "_- ", "b_c"}, // lowest-index delimiter wins
		{"north region", "_- ", "region"},
		{"x_y", "", "x_y"},
		{"_leading", "_- ", "leading"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, displayName(tc.name, tc.delims), "name %q", tc.name)
	}
}
