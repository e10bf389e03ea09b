package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
}

func TestCollectFilesExpandsDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.csv"))
	writeFile(t, filepath.Join(dir, "a.txt"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	writeFile(t, filepath.Join(dir, "nested", "skipped.txt"))

	loose := filepath.Join(t.TempDir(), "loose.pdf")
	writeFile(t, loose)

	paths, err := collectFiles([]string{dir, loose})
	require.NoError(t, err)

	assert.Contains(t, paths, filepath.Join(dir, "a.txt"))
	assert.Contains(t, paths, filepath.Join(dir, "b.csv"))
	assert.Contains(t, paths, loose)
	assert.NotContains(t, paths, filepath.Join(dir, "nested", "skipped.txt"))
	assert.Len(t, paths, 3)
	assert.True(t, sortedStrings(paths))
}

func sortedStrings(s []string) bool {
	for i := 1; i < len(s); i++ {
		if s[i-1] > s[i] {
			return false
		}
	}
	return true
}

func TestCollectFilesMissingPath(t *testing.T) {
	_, err := collectFiles([]string{filepath.Join(t.TempDir(), "nope.txt")})
	assert.Error(t, err)
}
