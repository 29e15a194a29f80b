package pathutil

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"normal.txt":        "normal.txt",
		"":                  DefaultName,
		"   ":               DefaultName,
		`a/b\c:d*e?f"g<h>i|j`: "a-b-c-d-e-f-g-h-i-j",
		"  spaced  ":         "spaced",
	}
	for in, want := range cases {
		assert.Equal(t, want, Sanitize(in), "input %q", in)
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{"a/b", "", "clean-name.bin", `weird*name?.mp4`}
	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		assert.Equal(t, once, twice, "sanitize should be idempotent for %q", in)
		assert.NotEmpty(t, twice)
	}
}

func TestNameFromURL(t *testing.T) {
	cases := map[string]string{
		"https://example.test/dir/a.bin":     "a.bin",
		"https://example.test/dir/":          "dir",
		"https://example.test":               DefaultName,
		"https://example.test/a%20b.txt":     "a b.txt",
		"not a url at all \x7f":               DefaultName,
	}
	for in, want := range cases {
		assert.Equal(t, want, NameFromURL(in), "input %q", in)
	}
}

func TestUniquePath_NoCollision(t *testing.T) {
	dir := t.TempDir()
	got := UniquePath(dir, "file.bin")
	assert.Equal(t, filepath.Join(dir, "file.bin"), got)
}

func TestUniquePath_ResolvesCollisions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file.bin"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file (1).bin"), []byte("x"), 0o644))

	got := UniquePath(dir, "file.bin")
	assert.Equal(t, filepath.Join(dir, "file (2).bin"), got)
}

func TestUniquePath_NeverReturnsExistingPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), []byte("x"), 0o644))
	for k := 1; k <= 50; k++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, filepathCandidate("f", k)), []byte("x"), 0o644))
	}

	got := UniquePath(dir, "f")
	_, err := os.Stat(got)
	assert.True(t, os.IsNotExist(err), "unique path %q should not already exist", got)
}

func filepathCandidate(stem string, k int) string {
	return stem + " (" + strconv.Itoa(k) + ")"
}

func TestTempPath(t *testing.T) {
	assert.Equal(t, "file.iso.part", TempPath("file.iso"))
	assert.Equal(t, "file.part", TempPath("file"))
}

func TestWithExtension(t *testing.T) {
	assert.Equal(t, "file.png", WithExtension("file", ".png"))
	assert.Equal(t, "file.iso", WithExtension("file.iso", ".png"))
	assert.Equal(t, "file", WithExtension("file", ""))
}
