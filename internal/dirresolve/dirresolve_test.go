package dirresolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_ExplicitCreatesDir(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "nested", "dir")

	got, err := Resolve(target)
	require.NoError(t, err)
	assert.Equal(t, target, got)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestResolve_EmptyFallsBackToHomeDownloads(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Downloads"), got)

	info, err := os.Stat(got)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
