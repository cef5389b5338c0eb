package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindWithExt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	for _, name := range []string{"a.vtt", "b.VTT", "c.srt", filepath.Join("nested", "d.vtt")} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	matches, err := FindWithExt(dir, ".vtt")
	require.NoError(t, err)
	assert.Len(t, matches, 3)
}

func TestFindRecentAfter(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.vtt")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0o644))
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.vtt"), []byte("x"), 0o644))

	recent, err := FindRecentAfter(dir, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "new.vtt", filepath.Base(recent[0]))
}
