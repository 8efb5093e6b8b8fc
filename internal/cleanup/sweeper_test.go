package cleanup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipforge/log"
)

func TestMain(m *testing.M) {
	log.InitLogger()
	os.Exit(m.Run())
}

func writeFileAged(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	mtime := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func TestSweepStrictBoundary(t *testing.T) {
	dir := t.TempDir()

	// 10, 70 and 130 minutes old; maxAge 60 removes exactly the two
	// strictly older than the cutoff.
	fresh := writeFileAged(t, dir, "fresh.gif", 10*time.Minute)
	old := writeFileAged(t, dir, "old.gif", 70*time.Minute)
	older := writeFileAged(t, dir, "older.gif", 130*time.Minute)

	removed, err := Sweep(Target{Dir: dir, MaxAge: 60 * time.Minute})
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = os.Stat(fresh)
	assert.NoError(t, err, "file newer than cutoff must survive")
	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(older)
	assert.True(t, os.IsNotExist(err))
}

func TestSweepSkipsDirectories(t *testing.T) {
	dir := t.TempDir()

	subDir := filepath.Join(dir, "keep-me")
	require.NoError(t, os.Mkdir(subDir, 0o755))
	mtime := time.Now().Add(-24 * time.Hour)
	require.NoError(t, os.Chtimes(subDir, mtime, mtime))

	removed, err := Sweep(Target{Dir: dir, MaxAge: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	_, err = os.Stat(subDir)
	assert.NoError(t, err)
}

func TestSweepPatternFilter(t *testing.T) {
	dir := t.TempDir()

	gif := writeFileAged(t, dir, "clip.gif", time.Hour)
	txt := writeFileAged(t, dir, "notes.txt", time.Hour)

	removed, err := Sweep(Target{Dir: dir, MaxAge: time.Minute, Pattern: "*.gif"})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(gif)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(txt)
	assert.NoError(t, err, "non-matching file must survive")
}

func TestSweepMissingDirReturnsZero(t *testing.T) {
	removed, err := Sweep(Target{Dir: filepath.Join(t.TempDir(), "does-not-exist"), MaxAge: time.Minute})
	assert.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestFinalSweepIgnoresAge(t *testing.T) {
	dir := t.TempDir()
	fresh := writeFileAged(t, dir, "fresh.gif", time.Second)

	sweeper := NewSweeper([]Target{{Dir: dir, MaxAge: 24 * time.Hour}}, time.Hour)
	sweeper.FinalSweep()

	_, err := os.Stat(fresh)
	assert.True(t, os.IsNotExist(err), "final sweep must remove files regardless of max age")
}

func TestEnsureDirsIdempotent(t *testing.T) {
	base := t.TempDir()
	dirs := []string{
		filepath.Join(base, "uploads"),
		filepath.Join(base, "temp", "nested"),
	}

	require.NoError(t, EnsureDirs(dirs...))
	require.NoError(t, EnsureDirs(dirs...))

	for _, dir := range dirs {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
