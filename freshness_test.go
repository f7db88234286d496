package sumstats

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestShouldRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.tsv")
	out1 := filepath.Join(dir, "out.tsv.gz")
	out2 := filepath.Join(dir, "out.json")

	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	touch(t, in, base)

	run, err := DefaultOpener.ShouldRun([]string{in}, []string{out1, out2})
	require.NoError(t, err)
	assert.True(t, run, "outputs are missing")

	touch(t, out1, base.Add(time.Hour))
	touch(t, out2, base.Add(2*time.Hour))
	run, err = DefaultOpener.ShouldRun([]string{in}, []string{out1, out2})
	require.NoError(t, err)
	assert.False(t, run, "outputs are newer")

	touch(t, in, base.Add(90*time.Minute))
	run, err = DefaultOpener.ShouldRun([]string{in}, []string{out1, out2})
	require.NoError(t, err)
	assert.True(t, run, "input is newer than the oldest output")
}

func TestShouldRunMissingInput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	touch(t, out, time.Now())

	_, err := DefaultOpener.ShouldRun([]string{filepath.Join(dir, "missing")}, []string{out})
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestShouldRunNoOutputs(t *testing.T) {
	run, err := DefaultOpener.ShouldRun(nil, nil)
	require.NoError(t, err)
	assert.True(t, run)
}
