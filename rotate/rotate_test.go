package rotate_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/logroute/rotate"
)

func TestRotateGenerations(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := rotate.Target{Path: filepath.Join(dir, "app.log"), Keep: 2}

	writeLive := func(content string) {
		t.Helper()
		require.NoError(t, os.WriteFile(target.Path, []byte(content), 0o644))
	}

	readFile := func(path string) string {
		t.Helper()

		data, err := os.ReadFile(path)
		require.NoError(t, err)

		return string(data)
	}

	writeLive("one")
	require.NoError(t, target.Rotate())
	assert.NoFileExists(t, target.Path)
	assert.Equal(t, "one", readFile(target.Generation(1)))

	writeLive("two")
	require.NoError(t, target.Rotate())
	assert.Equal(t, "two", readFile(target.Generation(1)))
	assert.Equal(t, "one", readFile(target.Generation(2)))

	writeLive("three")
	require.NoError(t, target.Rotate())
	assert.Equal(t, "three", readFile(target.Generation(1)))
	assert.Equal(t, "two", readFile(target.Generation(2)))
	assert.NoFileExists(t, target.Generation(3))
}

func TestRotateKeepZeroDeletes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := rotate.Target{Path: filepath.Join(dir, "app.log"), Keep: 0}

	require.NoError(t, os.WriteFile(target.Path, []byte("gone"), 0o644))
	require.NoError(t, target.Rotate())

	assert.NoFileExists(t, target.Path)
	assert.NoFileExists(t, target.Generation(1))
}

func TestRotateMissingLive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := rotate.Target{Path: filepath.Join(dir, "app.log"), Keep: 3}

	require.NoError(t, target.Rotate())
	assert.NoFileExists(t, target.Generation(1))
}

func TestRotateRejectsSymlinkedLive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	real := filepath.Join(dir, "real.log")
	link := filepath.Join(dir, "app.log")

	require.NoError(t, os.WriteFile(real, []byte("data"), 0o644))
	require.NoError(t, os.Symlink(real, link))

	target := rotate.Target{Path: link, Keep: 2}

	err := target.Rotate()
	require.ErrorIs(t, err, rotate.ErrUnsafeTarget)
	assert.Equal(t, "data", mustRead(t, real))
}

func TestRotateRejectsSymlinkedGeneration(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := rotate.Target{Path: filepath.Join(dir, "app.log"), Keep: 2}
	real := filepath.Join(dir, "elsewhere")

	require.NoError(t, os.WriteFile(target.Path, []byte("live"), 0o644))
	require.NoError(t, os.WriteFile(real, []byte("safe"), 0o644))
	require.NoError(t, os.Symlink(real, target.Generation(1)))

	err := target.Rotate()
	require.ErrorIs(t, err, rotate.ErrUnsafeTarget)
	assert.Equal(t, "safe", mustRead(t, real))
}

func mustRead(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}
