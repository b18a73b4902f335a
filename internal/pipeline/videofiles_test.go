package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestFindVideosSingleFile(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "clip.mp4")
	touch(t, video)

	videos, err := FindVideos(video)
	require.NoError(t, err)
	assert.Equal(t, []string{video}, videos)
}

func TestFindVideosRejectsNonVideoFile(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "readme.txt")
	touch(t, doc)

	_, err := FindVideos(doc)
	assert.Error(t, err)
}

func TestFindVideosDirectorySortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.mkv"))
	touch(t, filepath.Join(dir, "a.MP4"))
	touch(t, filepath.Join(dir, "notes.txt"))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))

	videos, err := FindVideos(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.MP4"),
		filepath.Join(dir, "b.mkv"),
	}, videos)
}

func TestFindVideosEmptyDirectory(t *testing.T) {
	_, err := FindVideos(t.TempDir())
	assert.Error(t, err)
}

func TestFindVideosMissingPath(t *testing.T) {
	_, err := FindVideos(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
