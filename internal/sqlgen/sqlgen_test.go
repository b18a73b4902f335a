package sqlgen

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/domain/entity"
)

func sampleRecords() []entity.Record {
	return []entity.Record{
		{Ordinal: 0, Timestamp: 1.5, Caption: "first caption", ImagePath: "frame_000000.jpg"},
		{Ordinal: 1, Timestamp: 12.25, Caption: "second caption", ImagePath: "frame_000001.jpg"},
	}
}

func TestWriteScriptStartsWithTableReset(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteScript(&buf, "myvideo", sampleRecords(), Options{}))

	script := buf.String()
	assert.True(t, strings.HasPrefix(script, "DROP TABLE IF EXISTS video_frames;"))
	assert.Contains(t, script, "CREATE TABLE IF NOT EXISTS video_frames")
}

func TestWriteScriptOneInsertPerRecord(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteScript(&buf, "myvideo", sampleRecords(), Options{}))

	script := buf.String()
	assert.Equal(t, 2, strings.Count(script, "INSERT INTO video_frames"))
	assert.Contains(t, script, "VALUES ('frame_000000.jpg', 'myvideo/frame_000000.jpg', 0, 1.5, 'first caption');")
	assert.Contains(t, script, "VALUES ('frame_000001.jpg', 'myvideo/frame_000001.jpg', 1, 12.25, 'second caption');")
}

func TestWriteScriptEmptyRunIsHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteScript(&buf, "myvideo", nil, Options{}))

	assert.Equal(t, header, buf.String())
}

func TestWriteScriptEscapesSingleQuotes(t *testing.T) {
	records := []entity.Record{
		{Ordinal: 0, Timestamp: 3, Caption: "it's o'clock", ImagePath: "frame_000000.jpg"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteScript(&buf, "myvideo", records, Options{}))

	assert.Contains(t, buf.String(), "'it''s o''clock'")
}

func TestWriteScriptPublicBaseURL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteScript(&buf, "myvideo", sampleRecords(), Options{
		PublicBaseURL: "https://cdn.example.com/frames/",
	}))

	assert.Contains(t, buf.String(), "'https://cdn.example.com/frames/myvideo/frame_000000.jpg'")
	assert.NotContains(t, buf.String(), "frames//myvideo")
}

func TestWriteScriptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import.sql")
	require.NoError(t, WriteScriptFile(path, "myvideo", sampleRecords(), Options{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "INSERT INTO video_frames")
}
