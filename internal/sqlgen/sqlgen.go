package sqlgen

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/domain/entity"
)

// Script layout consumed by the external bulk uploader: a full-table reset
// followed by one insert per kept record, so re-imports are idempotent.
const header = `DROP TABLE IF EXISTS video_frames;
CREATE TABLE IF NOT EXISTS video_frames (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    filename TEXT NOT NULL,
    filepath TEXT NOT NULL,
    frame_number INTEGER,
    timestamp REAL,
    subtitle TEXT,
    scene_id INTEGER
);
`

type Options struct {
	// PublicBaseURL, when set, turns filepath values into absolute URLs.
	// Otherwise paths stay relative as <video-name>/<filename>.
	PublicBaseURL string
}

// WriteScript emits the insertion script for the kept records of one video.
// Records must already carry their deterministic image paths.
func WriteScript(w io.Writer, videoName string, records []entity.Record, opts Options) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(header); err != nil {
		return fmt.Errorf("write script header: %w", err)
	}

	for _, rec := range records {
		filename := path.Base(rec.ImagePath)
		filepath := path.Join(videoName, filename)
		if opts.PublicBaseURL != "" {
			filepath = strings.TrimRight(opts.PublicBaseURL, "/") + "/" + filepath
		}

		stmt := fmt.Sprintf(
			"INSERT INTO video_frames (filename, filepath, frame_number, timestamp, subtitle) VALUES ('%s', '%s', %d, %g, '%s');\n",
			escape(filename), escape(filepath), rec.Ordinal, rec.Timestamp, escape(rec.Caption),
		)
		if _, err := bw.WriteString(stmt); err != nil {
			return fmt.Errorf("write insert for record %d: %w", rec.Ordinal, err)
		}
	}

	return bw.Flush()
}

// WriteScriptFile writes the insertion script to disk.
func WriteScriptFile(outputPath, videoName string, records []entity.Record, opts Options) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create sql script %s: %w", outputPath, err)
	}
	defer f.Close()

	if err := WriteScript(f, videoName, records, opts); err != nil {
		return err
	}
	return f.Sync()
}

// escape doubles single quotes for SQLite string literals.
func escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
