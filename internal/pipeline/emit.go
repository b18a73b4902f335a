package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/domain/entity"
	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/sqlgen"
)

// metadata mirrors what the run wrote, for audit and downstream tooling.
type metadata struct {
	VideoName   string       `json:"video_name"`
	Segments    int          `json:"segments"`
	FramesSaved int          `json:"frames_saved"`
	DedupMode   string       `json:"dedup_mode"`
	GeneratedAt time.Time    `json:"generated_at"`
	Frames      []frameEntry `json:"frames"`
}

type frameEntry struct {
	Ordinal    int     `json:"ordinal"`
	Timestamp  float64 `json:"timestamp"`
	Filename   string  `json:"filename"`
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity,omitempty"`
}

// emit writes the kept frames, the metadata file, and the insertion script.
// The destination directory must be ours: colliding with unrelated data is
// fatal before anything is overwritten.
func (p *Pipeline) emit(videoName string, segments []entity.Segment, kept []entity.Record) (outputDir, sqlPath string, err error) {
	outputDir = filepath.Join(p.cfg.OutputDir, videoName)
	if err := checkDestination(outputDir); err != nil {
		return "", "", err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", "", fmt.Errorf("create output directory %s: %w", outputDir, err)
	}

	entries := make([]frameEntry, 0, len(kept))
	for _, rec := range kept {
		framePath := filepath.Join(outputDir, rec.ImagePath)
		if err := os.WriteFile(framePath, rec.Image, 0644); err != nil {
			return "", "", fmt.Errorf("write frame %s: %w", framePath, err)
		}
		entries = append(entries, frameEntry{
			Ordinal:    rec.Ordinal,
			Timestamp:  rec.Timestamp,
			Filename:   rec.ImagePath,
			Text:       rec.Caption,
			Similarity: rec.Similarity,
		})
	}

	meta := metadata{
		VideoName:   videoName,
		Segments:    len(segments),
		FramesSaved: len(kept),
		DedupMode:   string(p.cfg.Dedup.Mode),
		GeneratedAt: time.Now().UTC(),
		Frames:      entries,
	}
	metaPath := filepath.Join(outputDir, "metadata.json")
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(metaPath, data, 0644); err != nil {
		return "", "", fmt.Errorf("write metadata: %w", err)
	}

	sqlPath = p.cfg.SQLFile
	if sqlPath == "" {
		sqlPath = filepath.Join(outputDir, "d1_import.sql")
	}
	if err := sqlgen.WriteScriptFile(sqlPath, videoName, kept, sqlgen.Options{
		PublicBaseURL: p.cfg.PublicBaseURL,
	}); err != nil {
		return "", "", err
	}

	return outputDir, sqlPath, nil
}

// checkDestination refuses to reuse a directory holding files this pipeline
// did not produce. Re-runs over our own artifacts are fine; silently
// overwriting unrelated data is not.
func checkDestination(outputDir string) error {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("inspect output directory %s: %w", outputDir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			return fmt.Errorf("output directory %s contains unrelated entry %s", outputDir, name)
		}
		switch {
		case strings.HasPrefix(name, "frame_") && strings.HasSuffix(name, ".jpg"):
		case name == "metadata.json":
		case strings.HasSuffix(name, ".sql"):
		default:
			return fmt.Errorf("output directory %s contains unrelated entry %s", outputDir, name)
		}
	}
	return nil
}
