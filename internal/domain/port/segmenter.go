package port

import (
	"context"

	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/domain/entity"
)

// Segmenter produces the ordered, non-overlapping segments of interest for a
// video. The sequence is fully materialized before downstream stages start.
// A video with nothing of interest yields an empty slice and a nil error.
type Segmenter interface {
	Segments(ctx context.Context, videoPath string) ([]entity.Segment, error)
}
