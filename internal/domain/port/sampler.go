package port

import (
	"context"

	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/domain/entity"
)

// FrameDecoder decodes single frames out of a source video. Implementations
// must clamp out-of-range timestamps to the video bounds rather than fail.
type FrameDecoder interface {
	Probe(ctx context.Context, videoPath string) (entity.VideoInfo, error)
	FrameAt(ctx context.Context, videoPath string, timestamp float64) ([]byte, error)
}
