package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"sync"

	"go.uber.org/zap"

	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/domain/entity"
)

// Decoder extracts frames and metadata from a source video by shelling out to
// ffmpeg/ffprobe. Probe results are cached per path, so clamping in FrameAt
// does not re-run ffprobe for every candidate.
type Decoder struct {
	ffmpegBin  string
	ffprobeBin string
	logger     *zap.Logger

	mu    sync.Mutex
	infos map[string]entity.VideoInfo
}

func NewDecoder(logger *zap.Logger) *Decoder {
	return &Decoder{
		ffmpegBin:  "ffmpeg",
		ffprobeBin: "ffprobe",
		logger:     logger,
		infos:      make(map[string]entity.VideoInfo),
	}
}

func (d *Decoder) Probe(ctx context.Context, videoPath string) (entity.VideoInfo, error) {
	d.mu.Lock()
	if info, ok := d.infos[videoPath]; ok {
		d.mu.Unlock()
		return info, nil
	}
	d.mu.Unlock()

	info, err := d.probe(ctx, videoPath)
	if err != nil {
		return entity.VideoInfo{}, err
	}

	d.mu.Lock()
	d.infos[videoPath] = info
	d.mu.Unlock()
	return info, nil
}

// FrameAt decodes the single frame nearest to the given timestamp as JPEG.
// Out-of-range timestamps are clamped to the video bounds.
func (d *Decoder) FrameAt(ctx context.Context, videoPath string, timestamp float64) ([]byte, error) {
	info, err := d.Probe(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	ts := clamp(timestamp, 0, info.Duration)
	if ts != timestamp {
		d.logger.Debug("timestamp clamped to video bounds",
			zap.Float64("requested", timestamp),
			zap.Float64("clamped", ts),
		)
	}

	cmd := exec.CommandContext(ctx, d.ffmpegBin,
		"-ss", fmt.Sprintf("%.3f", ts),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "2",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"-",
	)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("decode frame at %.3fs: %w", ts, err)
	}
	if len(output) == 0 {
		return nil, fmt.Errorf("decode frame at %.3fs: empty output", ts)
	}
	return output, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
