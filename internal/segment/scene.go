package segment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/domain/entity"
)

// Frames are scored on a small grayscale representation; content detection
// does not need full resolution.
const (
	detectWidth  = 160
	detectHeight = 90
)

// GrayStreamer provides the downscaled grayscale frame stream and video
// metadata the detector works on.
type GrayStreamer interface {
	Probe(ctx context.Context, videoPath string) (entity.VideoInfo, error)
	GrayFrames(ctx context.Context, videoPath string, width, height int, maxDuration float64, fn func(index int, pixels []byte) error) error
}

// SceneSegmenter detects visual scene changes by scoring each frame's mean
// absolute pixel difference against the previous frame. A score above the
// threshold opens a new scene, subject to a minimum scene length that keeps
// flicker from over-segmenting. Captions are deferred to OCR downstream.
type SceneSegmenter struct {
	video       GrayStreamer
	threshold   float64
	minSceneLen int
	keyframes   int
	maxDuration float64
	logger      *zap.Logger
}

type SceneConfig struct {
	// Threshold is the 0-255 mean absolute difference that counts as a cut.
	Threshold float64
	// MinSceneLen is the minimum scene length in frames.
	MinSceneLen int
	// KeyframesPerScene is how many evenly spaced candidate timestamps each
	// scene contributes.
	KeyframesPerScene int
	// MaxDuration limits detection to the first part of the video. Zero means
	// the full video.
	MaxDuration float64
}

func NewSceneSegmenter(video GrayStreamer, cfg SceneConfig, logger *zap.Logger) *SceneSegmenter {
	return &SceneSegmenter{
		video:       video,
		threshold:   cfg.Threshold,
		minSceneLen: cfg.MinSceneLen,
		keyframes:   cfg.KeyframesPerScene,
		maxDuration: cfg.MaxDuration,
		logger:      logger,
	}
}

func (s *SceneSegmenter) Segments(ctx context.Context, videoPath string) ([]entity.Segment, error) {
	info, err := s.video.Probe(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", videoPath, err)
	}
	fps := info.FPS
	if fps <= 0 {
		fps = 25
	}

	var (
		prev       []byte
		cuts       []int
		lastCut    int
		frameCount int
	)
	err = s.video.GrayFrames(ctx, videoPath, detectWidth, detectHeight, s.maxDuration, func(index int, pixels []byte) error {
		frameCount = index + 1
		if prev == nil {
			prev = make([]byte, len(pixels))
			copy(prev, pixels)
			return nil
		}
		score := meanAbsDiff(prev, pixels)
		if score > s.threshold && index-lastCut >= s.minSceneLen {
			cuts = append(cuts, index)
			lastCut = index
		}
		copy(prev, pixels)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scene detection on %s: %w", videoPath, err)
	}

	if frameCount == 0 {
		// No decodable frames is a valid empty result, not an error.
		s.logger.Warn("no frames decoded for scene detection", zap.String("video", videoPath))
		return nil, nil
	}

	spans := sceneSpans(cuts, frameCount)
	segments := make([]entity.Segment, 0, len(spans))
	for _, span := range spans {
		keyframes := sceneKeyframes(span[0], span[1], s.keyframes)
		timestamps := make([]float64, len(keyframes))
		for i, f := range keyframes {
			timestamps[i] = float64(f) / fps
		}
		segments = append(segments, entity.Segment{
			Start:     float64(span[0]) / fps,
			End:       float64(span[1]) / fps,
			Kind:      entity.SourceScene,
			Keyframes: timestamps,
		})
	}

	s.logger.Info("scene detection finished",
		zap.String("video", videoPath),
		zap.Int("frames", frameCount),
		zap.Int("scenes", len(segments)),
	)
	return segments, nil
}

// meanAbsDiff scores two equally sized grayscale buffers, 0 (identical) to
// 255 (inverted black/white).
func meanAbsDiff(a, b []byte) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var sum int64
	for i := range a {
		d := int64(a[i]) - int64(b[i])
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return float64(sum) / float64(len(a))
}

// sceneSpans converts cut indices into [start, end) frame spans covering the
// whole video.
func sceneSpans(cuts []int, totalFrames int) [][2]int {
	spans := make([][2]int, 0, len(cuts)+1)
	start := 0
	for _, cut := range cuts {
		if cut > start {
			spans = append(spans, [2]int{start, cut})
		}
		start = cut
	}
	if totalFrames > start {
		spans = append(spans, [2]int{start, totalFrames})
	}
	return spans
}

// sceneKeyframes picks n evenly spaced frames inside [start, end). Scenes
// shorter than n frames contribute every frame.
func sceneKeyframes(start, end, n int) []int {
	length := end - start
	if length <= 0 {
		return nil
	}
	if n <= 0 {
		n = 1
	}
	if length <= n {
		frames := make([]int, 0, length)
		for f := start; f < end; f++ {
			frames = append(frames, f)
		}
		return frames
	}

	interval := length / n
	frames := make([]int, 0, n)
	for i := 0; i < n; i++ {
		f := start + i*interval
		if f < end {
			frames = append(frames, f)
		}
	}
	return frames
}
