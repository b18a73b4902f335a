package segment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/domain/entity"
	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/ocr"
	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/stt"
)

// AudioExtractor pulls the audio track out of a video for transcription.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, videoPath, audioPath string, maxDuration float64) error
}

// SpeechSegmenter turns transcribed utterances into segments with captions
// pre-attached, so the scene-only OCR stage can skip them entirely.
type SpeechSegmenter struct {
	engine       stt.Engine
	audio        AudioExtractor
	minUtterance float64
	maxDuration  float64
	tempDir      string
	logger       *zap.Logger
}

type SpeechConfig struct {
	// MinUtterance drops utterances shorter than this many seconds.
	MinUtterance float64
	// MaxDuration limits transcription to the first part of the video.
	// Zero means the full track.
	MaxDuration float64
	TempDir     string
}

func NewSpeechSegmenter(engine stt.Engine, audio AudioExtractor, cfg SpeechConfig, logger *zap.Logger) *SpeechSegmenter {
	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &SpeechSegmenter{
		engine:       engine,
		audio:        audio,
		minUtterance: cfg.MinUtterance,
		maxDuration:  cfg.MaxDuration,
		tempDir:      tempDir,
		logger:       logger,
	}
}

func (s *SpeechSegmenter) Segments(ctx context.Context, videoPath string) ([]entity.Segment, error) {
	workDir, err := os.MkdirTemp(s.tempDir, "speech-*")
	if err != nil {
		return nil, fmt.Errorf("create audio workdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	audioPath := filepath.Join(workDir, "audio.wav")
	if err := s.audio.ExtractAudio(ctx, videoPath, audioPath, s.maxDuration); err != nil {
		return nil, fmt.Errorf("extract audio from %s: %w", videoPath, err)
	}

	utterances, err := s.engine.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("transcribe %s: %w", videoPath, err)
	}

	segments := filterUtterances(utterances, s.minUtterance)
	s.logger.Info("speech segmentation finished",
		zap.String("video", videoPath),
		zap.Int("utterances", len(utterances)),
		zap.Int("segments", len(segments)),
	)
	return segments, nil
}

// filterUtterances drops degenerate and hallucinated utterances. Whisper-style
// engines loop on the same short text when they hallucinate; an identical
// short or brief repeat of the previous text is discarded.
func filterUtterances(utterances []stt.Utterance, minUtterance float64) []entity.Segment {
	segments := make([]entity.Segment, 0, len(utterances))
	lastText := ""
	lastStart := -1.0

	for _, u := range utterances {
		text := strings.TrimSpace(u.Text)
		duration := u.End - u.Start

		if duration <= 0 || u.Start == lastStart {
			continue
		}
		if text == lastText && (duration < 5.0 || len([]rune(text)) < 5) {
			continue
		}
		if duration < minUtterance {
			continue
		}

		segments = append(segments, entity.Segment{
			Start:   u.Start,
			End:     u.End,
			Kind:    entity.SourceSpeech,
			Caption: ocr.NormalizeWhitespace(text),
		})
		lastText = text
		lastStart = u.Start
	}
	return segments
}
