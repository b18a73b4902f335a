package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/dedup"
	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/domain/port"
	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/infra/config"
	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/infra/ffmpeg"
	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/ocr"
	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/pipeline"
	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/segment"
	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/stt"
)

// PipelineSettings is everything needed to assemble one indexing pipeline.
// The worker fills it from the environment; the CLI fills it from flags.
type PipelineSettings struct {
	Strategy           string
	Workers            int
	BatchSize          int
	DedupMode          string
	DedupBothSemantics string
	SSIMThreshold      float64
	TextSimThreshold   float64
	SceneThreshold     float64
	MinSceneLen        int
	KeyframesPerScene  int
	MinUtteranceSec    float64
	MaxDuration        float64
	TextRegion         string
	OCREngine          string
	OCRLang            string
	TesseractBin       string
	STTEngine          string
	STTLang            string
	WhisperModelPath   string
	WhisperBin         string
	OnlyWithText       bool
	SQLFile            string
	PublicBaseURL      string
	TempDir            string
}

// SettingsFromConfig lifts the pipeline defaults out of the service config.
func SettingsFromConfig(cfg *config.Config) PipelineSettings {
	return PipelineSettings{
		Strategy:           cfg.Strategy,
		Workers:            cfg.PipelineWorkers,
		BatchSize:          cfg.PipelineBatchSize,
		DedupMode:          cfg.DedupMode,
		DedupBothSemantics: cfg.DedupBothSemantics,
		SSIMThreshold:      cfg.SSIMThreshold,
		TextSimThreshold:   cfg.TextSimThreshold,
		SceneThreshold:     cfg.SceneThreshold,
		MinSceneLen:        cfg.MinSceneLen,
		KeyframesPerScene:  cfg.KeyframesPerScene,
		MinUtteranceSec:    cfg.MinUtteranceSec,
		TextRegion:         cfg.TextRegion,
		OCREngine:          cfg.OCREngine,
		OCRLang:            cfg.OCRLang,
		TesseractBin:       cfg.TesseractBin,
		STTEngine:          cfg.STTEngine,
		STTLang:            cfg.STTLang,
		WhisperModelPath:   cfg.WhisperModelPath,
		WhisperBin:         cfg.WhisperBin,
		OnlyWithText:       cfg.OnlyWithText,
		PublicBaseURL:      cfg.PublicBaseURL,
		TempDir:            cfg.TempDir,
	}
}

// Builder holds the engines and adapters that are expensive or fallible to
// construct. Engine load failures surface here, before any video is touched.
type Builder struct {
	segmenter  port.Segmenter
	decoder    port.FrameDecoder
	recognizer port.TextRecognizer
	settings   PipelineSettings
	dedupCfg   dedup.Config
	sttEngine  stt.Engine
	logger     *zap.Logger
}

func NewBuilder(s PipelineSettings, logger *zap.Logger) (*Builder, error) {
	mode, err := dedup.ParseMode(s.DedupMode)
	if err != nil {
		return nil, err
	}
	semantics, err := dedup.ParseBothSemantics(s.DedupBothSemantics)
	if err != nil {
		return nil, err
	}
	region, err := ocr.ParseRegion(s.TextRegion)
	if err != nil {
		return nil, err
	}

	decoder := ffmpeg.NewDecoder(logger)

	ocrEngine, err := ocr.New(s.OCREngine, ocr.Options{
		Bin:      s.TesseractBin,
		Language: s.OCRLang,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("load ocr engine: %w", err)
	}
	recognizer := ocr.NewRecognizer(ocrEngine, region)

	b := &Builder{
		decoder:    decoder,
		recognizer: recognizer,
		settings:   s,
		dedupCfg: dedup.Config{
			Mode:          mode,
			BothSemantics: semantics,
			SSIMThreshold: s.SSIMThreshold,
			TextThreshold: s.TextSimThreshold,
			OnlyWithText:  s.OnlyWithText,
		},
		logger: logger,
	}

	switch s.Strategy {
	case "speech":
		engine, err := stt.New(s.STTEngine, stt.Options{
			Bin:       s.WhisperBin,
			ModelPath: s.WhisperModelPath,
			Language:  s.STTLang,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("load stt engine: %w", err)
		}
		b.sttEngine = engine
		b.segmenter = segment.NewSpeechSegmenter(engine, decoder, segment.SpeechConfig{
			MinUtterance: s.MinUtteranceSec,
			MaxDuration:  s.MaxDuration,
			TempDir:      s.TempDir,
		}, logger)
	case "scene":
		b.segmenter = segment.NewSceneSegmenter(decoder, segment.SceneConfig{
			Threshold:         s.SceneThreshold,
			MinSceneLen:       s.MinSceneLen,
			KeyframesPerScene: s.KeyframesPerScene,
			MaxDuration:       s.MaxDuration,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown segmentation strategy %q", s.Strategy)
	}

	return b, nil
}

// Pipeline assembles a pipeline whose artifacts land under outputDir.
func (b *Builder) Pipeline(outputDir string) *pipeline.Pipeline {
	return pipeline.New(b.segmenter, b.decoder, b.recognizer, pipeline.Config{
		Workers:       b.settings.Workers,
		BatchSize:     b.settings.BatchSize,
		Dedup:         b.dedupCfg,
		OutputDir:     outputDir,
		SQLFile:       b.settings.SQLFile,
		PublicBaseURL: b.settings.PublicBaseURL,
	}, b.logger)
}

// Close releases engine resources.
func (b *Builder) Close() error {
	if b.sttEngine != nil {
		return b.sttEngine.Close()
	}
	return nil
}
