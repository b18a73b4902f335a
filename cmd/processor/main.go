package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/app"
	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/infra/config"
	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/pipeline"
	"github.com/taconotsandwich/meme-i-recalled-from-a-video/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	cmd := &cli.Command{
		Name:      "memerecall-processor",
		Usage:     "turn a video into searchable (image, caption) records",
		ArgsUsage: "<video file or directory>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "output", Usage: "directory for extracted frames and metadata"},
			&cli.StringFlag{Name: "sql-file", Usage: "write the insertion script here instead of into the output directory"},
			&cli.DurationFlag{Name: "length", Usage: "only process the first part of each video (e.g. 90s, 5m)"},
			&cli.StringFlag{Name: "strategy", Value: cfg.Strategy, Usage: "segmentation strategy: speech or scene"},
			&cli.IntFlag{Name: "workers", Value: int64(cfg.PipelineWorkers), Usage: "concurrent frame workers"},
			&cli.IntFlag{Name: "batch-size", Value: int64(cfg.PipelineBatchSize), Usage: "candidates dispatched per worker batch"},
			&cli.StringFlag{Name: "dedup-mode", Value: cfg.DedupMode, Usage: "dedup mode: ssim, text or both"},
			&cli.StringFlag{Name: "dedup-both-semantics", Value: cfg.DedupBothSemantics, Usage: "how 'both' combines the tests: all or any"},
			&cli.FloatFlag{Name: "ssim-threshold", Value: cfg.SSIMThreshold, Usage: "frames scoring at or above are duplicates"},
			&cli.FloatFlag{Name: "text-threshold", Value: cfg.TextSimThreshold, Usage: "captions scoring at or above are duplicates"},
			&cli.FloatFlag{Name: "scene-threshold", Value: cfg.SceneThreshold, Usage: "mean pixel difference (0-255) that opens a new scene"},
			&cli.IntFlag{Name: "min-scene-len", Value: int64(cfg.MinSceneLen), Usage: "minimum scene length in frames"},
			&cli.IntFlag{Name: "keyframes-per-scene", Value: int64(cfg.KeyframesPerScene), Usage: "candidate frames sampled per scene"},
			&cli.FloatFlag{Name: "min-utterance", Value: cfg.MinUtteranceSec, Usage: "drop utterances shorter than this many seconds"},
			&cli.StringFlag{Name: "text-region", Value: cfg.TextRegion, Usage: "frame region read by OCR: all, top or bottom"},
			&cli.StringFlag{Name: "ocr-engine", Value: cfg.OCREngine, Usage: "ocr engine: tesseract or stub"},
			&cli.StringFlag{Name: "ocr-lang", Value: cfg.OCRLang, Usage: "ocr language"},
			&cli.StringFlag{Name: "stt-engine", Value: cfg.STTEngine, Usage: "stt engine: whispercpp or stub"},
			&cli.StringFlag{Name: "stt-lang", Value: cfg.STTLang, Usage: "stt language"},
			&cli.StringFlag{Name: "whisper-model", Value: cfg.WhisperModelPath, Usage: "path to the whisper model file"},
			&cli.StringFlag{Name: "whisper-bin", Value: cfg.WhisperBin, Usage: "whisper-cli binary"},
			&cli.StringFlag{Name: "tesseract-bin", Value: cfg.TesseractBin, Usage: "tesseract binary"},
			&cli.BoolFlag{Name: "only-with-text", Value: cfg.OnlyWithText, Usage: "drop records whose caption carries no meaningful text"},
			&cli.StringFlag{Name: "public-base-url", Value: cfg.PublicBaseURL, Usage: "prefix image paths in the SQL script with this URL"},
			&cli.StringFlag{Name: "log-level", Value: cfg.LogLevel, Usage: "zap log level"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cfg, cmd)
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, cmd *cli.Command) error {
	input := cmd.Args().First()
	if input == "" {
		return fmt.Errorf("missing input: pass a video file or a directory of videos")
	}

	log, err := logger.New(cmd.String("log-level"))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	settings := app.PipelineSettings{
		Strategy:           cmd.String("strategy"),
		Workers:            int(cmd.Int("workers")),
		BatchSize:          int(cmd.Int("batch-size")),
		DedupMode:          cmd.String("dedup-mode"),
		DedupBothSemantics: cmd.String("dedup-both-semantics"),
		SSIMThreshold:      cmd.Float("ssim-threshold"),
		TextSimThreshold:   cmd.Float("text-threshold"),
		SceneThreshold:     cmd.Float("scene-threshold"),
		MinSceneLen:        int(cmd.Int("min-scene-len")),
		KeyframesPerScene:  int(cmd.Int("keyframes-per-scene")),
		MinUtteranceSec:    cmd.Float("min-utterance"),
		MaxDuration:        cmd.Duration("length").Seconds(),
		TextRegion:         cmd.String("text-region"),
		OCREngine:          cmd.String("ocr-engine"),
		OCRLang:            cmd.String("ocr-lang"),
		TesseractBin:       cmd.String("tesseract-bin"),
		STTEngine:          cmd.String("stt-engine"),
		STTLang:            cmd.String("stt-lang"),
		WhisperModelPath:   cmd.String("whisper-model"),
		WhisperBin:         cmd.String("whisper-bin"),
		OnlyWithText:       cmd.Bool("only-with-text"),
		SQLFile:            cmd.String("sql-file"),
		PublicBaseURL:      cmd.String("public-base-url"),
		TempDir:            cfg.TempDir,
	}

	builder, err := app.NewBuilder(settings, log)
	if err != nil {
		return err
	}
	defer builder.Close()

	videos, err := pipeline.FindVideos(input)
	if err != nil {
		return err
	}

	p := builder.Pipeline(cmd.String("output"))
	started := time.Now()
	var kept, dropped int

	for _, videoPath := range videos {
		summary, err := p.Run(ctx, videoPath)
		if err != nil {
			return fmt.Errorf("process %s: %w", videoPath, err)
		}
		kept += summary.Kept
		dropped += summary.Dropped

		fmt.Printf("%s: %d segments, %d kept, %d dropped (%.1fs video, %s)\n",
			summary.VideoName, summary.Segments, summary.Kept, summary.Dropped,
			summary.VideoDuration, summary.Elapsed.Round(time.Millisecond))
	}

	log.Info("all videos processed",
		zap.Int("videos", len(videos)),
		zap.Int("kept", kept),
		zap.Int("dropped", dropped),
		zap.Duration("elapsed", time.Since(started)),
	)
	return nil
}
