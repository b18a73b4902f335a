package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// WhisperCppEngine shells out to the whisper.cpp CLI and parses its JSON
// output. Model load problems surface at construction, before any segment
// work starts.
type WhisperCppEngine struct {
	bin       string
	modelPath string
	language  string
	logger    *zap.Logger
}

func NewWhisperCppEngine(opts Options, logger *zap.Logger) (*WhisperCppEngine, error) {
	if _, err := os.Stat(opts.ModelPath); err != nil {
		return nil, fmt.Errorf("whisper model not available at %s: %w", opts.ModelPath, err)
	}
	if _, err := exec.LookPath(opts.Bin); err != nil {
		return nil, fmt.Errorf("whisper binary %q not found: %w", opts.Bin, err)
	}
	return &WhisperCppEngine{
		bin:       opts.Bin,
		modelPath: opts.ModelPath,
		language:  opts.Language,
		logger:    logger,
	}, nil
}

// whisperOutput mirrors the whisper.cpp --output-json file layout.
type whisperOutput struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func (e *WhisperCppEngine) Transcribe(ctx context.Context, audioPath string) ([]Utterance, error) {
	outDir, err := os.MkdirTemp("", "whisper-*")
	if err != nil {
		return nil, fmt.Errorf("create whisper output dir: %w", err)
	}
	defer os.RemoveAll(outDir)
	outBase := filepath.Join(outDir, "transcript")

	args := []string{
		"-m", e.modelPath,
		"--output-json",
		"--output-file", outBase,
		"--no-prints",
	}
	if e.language != "" {
		args = append(args, "-l", e.language)
	}
	args = append(args, audioPath)

	cmd := exec.CommandContext(ctx, e.bin, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("whisper transcription: %w, output: %s", err, string(output))
	}

	data, err := os.ReadFile(outBase + ".json")
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}

	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}

	utterances := make([]Utterance, 0, len(out.Transcription))
	for _, seg := range out.Transcription {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		utterances = append(utterances, Utterance{
			Start: float64(seg.Offsets.From) / 1000.0,
			End:   float64(seg.Offsets.To) / 1000.0,
			Text:  text,
		})
	}

	e.logger.Debug("transcription finished",
		zap.String("audio", audioPath),
		zap.Int("utterances", len(utterances)),
	)
	return utterances, nil
}

func (e *WhisperCppEngine) Close() error { return nil }
