package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// TesseractEngine pipes the image through the tesseract CLI. Availability of
// the binary and language data is checked at construction so a missing
// install fails the run before any partial output exists.
type TesseractEngine struct {
	bin      string
	language string
	logger   *zap.Logger
}

func NewTesseractEngine(opts Options, logger *zap.Logger) (*TesseractEngine, error) {
	if _, err := exec.LookPath(opts.Bin); err != nil {
		return nil, fmt.Errorf("tesseract binary %q not found: %w", opts.Bin, err)
	}

	check := exec.Command(opts.Bin, "--list-langs")
	output, err := check.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("tesseract language check: %w", err)
	}
	if !strings.Contains(string(output), opts.Language) {
		return nil, fmt.Errorf("tesseract language data %q not installed", opts.Language)
	}

	return &TesseractEngine{bin: opts.Bin, language: opts.Language, logger: logger}, nil
}

func (e *TesseractEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	cmd := exec.CommandContext(ctx, e.bin, "stdin", "stdout", "-l", e.language, "--psm", "6")
	cmd.Stdin = bytes.NewReader(image)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w, stderr: %s", err, stderr.String())
	}
	return string(output), nil
}

func (e *TesseractEngine) Close() error { return nil }
