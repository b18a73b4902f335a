package ocr

import (
	"fmt"

	"go.uber.org/zap"
)

// New resolves the configured engine name to an instance. The set of engines
// is closed; selection happens once at run start and never mid-run.
func New(name string, opts Options, logger *zap.Logger) (Engine, error) {
	switch name {
	case "tesseract":
		return NewTesseractEngine(opts, logger)
	case "stub":
		return &StubEngine{}, nil
	default:
		return nil, fmt.Errorf("unknown ocr engine %q", name)
	}
}
