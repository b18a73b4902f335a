package ocr

import "context"

// Engine runs optical character recognition over one encoded image.
// Implementations are read-only after construction and safe for concurrent
// use by the pipeline workers.
type Engine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
	Close() error
}

// Options configures engine construction.
type Options struct {
	Bin      string
	Language string
}
