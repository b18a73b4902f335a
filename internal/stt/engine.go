package stt

import "context"

// Utterance is one transcribed span of speech. Times are seconds from the
// start of the audio track.
type Utterance struct {
	Start float64
	End   float64
	Text  string
}

// Engine transcribes an extracted audio track into ordered utterances.
// Implementations load their model once at construction time and are
// read-only afterwards, so a single instance can be shared by a run.
type Engine interface {
	Transcribe(ctx context.Context, audioPath string) ([]Utterance, error)
	Close() error
}

// Options configures engine construction.
type Options struct {
	Bin       string
	ModelPath string
	Language  string
}
