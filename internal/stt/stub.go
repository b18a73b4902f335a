package stt

import "context"

// StubEngine returns a fixed utterance list without invoking any backend.
// Tests and dry runs use it in place of whisper.
type StubEngine struct {
	Utterances []Utterance
	Err        error
}

func (e *StubEngine) Transcribe(ctx context.Context, audioPath string) ([]Utterance, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	out := make([]Utterance, len(e.Utterances))
	copy(out, e.Utterances)
	return out, nil
}

func (e *StubEngine) Close() error { return nil }
