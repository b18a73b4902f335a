package ocr

import "context"

// StubEngine maps image bytes to canned text, keyed by image length when no
// exact match exists. Tests use it to exercise the pipeline without a real
// OCR install.
type StubEngine struct {
	// Text is returned for every image when ByImage has no entry.
	Text    string
	ByImage map[string]string
	Err     error
}

func (e *StubEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	if e.Err != nil {
		return "", e.Err
	}
	if e.ByImage != nil {
		if text, ok := e.ByImage[string(image)]; ok {
			return text, nil
		}
	}
	return e.Text, nil
}

func (e *StubEngine) Close() error { return nil }
