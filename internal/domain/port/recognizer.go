package port

import "context"

// TextRecognizer recovers the text associated with one candidate frame.
// An image with no discoverable text yields an empty caption and a nil error.
type TextRecognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}
