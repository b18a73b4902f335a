package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/disintegration/imaging"
)

// Region selects which part of the frame the recognizer reads. Subtitled
// footage usually carries its text in the bottom third.
type Region string

const (
	RegionAll    Region = "all"
	RegionTop    Region = "top"
	RegionBottom Region = "bottom"
)

func ParseRegion(s string) (Region, error) {
	switch Region(s) {
	case RegionAll, RegionTop, RegionBottom:
		return Region(s), nil
	default:
		return "", fmt.Errorf("unknown text region %q", s)
	}
}

// Recognizer applies the configured region crop before handing the frame to
// the OCR engine, and normalizes whitespace in whatever comes back.
type Recognizer struct {
	engine Engine
	region Region
}

func NewRecognizer(engine Engine, region Region) *Recognizer {
	return &Recognizer{engine: engine, region: region}
}

func (r *Recognizer) Recognize(ctx context.Context, img []byte) (string, error) {
	cropped, err := r.crop(img)
	if err != nil {
		return "", err
	}
	text, err := r.engine.Recognize(ctx, cropped)
	if err != nil {
		return "", err
	}
	return NormalizeWhitespace(text), nil
}

func (r *Recognizer) crop(img []byte) ([]byte, error) {
	if r.region == RegionAll {
		return img, nil
	}

	decoded, err := imaging.Decode(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("decode frame for crop: %w", err)
	}

	bounds := decoded.Bounds()
	third := bounds.Dy() / 3
	var rect image.Rectangle
	switch r.region {
	case RegionTop:
		rect = image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Min.Y+third)
	case RegionBottom:
		rect = image.Rect(bounds.Min.X, bounds.Max.Y-third, bounds.Max.X, bounds.Max.Y)
	}
	cropped := imaging.Crop(decoded, rect)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, cropped, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode cropped frame: %w", err)
	}
	return buf.Bytes(), nil
}
