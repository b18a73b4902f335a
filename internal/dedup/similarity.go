package dedup

import (
	"bytes"
	"fmt"

	"github.com/agnivade/levenshtein"
	"github.com/disintegration/imaging"

	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/ocr"
)

// Frames are compared on a fixed-size grayscale representation so that codec
// noise and resolution differences do not dominate the score.
const normSize = 64

// SSIM stabilization constants for 8-bit dynamic range.
const (
	ssimC1 = (0.01 * 255) * (0.01 * 255)
	ssimC2 = (0.03 * 255) * (0.03 * 255)
)

type grayFrame []float64

// normalizeFrame decodes an encoded frame and reduces it to the normSize
// grayscale plane the SSIM comparison runs on.
func normalizeFrame(img []byte) (grayFrame, error) {
	decoded, err := imaging.Decode(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	gray := imaging.Grayscale(imaging.Resize(decoded, normSize, normSize, imaging.Lanczos))

	plane := make(grayFrame, normSize*normSize)
	for y := 0; y < normSize; y++ {
		for x := 0; x < normSize; x++ {
			// After Grayscale, R carries the luminance.
			plane[y*normSize+x] = float64(gray.NRGBAAt(x, y).R)
		}
	}
	return plane, nil
}

// ssim computes the structural similarity of two normalized planes: 1.0 for
// identical frames, approaching 0.0 as structure diverges. Negative values
// from anti-correlated frames clamp to 0.
func ssim(a, b grayFrame) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	n := float64(len(a))

	var muA, muB float64
	for i := range a {
		muA += a[i]
		muB += b[i]
	}
	muA /= n
	muB /= n

	var varA, varB, cov float64
	for i := range a {
		da := a[i] - muA
		db := b[i] - muB
		varA += da * da
		varB += db * db
		cov += da * db
	}
	varA /= n - 1
	varB /= n - 1
	cov /= n - 1

	score := ((2*muA*muB + ssimC1) * (2*cov + ssimC2)) /
		((muA*muA + muB*muB + ssimC1) * (varA + varB + ssimC2))
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// TextSimilarity scores two captions on normalized edit distance: 1.0 for
// identical normalized text, 0.0 for completely different. Comparison runs on
// the punctuation-stripped lowercase form.
func TextSimilarity(a, b string) float64 {
	normA := ocr.NormalizeForComparison(a)
	normB := ocr.NormalizeForComparison(b)
	if normA == "" && normB == "" {
		return 1
	}
	if normA == "" || normB == "" {
		return 0
	}

	dist := levenshtein.ComputeDistance(normA, normB)
	longest := len([]rune(normA))
	if l := len([]rune(normB)); l > longest {
		longest = l
	}
	return 1 - float64(dist)/float64(longest)
}
