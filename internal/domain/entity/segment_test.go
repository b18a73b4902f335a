package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegmentMidpoint(t *testing.T) {
	seg := Segment{Start: 10, End: 12}
	assert.Equal(t, 2.0, seg.Duration())
	assert.Equal(t, 11.0, seg.Midpoint())
}

func TestCandidateTimestampsSpeechUsesMidpoint(t *testing.T) {
	seg := Segment{Start: 4, End: 6, Kind: SourceSpeech}
	assert.Equal(t, []float64{5}, seg.CandidateTimestamps())
}

func TestCandidateTimestampsSceneUsesKeyframes(t *testing.T) {
	seg := Segment{Start: 0, End: 10, Kind: SourceScene, Keyframes: []float64{0, 3.3, 6.6}}
	assert.Equal(t, []float64{0, 3.3, 6.6}, seg.CandidateTimestamps())
}

func TestCandidateTimestampsSceneWithoutKeyframesFallsBack(t *testing.T) {
	seg := Segment{Start: 2, End: 4, Kind: SourceScene}
	assert.Equal(t, []float64{3}, seg.CandidateTimestamps())
}
