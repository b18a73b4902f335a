package entity

// SourceKind tells which strategy produced a segment.
type SourceKind string

const (
	SourceSpeech SourceKind = "speech"
	SourceScene  SourceKind = "scene"
)

// Segment is a time interval of interest within a video: one spoken utterance
// or one detected scene. Times are seconds from the start of the video.
// Segments are immutable once produced and ordered by Start within a run.
type Segment struct {
	Start float64
	End   float64
	Kind  SourceKind

	// Caption is pre-attached by the speech strategy. Scene segments leave it
	// empty and defer text recovery to OCR.
	Caption string

	// Keyframes holds the candidate timestamps chosen by the scene strategy.
	// Empty for speech segments, which sample at the midpoint.
	Keyframes []float64
}

func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Midpoint is the sampling timestamp for speech segments. Captions correlate
// most reliably with mid-utterance framing, away from transition frames.
func (s Segment) Midpoint() float64 {
	return s.Start + s.Duration()/2
}

// CandidateTimestamps returns the timestamps the sampler should decode for
// this segment, in temporal order.
func (s Segment) CandidateTimestamps() []float64 {
	if s.Kind == SourceScene && len(s.Keyframes) > 0 {
		out := make([]float64, len(s.Keyframes))
		copy(out, s.Keyframes)
		return out
	}
	return []float64{s.Midpoint()}
}
