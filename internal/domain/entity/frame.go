package entity

// VideoInfo is what ffprobe reports about a source video.
type VideoInfo struct {
	Duration float64
	FPS      float64
	Width    int
	Height   int
}

// CandidateFrame is one decoded frame proposed as the visual representative of
// a segment. Seq is the dispatch order across the whole run and is what the
// reorder stage keys on; it is not the final record ordinal.
type CandidateFrame struct {
	Seq        int
	SegmentIdx int
	Timestamp  float64
	Image      []byte
}

// Record is a caption+image pairing considered for the final searchable
// output. Ordinal is assigned over kept records only, so it is monotonic and
// gapless in the emitted script. Similarity carries the score that the
// deduplication fold computed against the previous kept record, for audit.
type Record struct {
	Ordinal    int
	Timestamp  float64
	Caption    string
	ImagePath  string
	Image      []byte
	Similarity float64
}
