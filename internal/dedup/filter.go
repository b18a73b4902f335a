package dedup

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/domain/entity"
	"github.com/taconotsandwich/meme-i-recalled-from-a-video/internal/ocr"
)

// Mode selects which similarity signals the filter consults.
type Mode string

const (
	ModeSSIM Mode = "ssim"
	ModeText Mode = "text"
	ModeBoth Mode = "both"
)

// BothSemantics resolves the ambiguity in how ModeBoth combines the two keep
// decisions. SemanticsAll keeps a record only when both single-mode tests
// would keep it; SemanticsAny keeps it when either would.
type BothSemantics string

const (
	SemanticsAll BothSemantics = "all"
	SemanticsAny BothSemantics = "any"
)

type Config struct {
	Mode          Mode
	BothSemantics BothSemantics
	SSIMThreshold float64
	TextThreshold float64
	// OnlyWithText additionally drops kept records whose caption carries no
	// meaningful content.
	OnlyWithText bool
}

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSSIM, ModeText, ModeBoth:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown dedup mode %q", s)
	}
}

func ParseBothSemantics(s string) (BothSemantics, error) {
	switch BothSemantics(s) {
	case SemanticsAll, SemanticsAny:
		return BothSemantics(s), nil
	default:
		return "", fmt.Errorf("unknown dedup both-semantics %q", s)
	}
}

// Filter folds over the ordered records carrying the last kept record as
// explicit state and returns the kept subset in the original order. The
// comparison baseline only advances when a record is kept, so a run of
// near-duplicates collapses to its first member.
func Filter(records []entity.Record, cfg Config, logger *zap.Logger) []entity.Record {
	kept := make([]entity.Record, 0, len(records))

	var (
		lastFrame   grayFrame
		lastCaption string
		haveKept    bool
	)

	for _, rec := range records {
		if cfg.OnlyWithText && !ocr.IsMeaningful(rec.Caption) {
			logger.Debug("record dropped: no meaningful text",
				zap.Float64("timestamp", rec.Timestamp))
			continue
		}

		if !haveKept {
			// The first surviving record is always kept and becomes the
			// baseline for the chained comparisons.
			if cfg.Mode != ModeText {
				frame, err := normalizeFrame(rec.Image)
				if err != nil {
					logger.Warn("undecodable frame dropped", zap.Error(err),
						zap.Float64("timestamp", rec.Timestamp))
					continue
				}
				lastFrame = frame
			}
			kept = append(kept, rec)
			lastCaption = rec.Caption
			haveKept = true
			continue
		}

		keep, visual, frame := decide(rec, lastFrame, lastCaption, cfg, logger)
		if !keep {
			logger.Debug("record dropped as near-duplicate",
				zap.Float64("timestamp", rec.Timestamp),
				zap.Float64("similarity", visual))
			continue
		}

		rec.Similarity = visual
		kept = append(kept, rec)
		if frame != nil {
			lastFrame = frame
		}
		lastCaption = rec.Caption
		haveKept = true
	}

	return kept
}

// decide evaluates one record against the last kept baseline. The returned
// frame is the normalized representation of the record when it was computed,
// so the fold can reuse it as the next baseline.
func decide(rec entity.Record, lastFrame grayFrame, lastCaption string, cfg Config, logger *zap.Logger) (keep bool, visual float64, frame grayFrame) {
	keptByText := func() bool {
		// Absence of text is not evidence of duplication: empty captions are
		// never dropped by the text comparison.
		if ocr.NormalizeForComparison(rec.Caption) == "" {
			return true
		}
		return TextSimilarity(rec.Caption, lastCaption) < cfg.TextThreshold
	}

	keptBySSIM := func() (bool, float64, grayFrame) {
		f, err := normalizeFrame(rec.Image)
		if err != nil {
			// An undecodable frame cannot be compared; treat it as distinct
			// rather than discarding it on a broken signal.
			logger.Warn("frame normalization failed, keeping record", zap.Error(err))
			return true, 0, nil
		}
		score := ssim(lastFrame, f)
		return score < cfg.SSIMThreshold, score, f
	}

	switch cfg.Mode {
	case ModeText:
		return keptByText(), 0, nil
	case ModeSSIM:
		keep, visual, frame = keptBySSIM()
		return keep, visual, frame
	default: // ModeBoth
		visualKeep, score, f := keptBySSIM()
		textKeep := keptByText()
		if cfg.BothSemantics == SemanticsAny {
			return visualKeep || textKeep, score, f
		}
		return visualKeep && textKeep, score, f
	}
}
