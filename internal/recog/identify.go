package recog

import (
	"fmt"

	"glyph-recog/internal/bitmap"
)

// IdentifyAverages matches a single symbol bitmap against every class
// average and returns the dense index, correlation score and label of the
// best match. The input must already be in the model's modified
// convention (scaled and stroke-normalized as the model requires).
// Averages are computed lazily on first use.
func (r *Recog) IdentifyAverages(bm *bitmap.Bitmap) (int, float64, string, error) {
	if bm == nil {
		return -1, 0, "", fmt.Errorf("nil input: %w", ErrEmptyRegion)
	}
	if !r.aveDone {
		if err := r.ComputeAverages(); err != nil {
			return -1, 0, "", err
		}
	}

	cent, area := bm.Centroid()
	if area == 0 {
		return -1, 0, "", fmt.Errorf("input has no foreground: %w", ErrEmptyRegion)
	}

	bestIdx, bestScore := -1, -1.0
	for _, cls := range r.classes {
		avg := cls.AvgModified
		if avg.Degenerate() {
			continue
		}
		score := bitmap.CorrelationScore(
			avg.Image, bm,
			avg.Area, area,
			avg.Centroid.X-cent.X,
			avg.Centroid.Y-cent.Y,
			1, r.Params.MaxYShift,
		)
		if score > bestScore {
			bestIdx, bestScore = cls.Index, score
		}
	}
	if bestIdx < 0 {
		return -1, 0, "", fmt.Errorf("no usable class averages: %w", ErrEmptyClass)
	}
	return bestIdx, bestScore, r.classes[bestIdx].Label, nil
}
