package recog

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"glyph-recog/internal/bitmap"
)

// Default outlier-filter knobs: the absolute correlation floor a kept
// sample must reach, and the fraction of each class that must survive.
const (
	defaultOutlierMinScore = 0.75
	defaultOutlierMinFract = 0.5
)

// Matching tolerances used when scoring samples against class averages.
const (
	scoreTolX = 5
	scoreTolY = 5
)

// RemoveOutliers scores every glyph against its class average and drops
// the poor matches. A throwaway height-normalized model is trained from
// the glyphs so that scoring happens in a size-independent space; the
// returned kept set contains the original unscaled glyphs.
//
// minScore is the correlation floor (<= 0 selects 0.75); minFract is the
// per-class retention fraction (<= 0 selects 0.5); both are clamped to 1.
// The per-class threshold is min(maxScore, min(minScore, rankScore)),
// where rankScore is the score at the (1 - minFract) quantile, so at
// least the best sample of every class always survives.
func RemoveOutliers(glyphs []Glyph, minScore, minFract float64, diag *Diagnostics) (kept, removed []Glyph, scores []float64, err error) {
	if len(glyphs) == 0 {
		return nil, nil, nil, fmt.Errorf("no glyphs to filter")
	}
	if minScore <= 0 {
		minScore = defaultOutlierMinScore
	}
	if minScore > 1 {
		minScore = 1
	}
	if minFract <= 0 {
		minFract = defaultOutlierMinFract
	}
	if minFract > 1 {
		minFract = 1
	}

	scratch, err := NewFromGlyphs(glyphs, Params{
		ScaleH:    40,
		Threshold: 128,
		MaxYShift: 1,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("building scoring model: %w", err)
	}
	if err := scratch.ComputeAverages(); err != nil {
		return nil, nil, nil, fmt.Errorf("averaging scoring model: %w", err)
	}

	for ci := 0; ci < scratch.NumClasses(); ci++ {
		cls := scratch.Class(ci)
		avg := cls.AvgModified
		if avg.Degenerate() {
			// No pixel reached the majority threshold, so every sample
			// would score 0 and the max-score cap keeps the whole class.
			for _, s := range cls.Samples {
				kept = append(kept, Glyph{Image: s.Unscaled.Image, Label: cls.Label})
			}
			continue
		}

		clsScores := make([]float64, len(cls.Samples))
		for i, s := range cls.Samples {
			clsScores[i] = bitmap.CorrelationScore(
				avg.Image, s.Modified.Image,
				avg.Area, s.Modified.Area,
				avg.Centroid.X-s.Modified.Centroid.X,
				avg.Centroid.Y-s.Modified.Centroid.Y,
				scoreTolX, scoreTolY,
			)
		}

		sorted := append([]float64(nil), clsScores...)
		sort.Float64s(sorted)
		rank := stat.Quantile(1-minFract, stat.Empirical, sorted, nil)
		thresh := minScore
		if rank < thresh {
			thresh = rank
		}
		if best := floats.Max(clsScores); best < thresh {
			thresh = best
		}

		for i, s := range cls.Samples {
			g := Glyph{Image: s.Unscaled.Image, Label: cls.Label}
			if clsScores[i] >= thresh {
				kept = append(kept, g)
				continue
			}
			removed = append(removed, g)
			scores = append(scores, clsScores[i])
			if diag != nil {
				diag.AddRemovedOutlier(g, clsScores[i])
			}
		}
	}
	return kept, removed, scores, nil
}
