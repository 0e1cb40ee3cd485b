package recog

import (
	"fmt"

	"glyph-recog/internal/bitmap"
	"glyph-recog/internal/imaging"
)

// ModifyTemplate applies the recognizer's template shaping to an unscaled
// bitmap: scaling to the configured size, then stroke-width normalization
// when a line width is set. Scaling is skipped when the bitmap already
// matches the target on both axes.
func (r *Recog) ModifyTemplate(bm *bitmap.Bitmap) (*bitmap.Bitmap, error) {
	out := bm
	skipScale := (r.Params.ScaleW == 0 || r.Params.ScaleW == bm.W) &&
		(r.Params.ScaleH == 0 || r.Params.ScaleH == bm.H)
	if !skipScale {
		out = imaging.ScaleToSize(bm, r.Params.ScaleW, r.Params.ScaleH)
	}
	if r.Params.LineWidth > 0 {
		norm, err := imaging.NormalizeStrokeWidth(out, r.Params.LineWidth)
		if err != nil {
			return nil, fmt.Errorf("normalizing stroke width: %w", err)
		}
		out = norm
	}
	if out == bm {
		out = bm.Clone()
	}
	return out, nil
}

// TrainingFinished closes the accumulation phase. With modify set, every
// sample gets its modified variant derived from the unscaled one;
// otherwise the modified variant aliases the unscaled data. Idempotent.
func (r *Recog) TrainingFinished(modify bool) error {
	if r.trainDone {
		return nil
	}
	for _, cls := range r.classes {
		for _, s := range cls.Samples {
			if modify {
				mod, err := r.ModifyTemplate(s.Unscaled.Image)
				if err != nil {
					return fmt.Errorf("finalizing class %q: %w", cls.Label, err)
				}
				cent, area := mod.Centroid()
				s.Modified = Variant{Image: mod, Centroid: cent, Area: area}
			} else {
				s.Modified = s.Unscaled
			}
		}
	}
	// Release the slack pre-allocated for the class cap.
	trimmed := make([]*Class, len(r.classes))
	copy(trimmed, r.classes)
	r.classes = trimmed
	r.accumulating = false
	r.trainDone = true
	return nil
}
