package recog

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"glyph-recog/internal/bitmap"
	"glyph-recog/pkg/geometry"
)

// ComputeAverages synthesizes the unscaled and modified average templates
// for every class, then derives the size range and splitting bounds from
// the unscaled averages. Requires a finalized model; results are cached
// and subsequent calls are no-ops until ForceAverages.
func (r *Recog) ComputeAverages() error {
	if !r.trainDone {
		return fmt.Errorf("cannot average an accumulating model: %w", ErrNotFinalized)
	}
	if r.aveDone {
		return nil
	}
	if len(r.classes) == 0 {
		return fmt.Errorf("no classes to average: %w", ErrEmptyClass)
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for _, cls := range r.classes {
		cls := cls
		g.Go(func() error {
			var err error
			cls.AvgUnscaled, err = averageTemplate(cls, false)
			if err != nil {
				return fmt.Errorf("class %q unscaled average: %w", cls.Label, err)
			}
			cls.AvgModified, err = averageTemplate(cls, true)
			if err != nil {
				return fmt.Errorf("class %q modified average: %w", cls.Label, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	r.computeSplitBounds()
	r.aveDone = true
	return nil
}

// ForceAverages clears the average cache so the next ComputeAverages
// recomputes, for use after the sample set changed.
func (r *Recog) ForceAverages() {
	r.aveDone = false
}

// averageTemplate builds one class average: samples are summed with their
// centroids aligned at the mean centroid, and a pixel is kept where at
// least half the samples agree. A single sample keeps only its stable
// pixels against the rounding of the alignment (the threshold for n == 1
// is computed as if two samples were present). An empty class yields a
// 1x1 degenerate placeholder so indices stay dense.
func averageTemplate(cls *Class, modified bool) (Template, error) {
	n := len(cls.Samples)
	if n > maxAvgSamples {
		n = maxAvgSamples
	}
	if n == 0 {
		return Template{Image: bitmap.New(1, 1)}, nil
	}

	images := make([]*bitmap.Bitmap, n)
	cents := make([]geometry.Point2D, n)
	for i := 0; i < n; i++ {
		v := cls.Samples[i].Unscaled
		if modified {
			v = cls.Samples[i].Modified
		}
		images[i] = v.Image
		cents[i] = v.Centroid
	}

	acc, _, err := bitmap.AccumulateAligned(images, cents)
	if err != nil {
		return Template{}, err
	}

	nn := n
	if nn == 1 {
		nn = 2
	}
	thresh := nn / 2
	if thresh < 1 {
		thresh = 1
	}
	avg := acc.Threshold(int32(thresh))
	avg.Invert()

	cent, area := avg.Centroid()
	return Template{Image: avg, Centroid: cent, Area: area}, nil
}

// computeSplitBounds records the size range of the plausible unscaled
// averages and derives the bounds used to validate symbol splitting.
// Averages narrower or shorter than 5px are treated as noise.
func (r *Recog) computeSplitBounds() {
	r.minW, r.minH, r.maxW, r.maxH = 0, 0, 0, 0
	first := true
	for _, cls := range r.classes {
		t := cls.AvgUnscaled
		if t.Degenerate() || t.Image.W < 5 || t.Image.H < 5 {
			continue
		}
		if first {
			r.minW, r.minH = t.Image.W, t.Image.H
			r.maxW, r.maxH = t.Image.W, t.Image.H
			first = false
			continue
		}
		if t.Image.W < r.minW {
			r.minW = t.Image.W
		}
		if t.Image.H < r.minH {
			r.minH = t.Image.H
		}
		if t.Image.W > r.maxW {
			r.maxW = t.Image.W
		}
		if t.Image.H > r.maxH {
			r.maxH = t.Image.H
		}
	}

	r.MinSplitW = r.minW - 5
	if r.MinSplitW < 5 {
		r.MinSplitW = 5
	}
	r.MinSplitH = r.minH - 5
	if r.MinSplitH < 5 {
		r.MinSplitH = 5
	}
	r.MaxSplitH = r.maxH + 12
}
