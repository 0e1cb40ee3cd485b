package bitmap

import (
	"fmt"

	"glyph-recog/pkg/geometry"
)

// Accumulator is a per-pixel integer sum image built from aligned samples.
type Accumulator struct {
	W, H   int
	counts []int32
}

// NewAccumulator creates a zeroed accumulator of the given dimensions.
func NewAccumulator(w, h int) *Accumulator {
	return &Accumulator{W: w, H: h, counts: make([]int32, w*h)}
}

// Add sums src into the accumulator with its top-left corner at (dx, dy).
// Pixels falling outside the accumulator are dropped.
func (a *Accumulator) Add(src *Bitmap, dx, dy int) {
	for y := 0; y < src.H; y++ {
		ty := y + dy
		if ty < 0 || ty >= a.H {
			continue
		}
		for x := 0; x < src.W; x++ {
			tx := x + dx
			if tx < 0 || tx >= a.W {
				continue
			}
			if src.pix[y*src.W+x] != 0 {
				a.counts[ty*a.W+tx]++
			}
		}
	}
}

// Threshold returns a bitmap with foreground where the accumulated count
// is below thresh. The sum convention treats high counts as background
// until the caller inverts the result.
func (a *Accumulator) Threshold(thresh int32) *Bitmap {
	out := New(a.W, a.H)
	for i, c := range a.counts {
		if c < thresh {
			out.pix[i] = 1
		}
	}
	return out
}

// AccumulateAligned translates every sample so its centroid lands on the
// average centroid of the set, and sums the translated samples into an
// accumulator sized to the largest sample. It returns the accumulator and
// the average centroid. At most the first 256 samples are used; len(cents)
// must equal len(samples).
func AccumulateAligned(samples []*Bitmap, cents []geometry.Point2D) (*Accumulator, geometry.Point2D, error) {
	if len(samples) == 0 {
		return nil, geometry.Point2D{}, fmt.Errorf("no samples to accumulate")
	}
	if len(cents) != len(samples) {
		return nil, geometry.Point2D{}, fmt.Errorf("centroid count %d differs from sample count %d",
			len(cents), len(samples))
	}
	n := len(samples)
	if n > 256 {
		n = 256
	}

	var avg geometry.Point2D
	for i := 0; i < n; i++ {
		avg.X += cents[i].X
		avg.Y += cents[i].Y
	}
	avg.X /= float64(n)
	avg.Y /= float64(n)

	maxW, maxH := 0, 0
	for i := 0; i < n; i++ {
		if samples[i].W > maxW {
			maxW = samples[i].W
		}
		if samples[i].H > maxH {
			maxH = samples[i].H
		}
	}

	acc := NewAccumulator(maxW, maxH)
	for i := 0; i < n; i++ {
		// Shifting by (avg - cent) places the sample centroid at the average.
		dx := int(avg.X - cents[i].X)
		dy := int(avg.Y - cents[i].Y)
		acc.Add(samples[i], dx, dy)
	}
	return acc, avg, nil
}
