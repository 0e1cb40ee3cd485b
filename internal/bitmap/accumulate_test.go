package bitmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glyph-recog/pkg/geometry"
)

func TestAccumulateAlignedRejectsEmptyInput(t *testing.T) {
	_, _, err := AccumulateAligned(nil, nil)
	assert.Error(t, err)
}

func TestAccumulateAlignedRejectsMismatchedCentroids(t *testing.T) {
	_, _, err := AccumulateAligned([]*Bitmap{New(2, 2)}, nil)
	assert.Error(t, err)
}

// A single sample aligned at its own centroid must accumulate unshifted.
func TestAccumulateAlignedSingleSampleIsIdentity(t *testing.T) {
	b := fromRows(
		".#.",
		"###",
		".#.",
	)
	cent, _ := b.Centroid()

	acc, avg, err := AccumulateAligned([]*Bitmap{b}, []geometry.Point2D{cent})
	require.NoError(t, err)
	assert.Equal(t, cent, avg)

	got := acc.Threshold(1)
	got.Invert()
	assert.True(t, b.Equal(got))
}

// Identical samples reinforce each other, so the majority-thresholded
// accumulator reproduces the common shape.
func TestAccumulateAlignedIdenticalSamplesReproduceShape(t *testing.T) {
	shape := fromRows(
		"###",
		"#.#",
		"###",
	)
	samples := make([]*Bitmap, 4)
	cents := make([]geometry.Point2D, 4)
	for i := range samples {
		samples[i] = shape.Clone()
		cents[i], _ = samples[i].Centroid()
	}

	acc, _, err := AccumulateAligned(samples, cents)
	require.NoError(t, err)

	got := acc.Threshold(int32(len(samples) / 2))
	got.Invert()
	assert.True(t, shape.Equal(got))
}

func TestThresholdKeepsMajorityPixels(t *testing.T) {
	acc := NewAccumulator(2, 1)
	a := fromRows("##")
	b := fromRows("#.")
	acc.Add(a, 0, 0)
	acc.Add(b, 0, 0)

	got := acc.Threshold(2)
	got.Invert()
	assert.True(t, got.Get(0, 0))
	assert.False(t, got.Get(1, 0))
}
