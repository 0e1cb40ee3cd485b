package recog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeAveragesRequiresFinalizedTraining(t *testing.T) {
	r := New(DefaultParams())
	require.NoError(t, r.AddSample(blob(4, 4), "a", -1))
	assert.ErrorIs(t, r.ComputeAverages(), ErrNotFinalized)
}

func TestComputeAveragesEmptyModelFails(t *testing.T) {
	r := New(DefaultParams())
	require.NoError(t, r.TrainingFinished(false))
	assert.ErrorIs(t, r.ComputeAverages(), ErrEmptyClass)
}

// With one sample in a class the average must reproduce the sample: the
// threshold is computed as if two samples were present, and every stable
// pixel survives it.
func TestComputeAveragesSingleSampleReproducesSample(t *testing.T) {
	sample := glyphFromRows(
		".##.",
		"#..#",
		"#..#",
		".##.",
	)
	r := New(DefaultParams())
	require.NoError(t, r.AddSample(sample, "o", -1))
	require.NoError(t, r.TrainingFinished(false))
	require.NoError(t, r.ComputeAverages())

	avg := r.Class(0).AvgUnscaled
	require.False(t, avg.Degenerate())
	assert.True(t, sample.Equal(avg.Image))
	assert.Equal(t, sample.CountForeground(), avg.Area)
}

// Identical samples must average to the shared shape exactly.
func TestComputeAveragesIdenticalSamples(t *testing.T) {
	shape := glyphFromRows(
		"###",
		".#.",
		".#.",
	)
	r := New(DefaultParams())
	for i := 0; i < 5; i++ {
		require.NoError(t, r.AddSample(shape.Clone(), "t", -1))
	}
	require.NoError(t, r.TrainingFinished(false))
	require.NoError(t, r.ComputeAverages())

	avg := r.Class(0).AvgUnscaled
	assert.True(t, shape.Equal(avg.Image))
}

// A second ComputeAverages call must be a no-op; the cached templates stay
// bit-identical.
func TestComputeAveragesIsIdempotent(t *testing.T) {
	r := New(DefaultParams())
	require.NoError(t, r.AddSample(blob(6, 8), "a", -1))
	require.NoError(t, r.TrainingFinished(false))
	require.NoError(t, r.ComputeAverages())

	first := r.Class(0).AvgUnscaled.Image
	require.NoError(t, r.ComputeAverages())
	assert.Same(t, first, r.Class(0).AvgUnscaled.Image)

	r.ForceAverages()
	require.NoError(t, r.ComputeAverages())
	assert.True(t, first.Equal(r.Class(0).AvgUnscaled.Image))
}

func TestComputeAveragesDerivesSplitBounds(t *testing.T) {
	r := New(DefaultParams())
	require.NoError(t, r.AddSample(blob(8, 12), "a", -1))
	require.NoError(t, r.AddSample(blob(10, 20), "b", -1))
	require.NoError(t, r.TrainingFinished(false))
	require.NoError(t, r.ComputeAverages())

	assert.Equal(t, 5, r.MinSplitW, "8 - 5 = 3 floors at 5")
	assert.Equal(t, 7, r.MinSplitH)
	assert.Equal(t, 32, r.MaxSplitH)
}

// Averages narrower than 5px are excluded from the size range.
func TestComputeAveragesIgnoresTinyAverages(t *testing.T) {
	r := New(DefaultParams())
	require.NoError(t, r.AddSample(blob(2, 2), "i", -1))
	require.NoError(t, r.AddSample(blob(10, 10), "a", -1))
	require.NoError(t, r.TrainingFinished(false))
	require.NoError(t, r.ComputeAverages())

	assert.Equal(t, 5, r.MinSplitW)
	assert.Equal(t, 5, r.MinSplitH)
	assert.Equal(t, 22, r.MaxSplitH)
}
