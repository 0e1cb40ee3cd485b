package recog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glyph-recog/internal/bitmap"
	"glyph-recog/pkg/geometry"
)

// glyphFromRows builds a bitmap from a textual raster, '#' marking
// foreground.
func glyphFromRows(rows ...string) *bitmap.Bitmap {
	b := bitmap.New(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, c := range row {
			if c == '#' {
				b.Set(x, y)
			}
		}
	}
	return b
}

// blob returns a solid w x h glyph.
func blob(w, h int) *bitmap.Bitmap {
	b := bitmap.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b.Set(x, y)
		}
	}
	return b
}

func TestAddSampleAssignsDenseIndices(t *testing.T) {
	r := New(DefaultParams())
	require.NoError(t, r.AddSample(blob(4, 6), "a", -1))
	require.NoError(t, r.AddSample(blob(4, 6), "b", -1))
	require.NoError(t, r.AddSample(blob(5, 6), "a", -1))

	assert.Equal(t, 2, r.NumClasses())
	assert.Equal(t, 3, r.NumSamples())
	assert.Equal(t, []string{"a", "b"}, r.Labels())
	assert.Equal(t, []int{2, 1}, r.SampleCounts())
	assert.Equal(t, 0, r.Class(0).Index)
	assert.Equal(t, 1, r.Class(1).Index)
}

func TestAddSampleRejectsEmptyLabel(t *testing.T) {
	r := New(DefaultParams())
	err := r.AddSample(blob(3, 3), "", -1)
	assert.ErrorIs(t, err, ErrNoLabel)
}

func TestAddSampleRejectsMultiSymbolLabel(t *testing.T) {
	r := New(DefaultParams())
	err := r.AddSample(blob(3, 3), "ab", -1)
	assert.ErrorIs(t, err, ErrLabelConversion)
}

func TestAddSampleForcedIndexAppendsAndReuses(t *testing.T) {
	r := New(DefaultParams())
	require.NoError(t, r.AddSample(blob(3, 3), "x", 0))
	require.NoError(t, r.AddSample(blob(3, 3), "x", 0))
	require.NoError(t, r.AddSample(blob(3, 3), "y", 1))

	assert.Equal(t, 2, r.NumClasses())
	assert.Equal(t, 2, len(r.Class(0).Samples))

	err := r.AddSample(blob(3, 3), "z", 5)
	assert.Error(t, err, "forced index beyond the next class must fail")
}

func TestAddSampleAfterFinalizationFails(t *testing.T) {
	r := New(DefaultParams())
	require.NoError(t, r.AddSample(blob(3, 3), "a", -1))
	require.NoError(t, r.TrainingFinished(false))

	err := r.AddSample(blob(3, 3), "b", -1)
	assert.ErrorIs(t, err, ErrTrainingDone)
}

func TestTrainingFinishedWithoutModifyAliasesUnscaled(t *testing.T) {
	r := New(DefaultParams())
	require.NoError(t, r.AddSample(blob(4, 4), "a", -1))
	require.NoError(t, r.TrainingFinished(false))

	s := r.Class(0).Samples[0]
	assert.True(t, s.Unscaled.Image.Equal(s.Modified.Image))
	assert.Equal(t, s.Unscaled.Area, s.Modified.Area)
}

func TestTrainingFinishedScalesModifiedVariant(t *testing.T) {
	r := New(Params{ScaleH: 8, Threshold: 128})
	require.NoError(t, r.AddSample(blob(8, 16), "a", -1))
	require.NoError(t, r.TrainingFinished(true))

	s := r.Class(0).Samples[0]
	assert.Equal(t, 16, s.Unscaled.Image.H)
	assert.Equal(t, 8, s.Modified.Image.H)
	assert.Equal(t, 4, s.Modified.Image.W)
}

func TestTrainingFinishedIsIdempotent(t *testing.T) {
	r := New(DefaultParams())
	require.NoError(t, r.AddSample(blob(4, 4), "a", -1))
	require.NoError(t, r.TrainingFinished(false))
	require.NoError(t, r.TrainingFinished(false))
	assert.True(t, r.TrainDone())
}

func TestNewFromGlyphsSkipsBadSamples(t *testing.T) {
	glyphs := []Glyph{
		{Image: blob(4, 6), Label: "a"},
		{Image: blob(4, 6), Label: ""},
		{Image: blob(4, 6), Label: "b"},
	}
	r, err := NewFromGlyphs(glyphs, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 2, r.NumSamples())
	assert.True(t, r.TrainDone())
}

func TestNewFromGlyphsAllBadFails(t *testing.T) {
	_, err := NewFromGlyphs([]Glyph{{Image: blob(2, 2), Label: ""}}, DefaultParams())
	assert.Error(t, err)
}

func TestExtractGlyphsRoundTripsSamples(t *testing.T) {
	r := New(DefaultParams())
	require.NoError(t, r.AddSample(glyphFromRows("#.", ".#"), "a", -1))
	require.NoError(t, r.AddSample(blob(3, 3), "b", -1))

	glyphs := r.ExtractGlyphs()
	require.Len(t, glyphs, 2)
	assert.Equal(t, "a", glyphs[0].Label)
	assert.Equal(t, "b", glyphs[1].Label)

	// Extracted glyphs are copies; mutating them must not touch the model.
	glyphs[0].Image.Clear(0, 0)
	assert.True(t, r.Class(0).Samples[0].Unscaled.Image.Get(0, 0))
}

func TestIngestSegmentsMismatchedCountStoresNothing(t *testing.T) {
	r := New(DefaultParams())
	region := glyphFromRows(
		"##..##",
		"##..##",
	)
	boxes := []geometry.RectInt{
		{X: 0, Y: 0, Width: 2, Height: 2},
		{X: 4, Y: 0, Width: 2, Height: 2},
	}
	diag := &Diagnostics{}

	err := r.ingestSegments(region, boxes, "abc", diag)
	assert.ErrorIs(t, err, ErrSegmentation)
	assert.Equal(t, 0, r.NumSamples(), "a failed segmentation must store nothing")
	assert.Len(t, diag.SegFailures, 1)
}

func TestIngestSegmentsStoresOneSymbolPerBox(t *testing.T) {
	r := New(DefaultParams())
	region := glyphFromRows(
		"##..##",
		"##..##",
	)
	boxes := []geometry.RectInt{
		{X: 0, Y: 0, Width: 2, Height: 2},
		{X: 4, Y: 0, Width: 2, Height: 2},
	}

	require.NoError(t, r.ingestSegments(region, boxes, "ab", nil))
	assert.Equal(t, 2, r.NumSamples())
	assert.Equal(t, []string{"a", "b"}, r.Labels())
}

func TestCharsetSizes(t *testing.T) {
	assert.Equal(t, 10, CharsetDigits.Size())
	assert.Equal(t, 26, CharsetUpperAlpha.Size())
	assert.Equal(t, 26, CharsetLowerAlpha.Size())
	assert.Equal(t, 7, CharsetUpperRoman.Size())
	assert.Equal(t, 0, CharsetUnknown.Size())
}
