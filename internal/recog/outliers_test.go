package recog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glyph-recog/internal/bitmap"
)

// thinLine returns a 2px-wide vertical bar in a canvas of the given
// height, a shape far from any solid block.
func thinLine(h int) *Glyph {
	b := blob(2, h)
	return &Glyph{Image: b, Label: "s"}
}

func TestRemoveOutliersRejectsEmptyInput(t *testing.T) {
	_, _, _, err := RemoveOutliers(nil, 0, 0, nil)
	assert.Error(t, err)
}

// Nine identical solid samples and one thin bar under the same label: the
// bar correlates poorly with the class average and must be the one
// removed.
func TestRemoveOutliersDropsTheMisfit(t *testing.T) {
	var glyphs []Glyph
	for i := 0; i < 9; i++ {
		glyphs = append(glyphs, Glyph{Image: blob(20, 30), Label: "s"})
	}
	glyphs = append(glyphs, *thinLine(30))

	diag := &Diagnostics{}
	kept, removed, scores, err := RemoveOutliers(glyphs, 0, 0, diag)
	require.NoError(t, err)

	assert.Len(t, kept, 9)
	require.Len(t, removed, 1)
	require.Len(t, scores, 1)
	assert.Equal(t, 2, removed[0].Image.W, "the thin bar is the outlier")
	assert.Less(t, scores[0], 0.75)
	assert.Len(t, diag.Removed, 1)
}

// The threshold is capped at the best score of the class, so even a class
// of mutually dissimilar samples keeps at least its best one.
func TestRemoveOutliersKeepsAtLeastTheBestSample(t *testing.T) {
	glyphs := []Glyph{
		{Image: blob(20, 30), Label: "x"},
		*thinLine(30),
	}
	glyphs[1].Label = "x"

	kept, _, _, err := RemoveOutliers(glyphs, 0.99, 1.0, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, kept)
}

// bandPattern fills full-height 2px column bands at columns a and 24-a
// of a 26x4 canvas. Patterns for distinct a values are pairwise disjoint
// with wide gaps yet share the same centroid.
func bandPattern(a int) *bitmap.Bitmap {
	b := bitmap.New(26, 4)
	cols := []int{a, a + 1}
	if m := 24 - a; m != a {
		cols = append(cols, m, m+1)
	}
	for _, x := range cols {
		for y := 0; y < 4; y++ {
			b.Set(x, y)
		}
	}
	return b
}

// Four pairwise-disjoint patterns with a shared centroid average to an
// empty template (no pixel reaches the n/2 majority). The filter must
// keep every sample of such a class, not lose the class.
func TestRemoveOutliersKeepsClassWithEmptyAverage(t *testing.T) {
	glyphs := []Glyph{
		{Image: bandPattern(0), Label: "w"},
		{Image: bandPattern(4), Label: "w"},
		{Image: bandPattern(8), Label: "w"},
		{Image: bandPattern(12), Label: "w"},
	}

	kept, removed, scores, err := RemoveOutliers(glyphs, 0, 0, nil)
	require.NoError(t, err)
	assert.Len(t, kept, 4)
	assert.Empty(t, removed)
	assert.Empty(t, scores)
	for _, g := range kept {
		assert.Equal(t, "w", g.Label)
		assert.Equal(t, 4, g.Image.H, "kept glyphs stay at original resolution")
	}
}

// Kept glyphs come back at their original resolution, not at the scoring
// model's template height.
func TestRemoveOutliersReturnsUnscaledGlyphs(t *testing.T) {
	var glyphs []Glyph
	for i := 0; i < 4; i++ {
		glyphs = append(glyphs, Glyph{Image: blob(20, 30), Label: "s"})
	}
	kept, _, _, err := RemoveOutliers(glyphs, 0, 0, nil)
	require.NoError(t, err)
	require.NotEmpty(t, kept)
	assert.Equal(t, 30, kept[0].Image.H)
	assert.Equal(t, 20, kept[0].Image.W)
}
