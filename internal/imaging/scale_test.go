package imaging

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glyph-recog/internal/bitmap"
)

// solidBlock builds a fully foreground bitmap.
func solidBlock(w, h int) *bitmap.Bitmap {
	g := image.NewGray(image.Rect(0, 0, w, h))
	return bitmap.FromGray(g, 128)
}

func TestScaleToSizeBothZeroReturnsCopy(t *testing.T) {
	b := solidBlock(7, 9)
	out := ScaleToSize(b, 0, 0)
	assert.True(t, b.Equal(out))
	out.Clear(0, 0)
	assert.True(t, b.Get(0, 0), "result must not alias the input")
}

func TestScaleToSizeExactDimensions(t *testing.T) {
	out := ScaleToSize(solidBlock(10, 20), 5, 8)
	assert.Equal(t, 5, out.W)
	assert.Equal(t, 8, out.H)
}

func TestScaleToSizeHeightOnlyPreservesAspect(t *testing.T) {
	out := ScaleToSize(solidBlock(30, 60), 0, 20)
	assert.Equal(t, 20, out.H)
	assert.Equal(t, 10, out.W)
}

func TestScaleToSizeSolidBlockStaysSolid(t *testing.T) {
	out := ScaleToSize(solidBlock(16, 16), 8, 8)
	require.Equal(t, 8, out.W)
	assert.Equal(t, out.W*out.H, out.CountForeground())
}

func TestScaleHorizontalStretch(t *testing.T) {
	out := ScaleHorizontal(solidBlock(10, 6), 1.2)
	assert.Equal(t, 12, out.W)
	assert.Equal(t, 6, out.H)
}

func TestScaleHorizontalNonPositiveFactorIsCopy(t *testing.T) {
	b := solidBlock(5, 5)
	out := ScaleHorizontal(b, 0)
	assert.True(t, b.Equal(out))
}
