package bitmap

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glyph-recog/pkg/geometry"
)

// fromRows builds a bitmap from a textual raster, '#' marking foreground.
func fromRows(rows ...string) *Bitmap {
	b := New(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, c := range row {
			if c == '#' {
				b.Set(x, y)
			}
		}
	}
	return b
}

func TestNewClampsDimensions(t *testing.T) {
	b := New(0, -3)
	assert.Equal(t, 1, b.W)
	assert.Equal(t, 1, b.H)
}

func TestGetSetOutOfBoundsAreSafe(t *testing.T) {
	b := New(4, 4)
	b.Set(-1, 0)
	b.Set(0, 99)
	assert.False(t, b.Get(-1, 0))
	assert.False(t, b.Get(0, 99))
	assert.Equal(t, 0, b.CountForeground())
}

func TestCentroidOfSinglePixel(t *testing.T) {
	b := New(5, 5)
	b.Set(2, 3)
	cent, area := b.Centroid()
	assert.Equal(t, 1, area)
	assert.Equal(t, 2.0, cent.X)
	assert.Equal(t, 3.0, cent.Y)
}

func TestCentroidOfEmptyBitmap(t *testing.T) {
	cent, area := New(5, 5).Centroid()
	assert.Equal(t, 0, area)
	assert.Equal(t, geometry.Point2D{}, cent)
}

func TestTightCropRemovesBorder(t *testing.T) {
	b := fromRows(
		".....",
		".##..",
		".##..",
		".....",
	)
	tight := b.TightCrop()
	require.NotNil(t, tight)
	assert.Equal(t, 2, tight.W)
	assert.Equal(t, 2, tight.H)
	assert.Equal(t, 4, tight.CountForeground())
}

func TestTightCropOfEmptyBitmapIsNil(t *testing.T) {
	assert.Nil(t, New(6, 6).TightCrop())
}

func TestCropOutsideBoundsIsNil(t *testing.T) {
	b := New(4, 4)
	assert.Nil(t, b.Crop(geometry.RectInt{X: 10, Y: 10, Width: 2, Height: 2}))
}

func TestCropClipsToBitmap(t *testing.T) {
	b := fromRows(
		"##",
		"##",
	)
	c := b.Crop(geometry.RectInt{X: 1, Y: 0, Width: 5, Height: 5})
	require.NotNil(t, c)
	assert.Equal(t, 1, c.W)
	assert.Equal(t, 2, c.H)
	assert.Equal(t, 2, c.CountForeground())
}

func TestInvertFlipsEveryPixel(t *testing.T) {
	b := fromRows(
		"#.",
		".#",
	)
	b.Invert()
	assert.False(t, b.Get(0, 0))
	assert.True(t, b.Get(1, 0))
	assert.True(t, b.Get(0, 1))
	assert.False(t, b.Get(1, 1))
}

func TestBlitDropsOutOfBoundsPixels(t *testing.T) {
	dst := New(3, 3)
	src := fromRows(
		"##",
		"##",
	)
	dst.Blit(src, 2, 2)
	assert.Equal(t, 1, dst.CountForeground())
	assert.True(t, dst.Get(2, 2))
}

func TestFromGrayMarksDarkPixels(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 2, 1))
	g.Pix[0] = 10
	g.Pix[1] = 200
	b := FromGray(g, 128)
	assert.True(t, b.Get(0, 0))
	assert.False(t, b.Get(1, 0))
}

func TestToGrayRoundTrip(t *testing.T) {
	b := fromRows(
		"#..",
		".#.",
	)
	back := FromGray(b.ToGray(), 128)
	assert.True(t, b.Equal(back))
}

func TestPackUnpackRoundTrip(t *testing.T) {
	b := fromRows(
		"#..#.....#",
		".##.......",
		"#########.",
	)
	back := Unpack(b.W, b.H, b.Pack())
	require.NotNil(t, back)
	assert.True(t, b.Equal(back))
}

func TestUnpackRejectsShortData(t *testing.T) {
	assert.Nil(t, Unpack(10, 3, []byte{0xFF}))
	assert.Nil(t, Unpack(0, 3, nil))
}
