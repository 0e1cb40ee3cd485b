// Package imaging implements the image collaborators consumed by the
// recognizer core: binarization, morphology, connected components, and
// geometric scaling. Heavy raster work goes through OpenCV (gocv), pure
// resampling through golang.org/x/image/draw.
package imaging

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"glyph-recog/internal/bitmap"
)

// toMat renders a bitmap as an 8-bit single-channel Mat with foreground
// pixels at 255 on a zero background (the polarity OpenCV morphology and
// component extraction operate on).
func toMat(b *bitmap.Bitmap) (gocv.Mat, error) {
	data := make([]byte, b.W*b.H)
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			if b.Get(x, y) {
				data[y*b.W+x] = 255
			}
		}
	}
	mat, err := gocv.NewMatFromBytes(b.H, b.W, gocv.MatTypeCV8U, data)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to build mat: %w", err)
	}
	return mat, nil
}

// fromMat converts an 8-bit single-channel Mat back to a bitmap,
// treating any nonzero pixel as foreground.
func fromMat(m gocv.Mat) *bitmap.Bitmap {
	h, w := m.Rows(), m.Cols()
	out := bitmap.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if m.GetUCharAt(y, x) != 0 {
				out.Set(x, y)
			}
		}
	}
	return out
}

// grayFromImage flattens any image to 8-bit grayscale using the standard
// luma weights.
func grayFromImage(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	g := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, gr, b, _ := img.At(x, y).RGBA()
			luma := (299*(r>>8) + 587*(gr>>8) + 114*(b>>8)) / 1000
			g.Pix[g.PixOffset(x, y)] = uint8(luma)
		}
	}
	return g
}
