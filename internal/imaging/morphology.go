package imaging

import (
	"image"

	"gocv.io/x/gocv"

	"glyph-recog/internal/bitmap"
	"glyph-recog/pkg/geometry"
)

// CloseVertical applies a morphological closing with a 1 x size vertical
// kernel. A single large closing consolidates the pieces of broken symbols;
// openings are never used here because they risk severing a symbol's own
// strokes.
func CloseVertical(b *bitmap.Bitmap, size int) (*bitmap.Bitmap, error) {
	if size < 1 {
		return b.Clone(), nil
	}
	src, err := toMat(b)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(1, size))
	defer kernel.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.MorphologyEx(src, &dst, gocv.MorphClose, kernel)

	return fromMat(dst), nil
}

// ConnectedComponents returns the bounding boxes of the foreground
// components, using 8-connectivity when eightConn is true and
// 4-connectivity otherwise. The background component is excluded.
func ConnectedComponents(b *bitmap.Bitmap, eightConn bool) ([]geometry.RectInt, error) {
	src, err := toMat(b)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	labels := gocv.NewMat()
	stats := gocv.NewMat()
	centroids := gocv.NewMat()
	defer labels.Close()
	defer stats.Close()
	defer centroids.Close()

	connectivity := 8
	if !eightConn {
		connectivity = 4
	}
	n := gocv.ConnectedComponentsWithStatsWithParams(src, &labels, &stats, &centroids,
		connectivity, gocv.MatTypeCV32S, gocv.CCL_DEFAULT)

	var boxes []geometry.RectInt
	for i := 1; i < n; i++ { // label 0 is the background
		boxes = append(boxes, geometry.RectInt{
			X:      int(stats.GetIntAt(i, int(gocv.CCStatLeft))),
			Y:      int(stats.GetIntAt(i, int(gocv.CCStatTop))),
			Width:  int(stats.GetIntAt(i, int(gocv.CCStatWidth))),
			Height: int(stats.GetIntAt(i, int(gocv.CCStatHeight))),
		})
	}
	return boxes, nil
}

// NormalizeStrokeWidth reduces the foreground to a morphological skeleton
// and re-dilates it so that all strokes end up approximately width pixels
// wide. A width < 1 returns the input unchanged.
func NormalizeStrokeWidth(b *bitmap.Bitmap, width int) (*bitmap.Bitmap, error) {
	if width < 1 {
		return b.Clone(), nil
	}
	src, err := toMat(b)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphCross, image.Pt(3, 3))
	defer kernel.Close()

	skel := gocv.NewMatWithSize(src.Rows(), src.Cols(), gocv.MatTypeCV8U)
	defer skel.Close()
	work := src.Clone()
	defer work.Close()
	eroded := gocv.NewMat()
	opened := gocv.NewMat()
	diff := gocv.NewMat()
	defer eroded.Close()
	defer opened.Close()
	defer diff.Close()

	// Standard morphological skeleton: peel with erosions, keeping the
	// pixels an opening would have removed at each step.
	for {
		gocv.Erode(work, &eroded, kernel)
		gocv.Dilate(eroded, &opened, kernel)
		gocv.Subtract(work, opened, &diff)
		gocv.BitwiseOr(skel, diff, &skel)
		eroded.CopyTo(&work)
		if gocv.CountNonZero(work) == 0 {
			break
		}
	}

	out := gocv.NewMat()
	defer out.Close()
	dilations := (width - 1) / 2
	if dilations == 0 {
		skel.CopyTo(&out)
	} else {
		square := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
		defer square.Close()
		skel.CopyTo(&out)
		for i := 0; i < dilations; i++ {
			gocv.Dilate(out, &out, square)
		}
	}
	return fromMat(out), nil
}
