package recog

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"gonum.org/v1/gonum/stat"

	"glyph-recog/internal/bitmap"
	"glyph-recog/pkg/geometry"
)

// Diagnostics collects the rejects of a training run for inspection:
// regions whose segmentation disagreed with the label, samples dropped by
// the outlier filter, and boot candidates below the confidence floor.
// A nil *Diagnostics is accepted everywhere and records nothing.
type Diagnostics struct {
	SegFailures []SegFailure
	Removed     []ScoredGlyph
	BootRejects []ScoredGlyph
}

// SegFailure is one multi-symbol region whose component count did not
// match its label.
type SegFailure struct {
	Image   *bitmap.Bitmap
	Regions []geometry.RectInt
	Label   string
}

// ScoredGlyph pairs a glyph with the correlation score that rejected it.
type ScoredGlyph struct {
	Glyph Glyph
	Score float64
}

func (d *Diagnostics) AddSegmentationFailure(bm *bitmap.Bitmap, boxes []geometry.RectInt, label string) {
	if d == nil {
		return
	}
	d.SegFailures = append(d.SegFailures, SegFailure{Image: bm, Regions: boxes, Label: label})
}

func (d *Diagnostics) AddRemovedOutlier(g Glyph, score float64) {
	if d == nil {
		return
	}
	d.Removed = append(d.Removed, ScoredGlyph{Glyph: g, Score: score})
}

func (d *Diagnostics) AddBootReject(g Glyph, score float64) {
	if d == nil {
		return
	}
	d.BootRejects = append(d.BootRejects, ScoredGlyph{Glyph: g, Score: score})
}

// tile layout constants for the debug sheets.
const (
	tileGap    = 6
	tilePerRow = 15
)

// RenderOutliers renders the removed samples onto one debug sheet, tiled
// left to right. Returns nil when nothing was removed.
func (d *Diagnostics) RenderOutliers() image.Image {
	if d == nil || len(d.Removed) == 0 {
		return nil
	}
	bitmaps := make([]*bitmap.Bitmap, 0, len(d.Removed))
	for _, sg := range d.Removed {
		bitmaps = append(bitmaps, sg.Glyph.Image)
	}
	return tileSheet(bitmaps)
}

// RenderAverages renders every class average (modified convention) onto a
// debug sheet with a red 3x3 marker at each centroid.
func RenderAverages(r *Recog) image.Image {
	if !r.aveDone {
		if err := r.ComputeAverages(); err != nil {
			return nil
		}
	}
	var tiles []image.Image
	red := color.RGBA{R: 255, A: 255}
	for _, cls := range r.classes {
		avg := cls.AvgModified
		if avg.Degenerate() {
			continue
		}
		gray := avg.Image.ToGray()
		tile := image.NewRGBA(gray.Bounds())
		draw.Draw(tile, tile.Bounds(), gray, image.Point{}, draw.Src)
		cx, cy := int(avg.Centroid.X), int(avg.Centroid.Y)
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				tile.Set(cx+dx, cy+dy, red)
			}
		}
		tiles = append(tiles, tile)
	}
	return tileImages(tiles)
}

// ShowContent writes a textual dump of the model to w: the parameters
// followed by the per-class sample counts.
func ShowContent(w io.Writer, r *Recog) {
	fmt.Fprintf(w, "recognizer: %d classes, %d samples\n", r.NumClasses(), r.NumSamples())
	fmt.Fprintf(w, "  scale: %dx%d, line width: %d, threshold: %d, max y-shift: %d, charset: %s\n",
		r.Params.ScaleW, r.Params.ScaleH, r.Params.LineWidth,
		r.Params.Threshold, r.Params.MaxYShift, r.Params.Charset)
	fmt.Fprintf(w, "  training finalized: %v, averages computed: %v\n", r.trainDone, r.aveDone)
	for _, cls := range r.classes {
		fmt.Fprintf(w, "  class %3d %q: %d samples\n", cls.Index, cls.Label, len(cls.Samples))
	}
}

// Summary writes the reject counts and the mean score of the removed
// outliers.
func (d *Diagnostics) Summary(w io.Writer) {
	if d == nil {
		return
	}
	fmt.Fprintf(w, "diagnostics: %d segmentation failures, %d outliers removed, %d boot rejects\n",
		len(d.SegFailures), len(d.Removed), len(d.BootRejects))
	if len(d.Removed) > 0 {
		scores := make([]float64, len(d.Removed))
		for i, sg := range d.Removed {
			scores[i] = sg.Score
		}
		fmt.Fprintf(w, "  mean removed score: %.3f\n", stat.Mean(scores, nil))
	}
}

func tileSheet(bitmaps []*bitmap.Bitmap) image.Image {
	imgs := make([]image.Image, len(bitmaps))
	for i, b := range bitmaps {
		imgs[i] = b.ToGray()
	}
	return tileImages(imgs)
}

// tileImages lays images out row-major on a white sheet.
func tileImages(imgs []image.Image) image.Image {
	if len(imgs) == 0 {
		return nil
	}
	rowW, rowH := 0, 0
	sheetW, sheetH := 0, 0
	n := 0
	for _, img := range imgs {
		b := img.Bounds()
		rowW += b.Dx() + tileGap
		if b.Dy() > rowH {
			rowH = b.Dy()
		}
		n++
		if n == tilePerRow {
			if rowW > sheetW {
				sheetW = rowW
			}
			sheetH += rowH + tileGap
			rowW, rowH, n = 0, 0, 0
		}
	}
	if n > 0 {
		if rowW > sheetW {
			sheetW = rowW
		}
		sheetH += rowH + tileGap
	}

	sheet := image.NewRGBA(image.Rect(0, 0, sheetW+tileGap, sheetH+tileGap))
	draw.Draw(sheet, sheet.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	x, y := tileGap, tileGap
	rowH, n = 0, 0
	for _, img := range imgs {
		b := img.Bounds()
		dst := image.Rect(x, y, x+b.Dx(), y+b.Dy())
		draw.Draw(sheet, dst, img, b.Min, draw.Src)
		x += b.Dx() + tileGap
		if b.Dy() > rowH {
			rowH = b.Dy()
		}
		n++
		if n == tilePerRow {
			x = tileGap
			y += rowH + tileGap
			rowH, n = 0, 0
		}
	}
	return sheet
}
