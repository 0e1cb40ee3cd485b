package imaging

import (
	"image"

	xdraw "golang.org/x/image/draw"

	"glyph-recog/internal/bitmap"
)

// ScaleToSize resamples a bitmap to the target dimensions. A zero width or
// height is computed from the other dimension preserving aspect ratio;
// if both are zero, or the target equals the source size, a copy of the
// input is returned.
func ScaleToSize(b *bitmap.Bitmap, w, h int) *bitmap.Bitmap {
	if w == 0 && h == 0 {
		return b.Clone()
	}
	if w == 0 {
		w = (b.W*h + b.H/2) / b.H
	} else if h == 0 {
		h = (b.H*w + b.W/2) / b.W
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if w == b.W && h == b.H {
		return b.Clone()
	}

	src := b.ToGray()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return bitmap.FromGray(dst, 128)
}

// ScaleHorizontal stretches or squeezes a bitmap horizontally by the given
// factor, keeping its height.
func ScaleHorizontal(b *bitmap.Bitmap, factor float64) *bitmap.Bitmap {
	if factor <= 0 {
		return b.Clone()
	}
	w := int(float64(b.W)*factor + 0.5)
	if w < 1 {
		w = 1
	}
	return ScaleToSize(b, w, b.H)
}
