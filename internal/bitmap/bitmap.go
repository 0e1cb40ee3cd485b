// Package bitmap provides a 1 bit-per-pixel binary raster and the pixel
// operations the recognizer core needs: cropping, centroid and foreground
// area computation, centroid-aligned accumulation, and correlation scoring.
package bitmap

import (
	"image"
	"image/color"

	"glyph-recog/pkg/geometry"
)

// Bitmap is a binary raster. A pixel value of 1 is foreground (ink),
// 0 is background. Pixels are stored one byte each in row-major order.
type Bitmap struct {
	W, H int
	pix  []uint8
}

// New creates an all-background bitmap of the given dimensions.
// Dimensions are clamped to a minimum of 1.
func New(w, h int) *Bitmap {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &Bitmap{W: w, H: h, pix: make([]uint8, w*h)}
}

// Clone returns a deep copy.
func (b *Bitmap) Clone() *Bitmap {
	c := &Bitmap{W: b.W, H: b.H, pix: make([]uint8, len(b.pix))}
	copy(c.pix, b.pix)
	return c
}

// Get reports whether the pixel at (x, y) is foreground.
// Out-of-bounds coordinates read as background.
func (b *Bitmap) Get(x, y int) bool {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return false
	}
	return b.pix[y*b.W+x] != 0
}

// Set turns the pixel at (x, y) into foreground. Out-of-bounds is ignored.
func (b *Bitmap) Set(x, y int) {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return
	}
	b.pix[y*b.W+x] = 1
}

// Clear turns the pixel at (x, y) into background. Out-of-bounds is ignored.
func (b *Bitmap) Clear(x, y int) {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return
	}
	b.pix[y*b.W+x] = 0
}

// Equal reports whether two bitmaps have identical dimensions and pixels.
func (b *Bitmap) Equal(other *Bitmap) bool {
	if b.W != other.W || b.H != other.H {
		return false
	}
	for i := range b.pix {
		if b.pix[i] != other.pix[i] {
			return false
		}
	}
	return true
}

// Invert flips every pixel in place.
func (b *Bitmap) Invert() {
	for i := range b.pix {
		b.pix[i] ^= 1
	}
}

// CountForeground returns the number of foreground pixels.
func (b *Bitmap) CountForeground() int {
	n := 0
	for _, v := range b.pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// Centroid returns the pixel-mass-weighted center of the foreground and
// the foreground pixel count. An empty bitmap reports (0, 0) and area 0.
func (b *Bitmap) Centroid() (geometry.Point2D, int) {
	var sumX, sumY float64
	area := 0
	for y := 0; y < b.H; y++ {
		row := b.pix[y*b.W : (y+1)*b.W]
		for x, v := range row {
			if v != 0 {
				sumX += float64(x)
				sumY += float64(y)
				area++
			}
		}
	}
	if area == 0 {
		return geometry.Point2D{}, 0
	}
	n := float64(area)
	return geometry.Point2D{X: sumX / n, Y: sumY / n}, area
}

// ForegroundBounds returns the tight bounding box of the foreground,
// or ok == false when the bitmap is empty.
func (b *Bitmap) ForegroundBounds() (geometry.RectInt, bool) {
	minX, minY := b.W, b.H
	maxX, maxY := -1, -1
	for y := 0; y < b.H; y++ {
		row := b.pix[y*b.W : (y+1)*b.W]
		for x, v := range row {
			if v == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < 0 {
		return geometry.RectInt{}, false
	}
	return geometry.RectInt{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1}, true
}

// Crop returns a copy of the region r, clipped to the bitmap bounds.
// A region entirely outside the bitmap yields nil.
func (b *Bitmap) Crop(r geometry.RectInt) *Bitmap {
	clipped := r.Intersect(geometry.RectInt{Width: b.W, Height: b.H})
	if clipped.Empty() {
		return nil
	}
	out := New(clipped.Width, clipped.Height)
	for y := 0; y < clipped.Height; y++ {
		src := b.pix[(clipped.Y+y)*b.W+clipped.X : (clipped.Y+y)*b.W+clipped.X+clipped.Width]
		copy(out.pix[y*out.W:(y+1)*out.W], src)
	}
	return out
}

// TightCrop returns a copy cropped to the foreground bounding box,
// or nil when there is no foreground.
func (b *Bitmap) TightCrop() *Bitmap {
	r, ok := b.ForegroundBounds()
	if !ok {
		return nil
	}
	return b.Crop(r)
}

// Blit ORs src into b with its top-left corner at (dx, dy).
// Pixels falling outside b are dropped.
func (b *Bitmap) Blit(src *Bitmap, dx, dy int) {
	for y := 0; y < src.H; y++ {
		ty := y + dy
		if ty < 0 || ty >= b.H {
			continue
		}
		for x := 0; x < src.W; x++ {
			tx := x + dx
			if tx < 0 || tx >= b.W {
				continue
			}
			if src.pix[y*src.W+x] != 0 {
				b.pix[ty*b.W+tx] = 1
			}
		}
	}
}

// FromGray converts a grayscale image to a bitmap, marking pixels darker
// than threshold as foreground (dark ink on light background).
func FromGray(g *image.Gray, threshold uint8) *Bitmap {
	bounds := g.Bounds()
	out := New(bounds.Dx(), bounds.Dy())
	for y := 0; y < out.H; y++ {
		for x := 0; x < out.W; x++ {
			if g.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y < threshold {
				out.pix[y*out.W+x] = 1
			}
		}
	}
	return out
}

// ToGray renders the bitmap as a grayscale image with foreground black
// on a white background.
func (b *Bitmap) ToGray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, b.W, b.H))
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			if b.pix[y*b.W+x] != 0 {
				g.SetGray(x, y, color.Gray{Y: 0})
			} else {
				g.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return g
}

// Pack serializes the pixels into bit-packed rows, most significant bit
// first, each row padded to a byte boundary.
func (b *Bitmap) Pack() []byte {
	stride := (b.W + 7) / 8
	out := make([]byte, stride*b.H)
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			if b.pix[y*b.W+x] != 0 {
				out[y*stride+x/8] |= 0x80 >> (x % 8)
			}
		}
	}
	return out
}

// Unpack rebuilds a bitmap from bit-packed rows produced by Pack.
// Returns nil when data is too short for the given dimensions.
func Unpack(w, h int, data []byte) *Bitmap {
	if w < 1 || h < 1 {
		return nil
	}
	stride := (w + 7) / 8
	if len(data) < stride*h {
		return nil
	}
	out := New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if data[y*stride+x/8]&(0x80>>(x%8)) != 0 {
				out.pix[y*w+x] = 1
			}
		}
	}
	return out
}
