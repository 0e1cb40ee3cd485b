// Package bootdigits provides synthetic digit templates rendered from the
// Go fonts, for bootstrapping digit recognizers and padding thin digit
// training sets without any hand-labeled data.
package bootdigits

import (
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"glyph-recog/internal/bitmap"
	"glyph-recog/internal/imaging"
)

// Template is one labeled synthetic digit bitmap.
type Template struct {
	Label string
	Image *bitmap.Bitmap
}

// Rendering parameters. The canvas comfortably holds a 48pt digit at
// 72dpi; each glyph is tight-cropped afterwards so the exact canvas size
// does not matter.
const (
	fontSize   = 48
	fontDPI    = 72
	canvasSize = 64
	baselineY  = 52
)

// widthFactors are the extra horizontal stretches applied to every
// rendered digit to cover narrow and wide writing styles.
var widthFactors = []float64{0.9, 1.1, 1.2}

var (
	once      sync.Once
	templates []Template
	buildErr  error
)

// Templates returns the full synthetic digit set: the digits 0-9 rendered
// in the Go regular, bold and italic fonts, each also stretched by the
// width factors. The set is built once and shared.
func Templates() ([]Template, error) {
	once.Do(func() {
		templates, buildErr = build()
	})
	return templates, buildErr
}

func build() ([]Template, error) {
	fonts := []struct {
		name string
		ttf  []byte
	}{
		{"regular", goregular.TTF},
		{"bold", gobold.TTF},
		{"italic", goitalic.TTF},
	}

	var out []Template
	for _, f := range fonts {
		parsed, err := opentype.Parse(f.ttf)
		if err != nil {
			return nil, fmt.Errorf("parsing %s font: %w", f.name, err)
		}
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    fontSize,
			DPI:     fontDPI,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("building %s face: %w", f.name, err)
		}

		for d := 0; d <= 9; d++ {
			label := string(rune('0' + d))
			glyph, err := renderDigit(face, label)
			if err != nil {
				return nil, fmt.Errorf("rendering %s %q: %w", f.name, label, err)
			}
			out = append(out, Template{Label: label, Image: glyph})
			for _, factor := range widthFactors {
				out = append(out, Template{
					Label: label,
					Image: imaging.ScaleHorizontal(glyph, factor),
				})
			}
		}
		face.Close()
	}
	return out, nil
}

// renderDigit draws one digit black-on-white and tight-crops it.
func renderDigit(face font.Face, s string) (*bitmap.Bitmap, error) {
	canvas := image.NewGray(image.Rect(0, 0, canvasSize, canvasSize))
	for i := range canvas.Pix {
		canvas.Pix[i] = 255
	}
	drawer := font.Drawer{
		Dst:  canvas,
		Src:  image.Black,
		Face: face,
		Dot:  fixed.P(8, baselineY),
	}
	drawer.DrawString(s)

	bm := bitmap.FromGray(canvas, 128).TightCrop()
	if bm == nil {
		return nil, fmt.Errorf("digit rendered empty")
	}
	return bm, nil
}
