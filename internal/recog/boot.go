package recog

import (
	"fmt"
	"image"

	"glyph-recog/internal/bitmap"
	"glyph-recog/internal/bootdigits"
	"glyph-recog/internal/imaging"
)

// TrainFromBoot labels unlabeled symbol images by matching them against a
// trained bootstrap recognizer and returns the confidently labeled glyphs
// at original resolution. Each image is binarized, brought into the boot
// model's template convention, and identified; matches below minScore are
// rejected and recorded for inspection. threshold <= 0 uses the boot
// model's own binarization threshold.
//
// Returned glyphs are the binarized, tight-cropped forms of the inputs,
// not the raw images; only the boot scaling and stroke normalization are
// confined to matching.
func TrainFromBoot(boot *Recog, samples []image.Image, minScore float64, threshold int, diag *Diagnostics) ([]Glyph, error) {
	if boot == nil {
		return nil, fmt.Errorf("nil boot recognizer")
	}
	if !boot.trainDone {
		return nil, fmt.Errorf("boot recognizer still accumulating: %w", ErrNotFinalized)
	}
	if threshold <= 0 {
		threshold = boot.Params.Threshold
	}

	var out []Glyph
	for i, img := range samples {
		if img == nil {
			continue
		}
		bm, err := imaging.Binarize(img, threshold)
		if err != nil {
			return nil, fmt.Errorf("binarizing boot sample %d: %w", i, err)
		}
		tight := bm.TightCrop()
		if tight == nil {
			continue
		}

		probe, err := bootProbe(boot, tight)
		if err != nil {
			return nil, fmt.Errorf("shaping boot sample %d: %w", i, err)
		}
		_, score, label, err := boot.IdentifyAverages(probe)
		if err != nil {
			return nil, fmt.Errorf("identifying boot sample %d: %w", i, err)
		}
		g := Glyph{Image: tight, Label: label}
		if score < minScore {
			if diag != nil {
				diag.AddBootReject(g, score)
			}
			continue
		}
		out = append(out, g)
	}
	fmt.Printf("boot labeling: %d of %d samples accepted\n", len(out), len(samples))
	return out, nil
}

// bootProbe converts an unscaled sample into the boot model's modified
// convention: height-scaled to the model's template height, then
// stroke-normalized when the model requires it.
func bootProbe(boot *Recog, bm *bitmap.Bitmap) (*bitmap.Bitmap, error) {
	probe := imaging.ScaleToSize(bm, boot.Params.ScaleW, boot.Params.ScaleH)
	if boot.Params.LineWidth > 0 {
		norm, err := imaging.NormalizeStrokeWidth(probe, boot.Params.LineWidth)
		if err != nil {
			return nil, err
		}
		probe = norm
	}
	return probe, nil
}

// MakeBootDigitRecog builds a digit bootstrap recognizer from the packaged
// synthetic digit templates, shaped to the given template height and
// stroke width (0 keeps strokes unnormalized).
func MakeBootDigitRecog(scaleH, lineWidth, maxYShift int) (*Recog, error) {
	tmpls, err := bootdigits.Templates()
	if err != nil {
		return nil, fmt.Errorf("loading boot digit templates: %w", err)
	}
	glyphs := make([]Glyph, 0, len(tmpls))
	for _, t := range tmpls {
		glyphs = append(glyphs, Glyph{Image: t.Image, Label: t.Label})
	}
	r, err := NewFromGlyphs(glyphs, Params{
		ScaleH:    scaleH,
		LineWidth: lineWidth,
		Threshold: 128,
		MaxYShift: maxYShift,
		Charset:   CharsetDigits,
	})
	if err != nil {
		return nil, fmt.Errorf("building boot digit recognizer: %w", err)
	}
	if err := r.ComputeAverages(); err != nil {
		return nil, err
	}
	return r, nil
}
