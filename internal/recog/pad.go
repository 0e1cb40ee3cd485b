package recog

import (
	"fmt"

	"glyph-recog/internal/bootdigits"
)

var digitLabels = []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}

// IsPaddingNeeded reports the labels whose training is too thin to trust:
// classes missing entirely from the configured charset, plus classes with
// fewer than MinPadSamples samples. A model that already covers its full
// charset with enough samples everywhere returns nil. A model without a
// known charset cannot be checked.
func (r *Recog) IsPaddingNeeded() ([]string, error) {
	size := r.Params.Charset.Size()
	if size == 0 {
		return nil, fmt.Errorf("charset %s has no known symbol set: %w",
			r.Params.Charset, ErrCharsetUnavailable)
	}

	var deficient []string
	if r.Params.Charset == CharsetDigits {
		for _, lbl := range digitLabels {
			if _, ok := r.byLabel[lbl]; !ok {
				deficient = append(deficient, lbl)
			}
		}
	} else if len(r.classes) < size {
		// Non-digit charsets have no canonical label list to enumerate
		// missing members from; under-coverage is reported per class only.
		fmt.Printf("padding check: %d of %d %s classes present\n",
			len(r.classes), size, r.Params.Charset)
	}
	for _, cls := range r.classes {
		if len(cls.Samples) < r.Params.MinPadSamples {
			deficient = append(deficient, cls.Label)
		}
	}
	return deficient, nil
}

// PadDigitTrainingSet tops up the deficient digit classes of a model with
// the packaged synthetic digit templates and returns a rebuilt model.
// When no class is deficient the input model is returned unchanged. Only
// digit-charset models can be padded; anything else errors with the model
// untouched.
func PadDigitTrainingSet(r *Recog, scaleH, lineWidth int) (*Recog, error) {
	deficient, err := r.IsPaddingNeeded()
	if err != nil {
		return nil, err
	}
	if len(deficient) == 0 {
		return r, nil
	}
	if r.Params.Charset != CharsetDigits {
		return nil, fmt.Errorf("cannot pad %s model with digit templates: %w",
			r.Params.Charset, ErrCharsetUnavailable)
	}

	need := make(map[string]bool, len(deficient))
	for _, lbl := range deficient {
		need[lbl] = true
	}
	tmpls, err := bootdigits.Templates()
	if err != nil {
		return nil, fmt.Errorf("loading pad templates: %w", err)
	}

	glyphs := r.ExtractGlyphs()
	added := 0
	for _, t := range tmpls {
		if !need[t.Label] {
			continue
		}
		glyphs = append(glyphs, Glyph{Image: t.Image, Label: t.Label})
		added++
	}
	fmt.Printf("padding %d deficient digit classes with %d templates\n", len(deficient), added)

	params := r.Params
	// Padded models use height-only scaling; the synthetic templates vary
	// in width by design.
	params.ScaleW = 0
	if scaleH > 0 {
		params.ScaleH = scaleH
	}
	if lineWidth >= 0 {
		params.LineWidth = lineWidth
	}
	padded, err := NewFromGlyphs(glyphs, params)
	if err != nil {
		return nil, fmt.Errorf("rebuilding padded model: %w", err)
	}
	return padded, nil
}
