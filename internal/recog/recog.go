// Package recog builds and refines template-based symbol recognizers from
// labeled raster samples. Training accumulates per-class sample sets,
// synthesizes centroid-aligned average templates, prunes outliers by
// correlation against the averages, bootstraps labels for unlabeled input
// from an auxiliary trained model, and pads under-represented digit
// classes with synthetic templates.
package recog

import (
	"fmt"
	"unicode/utf8"

	"glyph-recog/internal/bitmap"
	"glyph-recog/pkg/geometry"
)

// maxClasses bounds the class storage that is pre-allocated during
// accumulation and truncated at finalization.
const maxClasses = 256

// maxAvgSamples is the largest number of samples per class used when
// synthesizing average templates. More adds cost without stability.
const maxAvgSamples = 256

// Charset describes the symbol set a recognizer is expected to cover.
// It drives the balance padder's notion of missing classes.
type Charset int

const (
	CharsetUnknown Charset = iota
	CharsetDigits
	CharsetUpperAlpha
	CharsetLowerAlpha
	CharsetUpperRoman
	CharsetLowerRoman
)

// Size returns the number of symbols in the charset, or 0 when unknown.
func (c Charset) Size() int {
	switch c {
	case CharsetDigits:
		return 10
	case CharsetUpperAlpha, CharsetLowerAlpha:
		return 26
	case CharsetUpperRoman, CharsetLowerRoman:
		return 7
	default:
		return 0
	}
}

func (c Charset) String() string {
	switch c {
	case CharsetDigits:
		return "digits"
	case CharsetUpperAlpha:
		return "upper-alpha"
	case CharsetLowerAlpha:
		return "lower-alpha"
	case CharsetUpperRoman:
		return "upper-roman"
	case CharsetLowerRoman:
		return "lower-roman"
	default:
		return "unknown"
	}
}

// Params holds the template-shaping configuration of a recognizer.
type Params struct {
	// ScaleW and ScaleH are the target template dimensions; 0 disables
	// scaling on that axis. Height-only scaling (ScaleW == 0) preserves
	// aspect ratio.
	ScaleW, ScaleH int

	// LineWidth is the stroke-normalization width; 0 leaves strokes as is.
	LineWidth int

	// Threshold is the binarization threshold for deep input images.
	Threshold int

	// MaxYShift is the maximum vertical jiggle allowed around the nominal
	// centroid alignment during matching.
	MaxYShift int

	// Charset drives the balance padder.
	Charset Charset

	// MinPadSamples is the per-class sample floor below which the padder
	// considers a class under-represented.
	MinPadSamples int
}

// DefaultParams returns the parameter set used when nothing is configured:
// no scaling, no stroke normalization, mid-gray binarization threshold,
// one pixel of matching jiggle.
func DefaultParams() Params {
	return Params{
		Threshold:     128,
		MaxYShift:     1,
		MinPadSamples: 3,
	}
}

// Glyph is a labeled unscaled binary template, the unit of exchange
// between the trainer, the outlier filter, and the padder.
type Glyph struct {
	Image *bitmap.Bitmap
	Label string
}

// Variant is one stored representation of a sample: its bitmap plus the
// centroid and foreground area used for alignment and scoring.
type Variant struct {
	Image    *bitmap.Bitmap
	Centroid geometry.Point2D
	Area     int
}

// Sample is one stored training example. The unscaled variant is
// authoritative (segmentation of touching symbols needs original
// resolution); the modified variant is derived at finalization.
type Sample struct {
	Label    string
	Unscaled Variant
	Modified Variant
}

// Template is a synthesized class average: the thresholded aligned sum of
// the class samples with its own centroid and foreground area.
type Template struct {
	Image    *bitmap.Bitmap
	Centroid geometry.Point2D
	Area     int
}

// Degenerate reports whether the template is the 1x1 placeholder produced
// for a class with no samples.
func (t Template) Degenerate() bool {
	return t.Image == nil || t.Area == 0 || (t.Image.W == 1 && t.Image.H == 1)
}

// Class is one symbol class: a dense index, the label it represents, its
// samples in ingestion order, and the two synthesized averages.
type Class struct {
	Index       int
	Label       string
	Samples     []*Sample
	AvgUnscaled Template
	AvgModified Template
}

// Recog is a trainable template recognizer model.
type Recog struct {
	Params Params

	classes []*Class
	byLabel map[string]int

	numSamples int

	// Lifecycle flags: samples are accepted only while accumulating;
	// averages are cached once computed and recomputed only when forced.
	accumulating bool
	trainDone    bool
	aveDone      bool

	// Size range of the non-degenerate unscaled average templates and the
	// splitting bounds derived from it, filled in by ComputeAverages.
	minW, minH, maxW, maxH int
	MinSplitW, MinSplitH   int
	MaxSplitH              int
}

// New creates an empty, accumulating recognizer with the given parameters.
func New(params Params) *Recog {
	if params.Threshold <= 0 {
		params.Threshold = 128
	}
	if params.MinPadSamples <= 0 {
		params.MinPadSamples = DefaultParams().MinPadSamples
	}
	return &Recog{
		Params:       params,
		classes:      make([]*Class, 0, maxClasses),
		byLabel:      make(map[string]int),
		accumulating: true,
	}
}

// NewFromGlyphs builds and finalizes a recognizer from a labeled template
// set in one step. Individual glyphs that fail ingestion are skipped;
// batch construction does not abort on a single bad sample.
func NewFromGlyphs(glyphs []Glyph, params Params) (*Recog, error) {
	if len(glyphs) == 0 {
		return nil, fmt.Errorf("no glyphs to build recognizer from")
	}
	r := New(params)
	added := 0
	for _, g := range glyphs {
		if err := r.AddSample(g.Image, g.Label, -1); err != nil {
			fmt.Printf("recog: skipping glyph %q: %v\n", g.Label, err)
			continue
		}
		added++
	}
	if added == 0 {
		return nil, fmt.Errorf("no glyphs could be ingested")
	}
	if err := r.TrainingFinished(true); err != nil {
		return nil, err
	}
	return r, nil
}

// NumClasses returns the number of populated classes.
func (r *Recog) NumClasses() int { return len(r.classes) }

// NumSamples returns the running count of ingested samples.
func (r *Recog) NumSamples() int { return r.numSamples }

// TrainDone reports whether training has been finalized.
func (r *Recog) TrainDone() bool { return r.trainDone }

// AveragesDone reports whether average templates have been computed.
func (r *Recog) AveragesDone() bool { return r.aveDone }

// Class returns the class at the given dense index, or nil when out of
// range.
func (r *Recog) Class(i int) *Class {
	if i < 0 || i >= len(r.classes) {
		return nil
	}
	return r.classes[i]
}

// ClassForLabel returns the class for a label and whether it exists.
func (r *Recog) ClassForLabel(label string) (*Class, bool) {
	i, ok := r.byLabel[label]
	if !ok {
		return nil, false
	}
	return r.classes[i], true
}

// Labels returns the class labels in dense index order.
func (r *Recog) Labels() []string {
	out := make([]string, len(r.classes))
	for i, c := range r.classes {
		out[i] = c.Label
	}
	return out
}

// SampleCounts returns the per-class sample counts in dense index order.
func (r *Recog) SampleCounts() []int {
	out := make([]int, len(r.classes))
	for i, c := range r.classes {
		out[i] = len(c.Samples)
	}
	return out
}

// ExtractGlyphs returns copies of all unscaled labeled templates, pooled
// across classes in dense index order. The result can seed a new model.
func (r *Recog) ExtractGlyphs() []Glyph {
	var out []Glyph
	for _, c := range r.classes {
		for _, s := range c.Samples {
			out = append(out, Glyph{Image: s.Unscaled.Image.Clone(), Label: c.Label})
		}
	}
	return out
}

// labelKey validates that a label reduces to a single symbol class key.
func labelKey(label string) (string, error) {
	if label == "" {
		return "", ErrNoLabel
	}
	if utf8.RuneCountInString(label) != 1 {
		return "", fmt.Errorf("label %q is not a single symbol: %w", label, ErrLabelConversion)
	}
	return label, nil
}
