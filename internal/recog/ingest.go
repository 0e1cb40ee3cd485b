package recog

import (
	"fmt"
	"image"
	"unicode/utf8"

	"glyph-recog/internal/bitmap"
	"glyph-recog/internal/imaging"
	"glyph-recog/pkg/geometry"
)

// Segmentation constants for multi-symbol regions: the vertical closing
// that fuses broken strokes into single components, and the minimum
// component size kept as a symbol.
const (
	segCloseHeight = 70
	segMinWidth    = 2
	segMinHeight   = 8
)

// AddSample stores one unscaled binary template under a label.
//
// forcedIndex bypasses label lookup when >= 0: it must name an existing
// class or be exactly the next dense index, in which case a new class is
// appended. With forcedIndex < 0 the label is resolved, appending a new
// class when unseen. Returns ErrTrainingDone after finalization.
func (r *Recog) AddSample(bm *bitmap.Bitmap, label string, forcedIndex int) error {
	if !r.accumulating || r.trainDone {
		return ErrTrainingDone
	}
	if bm == nil {
		return fmt.Errorf("nil sample bitmap: %w", ErrEmptyRegion)
	}

	var idx int
	switch {
	case forcedIndex >= 0:
		if forcedIndex > len(r.classes) {
			return fmt.Errorf("forced index %d beyond next class %d", forcedIndex, len(r.classes))
		}
		if forcedIndex == len(r.classes) {
			if len(r.classes) >= maxClasses {
				return fmt.Errorf("class limit %d reached", maxClasses)
			}
			r.classes = append(r.classes, &Class{Index: forcedIndex, Label: label})
			if label != "" {
				r.byLabel[label] = forcedIndex
			}
		}
		idx = forcedIndex
	default:
		key, err := labelKey(label)
		if err != nil {
			return err
		}
		existing, ok := r.byLabel[key]
		if ok {
			idx = existing
		} else {
			if len(r.classes) >= maxClasses {
				return fmt.Errorf("class limit %d reached", maxClasses)
			}
			idx = len(r.classes)
			r.classes = append(r.classes, &Class{Index: idx, Label: key})
			r.byLabel[key] = idx
		}
	}

	cls := r.classes[idx]
	cent, area := bm.Centroid()
	cls.Samples = append(cls.Samples, &Sample{
		Label: cls.Label,
		Unscaled: Variant{
			Image:    bm,
			Centroid: cent,
			Area:     area,
		},
	})
	r.numSamples++
	return nil
}

// TrainLabeled ingests the labeled region of an image. A single-rune
// label stores one template; a longer label triggers segmentation of the
// region into that many symbols. An empty region rect means the whole
// image.
func (r *Recog) TrainLabeled(img image.Image, region geometry.RectInt, label string, diag *Diagnostics) error {
	if label == "" {
		return ErrNoLabel
	}
	if utf8.RuneCountInString(label) == 1 {
		return r.trainSingle(img, region, label)
	}
	return r.trainMulti(img, region, label, diag)
}

func (r *Recog) trainSingle(img image.Image, region geometry.RectInt, label string) error {
	bm, err := r.regionBitmap(img, region)
	if err != nil {
		return err
	}
	tight := bm.TightCrop()
	if tight == nil {
		return fmt.Errorf("region for %q has no foreground: %w", label, ErrEmptyRegion)
	}
	return r.AddSample(tight, label, -1)
}

// trainMulti splits a region expected to hold len(label) touching or
// adjacent symbols. When the component count disagrees with the label
// length nothing is stored and the failure is recorded for inspection.
func (r *Recog) trainMulti(img image.Image, region geometry.RectInt, label string, diag *Diagnostics) error {
	bm, err := r.regionBitmap(img, region)
	if err != nil {
		return err
	}
	boxes, err := segmentSymbols(bm)
	if err != nil {
		return err
	}
	return r.ingestSegments(bm, boxes, label, diag)
}

// ingestSegments stores one symbol per box when the box count matches the
// label length; otherwise nothing is stored and the failure is recorded.
func (r *Recog) ingestSegments(bm *bitmap.Bitmap, boxes []geometry.RectInt, label string, diag *Diagnostics) error {
	want := utf8.RuneCountInString(label)
	if len(boxes) != want {
		if diag != nil {
			diag.AddSegmentationFailure(bm, boxes, label)
		}
		return fmt.Errorf("found %d symbols for %d-symbol label %q: %w",
			len(boxes), want, label, ErrSegmentation)
	}
	return r.storeSegments(bm, boxes, label)
}

// storeSegments crops each symbol box out of the region bitmap and stores
// it under the corresponding label rune. Boxes are assumed sorted
// left-to-right and count-matched to the label.
func (r *Recog) storeSegments(bm *bitmap.Bitmap, boxes []geometry.RectInt, label string) error {
	runes := []rune(label)
	for i, box := range boxes {
		sym := bm.Crop(box)
		if sym == nil {
			return fmt.Errorf("symbol box %v outside region: %w", box, ErrEmptyRegion)
		}
		tight := sym.TightCrop()
		if tight == nil {
			return fmt.Errorf("symbol %d of %q has no foreground: %w", i, label, ErrEmptyRegion)
		}
		if err := r.AddSample(tight, string(runes[i]), -1); err != nil {
			return err
		}
	}
	return nil
}

// segmentSymbols locates symbol bounding boxes in a binary region:
// vertical closing fuses stroke fragments, 8-connected components are
// extracted, overlapping boxes are merged, specks are dropped, and the
// survivors are ordered left to right.
func segmentSymbols(bm *bitmap.Bitmap) ([]geometry.RectInt, error) {
	closed, err := imaging.CloseVertical(bm, segCloseHeight)
	if err != nil {
		return nil, fmt.Errorf("segmentation closing: %w", err)
	}
	boxes, err := imaging.ConnectedComponents(closed, true)
	if err != nil {
		return nil, fmt.Errorf("segmentation components: %w", err)
	}
	boxes = geometry.MergeOverlapping(boxes)
	boxes = geometry.FilterBySize(boxes, segMinWidth, segMinHeight)
	geometry.SortLeftToRight(boxes)
	return boxes, nil
}

// regionBitmap binarizes the image and crops it to the region, the whole
// image when the region is empty.
func (r *Recog) regionBitmap(img image.Image, region geometry.RectInt) (*bitmap.Bitmap, error) {
	if img == nil {
		return nil, fmt.Errorf("nil input image: %w", ErrEmptyRegion)
	}
	bm, err := imaging.Binarize(img, r.Params.Threshold)
	if err != nil {
		return nil, fmt.Errorf("binarizing input: %w", err)
	}
	if region.Empty() {
		return bm, nil
	}
	sub := bm.Crop(region)
	if sub == nil {
		return nil, fmt.Errorf("region %v outside image: %w", region, ErrEmptyRegion)
	}
	return sub, nil
}
