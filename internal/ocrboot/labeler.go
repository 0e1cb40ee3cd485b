// Package ocrboot labels unlabeled symbol images with Tesseract, as an
// alternative bootstrap path when no trained boot recognizer fits the
// material.
package ocrboot

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"glyph-recog/internal/bitmap"
	"glyph-recog/internal/recog"
)

// DigitChars restricts recognition to the symbols a digit recognizer can
// hold a class for.
const DigitChars = "0123456789"

// Labeler wraps a Tesseract client configured for single-symbol input.
type Labeler struct {
	client    *gosseract.Client
	whitelist string
}

// NewLabeler creates a labeler restricted to the given character set, the
// digits when empty.
func NewLabeler(whitelist string) (*Labeler, error) {
	if whitelist == "" {
		whitelist = DigitChars
	}
	client := gosseract.NewClient()

	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// Single glyphs are never dictionary words; dictionary correction
	// only hurts here.
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")

	if err := client.SetWhitelist(whitelist); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_CHAR); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set PSM: %w", err)
	}

	return &Labeler{client: client, whitelist: whitelist}, nil
}

// Close releases the Tesseract client.
func (l *Labeler) Close() error {
	if l.client != nil {
		return l.client.Close()
	}
	return nil
}

// Label recognizes one symbol bitmap and returns its label with a
// confidence in [0, 1]. An unrecognized symbol returns an empty label.
func (l *Labeler) Label(bm *bitmap.Bitmap) (string, float64, error) {
	if bm == nil {
		return "", 0, fmt.Errorf("nil bitmap")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, bm.ToGray()); err != nil {
		return "", 0, fmt.Errorf("failed to encode symbol: %w", err)
	}
	if err := l.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := l.client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("OCR failed: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", 0, nil
	}
	// Keep the first symbol only; PSM_SINGLE_CHAR can still emit noise.
	text = string([]rune(text)[0])

	conf := 0.0
	boxes, err := l.client.GetBoundingBoxes(gosseract.RIL_SYMBOL)
	if err == nil && len(boxes) > 0 {
		conf = boxes[0].Confidence / 100
	}
	return text, conf, nil
}

// LabelAll labels a batch of symbol bitmaps and returns the glyphs whose
// confidence reached minConf. Unrecognized symbols are skipped.
func (l *Labeler) LabelAll(bitmaps []*bitmap.Bitmap, minConf float64) ([]recog.Glyph, error) {
	var out []recog.Glyph
	for i, bm := range bitmaps {
		label, conf, err := l.Label(bm)
		if err != nil {
			return nil, fmt.Errorf("labeling symbol %d: %w", i, err)
		}
		if label == "" || conf < minConf {
			continue
		}
		out = append(out, recog.Glyph{Image: bm, Label: label})
	}
	fmt.Printf("ocr labeling: %d of %d symbols accepted\n", len(out), len(bitmaps))
	return out, nil
}
