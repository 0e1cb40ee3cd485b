package recog

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"glyph-recog/internal/bitmap"
)

const modelFileVersion = 1

// modelFile is the on-disk JSON shape of a trained model. Only the
// unscaled labeled templates and the parameters are stored; averages and
// derived variants are rebuilt on load so they can never go stale against
// the sample set.
type modelFile struct {
	Version int          `json:"version"`
	Params  Params       `json:"params"`
	Glyphs  []glyphEntry `json:"glyphs"`
}

type glyphEntry struct {
	Label  string `json:"label"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Data   string `json:"data"`
}

// Save writes the model to path as indented JSON, bitmaps bit-packed and
// base64-encoded.
func (r *Recog) Save(path string) error {
	glyphs := r.ExtractGlyphs()
	mf := modelFile{
		Version: modelFileVersion,
		Params:  r.Params,
		Glyphs:  make([]glyphEntry, 0, len(glyphs)),
	}
	for _, g := range glyphs {
		mf.Glyphs = append(mf.Glyphs, glyphEntry{
			Label:  g.Label,
			Width:  g.Image.W,
			Height: g.Image.H,
			Data:   base64.StdEncoding.EncodeToString(g.Image.Pack()),
		})
	}

	data, err := json.MarshalIndent(mf, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing model file: %w", err)
	}
	fmt.Printf("saved model with %d templates in %d classes to %s\n",
		r.NumSamples(), r.NumClasses(), path)
	return nil
}

// Load reads a model file written by Save and rebuilds a finalized
// recognizer from its templates.
func Load(path string) (*Recog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}
	var mf modelFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("decoding model file: %w", err)
	}
	if mf.Version != modelFileVersion {
		return nil, fmt.Errorf("unsupported model file version %d", mf.Version)
	}

	glyphs := make([]Glyph, 0, len(mf.Glyphs))
	for i, e := range mf.Glyphs {
		raw, err := base64.StdEncoding.DecodeString(e.Data)
		if err != nil {
			return nil, fmt.Errorf("decoding template %d: %w", i, err)
		}
		bm := bitmap.Unpack(e.Width, e.Height, raw)
		if bm == nil {
			return nil, fmt.Errorf("template %d has inconsistent dimensions %dx%d", i, e.Width, e.Height)
		}
		glyphs = append(glyphs, Glyph{Image: bm, Label: e.Label})
	}

	r, err := NewFromGlyphs(glyphs, mf.Params)
	if err != nil {
		return nil, fmt.Errorf("rebuilding model: %w", err)
	}
	return r, nil
}
