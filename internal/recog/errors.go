package recog

import "errors"

// Error kinds reported by the training core. Callers test with errors.Is;
// every kind is wrapped with call-site context before being returned.
var (
	// ErrNoLabel indicates a sample with no resolvable label text.
	ErrNoLabel = errors.New("sample has no label")

	// ErrSegmentation indicates the detected symbol-region count did not
	// match the expected label length during multi-symbol ingestion.
	ErrSegmentation = errors.New("segmentation mismatch")

	// ErrEmptyRegion indicates cropping produced an image with no foreground.
	ErrEmptyRegion = errors.New("empty region")

	// ErrTrainingDone indicates ingestion was attempted after finalization.
	ErrTrainingDone = errors.New("training has been completed")

	// ErrNotFinalized indicates an operation that needs a finalized model
	// was attempted while it was still accumulating.
	ErrNotFinalized = errors.New("training not finalized")

	// ErrEmptyClass indicates synthesis was attempted on a class with zero
	// samples where at least one was required.
	ErrEmptyClass = errors.New("class has no samples")

	// ErrLabelConversion indicates label text that cannot be mapped to a
	// class key.
	ErrLabelConversion = errors.New("invalid label conversion")

	// ErrCharsetUnavailable indicates padding was requested for a charset
	// with no synthetic template generator.
	ErrCharsetUnavailable = errors.New("charset not available for padding")
)
