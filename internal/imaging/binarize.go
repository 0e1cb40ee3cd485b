package imaging

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"glyph-recog/internal/bitmap"
)

// Binarize thresholds an image to a binary bitmap with dark pixels as
// foreground. A positive threshold is applied directly; threshold <= 0
// selects Otsu's method through OpenCV.
func Binarize(img image.Image, threshold int) (*bitmap.Bitmap, error) {
	gray := grayFromImage(img)
	if threshold > 0 {
		if threshold > 255 {
			threshold = 255
		}
		return bitmap.FromGray(gray, uint8(threshold)), nil
	}
	return binarizeOtsu(gray)
}

// binarizeOtsu picks the threshold with Otsu's method. Text images are
// dark ink on light paper, so the below-threshold side becomes foreground.
func binarizeOtsu(gray *image.Gray) (*bitmap.Bitmap, error) {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	data := make([]byte, w*h)
	for y := 0; y < h; y++ {
		copy(data[y*w:(y+1)*w], gray.Pix[y*gray.Stride:y*gray.Stride+w])
	}
	src, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8U, data)
	if err != nil {
		return nil, fmt.Errorf("failed to build mat: %w", err)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Threshold(src, &dst, 0, 255, gocv.ThresholdBinaryInv|gocv.ThresholdOtsu)

	return fromMat(dst), nil
}
