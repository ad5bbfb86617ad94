package images

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// HasAlpha reports whether img may contain non opaque pixels.
func HasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return false
}

// Flatten composes img over white background dropping transparency.
func Flatten(img image.Image) image.Image {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// FitWidth downscales img proportionally when it is wider than maxWidth.
// Non positive maxWidth disables scaling.
func FitWidth(img image.Image, maxWidth int) (image.Image, bool) {
	if maxWidth <= 0 || img.Bounds().Dx() <= maxWidth {
		return img, false
	}
	return imaging.Resize(img, maxWidth, 0, imaging.Lanczos), true
}

// Prepare applies everything needed before JPEG encoding: transparency is
// flattened, image is fitted into maxWidth and converted to gray when it has
// no color.
func Prepare(img image.Image, maxWidth int) image.Image {
	if HasAlpha(img) {
		img = Flatten(img)
	}
	img, _ = FitWidth(img, maxWidth)
	if IsGrayscale(img) {
		return ToGray(img)
	}
	return img
}
