// Package imageprocessor implements the OpenCV and ZXing backed stages of
// the verification pipeline. Every Mat allocated here is released before the
// call that created it returns.
package imageprocessor

import (
	"gocv.io/x/gocv"
)

// readImage loads an image from disk. ok is false when the file is missing
// or cannot be decoded; the returned Mat must be closed when ok is true.
func readImage(path string, flags gocv.IMReadFlag) (gocv.Mat, bool) {
	img := gocv.IMRead(path, flags)
	if img.Empty() {
		img.Close()
		return gocv.Mat{}, false
	}
	return img, true
}
