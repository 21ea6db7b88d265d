package imageprocessor

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/skip2/go-qrcode"
)

func writePNG(t *testing.T, img image.Image, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode %s: %v", name, err)
	}
	return path
}

func writeQR(t *testing.T, payload string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "qr.png")
	if err := qrcode.WriteFile(payload, qrcode.Medium, 512, path); err != nil {
		t.Fatalf("failed to generate qr code: %v", err)
	}
	return path
}

func blankImage(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	return img
}

// noiseLogo draws a seeded pattern of black and white blocks, which gives
// ORB plenty of corners to work with.
func noiseLogo(w, h int, seed int64) *image.Gray {
	const block = 8
	rng := rand.New(rand.NewSource(seed))
	img := blankImage(w, h)
	for y := 0; y < h; y += block {
		for x := 0; x < w; x += block {
			if rng.Intn(2) == 0 {
				continue
			}
			draw.Draw(img, image.Rect(x, y, x+block, y+block), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)
		}
	}
	return img
}

// cardWithLogo returns an image twice the logo's height with the logo in
// the given half.
func cardWithLogo(logo *image.Gray, top bool) *image.Gray {
	b := logo.Bounds()
	card := blankImage(b.Dx(), b.Dy()*2)
	offset := image.Point{}
	if !top {
		offset.Y = b.Dy()
	}
	draw.Draw(card, b.Add(offset), logo, b.Min, draw.Src)
	return card
}
