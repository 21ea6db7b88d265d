package imageprocessor

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/example/aadhaar-check/internal/aadhaar"
)

func TestDetectFindsLogoInTopHalf(t *testing.T) {
	logo := noiseLogo(240, 240, 7)
	logoPath := writePNG(t, logo, "logo.png")
	cardPath := writePNG(t, cardWithLogo(logo, true), "card.png")

	m := NewLogoMatcher(zap.NewNop())
	if good := m.GoodMatches(cardPath, logoPath); good < aadhaar.DefaultLogoThreshold {
		t.Fatalf("expected at least %d good matches, got %d", aadhaar.DefaultLogoThreshold, good)
	}
	if !m.Detect(cardPath, logoPath, aadhaar.DefaultLogoThreshold) {
		t.Fatal("expected logo to be detected")
	}
}

func TestDetectIgnoresBottomHalf(t *testing.T) {
	logo := noiseLogo(240, 240, 7)
	logoPath := writePNG(t, logo, "logo.png")
	cardPath := writePNG(t, cardWithLogo(logo, false), "card.png")

	if NewLogoMatcher(zap.NewNop()).Detect(cardPath, logoPath, aadhaar.DefaultLogoThreshold) {
		t.Fatal("logo in the bottom half should not be detected")
	}
}

func TestDetectThresholdIsInclusive(t *testing.T) {
	logo := noiseLogo(240, 240, 11)
	logoPath := writePNG(t, logo, "logo.png")
	cardPath := writePNG(t, cardWithLogo(logo, true), "card.png")

	m := NewLogoMatcher(zap.NewNop())
	good := m.GoodMatches(cardPath, logoPath)
	if !m.Detect(cardPath, logoPath, good) {
		t.Fatalf("expected match at threshold %d", good)
	}
	if m.Detect(cardPath, logoPath, good+1) {
		t.Fatalf("expected no match at threshold %d", good+1)
	}
}

func TestDetectWithoutKeypoints(t *testing.T) {
	logoPath := writePNG(t, noiseLogo(240, 240, 3), "logo.png")
	blankPath := writePNG(t, blankImage(240, 480), "blank.png")

	m := NewLogoMatcher(zap.NewNop())
	if m.Detect(blankPath, logoPath, 1) {
		t.Fatal("blank card should not match")
	}
	if m.Detect(logoPath, blankPath, 1) {
		t.Fatal("blank logo should not match")
	}
}

func TestDetectUnreadableImages(t *testing.T) {
	logoPath := writePNG(t, noiseLogo(240, 240, 3), "logo.png")
	missing := filepath.Join(t.TempDir(), "missing.png")

	m := NewLogoMatcher(zap.NewNop())
	if m.Detect(missing, logoPath, 1) {
		t.Fatal("missing card should not match")
	}
	if m.Detect(logoPath, missing, 1) {
		t.Fatal("missing logo should not match")
	}
}

func TestGoodMatchesIsDeterministic(t *testing.T) {
	logo := noiseLogo(240, 240, 42)
	logoPath := writePNG(t, logo, "logo.png")
	cardPath := writePNG(t, cardWithLogo(logo, true), "card.png")

	m := NewLogoMatcher(zap.NewNop())
	first := m.GoodMatches(cardPath, logoPath)
	for i := 0; i < 3; i++ {
		if got := m.GoodMatches(cardPath, logoPath); got != first {
			t.Fatalf("run %d: expected %d matches, got %d", i, first, got)
		}
	}
}
