package imageprocessor

import (
	"image"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// MaxMatchDistance is the Hamming distance below which a descriptor match
// counts as good.
const MaxMatchDistance = 50

// LogoMatcher looks for the reference logo in the top half of a card using
// ORB features and cross-checked brute-force matching.
type LogoMatcher struct {
	logger *zap.Logger
}

// NewLogoMatcher builds a matcher.
func NewLogoMatcher(logger *zap.Logger) *LogoMatcher {
	return &LogoMatcher{logger: logger.Named("logo_matcher")}
}

// Detect implements aadhaar.LogoDetector.
func (m *LogoMatcher) Detect(imagePath, logoPath string, threshold int) bool {
	good := m.GoodMatches(imagePath, logoPath)
	m.logger.Debug("logo matches counted",
		zap.Int("good_matches", good),
		zap.Int("threshold", threshold),
	)
	return good >= threshold
}

// GoodMatches counts the descriptor matches between the logo and the top
// half of the card whose distance is below MaxMatchDistance. Unreadable
// images and images without keypoints count zero.
func (m *LogoMatcher) GoodMatches(imagePath, logoPath string) int {
	card, ok := readImage(imagePath, gocv.IMReadGrayScale)
	if !ok {
		m.logger.Warn("card image could not be read", zap.String("path", imagePath))
		return 0
	}
	defer card.Close()

	logo, ok := readImage(logoPath, gocv.IMReadGrayScale)
	if !ok {
		m.logger.Warn("logo image could not be read", zap.String("path", logoPath))
		return 0
	}
	defer logo.Close()

	half := card.Rows() / 2
	if half == 0 {
		return 0
	}
	top := card.Region(image.Rect(0, 0, card.Cols(), half))
	defer top.Close()

	orb := gocv.NewORB()
	defer orb.Close()

	logoDesc, ok := describe(&orb, logo)
	if !ok {
		return 0
	}
	defer logoDesc.Close()

	cardDesc, ok := describe(&orb, top)
	if !ok {
		return 0
	}
	defer cardDesc.Close()

	matcher := gocv.NewBFMatcherWithParams(gocv.NormHamming, true)
	defer matcher.Close()

	good := 0
	for _, match := range matcher.Match(logoDesc, cardDesc) {
		if match.Distance < MaxMatchDistance {
			good++
		}
	}
	return good
}

func describe(orb *gocv.ORB, img gocv.Mat) (gocv.Mat, bool) {
	mask := gocv.NewMat()
	defer mask.Close()

	keypoints, desc := orb.DetectAndCompute(img, mask)
	if len(keypoints) == 0 || desc.Empty() {
		desc.Close()
		return gocv.Mat{}, false
	}
	return desc, true
}
