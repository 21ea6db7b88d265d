package aadhaar

import (
	"context"

	"go.uber.org/zap"
)

// DefaultLogoThreshold is the minimum number of good keypoint matches for
// the logo stage to accept a card.
const DefaultLogoThreshold = 15

// QRScanner reads an Aadhaar number from a QR code in the image.
type QRScanner interface {
	Scan(imagePath string) QRResult
}

// LogoDetector reports whether the reference logo appears on the card.
type LogoDetector interface {
	Detect(imagePath, logoPath string, threshold int) bool
}

// NumberReader finds a printed Aadhaar number through OCR.
type NumberReader interface {
	ReadNumber(ctx context.Context, imagePath string) (string, bool)
}

// Pipeline runs the QR, logo and text stages in order and stops at the
// first terminal outcome.
type Pipeline struct {
	qr        QRScanner
	logo      LogoDetector
	text      NumberReader
	threshold int
	logger    *zap.Logger
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithLogoThreshold overrides the logo match threshold. Non-positive values
// are ignored.
func WithLogoThreshold(threshold int) Option {
	return func(p *Pipeline) {
		if threshold > 0 {
			p.threshold = threshold
		}
	}
}

// NewPipeline wires the three stages together.
func NewPipeline(qr QRScanner, logo LogoDetector, text NumberReader, logger *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		qr:        qr,
		logo:      logo,
		text:      text,
		threshold: DefaultLogoThreshold,
		logger:    logger.Named("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Verify decides whether the image at imagePath is an Aadhaar card.
func (p *Pipeline) Verify(ctx context.Context, imagePath, logoPath string) VerificationResult {
	qr := p.qr.Scan(imagePath)
	if qr.Status {
		p.logger.Debug("qr stage accepted", zap.String("backend", qr.Method))
		return VerificationResult{Verified: true, Method: MethodQR, AadhaarNumber: qr.AadhaarNumber}
	}
	p.logger.Debug("qr stage rejected", zap.String("reason", qr.Reason))

	if !p.logo.Detect(imagePath, logoPath, p.threshold) {
		p.logger.Debug("logo stage rejected", zap.Int("threshold", p.threshold))
		return VerificationResult{Verified: false, Reason: ReasonLogoNotDetected}
	}

	number, ok := p.text.ReadNumber(ctx, imagePath)
	if ok {
		return VerificationResult{Verified: true, Method: MethodLogoText, AadhaarNumber: number}
	}

	// The logo matched, so the card is accepted even without a number.
	p.logger.Debug("text stage found no number")
	return VerificationResult{Verified: true, Reason: ReasonNumberNotDetected}
}
