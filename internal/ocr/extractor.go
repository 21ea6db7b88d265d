package ocr

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/aadhaar-check/internal/aadhaar"
)

// TextExtractor implements aadhaar.NumberReader on top of an Engine.
type TextExtractor struct {
	engine Engine
	logger *zap.Logger
}

// NewTextExtractor wraps an engine.
func NewTextExtractor(engine Engine, logger *zap.Logger) *TextExtractor {
	return &TextExtractor{engine: engine, logger: logger.Named("text_extractor")}
}

// ReadNumber runs OCR over the full image and returns the first grouped
// 12 digit number. Engine failures are logged and treated as no text.
func (x *TextExtractor) ReadNumber(ctx context.Context, imagePath string) (string, bool) {
	text, err := x.engine.Recognize(ctx, imagePath)
	if err != nil {
		x.logger.Warn("ocr failed",
			zap.String("engine", x.engine.Name()),
			zap.String("path", imagePath),
			zap.Error(err),
		)
		return "", false
	}
	return aadhaar.FindPrintedNumber(text)
}
