// Package ocr reads printed Aadhaar numbers from card images. Recognition is
// delegated to an Engine so local (Tesseract) and remote (Cloud Vision)
// providers are interchangeable.
package ocr

import (
	"context"
	"fmt"
	"strings"
)

// Engine names accepted by NewEngine.
const (
	EngineTesseract = "tesseract"
	EngineVision    = "vision"
)

// Engine turns the image at a path into plain text.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// NewEngine builds the named engine. The returned close func releases any
// client the engine holds and is never nil.
func NewEngine(ctx context.Context, name string, languages []string) (Engine, func() error, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EngineTesseract:
		return NewTesseractEngine(languages...), func() error { return nil }, nil
	case EngineVision:
		engine, err := NewVisionEngine(ctx)
		if err != nil {
			return nil, nil, err
		}
		return engine, engine.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown ocr engine %q", name)
	}
}
