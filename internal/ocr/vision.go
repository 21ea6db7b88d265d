package ocr

import (
	"context"
	"fmt"
	"os"

	vision "cloud.google.com/go/vision/apiv1"
)

// VisionEngine sends images to Google Cloud Vision document text detection.
// Credentials come from the environment (GOOGLE_APPLICATION_CREDENTIALS).
type VisionEngine struct {
	client *vision.ImageAnnotatorClient
}

// NewVisionEngine dials the Vision API. The client is shared by all calls.
func NewVisionEngine(ctx context.Context) (*VisionEngine, error) {
	client, err := vision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create vision client: %w", err)
	}
	return &VisionEngine{client: client}, nil
}

func (e *VisionEngine) Name() string { return EngineVision }

// Recognize uploads the image and returns the detected document text.
func (e *VisionEngine) Recognize(ctx context.Context, imagePath string) (string, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, err := vision.NewImageFromReader(f)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	annotation, err := e.client.DetectDocumentText(ctx, img, nil)
	if err != nil {
		return "", fmt.Errorf("detect document text: %w", err)
	}
	if annotation == nil {
		return "", nil
	}
	return annotation.GetText(), nil
}

// Close releases the underlying gRPC connection.
func (e *VisionEngine) Close() error {
	return e.client.Close()
}
