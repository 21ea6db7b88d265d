package imageprocessor

import (
	"github.com/makiuchi-d/gozxing"
	multiqrcode "github.com/makiuchi-d/gozxing/multi/qrcode"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/example/aadhaar-check/internal/aadhaar"
)

// QRBackend decodes every QR payload it can find in an image.
type QRBackend interface {
	Name() string
	Decode(img gocv.Mat) []string
}

// QRDecoder tries its backends in order against the full image and returns
// the first payload that yields an Aadhaar number.
type QRDecoder struct {
	backends []QRBackend
	logger   *zap.Logger
}

// NewQRDecoder builds a decoder. Without explicit backends it uses ZXing
// first and falls back to the OpenCV detector.
func NewQRDecoder(logger *zap.Logger, backends ...QRBackend) *QRDecoder {
	if len(backends) == 0 {
		backends = []QRBackend{ZXingBackend{}, OpenCVBackend{}}
	}
	return &QRDecoder{backends: backends, logger: logger.Named("qr_decoder")}
}

// Scan implements aadhaar.QRScanner.
func (d *QRDecoder) Scan(imagePath string) aadhaar.QRResult {
	img, ok := readImage(imagePath, gocv.IMReadColor)
	if !ok {
		d.logger.Warn("image could not be read", zap.String("path", imagePath))
		return aadhaar.QRFailure(aadhaar.ReasonImageNotFound)
	}
	defer img.Close()

	for _, backend := range d.backends {
		payloads := backend.Decode(img)
		for _, payload := range payloads {
			if number, ok := aadhaar.InterpretQRPayload(payload); ok {
				return aadhaar.QRSuccess(backend.Name(), number)
			}
		}
		d.logger.Debug("qr backend found nothing usable",
			zap.String("backend", backend.Name()),
			zap.Int("payloads", len(payloads)),
		)
	}
	return aadhaar.QRFailure(aadhaar.ReasonQRNotDetected)
}

// ZXingBackend decodes any number of QR codes with the gozxing multi reader.
type ZXingBackend struct{}

func (ZXingBackend) Name() string { return aadhaar.QRMethodZXing }

func (ZXingBackend) Decode(img gocv.Mat) []string {
	src, err := img.ToImage()
	if err != nil {
		return nil
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(src)
	if err != nil {
		return nil
	}
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	results, err := multiqrcode.NewQRCodeMultiReader().DecodeMultiple(bmp, hints)
	if err != nil {
		return nil
	}
	payloads := make([]string, 0, len(results))
	for _, res := range results {
		payloads = append(payloads, res.GetText())
	}
	return payloads
}

// OpenCVBackend uses the QR detector bundled with OpenCV, which decodes at
// most one code per image.
type OpenCVBackend struct{}

func (OpenCVBackend) Name() string { return aadhaar.QRMethodOpenCV }

func (OpenCVBackend) Decode(img gocv.Mat) []string {
	detector := gocv.NewQRCodeDetector()
	defer detector.Close()

	points := gocv.NewMat()
	defer points.Close()
	straight := gocv.NewMat()
	defer straight.Close()

	data := detector.DetectAndDecode(img, &points, &straight)
	if data == "" {
		return nil
	}
	return []string{data}
}
