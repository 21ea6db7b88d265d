package aadhaar

// Verification methods reported on a successful result.
const (
	MethodQR       = "QR"
	MethodLogoText = "Logo+Text"
)

// QR backend tags reported by the QR stage.
const (
	QRMethodZXing  = "zxing"
	QRMethodOpenCV = "opencv"
)

// Reasons attached to results that carry no confirmed number.
const (
	ReasonImageNotFound     = "Image not found"
	ReasonQRNotDetected     = "QR not detected or invalid"
	ReasonLogoNotDetected   = "Logo not detected"
	ReasonNumberNotDetected = "Aadhaar number not detected — reupload"
)

// VerificationResult is the verdict of a single pipeline run.
type VerificationResult struct {
	Verified      bool   `json:"verified"`
	Method        string `json:"method,omitempty"`
	AadhaarNumber string `json:"aadhaar_number,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// QRResult is the outcome of the QR stage.
type QRResult struct {
	Status        bool
	Method        string
	AadhaarNumber string
	Reason        string
}

// QRFailure builds a failed QR result with the given reason.
func QRFailure(reason string) QRResult {
	return QRResult{Reason: reason}
}

// QRSuccess builds a successful QR result for the backend that decoded it.
func QRSuccess(method, number string) QRResult {
	return QRResult{Status: true, Method: method, AadhaarNumber: number}
}
