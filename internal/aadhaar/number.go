package aadhaar

import (
	"regexp"
	"strings"
)

var (
	qrNumberPattern      = regexp.MustCompile(`\d{12}`)
	printedNumberPattern = regexp.MustCompile(`\b\d{4}\s?\d{4}\s?\d{4}\b`)

	ocrNoise = strings.NewReplacer("\n", " ", "|", " ", "_", " ")
)

// InterpretQRPayload extracts an Aadhaar number from a decoded QR payload.
// Structured XML wins; otherwise the first run of 12 digits is used.
func InterpretQRPayload(payload string) (string, bool) {
	if parsed := ParseIdentityXML(payload); parsed.OK {
		return parsed.Record.UID, true
	}
	if match := qrNumberPattern.FindString(payload); match != "" {
		return match, true
	}
	return "", false
}

// NormalizeOCRText replaces the line breaks, pipes and underscores OCR
// engines emit around the number boxes with spaces.
func NormalizeOCRText(text string) string {
	return ocrNoise.Replace(text)
}

// FindPrintedNumber returns the first 4-4-4 grouped number in OCR output,
// keeping its internal spacing.
func FindPrintedNumber(text string) (string, bool) {
	match := printedNumberPattern.FindString(NormalizeOCRText(text))
	return match, match != ""
}
