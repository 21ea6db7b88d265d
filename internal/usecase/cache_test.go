package usecase

import (
	"errors"
	"testing"

	"github.com/example/aadhaar-check/internal/aadhaar"
)

func TestResultKey(t *testing.T) {
	if got := resultKey(imageHash); got != "aadhaar:verification:"+imageHash {
		t.Fatalf("unexpected key: %s", got)
	}
}

func TestDecodeResult(t *testing.T) {
	result, err := decodeResult(`{"verified":true,"method":"Logo+Text","aadhaar_number":"123456789012"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := aadhaar.VerificationResult{Verified: true, Method: aadhaar.MethodLogoText, AadhaarNumber: "123456789012"}
	if result != want {
		t.Fatalf("expected %+v, got %+v", want, result)
	}

	_, err = decodeResult("{not json")
	if !errors.Is(err, errCorruptEntry) {
		t.Fatalf("expected errCorruptEntry, got %v", err)
	}
	if isTransientError(err) {
		t.Fatal("corrupt entries must not be retried")
	}
}
