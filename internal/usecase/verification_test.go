package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/aadhaar-check/internal/aadhaar"
	"github.com/example/aadhaar-check/internal/logging"
	"github.com/example/aadhaar-check/internal/uploads"
)

type stubVerifier struct {
	result    aadhaar.VerificationResult
	calls     int
	logoPath  string
	seenPath  string
	seenBytes []byte
}

func (s *stubVerifier) Verify(ctx context.Context, imagePath, logoPath string) aadhaar.VerificationResult {
	s.calls++
	s.logoPath = logoPath
	s.seenPath = imagePath
	s.seenBytes, _ = os.ReadFile(imagePath)
	return s.result
}

type failingStore struct{ err error }

func (f failingStore) Save(filename string, data []byte) (*uploads.TempFile, error) {
	return nil, f.err
}

type stubCache struct {
	lookupErrs   []error
	remembErrs   []error
	entries      map[string]aadhaar.VerificationResult
	lookupHashes []string
	rememberKeys []string
	ttls         []time.Duration
}

func (s *stubCache) Lookup(ctx context.Context, imageHash string) (aadhaar.VerificationResult, bool, error) {
	s.lookupHashes = append(s.lookupHashes, imageHash)
	if len(s.lookupErrs) > 0 {
		err := s.lookupErrs[0]
		s.lookupErrs = s.lookupErrs[1:]
		if err != nil {
			return aadhaar.VerificationResult{}, false, err
		}
	}
	result, ok := s.entries[imageHash]
	return result, ok, nil
}

func (s *stubCache) Remember(ctx context.Context, imageHash string, result aadhaar.VerificationResult, ttl time.Duration) error {
	s.rememberKeys = append(s.rememberKeys, imageHash)
	s.ttls = append(s.ttls, ttl)
	if len(s.remembErrs) > 0 {
		err := s.remembErrs[0]
		s.remembErrs = s.remembErrs[1:]
		if err != nil {
			return err
		}
	}
	if s.entries == nil {
		s.entries = make(map[string]aadhaar.VerificationResult)
	}
	s.entries[imageHash] = result
	return nil
}

// sha1("image")
const imageHash = "0e76292794888d4f1fa75fb3aff4ca27c58f56a6"

type transientRedisError struct{}

func (transientRedisError) Error() string   { return "redis transient" }
func (transientRedisError) Timeout() bool   { return true }
func (transientRedisError) Temporary() bool { return true }

func newTestStore(t *testing.T) *uploads.Store {
	t.Helper()
	store, err := uploads.NewStore(filepath.Join(t.TempDir(), "uploads"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func newTestUseCase(verifier Verifier, store UploadStore, cache Cache) *VerificationUseCase {
	uc := NewVerificationUseCase(verifier, store, cache, "aadhaar_logo.png", time.Minute, zap.NewNop())
	uc.initialBackoff = time.Millisecond
	uc.maxBackoff = 2 * time.Millisecond
	return uc
}

func TestVerifyImageRunsPipelineAndRemovesUpload(t *testing.T) {
	store := newTestStore(t)
	verifier := &stubVerifier{result: aadhaar.VerificationResult{Verified: true, Method: aadhaar.MethodQR, AadhaarNumber: "123456789012"}}
	uc := newTestUseCase(verifier, store, nil)

	requestID, result, err := uc.VerifyImage(context.Background(), "card.png", []byte("image"))
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if requestID == "" {
		t.Fatal("expected a request id")
	}
	if result != verifier.result {
		t.Fatalf("expected %+v, got %+v", verifier.result, result)
	}
	if verifier.logoPath != "aadhaar_logo.png" {
		t.Fatalf("unexpected logo path: %s", verifier.logoPath)
	}
	if string(verifier.seenBytes) != "image" {
		t.Fatalf("pipeline saw %q instead of the upload", verifier.seenBytes)
	}
	if filepath.Dir(verifier.seenPath) != store.Dir() {
		t.Fatalf("upload was not stored in %s: %s", store.Dir(), verifier.seenPath)
	}
	if _, err := os.Stat(verifier.seenPath); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be removed, stat err: %v", err)
	}
}

func TestVerifyImageReturnsOperationErrorWhenStoreFails(t *testing.T) {
	verifier := &stubVerifier{}
	uc := newTestUseCase(verifier, failingStore{err: errors.New("disk full")}, nil)

	_, _, err := uc.VerifyImage(context.Background(), "card.png", []byte("image"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var opErr *logging.OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected OperationError, got %T", err)
	}
	if opErr.Operation != "uploads.save" {
		t.Fatalf("unexpected operation: %s", opErr.Operation)
	}
	if verifier.calls != 0 {
		t.Fatal("pipeline should not run without a stored upload")
	}
}

func TestVerifyImageServesCachedResult(t *testing.T) {
	cachedResult := aadhaar.VerificationResult{Verified: false, Reason: aadhaar.ReasonLogoNotDetected}
	cache := &stubCache{entries: map[string]aadhaar.VerificationResult{imageHash: cachedResult}}
	verifier := &stubVerifier{result: aadhaar.VerificationResult{Verified: true}}
	uc := newTestUseCase(verifier, failingStore{err: errors.New("unused")}, cache)

	_, result, err := uc.VerifyImage(context.Background(), "card.png", []byte("image"))
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if result != cachedResult {
		t.Fatalf("expected cached %+v, got %+v", cachedResult, result)
	}
	if verifier.calls != 0 {
		t.Fatalf("expected pipeline to be skipped, got %d calls", verifier.calls)
	}
	if cache.lookupHashes[0] != imageHash {
		t.Fatalf("expected lookup by %s, got %s", imageHash, cache.lookupHashes[0])
	}
}

func TestVerifyImageCachesOnMiss(t *testing.T) {
	cache := &stubCache{}
	verifier := &stubVerifier{result: aadhaar.VerificationResult{Verified: true, Reason: aadhaar.ReasonNumberNotDetected}}
	uc := newTestUseCase(verifier, newTestStore(t), cache)

	_, result, err := uc.VerifyImage(context.Background(), "card.png", []byte("image"))
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if result != verifier.result {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(cache.lookupHashes) != 1 {
		t.Fatalf("a cache miss should not be retried, got %d lookups", len(cache.lookupHashes))
	}
	if len(cache.rememberKeys) != 1 || cache.rememberKeys[0] != imageHash {
		t.Fatalf("expected result to be cached under the image hash, got %v", cache.rememberKeys)
	}
	if cache.ttls[0] != time.Minute {
		t.Fatalf("unexpected ttl: %s", cache.ttls[0])
	}

	if _, _, err := uc.VerifyImage(context.Background(), "again.jpg", []byte("image")); err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if verifier.calls != 1 {
		t.Fatalf("expected identical upload to be served from cache, got %d pipeline runs", verifier.calls)
	}
}

func TestVerifyImageRetriesTransientCacheErrors(t *testing.T) {
	cache := &stubCache{lookupErrs: []error{transientRedisError{}}, remembErrs: []error{transientRedisError{}}}
	verifier := &stubVerifier{result: aadhaar.VerificationResult{Verified: true}}
	uc := newTestUseCase(verifier, newTestStore(t), cache)

	if _, _, err := uc.VerifyImage(context.Background(), "card.png", []byte("image")); err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(cache.lookupHashes) != 2 {
		t.Fatalf("expected one retry of the cache read, got %d calls", len(cache.lookupHashes))
	}
	if len(cache.rememberKeys) != 2 || cache.rememberKeys[0] != cache.rememberKeys[1] {
		t.Fatalf("expected one retry of the cache write on the same key, got %v", cache.rememberKeys)
	}
}

func TestVerifyImageIgnoresCacheFailures(t *testing.T) {
	cache := &stubCache{
		lookupErrs: []error{errors.New("connection refused")},
		remembErrs: []error{errors.New("read only replica")},
	}
	verifier := &stubVerifier{result: aadhaar.VerificationResult{Verified: true, Method: aadhaar.MethodLogoText, AadhaarNumber: "1234 5678 9123"}}
	uc := newTestUseCase(verifier, newTestStore(t), cache)

	_, result, err := uc.VerifyImage(context.Background(), "card.png", []byte("image"))
	if err != nil {
		t.Fatalf("cache failures must not fail verification: %v", err)
	}
	if result != verifier.result || verifier.calls != 1 {
		t.Fatalf("expected pipeline result, got %+v after %d calls", result, verifier.calls)
	}
	if len(cache.lookupHashes) != 1 || len(cache.rememberKeys) != 1 {
		t.Fatalf("permanent errors must not be retried: %d lookups, %d writes", len(cache.lookupHashes), len(cache.rememberKeys))
	}
}

func TestVerifyImageIgnoresCorruptCacheEntry(t *testing.T) {
	_, err := decodeResult("{not json")
	cache := &stubCache{lookupErrs: []error{err}}
	verifier := &stubVerifier{result: aadhaar.VerificationResult{Verified: true}}
	uc := newTestUseCase(verifier, newTestStore(t), cache)

	if _, _, err := uc.VerifyImage(context.Background(), "card.png", []byte("image")); err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if verifier.calls != 1 {
		t.Fatalf("expected pipeline to run, got %d calls", verifier.calls)
	}
	if len(cache.lookupHashes) != 1 {
		t.Fatalf("corrupt entries must not be retried, got %d lookups", len(cache.lookupHashes))
	}
}
