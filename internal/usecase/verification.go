package usecase

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/aadhaar-check/internal/aadhaar"
	"github.com/example/aadhaar-check/internal/logging"
	"github.com/example/aadhaar-check/internal/uploads"
)

// DefaultCacheTTL is how long a verdict is reused for identical uploads.
const DefaultCacheTTL = 10 * time.Minute

// Verifier runs the verification pipeline on a file on disk.
type Verifier interface {
	Verify(ctx context.Context, imagePath, logoPath string) aadhaar.VerificationResult
}

// UploadStore persists an upload for the duration of one verification.
type UploadStore interface {
	Save(filename string, data []byte) (*uploads.TempFile, error)
}

// VerificationUseCase turns an uploaded image into a verdict: it stores the
// bytes in a temp file, runs the pipeline with the reference logo and
// removes the file again. Verdicts are cached by image hash when a cache is
// configured.
type VerificationUseCase struct {
	verifier       Verifier
	store          UploadStore
	cache          Cache
	logoPath       string
	cacheTTL       time.Duration
	logger         *zap.Logger
	retryAttempts  int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewVerificationUseCase constructs a new use case instance. cache may be
// nil to disable caching.
func NewVerificationUseCase(verifier Verifier, store UploadStore, cache Cache, logoPath string, cacheTTL time.Duration, logger *zap.Logger) *VerificationUseCase {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &VerificationUseCase{
		verifier:       verifier,
		store:          store,
		cache:          cache,
		logoPath:       logoPath,
		cacheTTL:       cacheTTL,
		logger:         logger.Named("verification_usecase"),
		retryAttempts:  3,
		initialBackoff: 50 * time.Millisecond,
		maxBackoff:     time.Second,
	}
}

// VerifyImage verifies one uploaded image and returns the request id it was
// processed under. Only infrastructure failures return an error; every
// verification outcome, positive or negative, is a result.
func (uc *VerificationUseCase) VerifyImage(ctx context.Context, filename string, imageBytes []byte) (string, aadhaar.VerificationResult, error) {
	requestID := uuid.NewString()
	opLogger := logging.WithOperation(uc.logger, "usecase.verify_image", requestID)

	sum := sha1.Sum(imageBytes)
	imageHash := hex.EncodeToString(sum[:])

	if result, ok := uc.cachedResult(ctx, requestID, imageHash); ok {
		opLogger.Info("verification served from cache", zap.Bool("verified", result.Verified))
		return requestID, result, nil
	}

	tmp, err := uc.store.Save(filename, imageBytes)
	if err != nil {
		wrapped := logging.NewOperationError("uploads.save", requestID, err)
		opLogger.Error("failed to store upload", zap.Error(wrapped))
		return "", aadhaar.VerificationResult{}, wrapped
	}
	defer func() {
		if err := tmp.Remove(); err != nil {
			opLogger.Warn("failed to remove upload", zap.String("path", tmp.Path), zap.Error(err))
		}
	}()

	started := time.Now()
	result := uc.verifier.Verify(ctx, tmp.Path, uc.logoPath)
	opLogger.Info("verification finished",
		zap.Bool("verified", result.Verified),
		zap.String("method", result.Method),
		zap.String("reason", result.Reason),
		zap.Duration("elapsed", time.Since(started)),
	)

	uc.storeResult(ctx, requestID, imageHash, result)
	return requestID, result, nil
}

func (uc *VerificationUseCase) cachedResult(ctx context.Context, requestID, imageHash string) (aadhaar.VerificationResult, bool) {
	if uc.cache == nil {
		return aadhaar.VerificationResult{}, false
	}

	var (
		result aadhaar.VerificationResult
		found  bool
	)
	err := uc.withRedisRetry(ctx, requestID, "cache.lookup.result", func() error {
		var err error
		result, found, err = uc.cache.Lookup(ctx, imageHash)
		return err
	})
	if err != nil {
		logging.WithOperation(uc.logger, "cache.lookup.result", requestID).Warn("failed to read cache", zap.Error(err))
		return aadhaar.VerificationResult{}, false
	}
	return result, found
}

func (uc *VerificationUseCase) storeResult(ctx context.Context, requestID, imageHash string, result aadhaar.VerificationResult) {
	if uc.cache == nil {
		return
	}
	if err := uc.withRedisRetry(ctx, requestID, "cache.remember.result", func() error {
		return uc.cache.Remember(ctx, imageHash, result, uc.cacheTTL)
	}); err != nil {
		logging.WithOperation(uc.logger, "cache.remember.result", requestID).Warn("failed to cache verification result", zap.Error(err))
	}
}
