package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/example/aadhaar-check/internal/aadhaar"
)

// MaxUploadSize is the largest image accepted for verification.
const MaxUploadSize = 10 << 20

// multipartOverhead leaves room for boundaries and part headers on top of
// the image itself.
const multipartOverhead = 1 << 20

// Liveness message served on the root path.
const runningMessage = "Aadhaar Verification API is running!"

// Verifier is the use case behind the verify endpoint.
type Verifier interface {
	VerifyImage(ctx context.Context, filename string, imageBytes []byte) (string, aadhaar.VerificationResult, error)
}

// RegisterRoutes wires the HTTP handlers to the Gin router. authMiddleware
// guards only the verify routes.
func RegisterRoutes(router *gin.Engine, uc Verifier, authMiddleware gin.HandlerFunc) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": runningMessage})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	verify := verifyHandler(uc)
	router.POST("/verify_aadhaar/", authMiddleware, verify)
	router.POST("/verify_aadhaar", authMiddleware, verify)
}

func verifyHandler(uc Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > MaxUploadSize+multipartOverhead {
			tooLarge(c)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize+multipartOverhead)

		file, err := formImage(c)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				tooLarge(c)
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
			return
		}
		if file.Size > MaxUploadSize {
			tooLarge(c)
			return
		}

		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unable to open image"})
			return
		}
		defer src.Close()

		data, err := io.ReadAll(io.LimitReader(src, MaxUploadSize+1))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read image"})
			return
		}
		if len(data) > MaxUploadSize {
			tooLarge(c)
			return
		}
		if !isImage(file.Header.Get("Content-Type"), data) {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "upload must be an image"})
			return
		}

		requestID, result, err := uc.VerifyImage(c.Request.Context(), file.Filename, data)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
			return
		}

		c.Header("X-Request-ID", requestID)
		c.JSON(http.StatusOK, result)
	}
}

// formImage reads the upload from the "file" field, falling back to
// "image".
func formImage(c *gin.Context) (*multipart.FileHeader, error) {
	file, err := c.FormFile("file")
	if err == nil {
		return file, nil
	}
	if !errors.Is(err, http.ErrMissingFile) {
		return nil, err
	}
	return c.FormFile("image")
}

// isImage trusts an explicit image content type and sniffs the bytes when
// the client sent none or a generic one.
func isImage(declared string, data []byte) bool {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if declared != "" && declared != "application/octet-stream" {
		return strings.HasPrefix(declared, "image/")
	}
	return strings.HasPrefix(http.DetectContentType(data), "image/")
}

func tooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds upload limit"})
}
