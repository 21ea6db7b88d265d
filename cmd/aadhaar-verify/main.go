package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/example/aadhaar-check/internal/aadhaar"
	"github.com/example/aadhaar-check/internal/imageprocessor"
	"github.com/example/aadhaar-check/internal/logging"
	"github.com/example/aadhaar-check/internal/ocr"
)

type options struct {
	logoPath  string
	threshold int
	engine    string
	logLevel  string
	images    []string
}

type verifier interface {
	Verify(ctx context.Context, imagePath, logoPath string) aadhaar.VerificationResult
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "aadhaar-verify: %v\n", err)
		os.Exit(2)
	}

	logger, err := logging.NewLogger(opts.logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "aadhaar-verify: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	engine, closeEngine, err := ocr.NewEngine(ctx, opts.engine, []string{"eng"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "aadhaar-verify: %v\n", err)
		os.Exit(1)
	}
	defer closeEngine() //nolint:errcheck

	pipeline := aadhaar.NewPipeline(
		imageprocessor.NewQRDecoder(logger),
		imageprocessor.NewLogoMatcher(logger),
		ocr.NewTextExtractor(engine, logger),
		logger,
		aadhaar.WithLogoThreshold(opts.threshold),
	)

	if err := run(ctx, pipeline, opts, os.Stdout); err != nil {
		logger.Error("failed to write result", zap.Error(err))
		os.Exit(1)
	}
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("aadhaar-verify", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: aadhaar-verify -logo <path> [flags] <image>...\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.logoPath, "logo", "aadhaar_logo.png", "Reference Aadhaar logo image")
	fs.IntVar(&opts.threshold, "threshold", aadhaar.DefaultLogoThreshold, "Minimum good ORB matches for the logo stage")
	fs.StringVar(&opts.engine, "ocr", ocr.EngineTesseract, "OCR engine: tesseract or vision")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "Log level")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return options{}, fmt.Errorf("missing image path")
	}
	if opts.threshold <= 0 {
		return options{}, fmt.Errorf("threshold must be positive, got %d", opts.threshold)
	}
	opts.images = fs.Args()
	return opts, nil
}

// run prints one JSON result per line, in argument order.
func run(ctx context.Context, v verifier, opts options, out io.Writer) error {
	enc := json.NewEncoder(out)
	for _, image := range opts.images {
		if err := enc.Encode(v.Verify(ctx, image, opts.logoPath)); err != nil {
			return err
		}
	}
	return nil
}
