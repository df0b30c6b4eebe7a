// scanlabel runs the extraction pipeline once against a local image file,
// without the HTTP front. Handy for checking tesseract language packs and
// prompt output before deploying.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/label-scanner/constants"
	"github.com/joseph-ayodele/label-scanner/internal/llm"
	"github.com/joseph-ayodele/label-scanner/internal/llm/gemini"
	"github.com/joseph-ayodele/label-scanner/internal/ocr"
)

func main() {
	langs := flag.String("langs", "eng,tel", "comma-separated tesseract language codes")
	threshold := flag.Float64("threshold", ocr.DefaultConfidenceThreshold, "minimum OCR confidence in [0,1]")
	generate := flag.Bool("generate", false, "also call the generative model (requires GEMINI_API_KEY)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: scanlabel [flags] <image-path>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)
	if ext := constants.NormalizeExt(filepath.Ext(path)); !constants.IsAllowedExt(ext) {
		fmt.Fprintf(os.Stderr, "unsupported image extension %q\n", ext)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	languages := strings.Split(*langs, ",")
	engine, err := ocr.NewGosseractEngine(languages, os.Getenv("TESSDATA_PREFIX"))
	if err != nil {
		logger.Error("init ocr engine", "error", err)
		os.Exit(1)
	}
	defer func() { _ = engine.Close() }()

	extractor := ocr.NewExtractor(ocr.Config{
		Languages:           languages,
		ConfidenceThreshold: float32(*threshold),
	}, engine, logger)

	res, err := extractor.Extract(ctx, path)
	if err != nil {
		logger.Error("extract", "path", path, "error", err)
		os.Exit(1)
	}
	if res.Text == "" {
		fmt.Fprintf(os.Stderr, "no text above threshold %.2f (%d fragments seen)\n", *threshold, res.Total)
		os.Exit(1)
	}
	fmt.Println(res.Text)

	if !*generate {
		return
	}
	if os.Getenv("GEMINI_API_KEY") == "" {
		fmt.Fprintln(os.Stderr, "GEMINI_API_KEY is required with -generate")
		os.Exit(2)
	}

	listing, err := llm.BuildListingSchema(constants.DefaultListingFields)
	if err != nil {
		logger.Error("build schema", "error", err)
		os.Exit(1)
	}
	client := gemini.NewClient(gemini.Config{}, logger)
	out, err := client.GenerateListing(ctx, llm.GenerateRequest{
		Prompt:         llm.BuildPrompt(res.Text),
		ResponseSchema: llm.BuildListingsContainerSchema(listing),
	})
	if err != nil {
		logger.Error("generate", "error", err)
		os.Exit(1)
	}
	fmt.Println(out.Text)
}
