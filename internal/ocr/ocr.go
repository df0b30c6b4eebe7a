package ocr

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// DefaultConfidenceThreshold drops OCR fragments the engine was unsure
// about before they reach the prompt.
const DefaultConfidenceThreshold = 0.7

// Fragment is one recognized piece of text with the engine's confidence
// normalized to 0..1.
type Fragment struct {
	Text       string
	Confidence float32
}

// Engine produces fragments for an image. Implementations must preserve
// the order text was recognized in.
type Engine interface {
	Recognize(ctx context.Context, path string) ([]Fragment, error)
	Close() error
}

type Config struct {
	Languages           []string // tesseract codes; default eng+tel
	ConfidenceThreshold float32  // default DefaultConfidenceThreshold
	TessdataDir         string
}

type ExtractionResult struct {
	Text     string
	Total    int // fragments the engine returned
	Kept     int // fragments at or above the threshold
	Language string
	Duration time.Duration
}

// Extractor is Stage 1: stored image -> high-confidence text blob.
type Extractor struct {
	cfg    Config
	engine Engine
	logger *slog.Logger
}

func NewExtractor(cfg Config, engine Engine, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"eng", "tel"}
	}
	if cfg.ConfidenceThreshold == 0 {
		cfg.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	return &Extractor{cfg: cfg, engine: engine, logger: logger}
}

func (e *Extractor) Threshold() float32 { return e.cfg.ConfidenceThreshold }

// Extract runs the engine over the image and keeps only fragments at or
// above the confidence threshold, joined by single spaces in engine order.
// An empty string means nothing cleared the threshold; callers treat that
// as a terminal condition.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	lang := strings.Join(e.cfg.Languages, "+")

	frags, err := e.engine.Recognize(ctx, path)
	if err != nil {
		e.logger.Error("ocr.recognize_failed", "path", path, "lang", lang, "error", err)
		return ExtractionResult{Language: lang, Duration: time.Since(start)}, err
	}

	kept := FilterFragments(frags, e.cfg.ConfidenceThreshold)
	res := ExtractionResult{
		Text:     JoinFragments(kept),
		Total:    len(frags),
		Kept:     len(kept),
		Language: lang,
		Duration: time.Since(start),
	}
	e.logger.Debug("ocr.extract.ok",
		"path", path,
		"lang", lang,
		"fragments", res.Total,
		"kept", res.Kept,
		"threshold", e.cfg.ConfidenceThreshold,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// FilterFragments retains fragments with confidence >= threshold,
// preserving input order.
func FilterFragments(frags []Fragment, threshold float32) []Fragment {
	out := make([]Fragment, 0, len(frags))
	for _, f := range frags {
		if f.Confidence >= threshold {
			out = append(out, f)
		}
	}
	return out
}

// JoinFragments concatenates fragment text with single spaces.
func JoinFragments(frags []Fragment) string {
	parts := make([]string, 0, len(frags))
	for _, f := range frags {
		if f.Text == "" {
			continue
		}
		parts = append(parts, f.Text)
	}
	return strings.Join(parts, " ")
}
