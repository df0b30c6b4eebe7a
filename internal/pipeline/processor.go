// Package pipeline wires ingress, OCR, and the generative adapter into the
// per-request scan flow.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/label-scanner/constants"
	"github.com/joseph-ayodele/label-scanner/internal/common"
	"github.com/joseph-ayodele/label-scanner/internal/ingress"
	"github.com/joseph-ayodele/label-scanner/internal/llm"
	"github.com/joseph-ayodele/label-scanner/internal/ocr"
)

// ScanRequest is one label photo to process.
type ScanRequest struct {
	ImageDataURL string
	// Fields shapes the structured listing; empty means
	// constants.DefaultListingFields.
	Fields []string
}

// ScanResult is the combined outcome returned to the client.
type ScanResult struct {
	ExtractedText string
	Listing       string // JSON text conforming to the container schema
}

// Processor coordinates ingress -> OCR -> prompt/schema -> generate.
type Processor struct {
	store     *ingress.Store
	extractor *ocr.Extractor
	generator llm.ListingGenerator
	logger    *slog.Logger
}

func NewProcessor(store *ingress.Store, extractor *ocr.Extractor, generator llm.ListingGenerator, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{store: store, extractor: extractor, generator: generator, logger: logger}
}

// Process runs the full scan for one request. The stored image is removed
// on every exit path, success or failure.
func (p *Processor) Process(ctx context.Context, req ScanRequest) (ScanResult, error) {
	rid := common.RequestIDFromContext(ctx)
	start := time.Now()

	// Ingress: decode and persist under a unique per-request path.
	data, mimeType, err := ingress.Decode(req.ImageDataURL)
	if err != nil {
		return ScanResult{}, err
	}
	img, err := p.store.Save(data, mimeType)
	if err != nil {
		return ScanResult{}, fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	defer img.Remove()
	p.logger.Info("scan.ingress.ok", "req_id", rid, "path", img.Path, "bytes", len(data), "mime", mimeType)

	// OCR: high-confidence text or bust.
	res, err := p.extractor.Extract(ctx, img.Path)
	if err != nil {
		p.logger.Error("scan.ocr.failed", "req_id", rid, "error", err)
		return ScanResult{}, fmt.Errorf("%w: ocr: %w", common.ErrInternal, err)
	}
	if res.Text == "" {
		p.logger.Warn("scan.ocr.empty", "req_id", rid, "fragments", res.Total, "threshold", p.extractor.Threshold())
		return ScanResult{}, common.ErrNoTextExtracted
	}
	p.logger.Info("scan.ocr.ok",
		"req_id", rid,
		"kept", res.Kept,
		"fragments", res.Total,
		"lang", res.Language,
		"duration_ms", res.Duration.Milliseconds(),
	)

	// Prompt and schemas from the field list. Never fails for the default
	// fields; caller-supplied lists can be rejected here.
	fields := req.Fields
	if len(fields) == 0 {
		fields = constants.DefaultListingFields
	}
	listing, err := llm.BuildListingSchema(fields)
	if err != nil {
		return ScanResult{}, err
	}
	container := llm.BuildListingsContainerSchema(listing)
	validation, err := llm.BuildContainerJSONSchema(fields)
	if err != nil {
		return ScanResult{}, err
	}
	prompt := llm.BuildPrompt(res.Text)

	// Generate. Failures here are client-visible (502), not a silent null.
	gen, err := p.generator.GenerateListing(ctx, llm.GenerateRequest{
		Prompt:         prompt,
		ResponseSchema: container,
	})
	if err != nil {
		p.logger.Error("scan.generate.failed", "req_id", rid, "error", err)
		return ScanResult{}, fmt.Errorf("%w: %w", common.ErrGeneration, err)
	}

	if err := llm.ValidateJSONAgainstSchema(validation, []byte(gen.Text)); err != nil {
		p.logger.Error("scan.generate.invalid_payload", "req_id", rid, "error", err, "bytes", len(gen.Text))
		return ScanResult{}, fmt.Errorf("%w: %w", common.ErrGeneration, err)
	}

	p.logger.Info("scan.done",
		"req_id", rid,
		"model", gen.ModelName,
		"extracted_len", len(res.Text),
		"listing_len", len(gen.Text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return ScanResult{ExtractedText: res.Text, Listing: gen.Text}, nil
}
