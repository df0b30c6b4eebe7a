package llm

import "context"

// GenerateRequest carries one structured-output call to the hosted model.
type GenerateRequest struct {
	Prompt string
	// ResponseSchema is the container schema the model must conform to,
	// in the provider's response-schema dialect (see schema.go).
	ResponseSchema map[string]any
}

// GenerateResult holds the textual payload of the first candidate.
type GenerateResult struct {
	Text      string // JSON text conforming to the container schema
	ModelName string
}

// ListingGenerator is the interface the pipeline depends on. The single
// external-network boundary of the whole service.
type ListingGenerator interface {
	GenerateListing(ctx context.Context, req GenerateRequest) (GenerateResult, error)
}
