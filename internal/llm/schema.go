package llm

import (
	"fmt"

	"github.com/joseph-ayodele/label-scanner/constants"
	"github.com/joseph-ayodele/label-scanner/internal/common"
)

// BuildListingSchema returns the response-schema descriptor for a single
// listing record: every named field is a required string. Built fresh per
// request from the caller's field list.
//
// Duplicate names are rejected rather than last-write-wins; a silently
// collapsed field would change the contract the client asked for.
func BuildListingSchema(fields []string) (map[string]any, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: field list is empty", common.ErrInvalidInput)
	}
	props := make(map[string]any, len(fields))
	required := make([]string, 0, len(fields))
	for _, name := range fields {
		if name == "" {
			return nil, fmt.Errorf("%w: empty field name", common.ErrInvalidInput)
		}
		if _, dup := props[name]; dup {
			return nil, fmt.Errorf("%w: duplicate field name %q", common.ErrInvalidInput, name)
		}
		props[name] = map[string]any{"type": "STRING"}
		required = append(required, name)
	}
	return map[string]any{
		"type":             "OBJECT",
		"properties":       props,
		"required":         required,
		"propertyOrdering": append([]string(nil), fields...),
	}, nil
}

// BuildListingsContainerSchema wraps a listing schema in an object with a
// single required array field.
func BuildListingsContainerSchema(listing map[string]any) map[string]any {
	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			constants.ListingsKey: map[string]any{
				"type":  "ARRAY",
				"items": listing,
			},
		},
		"required": []string{constants.ListingsKey},
	}
}

// BuildContainerJSONSchema returns the draft 2020-12 JSON-Schema equivalent
// of the container, used to validate the model's returned payload locally.
// The provider enforces its own dialect; we still check what came back.
func BuildContainerJSONSchema(fields []string) (map[string]any, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: field list is empty", common.ErrInvalidInput)
	}
	props := make(map[string]any, len(fields))
	required := make([]string, 0, len(fields))
	for _, name := range fields {
		if name == "" {
			return nil, fmt.Errorf("%w: empty field name", common.ErrInvalidInput)
		}
		if _, dup := props[name]; dup {
			return nil, fmt.Errorf("%w: duplicate field name %q", common.ErrInvalidInput, name)
		}
		props[name] = map[string]any{"type": "string"}
		required = append(required, name)
	}
	record := map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			constants.ListingsKey: map[string]any{
				"type":  "array",
				"items": record,
			},
		},
		"required": []string{constants.ListingsKey},
	}, nil
}
