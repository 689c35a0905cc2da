package streamparse

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dealsense/sales-intel/internal/core/domain"
)

// analysisSchema constrains the final parsed document so a downstream
// consumer can never mistake a placeholder or mistyped payload for a real
// analysis. All fields are strings; unknown keys are tolerated since
// provider models routinely add extras.
const analysisSchemaJSON = `{
	"type": "object",
	"properties": {
		"summary":        {"type": "string"},
		"pain_points":    {"type": "string"},
		"talking_points": {"type": "string"},
		"objections":     {"type": "string"},
		"next_steps":     {"type": "string"}
	},
	"required": ["summary"]
}`

var analysisSchema = jsonschema.MustCompileString("analysis.json", analysisSchemaJSON)

// ValidateAnalysis checks a recovered document against the analysis schema.
// A schema violation is a parse failure: the buffer held JSON, just not the
// JSON we asked for.
func ValidateAnalysis(raw []byte) error {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return domain.WrapError(domain.ErrParseFailure, "decode analysis", err)
	}
	if err := analysisSchema.Validate(value); err != nil {
		return domain.WrapError(domain.ErrParseFailure, "validate analysis", err)
	}
	return nil
}

// DecodeAnalysis validates and unmarshals the recovered document.
func DecodeAnalysis(raw []byte) (*domain.Analysis, error) {
	if err := ValidateAnalysis(raw); err != nil {
		return nil, err
	}
	var analysis domain.Analysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, fmt.Errorf("unmarshal analysis: %w", err)
	}
	return &analysis, nil
}
