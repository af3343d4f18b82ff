package analysis

import (
	"context"
	"encoding/json"

	"github.com/jaqb8/lingocheck/internal/domain"
	"github.com/jaqb8/lingocheck/internal/llm"
)

// Prompt is the prepared input handed to a completion provider.
type Prompt struct {
	System string
	User   string
	// Mode and Text let the mock provider select fixtures without
	// re-parsing the composed user message.
	Mode domain.AnalysisMode
	Text string
}

// CompletionProvider produces a validated AnalysisResult for a prompt.
// The engine selects one implementation at construction: the live provider
// backed by the completion client, or the deterministic mock. Prompt
// building and error remapping stay in the engine either way.
type CompletionProvider interface {
	Complete(ctx context.Context, prompt Prompt) (domain.AnalysisResult, error)
}

// resultSchema is the strict JSON schema for the AnalysisResult union,
// sent to the completion endpoint as the required response format.
// The anyOf branches mirror the two variants: the correct one forbids
// correction fields, the incorrect one requires them.
var resultSchema = llm.ResponseSchema{
	Name: "analysis_result",
	Schema: json.RawMessage(`{
  "type": "object",
  "anyOf": [
    {
      "properties": {
        "is_correct": {"const": true},
        "original_text": {"type": "string"}
      },
      "required": ["is_correct", "original_text"],
      "additionalProperties": false
    },
    {
      "properties": {
        "is_correct": {"const": false},
        "original_text": {"type": "string"},
        "corrected_text": {"type": "string", "minLength": 1},
        "explanation": {"type": "string", "minLength": 1}
      },
      "required": ["is_correct", "original_text", "corrected_text", "explanation"],
      "additionalProperties": false
    }
  ]
}`),
}
