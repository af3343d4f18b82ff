package domain

import (
	"encoding/json"
	"fmt"
)

// AnalysisMode selects which linguistic analysis the engine performs.
type AnalysisMode string

const (
	ModeGrammarAndSpelling AnalysisMode = "grammar_and_spelling"
	ModeColloquialSpeech   AnalysisMode = "colloquial_speech"
)

func (m AnalysisMode) String() string { return string(m) }

func (m AnalysisMode) IsValid() bool {
	switch m {
	case ModeGrammarAndSpelling, ModeColloquialSpeech:
		return true
	}
	return false
}

// AnalysisResult is the outcome of one analysis, a tagged union
// discriminated by is_correct. The correct variant carries only the
// original text; the incorrect variant additionally carries a correction
// and an explanation. The two variants are mutually exclusive: a correct
// result never serializes correction fields, and a payload mixing the
// variants fails to unmarshal. Construct values through NewCorrectResult
// or NewIncorrectResult; the zero value is not a valid result.
type AnalysisResult struct {
	isCorrect     bool
	originalText  string
	correctedText string
	explanation   string
}

// NewCorrectResult builds the correct variant.
func NewCorrectResult(originalText string) AnalysisResult {
	return AnalysisResult{isCorrect: true, originalText: originalText}
}

// NewIncorrectResult builds the incorrect variant. Both the correction and
// the explanation are required.
func NewIncorrectResult(originalText, correctedText, explanation string) (AnalysisResult, error) {
	if correctedText == "" {
		return AnalysisResult{}, NewValidationError("corrected_text", "required")
	}
	if explanation == "" {
		return AnalysisResult{}, NewValidationError("explanation", "required")
	}
	return AnalysisResult{
		originalText:  originalText,
		correctedText: correctedText,
		explanation:   explanation,
	}, nil
}

func (r AnalysisResult) IsCorrect() bool       { return r.isCorrect }
func (r AnalysisResult) OriginalText() string  { return r.originalText }
func (r AnalysisResult) CorrectedText() string { return r.correctedText }
func (r AnalysisResult) Explanation() string   { return r.explanation }

// analysisResultJSON is the wire shape shared by both variants.
// Pointers distinguish "absent" from "empty" during unmarshaling.
type analysisResultJSON struct {
	IsCorrect     *bool   `json:"is_correct"`
	OriginalText  *string `json:"original_text"`
	CorrectedText *string `json:"corrected_text,omitempty"`
	Explanation   *string `json:"explanation,omitempty"`
}

func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	out := analysisResultJSON{
		IsCorrect:    &r.isCorrect,
		OriginalText: &r.originalText,
	}
	if !r.isCorrect {
		out.CorrectedText = &r.correctedText
		out.Explanation = &r.explanation
	}
	return json.Marshal(out)
}

func (r *AnalysisResult) UnmarshalJSON(data []byte) error {
	var raw analysisResultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.IsCorrect == nil {
		return fmt.Errorf("analysis result: missing is_correct")
	}
	if raw.OriginalText == nil {
		return fmt.Errorf("analysis result: missing original_text")
	}

	if *raw.IsCorrect {
		if raw.CorrectedText != nil || raw.Explanation != nil {
			return fmt.Errorf("analysis result: correct variant must not carry correction fields")
		}
		*r = NewCorrectResult(*raw.OriginalText)
		return nil
	}

	if raw.CorrectedText == nil || *raw.CorrectedText == "" {
		return fmt.Errorf("analysis result: incorrect variant requires corrected_text")
	}
	if raw.Explanation == nil || *raw.Explanation == "" {
		return fmt.Errorf("analysis result: incorrect variant requires explanation")
	}

	res, err := NewIncorrectResult(*raw.OriginalText, *raw.CorrectedText, *raw.Explanation)
	if err != nil {
		return err
	}
	*r = res
	return nil
}
