package analysis

import (
	"strings"
	"unicode/utf8"

	"github.com/jaqb8/lingocheck/internal/domain"
)

const (
	// MaxTextLen bounds the snippet length in runes, after trimming.
	MaxTextLen = 500
	// MaxContextLen bounds the optional free-text context, after trimming.
	MaxContextLen = 500
)

// AnalyzeInput holds the parameters for one analysis.
type AnalyzeInput struct {
	Text    string
	Mode    domain.AnalysisMode
	Context string
}

// Normalize trims both text fields and collapses whitespace-only context
// to absent. An empty mode defaults to grammar and spelling.
func (i *AnalyzeInput) Normalize() {
	i.Text = strings.TrimSpace(i.Text)
	i.Context = strings.TrimSpace(i.Context)
	if i.Mode == "" {
		i.Mode = domain.ModeGrammarAndSpelling
	}
}

// Validate checks all fields and collects all errors. Call Normalize first.
func (i AnalyzeInput) Validate() error {
	var errs []domain.FieldError

	if i.Text == "" {
		errs = append(errs, domain.FieldError{Field: "text", Code: domain.RuleRequired, Message: "required"})
	} else if utf8.RuneCountInString(i.Text) > MaxTextLen {
		errs = append(errs, domain.FieldError{Field: "text", Code: domain.RuleTooLong, Message: "too long (max 500)"})
	}

	if !i.Mode.IsValid() {
		errs = append(errs, domain.FieldError{Field: "mode", Code: domain.RuleInvalid, Message: "invalid value"})
	}

	if utf8.RuneCountInString(i.Context) > MaxContextLen {
		errs = append(errs, domain.FieldError{Field: "analysisContext", Code: domain.RuleTooLong, Message: "too long (max 500)"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
