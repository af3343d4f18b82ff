// Package analysis implements the text-analysis engine: per-mode prompt
// selection, user-message composition, and delegation to a completion
// provider (live endpoint or deterministic mock).
package analysis

import (
	"context"
	"log/slog"

	"github.com/jaqb8/lingocheck/internal/domain"
)

// Service is the analysis engine.
type Service struct {
	log      *slog.Logger
	provider CompletionProvider
}

// NewService creates an analysis Service with the given provider.
// The provider choice (live vs mock) is made once at wiring time.
func NewService(logger *slog.Logger, provider CompletionProvider) *Service {
	return &Service{
		log:      logger.With("service", "analysis"),
		provider: provider,
	}
}

// Analyze runs one analysis for already-validated input. On success the
// returned result is schema-valid; on failure the error is an *Error
// carrying a taxonomy kind.
func (s *Service) Analyze(ctx context.Context, input AnalyzeInput) (domain.AnalysisResult, error) {
	prompt := Prompt{
		System: systemPromptFor(input.Mode),
		User:   buildUserMessage(input.Text, input.Context),
		Mode:   input.Mode,
		Text:   input.Text,
	}

	s.log.DebugContext(ctx, "analyzing text",
		slog.String("mode", input.Mode.String()),
		slog.Int("text_len", len(input.Text)),
		slog.Bool("has_context", input.Context != ""),
	)

	result, err := s.provider.Complete(ctx, prompt)
	if err != nil {
		mapped := mapProviderError(err)
		s.log.ErrorContext(ctx, "analysis failed",
			slog.String("mode", input.Mode.String()),
			slog.String("kind", mapped.Kind.String()),
			slog.String("error", err.Error()),
		)
		return domain.AnalysisResult{}, mapped
	}

	return result, nil
}
