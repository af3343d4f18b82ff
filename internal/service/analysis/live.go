package analysis

import (
	"context"
	"log/slog"

	"github.com/jaqb8/lingocheck/internal/config"
	"github.com/jaqb8/lingocheck/internal/domain"
	"github.com/jaqb8/lingocheck/internal/llm"
)

// completionClient is the slice of the llm client the live provider needs.
type completionClient interface {
	Complete(ctx context.Context, p llm.Params, out any) error
}

// LiveProvider calls the external completion endpoint. Errors pass through
// as llm errors; the engine remaps them into the analysis layer.
type LiveProvider struct {
	client      completionClient
	model       string
	temperature float64
	maxTokens   int
	log         *slog.Logger
}

// NewLiveProvider creates a LiveProvider configured from LLMConfig.
func NewLiveProvider(client completionClient, cfg config.LLMConfig, logger *slog.Logger) *LiveProvider {
	return &LiveProvider{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		log:         logger.With("provider", "live"),
	}
}

func (p *LiveProvider) Complete(ctx context.Context, prompt Prompt) (domain.AnalysisResult, error) {
	var result domain.AnalysisResult

	err := p.client.Complete(ctx, llm.Params{
		Model:         p.model,
		SystemMessage: prompt.System,
		UserMessage:   prompt.User,
		Schema:        resultSchema,
		Temperature:   &p.temperature,
		MaxTokens:     &p.maxTokens,
	}, &result)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	p.log.DebugContext(ctx, "completion succeeded",
		slog.String("mode", prompt.Mode.String()),
		slog.Bool("is_correct", result.IsCorrect()),
	)

	return result, nil
}
