package analysis

import (
	"context"
	"strings"
	"time"

	"github.com/jaqb8/lingocheck/internal/domain"
)

// mockDelay simulates completion latency so the mock path exercises the
// same timeout/cancellation handling as the live one.
const mockDelay = 300 * time.Millisecond

// mockFixture is one canned incorrect-variant response, selected when the
// input text contains any of its trigger substrings (case-insensitive).
type mockFixture struct {
	triggers      []string
	correctedText string
	explanation   string
}

var grammarFixtures = []mockFixture{
	{
		triggers:      []string{"i is", "he go", "she go"},
		correctedText: "I am a student. He goes to school.",
		explanation:   "Use \"am\" with \"I\", not \"is\". With \"he\" and \"she\", present-simple verbs take an -s ending: \"he goes\", not \"he go\".",
	},
	{
		triggers:      []string{"they was", "we was"},
		correctedText: "They were waiting for the bus.",
		explanation:   "\"Was\" is only for \"I\", \"he\", \"she\" and \"it\". With \"they\" and \"we\" the past form of \"be\" is \"were\".",
	},
	{
		triggers:      []string{"dont", "doesnt", "cant"},
		correctedText: "I don't know what to do.",
		explanation:   "Contractions need an apostrophe: \"don't\", \"doesn't\", \"can't\".",
	},
}

var colloquialFixtures = []mockFixture{
	{
		triggers:      []string{"utilize", "due to the fact"},
		correctedText: "I use the bus because my car broke down.",
		explanation:   "\"Utilize\" and \"due to the fact that\" sound stiff in everyday speech. Native speakers say \"use\" and \"because\".",
	},
	{
		triggers:      []string{"i am in possession of", "at this moment in time"},
		correctedText: "I have a ticket right now.",
		explanation:   "\"In possession of\" and \"at this moment in time\" are bureaucratic. In conversation, say \"I have\" and \"right now\".",
	},
}

// MockProvider is a deterministic stand-in for the completion endpoint,
// used when the service runs without a live external-model dependency.
// Fixture selection depends only on the input text and mode, so repeated
// calls with the same input return byte-identical results.
type MockProvider struct {
	delay time.Duration
}

// NewMockProvider creates a MockProvider with the standard simulated delay.
func NewMockProvider() *MockProvider {
	return &MockProvider{delay: mockDelay}
}

func (m *MockProvider) Complete(ctx context.Context, prompt Prompt) (domain.AnalysisResult, error) {
	select {
	case <-time.After(m.delay):
	case <-ctx.Done():
		return domain.AnalysisResult{}, ctx.Err()
	}

	fixtures := grammarFixtures
	if prompt.Mode == domain.ModeColloquialSpeech {
		fixtures = colloquialFixtures
	}

	lower := strings.ToLower(prompt.Text)
	for _, f := range fixtures {
		for _, trigger := range f.triggers {
			if strings.Contains(lower, trigger) {
				result, err := domain.NewIncorrectResult(prompt.Text, f.correctedText, f.explanation)
				if err != nil {
					return domain.AnalysisResult{}, err
				}
				return result, nil
			}
		}
	}

	return domain.NewCorrectResult(prompt.Text), nil
}
