package analysis

import (
	"fmt"

	"github.com/jaqb8/lingocheck/internal/domain"
)

// System prompts per analysis mode. The model is already constrained to
// the result schema by the response format, so the prompts focus on the
// linguistic task, not on output shape.
const (
	grammarSystemPrompt = `You are an English grammar and spelling checker for language learners.
Analyze the user's text for grammar, spelling, and punctuation errors.

If the text is fully correct, report it as correct and do not invent corrections.
If the text contains errors, provide the corrected text and a short, learner-friendly
explanation of every mistake you fixed. Keep the original meaning and tone.
Explanations must be in simple English suitable for B1-level learners.`

	colloquialSystemPrompt = `You are an English fluency coach focused on natural, colloquial speech.
Analyze whether the user's text sounds like something a native speaker would actually say.

If the text is natural and idiomatic, report it as correct even when a more formal
phrasing exists. If it sounds stilted, overly formal, or non-native, provide a more
natural rewording and briefly explain what made the original sound unnatural.
Explanations must be in simple English suitable for B1-level learners.`
)

func systemPromptFor(mode domain.AnalysisMode) string {
	if mode == domain.ModeColloquialSpeech {
		return colloquialSystemPrompt
	}
	return grammarSystemPrompt
}

// buildUserMessage composes the user message. Context, when present, is
// appended as a second labeled section; without it the message is exactly
// the raw text. The distinction changes model behavior and shows up in
// logs, so no extra framing is ever added around bare text.
func buildUserMessage(text, context string) string {
	if context == "" {
		return text
	}
	return fmt.Sprintf("Text to analyze:\n%s\n\nAdditional context from the user:\n%s", text, context)
}
