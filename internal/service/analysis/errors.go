package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/jaqb8/lingocheck/internal/domain"
	"github.com/jaqb8/lingocheck/internal/llm"
)

// Error is the analysis-layer error type. It re-wraps completion-client
// failures under the same taxonomy kind, preserving diagnostics, so callers
// depend on this layer only.
type Error struct {
	Kind    domain.ErrorKind
	Details []string
	msg     string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("analysis: %s: %v", e.msg, e.cause)
	}
	return "analysis: " + e.msg
}

func (e *Error) ErrorKind() domain.ErrorKind { return e.Kind }

func (e *Error) Unwrap() error { return e.cause }

// mapCompletionKind translates a completion-client kind into the analysis
// layer. The mapping is total and one-to-one: each client kind has exactly
// one analysis kind, and unrecognized kinds collapse to UNKNOWN.
func mapCompletionKind(k domain.ErrorKind) domain.ErrorKind {
	switch k {
	case domain.KindConfiguration:
		return domain.KindConfiguration
	case domain.KindAuthentication:
		return domain.KindAuthentication
	case domain.KindRateLimit:
		return domain.KindRateLimit
	case domain.KindInvalidRequest:
		return domain.KindInvalidRequest
	case domain.KindResponseValidation:
		return domain.KindResponseValidation
	case domain.KindNetwork:
		return domain.KindNetwork
	default:
		return domain.KindUnknown
	}
}

// mapProviderError wraps any provider failure into an analysis Error.
// Completion-client errors keep their kind and diagnostic payload; context
// timeouts and cancellations surface as NETWORK; anything else is UNKNOWN.
func mapProviderError(err error) *Error {
	var clientErr *llm.Error
	if errors.As(err, &clientErr) {
		return &Error{
			Kind:    mapCompletionKind(clientErr.Kind),
			Details: clientErr.Details,
			msg:     "completion failed",
			cause:   err,
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Kind: domain.KindNetwork, msg: "completion timed out or was cancelled", cause: err}
	}

	return &Error{Kind: domain.KindUnknown, msg: "completion failed", cause: err}
}
