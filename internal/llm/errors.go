package llm

import (
	"fmt"
	"strings"

	"github.com/jaqb8/lingocheck/internal/domain"
)

// Error is the only error type the completion client returns. Transport
// and HTTP failures are classified at this boundary so callers never see
// raw net/http errors.
type Error struct {
	Kind domain.ErrorKind
	// StatusCode is the upstream HTTP status for API-level failures, 0 otherwise.
	StatusCode int
	// Details carries schema/shape diagnostics for RESPONSE_VALIDATION errors.
	Details []string
	msg     string
	cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("llm: ")
	b.WriteString(e.msg)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.cause != nil {
		fmt.Fprintf(&b, ": %v", e.cause)
	}
	return b.String()
}

func (e *Error) ErrorKind() domain.ErrorKind { return e.Kind }

func (e *Error) Unwrap() error { return e.cause }

func newError(kind domain.ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, msg: msg, cause: cause}
}

// errorForStatus maps an upstream HTTP status to a taxonomy kind:
// 401 AUTHENTICATION, 429 RATE_LIMIT, 400 INVALID_REQUEST; everything
// else non-2xx is a generic API failure tagged with the status.
func errorForStatus(status int, body string) *Error {
	var kind domain.ErrorKind
	switch status {
	case 401:
		kind = domain.KindAuthentication
	case 429:
		kind = domain.KindRateLimit
	case 400:
		kind = domain.KindInvalidRequest
	default:
		kind = domain.KindUnknown
	}
	return &Error{
		Kind:       kind,
		StatusCode: status,
		msg:        fmt.Sprintf("completion request failed: %s", truncate(body, 200)),
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
