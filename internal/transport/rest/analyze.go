package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jaqb8/lingocheck/internal/analytics"
	"github.com/jaqb8/lingocheck/internal/domain"
	"github.com/jaqb8/lingocheck/internal/service/analysis"
	"github.com/jaqb8/lingocheck/internal/service/quota"
	"github.com/jaqb8/lingocheck/pkg/ctxutil"
)

type analyzer interface {
	Analyze(ctx context.Context, input analysis.AnalyzeInput) (domain.AnalysisResult, error)
}

type quotaTracker interface {
	CheckAndIncrement(ctx context.Context, ip string) (quota.Decision, error)
	Status(ctx context.Context, ip string) (quota.Decision, error)
}

type rewarder interface {
	AwardPointAsync(userID uuid.UUID, requestID string)
}

// requestLimiter is the sliding-window limiter slice the handler needs.
type requestLimiter interface {
	Allow(identity string) bool
	TimeUntilReset(identity string) time.Duration
}

// AnalyzeHandler orchestrates a single analysis request: validation,
// per-caller rate limiting, anonymous quota accounting, the engine
// call, and the optional gamification side effect.
type AnalyzeHandler struct {
	log      *slog.Logger
	engine   analyzer
	quota    quotaTracker
	limiter  requestLimiter
	rewarder rewarder
	sink     analytics.Sink
}

func NewAnalyzeHandler(logger *slog.Logger, engine analyzer, quota quotaTracker, limiter requestLimiter, rewarder rewarder, sink analytics.Sink) *AnalyzeHandler {
	return &AnalyzeHandler{
		log:      logger.With("handler", "analyze"),
		engine:   engine,
		quota:    quota,
		limiter:  limiter,
		rewarder: rewarder,
		sink:     sink,
	}
}

type analyzeRequest struct {
	Text            string `json:"text"`
	Mode            string `json:"mode"`
	AnalysisContext string `json:"analysisContext"`
}

// Analyze handles POST /api/analyze.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, codeTextEmpty)
		return
	}

	input := analysis.AnalyzeInput{
		Text:    req.Text,
		Mode:    domain.AnalysisMode(req.Mode),
		Context: req.AnalysisContext,
	}
	input.Normalize()

	if err := input.Validate(); err != nil {
		writeErrorCode(w, http.StatusBadRequest, validationCode(err))
		return
	}

	user, authenticated := ctxutil.UserFromCtx(ctx)

	// Rate limiting runs only after validation, so malformed requests
	// never consume sliding-window slots.
	identity := callerIdentity(ctx, user, authenticated)
	if !h.limiter.Allow(identity) {
		untilReset := h.limiter.TimeUntilReset(identity)
		retryAfter := int(math.Ceil(untilReset.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		writeJSON(w, http.StatusTooManyRequests, errorResponse{
			ErrorCode: "rate_limit_error",
			Data: map[string]any{
				"time_until_reset": untilReset.Milliseconds(),
			},
		})
		return
	}

	// Anonymous callers burn one unit of the daily quota up front. The
	// unit is consumed even if the analysis itself later fails.
	var decision quota.Decision
	if !authenticated {
		var err error
		decision, err = h.quota.CheckAndIncrement(ctx, ctxutil.ClientIPFromCtx(ctx))
		if err != nil {
			h.log.ErrorContext(ctx, "quota check failed", "error", err)
			writeErrorCode(w, http.StatusInternalServerError, "unknown_error")
			return
		}
		if !decision.Allowed {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{
				ErrorCode: "daily_quota_exceeded",
				Data: map[string]any{
					"reset_at": decision.ResetAt.Format(time.RFC3339),
					"limit":    decision.Limit,
				},
			})
			return
		}
	}

	result, err := h.engine.Analyze(ctx, input)
	if err != nil {
		kind := domain.KindOf(err)
		status, code := statusForKind(kind)
		h.log.ErrorContext(ctx, "analysis failed", "error", err, "error_code", code)
		h.sink.Track(ctx, "analysis_failed", map[string]any{
			"mode":          string(input.Mode),
			"kind":          kind.String(),
			"authenticated": authenticated,
		})
		writeErrorCode(w, status, code)
		return
	}

	if authenticated && result.IsCorrect() {
		h.rewarder.AwardPointAsync(user.ID, ctxutil.RequestIDFromCtx(ctx))
	}

	h.sink.Track(ctx, "text_analyzed", map[string]any{
		"mode":          string(input.Mode),
		"is_correct":    result.IsCorrect(),
		"authenticated": authenticated,
		"text_length":   len(input.Text),
	})

	if !authenticated {
		setQuotaHeaders(w, decision)
	}
	writeJSON(w, http.StatusOK, result)
}

// QuotaStatus handles GET /api/analyze/quota. Authenticated callers have
// no daily cap, so all fields come back null.
func (h *AnalyzeHandler) QuotaStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	type quotaResponse struct {
		Remaining *int    `json:"remaining"`
		Limit     *int    `json:"limit"`
		ResetAt   *string `json:"resetAt"`
	}

	if _, authenticated := ctxutil.UserFromCtx(ctx); authenticated {
		writeJSON(w, http.StatusOK, quotaResponse{})
		return
	}

	decision, err := h.quota.Status(ctx, ctxutil.ClientIPFromCtx(ctx))
	if err != nil {
		h.log.ErrorContext(ctx, "quota status failed", "error", err)
		writeErrorCode(w, http.StatusInternalServerError, "unknown_error")
		return
	}

	resetAt := decision.ResetAt.Format(time.RFC3339)
	writeJSON(w, http.StatusOK, quotaResponse{
		Remaining: &decision.Remaining,
		Limit:     &decision.Limit,
		ResetAt:   &resetAt,
	})
}

func setQuotaHeaders(w http.ResponseWriter, d quota.Decision) {
	w.Header().Set("X-Daily-Quota-Remaining", strconv.Itoa(d.Remaining))
	w.Header().Set("X-Daily-Quota-Reset-At", d.ResetAt.Format(time.RFC3339))
	w.Header().Set("X-Daily-Quota-Limit", strconv.Itoa(d.Limit))
}

// callerIdentity keys the rate limiter: the user ID for authenticated
// callers, the client IP otherwise.
func callerIdentity(ctx context.Context, user domain.User, authenticated bool) string {
	if authenticated {
		return "user:" + user.ID.String()
	}
	return "ip:" + ctxutil.ClientIPFromCtx(ctx)
}

// validationCode picks the per-field error code for the first failed rule.
func validationCode(err error) string {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || len(verr.Errors) == 0 {
		return codeTextEmpty
	}

	f := verr.Errors[0]
	switch f.Field {
	case "text":
		if f.Code == domain.RuleTooLong {
			return codeTextTooLong
		}
		return codeTextEmpty
	case "mode":
		return codeInvalidMode
	case "analysisContext":
		return codeContextTooLong
	default:
		return codeTextEmpty
	}
}
