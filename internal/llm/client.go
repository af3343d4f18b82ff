// Package llm is a thin client for an OpenAI-compatible chat-completions
// endpoint. It constrains the model to schema-conformant JSON via the
// json_schema response format and classifies every failure into the shared
// error taxonomy. It performs exactly one outbound HTTP call per invocation;
// retry policy belongs to the caller.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jaqb8/lingocheck/internal/config"
	"github.com/jaqb8/lingocheck/internal/domain"
)

// MaxTokensCeiling is the hard upper bound for a single completion.
// Requests above it fail fast before any network I/O.
const MaxTokensCeiling = 4096

// ResponseSchema names the strict JSON schema the model output must satisfy.
type ResponseSchema struct {
	Name   string
	Schema json.RawMessage
}

// Params describes one completion call.
type Params struct {
	Model         string
	SystemMessage string
	UserMessage   string
	Schema        ResponseSchema
	// Temperature is optional; nil leaves the endpoint default.
	Temperature *float64
	// MaxTokens is optional; nil leaves the endpoint default.
	// Must not exceed MaxTokensCeiling.
	MaxTokens *int
}

// Validator is implemented by response types with invariants beyond
// what JSON decoding enforces.
type Validator interface {
	Validate() error
}

// Client calls the completion endpoint.
type Client struct {
	baseURL string
	apiKey  string
	siteURL string
	appName string
	http    *http.Client
	log     *slog.Logger
}

// NewClient creates a Client from LLMConfig.
func NewClient(cfg config.LLMConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		siteURL: cfg.SiteURL,
		appName: cfg.AppName,
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     logger.With("adapter", "llm"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type jsonSchemaFormat struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

type responseFormat struct {
	Type       string           `json:"type"`
	JSONSchema jsonSchemaFormat `json:"json_schema"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
	Temperature    *float64       `json:"temperature,omitempty"`
	MaxTokens      *int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete performs one chat completion and decodes the model output into
// out. On success out is guaranteed to satisfy the response schema: the
// reply is strictly decoded (unknown fields rejected) and, when out
// implements Validator, validated. Callers never need to re-validate.
func (c *Client) Complete(ctx context.Context, p Params, out any) error {
	if c.apiKey == "" {
		return newError(domain.KindConfiguration, "completion API key is not configured", nil)
	}
	if p.MaxTokens != nil && *p.MaxTokens > MaxTokensCeiling {
		return newError(domain.KindInvalidRequest,
			fmt.Sprintf("max_tokens %d exceeds ceiling %d", *p.MaxTokens, MaxTokensCeiling), nil)
	}

	reqBody := chatRequest{
		Model: p.Model,
		Messages: []chatMessage{
			{Role: "system", Content: p.SystemMessage},
			{Role: "user", Content: p.UserMessage},
		},
		ResponseFormat: responseFormat{
			Type: "json_schema",
			JSONSchema: jsonSchemaFormat{
				Name:   p.Schema.Name,
				Strict: true,
				Schema: p.Schema.Schema,
			},
		},
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return newError(domain.KindInvalidRequest, "marshal request body", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return newError(domain.KindInvalidRequest, "create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.siteURL != "" {
		req.Header.Set("HTTP-Referer", c.siteURL)
	}
	if c.appName != "" {
		req.Header.Set("X-Title", c.appName)
	}

	c.log.DebugContext(ctx, "completion request", slog.String("model", p.Model))

	resp, err := c.http.Do(req)
	if err != nil {
		// DNS, TLS, timeout, connection refused: all transport-level.
		return newError(domain.KindNetwork, "completion request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return newError(domain.KindNetwork, "read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := errorForStatus(resp.StatusCode, string(body))
		c.log.WarnContext(ctx, "completion request failed",
			slog.Int("status", resp.StatusCode),
			slog.String("kind", apiErr.Kind.String()),
		)
		return apiErr
	}

	var reply chatResponse
	if err := json.Unmarshal(body, &reply); err != nil {
		return &Error{
			Kind:    domain.KindResponseValidation,
			msg:     "decode completion envelope",
			Details: []string{err.Error()},
			cause:   err,
		}
	}
	if len(reply.Choices) == 0 || reply.Choices[0].Message.Content == "" {
		return &Error{
			Kind:    domain.KindResponseValidation,
			msg:     "completion reply has no message content",
			Details: []string{"choices[0].message.content is missing or empty"},
		}
	}

	content := reply.Choices[0].Message.Content

	dec := json.NewDecoder(strings.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return &Error{
			Kind:    domain.KindResponseValidation,
			msg:     fmt.Sprintf("model output does not match schema %q", p.Schema.Name),
			Details: []string{err.Error()},
			cause:   err,
		}
	}

	if v, ok := out.(Validator); ok {
		if err := v.Validate(); err != nil {
			return &Error{
				Kind:    domain.KindResponseValidation,
				msg:     fmt.Sprintf("model output violates schema %q invariants", p.Schema.Name),
				Details: []string{err.Error()},
				cause:   err,
			}
		}
	}

	return nil
}
