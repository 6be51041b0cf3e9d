package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"pricetrack/internal/domain/item"
	"pricetrack/internal/shared/prompts"
)

var tracer = otel.Tracer("pricetrack.completion")

// ErrEmptyResponse is returned when the API answers without any choices.
var ErrEmptyResponse = errors.New("completion response has no choices")

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client calls the OpenAI legacy completions endpoint.
type Client struct {
	api         *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

var _ item.Completer = (*Client)(nil)

// NewClient builds a completion client. Model parameters not set in cfg are
// taken from params.
func NewClient(cfg Config, params prompts.ModelParams) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	model := cfg.Model
	if model == "" {
		model = params.Name
	}

	return &Client{
		api:         openai.NewClientWithConfig(clientCfg),
		model:       model,
		maxTokens:   params.MaxTokens,
		temperature: params.Temperature,
	}
}

// Complete sends prompt and returns the text of the first choice.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "completion.Create", trace.WithAttributes(
		attribute.String("llm.model", c.model),
		attribute.Int("llm.max_tokens", c.maxTokens),
		attribute.Int("llm.prompt_length", len(prompt)),
	))
	defer span.End()

	resp, err := c.api.CreateCompletion(ctx, openai.CompletionRequest{
		Model:       c.model,
		Prompt:      prompt,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("failed to create completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		span.SetStatus(codes.Error, ErrEmptyResponse.Error())
		return "", ErrEmptyResponse
	}

	span.SetAttributes(attribute.Int("llm.total_tokens", resp.Usage.TotalTokens))
	return resp.Choices[0].Text, nil
}
