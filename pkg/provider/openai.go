package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIModel = "gpt-5.2-thinking"

var openaiPricing = Pricing{InputPer1K: 0.0025, OutputPer1K: 0.01}

// OpenAIAdapter implements Provider for OpenAI models.
type OpenAIAdapter struct {
	meter
	client openai.Client
}

// NewOpenAIAdapter creates a new OpenAI adapter.
func NewOpenAIAdapter(apiKey string, opts ...Option) (*OpenAIAdapter, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	a := &OpenAIAdapter{client: openai.NewClient(option.WithAPIKey(apiKey))}
	a.pricing = openaiPricing
	for _, opt := range opts {
		opt(&a.meter)
	}
	return a, nil
}

// Name returns the provider identifier.
func (a *OpenAIAdapter) Name() string {
	return "openai"
}

// Available reports whether the adapter can serve requests.
func (a *OpenAIAdapter) Available() bool {
	return true
}

// Models returns the list of supported OpenAI models.
func (a *OpenAIAdapter) Models() []string {
	return []string{
		"gpt-5.2-instant",
		"gpt-5.2-thinking",
		"gpt-5.2-codex",
		"gpt-5.2-pro",
	}
}

// Generate sends a prompt to OpenAI and returns a normalized result.
func (a *OpenAIAdapter) Generate(ctx context.Context, req Request) (*Result, error) {
	model := req.Opts.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	maxTokens := int64(req.Opts.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 4096
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		MaxCompletionTokens: openai.Int(maxTokens),
	}
	if req.Opts.Temperature > 0 {
		params.Temperature = openai.Float(req.Opts.Temperature)
	}

	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apierr *openai.Error
		if errors.As(err, &apierr) {
			err = withStatus(apierr.StatusCode, err)
		}
		return nil, WrapErr(a.Name(), err)
	}
	if len(resp.Choices) == 0 {
		return nil, WrapErr(a.Name(), fmt.Errorf("openai returned no choices"))
	}

	usage := Usage{
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:  int(resp.Usage.TotalTokens),
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	a.record(usage.InputTokens, usage.OutputTokens)

	return &Result{
		Content:  resp.Choices[0].Message.Content,
		Usage:    usage,
		Cost:     a.cost(usage),
		Provider: a.Name(),
	}, nil
}
