package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-20250514"

var anthropicPricing = Pricing{InputPer1K: 0.003, OutputPer1K: 0.015}

// AnthropicAdapter implements Provider for Claude models.
type AnthropicAdapter struct {
	meter
	client anthropic.Client
}

// NewAnthropicAdapter creates a new Anthropic adapter.
func NewAnthropicAdapter(apiKey string, opts ...Option) (*AnthropicAdapter, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	a := &AnthropicAdapter{client: anthropic.NewClient(option.WithAPIKey(apiKey))}
	a.pricing = anthropicPricing
	for _, opt := range opts {
		opt(&a.meter)
	}
	return a, nil
}

// Name returns the provider identifier.
func (a *AnthropicAdapter) Name() string {
	return "anthropic"
}

// Available reports whether the adapter can serve requests.
func (a *AnthropicAdapter) Available() bool {
	return true
}

// Models returns the list of supported Claude models.
func (a *AnthropicAdapter) Models() []string {
	return []string{
		"claude-sonnet-4-20250514",
		"claude-opus-4-20250514",
	}
}

// Generate sends a prompt to Claude and returns a normalized result.
func (a *AnthropicAdapter) Generate(ctx context.Context, req Request) (*Result, error) {
	model := req.Opts.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	maxTokens := int64(req.Opts.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 4096
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.Opts.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Opts.Temperature)
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		var apierr *anthropic.Error
		if errors.As(err, &apierr) {
			err = withStatus(apierr.StatusCode, err)
		}
		return nil, WrapErr(a.Name(), err)
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	usage := Usage{
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
	}
	usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	a.record(usage.InputTokens, usage.OutputTokens)

	return &Result{
		Content:  content.String(),
		Usage:    usage,
		Cost:     a.cost(usage),
		Provider: a.Name(),
	}, nil
}
