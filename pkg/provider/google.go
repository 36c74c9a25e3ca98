package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGoogleModel = "gemini-2.0-pro"

var googlePricing = Pricing{InputPer1K: 0.00125, OutputPer1K: 0.005}

// GoogleAdapter implements Provider for Gemini models.
type GoogleAdapter struct {
	meter
	client *genai.Client
}

// NewGoogleAdapter creates a new Google Gemini adapter.
func NewGoogleAdapter(apiKey string, opts ...Option) (*GoogleAdapter, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("google API key is required")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create google client: %w", err)
	}

	a := &GoogleAdapter{client: client}
	a.pricing = googlePricing
	for _, opt := range opts {
		opt(&a.meter)
	}
	return a, nil
}

// Name returns the provider identifier.
func (a *GoogleAdapter) Name() string {
	return "google"
}

// Available reports whether the adapter can serve requests.
func (a *GoogleAdapter) Available() bool {
	return true
}

// Models returns the list of supported Gemini models.
func (a *GoogleAdapter) Models() []string {
	return []string{
		"gemini-2.0-pro",
	}
}

// Generate sends a prompt to Gemini and returns a normalized result.
func (a *GoogleAdapter) Generate(ctx context.Context, req Request) (*Result, error) {
	model := req.Opts.Model
	if model == "" {
		model = defaultGoogleModel
	}

	resp, err := a.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), nil)
	if err != nil {
		var apierr genai.APIError
		if errors.As(err, &apierr) {
			err = withStatus(apierr.Code, err)
		}
		return nil, WrapErr(a.Name(), err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, WrapErr(a.Name(), fmt.Errorf("google returned no candidates"))
	}

	var content strings.Builder
	if resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.Text != "" {
				content.WriteString(part.Text)
			}
		}
	}

	var usage Usage
	if resp.UsageMetadata != nil {
		usage = Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	a.record(usage.InputTokens, usage.OutputTokens)

	return &Result{
		Content:  content.String(),
		Usage:    usage,
		Cost:     a.cost(usage),
		Provider: a.Name(),
	}, nil
}
