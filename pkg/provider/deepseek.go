package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	deepseekBaseURL      = "https://api.deepseek.com/v1"
	defaultDeepSeekModel = "deepseek-chat"
)

var deepseekPricing = Pricing{InputPer1K: 0.00027, OutputPer1K: 0.0011}

// DeepSeekAdapter implements Provider for DeepSeek models.
// DeepSeek uses an OpenAI-compatible API format.
type DeepSeekAdapter struct {
	meter
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// deepseekRequest represents the OpenAI-compatible request format.
type deepseekRequest struct {
	Model       string            `json:"model"`
	Messages    []deepseekMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	Temperature float64           `json:"temperature,omitempty"`
}

// deepseekMessage represents a chat message.
type deepseekMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// deepseekResponse represents the OpenAI-compatible response format.
type deepseekResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// NewDeepSeekAdapter creates a new DeepSeek adapter.
func NewDeepSeekAdapter(apiKey string, opts ...Option) (*DeepSeekAdapter, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("deepseek API key is required")
	}

	a := &DeepSeekAdapter{
		apiKey:     apiKey,
		baseURL:    deepseekBaseURL,
		httpClient: &http.Client{},
	}
	a.pricing = deepseekPricing
	for _, opt := range opts {
		opt(&a.meter)
	}
	return a, nil
}

// Name returns the provider identifier.
func (a *DeepSeekAdapter) Name() string {
	return "deepseek"
}

// Available reports whether the adapter can serve requests.
func (a *DeepSeekAdapter) Available() bool {
	return true
}

// Models returns the list of supported DeepSeek models.
func (a *DeepSeekAdapter) Models() []string {
	return []string{
		"deepseek-chat",
		"deepseek-coder",
		"deepseek-reasoner",
	}
}

// Generate sends a prompt to DeepSeek and returns a normalized result.
func (a *DeepSeekAdapter) Generate(ctx context.Context, req Request) (*Result, error) {
	model := req.Opts.Model
	if model == "" {
		model = defaultDeepSeekModel
	}
	maxTokens := req.Opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	reqBody := deepseekRequest{
		Model: model,
		Messages: []deepseekMessage{
			{Role: "user", Content: req.Prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: req.Opts.Temperature,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, WrapErr(a.Name(), fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, WrapErr(a.Name(), fmt.Errorf("failed to create request: %w", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, WrapErr(a.Name(), fmt.Errorf("deepseek API request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapErr(a.Name(), fmt.Errorf("failed to read response body: %w", err))
	}

	var deepseekResp deepseekResponse
	if err := json.Unmarshal(body, &deepseekResp); err != nil {
		return nil, WrapErr(a.Name(), withStatus(resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)))
	}

	if deepseekResp.Error != nil {
		return nil, WrapErr(a.Name(), withStatus(resp.StatusCode, fmt.Errorf("deepseek API error: %s (type: %s, code: %s)",
			deepseekResp.Error.Message, deepseekResp.Error.Type, deepseekResp.Error.Code)))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, WrapErr(a.Name(), withStatus(resp.StatusCode, fmt.Errorf("deepseek API returned status %d: %s", resp.StatusCode, string(body))))
	}

	if len(deepseekResp.Choices) == 0 {
		return nil, WrapErr(a.Name(), fmt.Errorf("deepseek returned no choices"))
	}

	usage := Usage{
		InputTokens:  deepseekResp.Usage.PromptTokens,
		OutputTokens: deepseekResp.Usage.CompletionTokens,
		TotalTokens:  deepseekResp.Usage.TotalTokens,
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	a.record(usage.InputTokens, usage.OutputTokens)

	return &Result{
		Content:  deepseekResp.Choices[0].Message.Content,
		Usage:    usage,
		Cost:     a.cost(usage),
		Provider: a.Name(),
	}, nil
}
