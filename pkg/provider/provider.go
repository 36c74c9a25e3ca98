package provider

import (
	"context"
	"sync"
)

// Provider defines the interface for LLM provider adapters.
type Provider interface {
	// Generate sends a prompt to the backend and returns a normalized result.
	Generate(ctx context.Context, req Request) (*Result, error)

	// Name returns the provider's identifier.
	Name() string

	// Available reports whether the provider can currently serve requests.
	Available() bool

	// EstimateCost returns the projected USD cost of generating from prompt.
	EstimateCost(prompt string) float64

	// Usage returns a copy of the provider's cumulative usage counters.
	Usage() Usage
}

// TaskType categorizes a request for routing purposes.
type TaskType string

const (
	TaskResearch TaskType = "research"
	TaskWriting  TaskType = "writing"
	TaskAnalysis TaskType = "analysis"
	TaskOutline  TaskType = "outline"
	TaskReview   TaskType = "review"
)

// Request carries a prompt and its routing category to a provider.
type Request struct {
	Prompt string
	Task   TaskType
	Opts   Options
}

// Options holds per-request generation parameters.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Usage captures normalized token usage.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Result wraps a provider output with usage and cost data.
type Result struct {
	Content  string  `json:"content"`
	Usage    Usage   `json:"usage"`
	Cost     float64 `json:"cost"`
	Provider string  `json:"provider"`
}

// Pricing defines per-1k token pricing in USD.
type Pricing struct {
	InputPer1K  float64 `yaml:"input_per_1k"`
	OutputPer1K float64 `yaml:"output_per_1k"`
}

// Cost computes the USD cost of a usage record under this pricing.
func (p Pricing) Cost(u Usage) float64 {
	return float64(u.InputTokens)/1000.0*p.InputPer1K +
		float64(u.OutputTokens)/1000.0*p.OutputPer1K
}

// meter tracks cumulative usage for one provider. Adapters embed it and
// call record after every successful generation.
type meter struct {
	mu      sync.Mutex
	pricing Pricing
	usage   Usage
}

func (m *meter) record(in, out int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage.InputTokens += in
	m.usage.OutputTokens += out
	m.usage.TotalTokens += in + out
}

// Usage returns a copy of the cumulative counters.
func (m *meter) Usage() Usage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usage
}

// cost prices a single call's usage.
func (m *meter) cost(u Usage) float64 {
	return m.pricing.Cost(u)
}

// EstimateCost projects the cost of a prompt before sending it. The
// completion is assumed to be roughly the size of the prompt.
func (m *meter) EstimateCost(prompt string) float64 {
	tokens := countTokens(prompt)
	return m.pricing.Cost(Usage{InputTokens: tokens, OutputTokens: tokens})
}

// Option configures an adapter at construction time.
type Option func(*meter)

// WithPricing overrides the adapter's default pricing table.
func WithPricing(p Pricing) Option {
	return func(m *meter) {
		m.pricing = p
	}
}
