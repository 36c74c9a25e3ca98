package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockAdapter returns deterministic responses for local runs and tests.
// Failures and availability can be scripted per instance.
type MockAdapter struct {
	meter
	name            string
	responses       map[string]string
	defaultResponse string

	mu          sync.Mutex
	unavailable bool
	failures    []error
	calls       int
	usagePer    Usage
}

// NewMockAdapter creates a mock adapter with a default response.
func NewMockAdapter(name string) *MockAdapter {
	if name == "" {
		name = "mock"
	}
	a := &MockAdapter{
		name:            name,
		responses:       make(map[string]string),
		defaultResponse: "mock response:",
		usagePer:        Usage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30},
	}
	a.pricing = Pricing{InputPer1K: 0.001, OutputPer1K: 0.002}
	return a
}

// SetResponse scripts a response for an exact prompt.
func (a *MockAdapter) SetResponse(prompt, response string) {
	a.responses[prompt] = response
}

// SetDefaultResponse overrides the fallback response text.
func (a *MockAdapter) SetDefaultResponse(response string) {
	a.defaultResponse = response
}

// SetAvailable toggles the adapter's availability.
func (a *MockAdapter) SetAvailable(available bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.unavailable = !available
}

// FailWith queues errors to return from subsequent Generate calls, in order.
// Once the queue drains, calls succeed again.
func (a *MockAdapter) FailWith(errs ...error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures = append(a.failures, errs...)
}

// Calls returns how many times Generate has been invoked.
func (a *MockAdapter) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// Name returns the adapter identifier.
func (a *MockAdapter) Name() string {
	return a.name
}

// Available reports the scripted availability.
func (a *MockAdapter) Available() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.unavailable
}

// Models returns the list of supported mock models.
func (a *MockAdapter) Models() []string {
	return []string{"mock-1"}
}

// Generate returns a deterministic result for the prompt.
func (a *MockAdapter) Generate(_ context.Context, req Request) (*Result, error) {
	a.mu.Lock()
	a.calls++
	if len(a.failures) > 0 {
		err := a.failures[0]
		a.failures = a.failures[1:]
		a.mu.Unlock()
		return nil, WrapErr(a.name, err)
	}
	usage := a.usagePer
	a.mu.Unlock()

	content, ok := a.responses[req.Prompt]
	if !ok {
		content = fmt.Sprintf("%s\n%s", a.defaultResponse, req.Prompt)
	}
	a.record(usage.InputTokens, usage.OutputTokens)

	return &Result{
		Content:  content,
		Usage:    usage,
		Cost:     a.cost(usage),
		Provider: a.name,
	}, nil
}
