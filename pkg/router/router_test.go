package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/draftforge/airouter/pkg/provider"
)

func newTestRouter(cfg Config, providers ...provider.Provider) *StaticRouter {
	return New(providers, cfg)
}

func mocks() (*provider.MockAdapter, *provider.MockAdapter) {
	return provider.NewMockAdapter("google"), provider.NewMockAdapter("anthropic")
}

func TestSelectProviderPreferenceTable(t *testing.T) {
	google, anthropic := mocks()
	r := newTestRouter(Config{}, google, anthropic)

	tests := []struct {
		task provider.TaskType
		want string
	}{
		{provider.TaskResearch, "google"},
		{provider.TaskAnalysis, "google"},
		{provider.TaskWriting, "anthropic"},
		{provider.TaskReview, "anthropic"},
		{provider.TaskOutline, "google"},
	}
	for _, tt := range tests {
		t.Run(string(tt.task), func(t *testing.T) {
			p, err := r.SelectProvider(tt.task)
			if err != nil {
				t.Fatalf("SelectProvider: %v", err)
			}
			if p.Name() != tt.want {
				t.Errorf("SelectProvider(%s) = %q, want %q", tt.task, p.Name(), tt.want)
			}
		})
	}
}

func TestSelectProviderFallsBackWhenPreferredUnavailable(t *testing.T) {
	google, anthropic := mocks()
	google.SetAvailable(false)
	r := newTestRouter(Config{}, google, anthropic)

	p, err := r.SelectProvider(provider.TaskResearch)
	if err != nil {
		t.Fatalf("SelectProvider: %v", err)
	}
	if p.Name() != "anthropic" {
		t.Errorf("expected fallback to anthropic, got %q", p.Name())
	}
}

func TestSelectProviderNoneAvailable(t *testing.T) {
	google, anthropic := mocks()
	google.SetAvailable(false)
	anthropic.SetAvailable(false)
	r := newTestRouter(Config{}, google, anthropic)

	_, err := r.SelectProvider(provider.TaskResearch)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "No AI providers are available" {
		t.Errorf("error = %q", err.Error())
	}
}

func TestSelectProviderOutlineCostOptimization(t *testing.T) {
	google, anthropic := mocks()
	r := newTestRouter(Config{CostOptimization: true}, google, anthropic)

	// Seed spend so anthropic is cheaper.
	r.Ledger().Record("google", 100, 0.50)
	r.Ledger().Record("anthropic", 100, 0.10)

	p, err := r.SelectProvider(provider.TaskOutline)
	if err != nil {
		t.Fatalf("SelectProvider: %v", err)
	}
	if p.Name() != "anthropic" {
		t.Errorf("expected cheapest provider anthropic, got %q", p.Name())
	}
}

func TestGenerateWithFailoverSuccessRecordsLedger(t *testing.T) {
	google, anthropic := mocks()
	r := newTestRouter(Config{MonthlyBudget: 10, FallbackEnabled: true}, google, anthropic)

	res, err := r.GenerateWithFailover(context.Background(), "research topic", provider.TaskResearch, provider.Options{})
	if err != nil {
		t.Fatalf("GenerateWithFailover: %v", err)
	}
	if res.Provider != "google" {
		t.Errorf("Provider = %q, want google", res.Provider)
	}

	stats := r.UsageStats()
	if stats["google"].RequestCount != 1 {
		t.Errorf("google RequestCount = %d, want 1", stats["google"].RequestCount)
	}
	if stats["anthropic"].RequestCount != 0 {
		t.Errorf("anthropic RequestCount = %d, want 0", stats["anthropic"].RequestCount)
	}
}

func TestGenerateWithFailoverRetryableError(t *testing.T) {
	google, anthropic := mocks()
	google.FailWith(errors.New("rate limit exceeded"))
	r := newTestRouter(Config{MonthlyBudget: 10, FallbackEnabled: true}, google, anthropic)

	res, err := r.GenerateWithFailover(context.Background(), "research topic", provider.TaskResearch, provider.Options{})
	if err != nil {
		t.Fatalf("GenerateWithFailover: %v", err)
	}
	if res.Provider != "anthropic" {
		t.Errorf("Provider = %q, want fallback anthropic", res.Provider)
	}

	// Only the fallback's ledger entry is incremented.
	stats := r.UsageStats()
	if stats["google"].RequestCount != 0 {
		t.Errorf("google RequestCount = %d, want 0", stats["google"].RequestCount)
	}
	if stats["anthropic"].RequestCount != 1 {
		t.Errorf("anthropic RequestCount = %d, want 1", stats["anthropic"].RequestCount)
	}
}

func TestGenerateWithFailoverNonRetryableError(t *testing.T) {
	google, anthropic := mocks()
	google.FailWith(errors.New("invalid model name"))
	r := newTestRouter(Config{MonthlyBudget: 10, FallbackEnabled: true}, google, anthropic)

	_, err := r.GenerateWithFailover(context.Background(), "research topic", provider.TaskResearch, provider.Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	if anthropic.Calls() != 0 {
		t.Error("non-retryable error must not trigger fallback")
	}
}

func TestGenerateWithFailoverFallbackDisabled(t *testing.T) {
	google, anthropic := mocks()
	google.FailWith(errors.New("rate limit exceeded"))
	r := newTestRouter(Config{MonthlyBudget: 10, FallbackEnabled: false}, google, anthropic)

	_, err := r.GenerateWithFailover(context.Background(), "research topic", provider.TaskResearch, provider.Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	if anthropic.Calls() != 0 {
		t.Error("disabled fallback must not call other providers")
	}
}

func TestGenerateWithFailoverAllFailReturnsOriginalError(t *testing.T) {
	google, anthropic := mocks()
	google.FailWith(errors.New("rate limit exceeded"))
	anthropic.FailWith(errors.New("service unavailable"))
	r := newTestRouter(Config{MonthlyBudget: 10, FallbackEnabled: true}, google, anthropic)

	_, err := r.GenerateWithFailover(context.Background(), "research topic", provider.TaskResearch, provider.Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "rate limit") {
		t.Errorf("expected the original error, got %q", err.Error())
	}
}

func TestBudgetGate(t *testing.T) {
	google, anthropic := mocks()
	r := newTestRouter(Config{MonthlyBudget: 0.01, FallbackEnabled: true}, google, anthropic)

	r.Ledger().Record("google", 1000, 0.02)

	_, err := r.GenerateWithFailover(context.Background(), "research topic", provider.TaskResearch, provider.Options{})
	if err == nil {
		t.Fatal("expected budget error")
	}
	if !strings.Contains(err.Error(), "Monthly budget exceeded") {
		t.Errorf("error = %q, want budget message", err.Error())
	}
	if google.Calls() != 0 || anthropic.Calls() != 0 {
		t.Error("budget gate must prevent any provider call")
	}
}

func TestUsageStatsIndependentOfInternalState(t *testing.T) {
	google, anthropic := mocks()
	r := newTestRouter(Config{MonthlyBudget: 10}, google, anthropic)

	if _, err := r.GenerateWithFailover(context.Background(), "x", provider.TaskResearch, provider.Options{}); err != nil {
		t.Fatalf("GenerateWithFailover: %v", err)
	}

	stats := r.UsageStats()
	entry := stats["google"]
	entry.RequestCount = 99
	stats["google"] = entry

	if got := r.UsageStats()["google"].RequestCount; got != 1 {
		t.Errorf("RequestCount = %d after mutating copy, want 1", got)
	}
}

func TestBudgetStatus(t *testing.T) {
	google, anthropic := mocks()
	r := newTestRouter(Config{MonthlyBudget: 10}, google, anthropic)
	r.Ledger().Record("google", 100, 4)

	status := r.BudgetStatus()
	if status.Used != 4 || status.Remaining != 6 || status.Percentage != 40 {
		t.Errorf("status = %+v", status)
	}
}

func TestAddRemoveProvider(t *testing.T) {
	google, _ := mocks()
	r := newTestRouter(Config{}, google)

	extra := provider.NewMockAdapter("deepseek")
	r.AddProvider(extra)

	names := r.AvailableProviders()
	if len(names) != 2 || names[1] != "deepseek" {
		t.Errorf("AvailableProviders = %v", names)
	}
	if _, ok := r.UsageStats()["deepseek"]; !ok {
		t.Error("added provider missing from ledger")
	}

	r.RemoveProvider("deepseek")
	if names := r.AvailableProviders(); len(names) != 1 {
		t.Errorf("AvailableProviders after remove = %v", names)
	}
}
