// Package router selects a provider for each request from a fixed
// task-type preference table, fails over across the remaining providers on
// retryable errors, and enforces a monthly budget.
package router

import (
	"context"
	"errors"

	"github.com/draftforge/airouter/pkg/ledger"
	"github.com/draftforge/airouter/pkg/provider"
	"go.uber.org/zap"
)

// ErrNoProviders is returned when no registered provider can serve a
// request. Its text is part of the observable contract.
var ErrNoProviders = errors.New("No AI providers are available")

// Config holds the static router's settings.
type Config struct {
	// MonthlyBudget is the spend ceiling in USD. Zero disables the gate.
	MonthlyBudget float64

	// FallbackEnabled allows retrying other providers on retryable
	// failures.
	FallbackEnabled bool

	// CostOptimization routes outline tasks to the provider with the
	// lowest spend so far.
	CostOptimization bool

	// Preferences maps task types to preferred providers. Unset entries
	// fall back to the defaults.
	Preferences map[provider.TaskType]string
}

// defaultPreferences is the fixed task-type preference table.
var defaultPreferences = map[provider.TaskType]string{
	provider.TaskResearch: "google",
	provider.TaskAnalysis: "google",
	provider.TaskWriting:  "anthropic",
	provider.TaskReview:   "anthropic",
	provider.TaskOutline:  "google",
}

// StaticRouter routes requests by task type with budget enforcement and
// gated failover.
type StaticRouter struct {
	registry *Registry
	cfg      Config
	ledger   *ledger.Ledger
	prefs    map[provider.TaskType]string
	logger   *zap.Logger
}

// Option configures a StaticRouter.
type Option func(*StaticRouter)

// WithLogger sets the router's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *StaticRouter) {
		r.logger = logger
	}
}

// New creates a static router over the given providers.
func New(providers []provider.Provider, cfg Config, opts ...Option) *StaticRouter {
	prefs := make(map[provider.TaskType]string, len(defaultPreferences))
	for task, name := range defaultPreferences {
		prefs[task] = name
	}
	for task, name := range cfg.Preferences {
		prefs[task] = name
	}

	registry := NewRegistry(providers)
	r := &StaticRouter{
		registry: registry,
		cfg:      cfg,
		ledger:   ledger.New(registry.Names()),
		prefs:    prefs,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SelectProvider picks the provider for a task type from the preference
// table, falling back to the first available provider in registration
// order.
func (r *StaticRouter) SelectProvider(task provider.TaskType) (provider.Provider, error) {
	if task == provider.TaskOutline && r.cfg.CostOptimization {
		if p := r.cheapestAvailable(); p != nil {
			return p, nil
		}
		return nil, ErrNoProviders
	}

	if name, ok := r.prefs[task]; ok {
		if p, found := r.registry.Get(name); found && p.Available() {
			return p, nil
		}
	}

	for _, p := range r.registry.List() {
		if p.Available() {
			return p, nil
		}
	}
	return nil, ErrNoProviders
}

// cheapestAvailable returns the available provider with the lowest
// cumulative spend, or nil when none is available.
func (r *StaticRouter) cheapestAvailable() provider.Provider {
	stats := r.ledger.Stats()
	var best provider.Provider
	var bestCost float64
	for _, p := range r.registry.List() {
		if !p.Available() {
			continue
		}
		cost := stats[p.Name()].TotalCost
		if best == nil || cost < bestCost {
			best = p
			bestCost = cost
		}
	}
	return best
}

// GenerateWithFailover runs one generation with budget gating and gated
// failover. The budget is checked once, before the primary attempt;
// fallback attempts are not re-gated.
func (r *StaticRouter) GenerateWithFailover(ctx context.Context, prompt string, task provider.TaskType, opts provider.Options) (*provider.Result, error) {
	if err := r.ledger.CheckBudget(r.cfg.MonthlyBudget); err != nil {
		return nil, err
	}

	primary, err := r.SelectProvider(task)
	if err != nil {
		return nil, err
	}

	req := provider.Request{Prompt: prompt, Task: task, Opts: opts}
	res, primaryErr := primary.Generate(ctx, req)
	if primaryErr == nil {
		r.record(res)
		return res, nil
	}

	r.logger.Warn("primary provider failed",
		zap.String("provider", primary.Name()),
		zap.String("task", string(task)),
		zap.Error(primaryErr))

	if !r.cfg.FallbackEnabled || !provider.IsRetryable(primaryErr) {
		return nil, primaryErr
	}

	for _, p := range r.registry.List() {
		if p.Name() == primary.Name() || !p.Available() {
			continue
		}
		res, err := p.Generate(ctx, req)
		if err != nil {
			r.logger.Warn("fallback provider failed",
				zap.String("provider", p.Name()),
				zap.Error(err))
			continue
		}
		r.record(res)
		return res, nil
	}

	return nil, primaryErr
}

// Route implements the common routing entry point.
func (r *StaticRouter) Route(ctx context.Context, req provider.Request) (*provider.Result, error) {
	return r.GenerateWithFailover(ctx, req.Prompt, req.Task, req.Opts)
}

func (r *StaticRouter) record(res *provider.Result) {
	r.ledger.Record(res.Provider, res.Usage.TotalTokens, res.Cost)
}

// UsageStats returns a copy of every provider's ledger entry.
func (r *StaticRouter) UsageStats() map[string]ledger.Entry {
	return r.ledger.Stats()
}

// BudgetStatus reports spend relative to the monthly budget.
func (r *StaticRouter) BudgetStatus() ledger.BudgetStatus {
	return r.ledger.Status(r.cfg.MonthlyBudget)
}

// ResetUsage zeroes all ledger entries.
func (r *StaticRouter) ResetUsage() {
	r.ledger.ResetAll()
}

// AddProvider registers a provider and starts tracking its usage.
func (r *StaticRouter) AddProvider(p provider.Provider) {
	r.registry.Add(p)
	r.ledger.Track(p.Name())
}

// RemoveProvider drops a provider from routing. Its ledger entry is kept;
// historical spend still counts toward the budget.
func (r *StaticRouter) RemoveProvider(name string) {
	r.registry.Remove(name)
}

// AvailableProviders returns the names of providers able to serve
// requests.
func (r *StaticRouter) AvailableProviders() []string {
	return r.registry.Available()
}

// Ledger exposes the router's usage ledger.
func (r *StaticRouter) Ledger() *ledger.Ledger {
	return r.ledger
}
