// Package learning implements the context-aware router: it keeps a
// bounded window of recent interactions, learns per-provider preference
// scores from feedback, caches responses briefly, and predicts the next
// workflow step for prewarming.
package learning

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/draftforge/airouter/pkg/provider"
	"github.com/draftforge/airouter/pkg/router"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultContextWindow = 10
	defaultCacheTTL      = 5 * time.Minute

	// recentFailureSpan is how many trailing window entries are scanned
	// for recently failed providers.
	recentFailureSpan = 5

	// learnedScoreThreshold is the minimum learned score required to
	// override static default routing.
	learnedScoreThreshold = 2
)

// Config holds the context-aware router's settings.
type Config struct {
	// ContextWindow bounds the interaction window. Defaults to 10.
	ContextWindow int

	// LearningEnabled turns feedback-driven selection on.
	LearningEnabled bool

	// CacheTTL is how long cached responses stay valid. Defaults to
	// five minutes.
	CacheTTL time.Duration
}

// Router routes requests using learned provider preferences and recent
// interaction context.
type Router struct {
	registry *router.Registry
	cfg      Config
	logger   *zap.Logger

	// mu guards window, stats, and cache. It is never held across a
	// provider call.
	mu     sync.Mutex
	window []ContextEntry
	stats  map[string]*providerStats
	cache  map[string]cacheEntry
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the router's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// New creates a context-aware router over the given providers.
func New(providers []provider.Provider, cfg Config, opts ...Option) *Router {
	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = defaultContextWindow
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}

	r := &Router{
		registry: router.NewRegistry(providers),
		cfg:      cfg,
		logger:   zap.NewNop(),
		stats:    make(map[string]*providerStats),
		cache:    make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route selects a provider for the request, invokes it, and records the
// outcome in the context window. Cache hits return immediately without
// touching the window or learning stats.
func (r *Router) Route(ctx context.Context, req Request) (*provider.Result, error) {
	key := cacheKey(req)
	if res, ok := r.cachedResult(key); ok {
		r.logger.Debug("cache hit", zap.String("key", key))
		return res, nil
	}

	prompt := req.Prompt
	if req.Metadata.EnhanceWithContext {
		prompt = r.enhancePrompt(prompt)
	}

	selected, err := r.selectProvider(req)
	if err != nil {
		return nil, err
	}

	preq := provider.Request{Prompt: prompt, Task: provider.TaskType(req.Type), Opts: req.Opts}
	res, primaryErr := selected.Generate(ctx, preq)
	if primaryErr == nil {
		r.recordSuccess(req, res)
		r.writeCache(key, res)
		return res, nil
	}

	r.recordFailure(req, selected.Name(), primaryErr)
	r.logger.Warn("provider failed, trying alternatives",
		zap.String("provider", selected.Name()),
		zap.Error(primaryErr))

	// Unlike the static router, every other provider is attempted here
	// regardless of whether the failure was retryable.
	for _, p := range r.registry.List() {
		if p.Name() == selected.Name() || !p.Available() {
			continue
		}
		res, err := p.Generate(ctx, preq)
		if err != nil {
			r.logger.Warn("alternative provider failed",
				zap.String("provider", p.Name()),
				zap.Error(err))
			continue
		}
		r.recordSuccess(req, res)
		return res, nil
	}

	return nil, primaryErr
}

// selectProvider picks a provider for the request, preferring learned
// scores when they are strong enough.
func (r *Router) selectProvider(req Request) (provider.Provider, error) {
	r.mu.Lock()
	excluded := r.recentFailuresLocked()
	var best provider.Provider
	if r.cfg.LearningEnabled && req.Metadata.WorkflowStep != "" {
		best = r.bestLearnedLocked(req.Metadata.WorkflowStep, excluded)
	}
	r.mu.Unlock()

	if best != nil {
		return best, nil
	}
	return r.staticDefault(req, excluded)
}

// recentFailuresLocked collects providers that failed within the trailing
// window entries. Caller holds mu.
func (r *Router) recentFailuresLocked() map[string]bool {
	failed := make(map[string]bool)
	start := len(r.window) - recentFailureSpan
	if start < 0 {
		start = 0
	}
	for _, entry := range r.window[start:] {
		if entry.failed() && entry.Provider != "" {
			failed[entry.Provider] = true
		}
	}
	return failed
}

// bestLearnedLocked scores each eligible provider and returns the best
// one when its score clears the threshold. Caller holds mu.
func (r *Router) bestLearnedLocked(step string, excluded map[string]bool) provider.Provider {
	var best provider.Provider
	var bestScore float64
	for _, p := range r.registry.List() {
		if excluded[p.Name()] || !p.Available() {
			continue
		}
		score := r.learnedScoreLocked(p.Name(), step)
		if best == nil || score > bestScore {
			best = p
			bestScore = score
		}
	}
	if best != nil && bestScore > learnedScoreThreshold {
		return best
	}
	return nil
}

func (r *Router) learnedScoreLocked(name, step string) float64 {
	s, ok := r.stats[name]
	if !ok {
		return 0
	}
	return 0.7*float64(s.stepScores[step]) + 0.3*(s.successRate()*10)
}

// typeFallbacks orders providers per request type for static default
// routing.
var typeFallbacks = map[RequestType][]string{
	TypeGeneration: {"anthropic", "openai", "google", "deepseek"},
	TypeResearch:   {"google", "anthropic", "openai", "deepseek"},
	TypeAnalysis:   {"google", "anthropic", "openai", "deepseek"},
}

// staticDefault applies the fixed per-type preferences when learning has
// nothing strong to say.
func (r *Router) staticDefault(req Request, excluded map[string]bool) (provider.Provider, error) {
	usable := func(name string) (provider.Provider, bool) {
		p, ok := r.registry.Get(name)
		if !ok || !p.Available() || excluded[name] {
			return nil, false
		}
		return p, true
	}

	for _, name := range typeFallbacks[req.Type] {
		if p, ok := usable(name); ok {
			return p, nil
		}
	}
	for _, p := range r.registry.List() {
		if p.Available() && !excluded[p.Name()] {
			return p, nil
		}
	}
	return nil, router.ErrNoProviders
}

// enhancePrompt appends up to the three most recent successful responses
// to the prompt, each truncated to 200 characters.
func (r *Router) enhancePrompt(prompt string) string {
	r.mu.Lock()
	var snippets []string
	for i := len(r.window) - 1; i >= 0 && len(snippets) < 3; i-- {
		entry := r.window[i]
		if !entry.succeeded() || entry.Response == "" {
			continue
		}
		response := entry.Response
		if len(response) > 200 {
			response = response[:200]
		}
		snippets = append(snippets, response)
	}
	r.mu.Unlock()

	if len(snippets) == 0 {
		return prompt
	}
	// Restore chronological order.
	for i, j := 0, len(snippets)-1; i < j; i, j = i+1, j-1 {
		snippets[i], snippets[j] = snippets[j], snippets[i]
	}
	return fmt.Sprintf("%s\n\nContext from previous research:\n%s", prompt, strings.Join(snippets, "\n"))
}

func (r *Router) recordSuccess(req Request, res *provider.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushLocked(ContextEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Request:   req,
		Provider:  res.Provider,
		Response:  res.Content,
		Feedback:  &Feedback{Success: true},
	})
}

func (r *Router) recordFailure(req Request, providerName string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushLocked(ContextEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Request:   req,
		Provider:  providerName,
		Feedback:  &Feedback{Success: false, Error: err.Error()},
	})
}

// pushLocked appends an entry, evicting the oldest when the window is
// full. Caller holds mu.
func (r *Router) pushLocked(entry ContextEntry) {
	r.window = append(r.window, entry)
	if len(r.window) > r.cfg.ContextWindow {
		r.window = r.window[len(r.window)-r.cfg.ContextWindow:]
	}
}

// ContextWindow returns a copy of the current window, oldest first.
func (r *Router) ContextWindow() []ContextEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	window := make([]ContextEntry, len(r.window))
	copy(window, r.window)
	return window
}

// AddProvider registers a provider for routing.
func (r *Router) AddProvider(p provider.Provider) {
	r.registry.Add(p)
}

// RemoveProvider drops a provider from routing. Its learning stats are
// kept in case it returns.
func (r *Router) RemoveProvider(name string) {
	r.registry.Remove(name)
}

// AvailableProviders returns the names of providers able to serve
// requests.
func (r *Router) AvailableProviders() []string {
	return r.registry.Available()
}
