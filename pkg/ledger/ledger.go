// Package ledger tracks per-provider spend against a monthly ceiling.
package ledger

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Entry holds the running totals for one provider.
type Entry struct {
	TotalTokens  int       `json:"total_tokens"`
	TotalCost    float64   `json:"total_cost"`
	RequestCount int       `json:"request_count"`
	LastReset    time.Time `json:"last_reset"`
}

// BudgetStatus reports spend relative to the configured ceiling.
type BudgetStatus struct {
	Used       float64 `json:"used"`
	Budget     float64 `json:"budget"`
	Remaining  float64 `json:"remaining"`
	Percentage float64 `json:"percentage"`
}

// Ledger accumulates usage totals per provider. Totals only grow, except
// through an explicit reset.
type Ledger struct {
	mu      sync.RWMutex
	entries map[string]Entry
	logger  *zap.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger used for spend events.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// New creates a ledger with zeroed entries for every named provider.
func New(providers []string, opts ...Option) *Ledger {
	l := &Ledger{
		entries: make(map[string]Entry, len(providers)),
		logger:  zap.NewNop(),
	}
	now := time.Now()
	for _, name := range providers {
		l.entries[name] = Entry{LastReset: now}
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Track adds a zeroed entry for a provider if one does not exist yet.
func (l *Ledger) Track(provider string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[provider]; !ok {
		l.entries[provider] = Entry{LastReset: time.Now()}
	}
}

// Remove drops a provider's entry.
func (l *Ledger) Remove(provider string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, provider)
}

// Record adds one request's tokens and cost to a provider's totals.
func (l *Ledger) Record(provider string, tokens int, cost float64) {
	l.mu.Lock()
	entry := l.entries[provider]
	entry.TotalTokens += tokens
	entry.TotalCost += cost
	entry.RequestCount++
	if entry.LastReset.IsZero() {
		entry.LastReset = time.Now()
	}
	l.entries[provider] = entry
	l.mu.Unlock()

	l.logger.Debug("recorded usage",
		zap.String("provider", provider),
		zap.Int("tokens", tokens),
		zap.Float64("cost", cost))
}

// TotalCost sums spend across all providers.
func (l *Ledger) TotalCost() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var total float64
	for _, entry := range l.entries {
		total += entry.TotalCost
	}
	return total
}

// Stats returns a copy of every provider's totals.
func (l *Ledger) Stats() map[string]Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	stats := make(map[string]Entry, len(l.entries))
	for name, entry := range l.entries {
		stats[name] = entry
	}
	return stats
}

// Reset zeroes one provider's totals and stamps the reset time.
func (l *Ledger) Reset(provider string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[provider]; ok {
		l.entries[provider] = Entry{LastReset: time.Now()}
	}
}

// ResetAll zeroes every provider's totals.
func (l *Ledger) ResetAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	for name := range l.entries {
		l.entries[name] = Entry{LastReset: now}
	}
}

// Status reports current spend relative to budget. Remaining is floored
// at zero; percentage is 0 when no budget is configured.
func (l *Ledger) Status(budget float64) BudgetStatus {
	used := l.TotalCost()
	status := BudgetStatus{Used: used, Budget: budget}
	if remaining := budget - used; remaining > 0 {
		status.Remaining = remaining
	}
	if budget > 0 {
		status.Percentage = used / budget * 100
	}
	return status
}

// CheckBudget returns an error once total spend has reached the ceiling.
// A zero or negative budget disables the gate.
func (l *Ledger) CheckBudget(budget float64) error {
	if budget <= 0 {
		return nil
	}
	used := l.TotalCost()
	if used >= budget {
		return fmt.Errorf("Monthly budget exceeded. Current usage: $%.2f, Budget: $%.2f", used, budget)
	}
	return nil
}
