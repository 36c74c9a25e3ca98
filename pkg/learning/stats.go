package learning

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// providerStats accumulates learning signal for one provider.
type providerStats struct {
	successCount      int
	failureCount      int
	totalResponseTime time.Duration

	// stepScores holds the signed preference score per workflow step:
	// +1 per success feedback, -1 per failure feedback.
	stepScores map[string]int
}

func newProviderStats() *providerStats {
	return &providerStats{stepScores: make(map[string]int)}
}

func (s *providerStats) successRate() float64 {
	total := s.successCount + s.failureCount
	if total == 0 {
		return 0
	}
	return float64(s.successCount) / float64(total)
}

func (s *providerStats) averageResponseTime() time.Duration {
	if s.successCount == 0 {
		return 0
	}
	return s.totalResponseTime / time.Duration(s.successCount)
}

// RecordFeedback updates a provider's learning stats from an outcome and
// appends a feedback entry to the context window. Feedback entries share
// window capacity with routed requests.
func (r *Router) RecordFeedback(req Request, providerName string, fb Feedback) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stats[providerName]
	if !ok {
		s = newProviderStats()
		r.stats[providerName] = s
	}

	if fb.Success {
		s.successCount++
		s.totalResponseTime += fb.ResponseTime
	} else {
		s.failureCount++
	}
	if step := req.Metadata.WorkflowStep; step != "" {
		if fb.Success {
			s.stepScores[step]++
		} else {
			s.stepScores[step]--
		}
	}

	r.pushLocked(ContextEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Request:   req,
		Provider:  providerName,
		Feedback:  &fb,
	})

	r.logger.Debug("recorded feedback",
		zap.String("provider", providerName),
		zap.Bool("success", fb.Success),
		zap.String("step", req.Metadata.WorkflowStep))
}

// ProviderInsight summarizes one provider's learned performance.
type ProviderInsight struct {
	SuccessCount        int           `json:"success_count"`
	FailureCount        int           `json:"failure_count"`
	SuccessRate         float64       `json:"success_rate"`
	AverageResponseTime time.Duration `json:"average_response_time"`
}

// Insights reports what the router has learned so far.
type Insights struct {
	Providers          map[string]ProviderInsight `json:"providers"`
	PreferredProviders map[string]string          `json:"preferred_providers"`
	Recommendations    []string                   `json:"recommendations"`
}

// ContextInsights derives per-provider summaries, the preferred provider
// per workflow step, and plain-text recommendations.
func (r *Router) ContextInsights() Insights {
	r.mu.Lock()
	defer r.mu.Unlock()

	insights := Insights{
		Providers:          make(map[string]ProviderInsight, len(r.stats)),
		PreferredProviders: make(map[string]string),
	}

	names := make([]string, 0, len(r.stats))
	for name := range r.stats {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		s := r.stats[name]
		insights.Providers[name] = ProviderInsight{
			SuccessCount:        s.successCount,
			FailureCount:        s.failureCount,
			SuccessRate:         s.successRate(),
			AverageResponseTime: s.averageResponseTime(),
		}
	}

	// Preferred provider per step: highest score, and it must be
	// positive.
	bestScores := make(map[string]int)
	for _, name := range names {
		for step, score := range r.stats[name].stepScores {
			if score > 0 {
				if current, ok := bestScores[step]; !ok || score > current {
					bestScores[step] = score
					insights.PreferredProviders[step] = name
				}
			}
		}
	}

	if p, ok := insights.PreferredProviders["RESEARCH"]; ok {
		insights.Recommendations = append(insights.Recommendations,
			fmt.Sprintf("%s is performing best for research tasks", p))
	}
	if p, ok := insights.PreferredProviders["GENERATE"]; ok {
		insights.Recommendations = append(insights.Recommendations,
			fmt.Sprintf("%s is performing best for content generation", p))
	}
	for _, name := range names {
		s := r.stats[name]
		if s.successCount+s.failureCount > 0 && s.successRate() < 0.7 {
			insights.Recommendations = append(insights.Recommendations,
				fmt.Sprintf("%s has a low success rate; consider reviewing recent failures", name))
		}
	}

	return insights
}
