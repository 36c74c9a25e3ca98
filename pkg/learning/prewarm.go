package learning

// PrewarmStatus predicts the next workflow step after currentStep from
// observed step transitions.
type PrewarmStatus struct {
	NextLikelyStep string  `json:"next_likely_step"`
	Confidence     float64 `json:"confidence"`
}

// Prewarm scans adjacent context entries whose first entry's step equals
// currentStep and returns the most frequent following step. Confidence is
// that step's share of all transitions observed from currentStep. With no
// data it returns an empty step and zero confidence.
func (r *Router) Prewarm(currentStep string) PrewarmStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[string]int)
	total := 0
	for i := 0; i+1 < len(r.window); i++ {
		if r.window[i].Request.Metadata.WorkflowStep != currentStep {
			continue
		}
		next := r.window[i+1].Request.Metadata.WorkflowStep
		if next == "" {
			continue
		}
		counts[next]++
		total++
	}
	if total == 0 {
		return PrewarmStatus{}
	}

	var best string
	var bestCount int
	for step, count := range counts {
		if count > bestCount || (count == bestCount && step < best) {
			best = step
			bestCount = count
		}
	}
	return PrewarmStatus{
		NextLikelyStep: best,
		Confidence:     float64(bestCount) / float64(total),
	}
}
