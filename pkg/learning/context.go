package learning

import (
	"time"

	"github.com/draftforge/airouter/pkg/provider"
)

// RequestType categorizes a request for the context-aware router.
type RequestType string

const (
	TypeResearch   RequestType = "research"
	TypeGeneration RequestType = "generation"
	TypeAnalysis   RequestType = "analysis"
	TypeGeneral    RequestType = "general"
)

// Metadata carries the workflow context of a request.
type Metadata struct {
	// WorkflowStep names the step this request belongs to, e.g.
	// "RESEARCH" or "GENERATE". Learning scores are kept per step.
	WorkflowStep string

	// EnhanceWithContext appends recent successful responses to the
	// prompt before generation.
	EnhanceWithContext bool
}

// Request is a generation request with workflow context.
type Request struct {
	Prompt   string
	Type     RequestType
	Metadata Metadata
	Opts     provider.Options
}

// Feedback reports the outcome of a routed request.
type Feedback struct {
	Success      bool
	ResponseTime time.Duration
	Error        string
}

// ContextEntry records one routing attempt or feedback call in the
// bounded context window.
type ContextEntry struct {
	ID        string
	Timestamp time.Time
	Request   Request
	Provider  string
	Response  string
	Feedback  *Feedback
}

// succeeded reports whether the entry records a successful generation.
func (e ContextEntry) succeeded() bool {
	return e.Feedback != nil && e.Feedback.Success
}

// failed reports whether the entry records a failure.
func (e ContextEntry) failed() bool {
	return e.Feedback != nil && !e.Feedback.Success
}
