package router

import (
	"testing"

	"github.com/draftforge/airouter/pkg/provider"
)

func TestInferTask(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   provider.TaskType
	}{
		{"research trigger", "Research the history of typewriters", provider.TaskResearch},
		{"what is trigger", "What is the hero's journey?", provider.TaskResearch},
		{"compare trigger", "Compare these two openings", provider.TaskResearch},
		{"write trigger", "Write a scene set in a lighthouse", provider.TaskWriting},
		{"draft trigger", "Draft the second chapter", provider.TaskWriting},
		{"analyze trigger", "Analyze the pacing of this chapter", provider.TaskAnalysis},
		{"outline trigger", "Outline a mystery novel", provider.TaskOutline},
		{"plan trigger", "Plan the story arc for the sequel", provider.TaskOutline},
		{"review trigger", "Review this paragraph for tone", provider.TaskReview},
		{"proofread trigger", "Proofread my essay", provider.TaskReview},
		{"no trigger defaults to writing", "Once upon a time there was", provider.TaskWriting},
		{"trigger inside word does not match", "The researcher kept notes", provider.TaskWriting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferTask(tt.prompt); got != tt.want {
				t.Errorf("InferTask(%q) = %q, want %q", tt.prompt, got, tt.want)
			}
		})
	}
}

func TestRegistryOrder(t *testing.T) {
	a := provider.NewMockAdapter("a")
	b := provider.NewMockAdapter("b")
	c := provider.NewMockAdapter("c")

	reg := NewRegistry([]provider.Provider{a, b, c})
	if names := reg.Names(); len(names) != 3 || names[0] != "a" || names[2] != "c" {
		t.Errorf("Names = %v", names)
	}

	b.SetAvailable(false)
	if avail := reg.Available(); len(avail) != 2 || avail[0] != "a" || avail[1] != "c" {
		t.Errorf("Available = %v", avail)
	}

	reg.Remove("a")
	if names := reg.Names(); len(names) != 2 || names[0] != "b" {
		t.Errorf("Names after remove = %v", names)
	}

	// Re-adding keeps position.
	b2 := provider.NewMockAdapter("b")
	reg.Add(b2)
	if names := reg.Names(); names[0] != "b" {
		t.Errorf("Names after re-add = %v", names)
	}
}
