package router

import (
	"strings"

	"github.com/draftforge/airouter/pkg/provider"
)

// taskTriggers maps each task type to the phrases that indicate it.
var taskTriggers = map[provider.TaskType][]string{
	provider.TaskResearch: {"research", "find", "look up", "what is", "compare", "sources"},
	provider.TaskWriting:  {"write", "draft", "compose", "rewrite", "continue the"},
	provider.TaskAnalysis: {"analyze", "analyse", "evaluate", "assess", "explain why"},
	provider.TaskOutline:  {"outline", "plan", "structure", "organize"},
	provider.TaskReview:   {"review", "critique", "proofread", "feedback on"},
}

type compiledTrigger struct {
	task    provider.TaskType
	trigger string
}

// compiledTriggers is sorted by trigger length, longest first, so more
// specific phrases win.
var compiledTriggers = compileTriggers()

func compileTriggers() []compiledTrigger {
	var rules []compiledTrigger
	for task, triggers := range taskTriggers {
		for _, trigger := range triggers {
			rules = append(rules, compiledTrigger{task: task, trigger: strings.ToLower(trigger)})
		}
	}
	for i := 0; i < len(rules); i++ {
		for j := i + 1; j < len(rules); j++ {
			if len(rules[j].trigger) > len(rules[i].trigger) {
				rules[i], rules[j] = rules[j], rules[i]
			}
		}
	}
	return rules
}

// InferTask guesses the task type of a prompt from trigger phrases.
// Prompts that match nothing default to writing.
func InferTask(prompt string) provider.TaskType {
	promptLower := strings.ToLower(prompt)

	for _, rule := range compiledTriggers {
		if containsTrigger(promptLower, rule.trigger) {
			return rule.task
		}
	}
	return provider.TaskWriting
}

// containsTrigger checks if the prompt contains the trigger phrase.
// It looks for the trigger as a word or phrase boundary match.
func containsTrigger(prompt, trigger string) bool {
	idx := strings.Index(prompt, trigger)
	if idx == -1 {
		return false
	}

	// Check word boundary before trigger
	if idx > 0 {
		prev := prompt[idx-1]
		if isWordChar(prev) {
			return false
		}
	}

	// Check word boundary after trigger
	endIdx := idx + len(trigger)
	if endIdx < len(prompt) {
		next := prompt[endIdx]
		if isWordChar(next) {
			return false
		}
	}

	return true
}

func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
}
