package algo

import (
	"strings"

	"github.com/deliverypulse/pulse/schema"
)

// Decision prompt texts.
const (
	PromptFreezeScope    = "Freeze scope / lock acceptance criteria"
	PromptRemoveBlocker  = "Remove blocker or re-route critical path"
	PromptEscalateDeps   = "Escalate dependency alignment / sequence work"
	PromptCapacityChoice = "Decide: add capacity vs reduce deliverable surface area vs accept slip"
	PromptContinue       = "Continue current plan; monitor trend"
)

// Thresholds that make a signal worth a decision.
const (
	promptScopeChanges  = 2
	promptBlockedDays   = 2.0
	promptStagnantDays  = 4.0
	promptDependencies  = 4
	promptTargetDays    = 14
	promptConfidenceMax = 80.0
	maxPrompts          = 2
)

// DecisionPrompts lists every decision category suggested by an entity's
// signals, in fixed order.
func DecisionPrompts(e schema.ScoredEntity) []string {
	var prompts []string
	if e.ScopeChangeEvents14d >= promptScopeChanges {
		prompts = append(prompts, PromptFreezeScope)
	}
	if e.BlockedDurationDays >= promptBlockedDays || e.DaysStagnant >= promptStagnantDays {
		prompts = append(prompts, PromptRemoveBlocker)
	}
	if e.DependencyCritical || e.DependencyCount >= promptDependencies {
		prompts = append(prompts, PromptEscalateDeps)
	}
	if e.DaysToTarget <= promptTargetDays && e.DCSCurrent < promptConfidenceMax {
		prompts = append(prompts, PromptCapacityChoice)
	}
	return prompts
}

// DecisionPrompt joins at most two decision prompts, falling back to
// continuing the current plan.
func DecisionPrompt(e schema.ScoredEntity) string {
	prompts := DecisionPrompts(e)
	if len(prompts) == 0 {
		return PromptContinue
	}
	if len(prompts) > maxPrompts {
		prompts = prompts[:maxPrompts]
	}
	return strings.Join(prompts, "; ")
}
