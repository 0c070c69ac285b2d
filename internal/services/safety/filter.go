// File: internal/services/safety/filter.go
package safety

import (
	"strings"

	"github.com/iyunix/go-wellness/internal/domain"
	"github.com/iyunix/go-wellness/internal/keywords"
)

// Sentinel is the marker the model is told to emit when it judges the
// conversation to be a crisis.
const Sentinel = "CRISIS_DETECTED"

const CrisisMessage = "I'm very concerned about you. Please reach out for help immediately."

// Filter is a keyword net, not a classifier: paraphrased distress slips
// through and unrelated uses of a keyword trip it.
type Filter struct {
	crisis keywords.RuleSet
	panic  keywords.RuleSet
}

func NewFilter(rules *keywords.Rules) *Filter {
	return &Filter{crisis: rules.Crisis, panic: rules.PanicPhrases}
}

// CheckInput runs before any network call.
func (f *Filter) CheckInput(text string) domain.Sentiment {
	if f.crisis.Contains(text) {
		return domain.SentimentCrisis
	}
	return domain.SentimentNeutral
}

// CheckOutput strips every sentinel occurrence from a model reply.
func (f *Filter) CheckOutput(text string) (string, bool) {
	if !strings.Contains(text, Sentinel) {
		return text, false
	}
	return strings.TrimSpace(strings.ReplaceAll(text, Sentinel, "")), true
}

// ActionFor reports trigger_panic when the reply suggests a breathing or
// grounding exercise.
func (f *Filter) ActionFor(reply string) domain.Action {
	if f.panic.Contains(reply) {
		return domain.ActionTriggerPanic
	}
	return domain.ActionNone
}
