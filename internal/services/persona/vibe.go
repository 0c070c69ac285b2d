// File: internal/services/persona/vibe.go
package persona

import (
	"strings"

	"github.com/iyunix/go-wellness/internal/domain"
	"github.com/iyunix/go-wellness/internal/keywords"
)

// Vibe is a coarse mood label that steers the tone of the next reply.
type Vibe string

const (
	VibeGentle      Vibe = "gentle"
	VibeEncouraging Vibe = "encouraging"
	VibeBalanced    Vibe = "balanced"
)

const (
	// signalWindow is how many trailing turns feed vibe and opener detection.
	signalWindow    = 3
	openerWordCount = 4
)

// DetectVibe scans the last three turns, user and assistant alike. Rule order
// decides ties, so the sad cluster wins over the goal cluster.
func DetectVibe(rules keywords.RuleSet, turns []domain.ChatTurn) Vibe {
	recent := tail(turns, signalWindow)
	parts := make([]string, 0, len(recent))
	for _, t := range recent {
		parts = append(parts, t.Content)
	}

	tag, ok := rules.Match(strings.Join(parts, " "))
	if !ok {
		return VibeBalanced
	}
	switch Vibe(tag) {
	case VibeGentle, VibeEncouraging:
		return Vibe(tag)
	default:
		return VibeBalanced
	}
}

// BannedOpeners returns the first four words of each of the last three
// assistant turns, oldest first, without duplicates.
func BannedOpeners(turns []domain.ChatTurn) []string {
	var assistant []domain.ChatTurn
	for _, t := range turns {
		if t.Role == domain.RoleAssistant {
			assistant = append(assistant, t)
		}
	}

	seen := make(map[string]struct{})
	var openers []string
	for _, t := range tail(assistant, signalWindow) {
		words := strings.Fields(t.Content)
		if len(words) == 0 {
			continue
		}
		if len(words) > openerWordCount {
			words = words[:openerWordCount]
		}
		opener := strings.Join(words, " ")
		if _, dup := seen[opener]; dup {
			continue
		}
		seen[opener] = struct{}{}
		openers = append(openers, opener)
	}
	return openers
}

func tail(turns []domain.ChatTurn, n int) []domain.ChatTurn {
	if len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}
