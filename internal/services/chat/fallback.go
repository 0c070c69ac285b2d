// File: internal/services/chat/fallback.go
package chat

import (
	"github.com/iyunix/go-wellness/internal/domain"
	"github.com/iyunix/go-wellness/internal/keywords"
	"github.com/iyunix/go-wellness/internal/services/ai"
)

const (
	AuthNotice = "I'm having trouble connecting right now: the chat service reported an authentication error, so the site's API key needs attention. " +
		"Please let the app team know. I'm still here, and the breathing tools and resources on this page work offline."
	QuotaNotice = "I can't reach my thinking partner right now because the chat service has used up its quota. " +
		"Please try again later, and have a look at the resources page in the meantime."
	EmptyMessagePrompt = "I'm here whenever you're ready. What's on your mind?"
	GenericFallback    = "I hear you. That sounds challenging. Would you like to tell me more about what's going on? I'm here to listen and help."
)

type fallbackReply struct {
	text   string
	action domain.Action
}

// fallbackReplies is keyed by the tags of the fallback keyword rules.
var fallbackReplies = map[string]fallbackReply{
	"stress": {
		"That's completely understandable. Try this right now: Take 3 deep breaths - 4 seconds in, hold for 4, breathe out for 6. This activates your calm response.",
		domain.ActionTriggerPanic,
	},
	"exam": {
		"Exam stress is real. Break your study into 25-minute chunks (Pomodoro method) with 5-min breaks. Start with just ONE topic for 10 minutes to build momentum.",
		domain.ActionNone,
	},
	"sleep": {
		"Poor sleep affects everything. Tonight, try this: Set your phone outside your bedroom 30 minutes before bed. Your sleep quality will improve.",
		domain.ActionNone,
	},
	"lonely": {
		"Feeling isolated is hard, especially as a student. Quick action: Text one friend right now, even just 'hey, how are you?' Connection helps.",
		domain.ActionNone,
	},
	"anxiety": {
		"Anxiety is tough. Try the 5-4-3-2-1 technique: Name 5 things you see, 4 you touch, 3 you hear, 2 you smell, 1 you taste. This grounds you in the present.",
		domain.ActionTriggerPanic,
	},
	"imposter": {
		"Imposter syndrome is common among high-achievers. Quick reminder: You got into this school for a reason. Write down 3 things you did well today.",
		domain.ActionNone,
	},
	"depression": {
		"That heaviness sounds exhausting, and you don't have to carry it alone. Talking to a campus counselor can really help. What's one small thing that felt okay today?",
		domain.ActionNone,
	},
}

// FallbackResponder produces a local reply when the completion call fails.
type FallbackResponder struct {
	rules keywords.RuleSet
}

func NewFallbackResponder(rules *keywords.Rules) *FallbackResponder {
	return &FallbackResponder{rules: rules.Fallback}
}

// Respond picks a notice for credential and quota problems and a keyword
// reply for everything else. Sentiment is always neutral.
func (f *FallbackResponder) Respond(message string, cause error) Reply {
	switch ai.TypeOf(cause) {
	case ai.ErrTypeAuth:
		return Reply{Response: AuthNotice, Sentiment: domain.SentimentNeutral, Action: domain.ActionNone}
	case ai.ErrTypeQuota:
		return Reply{Response: QuotaNotice, Sentiment: domain.SentimentNeutral, Action: domain.ActionNone}
	}

	reply := fallbackReply{GenericFallback, domain.ActionNone}
	if tag, ok := f.rules.Match(message); ok {
		if r, known := fallbackReplies[tag]; known {
			reply = r
		}
	}
	return Reply{Response: reply.text, Sentiment: domain.SentimentNeutral, Action: reply.action}
}
