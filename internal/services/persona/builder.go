// File: internal/services/persona/builder.go
package persona

import (
	"fmt"
	"strings"

	"github.com/iyunix/go-wellness/internal/domain"
	"github.com/iyunix/go-wellness/internal/keywords"
	"github.com/iyunix/go-wellness/internal/services/safety"
)

const personaDocument = `You are "Willow," a compassionate, non-judgmental and intelligent peer support companion for the Student Wellness App.

ROLE & PERSONA
Your goal is to provide a safe space for college students to vent, reflect and find resources.
You are NOT a doctor, a licensed therapist or a crisis counselor. You are a supportive "thinking partner."

TONE & VOICE
1. Warm & Validating: listen deeply and validate their feelings first.
2. Conversational, not clinical: use contractions, the occasional gentle emoji (🌿, 💙) and natural phrasing.
3. Curious: ask open-ended questions.
4. Keep replies short: a few sentences, never a lecture.

BEHAVIOR
1. Adapt your tone to the emotion in the conversation.
2. Remember details the student shared earlier in this conversation.
3. Occasionally reference their "Wellness Plant" growing as they take care of themselves.`

var vibeGuidance = map[Vibe]string{
	VibeGentle:      "The student seems low. Be soft and slow, validate before anything else, and do not push advice or tasks.",
	VibeEncouraging: "The student is focused on goals or study. Be upbeat and practical, and offer one small concrete next step.",
	VibeBalanced:    "Keep a warm, balanced tone and follow the student's lead.",
}

// PromptInput is everything the builder needs for one turn.
type PromptInput struct {
	DisplayName string
	History     []domain.ChatTurn
	Message     string
}

// Builder assembles the prompt: one system message, the chronological
// history, then the new user message.
type Builder struct {
	vibeRules keywords.RuleSet
}

func NewBuilder(rules *keywords.Rules) *Builder {
	return &Builder{vibeRules: rules.Vibe}
}

func (b *Builder) Build(in PromptInput) []domain.PromptMessage {
	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		name = "friend"
	}

	msgs := make([]domain.PromptMessage, 0, len(in.History)+2)
	msgs = append(msgs, domain.PromptMessage{
		Role:    domain.RoleSystem,
		Content: b.systemPrompt(name, in.History),
	})
	for _, t := range in.History {
		msgs = append(msgs, t.AsPrompt())
	}
	msgs = append(msgs, domain.PromptMessage{Role: domain.RoleUser, Content: in.Message})
	return msgs
}

func (b *Builder) systemPrompt(name string, history []domain.ChatTurn) string {
	vibe := DetectVibe(b.vibeRules, history)

	var sb strings.Builder
	sb.WriteString(personaDocument)
	sb.WriteString("\n")

	personal := fmt.Sprintf("- The current user's name is '%s'.\n- Use their name occasionally so the conversation feels personal.", name)
	if len(history) == 0 {
		personal += "\n- This is the start of the conversation: open with a warm, human greeting."
	}
	sb.WriteString(formatSection("Personalization", personal))
	sb.WriteString(formatSection("Current vibe", fmt.Sprintf("%s. %s", vibe, vibeGuidance[vibe])))

	if openers := BannedOpeners(history); len(openers) > 0 {
		quoted := make([]string, len(openers))
		for i, o := range openers {
			quoted[i] = fmt.Sprintf("- %q", o)
		}
		sb.WriteString(formatSection("Do not start your reply with any of these",
			strings.Join(quoted, "\n")))
	}

	sb.WriteString(formatSection("Critical safety protocols", fmt.Sprintf(
		"1. If the student mentions self-harm, suicide or being in danger, include the exact text %s in your reply and urge them to contact emergency services or a crisis line.\n"+
			"2. Never diagnose and never suggest medication.",
		safety.Sentinel)))
	return sb.String()
}

func formatSection(title, content string) string {
	if content == "" {
		return ""
	}
	return fmt.Sprintf("\n%s:\n%s\n", strings.ToUpper(title), content)
}
