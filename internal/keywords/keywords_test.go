package keywords

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleSet_MatchFirstWins(t *testing.T) {
	rs := RuleSet{
		{Pattern: "stress", Tag: "stress"},
		{Pattern: "exam", Tag: "exam"},
	}

	tag, ok := rs.Match("My EXAM is stressing me out")
	require.True(t, ok)
	assert.Equal(t, "stress", tag)

	tag, ok = rs.Match("exam tomorrow")
	require.True(t, ok)
	assert.Equal(t, "exam", tag)

	_, ok = rs.Match("nice weather")
	assert.False(t, ok)
}

func TestRuleSet_IgnoresEmptyPatterns(t *testing.T) {
	rs := RuleSet{{Pattern: "", Tag: "everything"}}
	assert.False(t, rs.Contains("anything at all"))
}

func TestLoadDefault(t *testing.T) {
	rules := LoadDefault()

	tests := []struct {
		text string
		want bool
	}{
		{"I want to END IT ALL", true},
		{"thinking about suicide", true},
		{"having suicidal thoughts", true},
		{"I might hurt myself", true},
		{"my laptop battery will die soon", true},
		{"I feel a bit low today", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.Crisis.Contains(tt.text))
		})
	}

	tag, ok := rules.Fallback.Match("so much stress before my exam")
	require.True(t, ok)
	assert.Equal(t, "stress", tag)

	assert.True(t, rules.PanicPhrases.Contains("Let's try a breathing exercise"))
	assert.False(t, rules.PanicPhrases.Contains("Tell me more"))
}

func TestParse_RejectsEmptyCrisisSet(t *testing.T) {
	_, err := Parse([]byte("vibe:\n  - { pattern: sad, tag: gentle }\n"))
	assert.ErrorIs(t, err, ErrNoCrisisRules)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("crisis: [unterminated"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crisis:\n  - { pattern: emergency, tag: crisis }\n"), 0o600))

	rules, err := Load(path)
	require.NoError(t, err)
	assert.True(t, rules.Crisis.Contains("This is an Emergency"))
	assert.False(t, rules.Crisis.Contains("suicide"))

	rules, err = Load("")
	require.NoError(t, err)
	assert.True(t, rules.Crisis.Contains("suicide"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
