// Package keywords holds the ordered pattern lists that drive the crisis
// filter, vibe detection, fallback replies and panic-phrase detection.
package keywords

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRules []byte

var ErrNoCrisisRules = errors.New("keywords: crisis rule set is empty")

type Rule struct {
	Pattern string `yaml:"pattern"`
	Tag     string `yaml:"tag"`
}

// RuleSet is checked in order; the first matching rule wins.
type RuleSet []Rule

// Match lower-cases text and returns the tag of the first rule whose
// pattern occurs in it.
func (rs RuleSet) Match(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, r := range rs {
		if r.Pattern == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(r.Pattern)) {
			return r.Tag, true
		}
	}
	return "", false
}

func (rs RuleSet) Contains(text string) bool {
	_, ok := rs.Match(text)
	return ok
}

type Rules struct {
	Crisis       RuleSet `yaml:"crisis"`
	Vibe         RuleSet `yaml:"vibe"`
	Fallback     RuleSet `yaml:"fallback"`
	PanicPhrases RuleSet `yaml:"panic_phrases"`
}

func (r *Rules) Validate() error {
	if len(r.Crisis) == 0 {
		return ErrNoCrisisRules
	}
	for i, rule := range r.Crisis {
		if strings.TrimSpace(rule.Pattern) == "" {
			return fmt.Errorf("keywords: crisis rule %d has an empty pattern", i)
		}
	}
	return nil
}

func Parse(data []byte) (*Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("keywords: parse rules: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &rules, nil
}

func LoadDefault() *Rules {
	rules, err := Parse(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("embedded keyword rules are invalid: %v", err))
	}
	return rules
}

func LoadFile(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keywords: read %s: %w", path, err)
	}
	return Parse(data)
}

// Load returns the rules in path, or the embedded defaults when path is empty.
func Load(path string) (*Rules, error) {
	if path == "" {
		return LoadDefault(), nil
	}
	return LoadFile(path)
}
