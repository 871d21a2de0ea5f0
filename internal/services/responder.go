package services

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed responder_rules.yaml
var responderRulesYAML []byte

const genericCategory = "generic"

type responderCategory struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
	Answer   string   `yaml:"answer"`

	compiled []*regexp.Regexp
}

type responderRules struct {
	Categories []responderCategory `yaml:"categories"`
	Generic    string              `yaml:"generic"`
}

var localRules = mustParseResponderRules(responderRulesYAML)

func mustParseResponderRules(data []byte) *responderRules {
	rules, err := parseResponderRules(data)
	if err != nil {
		panic(fmt.Sprintf("responder rules: %v", err))
	}
	return rules
}

func parseResponderRules(data []byte) (*responderRules, error) {
	var rules responderRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, err
	}
	if rules.Generic == "" {
		return nil, fmt.Errorf("generic answer is missing")
	}
	for i := range rules.Categories {
		c := &rules.Categories[i]
		if c.Name == "" || c.Answer == "" || len(c.Patterns) == 0 {
			return nil, fmt.Errorf("category %d is incomplete", i)
		}
		for _, p := range c.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("category %s: %w", c.Name, err)
			}
			c.compiled = append(c.compiled, re)
		}
	}
	return &rules, nil
}

func (c *responderCategory) matches(normalized string) bool {
	for _, re := range c.compiled {
		if re.MatchString(normalized) {
			return true
		}
	}
	return false
}

// classify returns the first matching category name, or "generic".
func (r *responderRules) classify(question string) string {
	normalized := strings.ToLower(strings.TrimSpace(question))
	for i := range r.Categories {
		if r.Categories[i].matches(normalized) {
			return r.Categories[i].Name
		}
	}
	return genericCategory
}

func (r *responderRules) answer(question string) string {
	normalized := strings.ToLower(strings.TrimSpace(question))
	for i := range r.Categories {
		if r.Categories[i].matches(normalized) {
			return r.Categories[i].Answer
		}
	}
	return fmt.Sprintf(r.Generic, strings.TrimSpace(question))
}

// LocalAnswer is the deterministic offline answer for question.
func LocalAnswer(question string) string {
	return localRules.answer(question)
}

// LocalCategory names the rule category LocalAnswer would use.
func LocalCategory(question string) string {
	return localRules.classify(question)
}
