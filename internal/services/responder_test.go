package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greetingAnswer = "Hello! 👋 I'm here to help you with the Feedback Tracker app.\n\nYou can ask me about its features, how to use it, or any general question!"

func TestLocalAnswerGreeting(t *testing.T) {
	assert.Equal(t, greetingAnswer, LocalAnswer("Hello there"))
	assert.Equal(t, "greeting", LocalCategory("Hello there"))
}

func TestLocalCategory(t *testing.T) {
	tests := []struct {
		question string
		want     string
	}{
		{"hi!", "greeting"},
		{"  GOOD MORNING  ", "greeting"},
		{"What is this?", "about"},
		{"what does the app do", "about"},
		{"How do I add feedback?", "add"},
		{"I want to submit a review", "add"},
		{"how can i remove an entry", "delete"},
		{"Which features are there?", "features"},
		{"what can you do", "features"},
		{"this thing", "generic"},
		{"explain quantum physics", "generic"},
		{"", "generic"},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, LocalCategory(tt.question))
		})
	}
}

func TestLocalAnswerGenericEchoesQuestion(t *testing.T) {
	answer := LocalAnswer("  explain quantum physics ")

	assert.True(t, strings.HasPrefix(answer, `I understand you're asking about "explain quantum physics".`))
}

func TestLocalAnswerIsDeterministic(t *testing.T) {
	for _, q := range []string{"hello", "how do I delete", "random words"} {
		assert.Equal(t, LocalAnswer(q), LocalAnswer(q))
	}
}

func TestParseResponderRulesRejectsBadInput(t *testing.T) {
	_, err := parseResponderRules([]byte("categories: []\n"))
	assert.Error(t, err, "generic answer is required")

	_, err = parseResponderRules([]byte("generic: x\ncategories:\n  - name: a\n    answer: b\n    patterns: ['(']\n"))
	assert.Error(t, err)

	rules, err := parseResponderRules([]byte("generic: 'q=%s'\ncategories:\n  - name: a\n    answer: b\n    patterns: ['^ping$']\n"))
	require.NoError(t, err)
	assert.Equal(t, "b", rules.answer("PING"))
	assert.Equal(t, "q=pong", rules.answer("pong"))
}
