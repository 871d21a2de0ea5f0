package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnswerKeyNormalizesQuestion(t *testing.T) {
	a := answerKey("How do I add   feedback?")
	b := answerKey("  how do i ADD feedback? ")

	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "answer:"))
	assert.Len(t, strings.TrimPrefix(a, "answer:"), 64)
	assert.NotEqual(t, a, answerKey("how do i delete feedback?"))
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "answer:abc", CacheKey("answer", "abc"))
}
