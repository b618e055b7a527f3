package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallback_KeywordMatches(t *testing.T) {
	assert.Equal(t, hydrationFact, Fallback("how much water should I drink?", "default"))
	assert.Equal(t, hydrationFact, Fallback("tips for staying HYDRATED", "friendly"))
	assert.Equal(t, identityStatement, Fallback("Who are you exactly?", "default"))
	assert.Equal(t, identityStatement, Fallback("tell me your name", "professional"))
}

func TestFallback_ToneLists(t *testing.T) {
	assert.Contains(t, friendlyFallbacks, Fallback("anything", "friendly"))
	assert.Contains(t, professionalFallbacks, Fallback("anything", "professional"))
	assert.Contains(t, fallbackResponses, Fallback("anything", "default"))
	assert.Contains(t, fallbackResponses, Fallback("anything", "no-such-tone"))
}

func TestTones_FixedSet(t *testing.T) {
	first := Tones()
	assert.Equal(t, []string{"default", "friendly", "professional"}, first)
	// Repeated calls return the same set.
	assert.Equal(t, first, Tones())
}

func TestSystemPrompt(t *testing.T) {
	assert.Contains(t, SystemPrompt("friendly"), "warm")
	assert.Contains(t, SystemPrompt("professional"), "formal")
	assert.Equal(t, SystemPrompt("default"), SystemPrompt("unknown"))
	for _, tone := range Tones() {
		assert.Contains(t, SystemPrompt(tone), "You are Virgil")
	}
}
