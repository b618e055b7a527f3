package chat

import (
	"math/rand"
	"strings"
)

// Canned replies used when the inference call fails. The user always gets
// a reply; upstream failures are never surfaced on the chat path.
var fallbackResponses = []string{
	"I'm Virgil, your helpful AI assistant. I'm here to provide information, answer questions, and assist with various tasks. How can I help you today?",
	"Hello! I'm Virgil, designed to be your helpful AI companion. I can provide information on a wide range of topics and assist with various tasks. What would you like to know?",
	"As Virgil, I'm here to assist you with information, answer your questions, and help with tasks within my capabilities. Feel free to ask me anything!",
	"I'm your AI assistant Virgil, ready to provide helpful, accurate, and thoughtful responses to your questions. What can I help you with today?",
	"Greetings! I'm Virgil, an AI assistant created to provide information and assistance. I'm always learning and aim to be as helpful as possible. How may I assist you?",
}

var friendlyFallbacks = []string{
	"I'd love to help with that! Let me know if you need more information.",
	"Great question! I'm here to assist you with whatever you need.",
	"I'm excited to help you with this! What else would you like to know?",
}

var professionalFallbacks = []string{
	"I'd be pleased to assist with your inquiry. Please let me know if you require additional information.",
	"Thank you for your question. I'm available to provide further assistance as needed.",
	"I'm here to provide the information you're seeking. Please don't hesitate to ask for clarification.",
}

const (
	hydrationFact     = "Staying hydrated is important! The recommended daily water intake varies by individual, but a general guideline is about 8 glasses (64 ounces) per day."
	identityStatement = "I'm Virgil, an AI assistant designed to be helpful, harmless, and honest. I'm here to assist with information and tasks to the best of my abilities."
)

// Fallback picks a canned reply for the message: keyword-matched topics
// first, then a random pick from the tone's list.
func Fallback(message, tone string) string {
	lower := strings.ToLower(message)

	if strings.Contains(lower, "water") || strings.Contains(lower, "drink") || strings.Contains(lower, "hydrat") {
		return hydrationFact
	}
	if strings.Contains(lower, "who are you") || strings.Contains(lower, "what are you") || strings.Contains(lower, "your name") {
		return identityStatement
	}

	switch tone {
	case "friendly":
		return friendlyFallbacks[rand.Intn(len(friendlyFallbacks))]
	case "professional":
		return professionalFallbacks[rand.Intn(len(professionalFallbacks))]
	default:
		return fallbackResponses[rand.Intn(len(fallbackResponses))]
	}
}
