package chat

const basePrompt = "You are Virgil, a helpful and knowledgeable AI assistant."

// Tones returns the fixed set of conversation tones, in stable order.
func Tones() []string {
	return []string{"default", "friendly", "professional"}
}

// SystemPrompt maps a tone to its system prompt. Unknown tones get the
// default prompt.
func SystemPrompt(tone string) string {
	switch tone {
	case "friendly":
		return basePrompt + " Respond in a warm, approachable, and conversational manner, using simple language and occasionally adding personal touches to build rapport."
	case "professional":
		return basePrompt + " Respond in a formal, precise, and structured manner, using professional language and focusing on delivering accurate and comprehensive information."
	default:
		return basePrompt + " Provide helpful, accurate, and concise responses while balancing friendliness with professionalism."
	}
}
