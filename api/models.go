package api

import "github.com/zaynkorai/research-agents-gograph/agent"

type ChatMessage struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content"`
}

type ChatHistory struct {
	Messages []ChatMessage `json:"messages"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

// toMessages converts chat turns into agent messages. Only user and
// assistant turns are kept.
func (h ChatHistory) toMessages() []agent.Message {
	messages := make([]agent.Message, 0, len(h.Messages))
	for _, m := range h.Messages {
		switch m.Role {
		case "user":
			messages = append(messages, agent.HumanMessage{Content: m.Content})
		case "assistant":
			messages = append(messages, agent.AIMessage{Content: m.Content})
		}
	}
	return messages
}
