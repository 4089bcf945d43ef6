package llm

import "strings"

// DefaultMaxHistory is the history capacity used when none is configured.
const DefaultMaxHistory = 10

// ConversationHistory is a bounded, ordered record of past conversation
// turns. Appending beyond capacity evicts the oldest messages first.
//
// It is not goroutine-safe. A client instance owns its history
// exclusively; callers that share a client must serialize access.
type ConversationHistory struct {
	messages []Message
	max      int
}

// NewConversationHistory creates a history bounded to max messages.
// A non-positive max falls back to DefaultMaxHistory.
func NewConversationHistory(max int) *ConversationHistory {
	if max <= 0 {
		max = DefaultMaxHistory
	}
	return &ConversationHistory{max: max}
}

// Add appends a message to the tail, evicting from the head when the
// capacity is exceeded.
func (h *ConversationHistory) Add(role Role, content string) {
	h.messages = append(h.messages, Message{Role: role, Content: content})
	if len(h.messages) > h.max {
		h.messages = h.messages[len(h.messages)-h.max:]
	}
}

// Len returns the number of messages currently held.
func (h *ConversationHistory) Len() int { return len(h.messages) }

// Clear empties the history.
func (h *ConversationHistory) Clear() { h.messages = nil }

// Messages returns a copy of the current contents, oldest first.
func (h *ConversationHistory) Messages() []Message {
	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Context renders the history as "role: content" lines, one per message,
// for inclusion in a contextual prompt. Returns "" when empty.
func (h *ConversationHistory) Context() string {
	if len(h.messages) == 0 {
		return ""
	}
	var b strings.Builder
	for i, msg := range h.messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(string(msg.Role))
		b.WriteString(": ")
		b.WriteString(msg.Content)
	}
	return b.String()
}
