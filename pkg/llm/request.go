package llm

import (
	"fmt"
	"strings"
)

// ChatRequest represents a request to the FreeLLM chat endpoint.
// The json field names are the wire contract with apifreellm.com and
// must stay byte-for-byte stable.
type ChatRequest struct {
	Message     string   `json:"message"`               // The message to send
	Model       string   `json:"model,omitempty"`       // Optional model name
	Temperature *float64 `json:"temperature,omitempty"` // Sampling temperature (0.0-2.0)
	MaxTokens   *int     `json:"max_tokens,omitempty"`  // Max tokens to generate
}

// Validate checks the request against local constraints before any
// network call is made.
func (r *ChatRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return NewValidationError("message must not be empty")
	}
	if r.Temperature != nil && (*r.Temperature < 0.0 || *r.Temperature > 2.0) {
		return NewValidationError(fmt.Sprintf("temperature %g out of range [0.0, 2.0]", *r.Temperature))
	}
	if r.MaxTokens != nil && *r.MaxTokens <= 0 {
		return NewValidationError(fmt.Sprintf("max_tokens must be positive, got %d", *r.MaxTokens))
	}
	return nil
}
