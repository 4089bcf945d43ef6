package llm

// ChatResponse represents a response from the FreeLLM chat endpoint.
type ChatResponse struct {
	Response string         `json:"response"`           // The generated text
	Model    string         `json:"model,omitempty"`    // Model that generated the response
	Usage    map[string]int `json:"usage,omitempty"`    // Token usage counts
	Metadata map[string]any `json:"metadata,omitempty"` // Additional provider metadata
}

// ErrorResponse represents an error body from the LLM API.
type ErrorResponse struct {
	Error string `json:"error"`
}
