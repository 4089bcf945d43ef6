// Package client implements a client for the FreeLLM chat API
// (apifreellm.com). It owns a single HTTP connection pool per client
// instance and an optional bounded conversation history that can be
// prepended as context on subsequent calls.
package client

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/freellmlabs/freellm-go/pkg/llm"
)

// Client talks to the FreeLLM chat API. A client instance is intended
// for a single logical caller: the conversation history is deliberately
// unsynchronized, so concurrent calls on the same client must be
// serialized by the caller if history consistency matters.
type Client struct {
	cfg        Config
	logger     *zap.Logger
	httpClient *http.Client
	history    *llm.ConversationHistory
}

// New creates a Client from cfg. Zero-valued connection fields fall back
// to defaults; a nil logger disables logging.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		cfg:    cfg,
		logger: logger,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		history: llm.NewConversationHistory(cfg.MaxHistory),
	}, nil
}

// ChatOption overrides a per-call request parameter.
type ChatOption func(*chatOptions)

type chatOptions struct {
	model         string
	temperature   *float64
	maxTokens     *int
	saveToHistory bool
}

// WithModel overrides the model for this call.
func WithModel(model string) ChatOption {
	return func(o *chatOptions) { o.model = model }
}

// WithTemperature overrides the sampling temperature for this call.
func WithTemperature(temp float64) ChatOption {
	return func(o *chatOptions) { o.temperature = &temp }
}

// WithMaxTokens overrides the generation limit for this call.
func WithMaxTokens(n int) ChatOption {
	return func(o *chatOptions) { o.maxTokens = &n }
}

// WithHistory records the user message and the assistant response in
// the conversation history after a successful call.
func WithHistory(save bool) ChatOption {
	return func(o *chatOptions) { o.saveToHistory = save }
}

// Chat sends a single message and returns the parsed response.
// Validation failures surface before any network call. Transient
// failures are retried per the client config.
func (c *Client) Chat(ctx context.Context, message string, opts ...ChatOption) (*llm.ChatResponse, error) {
	o := applyOptions(opts)

	req := c.buildRequest(message, o)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	if o.saveToHistory {
		c.history.Add(llm.RoleUser, message)
		c.history.Add(llm.RoleAssistant, resp.Response)
	}

	return resp, nil
}

// ChatWithContext sends message prefixed with the current conversation
// history, then unconditionally records the new user message and the
// assistant response in history.
func (c *Client) ChatWithContext(ctx context.Context, message string, opts ...ChatOption) (*llm.ChatResponse, error) {
	o := applyOptions(opts)

	outgoing := message
	if hist := c.history.Context(); hist != "" {
		outgoing = hist + "\n" + string(llm.RoleUser) + ": " + message
	}

	req := c.buildRequest(outgoing, o)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	// Record the bare message, not the flattened context, so history
	// does not compound on itself across turns.
	c.history.Add(llm.RoleUser, message)
	c.history.Add(llm.RoleAssistant, resp.Response)

	return resp, nil
}

// ClearHistory empties the conversation history. No network call.
func (c *Client) ClearHistory() {
	c.history.Clear()
}

// History returns a snapshot of the conversation history, oldest first.
func (c *Client) History() []llm.Message {
	return c.history.Messages()
}

// Close releases the client's idle connections. Safe to call more than
// once and before any chat call.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// buildRequest combines the message with config defaults and per-call
// overrides into a wire request.
func (c *Client) buildRequest(message string, o chatOptions) *llm.ChatRequest {
	req := &llm.ChatRequest{
		Message:     message,
		Model:       c.cfg.DefaultModel,
		Temperature: c.cfg.DefaultTemperature,
		MaxTokens:   c.cfg.DefaultMaxTokens,
	}
	if o.model != "" {
		req.Model = o.model
	}
	if o.temperature != nil {
		req.Temperature = o.temperature
	}
	if o.maxTokens != nil {
		req.MaxTokens = o.maxTokens
	}
	return req
}

func applyOptions(opts []ChatOption) chatOptions {
	var o chatOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
