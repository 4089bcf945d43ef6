package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/freellmlabs/freellm-go/pkg/llm"
)

// chatEndpoint is the fixed path of the chat API on the base URL.
const chatEndpoint = "/api/chat"

// send performs the request with retry and backoff per the client
// config. Only transient failures are retried; the first attempt plus
// up to MaxRetries retries are made, and the last transient error is
// surfaced unchanged once they are exhausted. Caller cancellation stops
// retrying immediately.
func (c *Client) send(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt)
			c.logger.Debug("backing off before retry",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := c.doRequest(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		// The caller cancelled or its deadline passed; abort the retry
		// loop rather than hammering a request nobody is waiting for.
		if ctx.Err() != nil {
			return nil, lastErr
		}

		if !llm.IsTransient(err) {
			return nil, err
		}

		c.logger.Warn("transient failure",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", c.cfg.MaxRetries+1),
			zap.Error(err),
		)
	}

	return nil, lastErr
}

// backoff returns the delay before retry number attempt (1-based),
// doubling from RetryBaseDelay and capped at RetryMaxDelay.
func (c *Client) backoff(attempt int) time.Duration {
	delay := c.cfg.RetryBaseDelay << (attempt - 1)
	if delay > c.cfg.RetryMaxDelay || delay <= 0 {
		delay = c.cfg.RetryMaxDelay
	}
	return delay
}

// doRequest performs a single attempt and classifies the outcome into
// the typed error taxonomy.
func (c *Client) doRequest(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, llm.NewValidationError(fmt.Sprintf("marshal request: %v", err))
	}

	url := c.cfg.BaseURL + chatEndpoint
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, llm.NewValidationError(fmt.Sprintf("create request: %v", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range c.cfg.Headers {
		httpReq.Header.Set(k, v)
	}

	c.logger.Debug("sending chat request",
		zap.String("url", url),
		zap.Int("body_size", len(body)),
	)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return nil, llm.NewTimeoutError(fmt.Sprintf("request timed out after %s", c.cfg.Timeout), err)
		}
		return nil, llm.NewConnectionError("failed to connect to API", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, llm.NewConnectionError("read response body", err)
	}

	if httpResp.StatusCode >= 400 {
		msg := fmt.Sprintf("API returned error status %d", httpResp.StatusCode)
		var errResp llm.ErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			msg = msg + ": " + errResp.Error
		}
		return nil, llm.NewAPIError(httpResp.StatusCode, msg, string(respBody))
	}

	var resp llm.ChatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		// 2xx with an unparseable body is not retryable
		return nil, llm.NewAPIError(httpResp.StatusCode, fmt.Sprintf("malformed response body: %v", err), string(respBody))
	}

	c.logger.Debug("received chat response",
		zap.Int("status", httpResp.StatusCode),
		zap.Int("response_len", len(resp.Response)),
	)

	return &resp, nil
}

// isTimeout distinguishes deadline expiry from other transport errors.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
