package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	maxRequestBytes = 2 << 20   // whole JSON payload
	maxMessageBytes = 512 << 10 // one message content

	completionsPath = "/v1/chat/completions"
)

func (c *client) ChatCompletion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("llmclient: request is nil")
	}
	if req.Model == "" {
		req.Model = c.cfg.Model
	}
	body, err := encodeRequest(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	log := c.logger.With(zap.String("model", req.Model), zap.Bool("json_mode", req.ResponseFormat != nil))
	log.Debug("llm request starting", zap.Int("message_count", len(req.Messages)))

	ctx, cancel := context.WithTimeout(ctx, c.cfg.UpstreamTimeout)
	defer cancel()

	resp, err := c.doWithRetry(ctx, body, c.post)
	if err != nil {
		log.Error("llm request failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		uerr := readUpstreamError(resp)
		log.Error("llm upstream error",
			zap.Int("status", uerr.Status),
			zap.String("error_type", uerr.Type),
			zap.String("error_message", uerr.Message),
		)
		return nil, uerr
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("llmclient: decode upstream response: %w", err)
	}
	if len(wire.Choices) == 0 {
		log.Error("llm provider returned no choices")
		return nil, ErrEmptyResponse
	}

	out := wire.chatResponse()
	log.Info("llm request completed",
		zap.Int("prompt_tokens", out.Usage.PromptTokens),
		zap.Int("completion_tokens", out.Usage.CompletionTokens),
		zap.Duration("duration", time.Since(start)),
	)
	return out, nil
}

// encodeRequest validates req and renders the wire body within size limits.
func encodeRequest(req *ChatRequest) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("llmclient: invalid request: %w", err)
	}
	for i, m := range req.Messages {
		if len(m.Content) > maxMessageBytes {
			return nil, fmt.Errorf("llmclient: message[%d] is %d bytes, max %d", i, len(m.Content), maxMessageBytes)
		}
	}

	body, err := json.Marshal(wireRequest{
		Model:          req.Model,
		Messages:       req.Messages,
		Temperature:    req.Temperature,
		MaxTokens:      req.MaxTokens,
		ResponseFormat: req.ResponseFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("llmclient: marshal request: %w", err)
	}
	if len(body) > maxRequestBytes {
		return nil, fmt.Errorf("llmclient: request is %d bytes, max %d", len(body), maxRequestBytes)
	}
	return body, nil
}

// post sends one attempt. A fresh request is built each time so the body
// reader starts at zero.
func (c *client) post(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llmclient: build HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(req)
}

func readUpstreamError(resp *http.Response) *UpstreamError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	uerr := &UpstreamError{Status: resp.StatusCode}

	var env wireError
	if json.Unmarshal(body, &env) == nil && env.Error.Message != "" {
		uerr.Type = env.Error.Type
		uerr.Message = env.Error.Message
		return uerr
	}
	uerr.Message = truncate(string(body), 200)
	return uerr
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
