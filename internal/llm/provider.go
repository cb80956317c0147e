package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const (
	DefaultTextTemperature float32 = 0.7
	// JSON mode runs cooler to favor schema compliance.
	DefaultJSONTemperature float32 = 0.3
	DefaultMaxTokens               = 1024
)

// Options tune a single generation call. Zero values select defaults.
type Options struct {
	Temperature  *float32
	MaxTokens    int
	SystemPrompt string
}

type TextResult struct {
	Text       string
	TokensUsed int
}

// JSONResult carries the compacted JSON document produced by the model.
type JSONResult struct {
	Data       json.RawMessage
	TokensUsed int
}

// Generator is the provider contract the orchestrator depends on.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (TextResult, error)
	GenerateJSON(ctx context.Context, prompt string, opts Options) (JSONResult, error)
}

// CredentialFunc returns the backend API key, or "" when unset.
type CredentialFunc func() string

// Provider adapts a chat-completions Client to Generator. The Client is
// built on first use from Config plus the credential, and then reused.
type Provider struct {
	cfg        Config
	credential CredentialFunc
	logger     *zap.Logger

	mu     sync.Mutex
	client Client
}

// NewProvider returns a Provider that resolves its credential lazily. cfg.APIKey
// is ignored; credential is consulted on each call until a client exists.
func NewProvider(cfg Config, credential CredentialFunc, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if credential == nil {
		credential = func() string { return "" }
	}
	return &Provider{cfg: cfg, credential: credential, logger: logger}
}

// NewProviderWithClient wraps an already constructed Client.
func NewProviderWithClient(c Client, logger *zap.Logger) *Provider {
	p := NewProvider(Config{}, nil, logger)
	p.client = c
	return p
}

func (p *Provider) chatClient() (Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	key := strings.TrimSpace(p.credential())
	if key == "" {
		return nil, ErrNotConfigured
	}

	cfg := p.cfg
	cfg.APIKey = key
	c, err := NewClient(cfg, p.logger)
	if err != nil {
		return nil, err
	}
	p.client = c
	return c, nil
}

// Close releases the underlying client, if one was built.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if closer, ok := p.client.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts Options) (TextResult, error) {
	resp, err := p.complete(ctx, prompt, opts, DefaultTextTemperature, nil)
	if err != nil {
		return TextResult{}, err
	}
	return TextResult{
		Text:       resp.Choices[0].Message.Content,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// GenerateJSON requests JSON output, strips markdown fences and confirms the
// remainder parses. Parse failures wrap ErrMalformedJSON.
func (p *Provider) GenerateJSON(ctx context.Context, prompt string, opts Options) (JSONResult, error) {
	resp, err := p.complete(ctx, prompt, opts, DefaultJSONTemperature, &ResponseFormat{Type: ResponseFormatJSON})
	if err != nil {
		return JSONResult{}, err
	}

	data, err := ParseJSON(resp.Choices[0].Message.Content)
	if err != nil {
		p.logger.Warn("llm returned malformed JSON",
			zap.String("model", resp.Model),
			zap.Error(err),
		)
		return JSONResult{}, err
	}

	return JSONResult{Data: data, TokensUsed: resp.Usage.TotalTokens}, nil
}

func (p *Provider) complete(
	ctx context.Context,
	prompt string,
	opts Options,
	defaultTemp float32,
	format *ResponseFormat,
) (*ChatResponse, error) {
	c, err := p.chatClient()
	if err != nil {
		return nil, err
	}

	temp := defaultTemp
	if opts.Temperature != nil {
		temp = *opts.Temperature
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	messages := make([]ChatMessage, 0, 2)
	if opts.SystemPrompt != "" {
		messages = append(messages, ChatMessage{Role: RoleSystem, Content: opts.SystemPrompt})
	}
	messages = append(messages, ChatMessage{Role: RoleUser, Content: prompt})

	resp, err := c.ChatCompletion(ctx, &ChatRequest{
		Model:          p.cfg.Model,
		Messages:       messages,
		Temperature:    &temp,
		MaxTokens:      maxTokens,
		ResponseFormat: format,
	})
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	if resp.Usage == nil {
		resp.Usage = &Usage{}
	}
	return resp, nil
}

// ParseJSON strips code fences from raw model text and returns it compacted.
func ParseJSON(raw string) (json.RawMessage, error) {
	cleaned := StripCodeFences(raw)
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(cleaned)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedJSON)
	}
	return json.RawMessage(buf.Bytes()), nil
}
