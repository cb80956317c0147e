package llm

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.openai.com"
	DefaultModel   = "gpt-4o-mini"

	defaultUpstreamTimeout = 30 * time.Second
	defaultMaxRetries      = 2
	defaultBaseBackoff     = 100 * time.Millisecond
	defaultIdleConns       = 100
)

// Config describes one chat-completions backend. Zero values fall back to
// the defaults above.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string

	UpstreamTimeout time.Duration // bounds a whole call, retries included
	MaxRetries      int
	BaseBackoff     time.Duration

	IdleConns int

	HTTPClient *http.Client
}

func (c Config) normalized() Config {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.Model = strings.TrimSpace(c.Model)

	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.UpstreamTimeout <= 0 {
		c.UpstreamTimeout = defaultUpstreamTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = defaultBaseBackoff
	}
	if c.IdleConns <= 0 {
		c.IdleConns = defaultIdleConns
	}
	return c
}

type client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds the HTTP chat-completions client. A blank APIKey is
// reported as ErrNotConfigured.
func NewClient(cfg Config, logger *zap.Logger) (Client, error) {
	cfg = cfg.normalized()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm client: %w", ErrNotConfigured)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Transport: pooledTransport(cfg.IdleConns)}
	}

	return &client{
		cfg:        cfg,
		httpClient: hc,
		logger:     logger.Named("llmclient"),
	}, nil
}

func pooledTransport(idle int) *http.Transport {
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          idle,
		MaxIdleConnsPerHost:   idle,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
}

func (c *client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
