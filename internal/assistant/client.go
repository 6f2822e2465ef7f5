// Package assistant answers analyst questions about a link record using
// the Anthropic Messages API.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"

	infralogger "github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/link-review/internal/domain"
)

// Defaults.
const (
	DefaultModel             = "claude-3-5-haiku-latest"
	DefaultMaxTokens         = 512
	DefaultTimeout           = 30 * time.Second
	DefaultRequestsPerMinute = 30
)

var (
	// ErrMissingAPIKey is returned by New without credentials.
	ErrMissingAPIKey = errors.New("assistant api key is required")
	// ErrRateLimited is returned when the request budget is spent.
	ErrRateLimited = errors.New("assistant rate limit exceeded")
	errEmptyReply  = errors.New("assistant returned no text")
)

// Config tunes the client. Zero values take defaults.
type Config struct {
	APIKey            string
	Model             string
	BaseURL           string
	MaxTokens         int
	MaxRetries        int
	Timeout           time.Duration
	RequestsPerMinute int
}

func (c *Config) setDefaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RequestsPerMinute <= 0 {
		c.RequestsPerMinute = DefaultRequestsPerMinute
	}
}

// Client is an Anthropic-backed assistant.
type Client struct {
	api       anthropic.Client
	model     anthropic.Model
	maxTokens int64
	timeout   time.Duration
	limiter   *rate.Limiter
	log       infralogger.Logger
}

// New builds a Client.
func New(cfg Config, log infralogger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	cfg.setDefaults()

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	perSecond := rate.Limit(float64(cfg.RequestsPerMinute) / float64(time.Minute/time.Second))

	return &Client{
		api:       anthropic.NewClient(opts...),
		model:     anthropic.Model(cfg.Model),
		maxTokens: int64(cfg.MaxTokens),
		timeout:   cfg.Timeout,
		limiter:   rate.NewLimiter(perSecond, cfg.RequestsPerMinute),
		log:       log,
	}, nil
}

// Ask sends question with the record snapshot and returns the reply text.
func (c *Client) Ask(ctx context.Context, question string, snap domain.Snapshot) (string, error) {
	if !c.limiter.Allow() {
		return "", ErrRateLimited
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(question, snap))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var reply strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			reply.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(reply.String())
	if text == "" {
		return "", errEmptyReply
	}

	c.log.Debug("Assistant replied",
		infralogger.String("model", string(c.model)),
		infralogger.Duration("duration", time.Since(start)),
		infralogger.Int64("output_tokens", msg.Usage.OutputTokens),
	)
	return text, nil
}
