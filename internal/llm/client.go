// Package llm is the stateless LLM Client: one method, Query, backed by a
// disk cache keyed on a byte-exact prompt fingerprint, with bounded
// exponential-backoff retry on transient transport errors.
package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/vertex"
	"go.uber.org/zap"
)

// Config selects the model and transport for a Client.
type Config struct {
	Model     string
	APIKey    string // used when Region is empty
	Region    string // non-empty selects Vertex AI auth
	ProjectID string
	MaxTokens int64
	Cache     *Cache
	Retry     RetryConfig
}

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "claude-sonnet-4-5"

// DefaultMaxTokens bounds a single repair-engine response.
const DefaultMaxTokens = 4096

// Client is the stateless request/response LLM component spec.md §4.5
// describes: query(prompt) -> text, with caching and retry as
// cross-cutting concerns rather than part of the public contract.
type Client struct {
	transport anthropic.Client
	model     string
	maxTokens int64
	cache     *Cache
	retry     RetryConfig
	logger    *zap.Logger

	queries int
	hits    int
	misses  int
}

// NewClient constructs a Client from cfg. If cfg.Region is set, it
// authenticates via Vertex AI; otherwise it uses cfg.APIKey (or the
// ambient ANTHROPIC_API_KEY environment variable the SDK reads itself).
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts []option.RequestOption
	if cfg.Region != "" {
		opts = append(opts, vertex.WithGoogleAuth(ctx, cfg.Region, cfg.ProjectID))
	} else if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}
	retryCfg := cfg.Retry
	if retryCfg.MaxRetries == 0 && retryCfg.BaseBackoff == 0 {
		retryCfg = DefaultRetryConfig()
	}

	return &Client{
		transport: anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
		cache:     cfg.Cache,
		retry:     retryCfg,
		logger:    logger,
	}, nil
}

// Query sends prompt to the model and returns the verbatim response text.
// Every invocation is preceded by a cache lookup on the exact prompt
// fingerprint; every miss is followed by a cache write before the response
// is returned, satisfying spec.md §8 invariant 5.
func (c *Client) Query(ctx context.Context, prompt string) (string, error) {
	c.queries++
	fp := Fingerprint(c.model, prompt)

	if c.cache != nil {
		if entry, ok, err := c.cache.Get(fp); err != nil {
			return "", fmt.Errorf("reading llm cache: %w", err)
		} else if ok {
			c.hits++
			c.logger.Debug("llm cache hit", zap.String("fingerprint", fp))
			return entry.Response, nil
		}
	}
	c.misses++

	response, err := c.query(ctx, prompt)
	if err != nil {
		return "", err
	}

	if c.cache != nil {
		if err := c.cache.Put(fp, CacheEntry{Prompt: prompt, Response: response, Model: c.model}); err != nil {
			return "", fmt.Errorf("writing llm cache: %w", err)
		}
	}

	return response, nil
}

func (c *Client) query(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug("querying llm", zap.String("model", c.model), zap.Int("prompt_len", len(prompt)))

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{{
			Role: anthropic.MessageParamRoleUser,
			Content: []anthropic.ContentBlockParamUnion{
				anthropic.NewTextBlock(prompt),
			},
		}},
	}

	message, err := retryWithBackoff(ctx, c.retry, c.logger, "anthropic.Messages.New", func() (*anthropic.Message, error) {
		return c.transport.Messages.New(ctx, params)
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var text string
	for _, block := range message.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			text += b.Text
		}
	}
	return text, nil
}

// Stats reports cache hit/miss counters for the AuditNote supplement.
func (c *Client) Stats() (queries, hits, misses int) {
	return c.queries, c.hits, c.misses
}

// ErrUnavailable wraps a transport failure that survived retry exhaustion;
// the Pipeline maps it to the LLM_UNAVAILABLE outcome kind.
var ErrUnavailable = fmt.Errorf("llm transport unavailable")
