// Package openai implements [advisor.Recommender] with the OpenAI chat
// completions API.
//
// Requests go to {BaseURL}/chat/completions with the advisor system prompt
// first, then the conversation. Transient failures are retried with
// backoff via [httputil.Retry]. When a cache is configured, a reply is
// stored under a key derived from the model, prompt, conversation and
// sampling parameters, so repeating an interview does not call the API again.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/coursegraph/pkg/advisor"
	"github.com/matzehuels/coursegraph/pkg/cache"
	cgerrors "github.com/matzehuels/coursegraph/pkg/errors"
	"github.com/matzehuels/coursegraph/pkg/httputil"
	"github.com/matzehuels/coursegraph/pkg/observability"
)

// Defaults for the chat completion request.
const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "gpt-3.5-turbo"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 500
	DefaultTimeout     = 60 * time.Second

	DefaultSystemPrompt = "You are a helpful academic advisor for an MBA program. Based on the student's responses, recommend specific courses from our catalog. Format your response with course codes (e.g., MBA501) and brief explanations."
)

// Config configures a [Client]. Zero fields take the defaults above.
type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	SystemPrompt string
	Temperature  *float64
	MaxTokens    int

	HTTPClient *http.Client
	Attempts   int
	Backoff    time.Duration

	Cache    cache.Cache
	Keyer    cache.Keyer
	CacheTTL time.Duration

	Logger *log.Logger
}

// Client calls the chat completions endpoint.
type Client struct {
	apiKey      string
	endpoint    string
	model       string
	prompt      string
	temperature float64
	maxTokens   int

	http     *http.Client
	attempts int
	backoff  time.Duration

	cache    cache.Cache
	keyer    cache.Keyer
	cacheTTL time.Duration

	logger *log.Logger
}

// New validates cfg and returns a client. A missing API key is an
// [cgerrors.ErrCodeUnauthorized] error.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, cgerrors.New(cgerrors.ErrCodeUnauthorized, "OpenAI API key is not set (use OPENAI_API_KEY or [openai] api_key)")
	}
	base := orDefault(cfg.BaseURL, DefaultBaseURL)
	if err := cgerrors.ValidateURL(base); err != nil {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidConfig, err, "invalid OpenAI base URL")
	}

	c := &Client{
		apiKey:      cfg.APIKey,
		endpoint:    strings.TrimRight(base, "/") + "/chat/completions",
		model:       orDefault(cfg.Model, DefaultModel),
		prompt:      orDefault(cfg.SystemPrompt, DefaultSystemPrompt),
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
		http:        cfg.HTTPClient,
		attempts:    3,
		backoff:     time.Second,
		cache:       cfg.Cache,
		keyer:       cfg.Keyer,
		cacheTTL:    cache.TTLRecommendation,
		logger:      cfg.Logger,
	}
	if cfg.Temperature != nil {
		c.temperature = *cfg.Temperature
	}
	if cfg.MaxTokens > 0 {
		c.maxTokens = cfg.MaxTokens
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: DefaultTimeout}
	}
	if cfg.Attempts > 0 {
		c.attempts = cfg.Attempts
	}
	if cfg.Backoff > 0 {
		c.backoff = cfg.Backoff
	}
	if c.cache == nil {
		c.cache = cache.NewNullCache()
	}
	if c.keyer == nil {
		c.keyer = cache.NewDefaultKeyer()
	}
	if cfg.CacheTTL > 0 {
		c.cacheTTL = cfg.CacheTTL
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	return c, nil
}

// Model returns the model name sent with each request.
func (c *Client) Model() string { return c.model }

type chatRequest struct {
	Model       string            `json:"model"`
	Messages    []advisor.Message `json:"messages"`
	Temperature float64           `json:"temperature"`
	MaxTokens   int               `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message advisor.Message `json:"message"`
	} `json:"choices"`
}

// Recommend sends the conversation and returns the first choice's content.
// Failures are [cgerrors.ErrCodeRecommendation] errors wrapping the cause.
func (c *Client) Recommend(ctx context.Context, messages []advisor.Message) (reply string, err error) {
	hooks := observability.Advisor()
	hooks.OnRecommendStart(ctx, c.model)
	start := time.Now()
	defer func() {
		hooks.OnRecommendComplete(ctx, c.model, len(advisor.ExtractCourseIDs(reply)), time.Since(start), err)
	}()

	key := c.keyer.RecommendationKey(c.model, c.keyOpts(messages))
	if data, ok, cerr := c.cache.Get(ctx, key); cerr == nil && ok {
		c.logger.Debug("recommendation cache hit", "model", c.model)
		return string(data), nil
	} else if cerr != nil {
		c.logger.Warn("recommendation cache read failed", "err", cerr)
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    append([]advisor.Message{{Role: advisor.RoleSystem, Content: c.prompt}}, messages...),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", cgerrors.Wrap(cgerrors.ErrCodeInternal, err, "encode chat request")
	}

	var out chatResponse
	err = httputil.Retry(ctx, c.attempts, c.backoff, func() error {
		return c.post(ctx, body, &out)
	})
	if err != nil {
		c.logger.Warn("chat completion failed", "model", c.model, "err", httputil.DescribeError(err))
		return "", cgerrors.Wrap(cgerrors.ErrCodeRecommendation, err, "failed to get course recommendations")
	}
	if len(out.Choices) == 0 {
		return "", cgerrors.New(cgerrors.ErrCodeRecommendation, "failed to get course recommendations: empty response")
	}

	reply = out.Choices[0].Message.Content
	if serr := c.cache.Set(ctx, key, []byte(reply), c.cacheTTL); serr != nil {
		c.logger.Warn("recommendation cache write failed", "err", serr)
	}
	return reply, nil
}

func (c *Client) post(ctx context.Context, body []byte, out *chatResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := httputil.Do(ctx, c.http, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := httputil.CheckResponse(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return cgerrors.Wrap(cgerrors.ErrCodeInvalidFormat, err, "decode chat response")
	}
	return nil
}

func (c *Client) keyOpts(messages []advisor.Message) cache.RecommendationKeyOpts {
	flat := make([]string, len(messages))
	for i, m := range messages {
		flat[i] = string(m.Role) + ":" + m.Content
	}
	return cache.RecommendationKeyOpts{
		SystemPrompt: c.prompt,
		Messages:     flat,
		Temperature:  c.temperature,
		MaxTokens:    c.maxTokens,
	}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

var _ advisor.Recommender = (*Client)(nil)
