package augment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/npcflow/types"
)

// systemPrompt is the fixed instruction sent with every request.
const systemPrompt = "You are rewriting a single line of dialogue spoken by a video game " +
	"character. Stay in character, preserve the meaning of the original line, " +
	"answer in one or two sentences, and never refer to yourself as an AI, " +
	"an assistant, or a language model."

// Config configures the augmentation client.
type Config struct {
	// BaseURL of the OpenAI-compatible endpoint.
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// APIKey is the bearer credential. Empty means the client is not
	// configured; GenerateReply fails with CONFIGURATION before any
	// network activity.
	APIKey      string        `yaml:"api_key" env:"API_KEY"`
	Model       string        `yaml:"model" env:"MODEL"`
	Temperature float32       `yaml:"temperature" env:"TEMPERATURE"`
	MaxTokens   int           `yaml:"max_tokens" env:"MAX_TOKENS"`
	Timeout     time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// Observer receives the outcome of each generation attempt.
type Observer interface {
	ObserveGeneration(duration time.Duration, err error)
}

// Option configures a Client.
type Option func(*Client)

// WithObserver attaches an outcome observer (e.g. a metrics collector).
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// Client issues one chat-completion request per GenerateReply call against
// an OpenAI-compatible endpoint. It is stateless across calls except for
// configuration: no retry, no backoff, no response cache. The caller is
// expected to fall back to the canonical line on any failure.
type Client struct {
	cfg      Config
	client   *http.Client
	logger   *zap.Logger
	observer Observer
}

// NewClient creates a new augmentation client.
func NewClient(cfg Config, logger *zap.Logger, opts ...Option) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 120
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OpenAI-compatible wire types.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	FinishReason string      `json:"finish_reason"`
	Message      chatMessage `json:"message"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

type chatErrorResp struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

func (c *Client) buildHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
}

// GenerateReply rewrites canonicalLine so it acknowledges the player's
// prior choice, issuing exactly one request. On success it returns the
// first candidate's text with surrounding whitespace and a single layer of
// enclosing quotes stripped. Failures carry CONFIGURATION, TRANSPORT, or
// PROTOCOL codes; there is no retry policy here by design.
func (c *Client) GenerateReply(ctx context.Context, priorChoiceText, canonicalLine string) (reply string, err error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", types.NewError(types.ErrConfiguration, "no api key configured")
	}

	start := time.Now()
	traceID := uuid.NewString()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveGeneration(time.Since(start), err)
		}
	}()

	userPrompt := fmt.Sprintf(
		"The player just said: %q\nRewrite the character's canonical reply so it "+
			"acknowledges the player's words while keeping its meaning: %q",
		priorChoiceText, canonicalLine)

	body := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}
	payload, _ := json.Marshal(body)

	endpoint := fmt.Sprintf("%s/chat/completions", strings.TrimRight(c.cfg.BaseURL, "/"))
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	c.buildHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", types.NewError(types.ErrTransport, "request failed").
			WithCause(err).WithRetryable(true)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", types.NewError(types.ErrTransport, readErrMsg(resp.Body)).
			WithHTTPStatus(resp.StatusCode).WithRetryable(resp.StatusCode >= 500)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", types.NewError(types.ErrProtocol, "malformed response body").WithCause(err)
	}
	if len(chatResp.Choices) == 0 {
		return "", types.NewError(types.ErrProtocol, "response contains no candidates")
	}

	text := trimQuotes(strings.TrimSpace(chatResp.Choices[0].Message.Content))
	if text == "" {
		return "", types.NewError(types.ErrProtocol, "candidate message is empty")
	}

	c.logger.Debug("generated reply",
		zap.String("trace_id", traceID),
		zap.String("model", chatResp.Model),
		zap.Duration("latency", time.Since(start)))
	return text, nil
}

// trimQuotes strips one layer of enclosing quote characters. Models often
// wrap rewritten dialogue in quotes it never had.
func trimQuotes(s string) string {
	r := []rune(s)
	if len(r) < 2 {
		return s
	}
	pairs := [][2]rune{
		{'"', '"'},
		{'\'', '\''},
		{'“', '”'}, // curly double quotes
		{'‘', '’'}, // curly single quotes
	}
	for _, p := range pairs {
		if r[0] == p[0] && r[len(r)-1] == p[1] {
			return strings.TrimSpace(string(r[1 : len(r)-1]))
		}
	}
	return s
}

func readErrMsg(body io.Reader) string {
	data, _ := io.ReadAll(body)
	var errResp chatErrorResp
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	return string(data)
}
