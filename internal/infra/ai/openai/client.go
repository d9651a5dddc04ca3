package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/code-verdict/internal/config"
	"github.com/bryanwahyu/code-verdict/internal/domain/analysis"
)

// Client talks to any OpenAI-compatible chat completions endpoint. The
// default base URL is Gemini's compatibility layer.
type Client struct {
	api       *openai.Client
	model     string
	maxTokens int
	log       *logrus.Logger
}

func NewClient(cfg config.Model, apiKey string, log *logrus.Logger) *Client {
	oc := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		// go-openai appends "/chat/completions" itself
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	model := cfg.Name
	if model == "" {
		model = config.DefaultModel
	}
	return &Client{
		api:       openai.NewClientWithConfig(oc),
		model:     model,
		maxTokens: cfg.MaxTokens,
		log:       log,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

// Complete sends prompt as a single user message and asks for a JSON object back.
// Every failure is logged with its cause and reported as analysis.ErrModelUnavailable.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if c.maxTokens > 0 {
		// reasoning models (o1/o3/o4/gpt-5*) reject max_tokens
		if isReasoningModel(c.model) {
			req.MaxCompletionTokens = c.maxTokens
		} else {
			req.MaxTokens = c.maxTokens
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		entry := c.log.WithError(err).WithField("model", c.model)
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			entry = entry.WithField("upstream_status", apiErr.HTTPStatusCode)
		}
		entry.Error("model call failed")
		return "", analysis.ErrModelUnavailable
	}
	if len(resp.Choices) == 0 {
		c.log.WithField("model", c.model).Error("model returned no choices")
		return "", analysis.ErrModelUnavailable
	}

	c.log.WithFields(logrus.Fields{
		"model":             c.model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"finish_reason":     resp.Choices[0].FinishReason,
	}).Debug("model call completed")

	return resp.Choices[0].Message.Content, nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}
