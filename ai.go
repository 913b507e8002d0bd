package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// ErrAIDisabled is returned by Complete when no API key is configured.
var ErrAIDisabled = errors.New("completions provider disabled: no API key configured")

const (
	aiTemperature = 0.6
	aiMaxTokens   = 300
	aiTimeout     = 20 * time.Second
)

// AIClient calls an OpenAI-compatible chat completions endpoint. Failures are
// expected and cheap: callers substitute the scripted fallback reply.
type AIClient struct {
	httpClient *resty.Client
	model      string
	enabled    bool
}

// NewAIClient configures the completions client. An empty apiKey disables the
// provider entirely: Complete then fails fast with ErrAIDisabled.
func NewAIClient(baseURL, apiKey, model string) *AIClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(aiTimeout)

	if apiKey == "" {
		log.Warn().Msg("Completions provider is not configured, scripted fallback replies will be used")
	} else {
		log.Info().Str("baseURL", baseURL).Str("model", model).Msg("Completions provider configured")
	}

	return &AIClient{
		httpClient: client,
		model:      model,
		enabled:    apiKey != "",
	}
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the prompt and returns the single completion string. Any
// failure mode (disabled, transport error, non-2xx status, malformed or empty
// payload) comes back as an error.
func (c *AIClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	if !c.enabled {
		return "", ErrAIDisabled
	}

	var result completionResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(completionRequest{
			Model:       c.model,
			Messages:    messages,
			Temperature: aiTemperature,
			MaxTokens:   aiMaxTokens,
		}).
		SetResult(&result).
		Post("/chat/completions")

	if err != nil {
		return "", fmt.Errorf("completions request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("completions request failed: status %s, body: %s", resp.Status(), resp.String())
	}
	if len(result.Choices) == 0 {
		return "", errors.New("completions response has no choices")
	}

	content := strings.TrimSpace(result.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("completions response is empty")
	}
	return content, nil
}
