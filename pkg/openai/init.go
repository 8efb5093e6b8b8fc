package openai

import (
	"context"
	"errors"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

const defaultModel = "gpt-4o-mini"

type Client struct {
	client *openai.Client
	model  string
}

func NewClient(baseUrl, apiKey, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseUrl != "" {
		cfg.BaseURL = baseUrl
	}

	// No client timeout; moment selection over long transcripts can run
	// for minutes. Callers bound the request with their own context.
	cfg.HTTPClient = &http.Client{
		Transport: &http.Transport{},
	}

	if model == "" {
		model = defaultModel
	}

	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// ChatCompletion sends a system+user prompt pair and returns the raw
// assistant reply.
func (c *Client) ChatCompletion(systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
