// Package openaisdk implements inference.Client on top of the go-openai SDK.
package openaisdk

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/at-ishikawa/tubenotes/internal/inference"
	openai "github.com/sashabaranov/go-openai"
)

// chatCompleter is satisfied by *openai.Client and by test doubles.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

var _ inference.Client = (*Client)(nil)

type Client struct {
	client chatCompleter
	model  string
}

// NewClient creates a client. An empty baseURL keeps the SDK default (api.openai.com).
func NewClient(baseURL, apiKey, model string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (c *Client) Complete(ctx context.Context, request inference.CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(request.Messages))
	for _, message := range request.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(message.Role),
			Content: message.Content,
		})
	}

	response, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   request.MaxTokens,
		Temperature: request.Temperature,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &inference.ServiceError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		return "", fmt.Errorf("client.CreateChatCompletion > %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices: %w", inference.ErrEmptyResponse)
	}
	content := response.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("empty content: %w", inference.ErrEmptyResponse)
	}
	return content, nil
}
