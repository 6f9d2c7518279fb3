package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/at-ishikawa/tubenotes/internal/inference"
	"github.com/avast/retry-go"
	"resty.dev/v3"
)

// DefaultBaseURL points at OpenRouter, which speaks the OpenAI chat completions protocol.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

type Client struct {
	httpClient       *resty.Client
	model            string
	maxRetryAttempts uint
}

type Option func(*resty.Client)

// WithTimeout bounds every request. Requests are unbounded by default.
func WithTimeout(timeout time.Duration) Option {
	return func(client *resty.Client) {
		if timeout > 0 {
			client.SetTimeout(timeout)
		}
	}
}

func NewClient(baseURL, apiKey, model string, retryAttempts uint, options ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(baseURL, "/"))
	client.SetHeader("Authorization", "Bearer "+apiKey)
	client.SetHeader("Content-Type", "application/json")
	for _, option := range options {
		option(client)
	}

	return &Client{
		httpClient:       client,
		model:            model,
		maxRetryAttempts: retryAttempts,
	}
}

func (client Client) Close() error {
	return client.httpClient.Close()
}

// GetModel returns the model name configured for this client
func (client Client) GetModel() string {
	return client.model
}

type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float32   `json:"temperature,omitempty"`
}

type Message struct {
	Role    inference.Role `json:"role"`
	Content string         `json:"content"`
}

type ChatCompletionResponse struct {
	ID      string     `json:"id"`
	Object  string     `json:"object"`
	Created int64      `json:"created"`
	Model   string     `json:"model"`
	Choices []Choice   `json:"choices"`
	Usage   Usage      `json:"usage"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type Choice struct {
	Index        int           `json:"index"`
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type ChoiceMessage struct {
	Role    inference.Role `json:"role"`
	Content string         `json:"content"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Code    any    `json:"code,omitempty"`
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var serviceErr *inference.ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.StatusCode == http.StatusTooManyRequests || serviceErr.StatusCode >= http.StatusInternalServerError
	}

	// Retry on network-related errors
	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") {
		return true
	}
	return false
}

// Complete implements the inference.Client interface
func (client *Client) Complete(
	ctx context.Context,
	request inference.CompletionRequest,
) (string, error) {
	var result string
	if err := retry.Do(
		func() error {
			content, err := client.complete(ctx, request)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			result = content
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	); err != nil {
		return "", err
	}
	return result, nil
}

func (client *Client) getRequestBody(request inference.CompletionRequest) ChatCompletionRequest {
	messages := make([]Message, 0, len(request.Messages))
	for _, message := range request.Messages {
		messages = append(messages, Message{Role: message.Role, Content: message.Content})
	}
	return ChatCompletionRequest{
		Model:       client.model,
		Messages:    messages,
		MaxTokens:   request.MaxTokens,
		Temperature: request.Temperature,
	}
}

func (client *Client) complete(
	ctx context.Context,
	request inference.CompletionRequest,
) (string, error) {
	requestBody := client.getRequestBody(request)

	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&ChatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return "", &inference.ServiceError{
			StatusCode: response.StatusCode(),
			Message:    errorMessage(response.String()),
		}
	}

	responseBody, _ := response.Result().(*ChatCompletionResponse)
	if responseBody != nil && responseBody.Error != nil {
		return "", &inference.ServiceError{Message: responseBody.Error.Message}
	}
	if responseBody == nil || len(responseBody.Choices) == 0 {
		return "", fmt.Errorf("no choices in %s: %w", response.String(), inference.ErrEmptyResponse)
	}

	content := responseBody.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("empty content in %s: %w", response.String(), inference.ErrEmptyResponse)
	}

	slog.Default().Debug("chat completion response",
		"model", client.model,
		"request", requestBody,
		"response", content,
	)
	return content, nil
}

// errorMessage pulls error.message out of an error body, falling back to the raw body.
func errorMessage(body string) string {
	var envelope struct {
		Error ErrorBody `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return body
}
