package inference

import (
	"context"
	"errors"
	"fmt"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_client.go -package=mock_inference

// Client sends one chat completion request to a text-generation service and
// returns the content of the first choice.
type Client interface {
	Complete(ctx context.Context, request CompletionRequest) (string, error)
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest holds the per-call parameters. The model is owned by the client.
type CompletionRequest struct {
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

// ErrEmptyResponse is returned when the service answers without any usable choice.
var ErrEmptyResponse = errors.New("empty response from generation service")

// ServiceError is a rejection reported by the service, either through a
// non-success status or an {"error": {"message": ...}} body.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("generation service error: %s", e.Message)
	}
	return fmt.Sprintf("generation service error %d: %s", e.StatusCode, e.Message)
}

const (
	// Retries are user initiated unless configured otherwise.
	DefaultMaxRetryAttempts = 0
)
