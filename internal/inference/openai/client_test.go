package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/at-ishikawa/tubenotes/internal/inference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func successResponse(content string) ChatCompletionResponse {
	return ChatCompletionResponse{
		ID:      "gen-123",
		Object:  "chat.completion",
		Created: 1677652288,
		Model:   "deepseek/deepseek-r1:free",
		Choices: []Choice{
			{
				Index:        0,
				Message:      ChoiceMessage{Role: inference.RoleAssistant, Content: content},
				FinishReason: "stop",
			},
		},
		Usage: Usage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
	}
}

func TestClient_Complete(t *testing.T) {
	request := inference.CompletionRequest{
		Messages: []inference.Message{
			{Role: inference.RoleSystem, Content: "You are a professional teacher who makes great in-depth notes."},
			{Role: inference.RoleUser, Content: "hello world"},
		},
		MaxTokens:   5000,
		Temperature: 0.7,
	}

	tests := []struct {
		name              string
		mockServerHandler func(t *testing.T, w http.ResponseWriter, r *http.Request)

		want            string
		wantErrorIs     error
		wantServiceErr  *inference.ServiceError
		wantErrorString string
	}{
		{
			name: "returns the first choice content",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/chat/completions", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

				var reqBody ChatCompletionRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
				assert.Equal(t, "deepseek/deepseek-r1:free", reqBody.Model)
				assert.Equal(t, 5000, reqBody.MaxTokens)
				assert.InDelta(t, 0.7, reqBody.Temperature, 0.0001)
				require.Len(t, reqBody.Messages, 2)
				assert.Equal(t, inference.RoleSystem, reqBody.Messages[0].Role)
				assert.Equal(t, "hello world", reqBody.Messages[1].Content)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				_ = json.NewEncoder(w).Encode(successResponse("# Title\nBody"))
			},
			want: "# Title\nBody",
		},
		{
			name: "non-success status becomes a service error",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":{"message":"No auth credentials found","code":401}}`))
			},
			wantServiceErr: &inference.ServiceError{StatusCode: http.StatusUnauthorized, Message: "No auth credentials found"},
		},
		{
			name: "error body on a success status",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{"error":{"message":"Provider returned error"}}`))
			},
			wantServiceErr: &inference.ServiceError{Message: "Provider returned error"},
		},
		{
			name: "empty choices",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{"id":"gen-1","choices":[]}`))
			},
			wantErrorIs: inference.ErrEmptyResponse,
		},
		{
			name: "blank content",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				_ = json.NewEncoder(w).Encode(successResponse("  \n"))
			},
			wantErrorIs: inference.ErrEmptyResponse,
		},
		{
			name: "non-JSON error body is kept verbatim",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte("upstream unavailable"))
			},
			wantServiceErr: &inference.ServiceError{StatusCode: http.StatusBadGateway, Message: "upstream unavailable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.mockServerHandler(t, w, r)
			}))
			defer server.Close()

			client := NewClient(server.URL, "test-key", "deepseek/deepseek-r1:free", 0)
			defer func() {
				_ = client.Close()
			}()

			got, err := client.Complete(context.Background(), request)
			switch {
			case tt.wantServiceErr != nil:
				var serviceErr *inference.ServiceError
				require.ErrorAs(t, err, &serviceErr)
				assert.Equal(t, tt.wantServiceErr, serviceErr)
			case tt.wantErrorIs != nil:
				assert.ErrorIs(t, err, tt.wantErrorIs)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestClient_Complete_Retry(t *testing.T) {
	tests := []struct {
		name          string
		retryAttempts uint
		statuses      []int
		wantCalls     int32
		wantErr       bool
	}{
		{
			name:          "no retry by default",
			retryAttempts: inference.DefaultMaxRetryAttempts,
			statuses:      []int{http.StatusInternalServerError, http.StatusOK},
			wantCalls:     1,
			wantErr:       true,
		},
		{
			name:          "retries a server error when configured",
			retryAttempts: 1,
			statuses:      []int{http.StatusInternalServerError, http.StatusOK},
			wantCalls:     2,
		},
		{
			name:          "does not retry a client error",
			retryAttempts: 2,
			statuses:      []int{http.StatusBadRequest, http.StatusOK},
			wantCalls:     1,
			wantErr:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := atomic.AddInt32(&calls, 1)
				status := tt.statuses[n-1]
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				if status == http.StatusOK {
					_ = json.NewEncoder(w).Encode(successResponse("ok"))
					return
				}
				_, _ = w.Write([]byte(`{"error":{"message":"failed"}}`))
			}))
			defer server.Close()

			client := NewClient(server.URL, "test-key", "test-model", tt.retryAttempts)
			got, err := client.Complete(context.Background(), inference.CompletionRequest{
				Messages: []inference.Message{{Role: inference.RoleUser, Content: "hi"}},
			})

			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ok", got)
		})
	}
}

func TestNewClient(t *testing.T) {
	client := NewClient("", "key", "model", 0)
	assert.Equal(t, "model", client.GetModel())
	assert.NotNil(t, client.httpClient)
}
