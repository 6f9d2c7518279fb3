// Package mentor runs a multi-turn question and answer session over a video's transcript and notes.
package mentor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/at-ishikawa/tubenotes/internal/inference"
)

var (
	ErrNoContextAvailable = errors.New("neither a transcript nor notes are available")
	ErrSessionClosed      = errors.New("mentor session is closed")
	ErrAwaitingReply      = errors.New("mentor is still replying to the previous message")
	ErrEmptyMessage       = errors.New("message is empty")
)

const persona = "You are a friendly and patient mentor. A student is studying a video lesson. " +
	"Answer the student's question clearly, explain the ideas step by step, and use short examples where they help. " +
	"Base your answer on the lesson transcript and notes provided."

type Params struct {
	MaxTokens   int
	Temperature float32
}

var DefaultParams = Params{
	MaxTokens:   1500,
	Temperature: 0.7,
}

// Material is the read-only lesson content a session answers from.
type Material struct {
	Transcript string
	Notes      string
}

func (m Material) empty() bool {
	return strings.TrimSpace(m.Transcript) == "" && strings.TrimSpace(m.Notes) == ""
}

// Exchange is one displayed message. IsError marks a mentor message reporting a failed turn.
type Exchange struct {
	ID        string    `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	IsUser    bool      `json:"isUser" yaml:"is_user"`
	IsError   bool      `json:"isError,omitempty" yaml:"is_error,omitempty"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Session is Closed until Open is called. At most one message is in flight at a time.
type Session struct {
	client inference.Client
	params Params
	now    func() time.Time

	mu       sync.Mutex
	open     bool
	material Material
	history  []Exchange
	awaiting bool
	// epoch changes on every Open and Close so that a reply to an earlier session is dropped.
	epoch uint64
}

func NewSession(client inference.Client, params Params) *Session {
	return &Session{
		client: client,
		params: params,
		now:    time.Now,
	}
}

// Open starts a fresh session, discarding any previous history.
func (session *Session) Open(material Material) {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.open = true
	session.material = material
	session.history = nil
	session.awaiting = false
	session.epoch++
}

// SetMaterial replaces the lesson content of an open session, for example once notes exist.
func (session *Session) SetMaterial(material Material) error {
	session.mu.Lock()
	defer session.mu.Unlock()
	if !session.open {
		return ErrSessionClosed
	}
	session.material = material
	return nil
}

func (session *Session) Close() {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.open = false
	session.material = Material{}
	session.history = nil
	session.awaiting = false
	session.epoch++
}

func (session *Session) IsOpen() bool {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.open
}

func (session *Session) Awaiting() bool {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.awaiting
}

func (session *Session) History() []Exchange {
	session.mu.Lock()
	defer session.mu.Unlock()
	history := make([]Exchange, len(session.history))
	copy(history, session.history)
	return history
}

// Send runs one turn and returns the mentor's exchange. A failed generation is not an
// error: it is returned, and recorded, as a mentor exchange with IsError set.
// Send fails without touching the history when the session is closed, a reply is
// pending, or message is blank. With no material at all it records one error exchange
// and returns ErrNoContextAvailable.
func (session *Session) Send(ctx context.Context, message string) (Exchange, error) {
	session.mu.Lock()
	if !session.open {
		session.mu.Unlock()
		return Exchange{}, ErrSessionClosed
	}
	if session.awaiting {
		session.mu.Unlock()
		return Exchange{}, ErrAwaitingReply
	}
	message = strings.TrimSpace(message)
	if message == "" {
		session.mu.Unlock()
		return Exchange{}, ErrEmptyMessage
	}
	if session.material.empty() {
		reply := session.appendLocked(noContextNotice, false, true)
		session.mu.Unlock()
		return reply, ErrNoContextAvailable
	}

	session.appendLocked(message, true, false)
	session.awaiting = true
	epoch := session.epoch
	request := session.request(message)
	session.mu.Unlock()

	text, err := session.client.Complete(ctx, request)

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.epoch != epoch {
		slog.Default().Debug("discarding mentor reply for a closed session", "error", err)
		return Exchange{}, ErrSessionClosed
	}
	session.awaiting = false
	if err != nil {
		slog.Default().Warn("mentor turn failed", "error", err)
		return session.appendLocked(errorNotice(err), false, true), nil
	}
	return session.appendLocked(strings.TrimSpace(text), false, false), nil
}

func (session *Session) appendLocked(text string, isUser, isError bool) Exchange {
	exchange := Exchange{
		ID:        uuid.NewString(),
		Text:      text,
		IsUser:    isUser,
		IsError:   isError,
		Timestamp: session.now(),
	}
	session.history = append(session.history, exchange)
	return exchange
}

// request rebuilds the full context for every turn; earlier exchanges are never sent.
func (session *Session) request(message string) inference.CompletionRequest {
	var content strings.Builder
	if transcript := strings.TrimSpace(session.material.Transcript); transcript != "" {
		fmt.Fprintf(&content, "Lesson transcript:\n\"%s\"\n\n", transcript)
	}
	if notesDocument := strings.TrimSpace(session.material.Notes); notesDocument != "" {
		fmt.Fprintf(&content, "Lesson notes:\n\"%s\"\n\n", notesDocument)
	}
	fmt.Fprintf(&content, "Student's question: %s", message)

	return inference.CompletionRequest{
		Messages: []inference.Message{
			{Role: inference.RoleSystem, Content: persona},
			{Role: inference.RoleUser, Content: content.String()},
		},
		MaxTokens:   session.params.MaxTokens,
		Temperature: session.params.Temperature,
	}
}
