package mocktest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/at-ishikawa/tubenotes/internal/inference"
	"github.com/at-ishikawa/tubenotes/internal/notes"
)

const systemPrompt = "You're an expert test creator."

const userPromptFormat = "Based on the following notes:\n\n\"%s\"\n\n" +
	"Generate 7–10 multiple-choice questions. Each question should have 4 options labeled A, B, C, D.\n\n" +
	"At the end, provide a separate line with this format ONLY:\n\n" +
	"Answer Key: {\"1\": \"B\", \"2\": \"D\", ...}\n\n" +
	"Make sure to follow this exact structure."

type Params struct {
	MaxTokens   int
	Temperature float32
}

var DefaultParams = Params{
	MaxTokens:   3000,
	Temperature: 0.7,
}

// NotesGenerator produces notes on demand when a test is requested before any notes exist.
type NotesGenerator interface {
	GenerateNotes(ctx context.Context, transcript, cacheKey string) string
}

type Request struct {
	Notes      string
	Transcript string
	CacheKey   string
}

type Generator struct {
	client inference.Client
	notes  NotesGenerator
	params Params
}

func NewGenerator(client inference.Client, notesGenerator NotesGenerator, params Params) *Generator {
	return &Generator{
		client: client,
		notes:  notesGenerator,
		params: params,
	}
}

func userPrompt(notesDocument string) string {
	return fmt.Sprintf(userPromptFormat, notesDocument)
}

// Generate requests a mock test for request.Notes, generating the notes first when they are empty.
// The returned test carries the notes it was built from.
func (generator *Generator) Generate(ctx context.Context, request Request) (MockTest, error) {
	notesDocument, err := generator.resolveNotes(ctx, request)
	if err != nil {
		return MockTest{}, err
	}

	raw, err := generator.client.Complete(ctx, inference.CompletionRequest{
		Messages: []inference.Message{
			{Role: inference.RoleSystem, Content: systemPrompt},
			{Role: inference.RoleUser, Content: userPrompt(notesDocument)},
		},
		MaxTokens:   generator.params.MaxTokens,
		Temperature: generator.params.Temperature,
	})
	if err != nil {
		return MockTest{}, fmt.Errorf("client.Complete > %w", err)
	}

	test, err := Parse(raw)
	if err != nil {
		slog.Default().Debug("unparseable mock test response", "response", raw)
		return MockTest{}, fmt.Errorf("parse mock test > %w", err)
	}
	if invalid := test.InvalidLabels(); len(invalid) > 0 {
		slog.Default().Warn("answer key has labels outside A-D", "questions", invalid)
	}
	test.Notes = notesDocument
	return test, nil
}

func (generator *Generator) resolveNotes(ctx context.Context, request Request) (string, error) {
	if strings.TrimSpace(request.Notes) != "" {
		return request.Notes, nil
	}
	if generator.notes == nil || strings.TrimSpace(request.Transcript) == "" {
		return "", ErrNotesUnavailable
	}

	notesDocument := generator.notes.GenerateNotes(ctx, request.Transcript, request.CacheKey)
	if notesDocument == notes.FailureNotice {
		return "", ErrNotesUnavailable
	}
	return notesDocument, nil
}
