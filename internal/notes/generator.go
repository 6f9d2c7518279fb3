// Package notes turns a transcript into structured study notes through the generation service.
package notes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/at-ishikawa/tubenotes/internal/inference"
	"github.com/at-ishikawa/tubenotes/internal/notecache"
)

// FailureNotice is returned in place of notes when none could be generated.
const FailureNotice = "⚠️ Failed to generate notes."

const systemPrompt = "You are a professional teacher who makes great in-depth notes."

const userPromptFormat = "Here is the extracted captions from a YouTube video:\n\n\"%s\"\n\n" +
	"Now, focusing on the key points and structure, generate in-depth, well-organized notes that cover all the aspects mentioned, " +
	"try to make theory wise in detailed notes with the keypoints but don't add the code as it is from the caption " +
	"try to manipulate it by your own so that user can understand better from it. " +
	"Make sure to include examples and explanations where necessary. " +
	"The notes should be clear, very much detailed, to the point, concise, and easy to follow and don't just rely on the captions. " +
	"Use your own understanding and knowledge to create this."

type Params struct {
	MaxTokens   int
	Temperature float32
}

var DefaultParams = Params{
	MaxTokens:   5000,
	Temperature: 0.7,
}

type Generator struct {
	client inference.Client
	cache  notecache.Cache
	params Params
}

func NewGenerator(client inference.Client, cache notecache.Cache, params Params) *Generator {
	return &Generator{
		client: client,
		cache:  cache,
		params: params,
	}
}

func userPrompt(transcript string) string {
	return fmt.Sprintf(userPromptFormat, transcript)
}

// Generate returns the cached notes for cacheKey, or requests new notes and caches them.
// Concurrent calls for the same key may both miss and both write; the last write wins.
func (generator *Generator) Generate(ctx context.Context, transcript, cacheKey string) (string, error) {
	text, err := notecache.GetOrCompute(ctx, generator.cache, cacheKey, func(ctx context.Context) (string, error) {
		return generator.client.Complete(ctx, inference.CompletionRequest{
			Messages: []inference.Message{
				{Role: inference.RoleSystem, Content: systemPrompt},
				{Role: inference.RoleUser, Content: userPrompt(transcript)},
			},
			MaxTokens:   generator.params.MaxTokens,
			Temperature: generator.params.Temperature,
		})
	})
	if err != nil {
		if text != "" {
			slog.Default().Warn("generated notes could not be cached",
				"cacheKey", cacheKey,
				"error", err,
			)
			return text, nil
		}
		return "", fmt.Errorf("client.Complete > %w", err)
	}
	return text, nil
}

// GenerateNotes never fails: it returns FailureNotice when Generate does.
func (generator *Generator) GenerateNotes(ctx context.Context, transcript, cacheKey string) string {
	text, err := generator.Generate(ctx, transcript, cacheKey)
	if err != nil {
		slog.Default().Error("failed to generate notes",
			"cacheKey", cacheKey,
			"error", err,
		)
		return FailureNotice
	}
	return text
}
