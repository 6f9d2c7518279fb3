package caption

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/at-ishikawa/tubenotes/internal/videoref"
)

type Fetcher struct {
	provider        Provider
	defaultLanguage string
}

func NewFetcher(provider Provider, defaultLanguage string) *Fetcher {
	if defaultLanguage == "" {
		defaultLanguage = DefaultLanguage
	}
	return &Fetcher{
		provider:        provider,
		defaultLanguage: defaultLanguage,
	}
}

// Fetch returns the transcript of the video: fragment texts in provider order
// joined by a single space. Timing is dropped and the text is passed through as is.
// An empty lang selects the fetcher's default language.
func (f *Fetcher) Fetch(ctx context.Context, ref videoref.VideoRef, lang string) (string, error) {
	if lang == "" {
		lang = f.defaultLanguage
	}

	fragments, err := f.provider.Fragments(ctx, ref, lang)
	if err != nil {
		if errors.Is(err, ErrNoCaptionsAvailable) {
			return "", err
		}
		slog.Default().Error("caption provider failed", "videoRef", ref, "lang", lang, "error", err)
		return "", fmt.Errorf("%w: %w", ErrProviderError, err)
	}
	if len(fragments) == 0 {
		return "", fmt.Errorf("video %s, lang %s: %w", ref, lang, ErrNoCaptionsAvailable)
	}
	return Flatten(fragments), nil
}

// Flatten joins fragment texts with a single space, preserving order.
func Flatten(fragments []Fragment) string {
	texts := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		texts = append(texts, fragment.Text)
	}
	return strings.Join(texts, " ")
}
