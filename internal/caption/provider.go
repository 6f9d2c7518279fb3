// Package caption fetches caption tracks and flattens them into a transcript.
package caption

import (
	"context"
	"errors"

	"github.com/at-ishikawa/tubenotes/internal/videoref"
)

//go:generate mockgen -source=provider.go -destination=../mocks/caption/mock_provider.go -package=mock_caption

var (
	ErrNoCaptionsAvailable = errors.New("no captions available for this video")
	ErrProviderError       = errors.New("failed to fetch captions")
)

const DefaultLanguage = "en"

// Fragment is one timed caption line as returned by a provider.
type Fragment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Provider returns the ordered caption fragments of a video in one language.
// A missing track for the language is reported as ErrNoCaptionsAvailable.
type Provider interface {
	Fragments(ctx context.Context, ref videoref.VideoRef, lang string) ([]Fragment, error)
}
