package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/at-ishikawa/tubenotes/internal/caption"
	"github.com/at-ishikawa/tubenotes/internal/config"
	"github.com/at-ishikawa/tubenotes/internal/inference"
	"github.com/at-ishikawa/tubenotes/internal/inference/openai"
	"github.com/at-ishikawa/tubenotes/internal/inference/openaisdk"
	"github.com/at-ishikawa/tubenotes/internal/mentor"
	"github.com/at-ishikawa/tubenotes/internal/mocktest"
	"github.com/at-ishikawa/tubenotes/internal/notecache"
	"github.com/at-ishikawa/tubenotes/internal/notes"
)

const ProviderOpenAI = "openai"

// NewFetcher returns the transcript fetcher reading captions from YouTube.
func NewFetcher(cfg config.CaptionsConfig) *caption.Fetcher {
	return caption.NewFetcher(caption.NewYouTubeProvider(cfg.BaseURL), cfg.Language)
}

// NewGenerationClient returns the client of the configured provider.
func (a *App) NewGenerationClient(cfg config.GenerationConfig) (inference.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY or OPENAI_API_KEY environment variable is required")
	}

	if cfg.Provider == ProviderOpenAI {
		slog.Default().Debug("using the go-openai client", "model", cfg.Model, "baseURL", cfg.BaseURL)
		return openaisdk.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	}

	client := openai.NewClient(
		cfg.BaseURL,
		cfg.APIKey,
		cfg.Model,
		cfg.MaxRetryAttempts,
		openai.WithTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second),
	)
	a.AddShutdownHook(func(context.Context) error {
		return client.Close()
	})
	return client, nil
}

// OpenCache opens the configured notes cache and closes it on shutdown.
func (a *App) OpenCache(ctx context.Context, cfg *config.Config) (notecache.Store, error) {
	store, err := notecache.Open(ctx, cfg.Cache, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("notecache.Open > %w", err)
	}
	a.AddShutdownHook(func(context.Context) error {
		return store.Close()
	})
	return store, nil
}

// Generators are the generation stages sharing one client and one notes cache.
type Generators struct {
	Notes     *notes.Generator
	MockTests *mocktest.Generator

	client       inference.Client
	cache        notecache.Cache
	mentorParams mentor.Params
}

func (a *App) NewGenerators(ctx context.Context, cfg *config.Config) (*Generators, error) {
	client, err := a.NewGenerationClient(cfg.Generation)
	if err != nil {
		return nil, err
	}
	cache, err := a.OpenCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	notesGenerator := notes.NewGenerator(client, cache, notes.Params{
		MaxTokens:   cfg.Generation.Notes.MaxTokens,
		Temperature: cfg.Generation.Notes.Temperature,
	})
	mockTests := mocktest.NewGenerator(client, notesGenerator, mocktest.Params{
		MaxTokens:   cfg.Generation.MockTest.MaxTokens,
		Temperature: cfg.Generation.MockTest.Temperature,
	})
	mentorParams := mentor.Params{
		MaxTokens:   cfg.Generation.Mentor.MaxTokens,
		Temperature: cfg.Generation.Mentor.Temperature,
	}
	return &Generators{
		Notes:        notesGenerator,
		MockTests:    mockTests,
		client:       client,
		cache:        cache,
		mentorParams: mentorParams,
	}, nil
}

// Cache is the notes cache shared by the generators.
func (g *Generators) Cache() notecache.Cache {
	return g.cache
}

// NewMentorSession returns a closed mentor session.
func (g *Generators) NewMentorSession() *mentor.Session {
	return mentor.NewSession(g.client, g.mentorParams)
}
