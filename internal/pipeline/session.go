// Package pipeline sequences one study session: fetch a transcript, then show either
// notes or a mock test for it. Only the latest command decides what is shown.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/at-ishikawa/tubenotes/internal/mocktest"
	"github.com/at-ishikawa/tubenotes/internal/notes"
	"github.com/at-ishikawa/tubenotes/internal/videoref"
)

var (
	// ErrSuperseded is returned when a newer command replaced the result of this one.
	ErrSuperseded   = errors.New("superseded by a newer request")
	ErrNoTranscript = errors.New("no transcript loaded")
)

type TranscriptFetcher interface {
	Fetch(ctx context.Context, ref videoref.VideoRef, lang string) (string, error)
}

type NotesGenerator interface {
	GenerateNotes(ctx context.Context, transcript, cacheKey string) string
}

type MockTestGenerator interface {
	Generate(ctx context.Context, request mocktest.Request) (mocktest.MockTest, error)
}

// Snapshot is a consistent view of a session. Notes and MockTest are mutually
// exclusive: at most one of them is set, matching the current state.
type Snapshot struct {
	State      State
	Ref        videoref.VideoRef
	Transcript string
	Notes      string
	MockTest   *mocktest.MockTest
}

type Session struct {
	fetcher  TranscriptFetcher
	notes    NotesGenerator
	tests    MockTestGenerator
	language string

	mu         sync.Mutex
	state      State
	ref        videoref.VideoRef
	transcript string
	// notesDocument is kept across view switches so that a mock test or mentor can reuse it.
	notesDocument string
	mockTest      *mocktest.MockTest

	// loadGeneration counts Load calls; viewGeneration counts every command that changes the view.
	loadGeneration uint64
	viewGeneration uint64
}

func NewSession(fetcher TranscriptFetcher, notesGenerator NotesGenerator, tests MockTestGenerator, language string) *Session {
	return &Session{
		fetcher:  fetcher,
		notes:    notesGenerator,
		tests:    tests,
		language: language,
	}
}

type ticket struct {
	load uint64
	view uint64
}

func (session *Session) currentLocked(t ticket) bool {
	return t.load == session.loadGeneration && t.view == session.viewGeneration
}

// Load resolves url and fetches its transcript, replacing everything the session held.
func (session *Session) Load(ctx context.Context, url string) (videoref.VideoRef, error) {
	ref, err := videoref.Resolve(url)
	if err != nil {
		return "", err
	}

	session.mu.Lock()
	session.loadGeneration++
	session.viewGeneration++
	t := ticket{load: session.loadGeneration, view: session.viewGeneration}
	session.state = StateFetching
	session.ref = ref
	session.transcript = ""
	session.notesDocument = ""
	session.mockTest = nil
	session.mu.Unlock()

	transcript, err := session.fetcher.Fetch(ctx, ref, session.language)

	session.mu.Lock()
	defer session.mu.Unlock()
	if !session.currentLocked(t) {
		return "", ErrSuperseded
	}
	if err != nil {
		session.state = StateIdle
		session.ref = ""
		return "", fmt.Errorf("fetcher.Fetch(%s) > %w", ref, err)
	}
	session.transcript = transcript
	session.state = StateReady
	return ref, nil
}

// GenerateNotes shows notes for the loaded transcript. The returned text may be
// notes.FailureNotice, which is displayed but never reused as notes.
func (session *Session) GenerateNotes(ctx context.Context) (string, error) {
	session.mu.Lock()
	if session.transcript == "" {
		session.mu.Unlock()
		return "", ErrNoTranscript
	}
	session.viewGeneration++
	t := ticket{load: session.loadGeneration, view: session.viewGeneration}
	session.state = StateNotesPending
	session.mockTest = nil
	transcript, ref := session.transcript, session.ref
	session.mu.Unlock()

	text := session.notes.GenerateNotes(ctx, transcript, ref.CacheKey())

	session.mu.Lock()
	defer session.mu.Unlock()
	if t.load == session.loadGeneration {
		// Notes for the same video stay useful even when another view replaced this one.
		session.keepNotesLocked(text)
	}
	if !session.currentLocked(t) {
		slog.Default().Debug("discarding superseded notes", "videoRef", ref)
		return "", ErrSuperseded
	}
	session.state = StateNotesReady
	return text, nil
}

// GenerateMockTest shows a mock test built from the session's notes, which are
// generated first when the session has none.
func (session *Session) GenerateMockTest(ctx context.Context) (mocktest.MockTest, error) {
	session.mu.Lock()
	if session.transcript == "" {
		session.mu.Unlock()
		return mocktest.MockTest{}, ErrNoTranscript
	}
	session.viewGeneration++
	t := ticket{load: session.loadGeneration, view: session.viewGeneration}
	session.state = StateTestPending
	session.mockTest = nil
	request := mocktest.Request{
		Notes:      session.notesDocument,
		Transcript: session.transcript,
		CacheKey:   session.ref.CacheKey(),
	}
	ref := session.ref
	session.mu.Unlock()

	test, err := session.tests.Generate(ctx, request)

	session.mu.Lock()
	defer session.mu.Unlock()
	if err == nil && t.load == session.loadGeneration {
		// Notes generated on the way to the test are kept for the notes view and the mentor.
		session.keepNotesLocked(test.Notes)
	}
	if !session.currentLocked(t) {
		slog.Default().Debug("discarding superseded mock test", "videoRef", ref)
		return mocktest.MockTest{}, ErrSuperseded
	}
	if err != nil {
		session.state = StateReady
		return mocktest.MockTest{}, fmt.Errorf("tests.Generate > %w", err)
	}
	session.mockTest = &test
	session.state = StateTestReady
	return test, nil
}

func (session *Session) keepNotesLocked(text string) {
	if text == "" || text == notes.FailureNotice {
		return
	}
	session.notesDocument = text
}

func (session *Session) State() State {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.state
}

func (session *Session) Snapshot() Snapshot {
	session.mu.Lock()
	defer session.mu.Unlock()
	snapshot := Snapshot{
		State:      session.state,
		Ref:        session.ref,
		Transcript: session.transcript,
	}
	switch session.state {
	case StateNotesReady:
		snapshot.Notes = session.notesDocument
		if snapshot.Notes == "" {
			snapshot.Notes = notes.FailureNotice
		}
	case StateTestReady:
		test := *session.mockTest
		snapshot.MockTest = &test
	}
	return snapshot
}

// Material returns the transcript and any notes generated for it, for a mentor session.
func (session *Session) Material() (transcript, notesDocument string) {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.transcript, session.notesDocument
}
