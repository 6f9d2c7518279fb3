// Package server exposes the transcript, notes, mock test and mentor stages over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/at-ishikawa/tubenotes/internal/mocktest"
	"github.com/at-ishikawa/tubenotes/internal/videoref"
)

const maxRequestBodyBytes = 8 << 20

type TranscriptFetcher interface {
	Fetch(ctx context.Context, ref videoref.VideoRef, lang string) (string, error)
}

type NotesGenerator interface {
	GenerateNotes(ctx context.Context, transcript, cacheKey string) string
}

type MockTestGenerator interface {
	Generate(ctx context.Context, request mocktest.Request) (mocktest.MockTest, error)
}

type Handler struct {
	fetcher  TranscriptFetcher
	notes    NotesGenerator
	tests    MockTestGenerator
	mentors  *MentorRegistry
	language string
}

func NewHandler(
	fetcher TranscriptFetcher,
	notesGenerator NotesGenerator,
	tests MockTestGenerator,
	mentors *MentorRegistry,
	language string,
) *Handler {
	return &Handler{
		fetcher:  fetcher,
		notes:    notesGenerator,
		tests:    tests,
		mentors:  mentors,
		language: language,
	}
}

// Routes returns the mux serving every endpoint.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.HandleFunc("POST /api/extract-captions", h.handleExtractCaptions)
	mux.HandleFunc("POST /api/notes", h.handleNotes)
	mux.HandleFunc("POST /api/mock-test", h.handleMockTest)
	mux.HandleFunc("POST /api/mock-test/grade", h.handleGrade)
	mux.HandleFunc("POST /api/mentor/sessions", h.handleOpenMentor)
	mux.HandleFunc("GET /api/mentor/sessions/{id}", h.handleMentorHistory)
	mux.HandleFunc("POST /api/mentor/sessions/{id}/messages", h.handleMentorMessage)
	mux.HandleFunc("DELETE /api/mentor/sessions/{id}", h.handleCloseMentor)
	return mux
}

func (h *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Hello World!"))
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Default().Error("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// decodeJSON reads a JSON request body into dst, reporting whether it succeeded.
// On failure a 400 response has already been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, invalidMessage string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body is too large")
			return false
		}
		writeError(w, http.StatusBadRequest, invalidMessage)
		return false
	}
	return true
}
