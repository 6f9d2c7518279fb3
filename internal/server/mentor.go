package server

import (
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/at-ishikawa/tubenotes/internal/mentor"
)

// MentorRegistry holds the open mentor sessions by ID.
type MentorRegistry struct {
	newSession func() *mentor.Session

	mu       sync.Mutex
	sessions map[string]*mentor.Session
}

func NewMentorRegistry(newSession func() *mentor.Session) *MentorRegistry {
	return &MentorRegistry{
		newSession: newSession,
		sessions:   make(map[string]*mentor.Session),
	}
}

func (registry *MentorRegistry) Open(material mentor.Material) string {
	session := registry.newSession()
	session.Open(material)

	id := uuid.NewString()
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.sessions[id] = session
	return id
}

func (registry *MentorRegistry) Get(id string) (*mentor.Session, bool) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	session, ok := registry.sessions[id]
	return session, ok
}

func (registry *MentorRegistry) Close(id string) bool {
	registry.mu.Lock()
	session, ok := registry.sessions[id]
	delete(registry.sessions, id)
	registry.mu.Unlock()

	if ok {
		session.Close()
	}
	return ok
}

func (registry *MentorRegistry) Len() int {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return len(registry.sessions)
}

type openMentorRequest struct {
	Transcript string `json:"transcript"`
	Notes      string `json:"notes"`
}

type openMentorResponse struct {
	SessionID string `json:"sessionId"`
}

type mentorMessageRequest struct {
	Message string `json:"message"`
}

type mentorMessageResponse struct {
	Reply   mentor.Exchange   `json:"reply"`
	History []mentor.Exchange `json:"history"`
}

type mentorHistoryResponse struct {
	History []mentor.Exchange `json:"history"`
}

const messageMentorNotFound = "Mentor session not found"

func (h *Handler) handleOpenMentor(w http.ResponseWriter, r *http.Request) {
	var request openMentorRequest
	if !decodeJSON(w, r, &request, "Invalid mentor session request") {
		return
	}
	id := h.mentors.Open(mentor.Material{Transcript: request.Transcript, Notes: request.Notes})
	writeJSON(w, http.StatusCreated, openMentorResponse{SessionID: id})
}

func (h *Handler) handleMentorHistory(w http.ResponseWriter, r *http.Request) {
	session, ok := h.mentors.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, messageMentorNotFound)
		return
	}
	writeJSON(w, http.StatusOK, mentorHistoryResponse{History: session.History()})
}

func (h *Handler) handleMentorMessage(w http.ResponseWriter, r *http.Request) {
	session, ok := h.mentors.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, messageMentorNotFound)
		return
	}
	var request mentorMessageRequest
	if !decodeJSON(w, r, &request, "Invalid mentor message") {
		return
	}

	reply, err := session.Send(r.Context(), request.Message)
	switch {
	case err == nil, errors.Is(err, mentor.ErrNoContextAvailable):
		writeJSON(w, http.StatusOK, mentorMessageResponse{Reply: reply, History: session.History()})
	case errors.Is(err, mentor.ErrAwaitingReply):
		writeError(w, http.StatusConflict, "The mentor is still replying to the previous message")
	case errors.Is(err, mentor.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "Message is empty")
	case errors.Is(err, mentor.ErrSessionClosed):
		writeError(w, http.StatusGone, "Mentor session was closed")
	default:
		writeError(w, http.StatusInternalServerError, "Failed to send message")
	}
}

func (h *Handler) handleCloseMentor(w http.ResponseWriter, r *http.Request) {
	if !h.mentors.Close(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, messageMentorNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
