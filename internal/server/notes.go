package server

import (
	"net/http"
	"strings"

	"github.com/at-ishikawa/tubenotes/internal/notes"
	"github.com/at-ishikawa/tubenotes/internal/videoref"
)

type notesRequest struct {
	VideoURL   string `json:"videoUrl"`
	Transcript string `json:"transcript"`
}

type notesSection struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type notesResponse struct {
	VideoRef string         `json:"videoRef"`
	Notes    string         `json:"notes"`
	Failed   bool           `json:"failed"`
	Sections []notesSection `json:"sections"`
}

func (h *Handler) handleNotes(w http.ResponseWriter, r *http.Request) {
	var request notesRequest
	if !decodeJSON(w, r, &request, messageInvalidURL) {
		return
	}
	ref, err := videoref.Resolve(request.VideoURL)
	if err != nil {
		writeError(w, http.StatusBadRequest, messageInvalidURL)
		return
	}

	transcript := request.Transcript
	if strings.TrimSpace(transcript) == "" {
		var status int
		var message string
		if transcript, status, message = h.fetchTranscript(r, ref); status != http.StatusOK {
			writeError(w, status, message)
			return
		}
	}

	text := h.notes.GenerateNotes(r.Context(), transcript, ref.CacheKey())
	response := notesResponse{
		VideoRef: ref.String(),
		Notes:    text,
		Failed:   text == notes.FailureNotice,
		Sections: []notesSection{},
	}
	if !response.Failed {
		for _, section := range notes.Sections(text) {
			response.Sections = append(response.Sections, notesSection{Title: section.Title, Body: section.Body})
		}
	}
	writeJSON(w, http.StatusOK, response)
}
