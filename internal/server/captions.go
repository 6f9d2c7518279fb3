package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/at-ishikawa/tubenotes/internal/caption"
	"github.com/at-ishikawa/tubenotes/internal/videoref"
)

const (
	messageInvalidURL   = "Invalid YouTube URL"
	messageNoCaptions   = "No captions available for this video"
	messageFetchFailure = "Failed to extract captions"
)

type extractCaptionsRequest struct {
	VideoURL string `json:"videoUrl"`
}

type extractCaptionsResponse struct {
	Transcript string `json:"transcript"`
}

func (h *Handler) handleExtractCaptions(w http.ResponseWriter, r *http.Request) {
	var request extractCaptionsRequest
	if !decodeJSON(w, r, &request, messageInvalidURL) {
		return
	}

	ref, err := videoref.Resolve(request.VideoURL)
	if err != nil {
		writeError(w, http.StatusBadRequest, messageInvalidURL)
		return
	}

	transcript, status, message := h.fetchTranscript(r, ref)
	if status != http.StatusOK {
		writeError(w, status, message)
		return
	}
	writeJSON(w, http.StatusOK, extractCaptionsResponse{Transcript: transcript})
}

// fetchTranscript maps fetch failures to the status and message of the extract-captions endpoint.
func (h *Handler) fetchTranscript(r *http.Request, ref videoref.VideoRef) (string, int, string) {
	transcript, err := h.fetcher.Fetch(r.Context(), ref, h.language)
	if err != nil {
		if errors.Is(err, caption.ErrNoCaptionsAvailable) {
			return "", http.StatusNotFound, messageNoCaptions
		}
		slog.Default().Error("Error extracting captions", "videoRef", ref, "error", err)
		return "", http.StatusInternalServerError, messageFetchFailure
	}
	return transcript, http.StatusOK, ""
}
