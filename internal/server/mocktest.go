package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/at-ishikawa/tubenotes/internal/mocktest"
	"github.com/at-ishikawa/tubenotes/internal/videoref"
)

type mockTestRequest struct {
	VideoURL   string `json:"videoUrl"`
	Transcript string `json:"transcript"`
	Notes      string `json:"notes"`
}

type malformedQuestion struct {
	Number int    `json:"number"`
	Reason string `json:"reason"`
}

type mockTestResponse struct {
	VideoRef           string              `json:"videoRef"`
	Questions          string              `json:"questions"`
	AnswerKey          map[string]string   `json:"answerKey"`
	ParsedQuestions    []mocktest.Question `json:"parsedQuestions"`
	MalformedQuestions []malformedQuestion `json:"malformedQuestions"`
	InvalidLabels      []string            `json:"invalidLabels"`
}

func (h *Handler) handleMockTest(w http.ResponseWriter, r *http.Request) {
	var request mockTestRequest
	if !decodeJSON(w, r, &request, messageInvalidURL) {
		return
	}
	ref, err := videoref.Resolve(request.VideoURL)
	if err != nil {
		writeError(w, http.StatusBadRequest, messageInvalidURL)
		return
	}

	transcript := request.Transcript
	if request.Notes == "" && transcript == "" {
		var status int
		var message string
		if transcript, status, message = h.fetchTranscript(r, ref); status != http.StatusOK {
			writeError(w, status, message)
			return
		}
	}

	test, err := h.tests.Generate(r.Context(), mocktest.Request{
		Notes:      request.Notes,
		Transcript: transcript,
		CacheKey:   ref.CacheKey(),
	})
	if err != nil {
		slog.Default().Error("Mock test generation error", "videoRef", ref, "error", err)
		writeError(w, http.StatusBadGateway, mocktest.ErrorMessage(err))
		return
	}

	questions, malformed := test.Questions()
	response := mockTestResponse{
		VideoRef:           ref.String(),
		Questions:          test.QuestionsBlock,
		AnswerKey:          test.AnswerKey,
		ParsedQuestions:    questions,
		MalformedQuestions: make([]malformedQuestion, 0, len(malformed)),
		InvalidLabels:      test.InvalidLabels(),
	}
	if response.ParsedQuestions == nil {
		response.ParsedQuestions = []mocktest.Question{}
	}
	if response.InvalidLabels == nil {
		response.InvalidLabels = []string{}
	}
	for _, m := range malformed {
		response.MalformedQuestions = append(response.MalformedQuestions, malformedQuestion{Number: m.Number, Reason: m.Reason})
	}
	writeJSON(w, http.StatusOK, response)
}

type gradeRequest struct {
	AnswerKey map[string]string `json:"answerKey"`
	Answers   map[string]string `json:"answers"`
}

func (h *Handler) handleGrade(w http.ResponseWriter, r *http.Request) {
	var request gradeRequest
	if !decodeJSON(w, r, &request, "Invalid grading request") {
		return
	}

	answers := make(map[int]string, len(request.Answers))
	for key, label := range request.Answers {
		number, err := strconv.Atoi(key)
		if err != nil || number < 1 {
			writeError(w, http.StatusBadRequest, "Question numbers must be positive integers")
			return
		}
		answers[number] = label
	}
	writeJSON(w, http.StatusOK, mocktest.Grade(mocktest.MockTest{AnswerKey: request.AnswerKey}, answers))
}
