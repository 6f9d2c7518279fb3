package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/tubenotes/internal/caption"
	"github.com/at-ishikawa/tubenotes/internal/inference"
	"github.com/at-ishikawa/tubenotes/internal/mentor"
	mock_inference "github.com/at-ishikawa/tubenotes/internal/mocks/inference"
	"github.com/at-ishikawa/tubenotes/internal/mocktest"
	"github.com/at-ishikawa/tubenotes/internal/notes"
	"github.com/at-ishikawa/tubenotes/internal/videoref"
)

type fakeFetcher struct {
	transcript string
	err        error
	refs       []videoref.VideoRef
}

func (f *fakeFetcher) Fetch(_ context.Context, ref videoref.VideoRef, _ string) (string, error) {
	f.refs = append(f.refs, ref)
	return f.transcript, f.err
}

type fakeNotes struct {
	text        string
	transcripts []string
	keys        []string
}

func (f *fakeNotes) GenerateNotes(_ context.Context, transcript, cacheKey string) string {
	f.transcripts = append(f.transcripts, transcript)
	f.keys = append(f.keys, cacheKey)
	return f.text
}

type fakeTests struct {
	test     mocktest.MockTest
	err      error
	requests []mocktest.Request
}

func (f *fakeTests) Generate(_ context.Context, request mocktest.Request) (mocktest.MockTest, error) {
	f.requests = append(f.requests, request)
	return f.test, f.err
}

type testServer struct {
	fetcher *fakeFetcher
	notes   *fakeNotes
	tests   *fakeTests
	client  *mock_inference.MockClient
	mentors *MentorRegistry
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctrl := gomock.NewController(t)
	s := &testServer{
		fetcher: &fakeFetcher{transcript: "hello world"},
		notes:   &fakeNotes{text: "# Title\nBody"},
		tests:   &fakeTests{},
		client:  mock_inference.NewMockClient(ctrl),
	}
	s.mentors = NewMentorRegistry(func() *mentor.Session {
		return mentor.NewSession(s.client, mentor.DefaultParams)
	})
	s.handler = NewHandler(s.fetcher, s.notes, s.tests, s.mentors, "en").Routes()
	return s
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Root(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello World!", rec.Body.String())
}

func TestHandler_ExtractCaptions(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		fetchErr   error
		wantStatus int
		wantBody   string
		wantRef    videoref.VideoRef
	}{
		{
			name:       "transcript for a watch URL",
			body:       `{"videoUrl":"https://www.youtube.com/watch?v=dQw4w9WgXcQ"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"transcript":"hello world"}`,
			wantRef:    "dQw4w9WgXcQ",
		},
		{
			name:       "transcript for a short URL",
			body:       `{"videoUrl":"https://youtu.be/dQw4w9WgXcQ"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"transcript":"hello world"}`,
			wantRef:    "dQw4w9WgXcQ",
		},
		{
			name:       "invalid URL",
			body:       `{"videoUrl":"https://example.com/video"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Invalid YouTube URL"}`,
		},
		{
			name:       "missing URL",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Invalid YouTube URL"}`,
		},
		{
			name:       "malformed body",
			body:       `{"videoUrl":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Invalid YouTube URL"}`,
		},
		{
			name:       "no captions",
			body:       `{"videoUrl":"https://youtu.be/dQw4w9WgXcQ"}`,
			fetchErr:   caption.ErrNoCaptionsAvailable,
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"No captions available for this video"}`,
			wantRef:    "dQw4w9WgXcQ",
		},
		{
			name:       "provider failure",
			body:       `{"videoUrl":"https://youtu.be/dQw4w9WgXcQ"}`,
			fetchErr:   errors.Join(caption.ErrProviderError, errors.New("status 429")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Failed to extract captions"}`,
			wantRef:    "dQw4w9WgXcQ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.fetcher.err = tt.fetchErr

			rec := s.do(t, http.MethodPost, "/api/extract-captions", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tt.wantRef != "" {
				assert.Equal(t, []videoref.VideoRef{tt.wantRef}, s.fetcher.refs)
			} else {
				assert.Empty(t, s.fetcher.refs)
			}
		})
	}
}

func TestHandler_ExtractCaptions_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/extract-captions", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandler_Notes(t *testing.T) {
	t.Run("uses the given transcript", func(t *testing.T) {
		s := newTestServer(t)
		s.notes.text = "# Intro\nWelcome\n---\n## Details\nMore"

		rec := s.do(t, http.MethodPost, "/api/notes", `{"videoUrl":"https://youtu.be/dQw4w9WgXcQ","transcript":"given"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{
			"videoRef": "dQw4w9WgXcQ",
			"notes": "# Intro\nWelcome\n---\n## Details\nMore",
			"failed": false,
			"sections": [
				{"title": "1. Intro", "body": "Welcome"},
				{"title": "2. Details", "body": "More"}
			]
		}`, rec.Body.String())
		assert.Empty(t, s.fetcher.refs)
		assert.Equal(t, []string{"given"}, s.notes.transcripts)
		assert.Equal(t, []string{"generatedNotes:dQw4w9WgXcQ"}, s.notes.keys)
	})

	t.Run("fetches the transcript when missing", func(t *testing.T) {
		s := newTestServer(t)
		rec := s.do(t, http.MethodPost, "/api/notes", `{"videoUrl":"https://youtu.be/dQw4w9WgXcQ"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"hello world"}, s.notes.transcripts)
	})

	t.Run("failure notice is flagged", func(t *testing.T) {
		s := newTestServer(t)
		s.notes.text = notes.FailureNotice
		rec := s.do(t, http.MethodPost, "/api/notes", `{"videoUrl":"https://youtu.be/dQw4w9WgXcQ","transcript":"x"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var got notesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.True(t, got.Failed)
		assert.Equal(t, notes.FailureNotice, got.Notes)
		assert.Empty(t, got.Sections)
	})

	t.Run("no captions", func(t *testing.T) {
		s := newTestServer(t)
		s.fetcher.err = caption.ErrNoCaptionsAvailable
		rec := s.do(t, http.MethodPost, "/api/notes", `{"videoUrl":"https://youtu.be/dQw4w9WgXcQ"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, s.notes.keys)
	})
}

func TestHandler_MockTest(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		test         mocktest.MockTest
		err          error
		wantStatus   int
		wantBody     string
		wantRequest  *mocktest.Request
		wantFetchRef bool
	}{
		{
			name: "parsed test with notes",
			body: `{"videoUrl":"https://youtu.be/dQw4w9WgXcQ","notes":"# Title\nBody"}`,
			test: mocktest.MockTest{
				QuestionsBlock: "1. Q1\nA\nB\nC\nD\n2. Q2\nA\nB",
				AnswerKey:      map[string]string{"1": "B", "2": "E"},
			},
			wantStatus: http.StatusOK,
			wantBody: `{
				"videoRef": "dQw4w9WgXcQ",
				"questions": "1. Q1\nA\nB\nC\nD\n2. Q2\nA\nB",
				"answerKey": {"1": "B", "2": "E"},
				"parsedQuestions": [
					{"number": 1, "stem": "Q1", "choices": [
						{"label": "A", "text": "A"},
						{"label": "B", "text": "B"},
						{"label": "C", "text": "C"},
						{"label": "D", "text": "D"}
					]}
				],
				"malformedQuestions": [{"number": 2, "reason": "expected 4 choices, got 2"}],
				"invalidLabels": ["2"]
			}`,
			wantRequest: &mocktest.Request{Notes: "# Title\nBody", CacheKey: "generatedNotes:dQw4w9WgXcQ"},
		},
		{
			name: "markdown decorated questions",
			body: `{"videoUrl":"https://youtu.be/dQw4w9WgXcQ","notes":"n"}`,
			test: mocktest.MockTest{
				QuestionsBlock: "### 1. Q1\nA\nB\nC\nD",
				AnswerKey:      map[string]string{"1": "C", "2": "A"},
			},
			wantStatus: http.StatusOK,
			wantBody: `{
				"videoRef": "dQw4w9WgXcQ",
				"questions": "### 1. Q1\nA\nB\nC\nD",
				"answerKey": {"1": "C", "2": "A"},
				"parsedQuestions": [
					{"number": 1, "stem": "Q1", "choices": [
						{"label": "A", "text": "A"},
						{"label": "B", "text": "B"},
						{"label": "C", "text": "C"},
						{"label": "D", "text": "D"}
					]}
				],
				"malformedQuestions": [{"number": 2, "reason": "answer key entry \"2\" has no matching question"}],
				"invalidLabels": []
			}`,
			wantRequest: &mocktest.Request{Notes: "n", CacheKey: "generatedNotes:dQw4w9WgXcQ"},
		},
		{
			name:       "transcript is fetched when neither notes nor transcript are given",
			body:       `{"videoUrl":"https://youtu.be/dQw4w9WgXcQ"}`,
			test:       mocktest.MockTest{QuestionsBlock: "", AnswerKey: map[string]string{}},
			wantStatus: http.StatusOK,
			wantBody: `{
				"videoRef": "dQw4w9WgXcQ",
				"questions": "",
				"answerKey": {},
				"parsedQuestions": [],
				"malformedQuestions": [],
				"invalidLabels": []
			}`,
			wantRequest:  &mocktest.Request{Transcript: "hello world", CacheKey: "generatedNotes:dQw4w9WgXcQ"},
			wantFetchRef: true,
		},
		{
			name:       "missing answer key",
			body:       `{"videoUrl":"https://youtu.be/dQw4w9WgXcQ","notes":"n"}`,
			err:        mocktest.ErrAnswerKeyMissing,
			wantStatus: http.StatusBadGateway,
			wantBody:   `{"error":"Answer key not found in the response. Please try again."}`,
		},
		{
			name:       "malformed answer key",
			body:       `{"videoUrl":"https://youtu.be/dQw4w9WgXcQ","notes":"n"}`,
			err:        mocktest.ErrAnswerKeyMalformed,
			wantStatus: http.StatusBadGateway,
			wantBody:   `{"error":"Answer key in the response is not valid JSON. Please try again."}`,
		},
		{
			name:       "service error",
			body:       `{"videoUrl":"https://youtu.be/dQw4w9WgXcQ","notes":"n"}`,
			err:        &inference.ServiceError{StatusCode: 500, Message: "boom"},
			wantStatus: http.StatusBadGateway,
			wantBody:   `{"error":"Failed to generate mock test"}`,
		},
		{
			name:       "invalid URL",
			body:       `{"videoUrl":"nope"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Invalid YouTube URL"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.tests.test = tt.test
			s.tests.err = tt.err

			rec := s.do(t, http.MethodPost, "/api/mock-test", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			if tt.wantRequest != nil {
				assert.Equal(t, []mocktest.Request{*tt.wantRequest}, s.tests.requests)
			}
			assert.Equal(t, tt.wantFetchRef, len(s.fetcher.refs) == 1)
		})
	}
}

func TestHandler_Grade(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "grades answered questions",
			body:       `{"answerKey":{"1":"B","2":"D"},"answers":{"2":"d","1":"A"}}`,
			wantStatus: http.StatusOK,
			wantBody: `{
				"answers": [
					{"number": 1, "selected": "A", "correct": "B", "isCorrect": false},
					{"number": 2, "selected": "D", "correct": "D", "isCorrect": true}
				],
				"score": 1,
				"total": 2
			}`,
		},
		{
			name:       "non-numeric question",
			body:       `{"answerKey":{"1":"B"},"answers":{"first":"B"}}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Question numbers must be positive integers"}`,
		},
		{
			name:       "malformed body",
			body:       `[]`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Invalid grading request"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := s.do(t, http.MethodPost, "/api/mock-test/grade", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestHandler_Mentor(t *testing.T) {
	s := newTestServer(t)
	s.client.EXPECT().Complete(gomock.Any(), gomock.Any()).Return("It says hello.", nil)

	rec := s.do(t, http.MethodPost, "/api/mentor/sessions", `{"transcript":"hello world"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var opened openMentorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opened))
	require.NotEmpty(t, opened.SessionID)
	assert.Equal(t, 1, s.mentors.Len())

	rec = s.do(t, http.MethodPost, "/api/mentor/sessions/"+opened.SessionID+"/messages", `{"message":"What is said?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var replied mentorMessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &replied))
	assert.Equal(t, "It says hello.", replied.Reply.Text)
	assert.False(t, replied.Reply.IsUser)
	require.Len(t, replied.History, 2)
	assert.True(t, replied.History[0].IsUser)

	rec = s.do(t, http.MethodPost, "/api/mentor/sessions/"+opened.SessionID+"/messages", `{"message":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/mentor/sessions/"+opened.SessionID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history mentorHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Len(t, history.History, 2)

	rec = s.do(t, http.MethodDelete, "/api/mentor/sessions/"+opened.SessionID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, s.mentors.Len())

	rec = s.do(t, http.MethodPost, "/api/mentor/sessions/"+opened.SessionID+"/messages", `{"message":"again"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Mentor session not found"}`, rec.Body.String())

	rec = s.do(t, http.MethodDelete, "/api/mentor/sessions/"+opened.SessionID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Mentor_NoContext(t *testing.T) {
	s := newTestServer(t)
	s.client.EXPECT().Complete(gomock.Any(), gomock.Any()).Times(0)

	rec := s.do(t, http.MethodPost, "/api/mentor/sessions", `{}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var opened openMentorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opened))

	rec = s.do(t, http.MethodPost, "/api/mentor/sessions/"+opened.SessionID+"/messages", `{"message":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var replied mentorMessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &replied))
	assert.True(t, replied.Reply.IsError)
	require.Len(t, replied.History, 1)
	assert.False(t, replied.History[0].IsUser)
}
