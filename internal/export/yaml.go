package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/tubenotes/internal/mentor"
	"github.com/at-ishikawa/tubenotes/internal/mocktest"
	"github.com/at-ishikawa/tubenotes/internal/videoref"
)

// MockTestRecord is a generated mock test with the learner's graded answers, if any.
type MockTestRecord struct {
	VideoRef    string              `yaml:"video_ref"`
	GeneratedAt time.Time           `yaml:"generated_at"`
	Questions   []mocktest.Question `yaml:"questions"`
	AnswerKey   map[string]string   `yaml:"answer_key"`
	Result      *mocktest.Result    `yaml:"result,omitempty"`
	Malformed   []MalformedQuestion `yaml:"malformed_questions,omitempty"`
}

type MalformedQuestion struct {
	Number int    `yaml:"number"`
	Reason string `yaml:"reason"`
	Raw    string `yaml:"raw"`
}

// NewMockTestRecord splits the questions block of test and attaches result when not nil.
func NewMockTestRecord(ref videoref.VideoRef, test mocktest.MockTest, result *mocktest.Result, now time.Time) MockTestRecord {
	questions, malformed := test.Questions()
	record := MockTestRecord{
		VideoRef:    ref.String(),
		GeneratedAt: now.UTC(),
		Questions:   questions,
		AnswerKey:   test.AnswerKey,
		Result:      result,
	}
	for _, m := range malformed {
		record.Malformed = append(record.Malformed, MalformedQuestion{Number: m.Number, Reason: m.Reason, Raw: m.Raw})
	}
	return record
}

// MentorRecord is the conversation of one mentor session.
type MentorRecord struct {
	VideoRef string            `yaml:"video_ref,omitempty"`
	History  []mentor.Exchange `yaml:"history"`
}

func MockTestPath(dir string, ref videoref.VideoRef) string {
	return filepath.Join(dir, ref.String()+"-mock-test.yml")
}

func MentorPath(dir string, ref videoref.VideoRef) string {
	return filepath.Join(dir, ref.String()+"-mentor.yml")
}

func WriteMockTest(path string, record MockTestRecord) error {
	return writeYAML(path, record)
}

func WriteMentorHistory(path string, record MentorRecord) error {
	return writeYAML(path, record)
}

func writeYAML(path string, data any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", filepath.Dir(path), err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("os.Create(%s) > %w", path, err)
	}
	return encodeYAML(f, path, data)
}

// encodeYAML always closes w. The document is only complete when Close succeeds.
func encodeYAML(w io.WriteCloser, path string, data any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("yaml.Encode(%s) > %w", path, err)
	}
	if err := enc.Close(); err != nil {
		_ = w.Close()
		return fmt.Errorf("yaml.Encoder.Close > %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("file.Close(%s) > %w", path, err)
	}
	return nil
}
