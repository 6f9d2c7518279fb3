// Package mocktest generates multiple-choice self-tests from study notes and parses
// the generation service's loosely structured reply into questions and an answer key.
package mocktest

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrAnswerKeyMissing   = errors.New("answer key not found in the response")
	ErrAnswerKeyMalformed = errors.New("answer key is not valid JSON")
	ErrMalformedQuestion  = errors.New("malformed question")
	ErrNotesUnavailable   = errors.New("notes are not available for this video")
)

// ChoiceLabels are assigned to a question's choice lines by position.
var ChoiceLabels = []string{"A", "B", "C", "D"}

var answerKeyPattern = regexp.MustCompile(`(?i)Answer Key:\s*(\{[\s\S]*\})`)

type MockTest struct {
	QuestionsBlock string            `json:"questions" yaml:"questions"`
	AnswerKey      map[string]string `json:"answerKey" yaml:"answer_key"`
	// Notes is the notes document the test was generated from. Parse leaves it empty.
	Notes string `json:"-" yaml:"-"`
}

// Parse splits a raw reply into the questions block and the answer key.
// It fails as a whole: no MockTest is returned when either part is unusable.
func Parse(raw string) (MockTest, error) {
	match := answerKeyPattern.FindStringSubmatchIndex(raw)
	if match == nil {
		return MockTest{}, ErrAnswerKeyMissing
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw[match[2]:match[3]]), &decoded); err != nil {
		return MockTest{}, fmt.Errorf("%w: %w", ErrAnswerKeyMalformed, err)
	}

	answerKey := make(map[string]string, len(decoded))
	for number, label := range decoded {
		answerKey[number] = stringify(label)
	}
	return MockTest{
		QuestionsBlock: strings.TrimSpace(raw[:match[0]]),
		AnswerKey:      answerKey,
	}, nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	}
}

// InvalidLabels returns the question numbers whose answer is not one of A to D, in key order.
// Labels are compared case-insensitively, as in Grade.
func (test MockTest) InvalidLabels() []string {
	var invalid []string
	for number, label := range test.AnswerKey {
		if !isChoiceLabel(label) {
			invalid = append(invalid, number)
		}
	}
	sortQuestionNumbers(invalid)
	return invalid
}

// QuestionNumbers returns the answer key's question numbers in numeric order.
func (test MockTest) QuestionNumbers() []string {
	numbers := make([]string, 0, len(test.AnswerKey))
	for number := range test.AnswerKey {
		numbers = append(numbers, number)
	}
	sortQuestionNumbers(numbers)
	return numbers
}

func isChoiceLabel(label string) bool {
	label = normalizeLabel(label)
	for _, choice := range ChoiceLabels {
		if label == choice {
			return true
		}
	}
	return false
}

// sortQuestionNumbers orders numeric keys numerically and anything else after them.
func sortQuestionNumbers(numbers []string) {
	sort.SliceStable(numbers, func(i, j int) bool {
		a, errA := strconv.Atoi(numbers[i])
		b, errB := strconv.Atoi(numbers[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return numbers[i] < numbers[j]
		}
	})
}
