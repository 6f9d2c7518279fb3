package mocktest

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// A marker may be wrapped in markdown emphasis, a heading or a quote: "**1.**", "### 1.", "> 1.".
var questionMarkerPattern = regexp.MustCompile(`(?m)^[ \t>*#_]*\d+\.`)

const stemDecoration = " \t*_"

type Choice struct {
	Label string `json:"label" yaml:"label"`
	Text  string `json:"text" yaml:"text"`
}

type Question struct {
	Number  int      `json:"number" yaml:"number"`
	Stem    string   `json:"stem" yaml:"stem"`
	Choices []Choice `json:"choices" yaml:"choices"`
}

// MalformedQuestion describes a question block that does not have a stem and exactly four choices.
type MalformedQuestion struct {
	Number int
	Reason string
	Raw    string
}

func (m *MalformedQuestion) Error() string {
	if m.Number == 0 {
		return "questions block: " + m.Reason
	}
	return fmt.Sprintf("question %d: %s", m.Number, m.Reason)
}

func (m *MalformedQuestion) Unwrap() error {
	return ErrMalformedQuestion
}

// SplitQuestions recovers the questions of a questions block. Each question starts at a
// line beginning with "<number>.", optionally decorated with markdown; its stem is the rest
// of that line, or the next non-empty line when nothing follows the marker. The remaining
// non-empty lines are choices labelled A to D by position. Questions are numbered by position from 1.
// A non-empty block without any marker is reported as one MalformedQuestion numbered 0.
func SplitQuestions(block string) ([]Question, []*MalformedQuestion) {
	markers := findQuestionMarkers(block)
	if len(markers) == 0 {
		if raw := strings.TrimSpace(block); raw != "" {
			return nil, []*MalformedQuestion{{Reason: "no numbered questions found", Raw: raw}}
		}
		return nil, nil
	}

	var questions []Question
	var malformed []*MalformedQuestion
	for i, marker := range markers {
		end := len(block)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		segment := block[marker[1]:end]
		raw := strings.TrimSpace(segment)
		number := i + 1

		lines := strings.Split(segment, "\n")
		stem := strings.Trim(lines[0], stemDecoration)
		var choiceLines []string
		for _, line := range lines[1:] {
			line = strings.TrimSpace(line)
			switch {
			case line == "":
			case stem == "" && len(choiceLines) == 0:
				stem = strings.Trim(line, stemDecoration)
			default:
				choiceLines = append(choiceLines, line)
			}
		}

		switch {
		case stem == "":
			malformed = append(malformed, &MalformedQuestion{Number: number, Reason: "empty question stem", Raw: raw})
			continue
		case len(choiceLines) != len(ChoiceLabels):
			malformed = append(malformed, &MalformedQuestion{
				Number: number,
				Reason: fmt.Sprintf("expected %d choices, got %d", len(ChoiceLabels), len(choiceLines)),
				Raw:    raw,
			})
			continue
		}

		choices := make([]Choice, 0, len(choiceLines))
		for j, text := range choiceLines {
			choices = append(choices, Choice{Label: ChoiceLabels[j], Text: text})
		}
		questions = append(questions, Question{
			Number:  number,
			Stem:    stem,
			Choices: choices,
		})
	}
	return questions, malformed
}

// findQuestionMarkers skips decimals such as "1.18" at the start of a choice line.
func findQuestionMarkers(block string) [][]int {
	var markers [][]int
	for _, marker := range questionMarkerPattern.FindAllStringIndex(block, -1) {
		if end := marker[1]; end < len(block) && block[end] >= '0' && block[end] <= '9' {
			continue
		}
		markers = append(markers, marker)
	}
	return markers
}

// Questions splits the questions block and checks it against the answer key.
// A question without an answer key entry cannot be graded and is reported as malformed,
// as is an answer key entry without a matching question.
func (test MockTest) Questions() ([]Question, []*MalformedQuestion) {
	questions, malformed := SplitQuestions(test.QuestionsBlock)

	found := make(map[int]bool, len(questions)+len(malformed))
	for _, m := range malformed {
		found[m.Number] = true
	}
	gradable := make([]Question, 0, len(questions))
	for _, question := range questions {
		found[question.Number] = true
		if _, ok := test.AnswerKey[strconv.Itoa(question.Number)]; !ok {
			malformed = append(malformed, &MalformedQuestion{
				Number: question.Number,
				Reason: "no answer in the answer key",
				Raw:    question.Stem,
			})
			continue
		}
		gradable = append(gradable, question)
	}

	for _, key := range test.QuestionNumbers() {
		number, err := strconv.Atoi(key)
		if err == nil && found[number] {
			continue
		}
		malformed = append(malformed, &MalformedQuestion{
			Number: number,
			Reason: fmt.Sprintf("answer key entry %q has no matching question", key),
		})
	}

	sort.SliceStable(malformed, func(i, j int) bool { return malformed[i].Number < malformed[j].Number })
	if len(gradable) == 0 {
		gradable = nil
	}
	return gradable, malformed
}
