package mocktest

import (
	"sort"
	"strconv"
	"strings"
)

type GradedAnswer struct {
	Number    int    `json:"number" yaml:"number"`
	Selected  string `json:"selected" yaml:"selected"`
	Correct   string `json:"correct" yaml:"correct"`
	IsCorrect bool   `json:"isCorrect" yaml:"is_correct"`
}

type Result struct {
	Answers []GradedAnswer `json:"answers" yaml:"answers"`
	Score   int            `json:"score" yaml:"score"`
	Total   int            `json:"total" yaml:"total"`
}

// Grade compares each answered question with the answer key.
// Unanswered questions are not listed but still count towards Total.
func Grade(test MockTest, answers map[int]string) Result {
	numbers := make([]int, 0, len(answers))
	for number := range answers {
		numbers = append(numbers, number)
	}
	sort.Ints(numbers)

	result := Result{
		Answers: make([]GradedAnswer, 0, len(numbers)),
		Total:   len(test.AnswerKey),
	}
	for _, number := range numbers {
		selected := normalizeLabel(answers[number])
		correct := normalizeLabel(test.AnswerKey[strconv.Itoa(number)])
		isCorrect := correct != "" && selected == correct
		if isCorrect {
			result.Score++
		}
		result.Answers = append(result.Answers, GradedAnswer{
			Number:    number,
			Selected:  selected,
			Correct:   correct,
			IsCorrect: isCorrect,
		})
	}
	return result
}

// normalizeLabel makes " b" and "B" the same choice, on both the learner's and the key's side.
func normalizeLabel(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}
