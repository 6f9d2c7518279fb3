package mocktest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrade(t *testing.T) {
	test := MockTest{AnswerKey: map[string]string{"1": "B", "2": "D", "3": "A"}}

	tests := []struct {
		name    string
		answers map[int]string
		want    Result
	}{
		{
			name:    "no answers",
			answers: map[int]string{},
			want:    Result{Answers: []GradedAnswer{}, Total: 3},
		},
		{
			name:    "mixed answers in question order",
			answers: map[int]string{3: "c", 1: "B"},
			want: Result{
				Answers: []GradedAnswer{
					{Number: 1, Selected: "B", Correct: "B", IsCorrect: true},
					{Number: 3, Selected: "C", Correct: "A", IsCorrect: false},
				},
				Score: 1,
				Total: 3,
			},
		},
		{
			name:    "question missing from the key is never correct",
			answers: map[int]string{7: "A"},
			want: Result{
				Answers: []GradedAnswer{
					{Number: 7, Selected: "A", Correct: "", IsCorrect: false},
				},
				Total: 3,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Grade(test, tt.answers))
		})
	}
}

func TestGrade_LowercaseAnswerKey(t *testing.T) {
	test := MockTest{AnswerKey: map[string]string{"1": "b", "2": " d "}}

	tests := []struct {
		name    string
		answers map[int]string
		want    Result
	}{
		{
			name:    "matching labels are correct regardless of case",
			answers: map[int]string{1: "B", 2: "d"},
			want: Result{
				Answers: []GradedAnswer{
					{Number: 1, Selected: "B", Correct: "B", IsCorrect: true},
					{Number: 2, Selected: "D", Correct: "D", IsCorrect: true},
				},
				Score: 2,
				Total: 2,
			},
		},
		{
			name:    "wrong answer reports the normalized key",
			answers: map[int]string{1: "A"},
			want: Result{
				Answers: []GradedAnswer{
					{Number: 1, Selected: "A", Correct: "B", IsCorrect: false},
				},
				Total: 2,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Grade(test, tt.answers))
		})
	}
}
