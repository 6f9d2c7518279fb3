package cli

import (
	"context"
	"slices"
	"strings"

	"github.com/at-ishikawa/tubenotes/internal/mocktest"
)

// MockTestCLI asks the questions of a mock test one by one and grades the answers at the end.
type MockTestCLI struct {
	*InteractiveCLI
	test      mocktest.MockTest
	questions []mocktest.Question
	malformed []*mocktest.MalformedQuestion
	answers   map[int]string
	index     int
	started   bool
	result    *mocktest.Result
}

func NewMockTestCLI(cli *InteractiveCLI, test mocktest.MockTest) *MockTestCLI {
	questions, malformed := test.Questions()
	return &MockTestCLI{
		InteractiveCLI: cli,
		test:           test,
		questions:      questions,
		malformed:      malformed,
		answers:        make(map[int]string),
	}
}

// Result is the graded result once every question was asked, nil before.
func (c *MockTestCLI) Result() *mocktest.Result {
	return c.result
}

func (c *MockTestCLI) Session(_ context.Context) error {
	if !c.started {
		c.started = true
		c.printIntro()
	}

	if c.index >= len(c.questions) {
		result := mocktest.Grade(c.test, c.answers)
		c.result = &result
		c.printResult(result)
		return errEnd
	}

	question := c.questions[c.index]
	c.println()
	_, _ = c.bold.Fprintf(c.stdoutWriter, "%d. %s\n", question.Number, question.Stem)
	for _, choice := range question.Choices {
		c.printf("   %s) %s\n", choice.Label, choice.Text)
	}
	c.printf("Your answer (%s, empty to skip): ", strings.Join(mocktest.ChoiceLabels, "/"))

	input, err := c.readLine()
	if err != nil {
		return err
	}
	label := strings.ToUpper(strings.TrimSpace(input))
	switch {
	case label == "":
	case slices.Contains(mocktest.ChoiceLabels, label):
		c.answers[question.Number] = label
	default:
		_, _ = c.red.Fprintf(c.stdoutWriter, "Please answer with one of %s.\n", strings.Join(mocktest.ChoiceLabels, ", "))
		return nil
	}
	c.index++
	return nil
}

func (c *MockTestCLI) printIntro() {
	_, _ = c.bold.Fprintf(c.stdoutWriter, "Mock test: %d questions\n", len(c.questions))
	for _, m := range c.malformed {
		if m.Number == 0 {
			_, _ = c.red.Fprintf(c.stdoutWriter, "Could not read the questions: %s\n", m.Reason)
			continue
		}
		_, _ = c.red.Fprintf(c.stdoutWriter, "Skipping question %d: %s\n", m.Number, m.Reason)
	}
	if invalid := c.test.InvalidLabels(); len(invalid) > 0 {
		_, _ = c.red.Fprintf(c.stdoutWriter, "The answer key has no valid choice for questions %s\n", strings.Join(invalid, ", "))
	}
}

func (c *MockTestCLI) printResult(result mocktest.Result) {
	c.println()
	_, _ = c.bold.Fprintln(c.stdoutWriter, "Results")
	for _, answer := range result.Answers {
		if answer.IsCorrect {
			c.printf("✅ ")
			_, _ = c.green.Fprintf(c.stdoutWriter, "Question %d: %s is correct\n", answer.Number, answer.Selected)
			continue
		}
		c.printf("❌ ")
		_, _ = c.red.Fprintf(c.stdoutWriter, "Question %d: you chose %s, the answer is %s\n", answer.Number, answer.Selected, answer.Correct)
	}
	_, _ = c.bold.Fprintf(c.stdoutWriter, "Score: %d/%d\n", result.Score, result.Total)
}
