package mocktest

import "errors"

// ErrorMessage is the user-facing text for a failed mock test generation.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrAnswerKeyMissing):
		return "Answer key not found in the response. Please try again."
	case errors.Is(err, ErrAnswerKeyMalformed):
		return "Answer key in the response is not valid JSON. Please try again."
	case errors.Is(err, ErrNotesUnavailable):
		return "Notes could not be generated for this video. Please try again."
	default:
		return "Failed to generate mock test"
	}
}
