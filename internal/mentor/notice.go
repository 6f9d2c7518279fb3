package mentor

import (
	"errors"
	"fmt"

	"github.com/at-ishikawa/tubenotes/internal/inference"
)

const noContextNotice = "⚠️ There is nothing to discuss yet. Load a video transcript or generate notes first."

func errorNotice(err error) string {
	var serviceErr *inference.ServiceError
	switch {
	case errors.As(err, &serviceErr):
		return fmt.Sprintf("⚠️ The mentor service returned an error: %s", serviceErr.Message)
	case errors.Is(err, inference.ErrEmptyResponse):
		return "⚠️ The mentor did not send a reply. Please try again."
	default:
		return fmt.Sprintf("⚠️ Could not reach the mentor: %v", err)
	}
}
