package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/at-ishikawa/tubenotes/internal/mentor"
)

var quitCommands = []string{"/quit", "/exit"}

// MentorCLI relays each input line to a mentor session and prints the reply.
type MentorCLI struct {
	*InteractiveCLI
	session *mentor.Session
}

func NewMentorCLI(cli *InteractiveCLI, session *mentor.Session) *MentorCLI {
	return &MentorCLI{InteractiveCLI: cli, session: session}
}

func (c *MentorCLI) Session(ctx context.Context) error {
	_, _ = c.bold.Fprint(c.stdoutWriter, "You: ")
	input, err := c.readLine()
	if err != nil {
		return err
	}
	message := strings.TrimSpace(input)
	if message == "" {
		return nil
	}
	for _, quit := range quitCommands {
		if message == quit {
			return errEnd
		}
	}
	return c.send(ctx, message)
}

func (c *MentorCLI) send(ctx context.Context, message string) error {
	reply, err := c.session.Send(ctx, message)
	if err != nil && !errors.Is(err, mentor.ErrNoContextAvailable) {
		return fmt.Errorf("session.Send > %w", err)
	}
	c.printExchange(reply)
	return nil
}

func (c *MentorCLI) printExchange(exchange mentor.Exchange) {
	_, _ = c.bold.Fprint(c.stdoutWriter, "Mentor: ")
	if exchange.IsError {
		_, _ = c.red.Fprintln(c.stdoutWriter, exchange.Text)
		return
	}
	c.println(exchange.Text)
}
