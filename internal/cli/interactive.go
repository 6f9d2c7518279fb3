// Package cli runs the interactive terminal sessions: mock tests, mentor chats and the study REPL.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var errEnd = errors.New("end")

// Session is one round of an interactive loop. Returning errEnd stops the loop without an error.
type Session interface {
	Session(ctx context.Context) error
}

// InteractiveCLI holds the terminal input and output shared by the interactive sessions.
type InteractiveCLI struct {
	stdinReader  *bufio.Reader
	stdoutWriter io.Writer
	bold         *color.Color
	italic       *color.Color
	green        *color.Color
	red          *color.Color
}

func NewInteractiveCLI(stdin io.Reader, stdout io.Writer) *InteractiveCLI {
	return &InteractiveCLI{
		stdinReader:  bufio.NewReader(stdin),
		stdoutWriter: stdout,
		bold:         color.New(color.Bold),
		italic:       color.New(color.Italic),
		green:        color.New(color.FgGreen),
		red:          color.New(color.FgRed),
	}
}

// Run repeats session until it ends, fails or ctx is cancelled.
func (cli *InteractiveCLI) Run(ctx context.Context, session Session) error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := runUntilEnd(ctx, session); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		cli.println("Received interrupt signal, exiting...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error: %w", err)
		}
	}
	return nil
}

// runUntilEnd repeats session in the calling goroutine until it ends or ctx is cancelled.
func runUntilEnd(ctx context.Context, session Session) error {
	for ctx.Err() == nil {
		if err := session.Session(ctx); err != nil {
			if errors.Is(err, errEnd) {
				return nil
			}
			return err
		}
	}
	return nil
}

// readLine returns the next input line without its line break.
// End of input is reported as errEnd.
func (cli *InteractiveCLI) readLine() (string, error) {
	line, err := cli.stdinReader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line == "" {
				return "", errEnd
			}
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", fmt.Errorf("error reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (cli *InteractiveCLI) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(cli.stdoutWriter, format, args...)
}

func (cli *InteractiveCLI) println(args ...any) {
	_, _ = fmt.Fprintln(cli.stdoutWriter, args...)
}
