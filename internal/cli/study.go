package cli

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/at-ishikawa/tubenotes/internal/caption"
	"github.com/at-ishikawa/tubenotes/internal/export"
	"github.com/at-ishikawa/tubenotes/internal/mentor"
	"github.com/at-ishikawa/tubenotes/internal/mocktest"
	"github.com/at-ishikawa/tubenotes/internal/notes"
	"github.com/at-ishikawa/tubenotes/internal/pipeline"
	"github.com/at-ishikawa/tubenotes/internal/videoref"
)

const studyHelp = `Commands:
  load <url>      fetch the transcript of a video
  transcript      print the loaded transcript
  notes           generate study notes
  test            take a mock test
  mentor          chat with the mentor about the video (/quit to leave)
  ask <question>  ask the mentor a single question
  export          write notes, the last mock test and the mentor chat to the outputs directory
  state           print the session state
  help            print this help
  quit            leave
`

// StudyCLI is a command loop over a study session: load a video, then read notes,
// take mock tests or talk to the mentor about it.
type StudyCLI struct {
	*InteractiveCLI
	study      *pipeline.Session
	mentor     *mentor.Session
	outputsDir string
	now        func() time.Time

	lastTest   *mocktest.MockTest
	lastResult *mocktest.Result
}

func NewStudyCLI(stdin io.Reader, stdout io.Writer, study *pipeline.Session, mentorSession *mentor.Session, outputsDir string) *StudyCLI {
	return &StudyCLI{
		InteractiveCLI: NewInteractiveCLI(stdin, stdout),
		study:          study,
		mentor:         mentorSession,
		outputsDir:     outputsDir,
		now:            time.Now,
	}
}

func (c *StudyCLI) Session(ctx context.Context) error {
	_, _ = c.bold.Fprint(c.stdoutWriter, "tubenotes> ")
	input, err := c.readLine()
	if err != nil {
		return err
	}
	command, argument, _ := strings.Cut(strings.TrimSpace(input), " ")
	argument = strings.TrimSpace(argument)

	switch command {
	case "":
		return nil
	case "quit", "exit":
		return errEnd
	case "help":
		c.printf("%s", studyHelp)
	case "state":
		c.println(c.study.State())
	case "load":
		c.load(ctx, argument)
	case "transcript":
		c.printTranscript()
	case "notes":
		c.generateNotes(ctx)
	case "test":
		return c.takeMockTest(ctx)
	case "mentor":
		return c.chat(ctx)
	case "ask":
		return c.ask(ctx, argument)
	case "export":
		c.export()
	default:
		_, _ = c.red.Fprintf(c.stdoutWriter, "Unknown command %q. Type help for the list of commands.\n", command)
	}
	return nil
}

func (c *StudyCLI) load(ctx context.Context, url string) {
	ref, err := c.study.Load(ctx, url)
	if err != nil {
		switch {
		case errors.Is(err, videoref.ErrInvalidReference):
			c.printError("Invalid YouTube URL")
		case errors.Is(err, caption.ErrNoCaptionsAvailable):
			c.printError("No captions available for this video")
		default:
			c.printError("Failed to extract captions: %v", err)
		}
		return
	}
	c.mentor.Close()
	c.lastTest = nil
	c.lastResult = nil

	transcript, _ := c.study.Material()
	_, _ = c.green.Fprintf(c.stdoutWriter, "Loaded %s (%d words)\n", ref, len(strings.Fields(transcript)))
}

func (c *StudyCLI) printTranscript() {
	transcript, _ := c.study.Material()
	if transcript == "" {
		c.printError("Load a video first")
		return
	}
	c.println(transcript)
}

func (c *StudyCLI) generateNotes(ctx context.Context) {
	c.println("Generating notes...")
	document, err := c.study.GenerateNotes(ctx)
	if err != nil {
		c.printStageError(err)
		return
	}
	if document == notes.FailureNotice {
		c.printError("%s", document)
		return
	}
	for _, section := range notes.Sections(document) {
		c.println()
		_, _ = c.bold.Fprintln(c.stdoutWriter, section.Title)
		c.println(section.Body)
	}
}

func (c *StudyCLI) takeMockTest(ctx context.Context) error {
	c.println("Generating a mock test...")
	test, err := c.study.GenerateMockTest(ctx)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoTranscript) || errors.Is(err, pipeline.ErrSuperseded) {
			c.printStageError(err)
			return nil
		}
		c.printError("%s", mocktest.ErrorMessage(err))
		return nil
	}

	quiz := NewMockTestCLI(c.InteractiveCLI, test)
	if err := runUntilEnd(ctx, quiz); err != nil {
		return err
	}
	c.lastTest = &test
	c.lastResult = quiz.Result()
	return nil
}

func (c *StudyCLI) openMentor() {
	transcript, notesDocument := c.study.Material()
	material := mentor.Material{Transcript: transcript, Notes: notesDocument}
	if c.mentor.IsOpen() {
		_ = c.mentor.SetMaterial(material)
		return
	}
	c.mentor.Open(material)
}

func (c *StudyCLI) chat(ctx context.Context) error {
	c.openMentor()
	c.println("Ask the mentor anything about the video. Type /quit to go back.")
	return runUntilEnd(ctx, NewMentorCLI(c.InteractiveCLI, c.mentor))
}

func (c *StudyCLI) ask(ctx context.Context, question string) error {
	if question == "" {
		c.printError("Usage: ask <question>")
		return nil
	}
	c.openMentor()
	return NewMentorCLI(c.InteractiveCLI, c.mentor).send(ctx, question)
}

func (c *StudyCLI) export() {
	snapshot := c.study.Snapshot()
	if snapshot.Ref == "" {
		c.printError("Load a video first")
		return
	}
	exported := false

	if _, notesDocument := c.study.Material(); notesDocument != "" {
		path, err := export.NotesToPDF(notesDocument, export.NotesPath(c.outputsDir, snapshot.Ref))
		if err != nil {
			c.printError("Failed to export notes: %v", err)
		} else {
			c.printf("Notes: %s\n", path)
			exported = true
		}
	}

	if c.lastTest != nil {
		path := export.MockTestPath(c.outputsDir, snapshot.Ref)
		record := export.NewMockTestRecord(snapshot.Ref, *c.lastTest, c.lastResult, c.now())
		if err := export.WriteMockTest(path, record); err != nil {
			c.printError("Failed to export the mock test: %v", err)
		} else {
			c.printf("Mock test: %s\n", path)
			exported = true
		}
	}

	if history := c.mentor.History(); len(history) > 0 {
		path := export.MentorPath(c.outputsDir, snapshot.Ref)
		if err := export.WriteMentorHistory(path, export.MentorRecord{VideoRef: snapshot.Ref.String(), History: history}); err != nil {
			c.printError("Failed to export the mentor chat: %v", err)
		} else {
			c.printf("Mentor chat: %s\n", path)
			exported = true
		}
	}

	if !exported {
		c.printError("Nothing to export yet")
	}
}

func (c *StudyCLI) printStageError(err error) {
	switch {
	case errors.Is(err, pipeline.ErrNoTranscript):
		c.printError("Load a video first")
	case errors.Is(err, pipeline.ErrSuperseded):
		c.printError("The request was replaced by a newer one")
	default:
		c.printError("%v", err)
	}
}

func (c *StudyCLI) printError(format string, args ...any) {
	_, _ = c.red.Fprintf(c.stdoutWriter, format+"\n", args...)
}
