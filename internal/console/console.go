// Package console is the operator-facing side of the patcher: status lines,
// prompts, acknowledgement pauses and the per-stage failure blocks.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/temirov/patcher/internal/pipeline"
)

const (
	causesHeading       = "Here are some potential causes:"
	pausePrompt         = "Press enter to exit..."
	titleEscapeFormat   = "\033]0;%s\007"
	numberedCauseFormat = "%d. %s\n"
)

// ErrNoInput is returned by Prompt when the input stream is exhausted.
var ErrNoInput = errors.New("no more input")

// Console writes to out and reads answers from in.
type Console struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
	problem     *color.Color
}

// New builds a console. interactive controls whether Pause waits for input.
func New(in io.Reader, out io.Writer, interactive bool) *Console {
	return &Console{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: interactive,
		problem:     color.New(color.FgRed, color.Bold),
	}
}

// NewStandard wires the console to the process streams; pausing is enabled
// only when stdin is a terminal.
func NewStandard() *Console {
	return New(os.Stdin, os.Stdout, IsTerminal(os.Stdin))
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (c *Console) Interactive() bool { return c.interactive }

// SetInteractive overrides the pause behaviour chosen at construction.
func (c *Console) SetInteractive(interactive bool) { c.interactive = interactive }

func (c *Console) Println(lines ...string) {
	for _, line := range lines {
		_, _ = fmt.Fprintln(c.out, line)
	}
}

// SetTitle sets the terminal window title. It is a no-op off a terminal.
func (c *Console) SetTitle(title string) {
	if !c.interactive || title == "" {
		return
	}
	_, _ = fmt.Fprintf(c.out, titleEscapeFormat, title)
}

// Prompt prints each question line and returns the next trimmed input line.
func (c *Console) Prompt(question ...string) (string, error) {
	c.Println(question...)
	line, err := c.in.ReadString('\n')
	trimmed := strings.TrimSpace(line)
	if err != nil {
		if errors.Is(err, io.EOF) && trimmed != "" {
			return trimmed, nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", err
	}
	return trimmed, nil
}

// Pause prints message and waits for the operator to press enter.
func (c *Console) Pause(message string) {
	c.Println(message)
	if !c.interactive {
		return
	}
	_, _ = c.in.ReadString('\n')
}

// Diagnostic writes a failure block: the problem statement, numbered causes
// and an optional footer.
func (c *Console) Diagnostic(problem string, causes []string, footer string) {
	_, _ = c.problem.Fprintln(c.out, problem)
	if len(causes) > 0 {
		_, _ = fmt.Fprintln(c.out, causesHeading)
		for index, cause := range causes {
			_, _ = fmt.Fprintf(c.out, numberedCauseFormat, index+1, cause)
		}
	}
	if footer != "" {
		_, _ = fmt.Fprintln(c.out, footer)
	}
}

// StageStarted implements pipeline.Reporter.
func (c *Console) StageStarted(stage pipeline.Stage) {
	c.Println(stage.StartMessages...)
}

// StageSucceeded implements pipeline.Reporter.
func (c *Console) StageSucceeded(stage pipeline.Stage) {
	c.Println(stage.SuccessMessages...)
}

// StageFailed implements pipeline.Reporter.
func (c *Console) StageFailed(stage pipeline.Stage, err error) {
	problem := stage.Problem
	if problem == "" {
		problem = fmt.Sprintf("%s failed.", stage.Name)
	}
	c.Diagnostic(problem, stage.Causes, stage.Footer)
	if stage.PauseOnFailure {
		c.Pause(pausePrompt)
	}
}

var _ pipeline.Reporter = (*Console)(nil)
