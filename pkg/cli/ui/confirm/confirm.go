// Package confirm provides confirmation prompt utilities for destructive operations.
package confirm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/devantler-tech/ekscli/pkg/utils/notify"
	"golang.org/x/term"
)

// ErrCancelled is returned when the user declines a confirmation prompt.
var ErrCancelled = errors.New("operation cancelled")

// Preview lists what a destructive operation is about to touch.
type Preview struct {
	Action     string
	Cluster    string
	NodeGroups []string
	Stacks     []string
}

// Prompter asks the user to confirm destructive operations.
type Prompter struct {
	in    io.Reader
	out   io.Writer
	isTTY func() bool
}

// NewPrompter creates a Prompter reading answers from in. Prompts are only shown
// when in is a terminal.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:    in,
		out:   out,
		isTTY: func() bool { return IsTerminal(in) },
	}
}

// WithTTYChecker replaces the terminal detection.
func (p *Prompter) WithTTYChecker(isTTY func() bool) *Prompter {
	p.isTTY = isTTY

	return p
}

// IsTerminal reports whether reader is a terminal file.
func IsTerminal(reader io.Reader) bool {
	file, ok := reader.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(file.Fd()))
}

// ShouldSkipPrompt returns true when force is set or the input is not interactive.
func (p *Prompter) ShouldSkipPrompt(force bool) bool {
	return force || !p.isTTY()
}

// Confirm shows preview and waits for the user to type "yes". It returns ErrCancelled
// for any other answer and nil when the prompt is skipped.
func (p *Prompter) Confirm(preview Preview, force bool) error {
	if p.ShouldSkipPrompt(force) {
		return nil
	}

	ShowPreview(p.out, preview)

	if !p.PromptForConfirmation() {
		return ErrCancelled
	}

	return nil
}

// ShowPreview writes the resources an operation is about to touch.
func ShowPreview(writer io.Writer, preview Preview) {
	notify.Warningf(writer, "%s will affect the following resources:", preview.Action)

	var text strings.Builder

	fmt.Fprintf(&text, "  Cluster: %s", preview.Cluster)

	if len(preview.NodeGroups) > 0 {
		text.WriteString("\n  Nodegroups:")

		for _, group := range preview.NodeGroups {
			fmt.Fprintf(&text, "\n    - %s", group)
		}
	}

	if len(preview.Stacks) > 0 {
		text.WriteString("\n  Stacks:")

		for _, name := range preview.Stacks {
			fmt.Fprintf(&text, "\n    - %s", name)
		}
	}

	notify.WriteMessage(notify.Message{
		Type:    notify.InfoType,
		Content: text.String(),
		Writer:  writer,
	})
}

// PromptForConfirmation asks the user to type "yes". Only "yes" in any case confirms.
func (p *Prompter) PromptForConfirmation() bool {
	_, _ = fmt.Fprint(p.out, `Type "yes" to continue: `)

	input, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil {
		return false
	}

	return strings.EqualFold(strings.TrimSpace(input), "yes")
}
