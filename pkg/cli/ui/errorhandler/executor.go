package errorhandler

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

// Hint attaches a follow-up suggestion to errors matching Target.
type Hint struct {
	Target  error
	Message string
}

// Executor runs a cobra command tree and turns its failures into CommandErrors.
type Executor struct {
	hints []Hint
}

// NewExecutor constructs an Executor that decorates matching errors with hints.
// The first matching hint wins.
func NewExecutor(hints ...Hint) *Executor {
	return &Executor{hints: hints}
}

// Execute runs cmd under ctx. Cobra's own error printing is silenced so the caller
// owns error output; the command's stderr stays attached for logs.
func (e *Executor) Execute(ctx context.Context, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	cmd.SilenceErrors = true

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	return &CommandError{
		message: Normalize(err.Error()),
		hint:    e.hintFor(err),
		cause:   err,
	}
}

func (e *Executor) hintFor(err error) string {
	for _, hint := range e.hints {
		if hint.Target != nil && errors.Is(err, hint.Target) {
			return hint.Message
		}
	}

	return ""
}

// CommandError is a failed command with a normalized message and an optional hint.
type CommandError struct {
	message string
	hint    string
	cause   error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e == nil {
		return ""
	}

	message := e.message
	if message == "" && e.cause != nil {
		message = e.cause.Error()
	}

	if e.hint == "" {
		return message
	}

	return message + "\nhint: " + e.hint
}

// Hint returns the suggestion attached to the error, if any.
func (e *CommandError) Hint() string {
	if e == nil {
		return ""
	}

	return e.hint
}

// Unwrap exposes the underlying cause for errors.Is/errors.As consumers.
func (e *CommandError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// Normalize trims whitespace and a leading "Error: " prefix while keeping
// multi-line usage hints.
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	lines := strings.Split(trimmed, "\n")
	lines[0] = strings.TrimPrefix(strings.TrimSpace(lines[0]), "Error: ")

	return strings.Join(lines, "\n")
}
