// Package cli provides reusable helpers for command wiring and execution.
//
//   - cli/cmd: the cobra commands of eks
//   - cli/parallel: parallel task execution with controlled concurrency
//   - cli/ui: confirmation prompts and error formatting
package cli
