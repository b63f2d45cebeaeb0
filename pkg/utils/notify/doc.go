// Package notify provides utilities for sending formatted notifications to CLI users.
//
// This package includes:
//   - [WriteMessage] for displaying formatted messages with type-specific symbols and colors
//   - [StageSeparatingWriter] for automatic blank line insertion between CLI stages
//   - [NewLogger] for a logrus logger whose entries render with the same symbols
//   - [Documentf] for echoing JSON documents such as persisted config layers
//
// Message types include success (✔), error (✗), warning (⚠), info (ℹ), activity (►),
// and title messages with customizable emojis.
package notify
