// Package ui provides terminal liveness for long-running operations.
//
// The library export can page through hundreds of requests; when stdout is a
// terminal the export command runs a [Spinner], a small bubbletea model that
// animates while the engine streams [tasks.ProgressUpdate] values and shows
// the most recent page count beside the dot. The spinner exits when the
// update channel closes; pressing q or ctrl+c cancels the run context and
// the spinner waits for the engine to wind down before quitting.
//
// When stdout is not a terminal the commands print progress as plain lines
// and this package is not involved.
package ui
