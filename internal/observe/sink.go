// Package observe reports auth events to the observability backends.
package observe

import "github.com/gapify/workflow-builder/internal/logger"

// Sink receives the identity behind each successful resolution, the way
// an error-reporting SDK tags the current user. Implementations must be
// safe for concurrent use; callers never wait on them.
type Sink interface {
	Identify(userID string)
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Identify(string) {}

// LogSink writes identities to the structured log.
type LogSink struct{}

func (LogSink) Identify(userID string) {
	logger.Info("resolved user", map[string]any{"user_id": userID})
}
