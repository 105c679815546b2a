package notify

import (
	"context"
	"time"
)

// EventType represents the type of propagation event.
type EventType string

// Event type constants.
const (
	EventRunStarted     EventType = "run_started"
	EventRunCompleted   EventType = "run_completed"
	EventRunFailed      EventType = "run_failed"
	EventAppStarted     EventType = "app_started"
	EventAppCompleted   EventType = "app_completed"
	EventPRCreated      EventType = "pr_created"
	EventCommentPosted  EventType = "comment_posted"
	EventCommentSkipped EventType = "comment_skipped"
)

// Severity constants for notifications.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Event describes a propagation event for notification.
type Event struct {
	Type      EventType      `json:"type"`
	RunID     string         `json:"run_id"`
	App       string         `json:"app,omitempty"`
	IssueRef  string         `json:"issue_ref,omitempty"`
	Repo      string         `json:"repo,omitempty"`
	URL       string         `json:"url,omitempty"` // PR reference for EventPRCreated
	Message   string         `json:"message"`
	Severity  string         `json:"severity"` // SeverityInfo, SeverityWarning, SeverityError
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewEvent creates an info-level event stamped with the current time.
func NewEvent(typ EventType, runID, message string) Event {
	return Event{
		Type:      typ,
		RunID:     runID,
		Message:   message,
		Severity:  SeverityInfo,
		Timestamp: time.Now().UTC(),
	}
}

// Notifier sends notifications about propagation events.
type Notifier interface {
	// Notify sends a notification. Callers treat errors as non-fatal.
	Notify(ctx context.Context, event Event) error
}
