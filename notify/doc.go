// Package notify reports propagation events to interested parties.
//
// Core types:
//   - Notifier: interface for sending notifications
//   - Event: what happened, to which application and repository
//
// Implementations:
//   - LogNotifier: structured log line per event
//   - JiraNotifier: comments created pull requests onto the application's issue
//   - WebhookNotifier: posts events as JSON to an HTTP endpoint
//   - MultiNotifier: fans out to several notifiers
//   - NopNotifier: discards everything
//
// Notification failures never abort a run; MultiNotifier logs and moves on.
package notify
