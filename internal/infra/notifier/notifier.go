// Package notifier formats and delivers reading-list notifications to a
// Slack-compatible incoming webhook. The webhook implementation applies
// rate limiting but performs no retries: a posting failure is surfaced to
// the caller, which decides whether the entry's processing continues.
package notifier

import "context"

// Notifier delivers the outcome of processing one reading-list entry.
type Notifier interface {
	// NotifySuccess posts a success message containing the first three
	// summary sections for the entry.
	NotifySuccess(ctx context.Context, title, url, model, summary string) error

	// NotifyFailure posts a failure message embedding the error from the
	// extraction or summarization stage.
	NotifyFailure(ctx context.Context, title, url, model, errMsg string) error
}
