// Package entity defines the core domain entities and validation logic for the
// application. It contains the reading-list entry business object along with its
// validation rules and domain-specific errors.
package entity

import (
	"fmt"
	"net/url"
	"time"
)

// maxURLLength defines the maximum allowed length for URLs to prevent abuse.
const maxURLLength = 2048

// ReadingListEntry represents one page saved to the reading list.
// URL is the unique identifier within the list. LastUpdateTime is refreshed
// whenever the read state changes and therefore never precedes CreationTime.
//
// The reading-list store owns the authoritative copy; the reconciler only
// holds transient in-memory snapshots taken at the start of a pass.
type ReadingListEntry struct {
	URL            string
	Title          string
	HasBeenRead    bool
	CreationTime   time.Time
	LastUpdateTime time.Time
}

// Validate checks the entry's invariants.
// Returns a ValidationError describing the first violated rule.
func (e *ReadingListEntry) Validate() error {
	if err := ValidateEntryURL(e.URL); err != nil {
		return err
	}

	if e.CreationTime.IsZero() {
		return &ValidationError{Field: "creation_time", Message: "creation time is required"}
	}

	if e.LastUpdateTime.Before(e.CreationTime) {
		return &ValidationError{
			Field:   "last_update_time",
			Message: "last update time must not precede creation time",
		}
	}

	return nil
}

// ValidateEntryURL validates the format of a reading-list entry URL.
// It checks that the URL is well-formed, uses HTTP/HTTPS scheme, and has a host.
func ValidateEntryURL(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}

	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}

	if parsedURL.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}

	return nil
}

// DisplayTitle returns the entry title, falling back to the URL hostname when
// the title is empty. Used for notification headers.
func (e *ReadingListEntry) DisplayTitle() string {
	if e.Title != "" {
		return e.Title
	}
	if u, err := url.Parse(e.URL); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	return e.URL
}
