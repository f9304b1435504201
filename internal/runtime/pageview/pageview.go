// Package pageview holds the PageView event, the random factory that
// produces it, and its JSON wire form.
package pageview

import (
	"errors"
	"fmt"
	"slices"

	jsoncodec "github.com/drblury/pageflow/internal/runtime/jsoncodec"
)

// Allowed view durations in milliseconds.
const (
	ShortDuration int64 = 100
	LongDuration  int64 = 1000
)

// SchemaName is written to the event_message_schema header of every envelope.
const SchemaName = "pageview.PageView"

var (
	pages = []string{"blog.html", "about.html", "contact.html", "news.html", "index.html"}
	users = []string{"shamoiev", "ponomar", "wopopalo", "mama", "baba"}
)

// Pages returns the page vocabulary.
func Pages() []string { return slices.Clone(pages) }

// Users returns the user id vocabulary.
func Users() []string { return slices.Clone(users) }

// PageView is a single synthetic page visit.
type PageView struct {
	Page     string `json:"page"`
	Duration int64  `json:"duration"`
	UserID   string `json:"userId"`
	Source   string `json:"source"`
}

// Validate checks that every field is populated and the duration is one of
// ShortDuration or LongDuration.
func (p PageView) Validate() error {
	var errs []error
	if p.Page == "" {
		errs = append(errs, errors.New("page is required"))
	}
	if p.UserID == "" {
		errs = append(errs, errors.New("userId is required"))
	}
	if p.Source == "" {
		errs = append(errs, errors.New("source is required"))
	}
	if p.Duration != ShortDuration && p.Duration != LongDuration {
		errs = append(errs, fmt.Errorf("duration must be %d or %d, got %d", ShortDuration, LongDuration, p.Duration))
	}
	return errors.Join(errs...)
}

func (p PageView) String() string {
	return fmt.Sprintf("PageView[page=%s, duration=%d, userId=%s, source=%s]", p.Page, p.Duration, p.UserID, p.Source)
}

// ErrMalformedPayload is returned by Decode when the payload is not JSON.
var ErrMalformedPayload = errors.New("page view payload is not valid JSON")

// Encode renders the wire payload. Values that break the PageView invariants
// are rejected and never reach the wire.
func Encode(p PageView) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid page view: %w", err)
	}
	payload, err := jsoncodec.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal page view: %w", err)
	}
	return payload, nil
}

// Decode parses a wire payload and rejects values that break the PageView
// invariants.
func Decode(payload []byte) (PageView, error) {
	if !jsoncodec.Valid(payload) {
		return PageView{}, ErrMalformedPayload
	}
	var p PageView
	if err := jsoncodec.Unmarshal(payload, &p); err != nil {
		return PageView{}, fmt.Errorf("failed to unmarshal page view: %w", err)
	}
	if err := p.Validate(); err != nil {
		return PageView{}, fmt.Errorf("invalid page view: %w", err)
	}
	return p, nil
}
