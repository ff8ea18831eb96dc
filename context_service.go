package main

import "errors"

// Errors surfaced by context capture. The cgo layer collapses everything
// into a status code; these give callers something they can branch on
// instead of a bare "no text".
var (
	// ErrNoFocusedElement means no UI element currently has keyboard focus.
	ErrNoFocusedElement = errors.New("context: no focused UI element")
	// ErrNoTextValue means the focused element exposes no readable text.
	ErrNoTextValue = errors.New("context: focused element has no text value")
	// ErrContextUnavailable covers any other accessibility framework failure.
	ErrContextUnavailable = errors.New("context: text unavailable")
	// ErrInvalidLimit is returned for a negative character limit.
	ErrInvalidLimit = errors.New("context: character limit must be >= 0")
)

// contextSource abstracts the accessibility read so tests don't need a
// focused text field on a live desktop.
type contextSource interface {
	ReadBeforeCursor(maxChars int) (string, error)
}

// ContextService captures the text immediately preceding the insertion
// cursor in whatever field currently holds keyboard focus. Each capture is
// a fresh read of live UI state — two calls may disagree arbitrarily as the
// user types or refocuses, and no result is ever cached.
type ContextService struct {
	backend contextSource
}

// NewContextService returns a ContextService backed by the real
// Accessibility API.
func NewContextService() *ContextService {
	return &ContextService{backend: axContextSource{}}
}

// newContextServiceWithBackend wires in a custom backend (tests only).
func newContextServiceWithBackend(b contextSource) *ContextService {
	return &ContextService{backend: b}
}

// CaptureBefore returns at most maxChars characters of text preceding the
// cursor in the focused field. maxChars of 0 is a no-op returning "";
// negative values are rejected with ErrInvalidLimit before any
// accessibility query happens.
func (s *ContextService) CaptureBefore(maxChars int) (string, error) {
	if maxChars < 0 {
		return "", ErrInvalidLimit
	}
	if maxChars == 0 {
		return "", nil
	}
	return s.backend.ReadBeforeCursor(maxChars)
}
