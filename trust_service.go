package main

import (
	"errors"
	"log"
)

// ErrNotTrusted is returned when macOS has not granted this process
// accessibility trust. The user fixes it in System Settings > Privacy &
// Security > Accessibility; we can only trigger the prompt.
var ErrNotTrusted = errors.New("accessibility: process is not a trusted accessibility client")

// trustChecker abstracts the AXIsProcessTrusted query so tests never touch
// live permission state.
type trustChecker interface {
	Trusted(prompt bool) bool
}

// TrustService answers whether the process may read UI content and
// synthesize input, and can ask macOS to show its consent dialog. The OS
// owns the underlying state — it can change between any two calls, so every
// method re-reads it and nothing is cached.
type TrustService struct {
	backend trustChecker
}

// NewTrustService returns a TrustService backed by the real Accessibility API.
func NewTrustService() *TrustService {
	return &TrustService{backend: axTrustChecker{}}
}

// newTrustServiceWithBackend wires in a custom backend (tests only).
func newTrustServiceWithBackend(b trustChecker) *TrustService {
	return &TrustService{backend: b}
}

// Check reports current trust without any UI side effect.
func (s *TrustService) Check() bool {
	return s.backend.Trusted(false)
}

// Request reports current trust and, if absent, asks macOS to surface the
// consent dialog. Already-trusted processes get true back with no UI. The
// dialog is shown asynchronously; a false return here does not mean the
// user declined, only that trust wasn't granted yet at call time.
func (s *TrustService) Request() bool {
	trusted := s.backend.Trusted(true)
	if !trusted {
		log.Printf("trust: accessibility not granted — consent dialog requested")
	}
	return trusted
}
