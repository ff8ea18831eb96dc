package main

import (
	"errors"
	"log"
	"sync/atomic"
	"time"
)

// ErrEventCreation is returned when the event framework refuses to
// construct a keyboard event (resource exhaustion, session teardown).
var ErrEventCreation = errors.New("typing: failed to create keyboard event")

// keyChunkLimit is the most UTF-16 units a single CGEvent unicode payload
// can carry.
const keyChunkLimit = 20

// keystrokePoster abstracts event synthesis so tests can capture what would
// have been typed instead of injecting real input.
type keystrokePoster interface {
	Post(text string, chunkDelay time.Duration) error
}

// TypingService types text into the focused application by synthesizing
// keyboard events. Typing is global and irreversible: events land in the
// shared OS input stream exactly as if a human had typed, and a focus
// change mid-stream delivers the remainder to the newly focused app.
type TypingService struct {
	trust   *TrustService
	backend keystrokePoster

	// chunkDelay is atomic: the settings binding updates it while an armed
	// goroutine may be mid-Type.
	chunkDelay atomic.Int64
}

// NewTypingService returns a TypingService backed by CGEvent synthesis.
func NewTypingService(trust *TrustService) *TypingService {
	return &TypingService{trust: trust, backend: cgEventPoster{}}
}

// newTypingServiceWithBackend wires in a custom backend (tests only).
func newTypingServiceWithBackend(trust *TrustService, b keystrokePoster) *TypingService {
	return &TypingService{trust: trust, backend: b}
}

// SetChunkDelay sets the pause inserted between successive key events.
// Zero means full speed; slow remote desktops want 5–20ms.
func (s *TypingService) SetChunkDelay(d time.Duration) {
	s.chunkDelay.Store(int64(d))
}

// Type synthesizes keystrokes for text. Empty input succeeds with zero
// events posted. Trust is verified first: CGEventPost silently drops events
// from untrusted processes, so checking here is the only place the failure
// is expressible as an error.
func (s *TypingService) Type(text string) error {
	if text == "" {
		return nil
	}
	if s.trust != nil && !s.trust.Check() {
		return ErrNotTrusted
	}
	if err := s.backend.Post(text, time.Duration(s.chunkDelay.Load())); err != nil {
		return err
	}
	log.Printf("typing: posted %d chars as key events", len([]rune(text)))
	return nil
}

// chunkUTF16 splits units into slices of at most size elements, never
// splitting a surrogate pair across two chunks (each chunk becomes its own
// event, and a half pair renders as garbage).
func chunkUTF16(units []uint16, size int) [][]uint16 {
	if len(units) == 0 || size <= 0 {
		return nil
	}
	chunks := make([][]uint16, 0, (len(units)+size-1)/size)
	for start := 0; start < len(units); {
		end := start + size
		if end >= len(units) {
			end = len(units)
		} else if isHighSurrogate(units[end-1]) {
			end--
			if end == start {
				end = start + 2 // size 1: emit the whole pair anyway
			}
		}
		chunks = append(chunks, units[start:end])
		start = end
	}
	return chunks
}

func isHighSurrogate(u uint16) bool {
	return u >= 0xD800 && u <= 0xDBFF
}
