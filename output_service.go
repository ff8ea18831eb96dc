package main

import (
	"fmt"
	"log"
	"os/exec"
	"strings"
)

// typist is the slice of TypingService the output layer needs.
type typist interface {
	Type(text string) error
}

// clipboard abstracts the system pasteboard so tests can swap it out.
type clipboard interface {
	Copy(text string) error
	Read() (string, error)
}

// OutputService delivers text into the frontmost app: synthesized
// keystrokes first, clipboard copy as the fallback.
type OutputService struct {
	typist typist
	clip   clipboard
}

// NewOutputService returns a production-ready OutputService.
func NewOutputService(t *TypingService) *OutputService {
	return &OutputService{typist: t, clip: pbClipboard{}}
}

// newOutputServiceWithBackends wires in custom backends (tests only).
func newOutputServiceWithBackends(t typist, c clipboard) *OutputService {
	return &OutputService{typist: t, clip: c}
}

// Send types text into the focused field. If synthesis fails (usually
// missing accessibility trust) the text is copied to the clipboard instead
// and onFallback fires so the caller can tell the user to paste manually.
func (s *OutputService) Send(text string, onFallback func()) {
	if text == "" {
		return
	}
	if err := s.typist.Type(text); err != nil {
		log.Printf("output: keystroke synthesis failed (%v) — falling back to clipboard", err)
		if cbErr := s.clip.Copy(text); cbErr != nil {
			log.Printf("output: clipboard fallback also failed: %v", cbErr)
			return
		}
		log.Printf("output: copied to clipboard")
		if onFallback != nil {
			onFallback()
		}
		return
	}
	log.Printf("output: typed %d chars", len(text))
}

// SendClipboard types the current clipboard contents into the focused
// field. Returns the number of characters typed.
func (s *OutputService) SendClipboard() (int, error) {
	text, err := s.clip.Read()
	if err != nil {
		return 0, err
	}
	if text == "" {
		return 0, nil
	}
	if err := s.typist.Type(text); err != nil {
		return 0, err
	}
	return len([]rune(text)), nil
}

// ── Real pasteboard ───────────────────────────────────────

// pbClipboard shells out to pbcopy/pbpaste, the same seam a user script
// would use.
type pbClipboard struct{}

func (pbClipboard) Copy(text string) error {
	cmd := exec.Command("pbcopy")
	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("pbcopy: %w — %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (pbClipboard) Read() (string, error) {
	out, err := exec.Command("pbpaste").Output()
	if err != nil {
		return "", fmt.Errorf("pbpaste: %w", err)
	}
	return string(out), nil
}
