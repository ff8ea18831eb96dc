package main

import (
	"errors"
	"testing"
)

// ── mock backends ─────────────────────────────────────────

type mockTypist struct {
	called  bool
	typed   string
	typeErr error
}

func (m *mockTypist) Type(text string) error {
	m.called = true
	m.typed = text
	return m.typeErr
}

type mockClipboard struct {
	copied   string
	copyErr  error
	contents string
	readErr  error
	copyDone bool
}

func (m *mockClipboard) Copy(text string) error {
	m.copyDone = true
	m.copied = text
	return m.copyErr
}

func (m *mockClipboard) Read() (string, error) {
	return m.contents, m.readErr
}

// ── tests ─────────────────────────────────────────────────

func TestOutputServiceTypeSuccess(t *testing.T) {
	typ := &mockTypist{}
	clip := &mockClipboard{}
	svc := newOutputServiceWithBackends(typ, clip)

	fallbackCalled := false
	svc.Send("Hello world", func() { fallbackCalled = true })

	if !typ.called {
		t.Error("Type() not called")
	}
	if typ.typed != "Hello world" {
		t.Errorf("typed = %q; want %q", typ.typed, "Hello world")
	}
	if clip.copyDone {
		t.Error("Copy() should not be called when typing succeeds")
	}
	if fallbackCalled {
		t.Error("onFallback should not fire when typing succeeds")
	}
}

func TestOutputServiceClipboardFallback(t *testing.T) {
	typ := &mockTypist{typeErr: ErrNotTrusted}
	clip := &mockClipboard{}
	svc := newOutputServiceWithBackends(typ, clip)

	fallbackCalled := false
	svc.Send("Hello world", func() { fallbackCalled = true })

	if !clip.copyDone {
		t.Error("Copy() should be called when typing fails")
	}
	if clip.copied != "Hello world" {
		t.Errorf("copied = %q; want %q", clip.copied, "Hello world")
	}
	if !fallbackCalled {
		t.Error("onFallback should fire when falling back to clipboard")
	}
}

func TestOutputServiceBothFail(t *testing.T) {
	typ := &mockTypist{typeErr: ErrEventCreation}
	clip := &mockClipboard{copyErr: errors.New("pbcopy unavailable")}
	svc := newOutputServiceWithBackends(typ, clip)

	// Should not panic; onFallback must NOT be called when clipboard also fails.
	fallbackCalled := false
	svc.Send("Hello world", func() { fallbackCalled = true })

	if fallbackCalled {
		t.Error("onFallback should not fire when both typing and clipboard fail")
	}
}

func TestOutputServiceEmptyText(t *testing.T) {
	typ := &mockTypist{}
	clip := &mockClipboard{}
	svc := newOutputServiceWithBackends(typ, clip)

	svc.Send("", nil)

	if typ.called || clip.copyDone {
		t.Error("nothing should be called for empty text")
	}
}

func TestSendClipboard(t *testing.T) {
	typ := &mockTypist{}
	clip := &mockClipboard{contents: "pasted text"}
	svc := newOutputServiceWithBackends(typ, clip)

	n, err := svc.SendClipboard()
	if err != nil {
		t.Fatalf("SendClipboard() error: %v", err)
	}
	if n != len("pasted text") {
		t.Errorf("SendClipboard() = %d chars; want %d", n, len("pasted text"))
	}
	if typ.typed != "pasted text" {
		t.Errorf("typed = %q; want clipboard contents", typ.typed)
	}
}

func TestSendClipboardEmpty(t *testing.T) {
	typ := &mockTypist{}
	clip := &mockClipboard{contents: ""}
	svc := newOutputServiceWithBackends(typ, clip)

	n, err := svc.SendClipboard()
	if err != nil {
		t.Fatalf("SendClipboard() error: %v", err)
	}
	if n != 0 {
		t.Errorf("SendClipboard() = %d; want 0", n)
	}
	if typ.called {
		t.Error("Type() should not be called for an empty clipboard")
	}
}

func TestSendClipboardReadError(t *testing.T) {
	typ := &mockTypist{}
	clip := &mockClipboard{readErr: errors.New("pbpaste failed")}
	svc := newOutputServiceWithBackends(typ, clip)

	if _, err := svc.SendClipboard(); err == nil {
		t.Fatal("SendClipboard() expected error when clipboard read fails")
	}
	if typ.called {
		t.Error("Type() should not be called when clipboard read fails")
	}
}

func TestSendClipboardTypeError(t *testing.T) {
	typ := &mockTypist{typeErr: ErrNotTrusted}
	clip := &mockClipboard{contents: "secret"}
	svc := newOutputServiceWithBackends(typ, clip)

	_, err := svc.SendClipboard()
	if !errors.Is(err, ErrNotTrusted) {
		t.Errorf("SendClipboard() error = %v; want ErrNotTrusted", err)
	}
}
