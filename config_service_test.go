package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigServiceDefaults(t *testing.T) {
	dir := t.TempDir()
	svc := newConfigServiceAt(filepath.Join(dir, "config.json"))

	cfg := svc.Load()
	if cfg.Hotkey != "ctrl+shift+v" {
		t.Errorf("default hotkey = %q; want %q", cfg.Hotkey, "ctrl+shift+v")
	}
	if cfg.ArmDelaySeconds != 2 {
		t.Errorf("default arm delay = %d; want 2", cfg.ArmDelaySeconds)
	}
	if cfg.MaxContextChars != 200 {
		t.Errorf("default max context chars = %d; want 200", cfg.MaxContextChars)
	}
}

func TestConfigServiceSaveLoad(t *testing.T) {
	dir := t.TempDir()
	svc := newConfigServiceAt(filepath.Join(dir, "config.json"))

	want := Config{Hotkey: "option+v", ArmDelaySeconds: 5, MaxContextChars: 80, KeyDelayMS: 10}
	if err := svc.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got := svc.Load()
	if got != want {
		t.Errorf("Load() = %+v; want %+v", got, want)
	}
}

func TestConfigServiceCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	// Write corrupt JSON
	if err := os.WriteFile(path, []byte("{bad json"), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := newConfigServiceAt(path)
	cfg := svc.Load()

	// Should get defaults without panicking
	if cfg.Hotkey != "ctrl+shift+v" {
		t.Errorf("corrupt fallback hotkey = %q; want default", cfg.Hotkey)
	}

	// And the corrupt file should have been overwritten with valid JSON
	if got := svc.Load(); got != defaultConfig() {
		t.Errorf("re-Load() after reset = %+v; want defaults", got)
	}
}

func TestConfigServicePartialFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	// Config missing everything but the hotkey
	if err := os.WriteFile(path, []byte(`{"hotkey":"cmd+g"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := newConfigServiceAt(path)
	cfg := svc.Load()
	if cfg.Hotkey != "cmd+g" {
		t.Errorf("hotkey = %q; want %q", cfg.Hotkey, "cmd+g")
	}
	if cfg.ArmDelaySeconds != 2 {
		t.Errorf("arm delay should default to 2, got %d", cfg.ArmDelaySeconds)
	}
	if cfg.MaxContextChars != 200 {
		t.Errorf("max context chars should default to 200, got %d", cfg.MaxContextChars)
	}
}

func TestConfigServiceZeroKeyDelayIsKept(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	// Explicit zero key delay means "full speed" and must survive Load.
	if err := os.WriteFile(path, []byte(`{"hotkey":"cmd+g","key_delay_ms":0,"arm_delay_seconds":1,"max_context_chars":50}`), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := newConfigServiceAt(path)
	if cfg := svc.Load(); cfg.KeyDelayMS != 0 {
		t.Errorf("KeyDelayMS = %d; want 0 preserved", cfg.KeyDelayMS)
	}
}
