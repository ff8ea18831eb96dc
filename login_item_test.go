package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newTestLoginItemService returns a LoginItemService that writes to a temp dir.
func newTestLoginItemService(t *testing.T) *LoginItemService {
	t.Helper()
	return &LoginItemService{plistDir: t.TempDir()}
}

func TestLoginItemEnable(t *testing.T) {
	svc := newTestLoginItemService(t)
	execPath := "/Applications/ghosttype.app/Contents/MacOS/ghosttype"

	if err := svc.Enable(execPath); err != nil {
		t.Fatalf("Enable() unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(svc.plistDir, plistFilename))
	if err != nil {
		t.Fatalf("plist not created: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, plistLabel) {
		t.Errorf("plist missing label %q", plistLabel)
	}
	if !strings.Contains(content, execPath) {
		t.Errorf("plist missing execPath %q", execPath)
	}
}

func TestLoginItemDisable(t *testing.T) {
	svc := newTestLoginItemService(t)

	if err := svc.Enable("/usr/local/bin/ghosttype"); err != nil {
		t.Fatalf("Enable() error: %v", err)
	}
	if err := svc.Disable(); err != nil {
		t.Fatalf("Disable() error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(svc.plistDir, plistFilename)); !os.IsNotExist(err) {
		t.Errorf("plist still exists after Disable(); stat err: %v", err)
	}
}

func TestLoginItemToggleRoundtrip(t *testing.T) {
	svc := newTestLoginItemService(t)
	exec := "/Applications/ghosttype.app/Contents/MacOS/ghosttype"

	if svc.IsEnabled() {
		t.Error("IsEnabled() = true before Enable(); want false")
	}

	// off → on → off → on
	for i, enable := range []bool{true, false, true} {
		var err error
		if enable {
			err = svc.Enable(exec)
		} else {
			err = svc.Disable()
		}
		if err != nil {
			t.Fatalf("step %d: error: %v", i, err)
		}
		if got := svc.IsEnabled(); got != enable {
			t.Errorf("step %d: IsEnabled() = %v, want %v", i, got, enable)
		}
	}
}

func TestLoginItemDisableWhenNotEnabled(t *testing.T) {
	svc := newTestLoginItemService(t)
	// Disable when plist doesn't exist — must not error
	if err := svc.Disable(); err != nil {
		t.Errorf("Disable() on non-existent plist returned error: %v", err)
	}
}
