package main

import (
	"context"
	"errors"
	"log"
	"os"
	"sync"
	"time"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// hotkeyStarter is the minimal interface the App needs from HotkeyService.
// Using an interface keeps real CGo goroutines out of unit tests.
type hotkeyStarter interface {
	Start(ctx context.Context, combo string, onTrigger func()) error
	Rebind(newCombo string) error
	IsRegistered() bool
	Stop()
}

// App is the main application struct, bound to the settings window.
// ctx and cfg are guarded by mu: bindings run on wails goroutines while the
// hotkey listener fires on its own, so both read/write paths must lock.
// startupCh is closed once startup() fires so that ShowWindow/Quit callers
// that arrive before Wails is ready can wait.
type App struct {
	mu         sync.RWMutex
	ctx        context.Context
	startupCh  chan struct{}
	once       sync.Once
	visible    bool
	loginItems *LoginItemService
	hotkeys    hotkeyStarter // nil in unit tests; real HotkeyService in production

	trust   *TrustService
	reader  *ContextService
	typing  *TypingService
	output  *OutputService
	configs *ConfigService
	cfg     Config
}

// NewApp creates a new App application struct.
// hotkeys is intentionally nil — main.go injects a real HotkeyService
// via SetHotkeyService() before calling wails.Run(), keeping CGo goroutines
// out of unit tests entirely.
func NewApp() *App {
	svc, err := NewLoginItemService()
	if err != nil {
		log.Printf("warning: failed to create LoginItemService: %v", err)
	}
	return &App{
		startupCh:  make(chan struct{}),
		loginItems: svc,
		cfg:        defaultConfig(),
	}
}

// SetHotkeyService injects the hotkey service (called by main.go before wails.Run).
func (a *App) SetHotkeyService(hs hotkeyStarter) {
	a.hotkeys = hs
}

// SetTrustService injects the accessibility trust service.
func (a *App) SetTrustService(t *TrustService) {
	a.trust = t
}

// SetContextService injects the cursor-context reader.
func (a *App) SetContextService(c *ContextService) {
	a.reader = c
}

// SetTypingService injects the keystroke synthesis service.
func (a *App) SetTypingService(t *TypingService) {
	a.typing = t
}

// SetOutputService injects the output (type-or-clipboard) service.
func (a *App) SetOutputService(o *OutputService) {
	a.output = o
}

// SetConfigService injects the config service and loads current settings.
func (a *App) SetConfigService(c *ConfigService) {
	a.configs = c
	a.setConfig(c.Load())
	a.applyConfig()
}

// config returns a snapshot of the current settings.
func (a *App) config() Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// setConfig replaces the current settings.
func (a *App) setConfig(cfg Config) {
	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()
}

// applyConfig pushes loaded settings into the services that consume them.
func (a *App) applyConfig() {
	if a.typing != nil {
		a.typing.SetChunkDelay(time.Duration(a.config().KeyDelayMS) * time.Millisecond)
	}
}

// startup is called by Wails when the runtime is ready.
func (a *App) startup(ctx context.Context) {
	a.mu.Lock()
	a.ctx = ctx
	a.mu.Unlock()
	a.once.Do(func() { close(a.startupCh) })

	// Surface missing accessibility trust once at launch; the UI shows a
	// banner and the user can request the prompt from there.
	if a.trust != nil && !a.trust.Check() {
		log.Printf("startup: accessibility trust not granted")
		runtime.EventsEmit(ctx, "trust:missing")
	}

	// Global hotkey — types the clipboard after the arming delay.
	if a.hotkeys != nil {
		combo := a.config().Hotkey
		if err := a.hotkeys.Start(ctx, combo, a.TypeClipboard); err != nil {
			if errors.Is(err, ErrHotkeyConflict) {
				log.Printf("hotkey: %s is already registered by another app — tray menu only", combo)
				runtime.EventsEmit(ctx, "hotkey:conflict")
			} else {
				log.Printf("hotkey: failed to register: %v", err)
			}
		}
	}
}

// armThen runs fn after the configured arming delay, emitting countdown
// ticks so the UI can show "typing in 2…1…". The delay gives the user time
// to focus the target field before events start landing.
func (a *App) armThen(fn func()) {
	delay := a.config().ArmDelaySeconds
	go func() {
		for i := delay; i > 0; i-- {
			a.emit("type:countdown", i)
			time.Sleep(time.Second)
		}
		fn()
	}()
}

// emit sends an event to the frontend if the runtime is up.
func (a *App) emit(name string, payload interface{}) {
	a.mu.RLock()
	ctx := a.ctx
	a.mu.RUnlock()
	if ctx != nil {
		runtime.EventsEmit(ctx, name, payload)
	}
}

// waitForStartup blocks until Wails has initialised (startup() has been called).
func (a *App) waitForStartup() context.Context {
	<-a.startupCh
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ctx
}

// ── Bindings ────────────────────────────────────────────────────────────────

// GetStatus returns the current app status displayed in the UI.
func (a *App) GetStatus() string {
	if a.trust != nil && !a.trust.Check() {
		return "Accessibility permission required"
	}
	return "Ready to type"
}

// IsTrusted reports current accessibility trust with no UI side effect.
func (a *App) IsTrusted() bool {
	if a.trust == nil {
		return false
	}
	return a.trust.Check()
}

// RequestTrust asks macOS to show the accessibility consent dialog if trust
// is absent. Returns the trust state at call time.
func (a *App) RequestTrust() bool {
	if a.trust == nil {
		return false
	}
	return a.trust.Request()
}

// PreviewContext returns up to the configured number of characters of text
// preceding the cursor in the focused field. Used by the UI's context
// preview pane.
func (a *App) PreviewContext() (string, error) {
	if a.reader == nil {
		return "", ErrContextUnavailable
	}
	return a.reader.CaptureBefore(a.config().MaxContextChars)
}

// TypeText arms the countdown and then types text into whatever field is
// focused when the delay expires. Returns immediately.
func (a *App) TypeText(text string) {
	if text == "" || a.output == nil {
		return
	}
	a.armThen(func() {
		a.output.Send(text, func() {
			a.emit("type:fallback", nil)
		})
		a.emit("type:done", nil)
	})
}

// TypeClipboard arms the countdown and then types the clipboard contents.
func (a *App) TypeClipboard() {
	if a.output == nil {
		return
	}
	a.armThen(func() {
		if _, err := a.output.SendClipboard(); err != nil {
			log.Printf("app: type clipboard failed: %v", err)
			a.emit("type:error", err.Error())
			return
		}
		a.emit("type:done", nil)
	})
}

// GetConfig returns the current settings.
func (a *App) GetConfig() Config {
	return a.config()
}

// GetHotkeyDisplay returns the active combo formatted for the UI (e.g. "⌃⇧V").
func (a *App) GetHotkeyDisplay() string {
	return FormatHotkey(a.config().Hotkey)
}

// SaveConfig applies new settings live and persists them: a changed hotkey is
// rebound first, so a conflicting combo is never written to disk — on a rebind
// conflict the old combo stays active, nothing is saved, and the error is
// returned to the UI.
func (a *App) SaveConfig(cfg Config) error {
	if a.configs == nil {
		return nil
	}
	oldHotkey := a.config().Hotkey
	if cfg.Hotkey == "" {
		cfg.Hotkey = defaultConfig().Hotkey // same fill Load applies
	}
	if a.hotkeys != nil && cfg.Hotkey != oldHotkey && a.hotkeys.IsRegistered() {
		if err := a.hotkeys.Rebind(cfg.Hotkey); err != nil {
			return err
		}
	}
	if err := a.configs.Save(cfg); err != nil {
		if a.hotkeys != nil && cfg.Hotkey != oldHotkey && a.hotkeys.IsRegistered() {
			if rerr := a.hotkeys.Rebind(oldHotkey); rerr != nil {
				log.Printf("app: restoring hotkey after failed save: %v", rerr)
			}
		}
		return err
	}
	a.setConfig(a.configs.Load()) // re-read so zero fields pick up defaults
	a.applyConfig()
	return nil
}

// GetHotkeyStatus returns the current hotkey registration status.
func (a *App) GetHotkeyStatus() string {
	if a.hotkeys != nil && a.hotkeys.IsRegistered() {
		return "registered"
	}
	return "unregistered"
}

// GetLaunchAtLogin reports whether the app is registered as a login item.
func (a *App) GetLaunchAtLogin() bool {
	if a.loginItems == nil {
		return false
	}
	return a.loginItems.IsEnabled()
}

// SetLaunchAtLogin enables or disables the launch-at-login login item.
func (a *App) SetLaunchAtLogin(enabled bool) error {
	if a.loginItems == nil {
		return nil
	}
	if enabled {
		execPath, err := os.Executable()
		if err != nil {
			return err
		}
		return a.loginItems.Enable(execPath)
	}
	return a.loginItems.Disable()
}

// ── Window management ───────────────────────────────────────────────────────

// ShowWindow shows the main settings window.
func (a *App) ShowWindow() {
	go func() {
		ctx := a.waitForStartup()
		runtime.WindowShow(ctx)
		a.mu.Lock()
		a.visible = true
		a.mu.Unlock()
	}()
}

// ToggleWindow shows or hides the settings window.
func (a *App) ToggleWindow() {
	go func() {
		ctx := a.waitForStartup()
		a.mu.Lock()
		show := !a.visible
		a.visible = show
		a.mu.Unlock()
		if show {
			runtime.WindowShow(ctx)
		} else {
			runtime.WindowHide(ctx)
		}
	}()
}

// Quit exits the application, stopping the hotkey listener first so no CGo
// callback is in flight when the Cocoa loop tears down.
func (a *App) Quit() {
	go func() {
		ctx := a.waitForStartup()
		if a.hotkeys != nil {
			a.hotkeys.Stop()
		}
		runtime.Quit(ctx)
	}()
}
