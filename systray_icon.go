package main

import (
	_ "embed"

	"github.com/getlantern/systray"
)

//go:embed assets/icon-template.png
var iconBytes []byte

// StartSystray launches the system-tray icon in a background goroutine.
// It must be called AFTER Wails startup() fires so the Cocoa run loop is
// already running — calling it earlier causes a deadlock.
func StartSystray(app *App) {
	go systray.Run(
		func() { onSystrayReady(app) },
		func() { /* onExit — nothing to clean up */ },
	)
}

func onSystrayReady(app *App) {
	HideFromDock() // runs on Cocoa thread — safe to call NSApp here
	systray.SetTemplateIcon(iconBytes, iconBytes)
	systray.SetTooltip("ghosttype — click to show")

	mType := systray.AddMenuItem("Type Clipboard", "Type the clipboard into the focused app after the arming delay")
	mToggle := systray.AddMenuItem("Settings…", "Toggle the ghosttype settings window")
	systray.AddSeparator()
	mTrust := systray.AddMenuItem("Grant Accessibility Access", "Open the macOS accessibility consent prompt")
	if app.IsTrusted() {
		mTrust.Hide()
	}
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit ghosttype", "Exit the application")

	go func() {
		for {
			select {
			case <-mType.ClickedCh:
				app.TypeClipboard()
			case <-mToggle.ClickedCh:
				app.ToggleWindow()
			case <-mTrust.ClickedCh:
				if app.RequestTrust() {
					mTrust.Hide()
				}
			case <-mQuit.ClickedCh:
				systray.Quit()
				app.Quit()
				return
			}
		}
	}()
}
