package main

import (
	"context"
	"embed"
	"log"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	app := NewApp()

	trust := NewTrustService()
	typing := NewTypingService(trust)
	app.SetTrustService(trust)
	app.SetContextService(NewContextService())
	app.SetTypingService(typing)
	app.SetOutputService(NewOutputService(typing))
	app.SetHotkeyService(NewHotkeyService())
	app.SetConfigService(NewConfigService())

	// Application menu — keyboard shortcuts while window is focused.
	appMenu := menu.NewMenu()
	fileMenu := appMenu.AddSubmenu("ghosttype")
	fileMenu.AddText("Show / Hide", keys.CmdOrCtrl(","), func(_ *menu.CallbackData) {
		app.ToggleWindow()
	})
	fileMenu.AddText("Type Clipboard", keys.CmdOrCtrl("t"), func(_ *menu.CallbackData) {
		app.TypeClipboard()
	})
	fileMenu.AddSeparator()
	fileMenu.AddText("Quit", keys.CmdOrCtrl("q"), func(_ *menu.CallbackData) {
		app.Quit()
	})

	err := wails.Run(&options.App{
		Title:  "ghosttype",
		Width:  380,
		Height: 460,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 18, G: 18, B: 18, A: 0},
		OnStartup: func(ctx context.Context) {
			app.startup(ctx)
			// Tray icon needs the Cocoa run loop, live once startup fires.
			StartSystray(app)
		},
		Bind: []interface{}{app},
		Mac: &mac.Options{
			TitleBar:             mac.TitleBarHiddenInset(),
			Appearance:           mac.NSAppearanceNameDarkAqua,
			WebviewIsTransparent: true,
			WindowIsTranslucent:  true,
			About: &mac.AboutInfo{
				Title:   "ghosttype",
				Message: "Types text into the focused app as real keystrokes.",
			},
		},
		StartHidden:       true, // window hidden at launch; systray icon reveals it
		HideWindowOnClose: true, // X button hides, doesn't quit
		Menu:              appMenu,
	})

	if err != nil {
		log.Fatalf("fatal: wails.Run failed: %v", err)
	}
}
