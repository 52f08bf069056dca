// Package main provides the entry point for the Drawboard application.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"drawboard/internal/app"
	"drawboard/internal/persist"
	"drawboard/internal/recognize"
	"drawboard/ui/mainwindow"
	"drawboard/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	appTitle   = "Drawboard"
	appVersion = "0.1.0"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, appVersion)

	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, using environment as-is")
	}

	gateway := persist.GetGateway()
	appState := app.NewState(gateway)
	appState.LoadBoard(context.Background())

	appPrefs := prefs.Load()
	appState.Controller.BrushWidth = appPrefs.Float("brushWidth", appState.Controller.BrushWidth)

	setupRecognizer(appState)

	fyneApp := fyneapp.NewWithID("io.drawboard.app")
	win := mainwindow.New(fyneApp, appState)
	win.SetTitle(appTitle)

	win.SetCloseIntercept(func() {
		appState.Flush()
		if err := appPrefs.SaveIfDirty(); err != nil {
			log.Printf("Failed to save preferences: %v", err)
		}
		win.Close()
	})

	setupHotReload(appState, appPrefs)

	win.ShowAndRun()
}

// setupRecognizer wires handwriting recognition when the OCR runtime is
// available. The app runs fine without it; the capture action just reports
// failure.
func setupRecognizer(appState *app.State) {
	engine, err := recognize.NewEngine()
	if err != nil {
		logrus.WithError(err).Warn("handwriting recognition unavailable")
		return
	}
	appState.Controller.SetRecognizer(engine.RecognizeRegion)
}

// setupHotReload configures automatic restart detection when the binary is
// recompiled during development.
func setupHotReload(appState *app.State, appPrefs *prefs.Prefs) {
	reloader := app.NewHotReloader(2 * time.Second)
	if reloader == nil {
		log.Println("Hot reload: unable to determine executable path")
		return
	}

	log.Printf("Hot reload: watching %s (modified %s)",
		reloader.ExecPath(), reloader.StartupTime().Format("15:04:05"))

	reloader.OnTick(func() {
		appPrefs.SetFloat("brushWidth", appState.Controller.BrushWidth)
		if err := appPrefs.SaveIfDirty(); err != nil {
			log.Printf("Failed to save preferences: %v", err)
		}
	})

	reloader.OnNewBinary(func() {
		log.Println("Hot reload: newer binary detected, restarting...")
		appState.Flush()
		if err := appPrefs.SaveIfDirty(); err != nil {
			log.Printf("Failed to save preferences: %v", err)
		}
		if err := reloader.Restart(); err != nil {
			log.Printf("Hot reload: restart failed: %v", err)
			os.Exit(1)
		}
	})

	reloader.Start()
}
