package main

import (
	"log/slog"
	"os"

	"palaypulse/internal/app"
)

// Build information, overridden at link time with -ldflags.
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	application, err := app.NewApplication(version, buildTime)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
