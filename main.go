package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"quickclipboard/logging"
)

func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "quickclipboard")
}

func main() {
	dataDir := flag.String("data-dir", defaultDataDir(), "Directory for the database, settings and stored images")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn or error")
	logFormat := flag.String("log-format", "", "Log format: text or json (default: auto-detect)")
	flag.Parse()

	logging.Setup(*logLevel, *logFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(*dataDir)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	if err := app.Start(ctx); err != nil {
		log.Fatalf("failed to start application: %v", err)
	}

	<-ctx.Done()
	slog.Info("shutting down")
	app.Shutdown()
}
