package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/config"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	migrate := flag.Bool("migrate", true, "apply pending database migrations on startup")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return err
	}

	if *migrate {
		if err := runMigrations(db, log); err != nil {
			_ = db.Close()
			return err
		}
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		_ = db.Close()
		return err
	}

	return app.startHTTPServer(context.Background(), app.setupRouter())
}
