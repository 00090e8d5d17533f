package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/config"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/events"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/platform/postgres"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/platform/rabbitmq"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/service"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/service/auth"
	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/store"
)

// application holds the shared dependencies of the running server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore    store.UserStore
	itemStore    store.ItemStore
	commentStore store.CommentStore

	jwtService  auth.JWTService
	credentials auth.CredentialStore
	emitter     events.Emitter
	notifier    *rabbitmq.Notifier

	userService    service.UserService
	itemService    service.ItemService
	commentService service.CommentService
}

// newApplication wires every component from configuration. The returned
// application owns the database handle and the AMQP connection; call cleanup
// when the server stops.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.itemStore = postgres.NewPostgresItemStore(db, logger)
	app.commentStore = postgres.NewPostgresCommentStore(db, logger)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	app.jwtService = jwtService

	credentials, err := auth.NewPBKDF2CredentialStore(cfg.Auth.HashIterations)
	if err != nil {
		return nil, fmt.Errorf("failed to create credential store: %w", err)
	}
	app.credentials = credentials

	// The AMQP sink is optional. Without a broker URL, events stay
	// in-process.
	if cfg.Events.AMQPURL != "" {
		notifier, err := rabbitmq.NewNotifier(cfg.Events.AMQPURL, cfg.Events.Queue, logger)
		if err != nil {
			// Notifications are fire and forget, so a dead broker at
			// startup degrades rather than aborts.
			logger.Warn("failed to connect notification broker, falling back to in-memory emitter",
				"error", err)
			app.emitter = events.NewInMemoryEmitter(logger)
		} else {
			app.notifier = notifier
			app.emitter = notifier
		}
	} else {
		app.emitter = events.NewInMemoryEmitter(logger)
	}

	app.userService, err = service.NewUserService(app.userStore, app.credentials, app.emitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.itemService, err = service.NewItemService(db, app.itemStore, app.userStore, app.commentStore, app.emitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create item service: %w", err)
	}

	app.commentService, err = service.NewCommentService(app.commentStore, app.itemStore, app.userStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment service: %w", err)
	}

	return app, nil
}

// cleanup releases connections owned by the application.
func (app *application) cleanup() {
	if app.notifier != nil {
		if err := app.notifier.Close(); err != nil {
			app.logger.Warn("failed to close notification broker connection", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Warn("failed to close database connection", "error", err)
		}
	}
}
