package main

import (
	"context"

	"go.uber.org/zap"

	"pricetrack/internal/domain/item"
	"pricetrack/internal/domain/user"
	"pricetrack/internal/infrastructure/completion"
	"pricetrack/internal/infrastructure/events"
	"pricetrack/internal/infrastructure/store"
	httphandlers "pricetrack/internal/interfaces/http"
	"pricetrack/internal/shared/auth"
	"pricetrack/internal/shared/config"
	"pricetrack/internal/shared/prompts"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	Store     *store.Store
	Publisher *events.Publisher

	// Handlers
	AuthHandler *httphandlers.AuthHandler
	ItemHandler *httphandlers.ItemHandler
	UserHandler *httphandlers.UserHandler
	Pages       *httphandlers.Pages

	// Auth
	Sessions *auth.Sessions

	log *zap.Logger
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Dependencies, error) {
	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{Store: st, log: log}

	catalog, err := prompts.Default()
	if err != nil {
		deps.Close(ctx)
		return nil, err
	}

	// The completion-backed routes answer 500 until a key is configured.
	var completer item.Completer
	if cfg.Completion.APIKey != "" {
		completer = completion.NewClient(completion.Config{
			APIKey:  cfg.Completion.APIKey,
			BaseURL: cfg.Completion.BaseURL,
			Model:   cfg.Completion.Model,
			Timeout: cfg.Completion.Timeout,
		}, catalog.Model())
	} else {
		log.Warn("OPENAI_API_KEY is not set, completion routes are disabled")
	}

	var publisher item.EventPublisher
	if cfg.Events.AMQPURL != "" {
		pub, err := events.NewPublisher(cfg.Events.AMQPURL, log)
		if err != nil {
			log.Warn("RabbitMQ unavailable, item events disabled", zap.Error(err))
		} else {
			deps.Publisher = pub
			publisher = pub
		}
	}

	// Initialize domain services
	userService := user.NewService(st.Users, log)
	itemService := item.NewService(st.Items, completer, catalog, publisher, log)

	// Initialize auth components
	sessions, err := auth.NewSessions(cfg.Session.Secret, cfg.Session.TTL)
	if err != nil {
		deps.Close(ctx)
		return nil, err
	}
	deps.Sessions = sessions
	githubOAuth := auth.NewGitHubOAuthProvider(
		cfg.OAuth.GitHub.ClientID,
		cfg.OAuth.GitHub.ClientSecret,
		cfg.OAuth.GitHub.CallbackURL,
	)

	// Initialize handlers
	pages, err := httphandlers.NewPages(itemService, log)
	if err != nil {
		deps.Close(ctx)
		return nil, err
	}
	deps.Pages = pages
	deps.AuthHandler = httphandlers.NewAuthHandler(userService, githubOAuth, deps.Sessions, log)
	deps.ItemHandler = httphandlers.NewItemHandler(itemService, cfg.Server.MaxBodySize, log)
	deps.UserHandler = httphandlers.NewUserHandler(userService, log)

	return deps, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close(ctx context.Context) {
	if d.Publisher != nil {
		if err := d.Publisher.Close(); err != nil {
			d.log.Warn("Error closing event publisher", zap.Error(err))
		}
	}
	if d.Store != nil {
		if err := d.Store.Close(ctx); err != nil {
			d.log.Warn("Error closing store", zap.Error(err))
		}
	}
}
