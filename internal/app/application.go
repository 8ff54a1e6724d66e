package app

import (
	"context"

	"github.com/R3E-Network/social_layer/internal/app/services/accounts"
	"github.com/R3E-Network/social_layer/internal/app/services/messages"
	"github.com/R3E-Network/social_layer/internal/app/storage"
	"github.com/R3E-Network/social_layer/internal/app/storage/memory"
	"github.com/R3E-Network/social_layer/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Accounts storage.AccountStore
	Messages storage.MessageStore
	Health   storage.Pinger
}

// Application ties domain services together.
type Application struct {
	log    *logger.Logger
	health storage.Pinger

	Accounts *accounts.Service
	Messages *messages.Service
}

// New builds a fully initialised application with the provided stores. When
// either store is missing both fall back to a single shared in-memory store so
// message authors resolve against the same accounts.
func New(stores Stores, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	if stores.Accounts == nil || stores.Messages == nil {
		mem := memory.New()
		log.Warn("no persistent store configured; using in-memory store")
		stores.Accounts = mem
		stores.Messages = mem
		stores.Health = mem
	}
	if stores.Health == nil {
		if p, ok := stores.Accounts.(storage.Pinger); ok {
			stores.Health = p
		}
	}

	return &Application{
		log:      log,
		health:   stores.Health,
		Accounts: accounts.New(stores.Accounts, log.Component("accounts")),
		Messages: messages.New(stores.Messages, log.Component("messages")),
	}, nil
}

// Ping reports whether the backing store is reachable.
func (a *Application) Ping(ctx context.Context) error {
	if a.health == nil {
		return nil
	}
	return a.health.Ping(ctx)
}
