// Package container builds the dependency injection container.
package container

import (
	"lingo-relay/internal/app"
	"lingo-relay/internal/config"
	"lingo-relay/internal/db"
	"lingo-relay/internal/dispatcher"
	"lingo-relay/internal/gate"
	"lingo-relay/internal/handler"
	"lingo-relay/internal/httpclient"
	"lingo-relay/internal/messenger"
	"lingo-relay/internal/router"
	"lingo-relay/internal/services"
	"lingo-relay/internal/store"
	"lingo-relay/internal/translator"

	"go.uber.org/dig"
)

// BuildContainer creates and configures the DI container.
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	providers := []any{
		// Infrastructure
		config.NewManager,
		db.NewDB,
		store.NewStore,
		httpclient.NewManager,

		// Domain services
		services.NewTenantService,
		services.NewGroupService,
		services.NewAdminService,
		services.NewUsageService,
		services.NewExpiryService,
		services.NewCleanupService,

		// Translation pipeline
		translator.NewFactory,
		func(f *translator.Factory) dispatcher.ProviderSource { return f },
		dispatcher.NewDispatcher,
		gate.NewFromConfig,
		messenger.NewClient,

		// HTTP surface
		handler.NewServer,
		router.NewRouter,
		app.NewApp,
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}

	return container, nil
}
