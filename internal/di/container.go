package di

import (
	"go.uber.org/dig"

	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/factory"
	"github.com/mikey/inbox-triage/internal/logging"
	"github.com/mikey/inbox-triage/internal/ports"
	"github.com/mikey/inbox-triage/internal/triage"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewDraftFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTriageFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewIngestFactory); err != nil {
		return nil, err
	}

	// Register draft provider
	if err := container.Provide(func(f *factory.DraftFactory) (core.DraftProvider, error) {
		return f.CreateDraftProvider()
	}); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register triage service
	if err := container.Provide(func(
		f *factory.TriageFactory,
		drafter core.DraftProvider,
		cache core.CacheRepository,
	) (*triage.TriageService, error) {
		return f.CreateTriageService(drafter, cache)
	}); err != nil {
		return nil, err
	}

	// Register email ingestor
	if err := container.Provide(func(f *factory.IngestFactory) (ports.EmailIngestor, error) {
		return f.CreateEmailIngestor()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
