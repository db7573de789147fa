package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/guardrail"
	"github.com/mikey/inbox-triage/internal/triage"
)

// TriageFactory assembles the triage pipeline from configuration
type TriageFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewTriageFactory creates a new triage factory
func NewTriageFactory(cfg *config.Config, logger *zap.Logger) *TriageFactory {
	return &TriageFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateTriageService builds the pipeline stages from the configuration
// snapshot and wires them into a triage service.
func (f *TriageFactory) CreateTriageService(drafter core.DraftProvider, cache core.CacheRepository) (*triage.TriageService, error) {
	cacheTTL, err := f.cfg.GetDuration("cache.ttl")
	if err != nil {
		return nil, fmt.Errorf("invalid cache TTL: %w", err)
	}

	batch := f.cfg.GetBatch()

	return triage.NewTriageService(
		triage.NewConflictResolver(batch),
		triage.NewSenderClassifier(f.cfg.GetSenders()),
		triage.NewIntentDetector(f.cfg.GetIntents(), f.cfg.GetUrgency()),
		triage.NewPriorityScorer(f.cfg.GetScoring()),
		triage.NewCategorizer(f.cfg.GetCategories()),
		triage.NewEdgeCaseRouter(f.cfg.GetDND()),
		guardrail.NewEngine(f.cfg.GetGuardrails(), f.cfg.GetDomains(), f.logger),
		drafter,
		cache,
		f.logger,
		f.cfg.GetBool("cache.enabled"),
		cacheTTL,
		batch,
	), nil
}
