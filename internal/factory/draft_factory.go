package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/adapters/bedrock"
	"github.com/mikey/inbox-triage/internal/adapters/gemini"
	"github.com/mikey/inbox-triage/internal/adapters/openai"
	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
)

// DraftFactory creates draft providers
type DraftFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewDraftFactory creates a new draft factory
func NewDraftFactory(cfg *config.Config, logger *zap.Logger) *DraftFactory {
	return &DraftFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateDraftProvider creates a draft provider based on the configuration.
// The "none" provider disables drafting; the service treats a nil provider
// as "no draft available".
func (f *DraftFactory) CreateDraftProvider() (core.DraftProvider, error) {
	draftCfg := f.cfg.GetDraft()

	switch draftCfg.Provider {
	case "none", "":
		return nil, nil
	case "bedrock":
		return bedrock.NewFactory(f.cfg, f.logger).CreateDraftProvider()
	case "gemini":
		return gemini.NewFactory(f.cfg, f.logger).CreateDraftProvider()
	case "openai":
		return openai.NewFactory(f.cfg, f.logger).CreateDraftProvider()
	default:
		return nil, fmt.Errorf("unsupported draft provider: %s", draftCfg.Provider)
	}
}
