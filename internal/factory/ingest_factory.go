package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/adapters/ingest"
	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/ports"
	"github.com/mikey/inbox-triage/internal/triage"
)

// IngestFactory creates email ingestors based on configuration
type IngestFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *triage.TriageService
}

// NewIngestFactory creates a new ingest factory
func NewIngestFactory(cfg *config.Config, logger *zap.Logger, service *triage.TriageService) *IngestFactory {
	return &IngestFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateEmailIngestor creates an email ingestor based on the configuration
func (f *IngestFactory) CreateEmailIngestor() (ports.EmailIngestor, error) {
	serverCfg := f.cfg.GetServer()

	switch serverCfg.IngestType {
	case "smtp":
		return ingest.NewSMTPIngest(f.service, f.logger, serverCfg), nil
	case "cli":
		return ingest.NewCLIIngest(f.service, f.logger, f.cfg.GetBool("cli.verbose"))
	default:
		return nil, fmt.Errorf("unsupported ingest type: %s", serverCfg.IngestType)
	}
}
