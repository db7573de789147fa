package ports

import (
	"context"

	"github.com/mikey/inbox-triage/internal/core"
)

// EmailIngestor defines the interface for an ingestion boundary. Adapters
// normalize raw mail into EmailRecords, run triage and surface the decision
// back to their transport.
type EmailIngestor interface {
	// ProcessEmail triages a single normalized email record
	ProcessEmail(ctx context.Context, record *core.EmailRecord) (*core.QueueItem, error)

	// Start starts the ingestion service
	Start() error

	// Stop stops the ingestion service
	Stop() error
}
