package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/triage"
)

// CLIIngest implements a command-line interface for one-shot triage
type CLIIngest struct {
	service *triage.TriageService
	logger  *zap.Logger
	verbose bool
}

// NewCLIIngest creates a new CLI ingestion adapter
func NewCLIIngest(service *triage.TriageService, logger *zap.Logger, verbose bool) (*CLIIngest, error) {
	return &CLIIngest{
		service: service,
		logger:  logger,
		verbose: verbose,
	}, nil
}

// ProcessEmail triages a single email record and displays the result
func (f *CLIIngest) ProcessEmail(ctx context.Context, record *core.EmailRecord) (*core.QueueItem, error) {
	f.logger.Debug("Processing email", zap.String("sender", record.Sender))

	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", record.Sender)
	fmt.Printf("Subject: %s\n", record.Subject)
	fmt.Printf("Body length: %d bytes\n", len(record.Body))

	if f.verbose {
		preview := record.Body
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Printf("\nBody preview:\n%s\n", preview)
	}

	fmt.Printf("\n=== Triage ===\n")
	startTime := time.Now()
	item := f.service.TriageOne(ctx, *record)
	duration := time.Since(startTime)

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Sender class: %s\n", item.SenderClass)
	fmt.Printf("Intent: %s\n", item.Intent)
	fmt.Printf("Urgency: %s\n", item.Urgency)
	fmt.Printf("Category: %s\n", item.Category)
	fmt.Printf("Priority score: %d (%s)\n", item.Score.Score, item.Score.Band)
	for _, factor := range item.Score.Reasoning {
		fmt.Printf("  %s: %+d\n", factor.Factor, factor.Contribution)
	}
	fmt.Printf("Decision: %s\n", item.Decision)
	for _, flag := range item.GuardrailFlags {
		fmt.Printf("  [%s/%s] %s\n", flag.Kind, flag.Severity, flag.Evidence)
	}
	fmt.Printf("Processing time: %v\n", duration)

	return &item, nil
}

// RunBatch triages a batch of records and displays the resulting queue
func (f *CLIIngest) RunBatch(ctx context.Context, records []core.EmailRecord) (core.TriageResult, error) {
	result, err := f.service.TriageBatch(ctx, records, triage.BatchOptions{})
	if err != nil {
		return core.TriageResult{}, err
	}

	summary := result.Queue.Summary
	fmt.Printf("\n=== Batch Summary ===\n")
	fmt.Printf("Processed: %d (high %d / medium %d / low %d)\n",
		summary.TotalProcessed, summary.HighPriority, summary.MediumPriority, summary.LowPriority)
	fmt.Printf("Drafts: %d  Needs approval: %d  Needs clarification: %d  Blocked: %d  Follow-ups: %d\n",
		summary.DraftsCreated, summary.NeedsApproval, summary.NeedsClarification, summary.Blocked, summary.FollowUps)

	fmt.Printf("\n=== Top Queue ===\n")
	for i, item := range result.Queue.Top {
		fmt.Printf("%2d. [%3d %s] %s  %s  (%s, %s)\n",
			i+1, item.Score.Score, item.Score.Band, item.MessageID, item.Subject, item.Category, item.Decision)
	}

	if len(result.Queue.Deferred) > 0 {
		fmt.Printf("\n=== Deferred (DND) ===\n")
		for _, item := range result.Queue.Deferred {
			fmt.Printf("  [%3d] %s  %s\n", item.Score.Score, item.MessageID, item.Subject)
		}
	}

	if len(result.Queue.Blocked) > 0 {
		fmt.Printf("\n=== Blocked ===\n")
		for _, blocked := range result.Queue.Blocked {
			fmt.Printf("  %s: %s\n", blocked.MessageID, blocked.Reason)
		}
	}

	for _, warning := range result.Queue.Warnings {
		fmt.Printf("warning: %s\n", warning)
	}

	fmt.Printf("\nEstimated time saved: %d minutes\n", result.Metrics.TimeSavedMinutes)

	return result, nil
}

// Start is a no-op for the CLI ingestor
func (f *CLIIngest) Start() error {
	return nil
}

// Stop is a no-op for the CLI ingestor
func (f *CLIIngest) Stop() error {
	return nil
}
