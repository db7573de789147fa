package triage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/guardrail"
	"github.com/mikey/inbox-triage/internal/queue"
)

// ErrBatchTooLarge is returned when a batch exceeds the configured maximum
// and the caller did not ask for an override. Oversized batches are
// rejected, never silently truncated.
var ErrBatchTooLarge = errors.New("batch exceeds configured maximum size")

// BatchOptions are the per-run knobs supplied by the caller
type BatchOptions struct {
	// Now is the reference time for age scoring. The zero value means
	// "use the wall clock"; tests pass a fixed time for reproducible runs.
	Now time.Time

	// AllowOversize lets the caller override the batch size limit
	AllowOversize bool
}

// TriageService runs the full pipeline over a batch of email records. The
// conflict resolver is a barrier; after it the per-message stages fan out
// across workers since every stage is a pure function of its inputs and
// the configuration snapshot taken at construction.
type TriageService struct {
	resolver    *ConflictResolver
	senders     *SenderClassifier
	intents     *IntentDetector
	scorer      *PriorityScorer
	categorizer *Categorizer
	router      *EdgeCaseRouter
	guardrails  *guardrail.Engine
	builder     *queue.Builder
	drafter     core.DraftProvider
	cache       core.CacheRepository
	logger      *zap.Logger

	cacheEnabled bool
	cacheTTL     time.Duration
	batch        config.BatchConfig
}

// NewTriageService creates the triage service. drafter and cache may be nil
// when drafting or the sender cache is disabled.
func NewTriageService(
	resolver *ConflictResolver,
	senders *SenderClassifier,
	intents *IntentDetector,
	scorer *PriorityScorer,
	categorizer *Categorizer,
	router *EdgeCaseRouter,
	guardrails *guardrail.Engine,
	drafter core.DraftProvider,
	cache core.CacheRepository,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
	batch config.BatchConfig,
) *TriageService {
	return &TriageService{
		resolver:     resolver,
		senders:      senders,
		intents:      intents,
		scorer:       scorer,
		categorizer:  categorizer,
		router:       router,
		guardrails:   guardrails,
		builder:      queue.NewBuilder(batch.TopN, batch.MinutesPerEmail),
		drafter:      drafter,
		cache:        cache,
		logger:       logger,
		cacheEnabled: cacheEnabled,
		cacheTTL:     cacheTTL,
		batch:        batch,
	}
}

// triaged is the outcome of the per-message pipeline for one resolved record
type triaged struct {
	item     core.QueueItem
	warnings []string
	degraded bool
}

// TriageBatch runs one batch end to end and returns the queue plus metrics.
// The result for a given input set and reference time is deterministic:
// reordering the input records does not change the output.
func (s *TriageService) TriageBatch(ctx context.Context, records []core.EmailRecord, opts BatchOptions) (core.TriageResult, error) {
	if s.batch.MaxBatchSize > 0 && len(records) > s.batch.MaxBatchSize && !opts.AllowOversize {
		return core.TriageResult{}, fmt.Errorf("%w: %d records, maximum %d",
			ErrBatchTooLarge, len(records), s.batch.MaxBatchSize)
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	resolution := s.resolver.Resolve(records)
	s.logger.Info("Resolved batch",
		zap.Int("input_records", len(records)),
		zap.Int("active", len(resolution.Active)),
		zap.Int("superseded", len(resolution.Superseded)))

	results := make([]triaged, len(resolution.Active))

	workers := s.batch.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(resolution.Active) {
		workers = len(resolution.Active)
	}

	var wg sync.WaitGroup
	indices := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				results[i] = s.triageOne(ctx, resolution.Active[i], now)
			}
		}()
	}
	for i := range resolution.Active {
		indices <- i
	}
	close(indices)
	wg.Wait()

	items := make([]core.QueueItem, 0, len(results))
	var warnings []string
	degraded := 0
	for _, res := range results {
		items = append(items, res.item)
		warnings = append(warnings, res.warnings...)
		if res.degraded {
			degraded++
		}
	}
	if degraded > 0 {
		warnings = append(warnings, fmt.Sprintf("%d degraded records triaged with reduced confidence", degraded))
	}
	if n := len(resolution.Superseded); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d superseded messages collapsed: %s",
			n, strings.Join(resolution.Superseded, ", ")))
	}

	return s.builder.Build(items, warnings), nil
}

// TriageOne triages a single record outside a batch. Ingestion adapters use
// this for streaming input; it shares the per-message pipeline with
// TriageBatch but skips the batch barrier.
func (s *TriageService) TriageOne(ctx context.Context, record core.EmailRecord) core.QueueItem {
	result := s.triageOne(ctx, Resolved{Record: record}, time.Now().UTC())
	return result.item
}

// triageOne runs the per-message stages for one resolved record
func (s *TriageService) triageOne(ctx context.Context, resolved Resolved, now time.Time) triaged {
	record := resolved.Record
	var warnings []string

	profile := s.classifySender(ctx, record.Sender)
	intent, keywords, urgency := s.intents.Detect(&record)

	classification := core.ClassificationResult{
		MessageID:   record.MessageID,
		SenderClass: profile.Class,
		Intent:      intent,
		Keywords:    keywords,
		Urgency:     urgency,
	}

	score := s.scorer.Score(record.MessageID, profile.Class, urgency, intent,
		record.ReceivedAt, now, resolved.ThreadDepth)
	category := s.categorizer.Categorize(intent, record.Subject, record.Body)
	route := s.router.Route(category, profile.Class, score.Score)

	item := core.QueueItem{
		MessageID:      record.MessageID,
		ThreadID:       record.ThreadID,
		Sender:         record.Sender,
		Subject:        record.Subject,
		ReceivedAt:     record.ReceivedAt,
		SenderClass:    profile.Class,
		Intent:         intent,
		Urgency:        urgency,
		Category:       category,
		Score:          score,
		Deferred:       route.Deferred,
		Escalated:      route.Escalated,
		DuplicateCount: resolved.DuplicateCount,
	}

	var draft *core.Draft
	if s.shouldDraft(intent, category, route) {
		var err error
		draft, err = s.drafter.DraftReply(ctx, &record, classification)
		if err != nil {
			s.logger.Warn("Drafting failed, continuing without draft",
				zap.String("message_id", record.MessageID),
				zap.Error(err))
			warnings = append(warnings, fmt.Sprintf("drafting failed for %s: %v", record.MessageID, err))
			draft = nil
		}
	}

	if draft != nil {
		item.DraftRef = draft.DraftRef
		recipients := draft.Recipients
		if len(recipients) == 0 {
			recipients = []string{record.Sender}
		}
		item.GuardrailFlags = s.guardrails.Evaluate(guardrail.Target{
			Body:       draft.Body,
			Recipients: recipients,
		})
	}

	item.Decision = s.decide(&item, draft)

	s.logger.Debug("Triaged message",
		zap.String("message_id", record.MessageID),
		zap.String("sender_class", string(profile.Class)),
		zap.String("intent", string(intent)),
		zap.Int("score", score.Score),
		zap.String("category", string(category)),
		zap.String("decision", string(item.Decision)))

	return triaged{
		item:     item,
		warnings: warnings,
		degraded: isDegraded(&record, profile),
	}
}

// classifySender resolves the sender profile, consulting the advisory
// cache first. Cache failures degrade to a fresh classification; they
// never fail the pipeline.
func (s *TriageService) classifySender(ctx context.Context, sender string) core.SenderProfile {
	if s.cacheEnabled && s.cache != nil {
		if entry, err := s.cache.Get(ctx, sender); err == nil && entry != nil {
			s.logger.Debug("Sender cache hit", zap.String("sender", sender))
			profile := s.senders.Classify(sender)
			profile.Class = entry.Class
			return profile
		}
	}

	profile := s.senders.Classify(sender)

	if s.cacheEnabled && s.cache != nil {
		entry := &core.SenderCacheEntry{
			Sender:    profile.Address,
			Class:     profile.Class,
			LastSeen:  time.Now(),
			ExpiresAt: time.Now().Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update sender cache", zap.Error(err))
		}
	}

	return profile
}

// shouldDraft reports whether the external drafting collaborator is asked
// for a reply. Deferred and spam items never get drafts.
func (s *TriageService) shouldDraft(intent core.Intent, category core.Category, route RouteResult) bool {
	if s.drafter == nil || route.Deferred {
		return false
	}
	if category == core.CategorySpam {
		return false
	}
	return requiresAction(intent)
}

// decide applies the decision calculus. Precedence: BLOCKED beats
// NEEDS_APPROVAL beats NEEDS_CLARIFICATION beats AUTO_QUEUED. BLOCKED
// holds if and only if at least one flag carries BLOCK severity.
func (s *TriageService) decide(item *core.QueueItem, draft *core.Draft) core.Decision {
	if item.HasBlockFlag() {
		return core.DecisionBlocked
	}
	if item.Escalated || len(item.GuardrailFlags) > 0 {
		return core.DecisionNeedsApproval
	}
	if draft != nil && draft.NeedsClarification {
		return core.DecisionNeedsClarification
	}
	return core.DecisionAutoQueued
}

// isDegraded reports whether a record was triaged on incomplete input:
// a missing or malformed sender address, or no content at all.
func isDegraded(record *core.EmailRecord, profile core.SenderProfile) bool {
	if strings.TrimSpace(record.Sender) == "" || profile.Domain == "" {
		return true
	}
	return strings.TrimSpace(record.Subject) == "" && strings.TrimSpace(record.Body) == ""
}
