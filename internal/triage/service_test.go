package triage

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/guardrail"
)

// stubDrafter returns a canned draft or error. Safe for concurrent use
// since the batch fans out across workers.
type stubDrafter struct {
	mu    sync.Mutex
	draft *core.Draft
	err   error
	calls int
}

func (d *stubDrafter) DraftReply(_ context.Context, record *core.EmailRecord, _ core.ClassificationResult) (*core.Draft, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	if d.draft == nil {
		return nil, nil
	}
	draft := *d.draft
	draft.MessageID = record.MessageID
	return &draft, nil
}

func (d *stubDrafter) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

type stubCache struct {
	mu      sync.Mutex
	entries map[string]*core.SenderCacheEntry
	getErr  error
	sets    int
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]*core.SenderCacheEntry)}
}

func (c *stubCache) Get(_ context.Context, sender string) (*core.SenderCacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.entries[sender], nil
}

func (c *stubCache) Set(_ context.Context, entry *core.SenderCacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.Sender] = entry
	c.sets++
	return nil
}

func (c *stubCache) Delete(_ context.Context, sender string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, sender)
	return nil
}

func (c *stubCache) Cleanup(_ context.Context) error { return nil }

func svcBatchConfig() config.BatchConfig {
	return config.BatchConfig{
		MaxBatchSize:    10,
		TopN:            10,
		MinutesPerEmail: 3,
		Workers:         2,
		BurstWindow:     10 * time.Minute,
	}
}

func svcGuardrailEngine() *guardrail.Engine {
	cfg := config.GuardrailConfig{
		PIIEnabled:         true,
		DomainEnabled:      true,
		ToneEnabled:        true,
		ToneBlockThreshold: 3,
		Aggressive:         []string{"idiot"},
		Liability:          []string{"guarantee"},
		Slang:              []string{"lol"},
	}
	policy := config.DomainPolicy{
		Allowed: []string{"company.com", "client.net"},
		Blocked: []string{"rival.com"},
	}
	return guardrail.NewEngine(cfg, policy, zap.NewNop())
}

func newTestService(drafter core.DraftProvider, cache core.CacheRepository, dnd config.DNDConfig, batch config.BatchConfig) *TriageService {
	return NewTriageService(
		NewConflictResolver(batch),
		NewSenderClassifier(testSenderConfig()),
		NewIntentDetector(testIntentConfig(), testUrgencyConfig()),
		NewPriorityScorer(testScoringConfig()),
		NewCategorizer(testCategoryConfig()),
		NewEdgeCaseRouter(dnd),
		svcGuardrailEngine(),
		drafter,
		cache,
		zap.NewNop(),
		cache != nil,
		time.Hour,
		batch,
	)
}

var svcNow = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

func svcEmail(id, sender, subject, body string) core.EmailRecord {
	return core.EmailRecord{
		MessageID:  id,
		Sender:     sender,
		Subject:    subject,
		Body:       body,
		ReceivedAt: svcNow.Add(-time.Hour),
	}
}

func TestTriageBatchVIPUrgentContract(t *testing.T) {
	drafter := &stubDrafter{draft: &core.Draft{
		DraftRef: "draft-1",
		Body:     "I will review and respond by Friday.",
	}}
	svc := newTestService(drafter, nil, config.DNDConfig{}, svcBatchConfig())

	records := []core.EmailRecord{
		svcEmail("m1", "ceo@company.com", "Urgent: contract signature needed", "Please sign the attached contract."),
	}

	result, err := svc.TriageBatch(context.Background(), records, BatchOptions{Now: svcNow})
	require.NoError(t, err)

	require.Len(t, result.Queue.Top, 1)
	item := result.Queue.Top[0]
	assert.Equal(t, core.SenderVIP, item.SenderClass)
	assert.Equal(t, core.UrgencyHigh, item.Urgency)
	assert.Equal(t, core.CategoryLegal, item.Category)
	assert.Equal(t, core.BandHigh, item.Score.Band)
	assert.True(t, item.Escalated)
	assert.Equal(t, core.DecisionNeedsApproval, item.Decision)
	assert.Equal(t, "draft-1", item.DraftRef)
	assert.Contains(t, result.Queue.Warnings, "1 legal/finance items escalated for approval")
	assert.Equal(t, 1, result.Metrics.VIPEmails)
}

func TestTriageBatchNewsletterAutoQueued(t *testing.T) {
	drafter := &stubDrafter{draft: &core.Draft{DraftRef: "never"}}
	svc := newTestService(drafter, nil, config.DNDConfig{}, svcBatchConfig())

	records := []core.EmailRecord{
		svcEmail("m1", "noreply@service.com", "Weekly newsletter", "your digest is here"),
	}

	result, err := svc.TriageBatch(context.Background(), records, BatchOptions{Now: svcNow})
	require.NoError(t, err)

	require.Len(t, result.Queue.Top, 1)
	item := result.Queue.Top[0]
	assert.Equal(t, core.SenderNoReply, item.SenderClass)
	assert.Equal(t, core.IntentNotification, item.Intent)
	assert.Equal(t, core.BandLow, item.Score.Band)
	assert.Equal(t, core.DecisionAutoQueued, item.Decision)
	assert.Empty(t, item.GuardrailFlags)
	// Notifications never go to the drafting provider.
	assert.Equal(t, 0, drafter.callCount())
	assert.Equal(t, 3, result.Metrics.TimeSavedMinutes)
}

func TestTriageBatchBlocksDraftWithPII(t *testing.T) {
	drafter := &stubDrafter{draft: &core.Draft{
		DraftRef:   "draft-pii",
		Body:       "Sure, the SSN is 123-45-6789.",
		Recipients: []string{"outside@unknown.org"},
	}}
	svc := newTestService(drafter, nil, config.DNDConfig{}, svcBatchConfig())

	records := []core.EmailRecord{
		svcEmail("m1", "support@client.net", "Data request", "Could you send over the records?"),
	}

	result, err := svc.TriageBatch(context.Background(), records, BatchOptions{Now: svcNow})
	require.NoError(t, err)

	assert.Empty(t, result.Queue.Top)
	require.Len(t, result.Queue.Blocked, 1)
	blocked := result.Queue.Blocked[0]
	assert.Equal(t, "m1", blocked.MessageID)
	assert.Len(t, blocked.Flags, 2)
	assert.Equal(t, "pii guardrail: ssn", blocked.Reason)
	assert.Equal(t, 1, result.Queue.Summary.Blocked)
}

func TestTriageBatchDNDDefersAndSkipsDrafting(t *testing.T) {
	drafter := &stubDrafter{draft: &core.Draft{DraftRef: "never"}}
	dnd := config.DNDConfig{Enabled: true, OverrideScore: 85}
	svc := newTestService(drafter, nil, dnd, svcBatchConfig())

	records := []core.EmailRecord{
		svcEmail("m1", "support@client.net", "Question", "Could you confirm the shipment date?"),
	}

	result, err := svc.TriageBatch(context.Background(), records, BatchOptions{Now: svcNow})
	require.NoError(t, err)

	assert.Empty(t, result.Queue.Top)
	require.Len(t, result.Queue.Deferred, 1)
	item := result.Queue.Deferred[0]
	assert.True(t, item.Deferred)
	assert.Empty(t, item.DraftRef)
	assert.Equal(t, 0, drafter.callCount())
	assert.Contains(t, result.Queue.Warnings, "1 items deferred by do-not-disturb")
}

func TestTriageBatchCollapsesThread(t *testing.T) {
	svc := newTestService(nil, nil, config.DNDConfig{}, svcBatchConfig())

	older := svcEmail("m1", "dev@company.com", "Rollout plan", "First draft attached.")
	older.ThreadID = "T1"
	older.ReceivedAt = svcNow.Add(-3 * time.Hour)
	newer := svcEmail("m2", "dev@company.com", "Re: Rollout plan", "Updated plan attached.")
	newer.ThreadID = "T1"
	newer.ReceivedAt = svcNow.Add(-1 * time.Hour)

	result, err := svc.TriageBatch(context.Background(), []core.EmailRecord{older, newer}, BatchOptions{Now: svcNow})
	require.NoError(t, err)

	require.Len(t, result.Queue.Top, 1)
	assert.Equal(t, "m2", result.Queue.Top[0].MessageID)
	assert.Equal(t, 1, result.Queue.Summary.TotalProcessed)
	assert.Contains(t, result.Queue.Warnings, "1 superseded messages collapsed: m1")
}

func TestTriageBatchRejectsOversize(t *testing.T) {
	batch := svcBatchConfig()
	batch.MaxBatchSize = 2
	svc := newTestService(nil, nil, config.DNDConfig{}, batch)

	records := []core.EmailRecord{
		svcEmail("m1", "a@company.com", "one", "body"),
		svcEmail("m2", "b@company.com", "two", "body"),
		svcEmail("m3", "c@company.com", "three", "body"),
	}

	_, err := svc.TriageBatch(context.Background(), records, BatchOptions{Now: svcNow})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBatchTooLarge))

	// The caller can explicitly override the limit.
	result, err := svc.TriageBatch(context.Background(), records, BatchOptions{Now: svcNow, AllowOversize: true})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Queue.Summary.TotalProcessed)
}

func TestTriageBatchNeedsClarification(t *testing.T) {
	drafter := &stubDrafter{draft: &core.Draft{
		DraftRef:           "draft-q",
		Body:               "Happy to help once I know which order you mean.",
		Recipients:         []string{"support@client.net"},
		NeedsClarification: true,
		Questions:          []string{"Which order number?"},
	}}
	svc := newTestService(drafter, nil, config.DNDConfig{}, svcBatchConfig())

	records := []core.EmailRecord{
		svcEmail("m1", "support@client.net", "Order issue", "Could you fix my order?"),
	}

	result, err := svc.TriageBatch(context.Background(), records, BatchOptions{Now: svcNow})
	require.NoError(t, err)

	require.Len(t, result.Queue.Top, 1)
	assert.Equal(t, core.DecisionNeedsClarification, result.Queue.Top[0].Decision)
	assert.Equal(t, 1, result.Queue.Summary.NeedsClarification)
}

func TestTriageBatchDraftFailureDegrades(t *testing.T) {
	drafter := &stubDrafter{err: errors.New("provider unavailable")}
	svc := newTestService(drafter, nil, config.DNDConfig{}, svcBatchConfig())

	records := []core.EmailRecord{
		svcEmail("m1", "support@client.net", "Order issue", "Could you fix my order?"),
	}

	result, err := svc.TriageBatch(context.Background(), records, BatchOptions{Now: svcNow})
	require.NoError(t, err)

	require.Len(t, result.Queue.Top, 1)
	item := result.Queue.Top[0]
	assert.Empty(t, item.DraftRef)
	assert.Equal(t, core.DecisionAutoQueued, item.Decision)
	assert.Contains(t, result.Queue.Warnings, "drafting failed for m1: provider unavailable")
}

func TestTriageBatchDegradedRecordWarning(t *testing.T) {
	svc := newTestService(nil, nil, config.DNDConfig{}, svcBatchConfig())

	records := []core.EmailRecord{
		svcEmail("m1", "", "no sender", "body text"),
	}

	result, err := svc.TriageBatch(context.Background(), records, BatchOptions{Now: svcNow})
	require.NoError(t, err)

	require.Len(t, result.Queue.Top, 1)
	assert.Equal(t, core.SenderSpamSuspect, result.Queue.Top[0].SenderClass)
	assert.Contains(t, result.Queue.Warnings, "1 degraded records triaged with reduced confidence")
}

func TestTriageBatchOrderIndependent(t *testing.T) {
	records := []core.EmailRecord{
		svcEmail("m1", "ceo@company.com", "Urgent: numbers", "Please send the numbers asap."),
		svcEmail("m2", "noreply@service.com", "Weekly newsletter", "your digest is here"),
		svcEmail("m3", "support@client.net", "Question", "Could you confirm receipt?"),
		svcEmail("m4", "billing@vendor.io", "Invoice attached", "payment due"),
	}

	svc := newTestService(nil, nil, config.DNDConfig{}, svcBatchConfig())
	baseline, err := svc.TriageBatch(context.Background(), records, BatchOptions{Now: svcNow})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		shuffled := append([]core.EmailRecord(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		result, err := svc.TriageBatch(context.Background(), shuffled, BatchOptions{Now: svcNow})
		require.NoError(t, err)
		assert.Equal(t, baseline, result)
	}
}

func TestTriageBatchSenderCacheHitOverridesClass(t *testing.T) {
	cache := newStubCache()
	cache.entries["friend@elsewhere.org"] = &core.SenderCacheEntry{
		Sender:    "friend@elsewhere.org",
		Class:     core.SenderVIP,
		ExpiresAt: svcNow.Add(time.Hour),
	}
	svc := newTestService(nil, cache, config.DNDConfig{}, svcBatchConfig())

	records := []core.EmailRecord{
		svcEmail("m1", "friend@elsewhere.org", "Hello", "just checking in"),
	}

	result, err := svc.TriageBatch(context.Background(), records, BatchOptions{Now: svcNow})
	require.NoError(t, err)

	require.Len(t, result.Queue.Top, 1)
	assert.Equal(t, core.SenderVIP, result.Queue.Top[0].SenderClass)
}

func TestTriageBatchSenderCacheMissStoresEntry(t *testing.T) {
	cache := newStubCache()
	svc := newTestService(nil, cache, config.DNDConfig{}, svcBatchConfig())

	records := []core.EmailRecord{
		svcEmail("m1", "support@client.net", "Hello", "just checking in"),
	}

	_, err := svc.TriageBatch(context.Background(), records, BatchOptions{Now: svcNow})
	require.NoError(t, err)

	require.Contains(t, cache.entries, "support@client.net")
	assert.Equal(t, core.SenderCustomer, cache.entries["support@client.net"].Class)
}

func TestTriageBatchSenderCacheErrorFallsBack(t *testing.T) {
	cache := newStubCache()
	cache.getErr = errors.New("cache down")
	svc := newTestService(nil, cache, config.DNDConfig{}, svcBatchConfig())

	records := []core.EmailRecord{
		svcEmail("m1", "support@client.net", "Hello", "just checking in"),
	}

	result, err := svc.TriageBatch(context.Background(), records, BatchOptions{Now: svcNow})
	require.NoError(t, err)

	require.Len(t, result.Queue.Top, 1)
	assert.Equal(t, core.SenderCustomer, result.Queue.Top[0].SenderClass)
}

func TestTriageOneSingleRecord(t *testing.T) {
	svc := newTestService(nil, nil, config.DNDConfig{}, svcBatchConfig())

	item := svc.TriageOne(context.Background(), svcEmail("m1", "ceo@company.com", "Urgent: contract review", "Please review the contract."))

	assert.Equal(t, "m1", item.MessageID)
	assert.Equal(t, core.SenderVIP, item.SenderClass)
	assert.Equal(t, core.CategoryLegal, item.Category)
	assert.Equal(t, core.DecisionNeedsApproval, item.Decision)
}
