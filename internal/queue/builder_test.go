package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/inbox-triage/internal/core"
)

var baseTime = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func item(id string, score int, band core.PriorityBand) core.QueueItem {
	return core.QueueItem{
		MessageID:  id,
		Sender:     "someone@company.com",
		Subject:    "subject " + id,
		ReceivedAt: baseTime,
		Category:   core.CategoryFYI,
		Score:      core.PriorityScore{MessageID: id, Score: score, Band: band},
		Decision:   core.DecisionAutoQueued,
	}
}

func TestBuildSummaryCounters(t *testing.T) {
	builder := NewBuilder(10, 5)

	high := item("m1", 80, core.BandHigh)
	high.Decision = core.DecisionNeedsApproval
	high.Escalated = true
	high.Category = core.CategoryLegal

	medium := item("m2", 50, core.BandMedium)
	medium.DraftRef = "draft-1"

	low := item("m3", 10, core.BandLow)
	low.Category = core.CategoryWaiting

	clarify := item("m4", 45, core.BandMedium)
	clarify.Decision = core.DecisionNeedsClarification

	blocked := item("m5", 90, core.BandHigh)
	blocked.Decision = core.DecisionBlocked
	blocked.GuardrailFlags = []core.GuardrailFlag{{
		Kind: core.FlagPII, Severity: core.SeverityBlock, MatchedPattern: "ssn",
	}}

	result := builder.Build([]core.QueueItem{high, medium, low, clarify, blocked}, nil)

	summary := result.Queue.Summary
	assert.Equal(t, 5, summary.TotalProcessed)
	assert.Equal(t, 2, summary.HighPriority)
	assert.Equal(t, 2, summary.MediumPriority)
	assert.Equal(t, 1, summary.LowPriority)
	assert.Equal(t, 1, summary.DraftsCreated)
	assert.Equal(t, 1, summary.NeedsApproval)
	assert.Equal(t, 1, summary.NeedsClarification)
	assert.Equal(t, 1, summary.Blocked)
	assert.Equal(t, 1, summary.FollowUps)

	assert.Equal(t, 5, result.Metrics.TotalEmails)
	assert.Equal(t, 1, result.Metrics.ApprovalRequired)
	assert.Equal(t, 2, result.Metrics.ByCategory[core.CategoryFYI])
}

func TestBuildBlockedExcludedFromQueue(t *testing.T) {
	builder := NewBuilder(10, 5)

	blocked := item("m1", 95, core.BandHigh)
	blocked.Decision = core.DecisionBlocked
	blocked.Deferred = true
	blocked.GuardrailFlags = []core.GuardrailFlag{
		{Kind: core.FlagTone, Severity: core.SeverityWarn, MatchedPattern: "unprofessional-slang"},
		{Kind: core.FlagDomain, Severity: core.SeverityBlock, MatchedPattern: "blocked-domain"},
	}

	result := builder.Build([]core.QueueItem{blocked, item("m2", 10, core.BandLow)}, nil)

	assert.Len(t, result.Queue.Top, 1)
	assert.Empty(t, result.Queue.Deferred)
	require.Len(t, result.Queue.Blocked, 1)
	assert.Equal(t, "m1", result.Queue.Blocked[0].MessageID)
	// Reason comes from the first BLOCK-severity flag, not the first flag.
	assert.Equal(t, "domain guardrail: blocked-domain", result.Queue.Blocked[0].Reason)
}

func TestBuildTopOrderingAndTieBreaks(t *testing.T) {
	builder := NewBuilder(10, 5)

	a := item("m-b", 50, core.BandMedium)
	b := item("m-a", 50, core.BandMedium)
	c := item("m-c", 50, core.BandMedium)
	c.ReceivedAt = baseTime.Add(-time.Hour)
	d := item("m-d", 80, core.BandHigh)

	result := builder.Build([]core.QueueItem{a, b, c, d}, nil)

	got := make([]string, 0, len(result.Queue.Top))
	for _, it := range result.Queue.Top {
		got = append(got, it.MessageID)
	}
	// Highest score first, then earlier arrival, then message ID.
	assert.Equal(t, []string{"m-d", "m-c", "m-a", "m-b"}, got)
}

func TestBuildTopNTruncation(t *testing.T) {
	builder := NewBuilder(2, 5)

	items := []core.QueueItem{
		item("m1", 30, core.BandLow),
		item("m2", 70, core.BandHigh),
		item("m3", 50, core.BandMedium),
	}

	result := builder.Build(items, nil)

	require.Len(t, result.Queue.Top, 2)
	assert.Equal(t, "m2", result.Queue.Top[0].MessageID)
	assert.Equal(t, "m3", result.Queue.Top[1].MessageID)
	// Truncation only limits the displayed queue; the summary still covers
	// every processed item.
	assert.Equal(t, 3, result.Queue.Summary.TotalProcessed)
}

func TestBuildTimeSavedCountsAutoQueuedOnly(t *testing.T) {
	builder := NewBuilder(10, 5)

	auto := item("m1", 20, core.BandLow)

	deferredAuto := item("m2", 20, core.BandLow)
	deferredAuto.Deferred = true

	approval := item("m3", 80, core.BandHigh)
	approval.Decision = core.DecisionNeedsApproval

	result := builder.Build([]core.QueueItem{auto, deferredAuto, approval}, nil)

	assert.Equal(t, 5, result.Metrics.TimeSavedMinutes)
}

func TestBuildDeferredKeptSeparate(t *testing.T) {
	builder := NewBuilder(10, 5)

	night := item("m1", 60, core.BandMedium)
	night.Deferred = true
	day := item("m2", 30, core.BandLow)

	result := builder.Build([]core.QueueItem{night, day}, nil)

	require.Len(t, result.Queue.Top, 1)
	assert.Equal(t, "m2", result.Queue.Top[0].MessageID)
	require.Len(t, result.Queue.Deferred, 1)
	assert.Equal(t, "m1", result.Queue.Deferred[0].MessageID)
}

func TestBuildWarnings(t *testing.T) {
	builder := NewBuilder(10, 5)

	legal := item("m1", 80, core.BandHigh)
	legal.Category = core.CategoryLegal
	legal.Decision = core.DecisionNeedsApproval
	legal.Escalated = true

	finance := item("m2", 70, core.BandHigh)
	finance.Category = core.CategoryFinance
	finance.Decision = core.DecisionNeedsApproval
	finance.Escalated = true

	deferred := item("m3", 20, core.BandLow)
	deferred.Deferred = true

	result := builder.Build([]core.QueueItem{legal, finance, deferred}, []string{"existing warning"})

	assert.Equal(t, []string{
		"existing warning",
		"2 legal/finance items escalated for approval",
		"1 items deferred by do-not-disturb",
	}, result.Queue.Warnings)
}

func TestBuildIdempotent(t *testing.T) {
	builder := NewBuilder(3, 5)

	items := []core.QueueItem{
		item("m1", 30, core.BandLow),
		item("m2", 70, core.BandHigh),
		item("m3", 70, core.BandHigh),
		item("m4", 50, core.BandMedium),
	}

	first := builder.Build(items, []string{"w"})
	second := builder.Build(items, []string{"w"})

	assert.Equal(t, first, second)
}

func TestBuildEmptyBatch(t *testing.T) {
	builder := NewBuilder(10, 5)

	result := builder.Build(nil, nil)

	assert.Equal(t, 0, result.Queue.Summary.TotalProcessed)
	assert.Empty(t, result.Queue.Top)
	assert.Empty(t, result.Queue.Blocked)
	assert.Empty(t, result.Queue.Warnings)
	assert.Equal(t, 0, result.Metrics.TimeSavedMinutes)
}
