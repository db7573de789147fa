// Package queue assembles the final decision queue and summary metrics for
// one batch run. It is a pure aggregation step with no decision logic of
// its own: running it twice over the same items yields identical output.
package queue

import (
	"fmt"
	"sort"

	"github.com/mikey/inbox-triage/internal/core"
)

// Builder folds triaged queue items into the batch output
type Builder struct {
	topN            int
	minutesPerEmail int
}

// NewBuilder creates a queue builder
func NewBuilder(topN, minutesPerEmail int) *Builder {
	return &Builder{topN: topN, minutesPerEmail: minutesPerEmail}
}

// Build produces the queue and metrics for a batch. The input items are
// not mutated; ordering work happens on a copy.
func (b *Builder) Build(items []core.QueueItem, warnings []string) core.TriageResult {
	var (
		summary  core.BatchSummary
		deferred []core.QueueItem
		blocked  []core.BlockedItem
		active   []core.QueueItem
	)

	metrics := core.BatchMetrics{
		ByCategory: make(map[core.Category]int),
	}

	escalated := 0
	autoHandled := 0

	for _, item := range items {
		summary.TotalProcessed++
		metrics.TotalEmails++
		metrics.ByCategory[item.Category]++

		switch item.Score.Band {
		case core.BandHigh:
			summary.HighPriority++
		case core.BandMedium:
			summary.MediumPriority++
		default:
			summary.LowPriority++
		}

		if item.DraftRef != "" {
			summary.DraftsCreated++
		}
		if item.Category == core.CategoryWaiting {
			summary.FollowUps++
		}
		if item.SenderClass == core.SenderVIP {
			metrics.VIPEmails++
		}
		if item.Escalated {
			escalated++
		}

		switch item.Decision {
		case core.DecisionBlocked:
			summary.Blocked++
			blocked = append(blocked, core.BlockedItem{
				MessageID: item.MessageID,
				Reason:    blockReason(item.GuardrailFlags),
				Flags:     item.GuardrailFlags,
			})
			continue
		case core.DecisionNeedsApproval:
			summary.NeedsApproval++
			metrics.ApprovalRequired++
		case core.DecisionNeedsClarification:
			summary.NeedsClarification++
		case core.DecisionAutoQueued:
			if !item.Deferred {
				autoHandled++
			}
		}

		if item.Deferred {
			deferred = append(deferred, item)
			continue
		}
		active = append(active, item)
	}

	metrics.TimeSavedMinutes = autoHandled * b.minutesPerEmail

	sortByPriority(active)
	sortByPriority(deferred)

	top := active
	if b.topN > 0 && len(top) > b.topN {
		top = top[:b.topN]
	}

	sort.Slice(blocked, func(i, j int) bool {
		return blocked[i].MessageID < blocked[j].MessageID
	})

	outWarnings := append([]string(nil), warnings...)
	if escalated > 0 {
		outWarnings = append(outWarnings, fmt.Sprintf("%d legal/finance items escalated for approval", escalated))
	}
	if n := len(deferred); n > 0 {
		outWarnings = append(outWarnings, fmt.Sprintf("%d items deferred by do-not-disturb", n))
	}

	return core.TriageResult{
		Queue: core.TriageQueue{
			Summary:  summary,
			Top:      top,
			Deferred: deferred,
			Blocked:  blocked,
			Warnings: outWarnings,
		},
		Metrics: metrics,
	}
}

// sortByPriority orders items by descending score; ties go to the earlier
// received timestamp, then the message ID for a total order.
func sortByPriority(items []core.QueueItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score.Score != items[j].Score.Score {
			return items[i].Score.Score > items[j].Score.Score
		}
		if !items[i].ReceivedAt.Equal(items[j].ReceivedAt) {
			return items[i].ReceivedAt.Before(items[j].ReceivedAt)
		}
		return items[i].MessageID < items[j].MessageID
	})
}

func blockReason(flags []core.GuardrailFlag) string {
	for _, f := range flags {
		if f.Severity == core.SeverityBlock {
			return fmt.Sprintf("%s guardrail: %s", f.Kind, f.MatchedPattern)
		}
	}
	return "blocked by guardrail"
}
