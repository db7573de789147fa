package triage

import (
	"sort"
	"time"

	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/textutil"
)

// Resolved is one logical message surviving conflict resolution
type Resolved struct {
	Record         core.EmailRecord
	ThreadDepth    int
	DuplicateCount int
}

// Resolution is the outcome of the whole-batch reduction. Superseded lists
// the message IDs that were collapsed away; they are reported, not silently
// scored.
type Resolution struct {
	Active     []Resolved
	Superseded []string
}

// ConflictResolver collapses duplicate and overlapping records before any
// per-message classification runs. It is a pure, order-independent
// reduction: only timestamps (with message-ID tiebreaks) decide which
// record of a group survives.
type ConflictResolver struct {
	consolidateBursts bool
	burstWindow       time.Duration
}

// NewConflictResolver builds a resolver from the batch configuration
func NewConflictResolver(cfg config.BatchConfig) *ConflictResolver {
	return &ConflictResolver{
		consolidateBursts: cfg.ConsolidateBursts,
		burstWindow:       cfg.BurstWindow,
	}
}

// Resolve reduces the batch to one record per thread, then optionally
// consolidates same-sender same-subject bursts into a single logical item
// carrying a duplicate count.
func (r *ConflictResolver) Resolve(records []core.EmailRecord) Resolution {
	byThread := make(map[string][]core.EmailRecord)
	for _, rec := range records {
		key := rec.ThreadID
		if key == "" {
			// No thread identifier: the message is its own thread.
			key = "msg:" + rec.MessageID
		}
		byThread[key] = append(byThread[key], rec)
	}

	var resolution Resolution
	active := make([]Resolved, 0, len(byThread))
	for _, group := range byThread {
		latest := newest(group)
		for _, rec := range group {
			if rec.MessageID != latest.MessageID {
				resolution.Superseded = append(resolution.Superseded, rec.MessageID)
			}
		}
		active = append(active, Resolved{
			Record:      latest,
			ThreadDepth: len(group) - 1,
		})
	}

	if r.consolidateBursts {
		active = r.consolidate(active, &resolution)
	}

	// Canonical output order, independent of input order.
	sort.Slice(active, func(i, j int) bool {
		a, b := active[i].Record, active[j].Record
		if !a.ReceivedAt.Equal(b.ReceivedAt) {
			return a.ReceivedAt.Before(b.ReceivedAt)
		}
		return a.MessageID < b.MessageID
	})
	sort.Strings(resolution.Superseded)

	resolution.Active = active
	return resolution
}

// consolidate folds same-sender same-subject records arriving within the
// burst window into the most recent one, which carries the count.
func (r *ConflictResolver) consolidate(items []Resolved, resolution *Resolution) []Resolved {
	type burstKey struct {
		sender  string
		subject string
	}

	groups := make(map[burstKey][]Resolved)
	for _, item := range items {
		key := burstKey{
			sender:  textutil.NormalizeForScan(item.Record.Sender),
			subject: textutil.NormalizeForScan(item.Record.Subject),
		}
		groups[key] = append(groups[key], item)
	}

	out := make([]Resolved, 0, len(items))
	for _, group := range groups {
		if len(group) < 2 || !withinWindow(group, r.burstWindow) {
			out = append(out, group...)
			continue
		}
		keep := group[0]
		for _, item := range group[1:] {
			if later(item.Record, keep.Record) {
				keep = item
			}
		}
		for _, item := range group {
			if item.Record.MessageID != keep.Record.MessageID {
				resolution.Superseded = append(resolution.Superseded, item.Record.MessageID)
			}
			if item.ThreadDepth > keep.ThreadDepth {
				keep.ThreadDepth = item.ThreadDepth
			}
		}
		keep.DuplicateCount = len(group)
		out = append(out, keep)
	}
	return out
}

func newest(group []core.EmailRecord) core.EmailRecord {
	keep := group[0]
	for _, rec := range group[1:] {
		if later(rec, keep) {
			keep = rec
		}
	}
	return keep
}

// later orders records by timestamp with a message-ID tiebreak so the pick
// is deterministic for equal timestamps.
func later(a, b core.EmailRecord) bool {
	if !a.ReceivedAt.Equal(b.ReceivedAt) {
		return a.ReceivedAt.After(b.ReceivedAt)
	}
	return a.MessageID > b.MessageID
}

func withinWindow(group []Resolved, window time.Duration) bool {
	min, max := group[0].Record.ReceivedAt, group[0].Record.ReceivedAt
	for _, item := range group[1:] {
		t := item.Record.ReceivedAt
		if t.Before(min) {
			min = t
		}
		if t.After(max) {
			max = t
		}
	}
	return max.Sub(min) <= window
}
