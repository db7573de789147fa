package triage

import (
	"time"

	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
)

// PriorityScorer computes the 0-100 composite priority score. Every factor
// is additive and individually monotonic, so raising urgency (or any other
// factor) with the rest held fixed can never lower the score. The reasoning
// trail lists the factors in a fixed order and is reproducible from the
// same inputs.
type PriorityScorer struct {
	cfg config.ScoringConfig
}

// NewPriorityScorer builds a scorer from the scoring configuration
func NewPriorityScorer(cfg config.ScoringConfig) *PriorityScorer {
	return &PriorityScorer{cfg: cfg}
}

// requiresAction reports whether the intent asks something of the recipient
func requiresAction(intent core.Intent) bool {
	switch intent {
	case core.IntentQuestion, core.IntentRequest, core.IntentMeeting,
		core.IntentComplaint, core.IntentReplyNeeded:
		return true
	}
	return false
}

// Score computes the priority of one message. The reference time comes from
// the batch, never from the clock, so scoring stays deterministic.
func (s *PriorityScorer) Score(
	messageID string,
	class core.SenderClass,
	urgency core.Urgency,
	intent core.Intent,
	received time.Time,
	now time.Time,
	threadDepth int,
) core.PriorityScore {
	reasoning := make([]core.ScoreFactor, 0, 5)
	total := 0

	add := func(factor string, contribution int) {
		reasoning = append(reasoning, core.ScoreFactor{Factor: factor, Contribution: contribution})
		total += contribution
	}

	add("sender_class", s.cfg.ClassWeights[string(class)])
	add("urgency", s.urgencyWeight(urgency))

	action := requiresAction(intent)
	if action {
		add("action_required", s.cfg.ActionWeight)
	} else {
		add("action_required", 0)
	}

	// Older unanswered action items climb, capped so stale mail cannot
	// dominate the queue on age alone.
	age := 0
	if action && now.After(received) {
		days := int(now.Sub(received).Hours() / 24)
		age = days * s.cfg.AgeWeightPerDay
		if age > s.cfg.AgeCap {
			age = s.cfg.AgeCap
		}
	}
	add("message_age", age)

	depth := threadDepth * s.cfg.ThreadDepthWeight
	if depth > s.cfg.ThreadDepthCap {
		depth = s.cfg.ThreadDepthCap
	}
	if depth < 0 {
		depth = 0
	}
	add("thread_depth", depth)

	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}

	return core.PriorityScore{
		MessageID: messageID,
		Score:     total,
		Band:      s.Band(total),
		Reasoning: reasoning,
	}
}

func (s *PriorityScorer) urgencyWeight(u core.Urgency) int {
	switch u {
	case core.UrgencyHigh:
		return s.cfg.UrgencyWeightHigh
	case core.UrgencyLow:
		return s.cfg.UrgencyWeightLow
	default:
		return s.cfg.UrgencyWeightNone
	}
}

// Band maps a score to its priority band
func (s *PriorityScorer) Band(score int) core.PriorityBand {
	switch {
	case score >= s.cfg.HighThreshold:
		return core.BandHigh
	case score >= s.cfg.MediumThreshold:
		return core.BandMedium
	default:
		return core.BandLow
	}
}
