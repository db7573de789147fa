package core

import (
	"time"
)

// SenderClass describes where a sender sits in the triage hierarchy
type SenderClass string

const (
	SenderVIP         SenderClass = "vip"
	SenderTeam        SenderClass = "team"
	SenderVendor      SenderClass = "vendor"
	SenderCustomer    SenderClass = "customer"
	SenderNoReply     SenderClass = "no_reply"
	SenderSpamSuspect SenderClass = "spam_suspect"
)

// Intent is the primary intent detected in a message
type Intent string

const (
	IntentQuestion      Intent = "question"
	IntentRequest       Intent = "request"
	IntentMeeting       Intent = "meeting"
	IntentComplaint     Intent = "complaint"
	IntentNotification  Intent = "notification"
	IntentReplyNeeded   Intent = "reply_needed"
	IntentInformational Intent = "informational"
	IntentSpam          Intent = "spam"
)

// Urgency is computed independently of intent and only feeds the scorer
type Urgency int

const (
	UrgencyNone Urgency = iota
	UrgencyLow
	UrgencyHigh
)

func (u Urgency) String() string {
	switch u {
	case UrgencyHigh:
		return "high"
	case UrgencyLow:
		return "low"
	default:
		return "none"
	}
}

// Category is the single bucket assigned to a message. Ties are broken by
// the fixed precedence LEGAL > FINANCE > SPAM > ACTION > WAITING > FYI.
type Category string

const (
	CategoryLegal   Category = "legal"
	CategoryFinance Category = "finance"
	CategorySpam    Category = "spam"
	CategoryAction  Category = "action"
	CategoryWaiting Category = "waiting"
	CategoryFYI     Category = "fyi"
)

// PriorityBand partitions the 0-100 score space
type PriorityBand string

const (
	BandHigh   PriorityBand = "high"
	BandMedium PriorityBand = "medium"
	BandLow    PriorityBand = "low"
)

// FlagKind identifies which guardrail check produced a flag
type FlagKind string

const (
	FlagPII    FlagKind = "pii"
	FlagDomain FlagKind = "domain"
	FlagTone   FlagKind = "tone"
	FlagRisk   FlagKind = "risk"
)

// Severity of a guardrail flag
type Severity string

const (
	SeverityWarn  Severity = "warn"
	SeverityBlock Severity = "block"
)

// Decision is the final disposition of a queue item
type Decision string

const (
	DecisionAutoQueued         Decision = "auto_queued"
	DecisionNeedsApproval      Decision = "needs_approval"
	DecisionBlocked            Decision = "blocked"
	DecisionNeedsClarification Decision = "needs_clarification"
)

// EmailRecord is the normalized input message. It is created by the
// ingestion collaborator and never mutated by the pipeline.
type EmailRecord struct {
	MessageID   string
	ThreadID    string
	Sender      string
	DisplayName string
	Subject     string
	Body        string
	ReceivedAt  time.Time
	Labels      []string
}

// SenderProfile is derived from the sender address plus configuration.
// There is no per-sender mutable state behind it.
type SenderProfile struct {
	Address string
	Domain  string
	Class   SenderClass
}

// ClassificationResult carries the per-message classification outputs
type ClassificationResult struct {
	MessageID   string
	SenderClass SenderClass
	Intent      Intent
	Keywords    []string
	Urgency     Urgency
}

// ScoreFactor is one (factor, contribution) pair in a reasoning trail
type ScoreFactor struct {
	Factor       string
	Contribution int
}

// PriorityScore is the composite 0-100 score with its reasoning trail.
// The trail is reproducible: identical inputs yield identical trails.
type PriorityScore struct {
	MessageID string
	Score     int
	Band      PriorityBand
	Reasoning []ScoreFactor
}

// GuardrailFlag is a single finding from one guardrail check. Evidence is
// always redacted before it is stored here.
type GuardrailFlag struct {
	Kind           FlagKind
	Severity       Severity
	Evidence       string
	MatchedPattern string
}

// Draft is a reply draft produced by the external drafting collaborator
type Draft struct {
	MessageID          string
	DraftRef           string
	Recipients         []string
	Subject            string
	Body               string
	NeedsClarification bool
	Questions          []string
	Provider           string
}

// QueueItem is the fully triaged decision record for one logical message
type QueueItem struct {
	MessageID      string
	ThreadID       string
	Sender         string
	Subject        string
	ReceivedAt     time.Time
	SenderClass    SenderClass
	Intent         Intent
	Urgency        Urgency
	Category       Category
	Score          PriorityScore
	DraftRef       string
	GuardrailFlags []GuardrailFlag
	Decision       Decision
	Deferred       bool
	DuplicateCount int
	Escalated      bool
}

// HasBlockFlag reports whether any guardrail flag carries BLOCK severity
func (q *QueueItem) HasBlockFlag() bool {
	for _, f := range q.GuardrailFlags {
		if f.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// BatchSummary holds the per-run counters exposed in the queue output
type BatchSummary struct {
	TotalProcessed     int
	HighPriority       int
	MediumPriority     int
	LowPriority        int
	DraftsCreated      int
	NeedsApproval      int
	Blocked            int
	FollowUps          int
	NeedsClarification int
}

// BlockedItem describes one blocked message in the queue output
type BlockedItem struct {
	MessageID string
	Reason    string
	Flags     []GuardrailFlag
}

// TriageQueue is the ordered batch output returned to the caller
type TriageQueue struct {
	Summary  BatchSummary
	Top      []QueueItem
	Deferred []QueueItem
	Blocked  []BlockedItem
	Warnings []string
}

// BatchMetrics is the parallel metrics object. It is derived solely from
// the queue items of one run and owned by the caller.
type BatchMetrics struct {
	TotalEmails      int
	ByCategory       map[Category]int
	VIPEmails        int
	ApprovalRequired int
	TimeSavedMinutes int
}

// TriageResult bundles the queue and metrics for one batch run
type TriageResult struct {
	Queue   TriageQueue
	Metrics BatchMetrics
}

// SenderCacheEntry is the advisory per-sender cache record. It only lets
// the service skip recomputing a profile; it never feeds scoring.
type SenderCacheEntry struct {
	Sender    string
	Class     SenderClass
	LastScore int
	LastSeen  time.Time
	ExpiresAt time.Time
}
