package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
)

func testIntentConfig() config.IntentConfig {
	return config.IntentConfig{
		Meeting:      []string{"meeting", "schedule a", "calendar"},
		Complaint:    []string{"complaint", "unacceptable", "frustrated"},
		Question:     []string{"?", "question", "wondering"},
		Request:      []string{"please", "could you", "action required", "signature needed"},
		Notification: []string{"newsletter", "digest", "automated"},
		ReplyNeeded:  []string{"awaiting your reply", "any update"},
		SpamKeywords: []string{"winner", "lottery", "free money", "click here"},
		SpamDensity:  0.05,
	}
}

func testUrgencyConfig() config.UrgencyConfig {
	return config.UrgencyConfig{
		Strong:         []string{"urgent", "asap", "emergency"},
		Mild:           []string{"deadline", "today", "reminder"},
		PriorityLabels: []string{"important", "urgent"},
	}
}

func record(subject, body string, labels ...string) *core.EmailRecord {
	return &core.EmailRecord{
		MessageID: "m1",
		Sender:    "someone@example.com",
		Subject:   subject,
		Body:      body,
		Labels:    labels,
	}
}

func TestIntentDetectorGroupPrecedence(t *testing.T) {
	detector := NewIntentDetector(testIntentConfig(), testUrgencyConfig())

	tests := []struct {
		name    string
		subject string
		body    string
		want    core.Intent
	}{
		{"meeting beats question", "Schedule a call?", "does tomorrow work", core.IntentMeeting},
		{"complaint beats request", "This is unacceptable", "please fix it", core.IntentComplaint},
		{"question beats request", "One question", "please have a look", core.IntentQuestion},
		{"request alone", "Contract", "signature needed by friday", core.IntentRequest},
		{"notification", "Weekly newsletter", "your digest is here", core.IntentNotification},
		{"reply needed", "Checking in", "any update on the proposal", core.IntentReplyNeeded},
		{"no match is informational", "FYI", "the office closes early", core.IntentInformational},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent, _, _ := detector.Detect(record(tt.subject, tt.body))
			assert.Equal(t, tt.want, intent)
		})
	}
}

func TestIntentDetectorSpamDensity(t *testing.T) {
	detector := NewIntentDetector(testIntentConfig(), testUrgencyConfig())

	// Three spam keywords in a short body with no intent keywords.
	intent, keywords, _ := detector.Detect(record(
		"winner",
		"lottery free money awaits you",
	))
	assert.Equal(t, core.IntentSpam, intent)
	assert.Contains(t, keywords, "winner")
	assert.Contains(t, keywords, "lottery")

	// The same keywords diluted in a long body stay informational.
	long := "the quarterly report covers revenue growth staffing plans office moves "
	for i := 0; i < 6; i++ {
		long += long
	}
	intent, _, _ = detector.Detect(record("report", long+" winner"))
	assert.Equal(t, core.IntentInformational, intent)
}

func TestIntentDetectorEmptyContent(t *testing.T) {
	detector := NewIntentDetector(testIntentConfig(), testUrgencyConfig())

	intent, keywords, urgency := detector.Detect(record("", ""))
	assert.Equal(t, core.IntentInformational, intent)
	assert.Nil(t, keywords)
	assert.Equal(t, core.UrgencyNone, urgency)
}

func TestDetectUrgency(t *testing.T) {
	detector := NewIntentDetector(testIntentConfig(), testUrgencyConfig())

	tests := []struct {
		name    string
		subject string
		body    string
		labels  []string
		want    core.Urgency
	}{
		{"strong keyword", "URGENT: server down", "", nil, core.UrgencyHigh},
		{"two mild keywords", "reminder", "deadline is near", nil, core.UrgencyHigh},
		{"mild plus label", "reminder", "", []string{"important"}, core.UrgencyHigh},
		{"single mild keyword", "deadline approaching", "", nil, core.UrgencyLow},
		{"label only", "hello", "", []string{"urgent"}, core.UrgencyLow},
		{"nothing", "hello", "how are you", nil, core.UrgencyNone},
		{"unknown label ignored", "hello", "", []string{"archive"}, core.UrgencyNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, urgency := detector.Detect(record(tt.subject, tt.body, tt.labels...))
			assert.Equal(t, tt.want, urgency)
		})
	}
}

func TestExtractKeywordsDeterministic(t *testing.T) {
	detector := NewIntentDetector(testIntentConfig(), testUrgencyConfig())

	rec := record("Urgent meeting today", "please join the meeting, deadline looms")
	_, first, _ := detector.Detect(rec)
	for i := 0; i < 5; i++ {
		_, again, _ := detector.Detect(rec)
		assert.Equal(t, first, again)
	}

	// Sorted and deduplicated.
	assert.Equal(t, []string{"deadline", "meeting", "today", "urgent"}, first)
}
