package triage

import (
	"sort"
	"strings"

	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/rules"
	"github.com/mikey/inbox-triage/internal/textutil"
)

// IntentDetector scans subject+body against ordered keyword groups. The
// first matching group wins (MEETING > COMPLAINT > QUESTION > REQUEST >
// NOTIFICATION > REPLY_NEEDED); with no match the intent is INFORMATIONAL
// unless spam keyword density exceeds the configured threshold.
//
// Urgency is a separate signal computed from a distinct keyword set plus
// explicit priority labels on the record; it never changes which intent
// group is chosen.
type IntentDetector struct {
	table          *rules.Table[string, core.Intent]
	groups         map[core.Intent][]string
	spamKeywords   []string
	spamDensity    float64
	urgencyStrong  []string
	urgencyMild    []string
	priorityLabels map[string]struct{}
}

// NewIntentDetector builds a detector from the intent and urgency configuration
func NewIntentDetector(intents config.IntentConfig, urgency config.UrgencyConfig) *IntentDetector {
	groups := map[core.Intent][]string{
		core.IntentMeeting:      normalizeAll(intents.Meeting),
		core.IntentComplaint:    normalizeAll(intents.Complaint),
		core.IntentQuestion:     normalizeAll(intents.Question),
		core.IntentRequest:      normalizeAll(intents.Request),
		core.IntentNotification: normalizeAll(intents.Notification),
		core.IntentReplyNeeded:  normalizeAll(intents.ReplyNeeded),
	}

	groupRule := func(name string, priority int, intent core.Intent) rules.Rule[string, core.Intent] {
		keywords := groups[intent]
		return rules.Rule[string, core.Intent]{
			Name:     name,
			Priority: priority,
			When: func(text string) bool {
				return containsAny(text, keywords)
			},
			Result: intent,
		}
	}

	table := rules.NewTable(
		groupRule("meeting-group", 60, core.IntentMeeting),
		groupRule("complaint-group", 50, core.IntentComplaint),
		groupRule("question-group", 40, core.IntentQuestion),
		groupRule("request-group", 30, core.IntentRequest),
		groupRule("notification-group", 20, core.IntentNotification),
		groupRule("reply-needed-group", 10, core.IntentReplyNeeded),
	)

	return &IntentDetector{
		table:          table,
		groups:         groups,
		spamKeywords:   normalizeAll(intents.SpamKeywords),
		spamDensity:    intents.SpamDensity,
		urgencyStrong:  normalizeAll(urgency.Strong),
		urgencyMild:    normalizeAll(urgency.Mild),
		priorityLabels: toSet(urgency.PriorityLabels),
	}
}

// Detect classifies the intent of a record and extracts keyword evidence.
// Identical input text yields bit-identical output: the keyword list is
// deduplicated and sorted, and nothing here depends on the clock.
func (d *IntentDetector) Detect(record *core.EmailRecord) (core.Intent, []string, core.Urgency) {
	text := textutil.NormalizeForScan(record.Subject + " " + record.Body)
	urgency := d.detectUrgency(text, record.Labels)

	if strings.TrimSpace(text) == "" {
		return core.IntentInformational, nil, urgency
	}

	intent, _, matched := d.table.Evaluate(text)
	if !matched {
		intent = core.IntentInformational
		if d.spamSignal(text) {
			intent = core.IntentSpam
		}
	}

	return intent, d.extractKeywords(text, intent), urgency
}

// detectUrgency derives the urgency signal: any strong keyword is HIGH,
// a mild keyword combined with another mild keyword or an explicit priority
// label is HIGH, a single mild keyword or priority label alone is LOW.
func (d *IntentDetector) detectUrgency(text string, labels []string) core.Urgency {
	if containsAny(text, d.urgencyStrong) {
		return core.UrgencyHigh
	}

	mild := countMatches(text, d.urgencyMild)
	labeled := false
	for _, l := range labels {
		if _, ok := d.priorityLabels[strings.ToLower(strings.TrimSpace(l))]; ok {
			labeled = true
			break
		}
	}

	switch {
	case mild >= 2 || (mild >= 1 && labeled):
		return core.UrgencyHigh
	case mild >= 1 || labeled:
		return core.UrgencyLow
	default:
		return core.UrgencyNone
	}
}

func (d *IntentDetector) spamSignal(text string) bool {
	words := textutil.WordCount(text)
	if words == 0 {
		return false
	}
	hits := countMatches(text, d.spamKeywords)
	return float64(hits)/float64(words) > d.spamDensity
}

// extractKeywords collects every matched keyword across the winning group,
// the urgency sets and the spam set, deduplicated and sorted.
func (d *IntentDetector) extractKeywords(text string, intent core.Intent) []string {
	seen := make(map[string]struct{})
	collect := func(keywords []string) {
		for _, k := range keywords {
			if k != "" && strings.Contains(text, k) {
				seen[k] = struct{}{}
			}
		}
	}

	if group, ok := d.groups[intent]; ok {
		collect(group)
	}
	if intent == core.IntentSpam {
		collect(d.spamKeywords)
	}
	collect(d.urgencyStrong)
	collect(d.urgencyMild)

	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func countMatches(text string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if k != "" && strings.Contains(text, k) {
			n++
		}
	}
	return n
}
