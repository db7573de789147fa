package triage

import (
	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/rules"
	"github.com/mikey/inbox-triage/internal/textutil"
)

// Categorizer assigns exactly one category per message. Candidate signals
// are resolved by the fixed precedence LEGAL > FINANCE > SPAM > ACTION >
// WAITING > FYI, encoded as rule priorities. Legal/finance keyword
// detection happens here only and is deliberately conservative: these
// categories route to mandatory escalation downstream, so a false positive
// costs an approval while a false negative costs an unreviewed commitment.
type Categorizer struct {
	table *rules.Table[categoryInput, core.Category]
}

type categoryInput struct {
	intent core.Intent
	text   string
}

// NewCategorizer builds a categorizer from the category keyword configuration
func NewCategorizer(cfg config.CategoryConfig) *Categorizer {
	legal := normalizeAll(cfg.Legal)
	finance := normalizeAll(cfg.Finance)
	waiting := normalizeAll(cfg.Waiting)

	table := rules.NewTable(
		rules.Rule[categoryInput, core.Category]{
			Name:     "legal-content",
			Priority: 60,
			When:     func(in categoryInput) bool { return containsAny(in.text, legal) },
			Result:   core.CategoryLegal,
		},
		rules.Rule[categoryInput, core.Category]{
			Name:     "finance-content",
			Priority: 50,
			When:     func(in categoryInput) bool { return containsAny(in.text, finance) },
			Result:   core.CategoryFinance,
		},
		rules.Rule[categoryInput, core.Category]{
			Name:     "spam-intent",
			Priority: 40,
			When:     func(in categoryInput) bool { return in.intent == core.IntentSpam },
			Result:   core.CategorySpam,
		},
		rules.Rule[categoryInput, core.Category]{
			Name:     "action-intent",
			Priority: 30,
			When:     func(in categoryInput) bool { return requiresAction(in.intent) },
			Result:   core.CategoryAction,
		},
		rules.Rule[categoryInput, core.Category]{
			Name:     "waiting-content",
			Priority: 20,
			When:     func(in categoryInput) bool { return containsAny(in.text, waiting) },
			Result:   core.CategoryWaiting,
		},
	)

	return &Categorizer{table: table}
}

// Categorize maps an intent plus content signals to a single category.
// With no signal at all the category defaults to FYI, never an undefined
// value.
func (c *Categorizer) Categorize(intent core.Intent, subject, body string) core.Category {
	in := categoryInput{
		intent: intent,
		text:   textutil.NormalizeForScan(subject + " " + body),
	}
	category, _, matched := c.table.Evaluate(in)
	if !matched {
		return core.CategoryFYI
	}
	return category
}
