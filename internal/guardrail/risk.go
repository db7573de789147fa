package guardrail

import (
	"regexp"
	"strings"

	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/textutil"
)

// riskCheck is the legacy risk assessment, kept as its own independently
// toggleable check. It looks for commitment phrasing and ambiguous
// deadlines in outbound content; findings only WARN.
type riskCheck struct {
	commitments []string
	deadline    *regexp.Regexp
	vagueness   *regexp.Regexp
}

func newRiskCheck() *riskCheck {
	return &riskCheck{
		commitments: []string{
			"we will pay", "we agree to", "on behalf of the company",
			"you have our commitment", "consider it done",
		},
		deadline:  regexp.MustCompile(`\b(deadline|due|respond by|need by)\b`),
		vagueness: regexp.MustCompile(`\b(soon|as soon as possible|eventually|at some point|shortly)\b`),
	}
}

func (c *riskCheck) Kind() core.FlagKind {
	return core.FlagRisk
}

func (c *riskCheck) Inspect(target Target) []core.GuardrailFlag {
	text := textutil.NormalizeForScan(target.Body)

	var flags []core.GuardrailFlag
	for _, phrase := range c.commitments {
		if strings.Contains(text, phrase) {
			flags = append(flags, core.GuardrailFlag{
				Kind:           core.FlagRisk,
				Severity:       core.SeverityWarn,
				Evidence:       phrase,
				MatchedPattern: "commitment-phrase",
			})
		}
	}

	// A deadline reference with only vague timing is a sign the draft
	// promises something it cannot anchor to a date.
	if c.deadline.MatchString(text) && c.vagueness.MatchString(text) {
		flags = append(flags, core.GuardrailFlag{
			Kind:           core.FlagRisk,
			Severity:       core.SeverityWarn,
			Evidence:       c.vagueness.FindString(text),
			MatchedPattern: "ambiguous-deadline",
		})
	}

	return flags
}
