package guardrail

import (
	"strings"

	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/textutil"
)

// toneCheck scans outbound content for aggressive language, liability-risk
// phrases and unprofessional slang. Individual matches WARN; when the match
// count reaches the configured threshold the whole set escalates to BLOCK.
type toneCheck struct {
	aggressive     []string
	liability      []string
	slang          []string
	blockThreshold int
}

func newToneCheck(cfg config.GuardrailConfig) *toneCheck {
	return &toneCheck{
		aggressive:     lowerAll(cfg.Aggressive),
		liability:      lowerAll(cfg.Liability),
		slang:          lowerAll(cfg.Slang),
		blockThreshold: cfg.ToneBlockThreshold,
	}
}

func (c *toneCheck) Kind() core.FlagKind {
	return core.FlagTone
}

func (c *toneCheck) Inspect(target Target) []core.GuardrailFlag {
	text := textutil.NormalizeForScan(target.Body)

	var flags []core.GuardrailFlag
	scan := func(pattern string, keywords []string) {
		for _, k := range keywords {
			if k != "" && strings.Contains(text, k) {
				flags = append(flags, core.GuardrailFlag{
					Kind:           core.FlagTone,
					Severity:       core.SeverityWarn,
					Evidence:       k,
					MatchedPattern: pattern,
				})
			}
		}
	}

	scan("aggressive-language", c.aggressive)
	scan("liability-phrase", c.liability)
	scan("unprofessional-slang", c.slang)

	if c.blockThreshold > 0 && len(flags) >= c.blockThreshold {
		for i := range flags {
			flags[i].Severity = core.SeverityBlock
		}
	}

	return flags
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}
