package guardrail

import (
	"strings"

	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
)

// domainCheck compares draft recipient domains against the configured
// allow/block lists. A blocked domain is a hard BLOCK; any other
// non-allow-listed recipient produces a WARN, which downstream treats as a
// mandatory-approval signal.
type domainCheck struct {
	allowed map[string]struct{}
	blocked map[string]struct{}
}

func newDomainCheck(policy config.DomainPolicy) *domainCheck {
	return &domainCheck{
		allowed: domainSet(policy.Allowed),
		blocked: domainSet(policy.Blocked),
	}
}

func (c *domainCheck) Kind() core.FlagKind {
	return core.FlagDomain
}

func (c *domainCheck) Inspect(target Target) []core.GuardrailFlag {
	var flags []core.GuardrailFlag
	for _, recipient := range target.Recipients {
		domain, ok := recipientDomain(recipient)
		if !ok {
			// An unverifiable recipient cannot be allow-listed.
			flags = append(flags, core.GuardrailFlag{
				Kind:           core.FlagDomain,
				Severity:       core.SeverityWarn,
				Evidence:       recipient,
				MatchedPattern: "unparseable-recipient",
			})
			continue
		}
		if _, blocked := c.blocked[domain]; blocked {
			flags = append(flags, core.GuardrailFlag{
				Kind:           core.FlagDomain,
				Severity:       core.SeverityBlock,
				Evidence:       domain,
				MatchedPattern: "blocked-domain",
			})
			continue
		}
		if _, allowed := c.allowed[domain]; !allowed {
			flags = append(flags, core.GuardrailFlag{
				Kind:           core.FlagDomain,
				Severity:       core.SeverityWarn,
				Evidence:       domain,
				MatchedPattern: "external-domain",
			})
		}
	}
	return flags
}

func domainSet(domains []string) map[string]struct{} {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		set[strings.ToLower(strings.TrimSpace(d))] = struct{}{}
	}
	return set
}

func recipientDomain(recipient string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(recipient))
	at := strings.LastIndex(normalized, "@")
	if at <= 0 || at == len(normalized)-1 {
		return "", false
	}
	return normalized[at+1:], true
}
