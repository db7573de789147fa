package triage

import (
	"strings"

	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/rules"
)

// senderInput is the parsed form of a sender address fed to the rule table
type senderInput struct {
	address   string
	local     string
	domain    string
	malformed bool
}

// SenderClassifier maps a sender address to a sender class using an ordered
// rule table. Classification is a pure function of the address and the
// configured lists; it never fails the pipeline.
type SenderClassifier struct {
	table *rules.Table[senderInput, core.SenderClass]
}

// NewSenderClassifier builds a classifier from the sender configuration
func NewSenderClassifier(cfg config.SenderConfig) *SenderClassifier {
	vipAddresses := toSet(cfg.VIPAddresses)
	vipDomains := toSet(cfg.VIPDomains)
	vendorDomains := toSet(cfg.VendorDomains)
	customerDomains := toSet(cfg.CustomerDomains)
	internalDomains := toSet(cfg.InternalDomains)
	noReplyTokens := normalizeAll(cfg.NoReplyTokens)

	table := rules.NewTable(
		rules.Rule[senderInput, core.SenderClass]{
			Name:     "malformed-address",
			Priority: 70,
			When:     func(in senderInput) bool { return in.malformed },
			Result:   core.SenderSpamSuspect,
		},
		rules.Rule[senderInput, core.SenderClass]{
			Name:     "vip-address",
			Priority: 60,
			When: func(in senderInput) bool {
				_, ok := vipAddresses[in.address]
				return ok
			},
			Result: core.SenderVIP,
		},
		rules.Rule[senderInput, core.SenderClass]{
			Name:     "vip-domain",
			Priority: 59,
			When: func(in senderInput) bool {
				_, ok := vipDomains[in.domain]
				return ok
			},
			Result: core.SenderVIP,
		},
		rules.Rule[senderInput, core.SenderClass]{
			Name:     "no-reply-pattern",
			Priority: 50,
			When: func(in senderInput) bool {
				for _, token := range noReplyTokens {
					if strings.Contains(in.local, token) {
						return true
					}
				}
				return false
			},
			Result: core.SenderNoReply,
		},
		rules.Rule[senderInput, core.SenderClass]{
			Name:     "vendor-domain",
			Priority: 40,
			When: func(in senderInput) bool {
				_, ok := vendorDomains[in.domain]
				return ok
			},
			Result: core.SenderVendor,
		},
		rules.Rule[senderInput, core.SenderClass]{
			Name:     "customer-domain",
			Priority: 39,
			When: func(in senderInput) bool {
				_, ok := customerDomains[in.domain]
				return ok
			},
			Result: core.SenderCustomer,
		},
		rules.Rule[senderInput, core.SenderClass]{
			Name:     "internal-domain",
			Priority: 30,
			When: func(in senderInput) bool {
				_, ok := internalDomains[in.domain]
				return ok
			},
			Result: core.SenderTeam,
		},
		rules.Rule[senderInput, core.SenderClass]{
			Name:     "external-default",
			Priority: 10,
			When:     func(senderInput) bool { return true },
			Result:   core.SenderCustomer,
		},
	)

	return &SenderClassifier{table: table}
}

// Classify derives the sender profile for an address
func (c *SenderClassifier) Classify(address string) core.SenderProfile {
	in := parseSender(address)
	class, _, ok := c.table.Evaluate(in)
	if !ok {
		class = core.SenderCustomer
	}
	return core.SenderProfile{
		Address: in.address,
		Domain:  in.domain,
		Class:   class,
	}
}

func parseSender(address string) senderInput {
	normalized := strings.ToLower(strings.TrimSpace(address))
	at := strings.LastIndex(normalized, "@")
	if normalized == "" || at <= 0 || at == len(normalized)-1 {
		return senderInput{address: normalized, malformed: true}
	}
	return senderInput{
		address: normalized,
		local:   normalized[:at],
		domain:  normalized[at+1:],
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	return set
}

func normalizeAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}
