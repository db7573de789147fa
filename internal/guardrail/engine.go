// Package guardrail implements the safety checks applied to any content
// destined for external send. Each check is independent and composable: it
// can only add WARN/BLOCK flags, never approve content on its own. Flags
// from all enabled checks are unioned; a single BLOCK from any check makes
// the overall decision BLOCKED.
package guardrail

import (
	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
)

// Target is the externally destined content under inspection
type Target struct {
	Body       string
	Recipients []string
}

// Check is a single guardrail. Inspect never returns an error: an inability
// to pattern-match degrades to "no flag", never to failing the batch.
type Check interface {
	Kind() core.FlagKind
	Inspect(target Target) []core.GuardrailFlag
}

// Engine runs the enabled checks against a target and unions their flags
type Engine struct {
	checks []Check
	logger *zap.Logger
}

// NewEngine assembles the enabled checks. Check order is fixed (PII,
// domain, tone, risk) so flag sequences are reproducible.
func NewEngine(cfg config.GuardrailConfig, policy config.DomainPolicy, logger *zap.Logger) *Engine {
	var checks []Check
	if cfg.PIIEnabled {
		checks = append(checks, newPIICheck())
	}
	if cfg.DomainEnabled {
		checks = append(checks, newDomainCheck(policy))
	}
	if cfg.ToneEnabled {
		checks = append(checks, newToneCheck(cfg))
	}
	if cfg.RiskEnabled {
		checks = append(checks, newRiskCheck())
	}
	return &Engine{checks: checks, logger: logger}
}

// Evaluate runs every enabled check and unions the flags. The engine never
// auto-fixes content; it only flags.
func (e *Engine) Evaluate(target Target) []core.GuardrailFlag {
	var flags []core.GuardrailFlag
	for _, check := range e.checks {
		found := check.Inspect(target)
		if len(found) > 0 && e.logger != nil {
			e.logger.Debug("Guardrail check flagged content",
				zap.String("check", string(check.Kind())),
				zap.Int("flag_count", len(found)))
		}
		flags = append(flags, found...)
	}
	return flags
}

// HasBlock reports whether any flag in the set carries BLOCK severity
func HasBlock(flags []core.GuardrailFlag) bool {
	for _, f := range flags {
		if f.Severity == core.SeverityBlock {
			return true
		}
	}
	return false
}
