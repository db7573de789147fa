package triage

import (
	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
)

// RouteResult is the edge-case router's contribution to an item's decision
type RouteResult struct {
	Escalated bool
	Deferred  bool
}

// EdgeCaseRouter applies the post-categorization policy chain. The policies
// run in a fixed order: legal/finance escalation first, then Do-Not-Disturb
// deferral. An escalated item is never suppressed by DND.
type EdgeCaseRouter struct {
	dnd config.DNDConfig
}

// NewEdgeCaseRouter builds a router from the DND configuration snapshot
func NewEdgeCaseRouter(dnd config.DNDConfig) *EdgeCaseRouter {
	return &EdgeCaseRouter{dnd: dnd}
}

// Route evaluates the policy chain for one categorized, scored message
func (r *EdgeCaseRouter) Route(category core.Category, class core.SenderClass, score int) RouteResult {
	if category == core.CategoryLegal || category == core.CategoryFinance {
		return RouteResult{Escalated: true}
	}

	if r.dnd.Enabled && class != core.SenderVIP && score < r.dnd.OverrideScore {
		return RouteResult{Deferred: true}
	}

	return RouteResult{}
}
