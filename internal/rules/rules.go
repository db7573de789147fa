// Package rules provides the ordered rule tables used by the triage stages.
// Each classification concern (sender class, intent group, category) is an
// ordered set of (predicate, result, priority) tuples evaluated by a single
// generic routine, keeping precedence explicit and testable in isolation.
package rules

import (
	"sort"
)

// Rule pairs a predicate with the result it yields when matched
type Rule[I, R any] struct {
	Name     string
	Priority int
	When     func(I) bool
	Result   R
}

// Table is an ordered rule set. Higher priority evaluates first; rules with
// equal priority keep their insertion order.
type Table[I, R any] struct {
	rules []Rule[I, R]
}

// NewTable builds a table from the given rules
func NewTable[I, R any](rs ...Rule[I, R]) *Table[I, R] {
	ordered := make([]Rule[I, R], len(rs))
	copy(ordered, rs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})
	return &Table[I, R]{rules: ordered}
}

// Evaluate returns the result of the first matching rule along with the
// rule's name. The boolean is false when no rule matched.
func (t *Table[I, R]) Evaluate(in I) (R, string, bool) {
	for _, r := range t.rules {
		if r.When(in) {
			return r.Result, r.Name, true
		}
	}
	var zero R
	return zero, "", false
}

// Len reports the number of rules in the table
func (t *Table[I, R]) Len() int {
	return len(t.rules)
}
