package rewriter

import (
	"sort"

	"github.com/Alextopher/serotonin/core/types"
)

// Table is the rule index: an ordered list of rules per name, in definition
// order. Matching walks a name's list from last to first, so later rules
// shadow earlier ones. The table is append-only for the duration of a
// compilation; staged specialisations are inserted through the same Define.
type Table struct {
	rules map[types.Name][]types.RuleDef
	names []string
	dirty bool
}

// NewTable creates an empty rule table
func NewTable() *Table {
	return &Table{rules: make(map[types.Name][]types.RuleDef)}
}

// Define appends a rule to its head's list
func (t *Table) Define(rule types.RuleDef) {
	if _, known := t.rules[rule.Head]; !known {
		t.names = append(t.names, rule.Head)
		t.dirty = true
	}
	t.rules[rule.Head] = append(t.rules[rule.Head], rule)
}

// DefineAll appends every rule in source order
func (t *Table) DefineAll(rules []types.RuleDef) {
	for _, rule := range rules {
		t.Define(rule)
	}
}

// Lookup returns the definition-ordered rule list for name, never a single
// rule. A nil result means the name is undefined.
func (t *Table) Lookup(name types.Name) []types.RuleDef {
	return t.rules[name]
}

// Names returns all defined rule names, sorted, for diagnostics
func (t *Table) Names() []string {
	if t.dirty {
		sort.Strings(t.names)
		t.dirty = false
	}
	return t.names
}
