package rewriter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/Alextopher/serotonin/core/types"
)

// NoMatchError reports a call site where no candidate rule applies
type NoMatchError struct {
	Name types.Name
	// Tried holds the rendered parameter shape of every candidate
	Tried []string
	// Preceding is a snapshot of the terms to the left of the call site,
	// innermost last, as far back as the widest candidate looks
	Preceding []types.Term
	// Suggestions holds similarly named rules when Name itself is undefined
	Suggestions []string
}

func (e *NoMatchError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "no rule for %s matches here", e.Name)
	if len(e.Preceding) > 0 {
		fmt.Fprintf(&sb, "\n  preceding terms: %s", types.Render(e.Preceding))
	}
	if len(e.Tried) > 0 {
		fmt.Fprintf(&sb, "\n  candidates tried:")
		for _, shape := range e.Tried {
			fmt.Fprintf(&sb, "\n    %s", shape)
		}
	}
	if len(e.Suggestions) > 0 {
		fmt.Fprintf(&sb, "\n  did you mean %s?", strings.Join(e.Suggestions, ", "))
	}
	return sb.String()
}

// ArityError reports a call site with fewer reducible predecessors than any
// candidate consumes and no zero-arity fallback
type ArityError struct {
	Name types.Name
	Want int // smallest candidate arity
	Have int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s needs %d value(s) on the stack but only %d are available",
		e.Name, e.Want, e.Have)
}

// OverflowError reports an exhausted reduction step budget
type OverflowError struct {
	Budget int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("reduction exceeded its budget of %d steps; rewriting probably diverges", e.Budget)
}

// StagedError wraps an interpreter failure with the rule being staged
type StagedError struct {
	Rule  types.Name
	Cause error
}

func (e *StagedError) Error() string {
	return fmt.Sprintf("staged evaluation of %s failed: %v", e.Rule, e.Cause)
}

func (e *StagedError) Unwrap() error { return e.Cause }

// suggest ranks defined rule names against the unknown one
func suggest(name string, defined []string) []string {
	ranks := fuzzy.RankFindFold(name, defined)
	if len(ranks) == 0 {
		return nil
	}
	sort.Sort(ranks)
	out := make([]string, 0, 3)
	for _, rank := range ranks {
		out = append(out, rank.Target)
		if len(out) == 3 {
			break
		}
	}
	return out
}
