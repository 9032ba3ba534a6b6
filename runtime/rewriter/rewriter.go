// Package rewriter is the core of the compiler: a fixed-point reduction
// driver over a working term sequence.
//
// Reduction sweeps left to right. Macro sites expand through the native
// registry; call sites match against their name's rule list in reverse
// definition order, consuming the matched inputs to their left. Substitution
// rules splice their body in place; generation and execution rules reduce
// their body to a BF program, run it on the embedded interpreter, and splice
// the output back - as program text for ==? rules, as data bytes for ==!
// rules. Every staged result is registered as a specialised rule so a second
// call with identical inputs never reaches the interpreter again.
package rewriter

import (
	"log/slog"
	"slices"

	"github.com/Alextopher/serotonin/core/invariant"
	"github.com/Alextopher/serotonin/core/types"
	"github.com/Alextopher/serotonin/runtime/bf"
	"github.com/Alextopher/serotonin/runtime/macros"
)

// DefaultStepBudget bounds the total number of reduction steps in one
// compilation. A budget this size is only ever hit by divergent rule sets.
const DefaultStepBudget = 1_000_000

// Option configures a Rewriter
type Option func(*Rewriter)

// WithStepBudget overrides the total reduction step budget
func WithStepBudget(n int) Option {
	return func(r *Rewriter) { r.budget = n }
}

// WithFuel overrides the staged interpreter's per-run instruction budget
func WithFuel(n int) Option {
	return func(r *Rewriter) { r.fuel = n }
}

// WithLogger enables debug tracing of rule applications and staged runs
func WithLogger(logger *slog.Logger) Option {
	return func(r *Rewriter) { r.logger = logger }
}

// Rewriter drives reduction against one rule table. The table and the
// specialisation cache are append-only during a compilation and are
// discarded with the Rewriter; mangled rules do not outlive it.
type Rewriter struct {
	table  *Table
	interp *bf.Interp
	logger *slog.Logger
	fuel   int
	budget int
	steps  int

	cache      map[string]types.RuleDef
	stagedRuns int
}

// New creates a rewriter over the given rule table
func New(table *Table, opts ...Option) *Rewriter {
	invariant.NotNil(table, "table")
	r := &Rewriter{
		table:  table,
		logger: slog.New(slog.DiscardHandler),
		fuel:   bf.DefaultFuel,
		budget: DefaultStepBudget,
		cache:  make(map[string]types.RuleDef),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.interp = bf.New(bf.WithFuel(r.fuel))
	return r
}

// StagedRuns reports how many times the embedded interpreter has run.
// Identical staged calls resolve through the cache, so this is also the
// number of distinct (rule, inputs) pairs that were staged.
func (r *Rewriter) StagedRuns() int { return r.stagedRuns }

// Reduce rewrites seq to a fixed point and returns a terminal sequence
// containing only BF and string terms
func (r *Rewriter) Reduce(seq []types.Term) ([]types.Term, error) {
	return r.reduce(slices.Clone(seq))
}

// reduce is the sweep loop, shared by Reduce, staged body evaluation, and
// quotation compilation. It owns work and may mutate it freely.
func (r *Rewriter) reduce(work []types.Term) ([]types.Term, error) {
	for {
		changed := false
		i := 0
		for i < len(work) {
			t := work[i]

			if t.Kind == types.TermMacro {
				expansion, err := macros.Expand(t.Name, t.Text)
				if err != nil {
					return nil, err
				}
				if err := r.step(); err != nil {
					return nil, err
				}
				r.logger.Debug("macro expanded", "macro", t.Name, "terms", len(expansion))
				work = splice(work, i, i+1, expansion)
				changed = true
				continue // resume at the splice point
			}

			if t.Kind == types.TermString {
				// strings expand to their byte sequence during reduction, so
				// byte rules can consume individual characters
				if err := r.step(); err != nil {
					return nil, err
				}
				work = splice(work, i, i+1, bytesToNums(t.Bytes))
				changed = true
				continue
			}

			if t.Kind == types.TermCall {
				next, pos, applied, err := r.applySite(work, i)
				if err != nil {
					return nil, err
				}
				if applied {
					work, i = next, pos
					changed = true
					continue
				}
				// deferred behind an unreduced predecessor; revisit next sweep
			}

			i++
		}

		if !changed {
			return r.finish(work)
		}
	}
}

// applySite attempts to rewrite the call at work[i]. It returns the new
// sequence and resume position when a rewrite happened. No rewrite and no
// error means the site is deferred: some candidate's look-back window still
// holds an unreduced call.
func (r *Rewriter) applySite(work []types.Term, i int) ([]types.Term, int, bool, error) {
	name := work[i].Name
	rules := r.table.Lookup(name)
	if rules == nil {
		return nil, 0, false, &NoMatchError{
			Name:        name,
			Suggestions: suggest(name, r.table.Names()),
		}
	}

	feasible := false
	minArity := -1
	maxArity := 0

	// candidates are tested in reverse definition order; first match wins
	for idx := len(rules) - 1; idx >= 0; idx-- {
		rule := rules[idx]
		k := rule.Arity()
		if k > maxArity {
			maxArity = k
		}
		if k > i {
			if minArity == -1 || k < minArity {
				minArity = k
			}
			continue
		}
		feasible = true

		window := work[i-k : i]
		for _, t := range window {
			if t.Kind == types.TermCall || t.Kind == types.TermMacro {
				return nil, 0, false, nil
			}
		}

		matched := true
		for j, c := range rule.Params {
			pos := i - k + j
			if isQuotConstraint(c.Kind) && work[pos].Kind == types.TermQuot {
				// pre-pass: a quotation is compiled before it is bound or
				// structurally compared
				if err := r.compileQuot(&work[pos]); err != nil {
					return nil, 0, false, err
				}
			}
			if !c.Matches(work[pos]) {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}

		return r.applyRule(work, i, rule)
	}

	if !feasible {
		return nil, 0, false, &ArityError{Name: name, Want: minArity, Have: i}
	}

	snapshot := min(maxArity, i)
	return nil, 0, false, &NoMatchError{
		Name:      name,
		Tried:     ruleShapes(rules),
		Preceding: slices.Clone(work[i-snapshot : i]),
	}
}

// applyRule performs the post-match action for one matched rule
func (r *Rewriter) applyRule(work []types.Term, i int, rule types.RuleDef) ([]types.Term, int, bool, error) {
	k := rule.Arity()
	start := i - k
	args := slices.Clone(work[start:i])
	bindings := bindArgs(rule.Params, args)

	if err := r.step(); err != nil {
		return nil, 0, false, err
	}

	switch rule.Kind {
	case types.Subst:
		r.logger.Debug("substitution", "rule", rule.Head, "arity", k)
		work = splice(work, start, i+1, substituteTerms(rule.Body, bindings, false))
		return work, start, true, nil

	case types.Gen, types.Exec:
		return r.applyStaged(work, i, rule, args, bindings)
	}

	invariant.Invariant(false, "unknown rule kind %d", int(rule.Kind))
	return nil, 0, false, nil
}

// applyStaged handles ==? and ==! rules: check the specialisation cache,
// otherwise reduce the bound body to a BF program, run it, register the
// result as a specialised rule, and rewrite the site through it.
func (r *Rewriter) applyStaged(work []types.Term, i int, rule types.RuleDef, args []types.Term, bindings map[string]types.Term) ([]types.Term, int, bool, error) {
	start := i - len(args)

	canonical := canonicalInputs(args)
	key := specKey(rule.Head, canonical)

	if cached, ok := r.cache[key]; ok {
		r.logger.Debug("specialisation cache hit", "rule", rule.Head, "mangled", cached.Head)
		work = splice(work, start, i+1, cached.Body)
		return work, start, true, nil
	}

	body, err := r.reduce(substituteTerms(rule.Body, bindings, true))
	if err != nil {
		return nil, 0, false, err
	}
	program := bf.Generate(body)

	r.stagedRuns++
	out, err := r.interp.Run(program)
	if err != nil {
		return nil, 0, false, &StagedError{Rule: rule.Head, Cause: err}
	}
	r.logger.Debug("staged run",
		"rule", rule.Head, "kind", rule.Kind.String(),
		"program", len(program), "output", len(out))

	// ==? output is program text, ==! output is data
	var result []types.Term
	if rule.Kind == types.Gen {
		result = []types.Term{types.BF(string(out))}
	} else {
		result = bytesToNums(out)
	}

	// register the specialisation under its mangled name, and under the
	// parent name with exact-match parameters so identical future calls win
	// against the generic rule directly
	specialised := types.RuleDef{
		Head:   mangle(rule.Head, canonical),
		Params: exactParams(args),
		Kind:   types.Subst,
		Body:   result,
	}
	r.table.Define(specialised)
	alias := specialised
	alias.Head = rule.Head
	r.table.Define(alias)
	r.cache[key] = specialised

	// the site now reads `inputs <mangled>`; applying the fresh rule splices
	// the staged result in their place
	site := append(slices.Clone(args), types.Call(specialised.Head))
	work = splice(work, start, i+1, site)
	return work, start, true, nil
}

// compileQuot reduces a quotation's body in a fresh context and annotates
// the term with the resulting BF string
func (r *Rewriter) compileQuot(q *types.Term) error {
	invariant.Precondition(q.Kind == types.TermQuot, "compileQuot needs a quotation")
	if q.Compiled != "" {
		return nil
	}
	reduced, err := r.reduce(slices.Clone(q.Body))
	if err != nil {
		return err
	}
	q.Compiled = bf.Generate(reduced)
	return nil
}

// finish validates a stalled sequence and normalises it to BF and string
// terminals: byte values become their push fragments, quotations that were
// never consumed push nothing and disappear.
func (r *Rewriter) finish(work []types.Term) ([]types.Term, error) {
	out := make([]types.Term, 0, len(work))
	for i, t := range work {
		switch t.Kind {
		case types.TermBF, types.TermString:
			out = append(out, t)
		case types.TermNum, types.TermChar:
			out = append(out, types.BF(bf.Generate(work[i:i+1])))
		case types.TermQuot:
			// a quotation pushes nothing; unconsumed ones emit no BF
		case types.TermCall:
			// every sweep deferred this site, so its predecessors never
			// resolved; report it like any other failed match
			snapshot := min(i, 4)
			return nil, &NoMatchError{
				Name:      t.Name,
				Tried:     ruleShapes(r.table.Lookup(t.Name)),
				Preceding: slices.Clone(work[i-snapshot : i]),
			}
		default:
			invariant.Invariant(false, "%s term survived reduction", t.Kind)
		}
	}
	return out, nil
}

// step consumes one unit of the reduction budget
func (r *Rewriter) step() error {
	r.steps++
	if r.steps > r.budget {
		return &OverflowError{Budget: r.budget}
	}
	return nil
}

// substituteTerms replaces bound identifiers in a rule body. Inside staged
// (==? / ==!) bodies a bound quotation becomes a string holding its compiled
// BF, so the staged program can print it; everywhere else the matched term
// is spliced verbatim. Substitution descends into nested quotations at the
// source level.
func substituteTerms(body []types.Term, bindings map[string]types.Term, staged bool) []types.Term {
	if len(bindings) == 0 {
		return slices.Clone(body)
	}
	out := make([]types.Term, 0, len(body))
	for _, t := range body {
		switch t.Kind {
		case types.TermCall:
			if arg, ok := bindings[t.Name]; ok {
				if staged && arg.Kind == types.TermQuot {
					out = append(out, types.Str([]byte(arg.Compiled)))
				} else {
					out = append(out, arg)
				}
				continue
			}
			out = append(out, t)
		case types.TermQuot:
			q := t
			q.Body = substituteTerms(t.Body, bindings, false)
			q.Compiled = ""
			out = append(out, q)
		default:
			out = append(out, t)
		}
	}
	return out
}

// bindArgs collects the named bindings of a matched parameter list
func bindArgs(params []types.Constraint, args []types.Term) map[string]types.Term {
	var bindings map[string]types.Term
	for j, c := range params {
		if c.Binds() {
			if bindings == nil {
				bindings = make(map[string]types.Term, len(params))
			}
			bindings[c.ID] = args[j]
		}
	}
	return bindings
}

// exactParams pins a parameter list to concrete inputs: bytes by value,
// quotations by structural body
func exactParams(args []types.Term) []types.Constraint {
	params := make([]types.Constraint, len(args))
	for j, arg := range args {
		if arg.Kind == types.TermQuot {
			params[j] = types.Constraint{Kind: types.QuotExact, Body: arg.Body}
		} else {
			params[j] = types.Constraint{Kind: types.ByteExact, Byte: arg.Byte}
		}
	}
	return params
}

func bytesToNums(bs []byte) []types.Term {
	terms := make([]types.Term, len(bs))
	for i, b := range bs {
		terms[i] = types.Num(b)
	}
	return terms
}

func ruleShapes(rules []types.RuleDef) []string {
	shapes := make([]string, 0, len(rules))
	for idx := len(rules) - 1; idx >= 0; idx-- {
		rule := rules[idx]
		shape := rule.Head
		if len(rule.Params) > 0 {
			shape += " ("
			for j, c := range rule.Params {
				if j > 0 {
					shape += " "
				}
				shape += c.String()
			}
			shape += ")"
		}
		shapes = append(shapes, shape+" "+rule.Kind.String())
	}
	return shapes
}

func isQuotConstraint(k types.ConstraintKind) bool {
	return k == types.QuotNamed || k == types.QuotAny || k == types.QuotExact
}

// splice replaces work[start:end] with replacement in a fresh slice
func splice(work []types.Term, start, end int, replacement []types.Term) []types.Term {
	out := make([]types.Term, 0, len(work)-(end-start)+len(replacement))
	out = append(out, work[:start]...)
	out = append(out, replacement...)
	out = append(out, work[end:]...)
	return out
}
