package types

import "fmt"

// RuleKind selects the post-match action of a rule
type RuleKind int

const (
	Subst RuleKind = iota // == : pure substitution
	Gen                   // ==?: staged evaluation, output treated as BF text
	Exec                  // ==!: staged evaluation, output treated as data bytes
)

func (k RuleKind) String() string {
	switch k {
	case Subst:
		return "=="
	case Gen:
		return "==?"
	case Exec:
		return "==!"
	default:
		return fmt.Sprintf("RuleKind(%d)", int(k))
	}
}

// ConstraintKind selects the pattern for one formal parameter
type ConstraintKind int

const (
	ByteNamed ConstraintKind = iota // matches any byte, binds ID
	ByteAny                         // @ : matches any byte, no binding
	ByteExact                       // matches that exact byte
	QuotNamed                       // matches any quotation, binds ID
	QuotAny                         // ? : matches any quotation, no binding
	QuotExact                       // matches a structurally equal quotation
)

// Constraint is the pattern for one formal parameter
type Constraint struct {
	Kind ConstraintKind
	ID   string // ByteNamed, QuotNamed
	Byte byte   // ByteExact
	Body []Term // QuotExact
}

// Matches reports whether the constraint accepts the term. Quotation bodies
// compare structurally on their pre-reduction text.
func (c Constraint) Matches(t Term) bool {
	switch c.Kind {
	case ByteNamed, ByteAny:
		return t.IsByte()
	case ByteExact:
		return t.IsByte() && t.Byte == c.Byte
	case QuotNamed, QuotAny:
		return t.Kind == TermQuot
	case QuotExact:
		return t.Kind == TermQuot && StructurallyEqual(t.Body, c.Body)
	default:
		return false
	}
}

// Binds reports whether a matched term is bound under ID
func (c Constraint) Binds() bool {
	return c.Kind == ByteNamed || c.Kind == QuotNamed
}

// String renders the constraint as it would be written in a parameter list
func (c Constraint) String() string {
	switch c.Kind {
	case ByteNamed, QuotNamed:
		return c.ID
	case ByteAny:
		return "@"
	case ByteExact:
		return fmt.Sprintf("%d", c.Byte)
	case QuotAny:
		return "?"
	case QuotExact:
		return "[" + Render(c.Body) + "]"
	default:
		return fmt.Sprintf("Constraint(%d)", int(c.Kind))
	}
}

// RuleDef is one rule as written in source (or synthesised during staging)
type RuleDef struct {
	Head   Name
	Params []Constraint
	Kind   RuleKind
	Body   []Term
}

// Arity returns the number of stack inputs the rule consumes
func (r RuleDef) Arity() int { return len(r.Params) }

func (r RuleDef) String() string {
	s := r.Head
	if len(r.Params) > 0 {
		s += " ("
		for i, c := range r.Params {
			if i > 0 {
				s += " "
			}
			s += c.String()
		}
		s += ")"
	}
	return s + " " + r.Kind.String() + " " + Render(r.Body) + ";"
}
