package types

import (
	"fmt"
	"strings"
)

// Name identifies a rule. Identifiers, operator symbols, and mangled
// specialisation names share this namespace.
type Name = string

// TermKind selects which payload fields of a Term are meaningful
type TermKind int

const (
	TermNum    TermKind = iota // Byte: integer literal 0..=255
	TermChar                   // Byte: character literal, same semantics as TermNum
	TermString                 // Bytes: a run of bytes
	TermBF                     // Text: verbatim BF fragment, the only terminal form
	TermCall                   // Name: unresolved reference to a rule
	TermQuot                   // Body, Compiled: bracketed sub-program
	TermMacro                  // Name, Text: macro invocation with raw body
)

var termKindNames = [...]string{
	TermNum:    "Num",
	TermChar:   "Char",
	TermString: "String",
	TermBF:     "BF",
	TermCall:   "Call",
	TermQuot:   "Quot",
	TermMacro:  "Macro",
}

func (k TermKind) String() string {
	if int(k) >= 0 && int(k) < len(termKindNames) {
		return termKindNames[k]
	}
	return fmt.Sprintf("TermKind(%d)", int(k))
}

// Term is a single tagged value in a working sequence. One struct covers all
// variants; Kind selects which fields carry the payload.
type Term struct {
	Kind TermKind

	Byte  byte   // TermNum, TermChar
	Bytes []byte // TermString
	Text  string // TermBF fragment text, TermMacro raw body
	Name  Name   // TermCall, TermMacro
	Body  []Term // TermQuot

	// Compiled is the BF string the quotation body reduces to. Empty until
	// the rewriter's quotation pre-pass fills it in.
	Compiled string
}

// Constructors

func Num(b byte) Term           { return Term{Kind: TermNum, Byte: b} }
func Char(b byte) Term          { return Term{Kind: TermChar, Byte: b} }
func Str(bs []byte) Term        { return Term{Kind: TermString, Bytes: bs} }
func BF(text string) Term       { return Term{Kind: TermBF, Text: text} }
func Call(name Name) Term       { return Term{Kind: TermCall, Name: name} }
func Quot(body []Term) Term     { return Term{Kind: TermQuot, Body: body} }
func Macro(name Name, body string) Term {
	return Term{Kind: TermMacro, Name: name, Text: body}
}

// IsByte reports whether the term is a byte value (Num or Char)
func (t Term) IsByte() bool {
	return t.Kind == TermNum || t.Kind == TermChar
}

// IsValue reports whether the term is a reducible value for constraint
// look-back: bytes, BF fragments, and quotations. Calls and macros are not
// values; strings become values once expanded into their bytes.
func (t Term) IsValue() bool {
	switch t.Kind {
	case TermNum, TermChar, TermBF, TermQuot:
		return true
	default:
		return false
	}
}

// String renders the term the way it would be written in source. Character
// literals render as their byte value; the two kinds are semantically
// identical and the rendering is what structural comparison sees.
func (t Term) String() string {
	switch t.Kind {
	case TermNum, TermChar:
		return fmt.Sprintf("%d", t.Byte)
	case TermString:
		return fmt.Sprintf("%q", string(t.Bytes))
	case TermBF:
		return "`" + t.Text + "`"
	case TermCall:
		return t.Name
	case TermQuot:
		return "[" + Render(t.Body) + "]"
	case TermMacro:
		return "{" + t.Text + "} " + t.Name
	default:
		return fmt.Sprintf("Term(%d)", int(t.Kind))
	}
}

// Render writes a term sequence as space-separated words. Comments never
// survive the lexer and every word is separated by exactly one space, so the
// result is the normalised body text used for structural quotation matching.
func Render(terms []Term) string {
	var sb strings.Builder
	for i, t := range terms {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.String())
	}
	return sb.String()
}

// StructurallyEqual compares two term sequences by their normalised source
// rendering, without reducing either side.
func StructurallyEqual(a, b []Term) bool {
	return Render(a) == Render(b)
}
