package bf

import (
	"strings"

	"github.com/Alextopher/serotonin/core/invariant"
	"github.com/Alextopher/serotonin/core/types"
)

// Generate turns a terminal term sequence into BF program text. A BF term
// contributes its fragment verbatim; a byte value contributes a push (move
// one cell right, then increment to the value); a string contributes the
// per-byte pushes in order.
//
// Only terminal kinds are legal here - a Call, Quot, or Macro reaching the
// generator is a rewriter bug, not a user error.
func Generate(terms []types.Term) string {
	var sb strings.Builder
	for _, t := range terms {
		switch t.Kind {
		case types.TermBF:
			sb.WriteString(t.Text)
		case types.TermNum, types.TermChar:
			writePush(&sb, t.Byte)
		case types.TermString:
			for _, b := range t.Bytes {
				writePush(&sb, b)
			}
		default:
			invariant.Invariant(false, "non-terminal %s term reached the BF generator", t.Kind)
		}
	}
	return sb.String()
}

func writePush(sb *strings.Builder, b byte) {
	sb.WriteByte('>')
	for i := 0; i < int(b); i++ {
		sb.WriteByte('+')
	}
}

// Emit produces the final single-line BF output for a terminal sequence:
// Generate, drop every byte outside the instruction alphabet (backtick
// blocks may carry whitespace or annotations), then cancel adjacent
// no-op pairs.
func Emit(terms []types.Term) string {
	return Clean(Generate(terms))
}

// Clean strips non-instruction bytes and cancels +- -+ <> >< pairs. The
// cancellation is iterative, so ++-- collapses to nothing, but loops are
// never touched.
func Clean(program string) string {
	out := make([]byte, 0, len(program))
	for i := 0; i < len(program); i++ {
		ch := program[i]
		if !IsInstruction(ch) {
			continue
		}
		if len(out) > 0 && cancels(out[len(out)-1], ch) {
			out = out[:len(out)-1]
			continue
		}
		out = append(out, ch)
	}
	return string(out)
}

func cancels(a, b byte) bool {
	switch {
	case a == '+' && b == '-', a == '-' && b == '+':
		return true
	case a == '<' && b == '>', a == '>' && b == '<':
		return true
	default:
		return false
	}
}
