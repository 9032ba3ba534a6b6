package macros

import (
	"fmt"
	"maps"
	"strings"

	"github.com/Alextopher/serotonin/core/types"
)

// expandAutoperm turns a stack-effect diagram `a b c -- b c a` into one BF
// term that rearranges the top cells of the stack. The emitted block uses
// only +-<>[] - it never reads input or writes output.
//
// Cell plan, relative to the leftmost input (the stack grows rightward and
// the pointer sits on the top cell):
//
//	0 .. n-1        the inputs, later the outputs (0 .. m-1)
//	base .. base+n-1 one stash cell per input, base = max(n, m)
//	base+n          spare cell for copies when an input is used twice
//
// Every input is first drained into its stash cell; each output position is
// then filled by moving (last use) or copying via the spare (earlier uses)
// from the stash. Stash cells of unused inputs are zeroed so the cells above
// the new top stay clean for later pushes.
func expandAutoperm(body string) ([]types.Term, error) {
	inputs, outputs, err := parseEffect(body)
	if err != nil {
		return nil, err
	}

	n, m := len(inputs), len(outputs)
	slot := make(map[string]int, n)
	uses := make(map[string]int, n)
	for i, name := range inputs {
		if _, dup := slot[name]; dup {
			return nil, fmt.Errorf("input %q appears twice in stack effect", name)
		}
		slot[name] = i
	}
	for _, name := range outputs {
		if _, ok := slot[name]; !ok {
			return nil, fmt.Errorf("output %q does not name an input", name)
		}
		uses[name]++
	}

	base := n
	if m > base {
		base = m
	}
	spare := base + n

	g := permGen{ptr: n - 1}

	// drain inputs into their stash cells, right to left
	for i := n - 1; i >= 0; i-- {
		g.moveTo(i)
		g.loop(g.shift(base, '>') + "+" + g.shift(base, '<'))
	}

	// fill output positions from the stash
	remaining := maps.Clone(uses)
	for j := 0; j < m; j++ {
		name := outputs[j]
		stash := base + slot[name]
		g.moveTo(stash)
		back := stash - j
		if remaining[name] > 1 {
			over := spare - stash
			g.loop(g.shift(back, '<') + "+" + g.shift(back, '>') +
				g.shift(over, '>') + "+" + g.shift(over, '<'))
			g.moveTo(spare)
			g.loop(g.shift(over, '<') + "+" + g.shift(over, '>'))
			remaining[name]--
		} else {
			g.loop(g.shift(back, '<') + "+" + g.shift(back, '>'))
			remaining[name] = 0
		}
	}

	// clear stash cells of inputs the outputs never mention
	for i, name := range inputs {
		if uses[name] == 0 {
			g.moveTo(base + i)
			g.emit("[-]")
		}
	}

	g.moveTo(m - 1)

	return []types.Term{types.BF(g.String())}, nil
}

// parseEffect splits `inputs -- outputs` into name lists
func parseEffect(body string) (inputs, outputs []string, err error) {
	parts := strings.Split(body, "--")
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("stack effect must contain exactly one '--', got %q", strings.TrimSpace(body))
	}
	return strings.Fields(parts[0]), strings.Fields(parts[1]), nil
}

// permGen accumulates BF while tracking the data pointer relative to the
// leftmost input cell. Position -1 (one left of the inputs) is legal: it is
// the new top after a diagram that drops everything.
type permGen struct {
	sb  strings.Builder
	ptr int
}

func (g *permGen) emit(code string) {
	g.sb.WriteString(code)
}

// loop emits a [- ... ] drain loop whose body must return to the loop cell
func (g *permGen) loop(body string) {
	g.sb.WriteString("[-")
	g.sb.WriteString(body)
	g.sb.WriteString("]")
}

func (g *permGen) moveTo(target int) {
	if target > g.ptr {
		g.emit(g.shift(target-g.ptr, '>'))
	} else if target < g.ptr {
		g.emit(g.shift(g.ptr-target, '<'))
	}
	g.ptr = target
}

func (g *permGen) shift(n int, dir byte) string {
	return strings.Repeat(string(dir), n)
}

func (g *permGen) String() string {
	return g.sb.String()
}
