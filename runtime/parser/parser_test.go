package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/Alextopher/serotonin/core/types"
)

func TestParseRules(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []types.RuleDef
	}{
		{
			name:  "zero arity substitution",
			input: "main == 2 2 + pop;",
			want: []types.RuleDef{{
				Head: "main",
				Kind: types.Subst,
				Body: []types.Term{
					types.Num(2), types.Num(2), types.Call("+"), types.Call("pop"),
				},
			}},
		},
		{
			name:  "byte binding",
			input: "dup (a) == a a;",
			want: []types.RuleDef{{
				Head:   "dup",
				Params: []types.Constraint{{Kind: types.ByteNamed, ID: "a"}},
				Kind:   types.Subst,
				Body:   []types.Term{types.Call("a"), types.Call("a")},
			}},
		},
		{
			name:  "quotation binding uses upper-case",
			input: "F (Q) ==? Q sprint;",
			want: []types.RuleDef{{
				Head:   "F",
				Params: []types.Constraint{{Kind: types.QuotNamed, ID: "Q"}},
				Kind:   types.Gen,
				Body:   []types.Term{types.Call("Q"), types.Call("sprint")},
			}},
		},
		{
			name:  "exec rule with literals",
			input: "+ (a b) ==! a b `[-<+>]<.`;",
			want: []types.RuleDef{{
				Head: "+",
				Params: []types.Constraint{
					{Kind: types.ByteNamed, ID: "a"},
					{Kind: types.ByteNamed, ID: "b"},
				},
				Kind: types.Exec,
				Body: []types.Term{
					types.Call("a"), types.Call("b"), types.BF("[-<+>]<."),
				},
			}},
		},
		{
			name:  "exact and wildcard constraints",
			input: "f (@ 7 'y' ?) == ;",
			want: []types.RuleDef{{
				Head: "f",
				Params: []types.Constraint{
					{Kind: types.ByteAny},
					{Kind: types.ByteExact, Byte: 7},
					{Kind: types.ByteExact, Byte: 'y'},
					{Kind: types.QuotAny},
				},
				Kind: types.Subst,
				Body: nil,
			}},
		},
		{
			name:  "structural quotation constraint",
			input: "while ([false] ?) == ;",
			want: []types.RuleDef{{
				Head: "while",
				Params: []types.Constraint{
					{Kind: types.QuotExact, Body: []types.Term{types.Call("false")}},
					{Kind: types.QuotAny},
				},
				Kind: types.Subst,
				Body: nil,
			}},
		},
		{
			name:  "nested quotations",
			input: "main == [[1] 2] run;",
			want: []types.RuleDef{{
				Head: "main",
				Kind: types.Subst,
				Body: []types.Term{
					types.Quot([]types.Term{
						types.Quot([]types.Term{types.Num(1)}),
						types.Num(2),
					}),
					types.Call("run"),
				},
			}},
		},
		{
			name:  "macro invocation",
			input: "rot == {a b c -- b c a} autoperm!;",
			want: []types.RuleDef{{
				Head: "rot",
				Kind: types.Subst,
				Body: []types.Term{types.Macro("autoperm", "a b c -- b c a")},
			}},
		},
		{
			name:  "string and char terms",
			input: `main == "Hi" sprint 'y' pop;`,
			want: []types.RuleDef{{
				Head: "main",
				Kind: types.Subst,
				Body: []types.Term{
					types.Str([]byte("Hi")), types.Call("sprint"),
					types.Char('y'), types.Call("pop"),
				},
			}},
		},
		{
			name:  "several rules keep source order",
			input: "dup == `x`;\ndup (a) == a a;",
			want: []types.RuleDef{
				{Head: "dup", Kind: types.Subst, Body: []types.Term{types.BF("x")}},
				{
					Head:   "dup",
					Params: []types.Constraint{{Kind: types.ByteNamed, ID: "a"}},
					Kind:   types.Subst,
					Body:   []types.Term{types.Call("a"), types.Call("a")},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := Parse(tt.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, file.Rules); diff != "" {
				t.Errorf("rule mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseImports(t *testing.T) {
	file, err := Parse("IMPORT std;\nIMPORT math;\nmain == 1 pop;")
	require.NoError(t, err)

	require.Equal(t, []string{"std", "math"}, importNames(file))
	require.Len(t, file.Rules, 1)
	require.Equal(t, "main", file.Rules[0].Head)
}

func importNames(f *File) []string {
	names := make([]string, 0, len(f.Imports))
	for _, imp := range f.Imports {
		names = append(names, imp.Name)
	}
	return names
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"missing semicolon", "main == 1 pop", "missing its ';'"},
		{"missing kind", "main 1 pop;", "expected '==', '==?' or '==!'"},
		{"unclosed quotation", "main == [1 2 pop", "never closed"},
		{"unclosed constraints", "f (a b", "never closed"},
		{"macro body without name", "rot == {a -- a};", "macro name ending in '!'"},
		{"macro name without body", "rot == autoperm!;", "no '{...}' body"},
		{"byte out of range", "main == 256 pop;", "out of range"},
		{"import missing name", "IMPORT ;", "library name"},
		{"import missing semicolon", "IMPORT std main == 1;", "';' after IMPORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseErrorSnippet(t *testing.T) {
	_, err := Parse("main == 1 pop\nnext == 2;")
	require.Error(t, err)

	var pe ParseError
	require.ErrorAs(t, err, &pe)
	require.Contains(t, err.Error(), "-->")
	require.Contains(t, err.Error(), "^")
}
