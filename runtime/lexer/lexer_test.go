package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/Alextopher/serotonin/core/types"
)

// tok builds an expected token without position info; positions are compared
// separately where they matter
func tok(t types.TokenType, text string) types.Token {
	return types.Token{Type: t, Text: text}
}

var ignorePos = cmpopts.IgnoreFields(types.Token{}, "Pos")

func TestTokenizeWords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []types.Token
	}{
		{
			name:  "simple rule",
			input: "main == 2 2 + pop;",
			want: []types.Token{
				tok(types.IDENT, "main"),
				tok(types.EQ, "=="),
				tok(types.NUMBER, "2"),
				tok(types.NUMBER, "2"),
				tok(types.IDENT, "+"),
				tok(types.IDENT, "pop"),
				tok(types.SEMICOLON, ";"),
			},
		},
		{
			name:  "rule separators",
			input: "a == b ==? c ==!",
			want: []types.Token{
				tok(types.IDENT, "a"),
				tok(types.EQ, "=="),
				tok(types.IDENT, "b"),
				tok(types.EQ_GEN, "==?"),
				tok(types.IDENT, "c"),
				tok(types.EQ_EXEC, "==!"),
			},
		},
		{
			name:  "constraint list",
			input: "dup (a) == a a;",
			want: []types.Token{
				tok(types.IDENT, "dup"),
				tok(types.LPAREN, "("),
				tok(types.IDENT, "a"),
				tok(types.RPAREN, ")"),
				tok(types.EQ, "=="),
				tok(types.IDENT, "a"),
				tok(types.IDENT, "a"),
				tok(types.SEMICOLON, ";"),
			},
		},
		{
			name:  "quotations",
			input: "main == 'y' [true] [print] while;",
			want: []types.Token{
				tok(types.IDENT, "main"),
				tok(types.EQ, "=="),
				tok(types.CHAR, "y"),
				tok(types.LBRACKET, "["),
				tok(types.IDENT, "true"),
				tok(types.RBRACKET, "]"),
				tok(types.LBRACKET, "["),
				tok(types.IDENT, "print"),
				tok(types.RBRACKET, "]"),
				tok(types.IDENT, "while"),
				tok(types.SEMICOLON, ";"),
			},
		},
		{
			name:  "macro invocation",
			input: "rot == {a b c -- b c a} autoperm!;",
			want: []types.Token{
				tok(types.IDENT, "rot"),
				tok(types.EQ, "=="),
				tok(types.MACRO_BODY, "a b c -- b c a"),
				tok(types.MACRO_NAME, "autoperm!"),
				tok(types.SEMICOLON, ";"),
			},
		},
		{
			name:  "import directive",
			input: "IMPORT std;",
			want: []types.Token{
				tok(types.IMPORT, "IMPORT"),
				tok(types.IDENT, "std"),
				tok(types.SEMICOLON, ";"),
			},
		},
		{
			name:  "bf block verbatim",
			input: "pop == `.[-]<`;",
			want: []types.Token{
				tok(types.IDENT, "pop"),
				tok(types.EQ, "=="),
				tok(types.BF_BLOCK, ".[-]<"),
				tok(types.SEMICOLON, ";"),
			},
		},
		{
			name:  "bf block keeps whitespace",
			input: "x == `+ +\n- -`;",
			want: []types.Token{
				tok(types.IDENT, "x"),
				tok(types.EQ, "=="),
				tok(types.BF_BLOCK, "+ +\n- -"),
				tok(types.SEMICOLON, ";"),
			},
		},
		{
			name:  "comments skipped",
			input: "# a comment\nmain == 1; # trailing\n",
			want: []types.Token{
				tok(types.IDENT, "main"),
				tok(types.EQ, "=="),
				tok(types.NUMBER, "1"),
				tok(types.SEMICOLON, ";"),
			},
		},
		{
			name:  "wildcard and any words",
			input: "while ([false] ?) == ;",
			want: []types.Token{
				tok(types.IDENT, "while"),
				tok(types.LPAREN, "("),
				tok(types.LBRACKET, "["),
				tok(types.IDENT, "false"),
				tok(types.RBRACKET, "]"),
				tok(types.IDENT, "?"),
				tok(types.RPAREN, ")"),
				tok(types.EQ, "=="),
				tok(types.SEMICOLON, ";"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.input).Tokenize()
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got, ignorePos); diff != "" {
				t.Errorf("token mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTokenizeLiterals(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  types.Token
	}{
		{"char plain", "'y'", tok(types.CHAR, "y")},
		{"char newline", `'\n'`, tok(types.CHAR, "\n")},
		{"char tab", `'\t'`, tok(types.CHAR, "\t")},
		{"char backslash", `'\\'`, tok(types.CHAR, `\`)},
		{"char quote", `'\''`, tok(types.CHAR, "'")},
		{"char hex", `'\x41'`, tok(types.CHAR, "A")},
		{"char nul", `'\0'`, tok(types.CHAR, "\x00")},
		{"string plain", `"Hi"`, tok(types.STRING, "Hi")},
		{"string escapes", `"a\n\t\"\x20b"`, tok(types.STRING, "a\n\t\" b")},
		{"number zero", "0", tok(types.NUMBER, "0")},
		{"number max", "255", tok(types.NUMBER, "255")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.input).Tokenize()
			require.NoError(t, err)
			require.Len(t, got, 1)
			if diff := cmp.Diff(tt.want, got[0], ignorePos); diff != "" {
				t.Errorf("token mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated string", `main == "abc`},
		{"unterminated char", "'a"},
		{"empty char", "''"},
		{"unterminated bf block", "x == `+++"},
		{"unclosed macro body", "rot == {a b -- b a autoperm!;"},
		{"stray closing brace", "rot == } autoperm!;"},
		{"bad escape", `"ab\q"`},
		{"truncated hex escape", `"\x4"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.input).Tokenize()
			require.Error(t, err)
			var lexErr *Error
			require.ErrorAs(t, err, &lexErr)
			require.NotZero(t, lexErr.Pos.Line)
		})
	}
}

func TestPositions(t *testing.T) {
	got, err := New("main ==\n  5 pop;").Tokenize()
	require.NoError(t, err)
	require.Len(t, got, 5)

	require.Equal(t, types.Position{Line: 1, Column: 1, Offset: 0}, got[0].Pos)
	require.Equal(t, types.Position{Line: 1, Column: 6, Offset: 5}, got[1].Pos)
	require.Equal(t, types.Position{Line: 2, Column: 3, Offset: 10}, got[2].Pos)
	require.Equal(t, types.Position{Line: 2, Column: 5, Offset: 12}, got[3].Pos)
}
