package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		terms []Term
		want  string
	}{
		{"empty", nil, ""},
		{"bytes render as decimals", []Term{Num(5), Char('y')}, "5 121"},
		{"string", []Term{Str([]byte("Hi"))}, `"Hi"`},
		{"bf fragment", []Term{BF(".[-]<")}, "`.[-]<`"},
		{"call", []Term{Call("dup")}, "dup"},
		{
			"quotation",
			[]Term{Quot([]Term{Call("true"), Num(1)})},
			"[true 1]",
		},
		{
			"macro",
			[]Term{Macro("autoperm", "a b -- b a")},
			"{a b -- b a} autoperm",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Render(tt.terms))
		})
	}
}

func TestStructurallyEqual(t *testing.T) {
	// a character literal and its byte value are the same term structurally
	require.True(t, StructurallyEqual(
		[]Term{Char('y')},
		[]Term{Num('y')},
	))

	require.True(t, StructurallyEqual(
		[]Term{Call("false")},
		[]Term{Call("false")},
	))

	require.False(t, StructurallyEqual(
		[]Term{Call("false")},
		[]Term{Call("true")},
	))
}

func TestConstraintMatches(t *testing.T) {
	quot := Quot([]Term{Call("false")})

	tests := []struct {
		name string
		c    Constraint
		term Term
		want bool
	}{
		{"byte named matches num", Constraint{Kind: ByteNamed, ID: "a"}, Num(4), true},
		{"byte named matches char", Constraint{Kind: ByteNamed, ID: "a"}, Char('y'), true},
		{"byte named rejects quot", Constraint{Kind: ByteNamed, ID: "a"}, quot, false},
		{"byte named rejects bf", Constraint{Kind: ByteNamed, ID: "a"}, BF("+"), false},
		{"byte exact", Constraint{Kind: ByteExact, Byte: 4}, Num(4), true},
		{"byte exact mismatch", Constraint{Kind: ByteExact, Byte: 4}, Num(5), false},
		{"quot any", Constraint{Kind: QuotAny}, quot, true},
		{"quot any rejects byte", Constraint{Kind: QuotAny}, Num(1), false},
		{
			"quot exact structural",
			Constraint{Kind: QuotExact, Body: []Term{Call("false")}},
			quot,
			true,
		},
		{
			"quot exact mismatch",
			Constraint{Kind: QuotExact, Body: []Term{Call("true")}},
			quot,
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.c.Matches(tt.term))
		})
	}
}
