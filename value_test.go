package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiteral(t *testing.T) {
	for _, tc := range []struct {
		val    Value
		quoted string
		bare   string
		typ    string
	}{
		{Integer(42), "42", "42", "Integer"},
		{Integer(-7), "-7", "-7", "Integer"},
		{Real(1.5), "1.5", "1.5", "Real"},
		{Real(2), "2.0", "2.0", "Real"},
		{Real(0.1), "0.1", "0.1", "Real"},
		{Real(math.Inf(1)), "+Inf", "+Inf", "Real"},
		{String("hi there"), `"hi there"`, "hi there", "String"},
		{String(""), `""`, "", "String"},
		{Symbol("t"), "#t", "t", "Symbol"},
		{Quote(nil), "[]", "[]", "Quote"},
		{Quote(exprs(Integer(1), String("a"), Symbol("b"), OpAdd)), `[1 "a" #b +]`, `[1 "a" #b +]`, "Quote"},
		{Quote(exprs(
			Store{0, "X", exprs(Real(2), Quote(exprs(OpDup)))},
			Var{0, "X"},
		)), "[let X (2.0 [dup]) X]", "[let X (2.0 [dup]) X]", "Quote"},
	} {
		t.Run(tc.quoted, func(t *testing.T) {
			assert.Equal(t, tc.quoted, Literal(tc.val, true))
			assert.Equal(t, tc.bare, Literal(tc.val, false))
			assert.Equal(t, tc.typ, TypeName(tc.val))
		})
	}
}

func TestLiteral_roundTrip(t *testing.T) {
	for _, src := range []string{
		"0",
		"2147483647",
		"3.25",
		"100.0",
		`"with spaces"`,
		"#sym",
		"[]",
		"[1 2.5 \"s\" #t [dup app] swap]",
		"[let Q (1 +) Q Q]",
	} {
		t.Run(src, func(t *testing.T) {
			var syms Symbols
			first, err := Parse(src, &syms)
			require.NoError(t, err)
			require.Len(t, first, 1)
			val, ok := first[0].Term.(Value)
			require.True(t, ok, "expected a value, got %T", first[0].Term)

			lit := Literal(val, true)
			again, err := Parse(lit, &syms)
			require.NoError(t, err, "reparsing %q", lit)
			require.Len(t, again, 1)
			assert.True(t, equal(val, again[0].Term.(Value)), "%q reparsed unequal", lit)
			assert.Equal(t, lit, Literal(again[0].Term.(Value), true))
		})
	}
}

func TestEqual(t *testing.T) {
	for _, tc := range []struct {
		name string
		a, b Value
		want bool
	}{
		{"same integers", Integer(1), Integer(1), true},
		{"different integers", Integer(1), Integer(2), false},
		{"integer real", Integer(1), Real(1), false},
		{"same reals", Real(0.5), Real(0.5), true},
		{"string symbol", String("t"), Symbol("t"), false},
		{"same symbols", True, Symbol("t"), true},
		{"quotes by source", Quote(exprs(Integer(1))), Quote([]Expr{{Pos: Pos{4, 2}, Term: Integer(1)}}), true},
		{"quotes differ", Quote(exprs(Integer(1))), Quote(exprs(Real(1))), false},
		{"quote string", Quote(nil), String("[]"), false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, equal(tc.a, tc.b))
			assert.Equal(t, tc.want, equal(tc.b, tc.a), "symmetric")
		})
	}
}

func TestArticle(t *testing.T) {
	assert.Equal(t, "an Integer", article("Integer"))
	assert.Equal(t, "a Real", article("Real"))
	assert.Equal(t, "a Quote", article("Quote"))
}
