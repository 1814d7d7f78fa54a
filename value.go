package main

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is anything that may live on the operand stack.
type Value interface {
	Term
	value()
}

type (
	Integer int32
	Real    float32
	String  string
	Symbol  string

	// Quote is deferred code: an unevaluated expression sequence. It does not
	// capture variables; any Var inside resolves against the variable table
	// that is live when the quote is applied.
	Quote []Expr
)

func (Integer) value() {}
func (Real) value()    {}
func (String) value()  {}
func (Symbol) value()  {}
func (Quote) value()   {}

// Booleans are just symbols.
const (
	True  Symbol = "t"
	False Symbol = "f"
)

func boolSymbol(b bool) Symbol {
	if b {
		return True
	}
	return False
}

// TypeName names the kind of a value for diagnostics.
func TypeName(v Value) string {
	switch v.(type) {
	case Integer:
		return "Integer"
	case Real:
		return "Real"
	case String:
		return "String"
	case Symbol:
		return "Symbol"
	case Quote:
		return "Quote"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// article returns TypeName(v) with an indefinite article, for messages like
// "Expected an Integer, found a String."
func article(name string) string {
	switch name[0] {
	case 'A', 'E', 'I', 'O', 'U':
		return "an " + name
	default:
		return "a " + name
	}
}

// Literal renders a value as text.
//
// When quote is true the result is source syntax that parses back into an
// equal value: strings are double quoted and symbols carry their # prefix.
// Otherwise strings and symbols are rendered bare, for display.
// Quote bodies are always rendered in source syntax.
func Literal(v Value, quote bool) string {
	switch v := v.(type) {
	case Integer:
		return strconv.FormatInt(int64(v), 10)
	case Real:
		return formatReal(v)
	case String:
		if quote {
			return `"` + string(v) + `"`
		}
		return string(v)
	case Symbol:
		if quote {
			return "#" + string(v)
		}
		return string(v)
	case Quote:
		return "[" + joinSource(v) + "]"
	default:
		return fmt.Sprintf("<invalid value %T>", v)
	}
}

// formatReal always includes a decimal point, so that the result is read
// back as a Real rather than an Integer.
func formatReal(r Real) string {
	s := strconv.FormatFloat(float64(r), 'f', -1, 32)
	if !strings.ContainsAny(s, ".IN") {
		s += ".0"
	}
	return s
}

// equal is true only when a and b are the same kind with the same content.
// Quotes compare by their source rendering, ignoring positions.
func equal(a, b Value) bool {
	switch a := a.(type) {
	case Integer:
		bv, ok := b.(Integer)
		return ok && a == bv
	case Real:
		bv, ok := b.(Real)
		return ok && a == bv
	case String:
		bv, ok := b.(String)
		return ok && a == bv
	case Symbol:
		bv, ok := b.(Symbol)
		return ok && a == bv
	case Quote:
		bv, ok := b.(Quote)
		return ok && Literal(a, true) == Literal(bv, true)
	}
	return false
}
