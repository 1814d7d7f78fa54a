package main

import (
	"fmt"
	"strings"
)

// Pos is a 1-based source position; columns count runes, not bytes.
type Pos struct {
	Line   int
	Column int
}

func (pos Pos) String() string { return fmt.Sprintf("%v:%v", pos.Line, pos.Column) }

// Expr is one parsed expression node along with where it came from.
//
// Exprs are never mutated after parsing: Quote and Store bodies are owned
// slices that nothing else appends to.
type Expr struct {
	Pos
	Term Term
}

// Term is the closed set of things an Expr may be:
// Integer, Real, String, Symbol, Quote, Store, Var, or Op.
type Term interface {
	term()
}

// Store binds a variable slot to an unevaluated body.
type Store struct {
	Index int
	Name  string
	Body  []Expr
}

// Var refers to a variable slot; its body is evaluated again on every use.
type Var struct {
	Index int
	Name  string
}

func (Integer) term() {}
func (Real) term()    {}
func (String) term()  {}
func (Symbol) term()  {}
func (Quote) term()   {}
func (Store) term()   {}
func (Var) term()     {}
func (Op) term()      {}

// Source renders an expression back into the text that parses to it.
func (ex Expr) Source() string {
	switch t := ex.Term.(type) {
	case Value:
		return Literal(t, true)
	case Store:
		return "let " + t.Name + " (" + joinSource(t.Body) + ")"
	case Var:
		return t.Name
	case Op:
		return t.String()
	default:
		return fmt.Sprintf("<invalid term %T>", t)
	}
}

func joinSource(exprs []Expr) string {
	var sb strings.Builder
	for i, ex := range exprs {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(ex.Source())
	}
	return sb.String()
}
