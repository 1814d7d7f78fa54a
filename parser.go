package main

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// declareWord introduces a variable binding: let NAME ( body... )
const declareWord = "let"

// Parse reads src into a sequence of expressions, resolving every bare
// identifier against the builtins and syms.
//
// Declarations add to syms as they are read; a name is assigned its slot
// before its body is parsed, so a body may refer to its own binding. Those
// additions are kept even if a later part of src fails to parse.
func Parse(src string, syms *Symbols) ([]Expr, error) {
	p := parser{src: src, syms: syms, pos: Pos{Line: 1, Column: 1}}
	var out []Expr
	for !p.atEnd() {
		ex, ok, err := p.parseOne()
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, ex)
		}
	}
	return out, nil
}

// parser is a cursor over source text. Every scan records where its own token
// started in local variables, so nested block parsing never clobbers an
// outer token's start.
type parser struct {
	src  string
	syms *Symbols
	off  int // byte offset of the next rune
	pos  Pos // position of the next rune
}

//// Cursor

func (p *parser) atEnd() bool { return p.off >= len(p.src) }

func (p *parser) peek() (rune, bool) {
	if p.atEnd() {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(p.src[p.off:])
	return r, true
}

func (p *parser) next() (rune, bool) {
	if p.atEnd() {
		return 0, false
	}
	r, n := utf8.DecodeRuneInString(p.src[p.off:])
	p.off += n
	if r == '\n' {
		p.pos.Line++
		p.pos.Column = 1
	} else {
		p.pos.Column++
	}
	return r, true
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

// isTerminator reports whether r ends a bare word. Note that '[' is not a
// terminator: "a[" scans as the single word "a[".
func isTerminator(r rune) bool {
	switch r {
	case '(', ']', ')':
		return true
	}
	return isSpace(r)
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }

// scanWord consumes up to the next terminator, returning src[from:].
func (p *parser) scanWord(from int) string {
	for {
		r, ok := p.peek()
		if !ok || isTerminator(r) {
			break
		}
		p.next()
	}
	return p.src[from:p.off]
}

func (p *parser) skipSpace() {
	for {
		r, ok := p.peek()
		if !ok || !isSpace(r) {
			return
		}
		p.next()
	}
}

func (p *parser) unexpectedEOF(what string) *Error {
	return errorf(p.pos, ErrUnexpectedEOF, "Unexpected EOF while parsing %v.", what)
}

//// Tokens

// parseOne reads a single token, returning false when the token produced no
// expression (whitespace or a comment).
func (p *parser) parseOne() (Expr, bool, error) {
	start, from := p.pos, p.off
	r, ok := p.next()
	if !ok {
		return Expr{}, false, p.unexpectedEOF("expression")
	}

	switch {
	case isSpace(r):
		return Expr{}, false, nil

	case r == ';':
		for {
			if r, ok := p.peek(); !ok || r == '\n' {
				break
			}
			p.next()
		}
		return Expr{}, false, nil

	case r == '#':
		name := p.scanWord(p.off)
		return Expr{start, Symbol(name)}, true, nil

	case r == '"':
		return p.parseString(start)

	case r == '[':
		body, err := p.parseBlock(start, '[', ']')
		if err != nil {
			return Expr{}, false, err
		}
		return Expr{start, Quote(body)}, true, nil

	case r == ']' || r == ')' || r == '(':
		return Expr{}, false, errorf(start, ErrUnexpectedChar, "Unexpected '%c'.", r)

	case isDigit(r):
		return p.parseNumber(start, from)

	default:
		return p.parseIdent(start, from)
	}
}

// parseBlock collects expressions until the closing delimiter; open has
// already been consumed at pos.
func (p *parser) parseBlock(pos Pos, open, close rune) ([]Expr, error) {
	var body []Expr
	for {
		r, ok := p.peek()
		if !ok {
			return nil, errorf(p.pos, ErrUnexpectedEOF,
				"Unexpected EOF while parsing, expected '%c' to close '%c' at %v.", close, open, pos)
		}
		if r == close {
			p.next()
			return body, nil
		}
		if r == ']' || r == ')' {
			return nil, errorf(p.pos, ErrUnexpectedChar,
				"Expected '%c' to close '%c' at %v, found '%c'.", close, open, pos, r)
		}
		ex, ok, err := p.parseOne()
		if err != nil {
			return nil, err
		}
		if ok {
			body = append(body, ex)
		}
	}
}

// parseString reads up to the closing quote; there are no escapes.
func (p *parser) parseString(start Pos) (Expr, bool, error) {
	from := p.off
	for {
		r, ok := p.next()
		if !ok {
			return Expr{}, false, p.unexpectedEOF("string")
		}
		if r == '"' {
			return Expr{start, String(p.src[from : p.off-1])}, true, nil
		}
	}
}

// parseNumber reads a digit-led word as an Integer, or as a Real if it has
// one decimal point.
func (p *parser) parseNumber(start Pos, from int) (Expr, bool, error) {
	raw := p.scanWord(from)
	if strings.Trim(raw, "0123456789.") != "" || strings.Count(raw, ".") > 1 {
		return Expr{}, false, errorf(start, ErrNumericLiteral, "Malformed numeric literal: %v.", raw)
	}
	if !strings.Contains(raw, ".") {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return Expr{}, false, errorf(start, ErrNumericLiteral, "Integer literal out of range: %v.", raw).withCause(err)
		}
		return Expr{start, Integer(n)}, true, nil
	}
	f, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return Expr{}, false, errorf(start, ErrNumericLiteral, "Real literal out of range: %v.", raw).withCause(err)
	}
	return Expr{start, Real(f)}, true, nil
}

// parseIdent resolves a bare word: the declaration keyword, then builtins,
// then declared variables. There are no forward references.
func (p *parser) parseIdent(start Pos, from int) (Expr, bool, error) {
	raw := p.scanWord(from)
	if raw == declareWord {
		ex, err := p.parseDeclare(start)
		return ex, err == nil, err
	}
	if op, ok := lookupOp(raw); ok {
		return Expr{start, op}, true, nil
	}
	if id, ok := p.syms.Lookup(raw); ok {
		return Expr{start, Var{Index: id, Name: raw}}, true, nil
	}
	return Expr{}, false, errorf(start, ErrUndefined, "Use of an undefined variable: %v.", raw)
}

// parseDeclare reads NAME ( body... ) after the declaration keyword.
func (p *parser) parseDeclare(start Pos) (Expr, error) {
	p.skipSpace()
	namePos := p.pos
	name := p.scanWord(p.off)
	if name == "" {
		if r, ok := p.peek(); ok {
			return Expr{}, errorf(namePos, ErrUnexpectedChar, "Expected a name after '%v', found '%c'.", declareWord, r)
		}
		return Expr{}, p.unexpectedEOF("declaration")
	}
	if err := checkName(namePos, name); err != nil {
		return Expr{}, err
	}

	p.skipSpace()
	openPos := p.pos
	if r, ok := p.next(); !ok {
		return Expr{}, p.unexpectedEOF("declaration")
	} else if r != '(' {
		return Expr{}, errorf(openPos, ErrUnexpectedChar, "Expected '(', found '%c'.", r)
	}

	id := p.syms.symbolicate(name)
	body, err := p.parseBlock(openPos, '(', ')')
	if err != nil {
		return Expr{}, err
	}
	return Expr{start, Store{Index: id, Name: name, Body: body}}, nil
}

// checkName rejects names that could never be referenced, since identifier
// resolution would always read them as something else.
func checkName(pos Pos, name string) error {
	r, _ := utf8.DecodeRuneInString(name)
	switch {
	case name == declareWord:
		return errorf(pos, ErrInvalidName, "Cannot declare the reserved word %q.", name)
	case isDigit(r) || r == '#' || r == '"' || r == ';' || r == '[':
		return errorf(pos, ErrInvalidName, "Invalid variable name: %v.", name)
	}
	if _, ok := lookupOp(name); ok {
		return errorf(pos, ErrInvalidName, "Cannot redeclare builtin %v.", name)
	}
	return nil
}
