package main

import (
	"context"
	"io"

	"github.com/jcorbin/kitty/internal/panicerr"
)

// Session is one interpreter session: the symbol table that parsing grows,
// and the VM whose stack and variables evaluation mutates. Both persist
// across every Parse, Eval, and Run.
type Session struct {
	Symbols
	VM
}

// New creates an empty session.
func New(opts ...Option) *Session {
	var s Session
	Options(defaults...).apply(&s)
	Options(opts...).apply(&s)
	return &s
}

// Parse parses src against the session's symbols.
func (s *Session) Parse(src string) ([]Expr, error) {
	return Parse(src, &s.Symbols)
}

// Eval evaluates exprs against the session's stack and variables. Any output
// is flushed before returning, even after an error.
func (s *Session) Eval(ctx context.Context, exprs []Expr) error {
	err := panicerr.Recover("eval", func() error {
		return s.VM.Eval(ctx, exprs)
	})
	if fault, ok := panicerr.AsFault(err); ok {
		s.logf("fault", "%+v", fault)
	}
	if ferr := s.out.Flush(); err == nil && ferr != nil {
		err = ferr
	}
	return err
}

// Run parses then evaluates src; nothing is evaluated if parsing fails.
func (s *Session) Run(ctx context.Context, src string) error {
	exprs, err := s.Parse(src)
	if err != nil {
		return err
	}
	return s.Eval(ctx, exprs)
}

// Dump writes the session's stack and variables to w.
func (s *Session) Dump(w io.Writer) {
	vmDumper{vm: &s.VM, syms: &s.Symbols, out: w}.dump()
}

// WithOutput sets where print_stack writes.
func WithOutput(w io.Writer) Option { return withOutput(w) }

// WithTee copies output to another writer as well.
func WithTee(w io.Writer) Option { return withTee(w) }

// WithDepthLimit bounds how deeply variable references and app may nest;
// zero means no limit.
func WithDepthLimit(limit int) Option { return withDepthLimit(limit) }

// WithLogf enables trace logging of every evaluation step.
func WithLogf(logfn func(mess string, args ...interface{})) Option { return withLogfn(logfn) }
