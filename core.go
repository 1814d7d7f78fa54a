package main

import (
	"fmt"
	"strings"
)

// tracer writes evaluation trace lines through an optional logging function.
// Lines are indented by nesting depth, with their marks right aligned.
type tracer struct {
	logfn func(mess string, args ...interface{})

	indent    int
	markWidth int
}

func (tr *tracer) tracing() bool { return tr.logfn != nil }

// enter indents later lines until the returned func is called.
func (tr *tracer) enter() func() {
	tr.indent++
	return func() { tr.indent-- }
}

func (tr *tracer) logf(mark, mess string, args ...interface{}) {
	if tr.logfn == nil {
		return
	}
	if len(mark) > tr.markWidth {
		tr.markWidth = len(mark)
	}
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	tr.logfn("%s%*s %s", strings.Repeat("\t", tr.indent), tr.markWidth, mark, mess)
}

func stackString(stack []Value) string {
	parts := make([]string, len(stack))
	for i, val := range stack {
		parts[i] = Literal(val, true)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
