package main

import (
	"context"

	"github.com/jcorbin/kitty/internal/flushio"
)

// VM evaluates parsed expressions against an operand stack and a variable
// table, both of which persist from one Eval to the next.
type VM struct {
	tracer

	out flushio.WriteFlusher

	// The stack is a LIFO of values shared by every builtin. Its last element
	// is the top.
	stack []Value

	// Variables are indexed by the slots that Parse assigned. A slot's body
	// is stored unevaluated and evaluated anew on every reference: variables
	// are call-by-name, closer to macros than to value cells.
	vars []binding

	depth      int
	depthLimit int
}

type binding struct {
	name  string
	body  []Expr
	bound bool
}

// Eval runs exprs left to right. The first error aborts the rest of the
// pass; anything done to the stack or variables before it stays done.
//
// The context is checked before every step, so cancelling it interrupts even
// runaway evaluation.
func (vm *VM) Eval(ctx context.Context, exprs []Expr) error {
	return vm.exec(ctx, exprs)
}

func (vm *VM) exec(ctx context.Context, exprs []Expr) error {
	for _, ex := range exprs {
		if err := ctx.Err(); err != nil {
			return errorf(ex.Pos, ErrInterrupted, "Interrupted: %v.", err).withCause(err)
		}
		if err := vm.step(ctx, ex); err != nil {
			return err
		}
	}
	return nil
}

func (vm *VM) step(ctx context.Context, ex Expr) error {
	if vm.tracing() {
		vm.logf("exec", "@%v %v -- s:%v", ex.Pos, ex.Source(), stackString(vm.stack))
	}
	switch t := ex.Term.(type) {
	case Value:
		vm.push(t)
		return nil
	case Op:
		return vm.builtin(ctx, ex.Pos, t)
	case Store:
		vm.store(t)
		return nil
	case Var:
		return vm.call(ctx, ex.Pos, t)
	default:
		return errorf(ex.Pos, ErrUndefined, "Invalid expression %T.", t)
	}
}

// store binds a slot; it evaluates nothing.
func (vm *VM) store(st Store) {
	if need := st.Index + 1 - len(vm.vars); need > 0 {
		vm.vars = append(vm.vars, make([]binding, need)...)
	}
	vm.vars[st.Index] = binding{name: st.Name, body: st.Body, bound: true}
}

// call evaluates the live body bound to a variable, right now, against the
// current stack. Nothing is cached, so rebinding changes every later use.
func (vm *VM) call(ctx context.Context, pos Pos, v Var) error {
	if v.Index < 0 || v.Index >= len(vm.vars) || !vm.vars[v.Index].bound {
		return errorf(pos, ErrUnbound, "Variable %v is declared but was never bound.", v.Name)
	}
	return vm.nest(ctx, pos, v.Name, vm.vars[v.Index].body)
}

// nest runs a body one level deeper, as for a variable reference or app.
func (vm *VM) nest(ctx context.Context, pos Pos, name string, body []Expr) error {
	if vm.depthLimit > 0 && vm.depth >= vm.depthLimit {
		return errorf(pos, ErrDepthLimit, "Depth limit %v exceeded evaluating %v.", vm.depthLimit, name)
	}
	if vm.tracing() {
		vm.logf(">", "%v @%v", name, pos)
		defer vm.enter()()
	}
	vm.depth++
	defer func() { vm.depth-- }()
	return vm.exec(ctx, body)
}

//// Stack

func (vm *VM) push(val Value) {
	vm.stack = append(vm.stack, val)
}

// need fails with a stack underflow unless there are at least n values; it
// never changes the stack.
func (vm *VM) need(pos Pos, n int) error {
	if len(vm.stack) < n {
		return errorf(pos, ErrStackUnderflow, "Stack underflow: need %v value(s), have %v.", n, len(vm.stack))
	}
	return nil
}

// peek returns the i-th value from the top; the caller must have checked need.
func (vm *VM) peek(i int) Value { return vm.stack[len(vm.stack)-1-i] }

func (vm *VM) drop(n int) {
	i := len(vm.stack) - n
	for j := i; j < len(vm.stack); j++ {
		vm.stack[j] = nil
	}
	vm.stack = vm.stack[:i]
}

func (vm *VM) pop(pos Pos) (Value, error) {
	if err := vm.need(pos, 1); err != nil {
		return nil, err
	}
	val := vm.peek(0)
	vm.drop(1)
	return val, nil
}

// Top returns the value on top of the stack, if any.
func (vm *VM) Top() (Value, bool) {
	if len(vm.stack) == 0 {
		return nil, false
	}
	return vm.peek(0), true
}

// Stack returns a copy of the stack, bottom first.
func (vm *VM) Stack() []Value {
	return append([]Value(nil), vm.stack...)
}

// Binding returns the body currently bound to a slot.
func (vm *VM) Binding(id int) ([]Expr, bool) {
	if id < 0 || id >= len(vm.vars) || !vm.vars[id].bound {
		return nil, false
	}
	return vm.vars[id].body, true
}
