package main

import (
	"context"
	"math"
	"strings"

	"github.com/jcorbin/kitty/internal/flushio"
)

//// Builtin operations

// Op is one of the fixed builtin stack operations. The set is closed: the
// parser resolves names through opNames, and VM.builtin dispatches with a
// single switch over every Op.
type Op uint8

const (
	// Here's a handy summary of all the builtins:
	OpAdd Op = iota // +            binary arithmetic on two Integers or two Reals
	OpSub           // -            ...
	OpMul           // *            ...
	OpDiv           // /            ...
	OpMod           // %            ...
	OpDup           // dup          copy the top of the stack
	OpApp           // app          pop a Quote and evaluate its body in place
	OpCat           // cat          concatenate two Strings
	OpPop           // pop          discard the top of the stack
	OpSwap          // swap         exchange the top two stack entries
	OpPrintStack    // print_stack  dump the stack to output
	OpEq            // eq           compare any two values for equality
	OpNot           // not          negate a boolean symbol
	OpGt            // gt           ordered comparison of Integers, Reals or Strings
	OpLt            // lt           ...

	opMax
)

var opNames = [opMax]string{
	"+", "-", "*", "/", "%",
	"dup", "app", "cat", "pop", "swap",
	"print_stack", "eq", "not", "gt", "lt",
}

var opDocs = [opMax]string{
	"a b + -- a+b",
	"a b - -- a-b",
	"a b * -- a*b",
	"a b / -- a/b; fails on division by zero",
	"a b % -- remainder of a/b; fails on division by zero",
	"a dup -- a a",
	"[ ... ] app -- evaluates the quote's body in place",
	`"a" "b" cat -- "ab"`,
	"a pop --",
	"a b swap -- b a",
	"print_stack -- writes the stack to output",
	"a b eq -- #t if a and b have the same kind and value, else #f",
	"#t not -- #f, and #f not -- #t",
	"a b gt -- #t if a > b, else #f",
	"a b lt -- #t if a < b, else #f",
}

var opIndex map[string]Op

func init() {
	opIndex = make(map[string]Op, opMax)
	for op := Op(0); op < opMax; op++ {
		opIndex[opNames[op]] = op
	}
}

func lookupOp(name string) (Op, bool) {
	op, ok := opIndex[name]
	return op, ok
}

func (op Op) String() string {
	if op < opMax {
		return opNames[op]
	}
	return "<invalid op>"
}

// Doc returns a one line stack effect description.
func (op Op) Doc() string {
	if op < opMax {
		return opDocs[op]
	}
	return ""
}

// builtin runs op against the stack. Binary operations treat the top of the
// stack as the right hand operand, so "a b -" computes a-b.
//
// A failing builtin leaves the stack as it found it.
func (vm *VM) builtin(ctx context.Context, pos Pos, op Op) error {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return vm.arith(pos, op)
	case OpDup:
		return vm.dup(pos)
	case OpApp:
		return vm.app(ctx, pos)
	case OpCat:
		return vm.cat(pos)
	case OpPop:
		_, err := vm.pop(pos)
		return err
	case OpSwap:
		return vm.swap(pos)
	case OpPrintStack:
		return vm.printStack(pos)
	case OpEq:
		return vm.eq(pos)
	case OpNot:
		return vm.not(pos)
	case OpGt, OpLt:
		return vm.compare(pos, op)
	default:
		return errorf(pos, ErrUndefined, "Invalid builtin #%d.", int(op))
	}
}

//// Stack Operations

// Name   Function
// dup    duplicates the top of the stack
func (vm *VM) dup(pos Pos) error {
	if err := vm.need(pos, 1); err != nil {
		return err
	}
	vm.push(vm.peek(0))
	return nil
}

// Name   Function
// swap   exchanges the top two entries
func (vm *VM) swap(pos Pos) error {
	if err := vm.need(pos, 2); err != nil {
		return err
	}
	i := len(vm.stack) - 1
	vm.stack[i], vm.stack[i-1] = vm.stack[i-1], vm.stack[i]
	return nil
}

// Name          Function
// print_stack   writes a dump of the stack to output
func (vm *VM) printStack(pos Pos) error {
	if vm.out == nil {
		vm.out = flushio.Discard
	}
	dump := vmDumper{vm: vm, out: vm.out}
	dump.dumpStack()
	if err := vm.out.Flush(); err != nil {
		return errorf(pos, ErrOutput, "print_stack: %v", err).withCause(err)
	}
	return nil
}

//// Quote Operations

// Name   Function
// app    pops a Quote and runs its body as if it were written in place
func (vm *VM) app(ctx context.Context, pos Pos) error {
	if err := vm.need(pos, 1); err != nil {
		return err
	}
	q, ok := vm.peek(0).(Quote)
	if !ok {
		return mismatch(pos, "Quote", vm.peek(0))
	}
	vm.drop(1)
	return vm.nest(ctx, pos, "app", q)
}

//// Integer and Real Operations

// Symbol   Function
//   +      pop b then a, push a+b
//   -      pop b then a, push a-b
//   *      pop b then a, push a*b
//   /      pop b then a, push a/b
//   %      pop b then a, push the remainder of a/b
// Both operands must be the same kind; there is no implicit conversion.
func (vm *VM) arith(pos Pos, op Op) error {
	if err := vm.need(pos, 2); err != nil {
		return err
	}
	b, a := vm.peek(0), vm.peek(1)

	var res Value
	switch a := a.(type) {
	case Integer:
		b, ok := b.(Integer)
		if !ok {
			return mismatch(pos, "Integer", vm.peek(0))
		}
		if b == 0 && (op == OpDiv || op == OpMod) {
			return errorf(pos, ErrDivideByZero, "Integer division by zero.")
		}
		res = intArith(op, a, b)

	case Real:
		b, ok := b.(Real)
		if !ok {
			return mismatch(pos, "Real", vm.peek(0))
		}
		if b == 0 && (op == OpDiv || op == OpMod) {
			return errorf(pos, ErrDivideByZero, "Real division by zero.")
		}
		res = realArith(op, a, b)

	default:
		return mismatch(pos, "Real or an Integer", a)
	}

	vm.drop(2)
	vm.push(res)
	return nil
}

func intArith(op Op, a, b Integer) Integer {
	switch op {
	case OpAdd:
		return a + b
	case OpSub:
		return a - b
	case OpMul:
		return a * b
	case OpDiv:
		return a / b
	default:
		return a % b
	}
}

func realArith(op Op, a, b Real) Real {
	switch op {
	case OpAdd:
		return a + b
	case OpSub:
		return a - b
	case OpMul:
		return a * b
	case OpDiv:
		return a / b
	default:
		return Real(math.Mod(float64(a), float64(b)))
	}
}

//// String Operations

// Name   Function
// cat    pop b then a, push a followed by b
func (vm *VM) cat(pos Pos) error {
	if err := vm.need(pos, 2); err != nil {
		return err
	}
	a, ok := vm.peek(1).(String)
	if !ok {
		return mismatch(pos, "String", vm.peek(1))
	}
	b, ok := vm.peek(0).(String)
	if !ok {
		return mismatch(pos, "String", vm.peek(0))
	}
	vm.drop(2)
	vm.push(a + b)
	return nil
}

//// Comparison Operations

// Name   Function
// eq     pop two values, push #t if they are the same kind and value
//        otherwise #f; never fails on kind
func (vm *VM) eq(pos Pos) error {
	if err := vm.need(pos, 2); err != nil {
		return err
	}
	res := equal(vm.peek(1), vm.peek(0))
	vm.drop(2)
	vm.push(boolSymbol(res))
	return nil
}

// Name   Function
// gt     pop b then a, push #t if a > b
// lt     pop b then a, push #t if a < b
func (vm *VM) compare(pos Pos, op Op) error {
	if err := vm.need(pos, 2); err != nil {
		return err
	}
	b, a := vm.peek(0), vm.peek(1)

	var cmp int
	switch a := a.(type) {
	case Integer:
		b, ok := b.(Integer)
		if !ok {
			return mismatch(pos, "Integer", vm.peek(0))
		}
		cmp = compareOrdered(a, b)
	case Real:
		b, ok := b.(Real)
		if !ok {
			return mismatch(pos, "Real", vm.peek(0))
		}
		cmp = compareOrdered(a, b)
	case String:
		b, ok := b.(String)
		if !ok {
			return mismatch(pos, "String", vm.peek(0))
		}
		cmp = strings.Compare(string(a), string(b))
	default:
		return mismatch(pos, "Integer, a Real or a String", a)
	}

	vm.drop(2)
	if op == OpGt {
		vm.push(boolSymbol(cmp > 0))
	} else {
		vm.push(boolSymbol(cmp < 0))
	}
	return nil
}

func compareOrdered[T Integer | Real](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Name   Function
// not    pop #t or #f, push its negation; any other symbol is an error
func (vm *VM) not(pos Pos) error {
	if err := vm.need(pos, 1); err != nil {
		return err
	}
	sym, ok := vm.peek(0).(Symbol)
	if !ok {
		return mismatch(pos, "Symbol", vm.peek(0))
	}
	var res Symbol
	switch sym {
	case True:
		res = False
	case False:
		res = True
	default:
		return errorf(pos, ErrInvalidBoolean, "Expected #t or #f, found #%v.", string(sym))
	}
	vm.drop(1)
	vm.push(res)
	return nil
}

func mismatch(pos Pos, want string, got Value) *Error {
	return errorf(pos, ErrTypeMismatch, "Expected %v, found %v.", article(want), article(TypeName(got)))
}
