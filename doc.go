/* Package main: kitty, a tiny concatenative stack language

A kitty program is a sequence of expressions separated by whitespace. Each
expression is evaluated left to right against a single operand stack:

	1 2 +          ; pushes 1, pushes 2, then replaces both with 3
	"a" "b" cat    ; "ab"
	[ 1 2 + ] app  ; a quote is deferred code; app evaluates it in place

Literals push themselves: integers (32-bit), reals (a digit run holding one
dot, like 2.5 or 2.), double quoted strings without escapes, #symbols, and
[ quotes ]. The symbols #t and #f double as booleans.

Everything else is a word. The builtin words are:

	+ - * / %   arithmetic on two Integers or two Reals
	dup pop swap
	app         evaluate a quote
	cat         concatenate two Strings
	eq          same kind and value
	gt lt       order two Integers, Reals or Strings
	not         flip #t and #f
	print_stack write the stack to output

Binary words take their right hand operand from the top of the stack, so
"a b -" computes a-b.

Variables

	let NAME ( body )

binds NAME to an unevaluated body. Every later use of NAME evaluates that body
afresh, against whatever the stack and variables are at that moment:

	let sq ( dup * )
	3 sq          ; 9
	let sq ( 0 )  ; rebinding changes every later use, even inside other bodies

Names must be declared before use; a body may refer to its own name, making
recursion possible, though only bounded by the evaluation depth limit.

Sessions

Stack and variables persist from one input to the next. When an expression
fails, evaluation stops there: everything before it stays done, and the
failing word leaves the stack as it was.

The kitty command runs an interactive prompt when stdin is a terminal, runs
script files (or piped stdin) one line at a time otherwise, and serves the
language server protocol with -lsp.
*/
package main
