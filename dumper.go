package main

import (
	"fmt"
	"io"
	"strconv"
)

type vmDumper struct {
	vm   *VM
	syms *Symbols
	out  io.Writer
}

func (dump vmDumper) dump() {
	fmt.Fprintf(dump.out, "# VM Dump\n")
	fmt.Fprintf(dump.out, "  depth: %v\n", dump.vm.depth)
	if lim := dump.vm.depthLimit; lim > 0 {
		fmt.Fprintf(dump.out, "  depthLimit: %v\n", lim)
	}
	dump.dumpStack()
	dump.dumpVars()
}

// dumpStack lists the stack bottom first, so the top is the last line.
func (dump vmDumper) dumpStack() {
	stack := dump.vm.stack
	fmt.Fprintf(dump.out, "# Stack @%v\n", len(stack))
	width := addrWidth(len(stack))
	for i, val := range stack {
		fmt.Fprintf(dump.out, "  @%*v %v :: %v\n", width, i, Literal(val, true), TypeName(val))
	}
}

func (dump vmDumper) dumpVars() {
	n := len(dump.vm.vars)
	if dump.syms != nil && dump.syms.Len() > n {
		n = dump.syms.Len()
	}
	fmt.Fprintf(dump.out, "# Variables @%v\n", n)
	width := addrWidth(n)
	for id := 0; id < n; id++ {
		name := ""
		if dump.syms != nil {
			name = dump.syms.Name(id)
		}
		if body, ok := dump.vm.Binding(id); ok {
			name = dump.vm.vars[id].name
			fmt.Fprintf(dump.out, "  @%*v %v (%v)\n", width, id, name, joinSource(body))
		} else {
			if name == "" {
				name = "$" + strconv.Itoa(id)
			}
			fmt.Fprintf(dump.out, "  @%*v %v unbound\n", width, id, name)
		}
	}
}

// addrWidth is the digit width that aligns a listing of n addresses.
func addrWidth(n int) int { return len(strconv.Itoa(n)) }
