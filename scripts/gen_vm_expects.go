// Command gen_vm_expects writes free function forms of the vmTestCase builder
// methods, so that test expectations may be passed around as values:
//
//	func (vmt vmTestCase) expectStack(values ...Value) vmTestCase
//
// becomes
//
//	func expectVMStack(values ...Value) func(vmTestCase) vmTestCase
//
// The output is piped through goimports.
//
// Usage: go run scripts/gen_vm_expects.go -- INPUT.go [OUTPUT.go]
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"
)

var builderPrefixes = []string{"expect", "with"}

func main() {
	timeout := flag.Duration("timeout", 5*time.Second, "limit on parsing and formatting")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		log.Fatalln("usage: gen_vm_expects INPUT.go [OUTPUT.go]")
	}

	var out io.WriteCloser = os.Stdout
	if len(args) > 1 {
		f, err := os.Create(args[1])
		if err != nil {
			log.Fatalf("failed to create %v: %v", args[1], err)
		}
		out = f
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	if err := generate(ctx, args, out); err != nil {
		log.Fatalln(err)
	}
}

func generate(ctx context.Context, args []string, out io.WriteCloser) error {
	inName := args[0]
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, inName, nil, 0)
	if err != nil {
		return err
	}

	pr, pw := io.Pipe()
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		defer out.Close()
		cmd := exec.CommandContext(ctx, "goimports")
		cmd.Stdin = pr
		cmd.Stdout = out
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			pr.CloseWithError(err)
			return fmt.Errorf("goimports run failed: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "package %s\n\n", file.Name.Name)
		fmt.Fprintf(&buf, "// @generated from %s\n\n", inName)
		if len(args) > 1 {
			fmt.Fprintf(&buf, "//go:generate go run scripts/gen_vm_expects.go -- %s\n\n", strings.Join(args, " "))
		}
		err := writeExpects(&buf, fset, file)
		if err == nil {
			_, err = buf.WriteTo(pw)
		}
		pw.CloseWithError(err)
		return err
	})

	return eg.Wait()
}

func writeExpects(buf *bytes.Buffer, fset *token.FileSet, file *ast.File) error {
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || !isBuilder(fn) {
			continue
		}
		prefix, what := splitBuilder(fn.Name.Name)
		if prefix == "" {
			continue
		}

		var params, call []string
		for _, field := range fn.Type.Params.List {
			if len(field.Names) == 0 {
				return fmt.Errorf("%v: unnamed parameter", fset.Position(field.Pos()))
			}
			typ, err := exprString(fset, field.Type)
			if err != nil {
				return err
			}
			_, variadic := field.Type.(*ast.Ellipsis)
			for _, name := range field.Names {
				params = append(params, name.Name+" "+typ)
				if variadic {
					call = append(call, name.Name+"...")
				} else {
					call = append(call, name.Name)
				}
			}
		}

		fmt.Fprintf(buf, "func %sVM%s(%s) func(vmTestCase) vmTestCase {\n", prefix, what, strings.Join(params, ", "))
		fmt.Fprintf(buf, "\treturn func(vmt vmTestCase) vmTestCase {\n")
		fmt.Fprintf(buf, "\t\treturn vmt.%s(%s)\n", fn.Name.Name, strings.Join(call, ", "))
		fmt.Fprintf(buf, "\t}\n}\n\n")
	}
	return nil
}

// isBuilder matches methods shaped like
// func (vmt vmTestCase) expectX(args...) vmTestCase
func isBuilder(fn *ast.FuncDecl) bool {
	if fn.Recv == nil || len(fn.Recv.List) != 1 || !isIdent(fn.Recv.List[0].Type, "vmTestCase") {
		return false
	}
	results := fn.Type.Results
	return results != nil &&
		len(results.List) == 1 &&
		isIdent(results.List[0].Type, "vmTestCase") &&
		fn.Type.Params.NumFields() > 0
}

func isIdent(ex ast.Expr, name string) bool {
	id, ok := ex.(*ast.Ident)
	return ok && id.Name == name
}

func splitBuilder(name string) (prefix, what string) {
	for _, prefix := range builderPrefixes {
		if strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
			return prefix, name[len(prefix):]
		}
	}
	return "", ""
}

func exprString(fset *token.FileSet, ex ast.Expr) (string, error) {
	var sb strings.Builder
	err := printer.Fprint(&sb, fset, ex)
	return sb.String(), err
}
