package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strings"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

// runLSP serves the language server protocol over rw until the client exits
// or disconnects.
func runLSP(ctx context.Context, rw io.ReadWriteCloser, opts ...jsonrpc2.ConnOpt) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s := newLSPServer()
	conn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(rw, jsonrpc2.VSCodeObjectCodec{}),
		s.handler(), opts...)
	select {
	case <-conn.DisconnectNotify():
	case <-ctx.Done():
		conn.Close()
	}
}

// stdio joins stdin and stdout into the one stream a language client talks to.
type stdio struct {
	io.ReadCloser
	io.WriteCloser
}

func (c stdio) Close() error {
	if err := c.ReadCloser.Close(); err != nil {
		c.WriteCloser.Close()
		return err
	}
	return c.WriteCloser.Close()
}

type lspServer struct {
	content map[lsp.DocumentURI]string
}

func newLSPServer() *lspServer {
	return &lspServer{content: make(map[lsp.DocumentURI]string)}
}

type lspMethod func(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (interface{}, error)

func (s *lspServer) handler() jsonrpc2.Handler {
	return routingHandler(map[string]lspMethod{
		"initialize":              s.initialize,
		"shutdown":                lspNoop,
		"exit":                    s.exit,
		"textDocument/didOpen":    s.didOpen,
		"textDocument/didChange":  s.didChange,
		"textDocument/didClose":   s.didClose,
		"textDocument/hover":      s.hover,
		"textDocument/completion": s.completion,

		"initialized":                     lspNoop,
		"workspace/didChangeWatchedFiles": lspNoop,
	})
}

func lspNoop(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (interface{}, error) {
	return nil, nil
}

// routingHandler dispatches by method name; requests are handled one at a
// time, in the order received.
func routingHandler(methods map[string]lspMethod) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
		fn, ok := methods[req.Method]
		if !ok {
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		return fn(ctx, conn, params)
	})
}

func (s *lspServer) initialize(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (interface{}, error) {
	return &lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    lsp.TDSKFull,
				},
			},
			HoverProvider:      true,
			CompletionProvider: &lsp.CompletionOptions{},
		},
	}, nil
}

func (s *lspServer) exit(_ context.Context, conn jsonrpc2.JSONRPC2, _ json.RawMessage) (interface{}, error) {
	return nil, conn.Close()
}

func (s *lspServer) didOpen(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (interface{}, error) {
	var params lsp.DidOpenTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	uri, content := params.TextDocument.URI, params.TextDocument.Text
	s.content[uri] = content
	go publishDiagnostics(ctx, conn, uri, content)
	return nil, nil
}

func (s *lspServer) didChange(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (interface{}, error) {
	var params lsp.DidChangeTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil || len(params.ContentChanges) == 0 {
		return nil, errInvalidParams
	}
	// Only full document sync is advertised, so the last change is the
	// whole text.
	uri := params.TextDocument.URI
	content := params.ContentChanges[len(params.ContentChanges)-1].Text
	s.content[uri] = content
	go publishDiagnostics(ctx, conn, uri, content)
	return nil, nil
}

func (s *lspServer) didClose(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (interface{}, error) {
	var params lsp.DidCloseTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	delete(s.content, params.TextDocument.URI)
	return nil, nil
}

func (s *lspServer) hover(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (interface{}, error) {
	var params lsp.TextDocumentPositionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	return hoverAt(s.content[params.TextDocument.URI], params.Position), nil
}

func (s *lspServer) completion(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (interface{}, error) {
	var params lsp.CompletionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	return completions(s.content[params.TextDocument.URI]), nil
}

func publishDiagnostics(ctx context.Context, conn jsonrpc2.JSONRPC2, uri lsp.DocumentURI, content string) {
	conn.Notify(ctx, "textDocument/publishDiagnostics",
		lsp.PublishDiagnosticsParams{URI: uri, Diagnostics: diagnostics(content)})
}

// diagnostics parses a whole document with fresh symbols; there is at most
// one diagnostic, since parsing stops at the first error.
func diagnostics(content string) []lsp.Diagnostic {
	var syms Symbols
	_, err := Parse(content, &syms)
	if err == nil {
		return []lsp.Diagnostic{}
	}
	var perr *Error
	if !errors.As(err, &perr) {
		return []lsp.Diagnostic{{Severity: lsp.Error, Source: "kitty", Message: err.Error()}}
	}
	start := lspPosition(perr.Pos)
	end := start
	end.Character++
	return []lsp.Diagnostic{{
		Range:    lsp.Range{Start: start, End: end},
		Severity: lsp.Error,
		Source:   "kitty",
		Message:  perr.Message,
	}}
}

// lspPosition converts a 1-based rune position to a 0-based LSP one. Columns
// are counted in runes rather than UTF-16 units, which only differs past the
// basic multilingual plane.
func lspPosition(pos Pos) lsp.Position {
	return lsp.Position{Line: pos.Line - 1, Character: pos.Column - 1}
}

func hoverAt(content string, pos lsp.Position) lsp.Hover {
	word, rng := wordAt(content, pos)
	if word == "" {
		return lsp.Hover{}
	}
	var doc string
	if word == declareWord {
		doc = "let NAME ( body ) -- binds NAME to body, evaluated anew on every use"
	} else if op, ok := lookupOp(word); ok {
		doc = op.Doc()
	} else if body, ok := declarations(content)[word]; ok {
		doc = "let " + word + " (" + body + ")"
	} else {
		return lsp.Hover{}
	}
	return lsp.Hover{
		Contents: []lsp.MarkedString{lsp.RawMarkedString(doc)},
		Range:    &rng,
	}
}

func completions(content string) []lsp.CompletionItem {
	items := make([]lsp.CompletionItem, 0, int(opMax)+1)
	for op := Op(0); op < opMax; op++ {
		items = append(items, lsp.CompletionItem{
			Label:  op.String(),
			Kind:   lsp.CIKFunction,
			Detail: op.Doc(),
		})
	}
	items = append(items, lsp.CompletionItem{Label: declareWord, Kind: lsp.CIKKeyword})

	decls := declarations(content)
	names := make([]string, 0, len(decls))
	for name := range decls {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		items = append(items, lsp.CompletionItem{
			Label:  name,
			Kind:   lsp.CIKVariable,
			Detail: "(" + decls[name] + ")",
		})
	}
	return items
}

// declarations maps each name declared in content to the source of its last
// declared body. A document that does not parse still yields the names that
// were declared before the error, with empty bodies.
func declarations(content string) map[string]string {
	var syms Symbols
	exprs, _ := Parse(content, &syms)
	decls := make(map[string]string, syms.Len())
	for _, name := range syms.Names() {
		decls[name] = ""
	}
	var walk func([]Expr)
	walk = func(exprs []Expr) {
		for _, ex := range exprs {
			switch t := ex.Term.(type) {
			case Store:
				decls[t.Name] = joinSource(t.Body)
				walk(t.Body)
			case Quote:
				walk(t)
			}
		}
	}
	walk(exprs)
	return decls
}

// wordAt finds the whitespace delimited word touching pos, less any opening
// brackets glued to its front.
func wordAt(content string, pos lsp.Position) (string, lsp.Range) {
	lines := strings.Split(content, "\n")
	if pos.Line < 0 || pos.Line >= len(lines) {
		return "", lsp.Range{}
	}
	line := []rune(strings.TrimSuffix(lines[pos.Line], "\r"))
	at := pos.Character
	if at < 0 {
		at = 0
	} else if at > len(line) {
		at = len(line)
	}
	start, end := at, at
	for start > 0 && !isTerminator(line[start-1]) {
		start--
	}
	for end < len(line) && !isTerminator(line[end]) {
		end++
	}
	for start < end && line[start] == '[' {
		start++
	}
	if start == end {
		return "", lsp.Range{}
	}
	return string(line[start:end]), lsp.Range{
		Start: lsp.Position{Line: pos.Line, Character: start},
		End:   lsp.Position{Line: pos.Line, Character: end},
	}
}
