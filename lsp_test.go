package main

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLSP_diagnostics(t *testing.T) {
	assert.Equal(t, []lsp.Diagnostic{}, diagnostics("let X ( 1 )\nX X +"))
	assert.Equal(t, []lsp.Diagnostic{{
		Range: lsp.Range{
			Start: lsp.Position{Line: 1, Character: 2},
			End:   lsp.Position{Line: 1, Character: 3},
		},
		Severity: lsp.Error,
		Source:   "kitty",
		Message:  "Use of an undefined variable: Y.",
	}}, diagnostics("let X ( 1 )\nX Y +"))

	diags := diagnostics("[ 1 2")
	require.Len(t, diags, 1)
	assert.Equal(t, lsp.Position{Line: 0, Character: 5}, diags[0].Range.Start)
}

func TestLSP_hover(t *testing.T) {
	content := "let sq ( dup * )\n3 sq [dup] app"
	for _, tc := range []struct {
		name string
		pos  lsp.Position
		want string
		rng  lsp.Range
	}{
		{"keyword", lsp.Position{Line: 0, Character: 1}, "let NAME ( body ) -- binds NAME to body, evaluated anew on every use",
			lsp.Range{Start: lsp.Position{Line: 0, Character: 0}, End: lsp.Position{Line: 0, Character: 3}}},
		{"builtin", lsp.Position{Line: 0, Character: 10}, "a dup -- a a",
			lsp.Range{Start: lsp.Position{Line: 0, Character: 9}, End: lsp.Position{Line: 0, Character: 12}}},
		{"end of word", lsp.Position{Line: 1, Character: 4}, "let sq (dup *)",
			lsp.Range{Start: lsp.Position{Line: 1, Character: 2}, End: lsp.Position{Line: 1, Character: 4}}},
		{"bracketed", lsp.Position{Line: 1, Character: 7}, "a dup -- a a",
			lsp.Range{Start: lsp.Position{Line: 1, Character: 6}, End: lsp.Position{Line: 1, Character: 9}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := hoverAt(content, tc.pos)
			require.Len(t, h.Contents, 1)
			assert.Equal(t, tc.want, h.Contents[0].Value)
			if assert.NotNil(t, h.Range) {
				assert.Equal(t, tc.rng, *h.Range)
			}
		})
	}

	assert.Empty(t, hoverAt(content, lsp.Position{Line: 1, Character: 0}).Contents, "literal")
	assert.Empty(t, hoverAt(content, lsp.Position{Line: 7, Character: 0}).Contents, "past end")
	assert.Empty(t, hoverAt("  ", lsp.Position{Line: 0, Character: 1}).Contents, "blank")

	h := hoverAt("dup", lsp.Position{Line: 0, Character: -1})
	if assert.Len(t, h.Contents, 1, "negative column clamps to the line start") {
		assert.Equal(t, "a dup -- a a", h.Contents[0].Value)
	}
	assert.Empty(t, hoverAt(content, lsp.Position{Line: -1, Character: 0}).Contents, "negative line")
}

func TestLSP_completions(t *testing.T) {
	items := completions("let b ( 1 ) [ let a ( b b ) ] oops")
	require.Len(t, items, int(opMax)+3)
	assert.Equal(t, lsp.CompletionItem{Label: "+", Kind: lsp.CIKFunction, Detail: "a b + -- a+b"}, items[0])
	assert.Equal(t, lsp.CompletionItem{Label: "let", Kind: lsp.CIKKeyword}, items[opMax])
	assert.Equal(t, lsp.CompletionItem{Label: "a", Kind: lsp.CIKVariable, Detail: "()"}, items[opMax+1])
	assert.Equal(t, lsp.CompletionItem{Label: "b", Kind: lsp.CIKVariable, Detail: "()"}, items[opMax+2])

	items = completions("let b ( 1 ) [ let a ( b b ) ]")
	assert.Equal(t, "(b b)", items[opMax+1].Detail)
	assert.Equal(t, "(1)", items[opMax+2].Detail)
}

type diagnosticsCollector chan lsp.PublishDiagnosticsParams

func (dc diagnosticsCollector) Handle(_ context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) {
	if req.Method != "textDocument/publishDiagnostics" || req.Params == nil {
		return
	}
	var params lsp.PublishDiagnosticsParams
	if json.Unmarshal(*req.Params, &params) == nil {
		dc <- params
	}
}

func TestLSP_session(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	serverSide, clientSide := net.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		runLSP(ctx, serverSide)
	}()

	diags := make(diagnosticsCollector, 4)
	client := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}),
		diags)

	var init lsp.InitializeResult
	require.NoError(t, client.Call(ctx, "initialize", lsp.InitializeParams{}, &init))
	assert.True(t, init.Capabilities.HoverProvider)
	require.NoError(t, client.Notify(ctx, "initialized", struct{}{}))

	const uri = lsp.DocumentURI("file:///tmp/demo.kitty")
	require.NoError(t, client.Notify(ctx, "textDocument/didOpen", lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{URI: uri, Text: "1 ]"},
	}))
	select {
	case params := <-diags:
		assert.Equal(t, uri, params.URI)
		require.Len(t, params.Diagnostics, 1)
		assert.Equal(t, "Unexpected ']'.", params.Diagnostics[0].Message)
	case <-ctx.Done():
		t.Fatal("no diagnostics after didOpen")
	}

	require.NoError(t, client.Notify(ctx, "textDocument/didChange", lsp.DidChangeTextDocumentParams{
		TextDocument:   lsp.VersionedTextDocumentIdentifier{TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: uri}},
		ContentChanges: []lsp.TextDocumentContentChangeEvent{{Text: "1 dup"}},
	}))
	select {
	case params := <-diags:
		assert.Empty(t, params.Diagnostics)
	case <-ctx.Done():
		t.Fatal("no diagnostics after didChange")
	}

	var hover lsp.Hover
	require.NoError(t, client.Call(ctx, "textDocument/hover", lsp.TextDocumentPositionParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: uri},
		Position:     lsp.Position{Line: 0, Character: 3},
	}, &hover))
	require.Len(t, hover.Contents, 1)
	assert.Equal(t, "a dup -- a a", hover.Contents[0].Value)

	var items []lsp.CompletionItem
	require.NoError(t, client.Call(ctx, "textDocument/completion", lsp.CompletionParams{
		TextDocumentPositionParams: lsp.TextDocumentPositionParams{TextDocument: lsp.TextDocumentIdentifier{URI: uri}},
	}, &items))
	assert.Len(t, items, int(opMax)+1)

	err := client.Call(ctx, "textDocument/rename", nil, nil)
	var rpcErr *jsonrpc2.Error
	if assert.ErrorAs(t, err, &rpcErr) {
		assert.Equal(t, int64(jsonrpc2.CodeMethodNotFound), rpcErr.Code)
	}

	require.NoError(t, client.Call(ctx, "shutdown", nil, nil))
	require.NoError(t, client.Notify(ctx, "exit", nil))

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("server did not exit")
	}
	client.Close()
}
