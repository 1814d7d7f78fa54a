package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/jcorbin/kitty/internal/logio"
)

func main() {
	logger := logio.New(os.Stderr, filepath.Base(os.Args[0]))
	logger.SetColor(interactive(os.Stderr))

	cf, err := parseFlags(os.Args[0], os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	} else if err != nil {
		os.Exit(2)
	}
	cfg, err := cf.config()
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(logger.ExitCode())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	var tracef func(mess string, args ...interface{})
	if cfg.Trace {
		logger.SetLevel(logio.Trace)
		tracef = logger.Logf(logio.Trace)
	}

	switch {
	case cf.lsp:
		var opts []jsonrpc2.ConnOpt
		if tracef != nil {
			opts = append(opts, jsonrpc2.LogMessages(log.New(&logio.Writer{Logf: logger.Logf(logio.Trace)}, "lsp ", 0)))
		}
		runLSP(ctx, stdio{os.Stdin, os.Stdout}, opts...)

	case len(cf.files) > 0 || !interactive(os.Stdin):
		inputs, err := openScripts(cf.files, os.Stdin)
		if err != nil {
			logger.Errorf("%v", err)
			break
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		session := newSession(cfg, tracef)
		_, err = runScript(ctx, session, inputs, cfg.Timeout, logger.Errorf)
		logger.ErrorIf(err)

	default:
		session := newSession(cfg, tracef)
		logger.ErrorIf(runREPL(ctx, cfg, session, logger.Logf(logio.Warn)))
	}

	os.Exit(logger.ExitCode())
}

func newSession(cfg config, tracef func(mess string, args ...interface{})) *Session {
	opts := []Option{
		WithOutput(os.Stdout),
		WithDepthLimit(cfg.DepthLimit),
	}
	if tracef != nil {
		opts = append(opts, WithLogf(tracef))
	}
	return New(opts...)
}
