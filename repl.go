package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/jcorbin/kitty/internal/store"
)

const (
	contPrompt   = "...> "
	historySeed  = 1000
	quitCommand  = "quit"
	dumpCommand  = ":dump"
	histCommand  = ":history"
	histDefault  = 10
	interruptLit = "=> #Interrupt"
)

// lineReader is the part of *liner.State that the REPL drives.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// historyStore is the part of *store.Store that the REPL drives.
type historyStore interface {
	AddCmd(cmd string) (int, error)
	NextCmdSeq() (int, error)
	CmdsWithSeq(from, upto int) ([]store.Cmd, error)
}

// repl runs an interactive session: each accepted entry is one turn through
// the same Session, so stack and variables carry over between entries.
type repl struct {
	session *Session
	lines   lineReader
	history historyStore

	out    io.Writer
	errOut io.Writer

	prompt  string
	timeout time.Duration

	// interrupts returns a context cancelled by an interrupt signal during
	// evaluation; nil means evaluation only ends by the timeout.
	interrupts func(ctx context.Context) (context.Context, context.CancelFunc)

	logf func(mess string, args ...interface{})
}

func runREPL(ctx context.Context, cfg config, session *Session, logf func(string, ...interface{})) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	r := repl{
		session: session,
		lines:   ln,
		out:     os.Stdout,
		errOut:  os.Stderr,
		prompt:  cfg.Prompt,
		timeout: cfg.Timeout,
		interrupts: func(ctx context.Context) (context.Context, context.CancelFunc) {
			return signal.NotifyContext(ctx, os.Interrupt)
		},
		logf: logf,
	}

	if !cfg.NoHistory && cfg.History != "" {
		if st, err := openHistory(cfg.History, ln); err != nil {
			logf("%v", err)
		} else {
			defer st.Close()
			r.history = st
		}
	}

	return r.run(ctx)
}

// openHistory opens the history database and seeds line editing with its
// most recent entries.
func openHistory(path string, ln *liner.State) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("unable to create history directory: %w", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	cmds, err := st.Recent(historySeed)
	if err != nil {
		st.Close()
		return nil, err
	}
	for _, cmd := range cmds {
		ln.AppendHistory(cmd.Text)
	}
	return st, nil
}

func (r *repl) run(ctx context.Context) error {
	for {
		src, err := r.read()
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			fmt.Fprintln(r.out, interruptLit)
			continue
		case errors.Is(err, io.EOF):
			fmt.Fprintln(r.out)
			return nil
		case err != nil:
			return err
		}
		if r.handle(ctx, src) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// read prompts for one entry, continuing onto more lines for as long as the
// text so far ends inside an unclosed block or string.
func (r *repl) read() (string, error) {
	var b strings.Builder
	for {
		prompt := r.prompt
		if b.Len() > 0 {
			prompt = contPrompt
		}
		line, err := r.lines.Prompt(prompt)
		if err != nil {
			return "", err
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if src := b.String(); !incomplete(&r.session.Symbols, src) {
			return src, nil
		}
	}
}

// incomplete reports whether src fails to parse only for want of more input.
// The trial parse uses a copy of syms so it declares nothing.
func incomplete(syms *Symbols, src string) bool {
	trial := syms.clone()
	_, err := Parse(src, &trial)
	return errors.Is(err, ErrUnexpectedEOF)
}

// handle processes one entry, returning true if the REPL should exit.
func (r *repl) handle(ctx context.Context, src string) (quit bool) {
	switch cmd := strings.TrimSpace(src); cmd {
	case "":
		return false
	case quitCommand:
		return true
	case dumpCommand:
		r.lines.AppendHistory(cmd)
		r.session.Dump(r.out)
		return false
	}
	if args := strings.Fields(src); args[0] == histCommand {
		r.lines.AppendHistory(strings.Join(args, " "))
		r.listHistory(args[1:])
		return false
	}

	r.lines.AppendHistory(strings.ReplaceAll(src, "\n", " "))
	if r.history != nil {
		if _, err := r.history.AddCmd(src); err != nil && r.logf != nil {
			r.logf("unable to save history: %v", err)
		}
	}
	r.turn(ctx, src)
	return false
}

func (r *repl) turn(ctx context.Context, src string) {
	if r.interrupts != nil {
		var stop context.CancelFunc
		ctx, stop = r.interrupts(ctx)
		defer stop()
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	if err := r.session.Run(ctx, src); err != nil {
		r.printError(err)
		return
	}
	if top, ok := r.session.Top(); ok {
		fmt.Fprintf(r.out, "=> %v :: %v\n", resultLiteral(top), TypeName(top))
	}
}

// resultLiteral renders a turn's result: strings stay quoted, but a symbol
// shows bare, as in "=> t :: Symbol". Symbols within a quote keep their #.
func resultLiteral(v Value) string {
	if sym, ok := v.(Symbol); ok {
		return string(sym)
	}
	return Literal(v, true)
}

// listHistory prints the last n stored entries, oldest first, each with its
// sequence number.
func (r *repl) listHistory(args []string) {
	n := histDefault
	if len(args) > 1 {
		r.printError(fmt.Errorf("usage: %v [N]", histCommand))
		return
	} else if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			r.printError(fmt.Errorf("usage: %v [N]", histCommand))
			return
		}
		n = v
	}
	if r.history == nil {
		r.printError(errors.New("history is disabled"))
		return
	}

	upto, err := r.history.NextCmdSeq()
	if err != nil {
		r.printError(err)
		return
	}
	from := upto - n
	if from < 1 {
		from = 1
	}
	cmds, err := r.history.CmdsWithSeq(from, upto)
	if err != nil {
		r.printError(err)
		return
	}
	for _, cmd := range cmds {
		fmt.Fprintf(r.out, "%5d  %v\n", cmd.Seq, strings.ReplaceAll(cmd.Text, "\n", " "))
	}
}

func (r *repl) printError(err error) {
	var kerr *Error
	if errors.As(err, &kerr) {
		fmt.Fprintf(r.errOut, "\x1b[0;31m%v:%v | %v\x1b[0m\n", kerr.Line, kerr.Column, kerr.Message)
	} else {
		fmt.Fprintf(r.errOut, "\x1b[0;31m%v\x1b[0m\n", err)
	}
}
