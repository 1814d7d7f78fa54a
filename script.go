package main

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/jcorbin/kitty/internal/lineinput"
)

// interactive reports whether f is a terminal that a person is typing at.
func interactive(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// openScripts opens every named file for runScript; "-" names stdin.
func openScripts(names []string, stdin io.Reader) ([]io.Reader, error) {
	if len(names) == 0 {
		return []io.Reader{lineinput.Named("<stdin>", stdin)}, nil
	}
	inputs := make([]io.Reader, 0, len(names))
	for _, name := range names {
		if name == "-" {
			inputs = append(inputs, lineinput.Named("<stdin>", stdin))
			continue
		}
		f, err := os.Open(name)
		if err != nil {
			for _, in := range inputs {
				if cl, ok := in.(io.Closer); ok {
					cl.Close()
				}
			}
			return nil, err
		}
		inputs = append(inputs, f)
	}
	return inputs, nil
}

// runScript evaluates every input, in order, one entry at a time through
// session. An entry is usually one line, but runs on over following lines
// while it ends inside an unclosed block or string, as at the REPL; it never
// runs past the end of its input. A failing entry is reported through
// errorf, then the run goes on; the returned count says how many failed.
func runScript(
	ctx context.Context,
	session *Session,
	inputs []io.Reader,
	timeout time.Duration,
	errorf func(mess string, args ...interface{}),
) (failed int, err error) {
	in := lineinput.Input{Queue: inputs}
	defer in.Close()

	var (
		start lineinput.Location
		entry strings.Builder
	)
	flush := func() {
		if entry.Len() == 0 {
			return
		}
		src := entry.String()
		entry.Reset()
		if err := runLine(ctx, session, src, timeout); err != nil {
			failed++
			reportScriptError(errorf, start, err)
		}
	}

	for in.Scan() {
		if err := ctx.Err(); err != nil {
			return failed, err
		}
		line := in.Line
		if entry.Len() > 0 && line.Name != start.Name {
			flush()
		}
		if entry.Len() == 0 {
			start = line.Location
		} else {
			entry.WriteByte('\n')
		}
		entry.WriteString(line.Text)
		if !incomplete(&session.Symbols, entry.String()) {
			flush()
		}
	}
	if err := ctx.Err(); err != nil {
		return failed, err
	}
	flush()
	return failed, in.Err()
}

// reportScriptError locates err within the file, given where its entry began.
func reportScriptError(errorf func(mess string, args ...interface{}), start lineinput.Location, err error) {
	var kerr *Error
	if errors.As(err, &kerr) {
		errorf("%v:%v:%v: %v", start.Name, start.Line+kerr.Line-1, kerr.Column, kerr.Message)
	} else {
		errorf("%v: %v", start, err)
	}
}

func runLine(ctx context.Context, session *Session, src string, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return session.Run(ctx, src)
}
