// Package logio holds the kitty command's diagnostic logger, and an adapter
// that routes writer-based logging from libraries into it.
package logio

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// Level orders messages by severity.
type Level int

// Levels, least severe first.
const (
	Trace Level = iota
	Info
	Warn
	Error
)

var levelNames = [...]string{"TRACE", "INFO", "WARN", "ERROR"}

func (lvl Level) String() string {
	if lvl < 0 || int(lvl) >= len(levelNames) {
		return fmt.Sprintf("Level(%d)", int(lvl))
	}
	return levelNames[lvl]
}

const (
	colorError = "\x1b[0;31m"
	colorReset = "\x1b[0m"
)

// Logger writes "prefix: LEVEL: message" lines, dropping those below its
// minimum level. It remembers the worst thing that happened as an exit code:
// 1 once any error is logged, 2 once its own output fails.
type Logger struct {
	mu       sync.Mutex
	out      io.Writer
	prefix   string
	min      Level
	color    bool
	line     bytes.Buffer
	exitCode int
}

// New creates a logger writing to out at level Info and above.
func New(out io.Writer, prefix string) *Logger {
	return &Logger{out: out, prefix: prefix, min: Info}
}

// SetLevel changes the minimum level written.
func (log *Logger) SetLevel(min Level) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.min = min
}

// SetColor turns on highlighting of error lines, as for a terminal.
func (log *Logger) SetColor(on bool) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.color = on
}

// ExitCode returns the code to pass to os.Exit.
func (log *Logger) ExitCode() int {
	log.mu.Lock()
	defer log.mu.Unlock()
	return log.exitCode
}

// Logf returns a printf-style function logging at the given level.
func (log *Logger) Logf(level Level) func(mess string, args ...interface{}) {
	return func(mess string, args ...interface{}) { log.Printf(level, mess, args...) }
}

// Errorf logs at Error level.
func (log *Logger) Errorf(mess string, args ...interface{}) {
	log.Printf(Error, mess, args...)
}

// ErrorIf logs err, if any, at Error level.
func (log *Logger) ErrorIf(err error) {
	if err != nil {
		log.Printf(Error, "%v", err)
	}
}

// Printf logs one message; a trailing newline is added if missing.
func (log *Logger) Printf(level Level, mess string, args ...interface{}) {
	log.mu.Lock()
	defer log.mu.Unlock()
	if level >= Error && log.exitCode == 0 {
		log.exitCode = 1
	}
	if level < log.min || log.out == nil || log.exitCode == 2 {
		return
	}

	log.line.Reset()
	color := log.color && level >= Error
	if color {
		log.line.WriteString(colorError)
	}
	if log.prefix != "" {
		log.line.WriteString(log.prefix)
		log.line.WriteString(": ")
	}
	log.line.WriteString(level.String())
	log.line.WriteString(": ")
	if len(args) > 0 {
		fmt.Fprintf(&log.line, mess, args...)
	} else {
		log.line.WriteString(mess)
	}
	if b := log.line.Bytes(); b[len(b)-1] == '\n' {
		log.line.Truncate(len(b) - 1)
	}
	if color {
		log.line.WriteString(colorReset)
	}
	log.line.WriteByte('\n')

	if _, err := log.line.WriteTo(log.out); err != nil {
		log.exitCode = 2
	}
}
