package logio

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failWriter struct{ n int }

func (fw *failWriter) Write([]byte) (int, error) {
	fw.n++
	return 0, errors.New("broken pipe")
}

func TestLogger(t *testing.T) {
	var out strings.Builder
	logger := New(&out, "kitty")

	logger.Printf(Info, "hello %v", "world")
	logger.Logf(Trace)("dropped below the minimum")
	logger.Logf(Warn)("careful\n")
	assert.Equal(t, 0, logger.ExitCode())

	logger.SetLevel(Trace)
	logger.Logf(Trace)("step %d", 1)

	logger.ErrorIf(nil)
	assert.Equal(t, 0, logger.ExitCode())
	logger.ErrorIf(errors.New("oops"))
	logger.Errorf("again %v", 2)
	assert.Equal(t, 1, logger.ExitCode())

	assert.Equal(t, strings.Join([]string{
		"kitty: INFO: hello world",
		"kitty: WARN: careful",
		"kitty: TRACE: step 1",
		"kitty: ERROR: oops",
		"kitty: ERROR: again 2",
	}, "\n")+"\n", out.String())
}

func TestLogger_color(t *testing.T) {
	var out strings.Builder
	logger := New(&out, "")
	logger.SetColor(true)
	logger.Printf(Info, "plain")
	logger.Errorf("red")
	assert.Equal(t, "INFO: plain\n\x1b[0;31mERROR: red\x1b[0m\n", out.String())
}

func TestLogger_outputError(t *testing.T) {
	var fw failWriter
	logger := New(&fw, "kitty")
	logger.Printf(Info, "lost")
	assert.Equal(t, 2, logger.ExitCode())
	logger.Errorf("also lost")
	assert.Equal(t, 2, logger.ExitCode())
	assert.Equal(t, 1, fw.n, "no more writes once output failed")
}

func TestLogger_noOutput(t *testing.T) {
	logger := New(nil, "kitty")
	logger.Errorf("dropped")
	assert.Equal(t, 1, logger.ExitCode())
}

func TestLevel(t *testing.T) {
	assert.Equal(t, "WARN", Warn.String())
	assert.Equal(t, "Level(9)", Level(9).String())
}

func TestWriter(t *testing.T) {
	var lines []string
	lw := &Writer{Logf: func(mess string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(mess, args...))
	}}

	fmt.Fprint(lw, "one\r\ntw")
	assert.Equal(t, []string{"one"}, lines)
	fmt.Fprint(lw, "o\n\nthree")
	assert.Equal(t, []string{"one", "two", ""}, lines)
	assert.NoError(t, lw.Close())
	assert.Equal(t, []string{"one", "two", "", "three"}, lines)
	assert.NoError(t, lw.Close())
	assert.Len(t, lines, 4, "nothing left to flush")

	std := log.New(lw, "rpc ", 0)
	std.Printf("request %d", 7)
	assert.Equal(t, "rpc request 7", lines[len(lines)-1])
}
