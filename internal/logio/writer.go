package logio

import (
	"bytes"
	"sync"
)

// Writer adapts a printf-style function, such as one from Logger.Logf, into
// an io.Writer: every complete line written becomes one message.
type Writer struct {
	Logf func(mess string, args ...interface{})

	mu      sync.Mutex
	pending []byte
}

// Write never fails; partial lines wait for their newline or Close.
func (lw *Writer) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	rest := append(lw.pending, p...)
	for {
		line, after, found := bytes.Cut(rest, []byte{'\n'})
		if !found {
			break
		}
		lw.emit(line)
		rest = after
	}
	lw.pending = append(lw.pending[:0], rest...)
	return len(p), nil
}

// Close logs any partial line left over.
func (lw *Writer) Close() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if len(lw.pending) > 0 {
		lw.emit(lw.pending)
		lw.pending = lw.pending[:0]
	}
	return nil
}

func (lw *Writer) emit(line []byte) {
	lw.Logf("%s", bytes.TrimSuffix(line, []byte{'\r'}))
}
