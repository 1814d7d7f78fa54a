package lineinput

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Location names a line in an Input stream.
type Location struct {
	Name string
	Line int
}

// Line is one scanned line of text, without its line ending.
type Line struct {
	Location
	Text string
}

func (loc Location) String() string { return fmt.Sprintf("%v:%v", loc.Name, loc.Line) }
func (il Line) String() string      { return fmt.Sprintf("%v %q", il.Location, il.Text) }

// Input implements sequential line reading through a Queue of one or more
// input streams. Each stream is closed, if it is an io.Closer, once drained.
type Input struct {
	Queue []io.Reader
	Line  Line

	cur  io.Reader
	br   *bufio.Reader
	name string
	line int
	err  error
}

// Scan advances to the next line across every queued stream, returning false
// after the last line of the last stream or on the first read error.
func (in *Input) Scan() bool {
	for in.err == nil {
		if in.br == nil && !in.nextIn() {
			return false
		}
		s, err := in.br.ReadString('\n')
		if len(s) > 0 {
			in.line++
			in.Line = Line{
				Location: Location{Name: in.name, Line: in.line},
				Text:     strings.TrimSuffix(strings.TrimSuffix(s, "\n"), "\r"),
			}
			if err != nil && err != io.EOF {
				in.err = err
			}
			return true
		}
		if err == io.EOF {
			in.closeIn()
		} else if err != nil {
			in.err = err
		}
	}
	return false
}

// Err returns the first non-EOF read error encountered.
func (in *Input) Err() error { return in.err }

// Close closes the current stream and any still queued.
func (in *Input) Close() error {
	in.closeIn()
	for _, r := range in.Queue {
		if cl, ok := r.(io.Closer); ok {
			cl.Close()
		}
	}
	in.Queue = nil
	return nil
}

func (in *Input) closeIn() {
	if in.br == nil {
		return
	}
	if cl, ok := in.cur.(io.Closer); ok {
		cl.Close()
	}
	in.br = nil
	in.cur = nil
}

func (in *Input) nextIn() bool {
	in.closeIn()
	if len(in.Queue) == 0 {
		return false
	}
	r := in.Queue[0]
	in.Queue = in.Queue[1:]
	in.cur = r
	in.br = bufio.NewReader(r)
	in.name = nameOf(r)
	in.line = 0
	return true
}

func nameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return fmt.Sprintf("<unnamed %T>", obj)
}

// Named gives a reader a name for use in Locations.
func Named(name string, r io.Reader) io.Reader { return namedReader{r, name} }

type namedReader struct {
	io.Reader
	name string
}

func (nr namedReader) Name() string { return nr.name }

func (nr namedReader) Close() error {
	if cl, ok := nr.Reader.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}
