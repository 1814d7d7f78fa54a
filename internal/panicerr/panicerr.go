// Package panicerr turns a panic, or a call to runtime.Goexit, inside a
// function into an ordinary error return.
package panicerr

import (
	"errors"
	"fmt"
	"io"
	"runtime/debug"
)

// Fault is a recovered abnormal exit from the function given to Recover.
type Fault struct {
	Name string

	// Value is what was passed to panic; it is nil after runtime.Goexit.
	Value interface{}
	Stack []byte
	Exit  bool
}

func (f *Fault) Error() string {
	what := "called runtime.Goexit"
	if !f.Exit {
		what = fmt.Sprintf("panicked: %v", f.Value)
	}
	if f.Name == "" {
		return what
	}
	return f.Name + " " + what
}

// Unwrap returns the panic value when it was an error.
func (f *Fault) Unwrap() error {
	err, _ := f.Value.(error)
	return err
}

// Format appends the captured stack under the %+v verb.
func (f *Fault) Format(st fmt.State, verb rune) {
	io.WriteString(st, f.Error())
	if verb == 'v' && st.Flag('+') && len(f.Stack) > 0 {
		fmt.Fprintf(st, "\nPanic stack: %s", f.Stack)
	}
}

// AsFault returns the Fault within err, if any.
func AsFault(err error) (*Fault, bool) {
	var fault *Fault
	ok := errors.As(err, &fault)
	return fault, ok
}

// Recover calls f on a fresh goroutine and waits for it. A normal return
// passes f's error through; a panic or Goexit comes back as a *Fault.
func Recover(name string, f func() error) error {
	done := make(chan error, 1)
	go func() {
		returned := false
		defer func() {
			if returned {
				return
			}
			fault := &Fault{Name: name}
			if fault.Value = recover(); fault.Value != nil {
				fault.Stack = debug.Stack()
			} else {
				fault.Exit = true
			}
			done <- fault
		}()
		err := f()
		returned = true
		done <- err
	}()
	return <-done
}
