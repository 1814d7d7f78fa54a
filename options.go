package main

import (
	"io"

	"github.com/jcorbin/kitty/internal/flushio"
)

// Option configures a Session.
type Option interface{ apply(s *Session) }

var defaults = []Option{
	withOutput(nil),
}

// Options combines any number of options into one.
func Options(opts ...Option) Option {
	var all options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil:
		case options:
			all = append(all, impl...)
		default:
			all = append(all, impl)
		}
	}
	if len(all) == 1 {
		return all[0]
	}
	return all
}

type options []Option

func (opts options) apply(s *Session) {
	for _, opt := range opts {
		opt.apply(s)
	}
}

type withLogfn func(mess string, args ...interface{})

func (logfn withLogfn) apply(s *Session) {
	s.logfn = logfn
}

type outputOption struct{ io.Writer }
type teeOption struct{ io.Writer }
type depthLimitOption int

func withOutput(w io.Writer) outputOption        { return outputOption{w} }
func withTee(w io.Writer) teeOption              { return teeOption{w} }
func withDepthLimit(limit int) depthLimitOption { return depthLimitOption(limit) }

func (o outputOption) apply(s *Session) {
	if s.out != nil {
		s.out.Flush()
	}
	s.out = flushio.NewWriteFlusher(o.Writer)
}

func (o teeOption) apply(s *Session) {
	s.out = flushio.Tee(s.out, flushio.NewWriteFlusher(o.Writer))
}

func (lim depthLimitOption) apply(s *Session) {
	s.depthLimit = int(lim)
}
