package main

// Symbols maps variable names to slot indices. It only ever grows: a name
// keeps its slot for the life of the session, and redeclaring it rebinds
// that same slot.
type Symbols struct {
	strings []string
	symbols map[string]int
}

// Len returns how many names have been assigned slots.
func (sym *Symbols) Len() int { return len(sym.strings) }

// Name returns the name for a slot, or "" if the slot does not exist.
func (sym *Symbols) Name(id int) string {
	if id >= 0 && id < len(sym.strings) {
		return sym.strings[id]
	}
	return ""
}

// Names returns all names in slot order.
func (sym *Symbols) Names() []string {
	return append([]string(nil), sym.strings...)
}

// Lookup returns the slot for name, if any.
func (sym *Symbols) Lookup(name string) (id int, defined bool) {
	id, defined = sym.symbols[name]
	return id, defined
}

// symbolicate returns the slot for name, appending a new one if needed.
func (sym *Symbols) symbolicate(name string) (id int) {
	id, defined := sym.symbols[name]
	if !defined {
		if sym.symbols == nil {
			sym.symbols = make(map[string]int)
		}
		id = len(sym.strings)
		sym.strings = append(sym.strings, name)
		sym.symbols[name] = id
	}
	return id
}

// clone returns an independent copy, for parsing that must not leave any
// declarations behind.
func (sym *Symbols) clone() Symbols {
	cl := Symbols{strings: append([]string(nil), sym.strings...)}
	if len(sym.symbols) > 0 {
		cl.symbols = make(map[string]int, len(sym.symbols))
		for name, id := range sym.symbols {
			cl.symbols[name] = id
		}
	}
	return cl
}
