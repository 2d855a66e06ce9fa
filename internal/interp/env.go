package interp

// Env is one binding layer. A function call gets a fresh Env whose parent is
// the global frame of the unit the function was declared in; the frame reads
// the globals and writes to copies of them.
type Env struct {
	vars   map[string]Value
	parent *Env
}

// NewEnv creates an environment nested under parent, which may be nil.
func NewEnv(parent *Env) *Env {
	return &Env{vars: make(map[string]Value), parent: parent}
}

// Define inserts or shadows name in this layer.
func (e *Env) Define(name string, v Value) {
	e.vars[name] = v
}

// Get searches outward through the chain.
func (e *Env) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Owns reports whether name is bound in this layer itself.
func (e *Env) Owns(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// Set rebinds name and reports whether it was bound anywhere in the chain.
// Outer layers are never written: a name bound further out gets its own
// binding in this layer, so a call frame cannot change the globals it reads.
func (e *Env) Set(name string, v Value) bool {
	if _, ok := e.Get(name); !ok {
		return false
	}
	e.vars[name] = v
	return true
}

// Names lists the bindings of this layer only.
func (e *Env) Names() []string {
	out := make([]string, 0, len(e.vars))
	for name := range e.vars {
		out = append(out, name)
	}
	return out
}
