// Package builtins describes the native functions and methods shared by the
// type checker and the interpreter.
package builtins

// Kind is the coarse type of a builtin parameter or result.
type Kind int

const (
	Any Kind = iota
	Int
	Bool
	String
	Void
	Sequence // an array or a string
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Bool:
		return "bool"
	case String:
		return "string"
	case Void:
		return "void"
	case Sequence:
		return "array or string"
	default:
		return "any"
	}
}

// Variadic marks a signature without an upper arity bound.
const Variadic = -1

// Signature is the fixed shape of a builtin function.
type Signature struct {
	MinArgs int
	MaxArgs int // Variadic for no bound
	Params  []Kind
	Result  Kind
}

// Param returns the expected kind at position i. Positions past the listed
// parameters accept any value.
func (s Signature) Param(i int) Kind {
	if i < len(s.Params) {
		return s.Params[i]
	}
	return Any
}

// Accepts reports whether n arguments fit the arity range.
func (s Signature) Accepts(n int) bool {
	return n >= s.MinArgs && (s.MaxArgs == Variadic || n <= s.MaxArgs)
}

// Func is a native function.
type Func int

const (
	Len Func = iota + 1
	Type
	Print // a statement keyword; checked and run as ast.PrintStmt
	Input
	ReadFile
	WriteFile
	AppendFile
	FileExists
	Format
)

var funcs = []struct {
	fn   Func
	name string
	sig  Signature
}{
	{Len, "len", Signature{1, 1, []Kind{Sequence}, Int}},
	{Type, "type", Signature{1, 1, []Kind{Any}, String}},
	{Print, "print", Signature{1, Variadic, []Kind{Any}, Void}},
	{Input, "input", Signature{0, 1, []Kind{String}, String}},
	{ReadFile, "read_file", Signature{1, 1, []Kind{String}, String}},
	{WriteFile, "write_file", Signature{2, 2, []Kind{String, Any}, Void}},
	{AppendFile, "append_file", Signature{2, 2, []Kind{String, Any}, Void}},
	{FileExists, "file_exists", Signature{1, 1, []Kind{String}, Bool}},
	{Format, "format", Signature{1, Variadic, []Kind{String}, String}},
}

// LookupFunc returns the builtin called name.
func LookupFunc(name string) (Func, bool) {
	for _, f := range funcs {
		if f.name == name {
			return f.fn, true
		}
	}
	return 0, false
}

// Funcs lists every builtin function in declaration order.
func Funcs() []Func {
	out := make([]Func, len(funcs))
	for i, f := range funcs {
		out[i] = f.fn
	}
	return out
}

func (f Func) String() string {
	if f < Len || int(f) > len(funcs) {
		return "unknown"
	}
	return funcs[f-1].name
}

// Signature returns the fixed signature of f.
func (f Func) Signature() Signature {
	return funcs[f-1].sig
}

// Receiver is a bit mask of the value kinds a method can be called on.
type Receiver int

const (
	OnArray Receiver = 1 << iota
	OnString
)

// Method is a native method of arrays and strings.
type Method int

const (
	Push Method = iota + 1
	Pop
	Slice
	Join
	Split
	Replace
)

var methods = []struct {
	m         Method
	name      string
	arity     int
	receivers Receiver
}{
	{Push, "push", 1, OnArray},
	{Pop, "pop", 0, OnArray},
	{Slice, "slice", 2, OnArray | OnString},
	{Join, "join", 1, OnArray},
	{Split, "split", 1, OnString},
	{Replace, "replace", 2, OnString},
}

// LookupMethod returns the method called name.
func LookupMethod(name string) (Method, bool) {
	for _, m := range methods {
		if m.name == name {
			return m.m, true
		}
	}
	return 0, false
}

// Methods lists the methods callable on r.
func Methods(r Receiver) []Method {
	var out []Method
	for _, m := range methods {
		if m.receivers&r != 0 {
			out = append(out, m.m)
		}
	}
	return out
}

func (m Method) String() string {
	if m < Push || int(m) > len(methods) {
		return "unknown"
	}
	return methods[m-1].name
}

// Arity is the exact number of arguments m takes.
func (m Method) Arity() int { return methods[m-1].arity }

// Receivers is the mask of receiver kinds m accepts.
func (m Method) Receivers() Receiver { return methods[m-1].receivers }

// Mutates reports whether m changes its receiver in place.
func (m Method) Mutates() bool { return m == Push || m == Pop }
