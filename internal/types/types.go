package types

import "strings"

// Type represents a type in the Raven type system.
type Type interface {
	String() string
	// IsType is a marker method to ensure type safety.
	IsType()
}

// PrimitiveKind represents the kind of a primitive type.
type PrimitiveKind string

const (
	Int     PrimitiveKind = "int"
	Float   PrimitiveKind = "float"
	Bool    PrimitiveKind = "bool"
	String  PrimitiveKind = "string"
	Void    PrimitiveKind = "void"
	Unknown PrimitiveKind = "unknown"
)

// Primitive represents a primitive type.
type Primitive struct {
	Kind PrimitiveKind
}

func (p *Primitive) String() string { return string(p.Kind) }
func (p *Primitive) IsType()        {}

// Common primitive instances
var (
	TypeInt     = &Primitive{Kind: Int}
	TypeFloat   = &Primitive{Kind: Float}
	TypeBool    = &Primitive{Kind: Bool}
	TypeString  = &Primitive{Kind: String}
	TypeVoid    = &Primitive{Kind: Void}
	TypeUnknown = &Primitive{Kind: Unknown}
)

// Array is a homogeneous array type.
type Array struct {
	Elem Type
}

func (a *Array) String() string { return a.Elem.String() + "[]" }
func (a *Array) IsType()        {}

// Struct represents a struct type.
type Struct struct {
	Name   string
	Fields []Field
}

type Field struct {
	Name string
	Type Type
}

func (s *Struct) String() string { return s.Name }
func (s *Struct) IsType()        {}

// Field returns the type of the named field.
func (s *Struct) Field(name string) (Type, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// Enum represents an enum type with unit variants.
type Enum struct {
	Name     string
	Variants []string
}

func (e *Enum) String() string { return e.Name }
func (e *Enum) IsType()        {}

// HasVariant reports whether name is one of the declared variants.
func (e *Enum) HasVariant(name string) bool {
	for _, v := range e.Variants {
		if v == name {
			return true
		}
	}
	return false
}

// Param is a named function parameter.
type Param struct {
	Name string
	Type Type
}

// Function represents a function signature.
type Function struct {
	Name   string
	Params []Param
	Return Type
}

func (f *Function) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Name + ": " + p.Type.String()
	}
	return "fun " + f.Name + "(" + strings.Join(params, ", ") + ") -> " + f.Return.String()
}
func (f *Function) IsType() {}

// Module is the importable surface of a checked file.
type Module struct {
	Name    string
	Path    string
	Funcs   map[string]*Function
	Vars    map[string]Type
	Structs map[string]*Struct
	Enums   map[string]*Enum
}

func (m *Module) String() string { return "module " + m.Name }
func (m *Module) IsType()        {}

// IsNumeric reports whether t is int or float.
func IsNumeric(t Type) bool {
	return t == TypeInt || t == TypeFloat
}

// Identical reports structural equality. Struct and enum types are nominal.
func Identical(a, b Type) bool {
	switch x := a.(type) {
	case *Primitive:
		y, ok := b.(*Primitive)
		return ok && x.Kind == y.Kind
	case *Array:
		y, ok := b.(*Array)
		return ok && Identical(x.Elem, y.Elem)
	case *Struct:
		y, ok := b.(*Struct)
		return ok && x.Name == y.Name
	case *Enum:
		y, ok := b.(*Enum)
		return ok && x.Name == y.Name
	case *Module:
		y, ok := b.(*Module)
		return ok && x.Path == y.Path
	case *Function:
		return a == b
	}
	return false
}

// Assignable reports whether a value of type src may be stored where dst is
// expected. Unknown is accepted on either side.
func Assignable(dst, src Type) bool {
	if dst == TypeUnknown || src == TypeUnknown {
		return true
	}
	if d, ok := dst.(*Array); ok {
		if s, ok := src.(*Array); ok {
			return Assignable(d.Elem, s.Elem)
		}
		return false
	}
	return Identical(dst, src)
}
