package interp

import (
	"strconv"
	"strings"
)

// Kind identifies the runtime category of a value.
type Kind int

const (
	KindVoid Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	KindArray
	KindStruct
	KindEnum
	KindModule
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindModule:
		return "module"
	default:
		return "unknown"
	}
}

// Value is the interface implemented by every runtime value.
type Value interface {
	Kind() Kind
}

type IntValue struct {
	Val int64
}

func (IntValue) Kind() Kind { return KindInt }

type FloatValue struct {
	Val float64
}

func (FloatValue) Kind() Kind { return KindFloat }

type BoolValue struct {
	Val bool
}

func (BoolValue) Kind() Kind { return KindBool }

type StringValue struct {
	Val string
}

func (StringValue) Kind() Kind { return KindString }

type VoidValue struct{}

func (VoidValue) Kind() Kind { return KindVoid }

// ArrayValue is mutated in place through an lvalue; every binding holds its
// own copy.
type ArrayValue struct {
	Elements []Value
}

func (*ArrayValue) Kind() Kind { return KindArray }

// FieldValue is one field of a struct instance.
type FieldValue struct {
	Name  string
	Value Value
}

// StructValue keeps fields in declaration order.
type StructValue struct {
	Name   string
	Fields []FieldValue
}

func (*StructValue) Kind() Kind { return KindStruct }

// Get returns the named field.
func (s *StructValue) Get(name string) (Value, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Set replaces the named field and reports whether it exists.
func (s *StructValue) Set(name string, v Value) bool {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			s.Fields[i].Value = v
			return true
		}
	}
	return false
}

type EnumValue struct {
	Enum    string
	Variant string
}

func (EnumValue) Kind() Kind { return KindEnum }

// ModuleValue is a reference to an imported module.
type ModuleValue struct {
	Name string
	Unit *Unit
}

func (*ModuleValue) Kind() Kind { return KindModule }

// Copy returns a deep copy of arrays and structs. Other values are returned
// as-is.
func Copy(v Value) Value {
	switch val := v.(type) {
	case *ArrayValue:
		elems := make([]Value, len(val.Elements))
		for i, e := range val.Elements {
			elems[i] = Copy(e)
		}
		return &ArrayValue{Elements: elems}
	case *StructValue:
		fields := make([]FieldValue, len(val.Fields))
		for i, f := range val.Fields {
			fields[i] = FieldValue{Name: f.Name, Value: Copy(f.Value)}
		}
		return &StructValue{Name: val.Name, Fields: fields}
	}
	return v
}

// Equal compares two values structurally. Ints and floats compare by
// numeric value.
func Equal(a, b Value) bool {
	if af, bf, ok := numericPair(a, b); ok {
		return af == bf
	}
	switch av := a.(type) {
	case IntValue:
		bv, ok := b.(IntValue)
		return ok && av.Val == bv.Val
	case BoolValue:
		bv, ok := b.(BoolValue)
		return ok && av.Val == bv.Val
	case StringValue:
		bv, ok := b.(StringValue)
		return ok && av.Val == bv.Val
	case VoidValue:
		_, ok := b.(VoidValue)
		return ok
	case EnumValue:
		bv, ok := b.(EnumValue)
		return ok && av == bv
	case *ModuleValue:
		bv, ok := b.(*ModuleValue)
		return ok && av.Unit == bv.Unit
	case *ArrayValue:
		bv, ok := b.(*ArrayValue)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !Equal(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *StructValue:
		bv, ok := b.(*StructValue)
		if !ok || av.Name != bv.Name || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for i := range av.Fields {
			if av.Fields[i].Name != bv.Fields[i].Name || !Equal(av.Fields[i].Value, bv.Fields[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// numericPair widens a and b to float64 when at least one is a float and
// both are numbers.
func numericPair(a, b Value) (float64, float64, bool) {
	_, aFloat := a.(FloatValue)
	_, bFloat := b.(FloatValue)
	if !aFloat && !bFloat {
		return 0, 0, false
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	return af, bf, aok && bok
}

func toFloat(v Value) (float64, bool) {
	switch n := v.(type) {
	case IntValue:
		return float64(n.Val), true
	case FloatValue:
		return n.Val, true
	}
	return 0, false
}

// TypeName is what the type builtin reports for v.
func TypeName(v Value) string {
	switch val := v.(type) {
	case *StructValue:
		return val.Name
	case EnumValue:
		return val.Enum
	}
	return v.Kind().String()
}

// Format renders v for display. Strings are shown raw at the top level and
// quoted inside arrays and structs.
func Format(v Value) string {
	if s, ok := v.(StringValue); ok {
		return s.Val
	}
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v Value) {
	switch val := v.(type) {
	case nil:
		b.WriteString("void")
	case IntValue:
		b.WriteString(strconv.FormatInt(val.Val, 10))
	case FloatValue:
		b.WriteString(strconv.FormatFloat(val.Val, 'f', -1, 64))
	case BoolValue:
		b.WriteString(strconv.FormatBool(val.Val))
	case StringValue:
		b.WriteString(strconv.Quote(val.Val))
	case VoidValue:
		b.WriteString("void")
	case *ArrayValue:
		b.WriteByte('[')
		for i, e := range val.Elements {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, e)
		}
		b.WriteByte(']')
	case *StructValue:
		b.WriteString(val.Name)
		if len(val.Fields) == 0 {
			b.WriteString(" {}")
			return
		}
		b.WriteString(" { ")
		for i, f := range val.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
			b.WriteString(": ")
			writeValue(b, f.Value)
		}
		b.WriteString(" }")
	case EnumValue:
		b.WriteString(val.Enum + "::" + val.Variant)
	case *ModuleValue:
		b.WriteString("<module " + val.Name + ">")
	}
}
