package interp

import (
	"github.com/raven-lang/raven/internal/ast"
	"github.com/raven-lang/raven/internal/diag"
)

// lvalue is an addressable assignment target. Field and index targets read
// their container through the parent and write into it in place.
type lvalue interface {
	get() (Value, error)
	set(Value) error
}

type varRef struct {
	i    *Interpreter
	name string
	span diag.Span
}

// get returns the binding that field and index writes go through. A binding
// from an outer layer is copied into the current one first.
func (r *varRef) get() (Value, error) {
	v, ok := r.i.env.Get(r.name)
	if !ok {
		return nil, r.i.errorf(r.span, "Undefined variable '%s'", r.name)
	}
	if !r.i.env.Owns(r.name) {
		v = Copy(v)
		r.i.env.Define(r.name, v)
	}
	return v, nil
}

func (r *varRef) set(v Value) error {
	if !r.i.env.Set(r.name, v) {
		return r.i.errorf(r.span, "Undefined variable '%s'", r.name)
	}
	return nil
}

type fieldRef struct {
	i      *Interpreter
	parent lvalue
	field  string
	span   diag.Span
}

func (r *fieldRef) container() (*StructValue, error) {
	p, err := r.parent.get()
	if err != nil {
		return nil, err
	}
	switch t := p.(type) {
	case *StructValue:
		return t, nil
	case *ModuleValue:
		return nil, r.i.errorf(r.span, "Cannot assign to a member of module '%s'", t.Name)
	}
	return nil, r.i.errorf(r.span, "Cannot access field '%s' on %s", r.field, TypeName(p))
}

func (r *fieldRef) get() (Value, error) {
	st, err := r.container()
	if err != nil {
		return nil, err
	}
	v, ok := st.Get(r.field)
	if !ok {
		return nil, r.i.errorf(r.span, "Struct '%s' has no field '%s'", st.Name, r.field)
	}
	return v, nil
}

func (r *fieldRef) set(v Value) error {
	st, err := r.container()
	if err != nil {
		return err
	}
	if !st.Set(r.field, v) {
		return r.i.errorf(r.span, "Struct '%s' has no field '%s'", st.Name, r.field)
	}
	return nil
}

type indexRef struct {
	i      *Interpreter
	parent lvalue
	index  int64
	span   diag.Span
}

func (r *indexRef) container() (*ArrayValue, error) {
	p, err := r.parent.get()
	if err != nil {
		return nil, err
	}
	switch t := p.(type) {
	case *ArrayValue:
		if r.index < 0 || r.index >= int64(len(t.Elements)) {
			return nil, r.i.errorf(r.span, "Index %d out of bounds for array of length %d", r.index, len(t.Elements))
		}
		return t, nil
	case StringValue:
		return nil, r.i.errorf(r.span, "Strings are immutable; cannot assign to an index")
	}
	return nil, r.i.errorf(r.span, "Cannot index a value of type %s", TypeName(p))
}

func (r *indexRef) get() (Value, error) {
	arr, err := r.container()
	if err != nil {
		return nil, err
	}
	return arr.Elements[r.index], nil
}

func (r *indexRef) set(v Value) error {
	arr, err := r.container()
	if err != nil {
		return err
	}
	arr.Elements[r.index] = v
	return nil
}

// lvalueOf resolves an assignment target. Index expressions are evaluated
// here, before the assigned value.
func (i *Interpreter) lvalueOf(e ast.Expr) (lvalue, error) {
	switch t := e.(type) {
	case *ast.Ident:
		return &varRef{i: i, name: t.Name, span: t.Span()}, nil
	case *ast.FieldExpr:
		parent, err := i.lvalueOf(t.Target)
		if err != nil {
			return nil, err
		}
		return &fieldRef{i: i, parent: parent, field: t.Field.Name, span: t.Span()}, nil
	case *ast.IndexExpr:
		parent, err := i.lvalueOf(t.Target)
		if err != nil {
			return nil, err
		}
		idx, err := i.evalIndex(t.Index)
		if err != nil {
			return nil, err
		}
		return &indexRef{i: i, parent: parent, index: idx, span: t.Span()}, nil
	}
	return nil, i.errorf(e.Span(), "Invalid assignment target")
}
