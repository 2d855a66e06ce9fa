package types

import (
	"github.com/raven-lang/raven/internal/ast"
)

func (c *Checker) resolveType(typ ast.TypeExpr) (Type, error) {
	switch t := typ.(type) {
	case nil:
		return TypeVoid, nil
	case *ast.ArrayType:
		elem, err := c.resolveType(t.Elem)
		if err != nil {
			return nil, err
		}
		if elem == TypeVoid {
			return nil, c.errorf(t.Span(), "Arrays of void are not allowed")
		}
		return &Array{Elem: elem}, nil
	case *ast.NamedType:
		switch t.Name {
		case "int":
			return TypeInt, nil
		case "float":
			return TypeFloat, nil
		case "bool":
			return TypeBool, nil
		case "string":
			return TypeString, nil
		case "void":
			return TypeVoid, nil
		}
		if st, ok := c.structs[t.Name]; ok {
			return st, nil
		}
		if en, ok := c.enums[t.Name]; ok {
			return en, nil
		}
		return nil, c.errorHint(t.Span(), "Declare the struct or enum before using it as a type",
			"Unknown type '%s'", t.Name)
	}
	return nil, c.errorf(typ.Span(), "Unsupported type %s", typ)
}
