package ast

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Sprint returns the indented tree dump of node.
func Sprint(node Node) string {
	var b strings.Builder
	Fprint(&b, node)
	return b.String()
}

// Fprint writes an indented tree dump of node to w, one node per line.
func Fprint(w io.Writer, node Node) {
	p := &printer{w: w}
	p.node(node)
}

type printer struct {
	w     io.Writer
	depth int
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", p.depth), fmt.Sprintf(format, args...))
}

func (p *printer) nested(label string, nodes ...Node) {
	if label != "" {
		p.line("%s", label)
	}
	p.depth++
	for _, n := range nodes {
		p.node(n)
	}
	p.depth--
}

func typeName(t TypeExpr) string {
	if t == nil {
		return "void"
	}
	return t.String()
}

func (p *printer) node(node Node) {
	switch n := node.(type) {
	case *BlockStmt:
		p.line("Block")
		p.depth++
		for _, s := range n.Stmts {
			p.node(s)
		}
		p.depth--

	case *LetStmt:
		kw := "Let"
		if n.Const {
			kw = "Const"
		}
		if n.Type != nil {
			p.line("%s %s: %s", kw, n.Name.Name, n.Type)
		} else {
			p.line("%s %s", kw, n.Name.Name)
		}
		p.nested("", n.Value)

	case *FunDecl:
		params := make([]string, len(n.Params))
		for i, prm := range n.Params {
			params[i] = prm.Name.Name + ": " + prm.Type.String()
		}
		p.line("Fun %s(%s) -> %s", n.Name.Name, strings.Join(params, ", "), typeName(n.ReturnType))
		p.nested("", n.Body)

	case *StructDecl:
		fields := make([]string, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = f.Name.Name + ": " + f.Type.String()
		}
		p.line("Struct %s { %s }", n.Name.Name, strings.Join(fields, ", "))

	case *EnumDecl:
		variants := make([]string, len(n.Variants))
		for i, v := range n.Variants {
			variants[i] = v.Name
		}
		p.line("Enum %s { %s }", n.Name.Name, strings.Join(variants, ", "))

	case *ForStmt:
		p.line("For")
		p.depth++
		p.nested("Init", n.Init)
		p.nested("Cond", n.Cond)
		p.nested("Post", n.Post)
		p.node(n.Body)
		p.depth--

	case *WhileStmt:
		p.line("While")
		p.nested("", n.Cond, n.Body)

	case *AssignStmt:
		p.line("Assign")
		p.nested("", n.Target, n.Value)

	case *IfStmt:
		p.line("If")
		p.depth++
		p.node(n.Cond)
		p.node(n.Then)
		if n.ElseIf != nil {
			p.nested("ElseIf", n.ElseIf)
		}
		if n.Else != nil {
			p.nested("Else", n.Else)
		}
		p.depth--

	case *PrintStmt:
		p.line("Print")
		p.depth++
		for _, a := range n.Args {
			p.node(a)
		}
		p.depth--

	case *CallStmt:
		p.line("CallStmt")
		p.nested("", n.Call)

	case *ExprStmt:
		p.line("ExprStmt")
		p.nested("", n.Expr)

	case *ReturnStmt:
		p.line("Return")
		if n.Value != nil {
			p.nested("", n.Value)
		}

	case *ImportStmt:
		if n.Alias != nil {
			p.line("Import %q as %s", n.Path, n.Alias.Name)
		} else {
			p.line("Import %q", n.Path)
		}

	case *SelectiveImportStmt:
		names := make([]string, len(n.Names))
		for i, id := range n.Names {
			names[i] = id.Name
		}
		p.line("Import { %s } from %q", strings.Join(names, ", "), n.Path)

	case *ExportStmt:
		p.line("Export")
		p.nested("", n.Stmt)

	case *Ident:
		p.line("Ident %s", n.Name)
	case *IntLit:
		p.line("Int %d", n.Value)
	case *FloatLit:
		p.line("Float %s", strconv.FormatFloat(n.Value, 'g', -1, 64))
	case *BoolLit:
		p.line("Bool %t", n.Value)
	case *StringLit:
		p.line("String %q", n.Value)

	case *ArrayLit:
		p.line("Array")
		p.depth++
		for _, e := range n.Elems {
			p.node(e)
		}
		p.depth--

	case *UnaryExpr:
		p.line("Unary %s", n.Op)
		p.nested("", n.Operand)

	case *BinaryExpr:
		p.line("Binary %s", n.Op)
		p.nested("", n.Left, n.Right)

	case *CallExpr:
		p.line("Call %s", n.Callee.Name)
		p.depth++
		for _, a := range n.Args {
			p.node(a)
		}
		p.depth--

	case *IndexExpr:
		p.line("Index")
		p.nested("", n.Target, n.Index)

	case *MethodCallExpr:
		p.line("MethodCall .%s", n.Method.Name)
		p.depth++
		p.node(n.Receiver)
		for _, a := range n.Args {
			p.node(a)
		}
		p.depth--

	case *FieldExpr:
		p.line("Field .%s", n.Field.Name)
		p.nested("", n.Target)

	case *StructLit:
		p.line("StructLit %s", n.Name.Name)
		p.depth++
		for _, f := range n.Fields {
			p.nested(f.Name.Name+":", f.Value)
		}
		p.depth--

	case *EnumVariantExpr:
		p.line("Variant %s::%s", n.Enum.Name, n.Variant.Name)

	case nil:
		p.line("<nil>")

	default:
		p.line("%T", node)
	}
}
