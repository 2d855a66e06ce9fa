package ast

// Operator enumerates the unary and binary operators.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNotEq
	OpLt
	OpGt
	OpLe
	OpGe
	OpAnd
	OpOr
	OpNeg
	OpNot
)

// Precedence levels, lowest to highest.
const (
	PrecLowest = iota
	PrecOr
	PrecAnd
	PrecEquality
	PrecRelational
	PrecAdditive
	PrecMultiplicative
	PrecUnary
)

// String returns the source spelling of the operator.
func (op Operator) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub, OpNeg:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpEq:
		return "=="
	case OpNotEq:
		return "!="
	case OpLt:
		return "<"
	case OpGt:
		return ">"
	case OpLe:
		return "<="
	case OpGe:
		return ">="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpNot:
		return "!"
	default:
		return "?"
	}
}

// Precedence returns the binding strength of the operator.
func (op Operator) Precedence() int {
	switch op {
	case OpOr:
		return PrecOr
	case OpAnd:
		return PrecAnd
	case OpEq, OpNotEq:
		return PrecEquality
	case OpLt, OpGt, OpLe, OpGe:
		return PrecRelational
	case OpAdd, OpSub:
		return PrecAdditive
	case OpMul, OpDiv, OpMod:
		return PrecMultiplicative
	case OpNeg, OpNot:
		return PrecUnary
	default:
		return PrecLowest
	}
}

// IsArithmetic reports whether op is one of + - * / %.
func (op Operator) IsArithmetic() bool {
	return op <= OpMod
}

// IsComparison reports whether op is an equality or relational operator.
func (op Operator) IsComparison() bool {
	return op >= OpEq && op <= OpGe
}

// IsLogical reports whether op is && or ||.
func (op Operator) IsLogical() bool {
	return op == OpAnd || op == OpOr
}
