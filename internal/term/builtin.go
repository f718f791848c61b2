package term

import "fmt"

// Op enumerates builtin operators. Builtins are resolved from their
// surface names once, at the boundary where terms enter the compiler;
// no string dispatch happens during reduction or lowering.
type Op uint8

const (
	// OpInvalid is the zero value and never appears in well-formed terms.
	OpInvalid Op = iota

	// Arithmetic.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpNeg

	// Comparisons.
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	// Logic.
	OpAnd
	OpOr
	OpNot

	// OpIf is the conditional combinator. Its branches are zero-argument
	// thunks forced during lowering.
	OpIf

	// Effect primitives, desugared by the reducer.
	OpChannel
	OpEmit
	OpHandle

	// Math intrinsics, lowered to named calls.
	OpSin
	OpCos
	OpExp
	OpLog
	OpSqrt
	OpPow
	OpFloor
	OpFmod
)

var opNames = map[Op]string{
	OpAdd:     "add",
	OpSub:     "sub",
	OpMul:     "mul",
	OpDiv:     "div",
	OpNeg:     "neg",
	OpEq:      "eq",
	OpNe:      "ne",
	OpLt:      "lt",
	OpLe:      "le",
	OpGt:      "gt",
	OpGe:      "ge",
	OpAnd:     "and",
	OpOr:      "or",
	OpNot:     "not",
	OpIf:      "if",
	OpChannel: "channel",
	OpEmit:    "emit",
	OpHandle:  "handle",
	OpSin:     "sin",
	OpCos:     "cos",
	OpExp:     "exp",
	OpLog:     "log",
	OpSqrt:    "sqrt",
	OpPow:     "pow",
	OpFloor:   "floor",
	OpFmod:    "fmod",
}

var opsByName = func() map[string]Op {
	m := make(map[string]Op, len(opNames))
	for op, name := range opNames {
		m[name] = op
	}
	return m
}()

// String returns the surface name of the operator.
func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", uint8(op))
}

// ResolveOp maps a surface builtin name to its operator.
func ResolveOp(name string) (Op, bool) {
	op, ok := opsByName[name]
	return op, ok
}

// IsPrim reports whether the operator lowers to an IR primitive
// operation rather than a named call.
func (op Op) IsPrim() bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpNeg,
		OpEq, OpNe, OpLt, OpLe, OpGt, OpGe,
		OpAnd, OpOr, OpNot:
		return true
	default:
		return false
	}
}

// Arity returns the number of value arguments the operator consumes.
func (op Op) Arity() int {
	switch op {
	case OpNeg, OpNot, OpChannel, OpEmit,
		OpSin, OpCos, OpExp, OpLog, OpSqrt, OpFloor:
		return 1
	case OpIf:
		return 3
	default:
		return 2
	}
}
