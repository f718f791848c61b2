package ir

import (
	"chime/internal/term"
)

// PrimOp enumerates primitive operators the target evaluates directly.
// Everything else a builtin can do lowers to a named call.
type PrimOp uint8

const (
	PrimInvalid PrimOp = iota
	PrimAdd
	PrimSub
	PrimMul
	PrimDiv
	PrimNeg
	PrimEq
	PrimNe
	PrimLt
	PrimLe
	PrimGt
	PrimGe
	PrimAnd
	PrimOr
	PrimNot
)

var primNames = [...]string{
	PrimInvalid: "invalid",
	PrimAdd:     "add",
	PrimSub:     "sub",
	PrimMul:     "mul",
	PrimDiv:     "div",
	PrimNeg:     "neg",
	PrimEq:      "eq",
	PrimNe:      "ne",
	PrimLt:      "lt",
	PrimLe:      "le",
	PrimGt:      "gt",
	PrimGe:      "ge",
	PrimAnd:     "and",
	PrimOr:      "or",
	PrimNot:     "not",
}

func (p PrimOp) String() string {
	if int(p) < len(primNames) {
		return primNames[p]
	}
	return "invalid"
}

var primByOp = map[term.Op]PrimOp{
	term.OpAdd: PrimAdd,
	term.OpSub: PrimSub,
	term.OpMul: PrimMul,
	term.OpDiv: PrimDiv,
	term.OpNeg: PrimNeg,
	term.OpEq:  PrimEq,
	term.OpNe:  PrimNe,
	term.OpLt:  PrimLt,
	term.OpLe:  PrimLe,
	term.OpGt:  PrimGt,
	term.OpGe:  PrimGe,
	term.OpAnd: PrimAnd,
	term.OpOr:  PrimOr,
	term.OpNot: PrimNot,
}

// primOf maps a builtin operator to its primitive, when it has one.
func primOf(op term.Op) (PrimOp, bool) {
	p, ok := primByOp[op]
	return p, ok
}
