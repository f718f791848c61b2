package reduce

import (
	"chime/internal/term"
	"chime/internal/types"
)

// simplify consults the algebraic rule table for a builtin operator
// applied to already-reduced arguments. The second result is false
// when no rule matches the argument shapes; the caller falls back to
// the unsimplified application, which is expected and not an error.
func simplify(op term.Op, args []term.NamedArg, ty types.TypeID) (*term.Term, bool) {
	vals := make([]*term.Term, len(args))
	for i := range args {
		vals[i] = args[i].Value
	}
	if rule, ok := rules[op]; ok {
		return rule(vals, ty)
	}
	return nil, false
}

type rule func(vals []*term.Term, ty types.TypeID) (*term.Term, bool)

var rules map[term.Op]rule

func init() {
	rules = map[term.Op]rule{
		term.OpAdd: simplifyAdd,
		term.OpSub: simplifySub,
		term.OpMul: simplifyMul,
		term.OpDiv: simplifyDiv,
		term.OpNeg: simplifyNeg,
		term.OpEq:  compareRule(func(a, b float64) bool { return a == b }, func(a, b int64) bool { return a == b }),
		term.OpNe:  compareRule(func(a, b float64) bool { return a != b }, func(a, b int64) bool { return a != b }),
		term.OpLt:  compareRule(func(a, b float64) bool { return a < b }, func(a, b int64) bool { return a < b }),
		term.OpLe:  compareRule(func(a, b float64) bool { return a <= b }, func(a, b int64) bool { return a <= b }),
		term.OpGt:  compareRule(func(a, b float64) bool { return a > b }, func(a, b int64) bool { return a > b }),
		term.OpGe:  compareRule(func(a, b float64) bool { return a >= b }, func(a, b int64) bool { return a >= b }),
		term.OpAnd: simplifyAnd,
		term.OpOr:  simplifyOr,
		term.OpNot: simplifyNot,
		term.OpIf:  simplifyIf,
	}
}

func floatLit(t *term.Term) (float64, bool) {
	if t != nil && t.Kind == term.KindFloat {
		return t.Data.(term.FloatData).Value, true
	}
	return 0, false
}

func intLit(t *term.Term) (int64, bool) {
	if t != nil && t.Kind == term.KindInt {
		return t.Data.(term.IntData).Value, true
	}
	return 0, false
}

func boolLit(t *term.Term) (bool, bool) {
	if t != nil && t.Kind == term.KindBool {
		return t.Data.(term.BoolData).Value, true
	}
	return false, false
}

func simplifyAdd(vals []*term.Term, ty types.TypeID) (*term.Term, bool) {
	if len(vals) != 2 {
		return nil, false
	}
	if a, ok := floatLit(vals[0]); ok {
		if b, ok := floatLit(vals[1]); ok {
			return term.NewFloat(a+b, ty), true
		}
		if a == 0 {
			return vals[1], true
		}
	}
	if b, ok := floatLit(vals[1]); ok && b == 0 {
		return vals[0], true
	}
	if a, ok := intLit(vals[0]); ok {
		if b, ok := intLit(vals[1]); ok {
			return term.NewInt(a+b, ty), true
		}
		if a == 0 {
			return vals[1], true
		}
	}
	if b, ok := intLit(vals[1]); ok && b == 0 {
		return vals[0], true
	}
	return nil, false
}

func simplifySub(vals []*term.Term, ty types.TypeID) (*term.Term, bool) {
	if len(vals) != 2 {
		return nil, false
	}
	if a, ok := floatLit(vals[0]); ok {
		if b, ok := floatLit(vals[1]); ok {
			return term.NewFloat(a-b, ty), true
		}
	}
	if b, ok := floatLit(vals[1]); ok && b == 0 {
		return vals[0], true
	}
	if a, ok := intLit(vals[0]); ok {
		if b, ok := intLit(vals[1]); ok {
			return term.NewInt(a-b, ty), true
		}
	}
	if b, ok := intLit(vals[1]); ok && b == 0 {
		return vals[0], true
	}
	return nil, false
}

func simplifyMul(vals []*term.Term, ty types.TypeID) (*term.Term, bool) {
	if len(vals) != 2 {
		return nil, false
	}
	if a, ok := floatLit(vals[0]); ok {
		if b, ok := floatLit(vals[1]); ok {
			return term.NewFloat(a*b, ty), true
		}
		if a == 1 {
			return vals[1], true
		}
		if a == 0 && term.IsPure(vals[1]) {
			return term.NewFloat(0, ty), true
		}
	}
	if b, ok := floatLit(vals[1]); ok {
		if b == 1 {
			return vals[0], true
		}
		if b == 0 && term.IsPure(vals[0]) {
			return term.NewFloat(0, ty), true
		}
	}
	if a, ok := intLit(vals[0]); ok {
		if b, ok := intLit(vals[1]); ok {
			return term.NewInt(a*b, ty), true
		}
		if a == 1 {
			return vals[1], true
		}
	}
	if b, ok := intLit(vals[1]); ok && b == 1 {
		return vals[0], true
	}
	return nil, false
}

func simplifyDiv(vals []*term.Term, ty types.TypeID) (*term.Term, bool) {
	if len(vals) != 2 {
		return nil, false
	}
	if a, ok := floatLit(vals[0]); ok {
		if b, ok := floatLit(vals[1]); ok && b != 0 {
			return term.NewFloat(a/b, ty), true
		}
	}
	if b, ok := floatLit(vals[1]); ok && b == 1 {
		return vals[0], true
	}
	if a, ok := intLit(vals[0]); ok {
		if b, ok := intLit(vals[1]); ok && b != 0 {
			return term.NewInt(a/b, ty), true
		}
	}
	if b, ok := intLit(vals[1]); ok && b == 1 {
		return vals[0], true
	}
	return nil, false
}

func simplifyNeg(vals []*term.Term, ty types.TypeID) (*term.Term, bool) {
	if len(vals) != 1 {
		return nil, false
	}
	if a, ok := floatLit(vals[0]); ok {
		return term.NewFloat(-a, ty), true
	}
	if a, ok := intLit(vals[0]); ok {
		return term.NewInt(-a, ty), true
	}
	return nil, false
}

func compareRule(ff func(a, b float64) bool, fi func(a, b int64) bool) rule {
	return func(vals []*term.Term, ty types.TypeID) (*term.Term, bool) {
		if len(vals) != 2 {
			return nil, false
		}
		if a, ok := floatLit(vals[0]); ok {
			if b, ok := floatLit(vals[1]); ok {
				return term.NewBool(ff(a, b), ty), true
			}
		}
		if a, ok := intLit(vals[0]); ok {
			if b, ok := intLit(vals[1]); ok {
				return term.NewBool(fi(a, b), ty), true
			}
		}
		return nil, false
	}
}

func simplifyAnd(vals []*term.Term, ty types.TypeID) (*term.Term, bool) {
	if len(vals) != 2 {
		return nil, false
	}
	if a, ok := boolLit(vals[0]); ok {
		if a {
			return vals[1], true
		}
		if term.IsPure(vals[1]) {
			return term.NewBool(false, ty), true
		}
	}
	if b, ok := boolLit(vals[1]); ok && b {
		return vals[0], true
	}
	return nil, false
}

func simplifyOr(vals []*term.Term, ty types.TypeID) (*term.Term, bool) {
	if len(vals) != 2 {
		return nil, false
	}
	if a, ok := boolLit(vals[0]); ok {
		if !a {
			return vals[1], true
		}
		if term.IsPure(vals[1]) {
			return term.NewBool(true, ty), true
		}
	}
	if b, ok := boolLit(vals[1]); ok && !b {
		return vals[0], true
	}
	return nil, false
}

func simplifyNot(vals []*term.Term, ty types.TypeID) (*term.Term, bool) {
	if len(vals) != 1 {
		return nil, false
	}
	if a, ok := boolLit(vals[0]); ok {
		return term.NewBool(!a, ty), true
	}
	return nil, false
}

// simplifyIf forces the matching branch thunk when the condition is a
// literal. The caller re-reduces the forced application.
func simplifyIf(vals []*term.Term, ty types.TypeID) (*term.Term, bool) {
	if len(vals) != 3 {
		return nil, false
	}
	c, ok := boolLit(vals[0])
	if !ok {
		return nil, false
	}
	branch := vals[1]
	if !c {
		branch = vals[2]
	}
	return term.NewApply(branch, nil, ty), true
}
