package ir

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// DumpOptions configures declaration dumping.
type DumpOptions struct{}

// Dump writes a human-readable representation of an emitted
// declaration list. The format is advisory output for inspection, not
// part of the backend contract.
func Dump(w io.Writer, decls []Decl, _ DumpOptions) error {
	if w == nil {
		return nil
	}
	for i := range decls {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := dumpDecl(w, &decls[i]); err != nil {
			return err
		}
	}
	return nil
}

func dumpDecl(w io.Writer, d *Decl) error {
	switch d.Kind {
	case DeclType:
		fmt.Fprintf(w, "type %s struct:\n", d.Name)
		width := 0
		for _, f := range d.Type.Struct.Fields {
			if fw := runewidth.StringWidth(f.Name); fw > width {
				width = fw
			}
		}
		for _, f := range d.Type.Struct.Fields {
			fmt.Fprintf(w, "  %s  %s\n", runewidth.FillRight(f.Name, width), f.Type)
		}
	case DeclFunc:
		params := make([]string, len(d.Func.Params))
		for i, p := range d.Func.Params {
			params[i] = p.Name + " " + p.Type.String()
		}
		fmt.Fprintf(w, "fn %s(%s) %s:\n", d.Name, strings.Join(params, ", "), d.Func.Result)
		dumpStmts(w, "  ", d.Func.Body)
	case DeclConst:
		fmt.Fprintf(w, "const %s %s = %s\n", d.Name, d.Const.Type, exprStr(d.Const.Value))
	case DeclAlias:
		fmt.Fprintf(w, "type %s = %s\n", d.Name, d.Type)
	default:
		return fmt.Errorf("ir: unknown declaration kind %d", d.Kind)
	}
	return nil
}

func dumpStmts(w io.Writer, indent string, stmts []*Expr) {
	for _, s := range stmts {
		if s.Kind == ExprIf {
			fmt.Fprintf(w, "%sif %s:\n", indent, exprStr(s.If.Cond))
			dumpStmts(w, indent+"  ", s.If.Then)
			if len(s.If.Else) > 0 {
				fmt.Fprintf(w, "%selse:\n", indent)
				dumpStmts(w, indent+"  ", s.If.Else)
			}
			continue
		}
		fmt.Fprintf(w, "%s%s\n", indent, exprStr(s))
	}
}

func exprStr(e *Expr) string {
	if e == nil {
		return "<expr?>"
	}
	switch e.Kind {
	case ExprVoid:
		return "()"
	case ExprBool:
		if e.Bool {
			return "true"
		}
		return "false"
	case ExprInt:
		return fmt.Sprintf("%d", e.Int)
	case ExprFloat:
		return fmt.Sprintf("%g", e.Float)
	case ExprIdent:
		return e.Ident.Name
	case ExprLet:
		return fmt.Sprintf("let %s = %s", e.Let.Name, exprStr(e.Let.Value))
	case ExprAlloc:
		return fmt.Sprintf("alloc %s", e.Alloc.Elem)
	case ExprLoad:
		return fmt.Sprintf("load %s", exprStr(e.Load.Ptr))
	case ExprStore:
		return fmt.Sprintf("store %s <- %s", exprStr(e.Store.Ptr), exprStr(e.Store.Value))
	case ExprAddrOf:
		return fmt.Sprintf("&%s.%s", exprStr(e.AddrOf.Base), e.AddrOf.Field)
	case ExprFree:
		return fmt.Sprintf("free %s", exprStr(e.Free.Ptr))
	case ExprField:
		return fmt.Sprintf("%s.%s", exprStr(e.Field.Base), e.Field.Field)
	case ExprIf:
		return fmt.Sprintf("if %s then %s else %s",
			exprStr(e.If.Cond), blockStr(e.If.Then), blockStr(e.If.Else))
	case ExprPrim:
		return fmt.Sprintf("%s(%s)", e.Prim.Op, argsStr(e.Prim.Args))
	case ExprCall:
		return fmt.Sprintf("%s(%s)", e.Call.Name, argsStr(e.Call.Args))
	default:
		return "<expr?>"
	}
}

func blockStr(stmts []*Expr) string {
	parts := make([]string, len(stmts))
	for i := range stmts {
		parts[i] = exprStr(stmts[i])
	}
	return "{" + strings.Join(parts, "; ") + "}"
}

func argsStr(args []*Expr) string {
	parts := make([]string, len(args))
	for i := range args {
		parts[i] = exprStr(args[i])
	}
	return strings.Join(parts, ", ")
}
