package term

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"chime/internal/types"
)

// Printer dumps terms to a human-readable text form for traces and the
// CLI dump command. The output is advisory only.
type Printer struct {
	w        io.Writer
	interner *types.Interner
	indent   int
}

// NewPrinter creates a term printer. The interner may be nil, in which
// case type annotations are omitted.
func NewPrinter(w io.Writer, interner *types.Interner) *Printer {
	return &Printer{w: w, interner: interner}
}

// Dump writes one term followed by a newline.
func Dump(w io.Writer, interner *types.Interner, t *Term) error {
	p := NewPrinter(w, interner)
	p.Print(t)
	_, err := fmt.Fprintln(w)
	return err
}

// String renders a term to a string.
func String(t *Term) string {
	var sb strings.Builder
	NewPrinter(&sb, nil).Print(t)
	return sb.String()
}

// Print writes one term at the current indentation.
func (p *Printer) Print(t *Term) {
	if t == nil {
		p.printf("<nil>")
		return
	}
	switch t.Kind {
	case KindVar:
		p.printf("%s", t.Data.(VarData).Name)
	case KindUnit:
		p.printf("()")
	case KindBool:
		p.printf("%t", t.Data.(BoolData).Value)
	case KindInt:
		p.printf("%d", t.Data.(IntData).Value)
	case KindFloat:
		p.printf("%s", strconv.FormatFloat(t.Data.(FloatData).Value, 'g', -1, 64))
	case KindString:
		p.printf("%q", t.Data.(StringData).Value)
	case KindBuiltin:
		p.printf("#%s", t.Data.(BuiltinData).Op)
	case KindSeq:
		d := t.Data.(SeqData)
		p.Print(d.Left)
		p.printf(";")
		p.newline()
		p.Print(d.Right)
	case KindRefNew:
		p.printf("ref ")
		p.Print(t.Data.(RefNewData).Init)
	case KindRefGet:
		p.printf("!")
		p.Print(t.Data.(RefGetData).Cell)
	case KindRefSet:
		d := t.Data.(RefSetData)
		p.Print(d.Cell)
		p.printf(" := ")
		p.Print(d.Value)
	case KindRecord:
		d := t.Data.(RecordData)
		p.printf("{")
		for i := range d.Fields {
			if i > 0 {
				p.printf("; ")
			}
			p.printf("%s = ", d.Fields[i].Name)
			p.Print(d.Fields[i].Value)
		}
		p.printf("}")
	case KindProject:
		d := t.Data.(ProjectData)
		p.Print(d.Base)
		p.printf(".%s", d.Field)
		if d.Default != nil {
			p.printf("?")
		}
	case KindReplace:
		d := t.Data.(ReplaceData)
		p.printf("{")
		p.Print(d.Base)
		p.printf(" with %s = ", d.Field)
		p.Print(d.Value)
		p.printf("}")
	case KindLet:
		d := t.Data.(LetData)
		p.printf("let %s%s =", d.Name, p.typeSuffix(d.Def))
		p.indent++
		p.newline()
		p.Print(d.Def)
		p.indent--
		p.newline()
		p.printf("in")
		p.newline()
		p.Print(d.Body)
	case KindLambda:
		d := t.Data.(LambdaData)
		p.printf("fun (")
		for i := range d.Params {
			if i > 0 {
				p.printf(", ")
			}
			p.printf("%s", d.Params[i].Name)
			if p.interner != nil {
				p.printf(": %s", p.interner.String(d.Params[i].Type))
			}
			if d.Params[i].Default != nil {
				p.printf(" = ")
				p.Print(d.Params[i].Default)
			}
		}
		p.printf(") ->")
		p.indent++
		p.newline()
		p.Print(d.Body)
		p.indent--
	case KindApply:
		d := t.Data.(ApplyData)
		p.printf("(")
		p.Print(d.Callee)
		for i := range d.Args {
			p.printf(" %s:", d.Args[i].Name)
			p.Print(d.Args[i].Value)
		}
		p.printf(")")
	case KindOpen:
		d := t.Data.(OpenData)
		p.printf("open %s in ", d.Module)
		p.Print(d.Body)
	default:
		p.printf("<%s>", t.Kind)
	}
}

func (p *Printer) typeSuffix(t *Term) string {
	if p.interner == nil || t == nil || t.Type == types.NoTypeID {
		return ""
	}
	return ": " + p.interner.String(t.Type)
}

func (p *Printer) newline() {
	p.printf("\n%s", strings.Repeat("  ", p.indent))
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}
