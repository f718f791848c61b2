package artifact

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/text/unicode/norm"

	"chime/internal/term"
	"chime/internal/types"
)

// Term artifacts are self-contained: the type table reachable from the
// term is flattened into the payload and re-interned on decode, so a
// decoding side never shares an interner with the producer.

type termPayload struct {
	Schema uint16
	Types  []wireType
	Root   *wireTerm
}

// wireType is one flattened type descriptor. Child types are referred
// to by table index; -1 means no type.
type wireType struct {
	Kind   uint8
	Elem   int32
	Second int32
	Params []int32
	Result int32
	Fields []wireTypeField
	Var    uint32
}

type wireTypeField struct {
	Name string
	Type int32
}

// wireTerm mirrors term.Term with kind-specific children packed into
// ordered slices instead of an interface payload.
type wireTerm struct {
	Kind   uint8
	Type   int32
	Name   string
	Bool   bool
	Int    int64
	Float  float64
	Str    string
	Op     uint8
	Kids   []*wireTerm
	Names  []string
	Params []wireParam
}

type wireParam struct {
	Name    string
	Type    int32
	Default *wireTerm
}

// EncodeTerm writes a term and its reachable types in msgpack framing.
func EncodeTerm(w io.Writer, in *types.Interner, t *term.Term) error {
	enc := &termEncoder{in: in, memo: make(map[types.TypeID]int32)}
	root, err := enc.term(t)
	if err != nil {
		return err
	}
	payload := termPayload{
		Schema: payloadSchemaVersion,
		Types:  enc.table,
		Root:   root,
	}
	return msgpack.NewEncoder(w).Encode(&payload)
}

// DecodeTerm reads a term artifact, interning its types into in.
// Identifiers are NFC-normalized on the way in.
func DecodeTerm(r io.Reader, in *types.Interner) (*term.Term, error) {
	var payload termPayload
	if err := msgpack.NewDecoder(r).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Schema != payloadSchemaVersion {
		return nil, fmt.Errorf("artifact: term schema %d, want %d", payload.Schema, payloadSchemaVersion)
	}
	dec := &termDecoder{in: in, ids: make([]types.TypeID, len(payload.Types))}
	if err := dec.internTable(payload.Types); err != nil {
		return nil, err
	}
	if payload.Root == nil {
		return nil, fmt.Errorf("artifact: term artifact has no root")
	}
	return dec.term(payload.Root)
}

// TermDigest keys one target's compilation by its decoded input.
func TermDigest(entry string, keep []string, t *term.Term) Digest {
	return Key(entry, keep, term.String(t))
}

// encoding ----------------------------------------------------------------

type termEncoder struct {
	in    *types.Interner
	table []wireType
	memo  map[types.TypeID]int32
}

func (e *termEncoder) typeRef(id types.TypeID) (int32, error) {
	if id == types.NoTypeID {
		return -1, nil
	}
	if idx, ok := e.memo[id]; ok {
		return idx, nil
	}
	t, ok := e.in.Lookup(id)
	if !ok {
		return -1, fmt.Errorf("artifact: unknown type id %d", id)
	}
	wt := wireType{Kind: uint8(t.Kind), Elem: -1, Second: -1, Result: -1}
	var err error
	switch t.Kind {
	case types.KindRef, types.KindEvent:
		if wt.Elem, err = e.typeRef(t.Elem); err != nil {
			return -1, err
		}
	case types.KindPair:
		if wt.Elem, err = e.typeRef(t.Elem); err != nil {
			return -1, err
		}
		if wt.Second, err = e.typeRef(t.Second); err != nil {
			return -1, err
		}
	case types.KindRecord:
		rec, ok := e.in.Record(id)
		if !ok {
			return -1, fmt.Errorf("artifact: record type %d has no field table", id)
		}
		wt.Fields = make([]wireTypeField, len(rec.Fields))
		for i, f := range rec.Fields {
			idx, err := e.typeRef(f.Type)
			if err != nil {
				return -1, err
			}
			wt.Fields[i] = wireTypeField{Name: f.Name, Type: idx}
		}
	case types.KindFn:
		sig, ok := e.in.Fn(id)
		if !ok {
			return -1, fmt.Errorf("artifact: fn type %d has no signature", id)
		}
		wt.Params = make([]int32, len(sig.Params))
		for i, p := range sig.Params {
			if wt.Params[i], err = e.typeRef(p); err != nil {
				return -1, err
			}
		}
		if wt.Result, err = e.typeRef(sig.Result); err != nil {
			return -1, err
		}
	case types.KindVar:
		wt.Var = t.Payload
	}
	// Children were appended first, so parents always follow them.
	idx := int32(len(e.table))
	e.table = append(e.table, wt)
	e.memo[id] = idx
	return idx, nil
}

func (e *termEncoder) term(t *term.Term) (*wireTerm, error) {
	if t == nil {
		return nil, nil
	}
	ty, err := e.typeRef(t.Type)
	if err != nil {
		return nil, err
	}
	w := &wireTerm{Kind: uint8(t.Kind), Type: ty}
	kid := func(c *term.Term) error {
		wc, err := e.term(c)
		if err != nil {
			return err
		}
		w.Kids = append(w.Kids, wc)
		return nil
	}
	switch d := t.Data.(type) {
	case term.VarData:
		w.Name = d.Name
	case term.UnitData:
	case term.BoolData:
		w.Bool = d.Value
	case term.IntData:
		w.Int = d.Value
	case term.FloatData:
		w.Float = d.Value
	case term.StringData:
		w.Str = d.Value
	case term.SeqData:
		err = firstErr(kid(d.Left), kid(d.Right))
	case term.RefNewData:
		err = kid(d.Init)
	case term.RefGetData:
		err = kid(d.Cell)
	case term.RefSetData:
		err = firstErr(kid(d.Cell), kid(d.Value))
	case term.RecordData:
		for _, f := range d.Fields {
			w.Names = append(w.Names, f.Name)
			if err = kid(f.Value); err != nil {
				break
			}
		}
	case term.ProjectData:
		w.Name = d.Field
		err = kid(d.Base)
		if err == nil && d.Default != nil {
			err = kid(d.Default)
		}
	case term.ReplaceData:
		w.Name = d.Field
		err = firstErr(kid(d.Base), kid(d.Value))
	case term.LetData:
		w.Name = d.Name
		err = firstErr(kid(d.Def), kid(d.Body))
	case term.LambdaData:
		for _, p := range d.Params {
			pt, perr := e.typeRef(p.Type)
			if perr != nil {
				return nil, perr
			}
			var def *wireTerm
			if p.Default != nil {
				if def, perr = e.term(p.Default); perr != nil {
					return nil, perr
				}
			}
			w.Params = append(w.Params, wireParam{Name: p.Name, Type: pt, Default: def})
		}
		err = kid(d.Body)
	case term.ApplyData:
		err = kid(d.Callee)
		for _, a := range d.Args {
			if err != nil {
				break
			}
			w.Names = append(w.Names, a.Name)
			err = kid(a.Value)
		}
	case term.BuiltinData:
		w.Op = uint8(d.Op)
	case term.OpenData:
		w.Name = d.Module
		err = kid(d.Body)
	default:
		err = fmt.Errorf("artifact: cannot encode %s term", t.Kind)
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// decoding ----------------------------------------------------------------

type termDecoder struct {
	in  *types.Interner
	ids []types.TypeID
}

func (d *termDecoder) typeAt(idx int32) (types.TypeID, error) {
	if idx == -1 {
		return types.NoTypeID, nil
	}
	if idx < 0 || int(idx) >= len(d.ids) {
		return types.NoTypeID, fmt.Errorf("artifact: type index %d out of range", idx)
	}
	return d.ids[idx], nil
}

func (d *termDecoder) internTable(table []wireType) error {
	for i, wt := range table {
		id, err := d.internOne(wt)
		if err != nil {
			return err
		}
		d.ids[i] = id
	}
	return nil
}

func (d *termDecoder) internOne(wt wireType) (types.TypeID, error) {
	b := d.in.Builtins()
	switch types.Kind(wt.Kind) {
	case types.KindUnit:
		return b.Unit, nil
	case types.KindBool:
		return b.Bool, nil
	case types.KindInt:
		return b.Int, nil
	case types.KindFloat:
		return b.Float, nil
	case types.KindString:
		return b.String, nil
	case types.KindVar:
		return d.in.Intern(types.MakeVar(wt.Var)), nil
	case types.KindRef, types.KindEvent:
		elem, err := d.typeAt(wt.Elem)
		if err != nil {
			return types.NoTypeID, err
		}
		if types.Kind(wt.Kind) == types.KindRef {
			return d.in.Intern(types.MakeRef(elem)), nil
		}
		return d.in.Intern(types.MakeEvent(elem)), nil
	case types.KindPair:
		first, err := d.typeAt(wt.Elem)
		if err != nil {
			return types.NoTypeID, err
		}
		second, err := d.typeAt(wt.Second)
		if err != nil {
			return types.NoTypeID, err
		}
		return d.in.Intern(types.MakePair(first, second)), nil
	case types.KindRecord:
		fields := make([]types.Field, len(wt.Fields))
		for i, f := range wt.Fields {
			ft, err := d.typeAt(f.Type)
			if err != nil {
				return types.NoTypeID, err
			}
			fields[i] = types.Field{Name: norm.NFC.String(f.Name), Type: ft}
		}
		return d.in.InternRecord(fields), nil
	case types.KindFn:
		params := make([]types.TypeID, len(wt.Params))
		for i, p := range wt.Params {
			pt, err := d.typeAt(p)
			if err != nil {
				return types.NoTypeID, err
			}
			params[i] = pt
		}
		result, err := d.typeAt(wt.Result)
		if err != nil {
			return types.NoTypeID, err
		}
		return d.in.InternFn(params, result), nil
	default:
		return types.NoTypeID, fmt.Errorf("artifact: unknown type kind %d", wt.Kind)
	}
}

func (d *termDecoder) term(w *wireTerm) (*term.Term, error) {
	if w == nil {
		return nil, nil
	}
	ty, err := d.typeAt(w.Type)
	if err != nil {
		return nil, err
	}
	kid := func(i int) (*term.Term, error) {
		if i >= len(w.Kids) {
			return nil, fmt.Errorf("artifact: %s term is missing child %d", term.Kind(w.Kind), i)
		}
		return d.term(w.Kids[i])
	}
	name := norm.NFC.String(w.Name)
	switch term.Kind(w.Kind) {
	case term.KindVar:
		return term.NewVar(name, ty), nil
	case term.KindUnit:
		return term.NewUnit(ty), nil
	case term.KindBool:
		return term.NewBool(w.Bool, ty), nil
	case term.KindInt:
		return term.NewInt(w.Int, ty), nil
	case term.KindFloat:
		return term.NewFloat(w.Float, ty), nil
	case term.KindString:
		return term.NewString(w.Str, ty), nil
	case term.KindSeq:
		left, err := kid(0)
		if err != nil {
			return nil, err
		}
		right, err := kid(1)
		if err != nil {
			return nil, err
		}
		return term.NewSeq(left, right, ty), nil
	case term.KindRefNew:
		init, err := kid(0)
		if err != nil {
			return nil, err
		}
		return term.NewRefNew(init, ty), nil
	case term.KindRefGet:
		cell, err := kid(0)
		if err != nil {
			return nil, err
		}
		return term.NewRefGet(cell, ty), nil
	case term.KindRefSet:
		cell, err := kid(0)
		if err != nil {
			return nil, err
		}
		value, err := kid(1)
		if err != nil {
			return nil, err
		}
		return term.NewRefSet(cell, value, ty), nil
	case term.KindRecord:
		if len(w.Names) != len(w.Kids) {
			return nil, fmt.Errorf("artifact: record has %d names for %d values", len(w.Names), len(w.Kids))
		}
		fields := make([]term.FieldInit, len(w.Kids))
		for i := range w.Kids {
			v, err := kid(i)
			if err != nil {
				return nil, err
			}
			fields[i] = term.FieldInit{Name: norm.NFC.String(w.Names[i]), Value: v}
		}
		return term.NewRecord(fields, ty), nil
	case term.KindProject:
		base, err := kid(0)
		if err != nil {
			return nil, err
		}
		var def *term.Term
		if len(w.Kids) > 1 {
			if def, err = kid(1); err != nil {
				return nil, err
			}
		}
		return term.NewProject(base, name, def, ty), nil
	case term.KindReplace:
		base, err := kid(0)
		if err != nil {
			return nil, err
		}
		value, err := kid(1)
		if err != nil {
			return nil, err
		}
		return term.NewReplace(base, name, value, ty), nil
	case term.KindLet:
		def, err := kid(0)
		if err != nil {
			return nil, err
		}
		body, err := kid(1)
		if err != nil {
			return nil, err
		}
		return term.NewLet(name, def, body, ty), nil
	case term.KindLambda:
		params := make([]term.Param, len(w.Params))
		for i, p := range w.Params {
			pt, err := d.typeAt(p.Type)
			if err != nil {
				return nil, err
			}
			def, err := d.term(p.Default)
			if err != nil {
				return nil, err
			}
			params[i] = term.Param{Name: norm.NFC.String(p.Name), Type: pt, Default: def}
		}
		body, err := kid(0)
		if err != nil {
			return nil, err
		}
		return term.NewLambda(params, body, ty), nil
	case term.KindApply:
		callee, err := kid(0)
		if err != nil {
			return nil, err
		}
		args := make([]term.NamedArg, 0, len(w.Kids)-1)
		for i := 1; i < len(w.Kids); i++ {
			v, err := kid(i)
			if err != nil {
				return nil, err
			}
			argName := ""
			if i-1 < len(w.Names) {
				argName = norm.NFC.String(w.Names[i-1])
			}
			args = append(args, term.NamedArg{Name: argName, Value: v})
		}
		return term.NewApply(callee, args, ty), nil
	case term.KindBuiltin:
		return term.NewBuiltin(term.Op(w.Op), ty), nil
	case term.KindOpen:
		body, err := kid(0)
		if err != nil {
			return nil, err
		}
		return &term.Term{Kind: term.KindOpen, Type: ty, Data: term.OpenData{Module: name, Body: body}}, nil
	default:
		return nil, fmt.Errorf("artifact: unknown term kind %d", w.Kind)
	}
}
