// Package driver orchestrates the compilation pipeline for one or more
// emission targets: decode the term artifact, close and reduce it, emit
// the declaration list, and write or cache the result.
package driver

import (
	"context"
	"fmt"
	"os"
	"time"

	"chime/internal/artifact"
	"chime/internal/diag"
	"chime/internal/ir"
	"chime/internal/term"
	"chime/internal/trace"
	"chime/internal/types"
	"chime/internal/value"
)

// Options configures a driver run.
type Options struct {
	// MaxDiagnostics caps each target's bag.
	MaxDiagnostics int
	// Jobs bounds batch parallelism; <=0 means GOMAXPROCS.
	Jobs int
	// Tracer receives pipeline spans. Nil means no tracing.
	Tracer trace.Tracer
	// Cache, when non-nil, short-circuits emissions whose inputs have
	// not changed.
	Cache *artifact.DiskCache
	// Timings appends an informational timing diagnostic per target.
	Timings bool
}

func (o Options) tracer() trace.Tracer {
	if o.Tracer == nil {
		return trace.Nop
	}
	return o.Tracer
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return 256
	}
	return o.MaxDiagnostics
}

// Target is one term artifact to compile.
type Target struct {
	Name     string
	Entry    string
	Keep     []string
	TermPath string
	// Values is the host-provided runtime environment reflected into
	// the term before closing it.
	Values []value.Bound
}

// Result is the outcome of compiling one target. Err is set for fatal
// pipeline failures; the bag collects warnings and I/O diagnostics.
type Result struct {
	Name    string
	Entry   string
	Digest  artifact.Digest
	Payload *artifact.Payload
	Bag     *diag.Bag
	Cached  bool
	Err     error
}

// Compile runs the pipeline for a single target.
func Compile(ctx context.Context, tgt Target, opts Options) Result {
	tr := opts.tracer()
	res := Result{
		Name:  tgt.Name,
		Entry: tgt.Entry,
		Bag:   diag.NewBag(opts.maxDiagnostics()),
	}
	tm := newTimings()

	sp := trace.Begin(tr, trace.ScopeTarget, tgt.Name, 0)
	defer func() {
		detail := "ok"
		switch {
		case res.Err != nil:
			detail = "failed"
		case res.Cached:
			detail = "cached"
		}
		sp.End(detail)
	}()

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	loadSpan := trace.Begin(tr, trace.ScopePhase, "load", sp.ID())
	in := types.NewInterner()
	src, err := loadTerm(tgt.TermPath, in)
	tm.phase("load", loadSpan.End(""))
	if err != nil {
		res.Bag.Add(diag.Errorf(diag.IOLoadFileError, tgt.TermPath, "%v", err))
		res.Err = err
		return res
	}
	trace.Point(tr, trace.ScopeTerm, "input", term.String(src), sp.ID())

	res.Digest = artifact.TermDigest(tgt.Entry, tgt.Keep, src)
	if payload, ok, err := cacheGet(opts.Cache, res.Digest); err != nil {
		res.Bag.Add(diag.Warningf(diag.IOLoadFileError, tgt.TermPath, "artifact cache read failed: %v", err))
	} else if ok {
		replayWarnings(res.Bag, tgt.Entry, payload.Warnings)
		res.Payload = payload
		res.Cached = true
		return res
	}

	emitSpan := trace.Begin(tr, trace.ScopePhase, "emit", sp.ID())
	namer := term.NewNamer()
	decls, err := ir.Emit(in, namer, src, ir.EmitOptions{
		Entry:    tgt.Entry,
		Keep:     tgt.Keep,
		Values:   tgt.Values,
		Reporter: &diag.BagReporter{Bag: res.Bag},
	})
	tm.phase("emit", emitSpan.End(""))
	if err != nil {
		res.Err = fmt.Errorf("driver: %s: %w", tgt.Name, err)
		return res
	}

	res.Payload = artifact.NewPayload(tgt.Entry, tgt.Keep, res.Digest, decls, renderWarnings(res.Bag))
	if opts.Cache != nil {
		if err := opts.Cache.Put(res.Digest, res.Payload); err != nil {
			res.Bag.Add(diag.Warningf(diag.IOWriteFileError, tgt.Name, "artifact cache write failed: %v", err))
		}
	}
	if opts.Timings {
		tm.report(res.Bag, tgt.Name)
	}
	return res
}

func loadTerm(path string, in *types.Interner) (*term.Term, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return artifact.DecodeTerm(f, in)
}

func cacheGet(cache *artifact.DiskCache, key artifact.Digest) (*artifact.Payload, bool, error) {
	if cache == nil {
		return nil, false, nil
	}
	return cache.Get(key)
}

// renderWarnings flattens the bag's warnings for storage alongside the
// cached payload.
func renderWarnings(bag *diag.Bag) []string {
	var out []string
	for _, d := range bag.Items() {
		if d.Severity == diag.SevWarning {
			out = append(out, d.String())
		}
	}
	return out
}

// replayWarnings surfaces warnings recorded by the emission that
// produced a cached payload.
func replayWarnings(bag *diag.Bag, subject string, warnings []string) {
	for _, w := range warnings {
		bag.Add(diag.Infof(diag.RefInfo, subject, "from cache: %s", w))
	}
}

// timings accumulates per-phase durations for the optional timing
// diagnostic.
type timings struct {
	start  time.Time
	phases []phaseTiming
}

type phaseTiming struct {
	Name string  `json:"name"`
	MS   float64 `json:"ms"`
}

func newTimings() *timings {
	return &timings{start: time.Now()}
}

func (t *timings) phase(name string, d time.Duration) {
	t.phases = append(t.phases, phaseTiming{Name: name, MS: float64(d.Microseconds()) / 1000})
}
