package driver

import (
	"context"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"chime/internal/trace"
)

// CompileAll compiles every target concurrently. Results come back in
// input order regardless of completion order, so batch output is
// deterministic. The returned error reflects cancellation only;
// per-target failures live in each Result.
func CompileAll(ctx context.Context, targets []Target, opts Options) ([]Result, error) {
	tr := opts.tracer()
	sp := trace.Begin(tr, trace.ScopeDriver, "emit", 0).
		WithExtra("targets", strconv.Itoa(len(targets)))

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if jobs > len(targets) {
		jobs = len(targets)
	}

	// Indices are unique per goroutine, so no mutex is needed.
	results := make([]Result, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, tgt := range targets {
		i, tgt := i, tgt
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = Compile(gctx, tgt, opts)
			return nil
		})
	}
	err := g.Wait()
	if err != nil {
		sp.End("cancelled")
		return results, err
	}
	sp.End("ok")
	return results, nil
}
