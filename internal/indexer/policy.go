package indexer

import (
	"context"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// ExecutionPolicy selects how an operation spreads its work.
type ExecutionPolicy int

const (
	Sequential ExecutionPolicy = iota
	Parallel
)

func (p ExecutionPolicy) String() string {
	switch p {
	case Sequential:
		return "sequential"
	case Parallel:
		return "parallel"
	default:
		return "unknown"
	}
}

// ParsePolicy converts "sequential" or "parallel" (any case) into an
// ExecutionPolicy.
func ParsePolicy(name string) (ExecutionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sequential", "seq":
		return Sequential, nil
	case "parallel", "par":
		return Parallel, nil
	default:
		return 0, apperrors.Newf(apperrors.ErrInvalidInput, "unknown execution policy %q", name)
	}
}

// Predicate filters candidate documents during ranking. Under the Parallel
// policy it is called from several goroutines at once.
type Predicate func(id int, status index.DocumentStatus, rating int) bool

// ByStatus accepts documents with exactly the given status.
func ByStatus(status index.DocumentStatus) Predicate {
	return func(_ int, s index.DocumentStatus, _ int) bool {
		return s == status
	}
}

// DefaultPredicate accepts documents whose status is StatusActual.
var DefaultPredicate = ByStatus(index.StatusActual)

// forEach calls fn for every i in [0, n). Parallel runs the calls on up to
// e.maxWorkers goroutines and returns after all of them have finished, which
// makes each call a barrier between ranking phases.
func (e *Engine) forEach(ctx context.Context, policy ExecutionPolicy, n int, fn func(i int) error) error {
	if policy != Parallel || n < 2 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())
	for i := 0; i < n; i++ {
		g.Go(func() error {
			return fn(i)
		})
	}
	return g.Wait()
}

func (e *Engine) workers() int {
	if e.maxWorkers > 0 {
		return e.maxWorkers
	}
	return runtime.GOMAXPROCS(0)
}
