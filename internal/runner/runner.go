// Package runner glues compilation and execution together: load a script,
// compile and optionally optimize it, then run it to completion against a
// supplied environment. Every run is stamped with a correlation ID so
// concurrently executing scripts stay distinguishable in one shared log.
package runner

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/EmonFan/bardolph/internal/parser"
	"github.com/EmonFan/bardolph/internal/translog"
	"github.com/EmonFan/bardolph/internal/vm"
)

// Options configures a single Run.
type Options struct {
	Env      vm.Env
	Optimize bool
}

// Result carries what the CLI and Pool report back for one run.
type Result struct {
	Path    string
	RunID   string
	Program *vm.Program
	Err     error
}

// Load reads a script file, compiles it, and runs the peephole optimizer
// over the result when requested.
func Load(path string, optimize bool) (*vm.CodeGen, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("io-error: %w", err)
	}
	gen, err := parser.Compile(string(data))
	if err != nil {
		return nil, err
	}
	if optimize {
		gen.Optimize()
	}
	return gen, nil
}

// Run compiles and executes one script to completion. The environment's
// logger, if any, is tagged with a fresh run ID before the machine starts,
// so WARN/ERROR lines from this run can be picked out of a shared stream.
func Run(ctx context.Context, path string, opts Options) Result {
	runID := uuid.NewString()
	env := opts.Env
	if env.Logger != nil {
		env.Logger = translog.WithRun(env.Logger, runID)
	}

	gen, err := Load(path, opts.Optimize)
	if err != nil {
		return Result{Path: path, RunID: runID, Err: err}
	}

	m := vm.NewMachine(gen.Program(), env)
	err = m.Run(ctx)
	return Result{Path: path, RunID: runID, Program: gen.Program(), Err: err}
}

// Pool runs multiple scripts concurrently with a bounded number of worker
// goroutines, all acting against one shared lampset.Set/clock.Clock pair —
// several scripts legitimately reaching for the same lamps at once is the
// ordinary case, not a conflict the pool needs to arbitrate.
type Pool struct {
	env      vm.Env
	optimize bool
	sem      chan struct{}
}

// NewPool builds a Pool with room for at most maxWorkers scripts running at
// once.
func NewPool(env vm.Env, optimize bool, maxWorkers int) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Pool{env: env, optimize: optimize, sem: make(chan struct{}, maxWorkers)}
}

// Submit runs path in its own goroutine, blocking until a worker slot is
// free, and delivers its Result on the returned channel.
func (p *Pool) Submit(ctx context.Context, path string) <-chan Result {
	out := make(chan Result, 1)
	p.sem <- struct{}{}
	go func() {
		defer func() { <-p.sem }()
		out <- Run(ctx, path, Options{Env: p.env, Optimize: p.optimize})
	}()
	return out
}

// RunAll submits every path and waits for them all to finish, returning
// results in the same order as paths rather than completion order.
func (p *Pool) RunAll(ctx context.Context, paths []string) []Result {
	chans := make([]<-chan Result, len(paths))
	for i, path := range paths {
		chans[i] = p.Submit(ctx, path)
	}
	results := make([]Result, len(paths))
	for i, ch := range chans {
		results[i] = <-ch
	}
	return results
}
