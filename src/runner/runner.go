// Package runner executes a plan against the container engine with bounded
// parallelism, honoring operation dependencies.
package runner

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/nedforge/nedforge/src/engine"
	"github.com/nedforge/nedforge/src/plan"
)

// Status is the terminal state of one operation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// OpResult records the outcome of a single operation.
type OpResult struct {
	Op       plan.Operation
	Status   Status
	Duration time.Duration
	Err      error
}

// AggregateError enumerates every failed operation from a run.
type AggregateError struct {
	Failures []OpResult
}

func (e *AggregateError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d operation(s) failed", len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&b, "\n  %s: %v", f.Op, f.Err)
	}
	return b.String()
}

// Unwrap exposes the underlying tool errors to errors.Is/As.
func (e *AggregateError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// BuildOptions carries the build-op parameters that are constant across a
// plan (the per-op parts live on the operations themselves).
type BuildOptions struct {
	Dockerfile string
	Context    string
	CacheFrom  []string
}

// Runner schedules operations over a worker pool.
type Runner struct {
	Engine  engine.Engine
	Build   BuildOptions
	Workers int // <= 0 means runtime.NumCPU()
}

type opState int

const (
	statePending opState = iota
	stateRunning
	stateDone // success, failed, or skipped; see results
)

// Run executes every operation of p whose dependencies succeed.
//
// Scheduling is fail-fast without forced cancellation: after the first
// failure no further operations start, in-flight ones finish naturally, and
// dependents of failed or skipped operations are marked skipped. The
// returned results cover every operation in plan order. Execution failures
// are reported as an *AggregateError.
func (r *Runner) Run(ctx context.Context, p *plan.Plan) ([]OpResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	sem := semaphore.NewWeighted(int64(workers))

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		state     = make(map[string]opState, len(p.Ops))
		results   = make(map[string]OpResult, len(p.Ops))
		anyFailed bool
	)
	for _, op := range p.Ops {
		state[op.ID] = statePending
	}
	completed := make(chan struct{}, len(p.Ops))

	finish := func(op plan.Operation, res OpResult) {
		mu.Lock()
		state[op.ID] = stateDone
		results[op.ID] = res
		if res.Status == StatusFailed {
			anyFailed = true
		}
		mu.Unlock()
		completed <- struct{}{}
	}

	launch := func(op plan.Operation) {
		state[op.ID] = stateRunning
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				finish(op, OpResult{Op: op, Status: StatusFailed, Err: err})
				return
			}
			defer sem.Release(1)

			start := time.Now()
			err := r.execute(ctx, op)
			res := OpResult{Op: op, Status: StatusSuccess, Duration: time.Since(start)}
			if err != nil {
				res.Status = StatusFailed
				res.Err = err
			}
			finish(op, res)
		}()
	}

	for {
		mu.Lock()
		running := 0
		pending := 0
		for _, st := range state {
			switch st {
			case stateRunning:
				running++
			case statePending:
				pending++
			}
		}

		if pending > 0 {
			for _, op := range p.Ops {
				if state[op.ID] != statePending {
					continue
				}
				switch r.depsOutcome(op, state, results, anyFailed) {
				case depsReady:
					launch(op)
					running++
				case depsBlocked:
					state[op.ID] = stateDone
					results[op.ID] = OpResult{Op: op, Status: StatusSkipped}
					pending--
				}
			}
		}
		mu.Unlock()

		if running == 0 {
			break
		}
		<-completed
	}
	wg.Wait()

	ordered := make([]OpResult, 0, len(p.Ops))
	var failures []OpResult
	for _, op := range p.Ops {
		res := results[op.ID]
		ordered = append(ordered, res)
		if res.Status == StatusFailed {
			failures = append(failures, res)
		}
	}
	if len(failures) > 0 {
		return ordered, &AggregateError{Failures: failures}
	}
	return ordered, nil
}

type depsDecision int

const (
	depsReady depsDecision = iota
	depsWaiting
	depsBlocked
)

// depsOutcome decides whether op can start. Once any operation has failed,
// pending work is blocked outright; otherwise an op waits for its deps and
// is blocked if any of them did not succeed.
func (r *Runner) depsOutcome(op plan.Operation, state map[string]opState, results map[string]OpResult, anyFailed bool) depsDecision {
	if anyFailed {
		return depsBlocked
	}
	for _, dep := range op.Deps {
		if state[dep] != stateDone {
			return depsWaiting
		}
		if results[dep].Status != StatusSuccess {
			return depsBlocked
		}
	}
	return depsReady
}

func (r *Runner) execute(ctx context.Context, op plan.Operation) error {
	switch op.Kind {
	case plan.KindBuild:
		return r.Engine.Build(ctx, engine.BuildSpec{
			Dockerfile: r.Build.Dockerfile,
			Context:    r.Build.Context,
			Target:     op.Target,
			Tags:       op.Tags,
			BuildArgs:  op.BuildArgs,
			CacheFrom:  r.Build.CacheFrom,
		})
	case plan.KindTag:
		for _, dst := range op.Tags {
			if err := r.Engine.Tag(ctx, op.Image, dst); err != nil {
				return err
			}
		}
		return nil
	case plan.KindPush:
		return r.Engine.Push(ctx, op.Image)
	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}
