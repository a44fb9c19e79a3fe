// Package search runs many trials of one program with different seed
// values in a register, the way brute-force puzzle callers use the
// interpreter.
package search

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/bunnyvm/core"
)

// ErrNotFound is returned when no seed in the scanned range is accepted.
var ErrNotFound = errors.New("no seed accepted")

// Options controls a seed scan.
type Options struct {
	Register string // register receiving the seed
	Start    int    // first seed
	Limit    int    // number of seeds to scan, 0 for no limit
	Workers  int    // concurrent trials
	Batch    int    // seeds per batch

	// TrialBudget caps the instructions of a single trial, 0 for no cap.
	TrialBudget uint64
	// TargetLength is how many matching outputs ClockSignal accepts
	// without having proven a loop. 0 means loop detection only.
	TargetLength int
}

// DefaultOptions scans register a upwards from 1.
func DefaultOptions() Options {
	return Options{
		Register:     "a",
		Start:        1,
		Workers:      8,
		Batch:        64,
		TrialBudget:  1 << 24,
		TargetLength: 50,
	}
}

// TrialFunc inspects one trial. it is a private clone seeded with seed.
type TrialFunc func(ctx context.Context, seed int, it *core.Interpreter) error

// AcceptFunc decides whether a seeded trial is a solution.
type AcceptFunc func(ctx context.Context, it *core.Interpreter) (bool, error)

// Trials runs fn once per seed on its own clone of base, at most workers
// at a time. The first error cancels the remaining trials.
func Trials(
	ctx context.Context,
	base *core.Interpreter,
	reg string,
	seeds []int,
	workers int,
	fn TrialFunc,
) error {
	if _, err := core.ParseRegister(reg); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for _, seed := range seeds {
		if gctx.Err() != nil {
			break
		}

		trial := base.Clone()
		trial.SetOutputSink(nil)
		if err := trial.SetRegister(reg, seed); err != nil {
			return err
		}

		g.Go(func() error {
			return fn(gctx, seed, trial)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// LowestSeed returns the smallest seed from opts.Start upwards that accept
// approves. Seeds are tried in batches; within a batch trials run
// concurrently.
func LowestSeed(
	ctx context.Context,
	base *core.Interpreter,
	opts Options,
	accept AcceptFunc,
) (int, error) {
	if opts.Batch < 1 {
		return 0, fmt.Errorf("batch must be at least 1, got %d", opts.Batch)
	}

	end := opts.Start + opts.Limit
	for start := opts.Start; opts.Limit == 0 || start < end; start += opts.Batch {
		n := opts.Batch
		if opts.Limit > 0 {
			n = min(n, end-start)
		}

		seeds := make([]int, n)
		for i := range seeds {
			seeds[i] = start + i
		}
		accepted := make([]bool, n)

		err := Trials(ctx, base, opts.Register, seeds, opts.Workers,
			func(ctx context.Context, seed int, it *core.Interpreter) error {
				if opts.TrialBudget > 0 {
					it.SetStepBudget(it.Steps() + opts.TrialBudget)
				}

				ok, err := accept(ctx, it)
				if err != nil {
					return fmt.Errorf("seed %d: %w", seed, err)
				}

				accepted[seed-start] = ok
				return nil
			})
		if err != nil {
			return 0, err
		}

		for i, ok := range accepted {
			if ok {
				return seeds[i], nil
			}
		}
	}

	return 0, ErrNotFound
}
