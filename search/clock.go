package search

import (
	"context"
	"errors"

	"tailscale.com/util/deephash"

	"github.com/sarchlab/bunnyvm/core"
)

type clockKey struct {
	State core.Snapshot
	Want  int
}

// ClockSignal returns the lowest seed for which the program transmits the
// endless signal 0, 1, 0, 1, ...
func ClockSignal(ctx context.Context, base *core.Interpreter, opts Options) (int, error) {
	return LowestSeed(ctx, base, opts, AlternatingSignal(opts.TargetLength))
}

// AlternatingSignal accepts a trial whose output alternates 0 and 1,
// starting with 0. The signal is proven endless when the machine state
// repeats between two outputs with the same value expected next. Without
// such a proof, targetLength matching outputs are enough; with
// targetLength 0 only a proof is accepted.
//
// Trials that halt, transmit a wrong value or exhaust their step budget
// are rejected.
func AlternatingSignal(targetLength int) AcceptFunc {
	return func(ctx context.Context, it *core.Interpreter) (bool, error) {
		seen := make(map[deephash.Sum]bool)
		want := 0

		for n := 0; targetLength <= 0 || n < targetLength; n++ {
			if err := ctx.Err(); err != nil {
				return false, err
			}

			key := clockKey{State: it.Snapshot(), Want: want}
			sum := deephash.Hash(&key)
			if seen[sum] {
				return true, nil
			}
			seen[sum] = true

			v, ok, err := it.RunUntilOutput()
			if errors.Is(err, core.ErrBudgetExceeded) {
				return false, nil
			}
			if err != nil {
				return false, err
			}

			if !ok || v != want {
				return false, nil
			}

			want ^= 1
		}

		return true, nil
	}
}
