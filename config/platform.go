package config

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/bunnyvm/core"
	"github.com/sarchlab/bunnyvm/machine"
	"github.com/sarchlab/bunnyvm/search"
)

// Freq returns the configured machine frequency.
func (c MachineConfig) Freq() sim.Freq {
	return sim.Freq(c.FreqMHz) * sim.MHz
}

// Builder returns a machine builder on engine with this configuration.
func (c MachineConfig) Builder(engine sim.Engine) machine.Builder {
	return machine.NewBuilder().
		WithEngine(engine).
		WithFreq(c.Freq()).
		WithInstsPerCycle(c.InstsPerCycle).
		WithOutputLimit(c.OutputLimit)
}

// BuildMachine wraps it into a machine named name.
func (c MachineConfig) BuildMachine(engine sim.Engine, name string, it *core.Interpreter) *machine.Machine {
	return c.Builder(engine).Build(name, it)
}

// Options converts the search section into search options.
func (c SearchConfig) Options() search.Options {
	return search.Options{
		Register:     c.Register,
		Start:        c.Start,
		Limit:        c.Limit,
		Workers:      c.Workers,
		Batch:        c.Batch,
		TrialBudget:  c.TrialBudget,
		TargetLength: c.TargetLength,
	}
}
