// Package machine runs an interpreter as a clocked component on an akita
// simulation engine, so that programs can be measured in cycles and
// virtual time.
package machine

import (
	"log/slog"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/bunnyvm/core"
)

// Sample is a transmitted value stamped with the virtual time of the cycle
// that produced it.
type Sample struct {
	Time  sim.VTimeInSec
	Cycle uint64
	Value int
}

type Machine struct {
	*sim.TickingComponent

	interp        *core.Interpreter
	instsPerCycle int
	outputLimit   int

	cycles  uint64
	samples []Sample
	stopped bool
	err     error
}

// Interpreter returns the driven interpreter.
func (m *Machine) Interpreter() *core.Interpreter {
	return m.interp
}

// Cycles returns the number of cycles in which instructions retired.
func (m *Machine) Cycles() uint64 {
	return m.cycles
}

// Samples returns the transmitted values in order.
func (m *Machine) Samples() []Sample {
	return m.samples
}

// Err returns the error that stopped the machine, if any.
func (m *Machine) Err() error {
	return m.err
}

// Stopped reports whether the machine will not tick again.
func (m *Machine) Stopped() bool {
	return m.stopped
}

// Start schedules the first tick.
func (m *Machine) Start() {
	m.TickNow()
}

// Run starts the machine and runs the engine until no events are left.
func (m *Machine) Run() error {
	m.Start()
	if err := m.Engine.Run(); err != nil {
		return err
	}
	return m.err
}

// Tick retires up to instsPerCycle instructions.
func (m *Machine) Tick() (madeProgress bool) {
	if m.stopped {
		return false
	}

	for i := 0; i < m.instsPerCycle; i++ {
		ok, err := m.interp.Step()
		if err != nil {
			m.err = err
			m.stop("BudgetExceeded")
			break
		}

		if !ok {
			m.stop("Halted")
			break
		}

		madeProgress = true
		m.collect()

		if m.outputLimit > 0 && len(m.samples) >= m.outputLimit {
			m.stop("OutputLimit")
			break
		}
	}

	if madeProgress {
		m.cycles++
	}

	return madeProgress
}

func (m *Machine) collect() {
	for {
		v, ok := m.interp.NextOutput()
		if !ok {
			return
		}

		m.samples = append(m.samples, Sample{
			Time:  m.Engine.CurrentTime(),
			Cycle: m.cycles,
			Value: v,
		})

		core.Trace("Machine",
			"Behavior", "Out",
			slog.Float64("Time", float64(m.Engine.CurrentTime()*1e9)),
			"Name", m.Name(),
			"Value", v,
		)
	}
}

func (m *Machine) stop(reason string) {
	m.stopped = true

	core.Trace("Machine",
		"Behavior", "Stop",
		"Reason", reason,
		slog.Float64("Time", float64(m.Engine.CurrentTime()*1e9)),
		"Name", m.Name(),
		"Cycles", m.cycles,
		"PC", m.interp.PC(),
	)
	core.LogState(m.interp)
}
