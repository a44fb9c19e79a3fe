package machine

import (
	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/bunnyvm/core"
)

// Builder can create new machines.
type Builder struct {
	engine        sim.Engine
	freq          sim.Freq
	instsPerCycle int
	outputLimit   int
	monitor       *monitoring.Monitor
}

// NewBuilder returns a builder for a 1 GHz machine retiring one
// instruction per cycle.
func NewBuilder() Builder {
	return Builder{
		freq:          1 * sim.GHz,
		instsPerCycle: 1,
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the machine.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

func (b Builder) WithInstsPerCycle(n int) Builder {
	if n < 1 {
		panic("Need at least 1 instruction per cycle")
	}
	b.instsPerCycle = n
	return b
}

// WithOutputLimit stops the machine after n transmitted values. Zero means
// no limit.
func (b Builder) WithOutputLimit(n int) Builder {
	b.outputLimit = n
	return b
}

// WithMonitor sets the monitor that monitors the machine.
func (b Builder) WithMonitor(monitor *monitoring.Monitor) Builder {
	b.monitor = monitor
	return b
}

// Build creates a machine that drives interp.
func (b Builder) Build(name string, interp *core.Interpreter) *Machine {
	m := &Machine{
		interp:        interp,
		instsPerCycle: b.instsPerCycle,
		outputLimit:   b.outputLimit,
	}

	m.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, m)

	if b.monitor != nil {
		b.monitor.RegisterComponent(m)
	}

	return m
}
