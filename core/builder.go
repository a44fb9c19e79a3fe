package core

// Builder can create new interpreters.
type Builder struct {
	budget  uint64
	sink    OutputSink
	trace   bool
	presets map[string]int
}

// NewBuilder returns a builder for unlimited, untraced interpreters.
func NewBuilder() Builder {
	return Builder{}
}

// WithStepBudget caps the number of instructions the interpreter may run.
func (b Builder) WithStepBudget(n uint64) Builder {
	b.budget = n
	return b
}

// WithOutputSink sets the receiver of transmitted values.
func (b Builder) WithOutputSink(sink OutputSink) Builder {
	b.sink = sink
	return b
}

// WithTrace turns on per-instruction trace logging.
func (b Builder) WithTrace(trace bool) Builder {
	b.trace = trace
	return b
}

// WithRegister presets a register before the first instruction runs.
func (b Builder) WithRegister(name string, v int) Builder {
	presets := make(map[string]int, len(b.presets)+1)
	for k, pv := range b.presets {
		presets[k] = pv
	}
	presets[name] = v
	b.presets = presets
	return b
}

// Build parses program text and creates an interpreter.
func (b Builder) Build(text string) (*Interpreter, error) {
	prog, err := ParseProgram(text)
	if err != nil {
		return nil, err
	}
	return b.BuildFromProgram(prog)
}

// BuildFromProgram creates an interpreter running a copy of prog.
func (b Builder) BuildFromProgram(prog Program) (*Interpreter, error) {
	it := NewFromProgram(prog)
	it.budget = b.budget
	it.sink = b.sink
	it.trace = b.trace

	for name, v := range b.presets {
		if err := it.SetRegister(name, v); err != nil {
			return nil, err
		}
	}

	return it, nil
}
