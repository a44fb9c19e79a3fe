package core

import (
	"context"
	"slices"
)

// ctxCheckInterval is how many steps ExecuteContext runs between context
// checks.
const ctxCheckInterval = 4096

// OutputSink receives every value transmitted by an out instruction.
type OutputSink interface {
	Emit(value int)
}

// OutputFunc adapts a function to OutputSink.
type OutputFunc func(value int)

// Emit calls f(value).
func (f OutputFunc) Emit(value int) {
	f(value)
}

type interpState struct {
	PC        int
	Registers RegisterFile
	Code      Program
	Halted    bool

	Steps   uint64
	Emitted uint64
	Pending []int
}

// Interpreter runs an Assembunny program. An Interpreter is not safe for
// concurrent use; run independent trials on clones.
type Interpreter struct {
	state interpState
	emu   instEmulator

	budget uint64
	sink   OutputSink
	trace  bool
}

// New parses program text into an interpreter with all registers zeroed.
func New(text string) (*Interpreter, error) {
	prog, err := ParseProgram(text)
	if err != nil {
		return nil, err
	}
	return NewFromProgram(prog), nil
}

// NewFromProgram creates an interpreter running a copy of prog.
func NewFromProgram(prog Program) *Interpreter {
	return &Interpreter{
		state: interpState{Code: prog.Clone()},
	}
}

// Register returns the value held in the named register.
func (it *Interpreter) Register(name string) (int, error) {
	r, err := ParseRegister(name)
	if err != nil {
		return 0, err
	}
	return it.state.Registers.Get(r), nil
}

// SetRegister stores v into the named register.
func (it *Interpreter) SetRegister(name string, v int) error {
	r, err := ParseRegister(name)
	if err != nil {
		return err
	}
	it.state.Registers.Set(r, v)
	return nil
}

// Registers returns a copy of the register file.
func (it *Interpreter) Registers() RegisterFile {
	return it.state.Registers
}

// PC returns the program counter.
func (it *Interpreter) PC() int {
	return it.state.PC
}

// Len returns the number of instructions in the program.
func (it *Interpreter) Len() int {
	return len(it.state.Code)
}

// Instruction returns the current, possibly toggled, instruction at i.
func (it *Interpreter) Instruction(i int) (Instruction, bool) {
	if i < 0 || i >= len(it.state.Code) {
		return Instruction{}, false
	}
	return it.state.Code[i], true
}

// Program returns a copy of the current program.
func (it *Interpreter) Program() Program {
	return it.state.Code.Clone()
}

// IsHalted reports whether the program ran off either end.
func (it *Interpreter) IsHalted() bool {
	return it.state.Halted
}

// Steps returns how many instructions have executed so far.
func (it *Interpreter) Steps() uint64 {
	return it.state.Steps
}

// SetStepBudget caps the total number of executed instructions. Zero
// removes the cap.
func (it *Interpreter) SetStepBudget(n uint64) {
	it.budget = n
}

// StepBudget returns the configured cap, zero when unlimited.
func (it *Interpreter) StepBudget() uint64 {
	return it.budget
}

// SetOutputSink installs the receiver of transmitted values. Values are
// queued for NextOutput regardless.
func (it *Interpreter) SetOutputSink(sink OutputSink) {
	it.sink = sink
}

// NextOutput pops the oldest transmitted value that has not been read.
func (it *Interpreter) NextOutput() (int, bool) {
	if len(it.state.Pending) == 0 {
		return 0, false
	}
	v := it.state.Pending[0]
	it.state.Pending = it.state.Pending[1:]
	return v, true
}

// Emitted returns how many values out instructions have transmitted.
func (it *Interpreter) Emitted() uint64 {
	return it.state.Emitted
}

// Clone returns an independent copy of the whole interpreter, including
// the current program with any toggles applied. The output sink is shared.
func (it *Interpreter) Clone() *Interpreter {
	c := *it
	c.state.Code = it.state.Code.Clone()
	c.state.Pending = slices.Clone(it.state.Pending)
	return &c
}

// Snapshot is an exported view of the machine state.
type Snapshot struct {
	PC        int
	Registers RegisterFile
	Program   Program
	Halted    bool
}

// Snapshot captures the current state.
func (it *Interpreter) Snapshot() Snapshot {
	return Snapshot{
		PC:        it.state.PC,
		Registers: it.state.Registers,
		Program:   it.state.Code.Clone(),
		Halted:    it.state.Halted,
	}
}

// Step executes a single instruction. It returns false without doing
// anything when the interpreter has already halted.
func (it *Interpreter) Step() (bool, error) {
	s := &it.state
	if s.Halted {
		return false, nil
	}

	if s.PC >= len(s.Code) {
		it.emu.halt(s)
		return false, nil
	}

	if it.budget > 0 && s.Steps >= it.budget {
		return false, &BudgetExceededError{Budget: it.budget, PC: s.PC}
	}

	inst := s.Code[s.PC]
	if it.trace {
		Trace("Inst",
			"PC", s.PC,
			"Inst", inst.String(),
			"Registers", s.Registers,
		)
	}

	v, emitted := it.emu.RunInst(inst, s)
	s.Steps++

	if emitted {
		s.Emitted++
		s.Pending = append(s.Pending, v)
		if it.sink != nil {
			it.sink.Emit(v)
		}
	}

	if s.PC >= len(s.Code) {
		it.emu.halt(s)
	}

	return true, nil
}

// Execute runs until the program halts.
func (it *Interpreter) Execute() error {
	return it.ExecuteContext(context.Background())
}

// ExecuteContext runs until the program halts, the step budget runs out
// or ctx is done.
func (it *Interpreter) ExecuteContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for n := 1; ; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		ok, err := it.Step()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

// RunUntil steps until the program halts or pred holds after a step.
func (it *Interpreter) RunUntil(pred func(*Interpreter) bool) error {
	for {
		ok, err := it.Step()
		if err != nil {
			return err
		}
		if !ok || pred(it) {
			return nil
		}
	}
}

// RunUntilOutput returns the next transmitted value, resuming execution
// when nothing is queued. ok is false if the program halts first.
func (it *Interpreter) RunUntilOutput() (v int, ok bool, err error) {
	if v, ok := it.NextOutput(); ok {
		return v, true, nil
	}

	err = it.RunUntil(func(it *Interpreter) bool {
		return len(it.state.Pending) > 0
	})
	if err != nil {
		return 0, false, err
	}

	v, ok = it.NextOutput()
	return v, ok, nil
}
