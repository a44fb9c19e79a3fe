package core

import "fmt"

type instEmulator struct {
}

// RunInst executes inst against state. For out, it returns the transmitted
// value and emitted = true.
func (i instEmulator) RunInst(inst Instruction, state *interpState) (v int, emitted bool) {
	switch inst.Opcode {
	case OpCpy:
		i.runCpy(inst, state)
	case OpInc:
		i.runAdd(inst, state, 1)
	case OpDec:
		i.runAdd(inst, state, -1)
	case OpJnz:
		i.runJnz(inst, state)
	case OpTgl:
		i.runTgl(inst, state)
	case OpOut:
		v = i.runOut(inst, state)
		emitted = true
	default:
		panic(fmt.Sprintf("unknown instruction '%s' at PC %d", inst.Opcode, state.PC))
	}

	return v, emitted
}

// runCpy skips silently when the destination is a literal. Such an
// instruction only appears when tgl rewrites a jnz.
func (i instEmulator) runCpy(inst Instruction, state *interpState) {
	src := inst.Operands[0].Value(&state.Registers)
	if dst, ok := inst.Operands[1].Register(); ok {
		state.Registers.Set(dst, src)
	}
	state.PC++
}

func (i instEmulator) runAdd(inst Instruction, state *interpState, delta int) {
	if dst, ok := inst.Operands[0].Register(); ok {
		state.Registers.Set(dst, state.Registers.Get(dst)+delta)
	}
	state.PC++
}

func (i instEmulator) runJnz(inst Instruction, state *interpState) {
	cond := inst.Operands[0].Value(&state.Registers)
	if cond == 0 {
		state.PC++
		return
	}

	offset := inst.Operands[1].Value(&state.Registers)
	switch {
	case offset < -state.PC:
		i.halt(state)
	case offset >= len(state.Code)-state.PC:
		i.halt(state)
	default:
		state.PC += offset
	}
}

// runTgl rewrites the instruction offset slots away. Targets outside the
// program are ignored.
func (i instEmulator) runTgl(inst Instruction, state *interpState) {
	offset := inst.Operands[0].Value(&state.Registers)
	if offset >= -state.PC && offset < len(state.Code)-state.PC {
		target := state.PC + offset
		state.Code[target] = Toggle(state.Code[target])
	}
	state.PC++
}

func (i instEmulator) runOut(inst Instruction, state *interpState) int {
	v := inst.Operands[0].Value(&state.Registers)
	state.PC++
	return v
}

// halt parks the program counter one past the end.
func (i instEmulator) halt(state *interpState) {
	state.PC = len(state.Code)
	state.Halted = true
}
