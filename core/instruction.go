package core

import "strings"

// Opcode represents the operation code for an instruction
type Opcode string

const (
	OpCpy Opcode = "cpy"
	OpInc Opcode = "inc"
	OpDec Opcode = "dec"
	OpJnz Opcode = "jnz"
	OpTgl Opcode = "tgl"
	OpOut Opcode = "out"
)

// opcodeAliases maps accepted mnemonics to their opcode.
var opcodeAliases = map[string]Opcode{
	"cpy":  OpCpy,
	"copy": OpCpy,
	"inc":  OpInc,
	"dec":  OpDec,
	"jnz":  OpJnz,
	"tgl":  OpTgl,
	"out":  OpOut,
}

// Arity returns the number of operands the opcode takes.
func (op Opcode) Arity() int {
	switch op {
	case OpCpy, OpJnz:
		return 2
	case OpInc, OpDec, OpTgl, OpOut:
		return 1
	default:
		return 0
	}
}

// Instruction is one program slot. Operands beyond the opcode's arity are
// zero.
//
//	cpy: Operands[0] = src,  Operands[1] = dst
//	jnz: Operands[0] = cond, Operands[1] = offset
//	inc, dec, tgl, out: Operands[0]
type Instruction struct {
	Opcode   Opcode
	Operands [2]Operand
}

// Cpy builds a copy instruction.
func Cpy(src, dst Operand) Instruction {
	return Instruction{Opcode: OpCpy, Operands: [2]Operand{src, dst}}
}

// Inc builds an increment instruction.
func Inc(dst Operand) Instruction {
	return Instruction{Opcode: OpInc, Operands: [2]Operand{dst}}
}

// Dec builds a decrement instruction.
func Dec(dst Operand) Instruction {
	return Instruction{Opcode: OpDec, Operands: [2]Operand{dst}}
}

// Jnz builds a jump-if-not-zero instruction.
func Jnz(cond, offset Operand) Instruction {
	return Instruction{Opcode: OpJnz, Operands: [2]Operand{cond, offset}}
}

// Tgl builds a toggle instruction.
func Tgl(offset Operand) Instruction {
	return Instruction{Opcode: OpTgl, Operands: [2]Operand{offset}}
}

// Out builds a transmit instruction.
func Out(src Operand) Instruction {
	return Instruction{Opcode: OpOut, Operands: [2]Operand{src}}
}

// Toggle returns the instruction that tgl turns inst into. Two-operand
// instructions swap between cpy and jnz; one-operand instructions become
// inc, except inc which becomes dec.
func Toggle(inst Instruction) Instruction {
	switch inst.Opcode {
	case OpCpy:
		inst.Opcode = OpJnz
	case OpJnz:
		inst.Opcode = OpCpy
	case OpInc:
		inst.Opcode = OpDec
	case OpDec, OpTgl, OpOut:
		inst.Opcode = OpInc
	}
	return inst
}

func (inst Instruction) String() string {
	var sb strings.Builder
	sb.WriteString(string(inst.Opcode))
	for i := 0; i < inst.Opcode.Arity(); i++ {
		sb.WriteByte(' ')
		sb.WriteString(inst.Operands[i].String())
	}
	return sb.String()
}
