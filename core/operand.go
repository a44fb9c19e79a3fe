package core

import (
	"fmt"
	"strconv"
)

// OperandKind tells whether an operand is a literal or a register reference.
type OperandKind uint8

const (
	OperandImm OperandKind = iota
	OperandReg
)

// Operand is an instruction argument: either an immediate value or a
// register reference. Fields are exported so that snapshots can be
// fingerprinted.
type Operand struct {
	Kind OperandKind
	Reg  Register
	Imm  int
}

// Imm returns a literal operand.
func Imm(v int) Operand {
	return Operand{Kind: OperandImm, Imm: v}
}

// Reg returns a register operand.
func Reg(r Register) Operand {
	return Operand{Kind: OperandReg, Reg: r}
}

// ParseOperand decodes a register name (a-d) or a base-10 signed integer.
func ParseOperand(tok string) (Operand, error) {
	if r, err := ParseRegister(tok); err == nil {
		return Reg(r), nil
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return Operand{}, fmt.Errorf("operand %q is neither a register nor an integer", tok)
	}
	return Imm(v), nil
}

// Value resolves the operand against the register file.
func (o Operand) Value(regs *RegisterFile) int {
	if o.Kind == OperandReg {
		return regs.Get(o.Reg)
	}
	return o.Imm
}

// Register returns the register the operand refers to. ok is false for
// literals, which cannot be written to.
func (o Operand) Register() (r Register, ok bool) {
	if o.Kind != OperandReg {
		return 0, false
	}
	return o.Reg, true
}

// IsImm reports whether the operand is a literal.
func (o Operand) IsImm() bool {
	return o.Kind == OperandImm
}

func (o Operand) String() string {
	if o.Kind == OperandReg {
		return o.Reg.String()
	}
	return strconv.Itoa(o.Imm)
}
