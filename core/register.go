package core

import "fmt"

// Register names one of the four machine registers.
type Register uint8

const (
	RegA Register = iota
	RegB
	RegC
	RegD

	NumRegisters = 4
)

var registerNames = [NumRegisters]string{"a", "b", "c", "d"}

func (r Register) String() string {
	if int(r) < NumRegisters {
		return registerNames[r]
	}
	return fmt.Sprintf("Register(%d)", uint8(r))
}

// ParseRegister maps a register name to its Register.
func ParseRegister(name string) (Register, error) {
	for i, n := range registerNames {
		if n == name {
			return Register(i), nil
		}
	}
	return 0, &RegisterError{Name: name}
}

// RegisterFile holds the register values, indexed by Register.
type RegisterFile [NumRegisters]int

// Get returns the value held in register r.
func (f RegisterFile) Get(r Register) int {
	return f[r]
}

// Set stores v into register r.
func (f *RegisterFile) Set(r Register, v int) {
	f[r] = v
}
