package core

import (
	"fmt"
	"os"
	"strings"
)

// Program is the fixed-length instruction sequence an interpreter runs.
type Program []Instruction

// ParseProgram assembles program text, one instruction per line. Blank
// lines are skipped. The first malformed line aborts the whole parse.
func ParseProgram(text string) (Program, error) {
	var prog Program

	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		inst, err := parseInstruction(line)
		if err != nil {
			return nil, &ParseError{Line: i + 1, Text: line, Err: err}
		}

		prog = append(prog, inst)
	}

	return prog, nil
}

func parseInstruction(line string) (Instruction, error) {
	tokens := strings.Fields(line)

	op, ok := opcodeAliases[tokens[0]]
	if !ok {
		return Instruction{}, fmt.Errorf("unknown instruction %q", tokens[0])
	}

	args := tokens[1:]
	if len(args) != op.Arity() {
		return Instruction{}, fmt.Errorf("%s takes %d operand(s), got %d",
			op, op.Arity(), len(args))
	}

	inst := Instruction{Opcode: op}
	for i, tok := range args {
		operand, err := ParseOperand(tok)
		if err != nil {
			return Instruction{}, err
		}
		inst.Operands[i] = operand
	}

	return inst, nil
}

// LoadProgramFile reads and parses a program file.
func LoadProgramFile(path string) (Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load program: %w", err)
	}

	prog, err := ParseProgram(string(data))
	if err != nil {
		return nil, fmt.Errorf("load program %s: %w", path, err)
	}

	return prog, nil
}

// Clone returns an independent copy of the program.
func (p Program) Clone() Program {
	if p == nil {
		return nil
	}
	out := make(Program, len(p))
	copy(out, p)
	return out
}

// String renders the program back into parseable text.
func (p Program) String() string {
	var sb strings.Builder
	for _, inst := range p {
		sb.WriteString(inst.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
