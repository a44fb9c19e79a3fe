package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
)

const (
	LevelTrace slog.Level = slog.LevelDebug - 4
)

func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// PrintState renders the registers and the instruction window around the
// program counter.
func PrintState(w io.Writer, it *Interpreter) {
	fmt.Fprintf(w, "==============State@PC %d==============\n", it.PC())

	regTable := table.NewWriter()
	regTable.SetOutputMirror(w)
	regTable.SetTitle("Registers")

	header := table.Row{}
	row := table.Row{}
	regs := it.Registers()
	for r := Register(0); r < NumRegisters; r++ {
		header = append(header, r.String())
		row = append(row, regs.Get(r))
	}
	regTable.AppendHeader(header)
	regTable.AppendRow(row)
	regTable.Render()

	codeTable := table.NewWriter()
	codeTable.SetOutputMirror(w)
	codeTable.SetTitle("Program")
	codeTable.AppendHeader(table.Row{"", "#", "Instruction"})

	lo := max(it.PC()-3, 0)
	hi := min(it.PC()+4, it.Len())
	for i := lo; i < hi; i++ {
		inst, _ := it.Instruction(i)
		marker := ""
		if i == it.PC() {
			marker = ">"
		}
		codeTable.AppendRow(table.Row{marker, i, inst.String()})
	}
	codeTable.Render()

	fmt.Fprintf(w, "steps=%d halted=%v\n", it.Steps(), it.IsHalted())
}

func LogState(it *Interpreter) {
	slog.Debug("StateCheckpoint",
		"PC", it.state.PC,
		"Halted", it.state.Halted,
		"Registers", it.state.Registers,
		"Steps", it.state.Steps,
		"Pending", it.state.Pending,
	)
}
