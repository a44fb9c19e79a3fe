package main

import (
	_ "embed"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/bunnyvm/core"
)

//go:embed safe.asmb
var safeProgram string

func main() {
	eggs := flag.Int("a", 7, "initial value of register a")
	trace := flag.Bool("trace", false, "log every executed instruction as JSON")
	flag.Parse()

	if *trace {
		handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: core.LevelTrace,
		})
		slog.SetDefault(slog.New(handler))
	}

	it, err := core.NewBuilder().
		WithRegister("a", *eggs).
		WithTrace(*trace).
		Build(safeProgram)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	if err := it.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	core.PrintState(os.Stdout, it)
	fmt.Printf("a=%d: safe value %d after %d steps\n", *eggs, mustRegister(it, "a"), it.Steps())

	atexit.Exit(0)
}

func mustRegister(it *core.Interpreter, name string) int {
	v, err := it.Register(name)
	if err != nil {
		panic(err)
	}
	return v
}
