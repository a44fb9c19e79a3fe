package main

import (
	_ "embed"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/bunnyvm/core"
	"github.com/sarchlab/bunnyvm/machine"
)

//go:embed clock.asmb
var clockProgram string

func main() {
	seed := flag.Int("a", 32, "initial value of register a")
	samples := flag.Int("samples", 16, "stop after this many transmitted values")
	ipc := flag.Int("ipc", 1, "instructions per cycle")
	serve := flag.Bool("monitor", false, "start the akita monitoring server and keep running")
	flag.Parse()

	monitor := monitoring.NewMonitor()

	engine := sim.NewSerialEngine()
	monitor.RegisterEngine(engine)

	it, err := core.NewBuilder().
		WithRegister("a", *seed).
		Build(clockProgram)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	m := machine.NewBuilder().
		WithEngine(engine).
		WithFreq(1*sim.GHz).
		WithInstsPerCycle(*ipc).
		WithOutputLimit(*samples).
		WithMonitor(monitor).
		Build("Machine", it)

	if *serve {
		monitor.StartServer()
	}

	if err := m.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	for _, s := range m.Samples() {
		fmt.Printf("cycle %6d  t=%.9fs  out %d\n", s.Cycle, float64(s.Time), s.Value)
	}
	fmt.Printf("%d cycles, %d instructions, virtual time %.9fs\n",
		m.Cycles(), it.Steps(), float64(engine.CurrentTime()))

	if *serve {
		time.Sleep(100 * time.Hour)
	}

	atexit.Exit(0)
}
