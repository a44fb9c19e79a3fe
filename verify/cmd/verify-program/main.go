// Command verify-program lints a bunnyvm program and runs it under a step
// budget.
//
//	verify-program [-config run.toml] [-max-steps n] [-o report.txt] [program.asmb]
//
// The exit status is non-zero when lint finds an error or the program does
// not halt within the budget.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/bunnyvm/config"
	"github.com/sarchlab/bunnyvm/core"
	"github.com/sarchlab/bunnyvm/verify"
)

const defaultMaxSteps = 100_000_000

func main() {
	configPath := flag.String("config", "", "run configuration (TOML)")
	maxSteps := flag.Uint64("max-steps", 0, "step budget for the run (default: config step_budget, else 1e8)")
	reportPath := flag.String("o", "", "also write the report to this file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "verify-program: %v\n", err)
			atexit.Exit(2)
		}
	}

	if flag.NArg() > 0 {
		cfg.Program = flag.Arg(0)
		cfg.Dir = ""
	}
	if cfg.Program == "" {
		fmt.Fprintln(os.Stderr, "usage: verify-program [-config run.toml] [program.asmb]")
		atexit.Exit(2)
	}

	prog, err := core.LoadProgramFile(cfg.ProgramPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "verify-program: %v\n", err)
		atexit.Exit(2)
	}

	budget := *maxSteps
	if budget == 0 {
		budget = cfg.StepBudget
	}
	if budget == 0 {
		budget = defaultMaxSteps
	}

	report := verify.GenerateReport(prog, cfg.Registers, budget)
	report.WriteReport(os.Stdout)

	if *reportPath != "" {
		if err := report.SaveReportToFile(*reportPath); err != nil {
			fmt.Fprintf(os.Stderr, "verify-program: %v\n", err)
			atexit.Exit(2)
		}
	}

	if !report.Passed() {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
