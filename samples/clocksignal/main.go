package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/bunnyvm/config"
	"github.com/sarchlab/bunnyvm/core"
	"github.com/sarchlab/bunnyvm/search"
)

//go:embed clock.asmb
var clockProgram string

func main() {
	configPath := flag.String("config", "", "run configuration (TOML); its program replaces the built-in one")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			atexit.Exit(1)
		}
	}

	base, err := loadBase(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	atexit.Register(cancel)

	start := time.Now()
	opts := cfg.Search.Options()
	seed, err := search.ClockSignal(ctx, base, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	fmt.Printf("lowest %s producing a clock signal: %d (%v)\n",
		opts.Register, seed, time.Since(start))

	atexit.Exit(0)
}

func loadBase(cfg *config.RunConfig) (*core.Interpreter, error) {
	if cfg.Program != "" {
		return cfg.LoadInterpreter()
	}
	return cfg.Builder().Build(clockProgram)
}
