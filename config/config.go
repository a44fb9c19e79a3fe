// Package config loads run configurations for bunnyvm programs.
//
// A run configuration is a TOML file:
//
//	program = "safe.asmb"
//	step_budget = 100000000
//	trace = false
//
//	[registers]
//	a = 7
//
//	[machine]
//	freq_mhz = 1000
//	insts_per_cycle = 1
//	output_limit = 0
//
//	[search]
//	register = "a"
//	start = 1
//	limit = 100000
//	target_length = 50
//	workers = 8
//	batch = 64
//	trial_budget = 1000000
//
// Relative program paths are resolved against the directory of the
// configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
	"golang.org/x/exp/maps"

	"github.com/sarchlab/bunnyvm/core"
)

// RunConfig describes how to run one program.
type RunConfig struct {
	Program    string         `toml:"program"`
	StepBudget uint64         `toml:"step_budget"`
	Trace      bool           `toml:"trace"`
	Registers  map[string]int `toml:"registers"`
	Machine    MachineConfig  `toml:"machine"`
	Search     SearchConfig   `toml:"search"`

	// Dir is the directory containing the configuration file (set at load time).
	Dir string `toml:"-"`
}

// MachineConfig sets up the clocked machine.
type MachineConfig struct {
	FreqMHz       float64 `toml:"freq_mhz"`
	InstsPerCycle int     `toml:"insts_per_cycle"`
	OutputLimit   int     `toml:"output_limit"`
}

// SearchConfig sets up seed searches.
type SearchConfig struct {
	Register     string `toml:"register"`
	Start        int    `toml:"start"`
	Limit        int    `toml:"limit"`
	TargetLength int    `toml:"target_length"`
	Workers      int    `toml:"workers"`
	Batch        int    `toml:"batch"`
	TrialBudget  uint64 `toml:"trial_budget"`
}

// Default returns the configuration used when no file is given.
func Default() *RunConfig {
	return &RunConfig{
		Registers: map[string]int{},
		Machine: MachineConfig{
			FreqMHz:       1000,
			InstsPerCycle: 1,
		},
		Search: SearchConfig{
			Register:     "a",
			Start:        1,
			Limit:        1 << 20,
			TargetLength: 50,
			Workers:      8,
			Batch:        64,
			TrialBudget:  1 << 24,
		},
	}
}

// Load reads a configuration file on top of the defaults.
func Load(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes TOML configuration data on top of the defaults.
func Parse(data []byte) (*RunConfig, error) {
	cfg := Default()

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks register names and numeric ranges.
func (c *RunConfig) Validate() error {
	for name := range c.Registers {
		if _, err := core.ParseRegister(name); err != nil {
			return fmt.Errorf("registers: %w", err)
		}
	}

	if _, err := core.ParseRegister(c.Search.Register); err != nil {
		return fmt.Errorf("search: %w", err)
	}

	switch {
	case c.Machine.FreqMHz <= 0:
		return fmt.Errorf("machine: freq_mhz must be positive, got %v", c.Machine.FreqMHz)
	case c.Machine.InstsPerCycle < 1:
		return fmt.Errorf("machine: insts_per_cycle must be at least 1, got %d", c.Machine.InstsPerCycle)
	case c.Machine.OutputLimit < 0:
		return fmt.Errorf("machine: output_limit must not be negative, got %d", c.Machine.OutputLimit)
	case c.Search.Workers < 1:
		return fmt.Errorf("search: workers must be at least 1, got %d", c.Search.Workers)
	case c.Search.Batch < 1:
		return fmt.Errorf("search: batch must be at least 1, got %d", c.Search.Batch)
	case c.Search.Limit < 0:
		return fmt.Errorf("search: limit must not be negative, got %d", c.Search.Limit)
	}

	return nil
}

// ProgramPath resolves the program path against the configuration
// directory.
func (c *RunConfig) ProgramPath() string {
	if c.Program == "" || filepath.IsAbs(c.Program) || c.Dir == "" {
		return c.Program
	}
	return filepath.Join(c.Dir, c.Program)
}

// RegisterNames returns the preset register names in order.
func (c *RunConfig) RegisterNames() []string {
	names := maps.Keys(c.Registers)
	slices.Sort(names)
	return names
}

// Apply presets the configured registers and budget on it.
func (c *RunConfig) Apply(it *core.Interpreter) error {
	for _, name := range c.RegisterNames() {
		if err := it.SetRegister(name, c.Registers[name]); err != nil {
			return err
		}
	}

	it.SetStepBudget(c.StepBudget)

	return nil
}

// Builder returns an interpreter builder carrying this configuration.
func (c *RunConfig) Builder() core.Builder {
	b := core.NewBuilder().
		WithStepBudget(c.StepBudget).
		WithTrace(c.Trace)

	for _, name := range c.RegisterNames() {
		b = b.WithRegister(name, c.Registers[name])
	}

	return b
}

// LoadInterpreter loads the configured program and builds its interpreter.
func (c *RunConfig) LoadInterpreter() (*core.Interpreter, error) {
	if c.Program == "" {
		return nil, fmt.Errorf("no program configured")
	}

	prog, err := core.LoadProgramFile(c.ProgramPath())
	if err != nil {
		return nil, err
	}

	return c.Builder().BuildFromProgram(prog)
}
