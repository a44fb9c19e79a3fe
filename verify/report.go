package verify

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/exp/maps"

	"github.com/sarchlab/bunnyvm/core"
)

// maxReportedOutputs caps how many transmitted values a report keeps.
const maxReportedOutputs = 32

// Report represents a complete verification report
type Report struct {
	Program      core.Program
	Presets      map[string]int
	MaxSteps     uint64
	LintIssues   []Issue
	StructIssues []Issue
	FlowIssues   []Issue

	SimulationErr error
	SimulationOK  bool
	Steps         uint64
	Halted        bool
	FinalPC       int
	Registers     core.RegisterFile
	Outputs       []int
}

// GenerateReport runs both lint and a budgeted run of prog, returns a
// report. Presets are applied to the registers before the run. A maxSteps
// of zero runs without a budget.
func GenerateReport(prog core.Program, presets map[string]int, maxSteps uint64) *Report {
	report := &Report{
		Program:  prog,
		Presets:  presets,
		MaxSteps: maxSteps,
	}

	// Run lint
	report.LintIssues = RunLint(prog)

	// Categorize issues
	for _, issue := range report.LintIssues {
		if issue.Type == IssueStruct {
			report.StructIssues = append(report.StructIssues, issue)
		} else {
			report.FlowIssues = append(report.FlowIssues, issue)
		}
	}

	report.SimulationErr = report.simulate()
	report.SimulationOK = report.SimulationErr == nil && report.Halted

	return report
}

func (r *Report) simulate() error {
	it := core.NewFromProgram(r.Program)
	it.SetStepBudget(r.MaxSteps)

	names := maps.Keys(r.Presets)
	slices.Sort(names)
	for _, name := range names {
		if err := it.SetRegister(name, r.Presets[name]); err != nil {
			return fmt.Errorf("preset: %w", err)
		}
	}

	err := it.Execute()

	r.Steps = it.Steps()
	r.Halted = it.IsHalted()
	r.FinalPC = it.PC()
	r.Registers = it.Registers()
	for len(r.Outputs) < maxReportedOutputs {
		v, ok := it.NextOutput()
		if !ok {
			break
		}
		r.Outputs = append(r.Outputs, v)
	}

	return err
}

// Passed reports whether the program has no lint errors and halted within
// the step budget.
func (r *Report) Passed() bool {
	return r.SimulationOK && CountSeverity(r.LintIssues, SeverityError) == 0
}

// WriteReport writes a formatted report to a writer
func (r *Report) WriteReport(w io.Writer) {
	separator := strings.Repeat("=", 60)
	dash := strings.Repeat("-", 60)

	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, "PROGRAM VERIFICATION REPORT")
	fmt.Fprintln(w, separator)

	fmt.Fprintf(w, "\n✓ Loaded program with %d instructions\n", len(r.Program))
	if len(r.Presets) > 0 {
		names := maps.Keys(r.Presets)
		slices.Sort(names)
		for _, name := range names {
			fmt.Fprintf(w, "  - %s = %d\n", name, r.Presets[name])
		}
	}

	// STAGE 1: LINT
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "STAGE 1: STATIC LINT CHECKS")
	fmt.Fprintln(w, separator)

	if len(r.LintIssues) == 0 {
		fmt.Fprintln(w, "✓ No lint issues found!")
	} else {
		fmt.Fprintf(w, "⚠ Found %d lint issues:\n", len(r.LintIssues))
		writeIssues(w, dash, "STRUCT", r.StructIssues)
		writeIssues(w, dash, "FLOW", r.FlowIssues)
	}

	// STAGE 2: BUDGETED RUN
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "STAGE 2: BUDGETED RUN")
	fmt.Fprintln(w, separator)

	switch {
	case r.SimulationOK:
		fmt.Fprintf(w, "✓ Program halted after %d steps\n", r.Steps)
	case r.SimulationErr != nil:
		fmt.Fprintf(w, "⚠ Run error after %d steps: %v\n", r.Steps, r.SimulationErr)
	default:
		fmt.Fprintf(w, "⚠ Program stopped at PC %d without halting\n", r.FinalPC)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Register", "Value"})
	for reg := core.RegA; reg < core.NumRegisters; reg++ {
		t.AppendRow(table.Row{reg.String(), r.Registers.Get(reg)})
	}
	t.Render()

	if len(r.Outputs) > 0 {
		fmt.Fprintf(w, "Outputs: %v\n", r.Outputs)
	}

	// STAGE 3: SUMMARY
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "VERIFICATION SUMMARY")
	fmt.Fprintln(w, separator)

	fmt.Fprintf(w, "Lint Result: %d issues detected (%d STRUCT, %d FLOW, %d errors)\n",
		len(r.LintIssues), len(r.StructIssues), len(r.FlowIssues),
		CountSeverity(r.LintIssues, SeverityError))
	simStatus := "SUCCESS"
	if !r.SimulationOK {
		simStatus = "FAILED"
		if r.SimulationErr != nil {
			simStatus += ": " + r.SimulationErr.Error()
		}
	}
	fmt.Fprintf(w, "Run Result: %s\n", simStatus)

	if r.Passed() {
		fmt.Fprintln(w, "✓ PROGRAM PASSED ALL CHECKS")
	} else {
		fmt.Fprintln(w, "⚠ PROGRAM FAILED VERIFICATION")
	}

	fmt.Fprintln(w)
}

func writeIssues(w io.Writer, dash, title string, issues []Issue) {
	if len(issues) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%s ISSUES (%d):\n", title, len(issues))
	fmt.Fprintln(w, dash)
	for _, issue := range issues {
		if issue.PC < 0 {
			fmt.Fprintf(w, "  [%s] %s\n", issue.Severity, issue.Message)
			continue
		}
		fmt.Fprintf(w, "  [%s pc=%d %q] %s\n",
			issue.Severity, issue.PC, issue.Inst, issue.Message)
		if target, ok := issue.Details["target"]; ok {
			fmt.Fprintf(w, "    Target: %v\n", target)
		}
	}
}

// SaveReportToFile saves the report to a file
func (r *Report) SaveReportToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	r.WriteReport(file)
	return nil
}
