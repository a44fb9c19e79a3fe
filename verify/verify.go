// Package verify provides static and dynamic checks for bunnyvm programs.
//
// This package implements two complementary verification stages:
//
//  1. Static Lint (lint.go): structural and control-flow checks on the
//     program text as loaded
//     - STRUCT checks: literal destinations, empty programs
//     - FLOW checks: constant self-loops, never-taken jumps, constant jumps
//     and toggles that leave the program
//
//  2. Budgeted run (report.go): executes a clone of the program with the
//     caller's register presets and a step budget, so that a program that
//     never halts is reported instead of hanging the tool.
//
// # Why literal destinations are only warnings
//
// A cpy, inc or dec whose destination is a literal does nothing. The
// assembler accepts it because tgl can rewrite a jnz, whose second operand
// is usually a literal offset, into such a cpy. Lint flags the ones already
// present in the source since they are inert until toggled.
//
// # Usage Example
//
//	prog, err := core.LoadProgramFile("safe.asmb")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report := verify.GenerateReport(prog, map[string]int{"a": 7}, 1_000_000)
//	report.WriteReport(os.Stdout)
//	if !report.Passed() {
//	    os.Exit(1)
//	}
//
// # Limitations
//
//   - Jump and toggle targets are only checked when the offset is a literal;
//     register offsets depend on runtime values.
//   - Lint looks at the program as written; toggles can change every
//     instruction it checked.
package verify

// IssueType categorizes lint issues
type IssueType string

const (
	IssueStruct IssueType = "STRUCT" // Instruction shape (literal destination, empty program)
	IssueFlow   IssueType = "FLOW"   // Control flow (self-loop, dead jump, leaving the program)
)

// Severity ranks lint issues.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Issue represents a single lint issue
type Issue struct {
	Type     IssueType              // STRUCT or FLOW
	Severity Severity               // info, warning or error
	PC       int                    // Instruction index (-1 if not applicable)
	Inst     string                 // Instruction text, empty if not applicable
	Message  string                 // Human-readable description
	Details  map[string]interface{} // Additional structured data
}
