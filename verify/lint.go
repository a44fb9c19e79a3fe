package verify

import (
	"fmt"

	"github.com/sarchlab/bunnyvm/core"
)

// RunLint performs static lint checks on a program.
// It validates instruction shape (STRUCT) and constant control flow (FLOW).
// Returns a list of issues found, or empty list if no issues.
func RunLint(prog core.Program) []Issue {
	var issues []Issue

	if len(prog) == 0 {
		return append(issues, Issue{
			Type:     IssueStruct,
			Severity: SeverityWarning,
			PC:       -1,
			Message:  "Program is empty and halts immediately",
		})
	}

	for pc, inst := range prog {
		switch inst.Opcode {
		case core.OpCpy:
			issues = appendLiteralDst(issues, pc, inst, inst.Operands[1])
		case core.OpInc, core.OpDec:
			issues = appendLiteralDst(issues, pc, inst, inst.Operands[0])
		case core.OpJnz:
			issues = appendJnzIssues(issues, pc, inst, len(prog))
		case core.OpTgl:
			issues = appendTglIssues(issues, pc, inst, len(prog))
		}
	}

	return issues
}

func appendLiteralDst(issues []Issue, pc int, inst core.Instruction, dst core.Operand) []Issue {
	if !dst.IsImm() {
		return issues
	}

	return append(issues, Issue{
		Type:     IssueStruct,
		Severity: SeverityWarning,
		PC:       pc,
		Inst:     inst.String(),
		Message:  fmt.Sprintf("Destination %s is a literal; instruction is inert unless toggled", dst),
		Details:  map[string]interface{}{"dst": dst.Imm},
	})
}

func appendJnzIssues(issues []Issue, pc int, inst core.Instruction, n int) []Issue {
	cond, offset := inst.Operands[0], inst.Operands[1]

	if cond.IsImm() && cond.Imm == 0 {
		return append(issues, Issue{
			Type:     IssueFlow,
			Severity: SeverityInfo,
			PC:       pc,
			Inst:     inst.String(),
			Message:  "Condition is the literal 0; jump is never taken",
		})
	}

	if !offset.IsImm() {
		return issues
	}

	if offset.Imm == 0 && cond.IsImm() {
		return append(issues, Issue{
			Type:     IssueFlow,
			Severity: SeverityError,
			PC:       pc,
			Inst:     inst.String(),
			Message:  "Unconditional jump to itself; program never halts once here",
		})
	}

	if offset.Imm < -pc || offset.Imm >= n-pc {
		issues = append(issues, Issue{
			Type:     IssueFlow,
			Severity: SeverityInfo,
			PC:       pc,
			Inst:     inst.String(),
			Message:  fmt.Sprintf("Jump leaves the program of %d instructions; taking it halts", n),
			Details:  map[string]interface{}{"target": int64(pc) + int64(offset.Imm)},
		})
	}

	return issues
}

func appendTglIssues(issues []Issue, pc int, inst core.Instruction, n int) []Issue {
	offset := inst.Operands[0]
	if !offset.IsImm() {
		return issues
	}

	if offset.Imm < -pc || offset.Imm >= n-pc {
		issues = append(issues, Issue{
			Type:     IssueFlow,
			Severity: SeverityInfo,
			PC:       pc,
			Inst:     inst.String(),
			Message:  "Toggle target is outside the program; instruction does nothing",
			Details:  map[string]interface{}{"target": int64(pc) + int64(offset.Imm)},
		})
	}

	return issues
}

// CountSeverity counts the issues at or above min.
func CountSeverity(issues []Issue, min Severity) int {
	n := 0
	for _, issue := range issues {
		if issue.Severity >= min {
			n++
		}
	}
	return n
}
