// Package trace formats per-cycle pipeline state and end-of-run dumps the
// way original_source/apex_cpu.c's print_stage_content, printregstate, and
// printdatamemory do, reproduced in idiomatic Go string building instead
// of inline printf calls.
package trace

import (
	"fmt"
	"io"

	"github.com/binghamton-arch/apexsim/internal/isa"
	"github.com/binghamton-arch/apexsim/internal/pipeline"
	"github.com/binghamton-arch/apexsim/internal/state"
)

// These stage labels match original_source/apex_cpu.c's print_stage_content
// call sites, trimmed of the decorative dashes that only padded C's fixed
// printf width.
const (
	stageWriteback = "Writeback"
	stageMemory    = "Memory"
	stageExecute   = "Execute"
	stageDecode    = "Decode/RF"
	stageFetch     = "Fetch"
)

// WriteCycle writes one cycle's header and five stage lines, in
// Writeback, Memory, Execute, Decode, Fetch order — the engine's actual
// tick order (SPEC_FULL.md §6.3).
func WriteCycle(w io.Writer, cycle uint64, cpu *pipeline.CPU) {
	fmt.Fprintf(w, "Clock Cycle #: %d\n", cycle)

	wb, mem, ex, dec, fe := cpu.StageSnapshot()
	writeStage(w, stageWriteback, wb)
	writeStage(w, stageMemory, mem)
	writeStage(w, stageExecute, ex)
	writeStage(w, stageDecode, dec)
	writeStage(w, stageFetch, fe)
}

func writeStage(w io.Writer, name string, l pipeline.Latch) {
	if !l.HasInsn {
		fmt.Fprintf(w, "Instruction at %s: empty\n", name)
		return
	}
	fmt.Fprintf(w, "Instruction at %s: pc(%d) %s\n", name, l.PC, formatOperands(l))
}

// formatOperands reproduces print_instruction's per-opcode operand
// ordering from original_source/apex_cpu.c.
func formatOperands(l pipeline.Latch) string {
	switch l.Op {
	case isa.OpADD, isa.OpSUB, isa.OpMUL, isa.OpDIV, isa.OpAND, isa.OpOR, isa.OpXOR, isa.OpLDR:
		return fmt.Sprintf("%s,R%d,R%d,R%d", l.Mnemonic, l.Rd, l.Rs1, l.Rs2)
	case isa.OpSTR:
		return fmt.Sprintf("%s,R%d,R%d,R%d", l.Mnemonic, l.Rs1, l.Rs2, l.Rs3)
	case isa.OpMOVC:
		return fmt.Sprintf("%s,R%d,#%d", l.Mnemonic, l.Rd, l.Imm)
	case isa.OpADDL, isa.OpSUBL, isa.OpLOAD:
		return fmt.Sprintf("%s,R%d,R%d,#%d", l.Mnemonic, l.Rd, l.Rs1, l.Imm)
	case isa.OpCMP:
		return fmt.Sprintf("%s,R%d,R%d", l.Mnemonic, l.Rs1, l.Rs2)
	case isa.OpSTORE:
		return fmt.Sprintf("%s,R%d,R%d,#%d", l.Mnemonic, l.Rs1, l.Rs2, l.Imm)
	case isa.OpBZ, isa.OpBNZ:
		return fmt.Sprintf("%s,#%d", l.Mnemonic, l.Imm)
	default:
		return l.Mnemonic
	}
}

// WriteRegisterFile reproduces printregstate: the 16 architectural
// registers with value and validity status.
func WriteRegisterFile(w io.Writer, rf *state.RegFile) {
	fmt.Fprintln(w, "=============== STATE OF ARCHITECTURAL REGISTER FILE ==========")
	values, valid := rf.Snapshot(isa.NumArchRegs)
	for i, v := range values {
		status := "INVALID"
		if valid[i] {
			status = "VALID"
		}
		fmt.Fprintf(w, "|    REG[%d] |       Value=%d  |       STATUS=%s   |\n", i, v, status)
	}
}

// dataMemoryDumpWords is the word count printregstate's sibling,
// printdatamemory, dumps — the first 100 words of data memory.
const dataMemoryDumpWords = 100

// WriteDataMemory reproduces printdatamemory: the first 100 words of
// data memory.
func WriteDataMemory(w io.Writer, mem *state.Memory) {
	fmt.Fprintln(w, "============== STATE OF DATA MEMORY =============")
	for i, v := range mem.Dump(dataMemoryDumpWords) {
		fmt.Fprintf(w, "|           MEM[%d]       |     Data  Value=%d        |\n", i, v)
	}
}

// WriteStats reproduces APEX_cpu_run's closing "cycles = %d instructions
// = %d" line.
func WriteStats(w io.Writer, stats pipeline.Stats) {
	fmt.Fprintf(w, "cycles = %d instructions = %d\n", stats.Cycles, stats.Retired)
}
