// Package pipeline implements the five-stage APEX engine: stage latches,
// the forwarding network, and the driver loop that ticks stages in the
// engine's real (reverse) invocation order.
package pipeline

import (
	"github.com/binghamton-arch/apexsim/internal/isa"
	"github.com/binghamton-arch/apexsim/internal/state"
)

// Stats summarizes a finished (or budget-exhausted) run, matching the
// "cycles = %d instructions = %d" line original_source/apex_cpu.c prints
// from APEX_cpu_run.
type Stats struct {
	Cycles   uint64
	Retired  uint64
	Branches uint64
	Flushes  uint64
	Halted   bool
}

// CPU is one APEX pipeline instance: five stage latches, the forwarding
// network, and the architectural state the stages mutate (spec.md §3).
type CPU struct {
	fetch, decode, execute, memory, writeback Latch

	regFile *state.RegFile
	memDev  *state.Memory
	forward ForwardingNetwork

	code []isa.Instruction
	pc   int

	cycle    uint64
	retired  uint64
	branches uint64
	flushes  uint64

	zeroFlag           bool
	fetchFromNextCycle bool
	halted             bool
}

// New returns a CPU ready to run code, with the first instruction fetched
// starting at CodeBaseAddress.
func New(code []isa.Instruction, mem *state.Memory) *CPU {
	c := &CPU{
		regFile: state.NewRegFile(),
		memDev:  mem,
		code:    code,
		pc:      CodeBaseAddress,
	}
	c.fetch.Clear()
	c.decode.Clear()
	c.execute.Clear()
	c.memory.Clear()
	c.writeback.Clear()
	c.forward.clear()
	if len(code) > 0 {
		c.fetch.HasInsn = true
	}
	return c
}

// RegFile exposes the architectural register file for tracing.
func (c *CPU) RegFile() *state.RegFile { return c.regFile }

// Memory exposes data memory for tracing.
func (c *CPU) Memory() *state.Memory { return c.memDev }

// Halted reports whether HALT has retired.
func (c *CPU) Halted() bool { return c.halted }

// Stats snapshots the run counters accumulated so far.
func (c *CPU) Stats() Stats {
	return Stats{
		Cycles:   c.cycle,
		Retired:  c.retired,
		Branches: c.branches,
		Flushes:  c.flushes,
		Halted:   c.halted,
	}
}

// StageSnapshot exposes a copy of each stage's latch for tracing, in the
// order they will be printed: Writeback, Memory, Execute, Decode, Fetch
// (spec.md §6.3 / SPEC_FULL.md §6.3).
func (c *CPU) StageSnapshot() (wb, mem, ex, dec, fe Latch) {
	return c.writeback, c.memory, c.execute, c.decode, c.fetch
}

// Tick advances the pipeline by one cycle. Stages run in the engine's
// real dependency order — Writeback, Memory, Execute, Decode, Fetch — so
// that a stage always sees last cycle's state in the stage ahead of it
// before that stage overwrites its own latch this cycle (spec.md §4.6).
func (c *CPU) Tick() {
	if halted := c.stepWriteback(); halted {
		c.halted = true
	}
	c.stepMemory(c.memDev)
	c.stepExecute()
	c.stepDecode()
	c.stepFetch()
	c.cycle++
}

// Drained reports whether the pipeline has nothing left in flight and
// nothing left to fetch — the natural end of a program that falls off
// the end of code memory instead of executing HALT.
func (c *CPU) Drained() bool {
	return !c.fetch.HasInsn && !c.decode.HasInsn && !c.execute.HasInsn &&
		!c.memory.HasInsn && !c.writeback.HasInsn
}

// Run ticks the pipeline until HALT retires, the pipeline drains, or
// maxCycles is reached (0 means unbounded). onCycle, if non-nil, runs
// after every tick and receives the cycle just completed — the display
// mode trace hook.
func (c *CPU) Run(maxCycles uint64, onCycle func(cpu *CPU, cycle uint64)) Stats {
	for maxCycles == 0 || c.cycle < maxCycles {
		c.Tick()
		if onCycle != nil {
			onCycle(c, c.cycle)
		}
		if c.halted || c.Drained() {
			break
		}
	}
	return c.Stats()
}
