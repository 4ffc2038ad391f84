package pipeline

import (
	"github.com/binghamton-arch/apexsim/internal/isa"
	"github.com/binghamton-arch/apexsim/internal/state"
)

// CodeBaseAddress is the first instruction address (spec.md §6).
const CodeBaseAddress = 4000

// InstructionStride is the byte distance between instructions.
const InstructionStride = 4

// codeIndex converts a PC into a code-memory slot index.
func codeIndex(pc int) int {
	return (pc - CodeBaseAddress) / InstructionStride
}

// stepFetch implements spec.md §4.1.
func (c *CPU) stepFetch() {
	if !c.fetch.HasInsn {
		return
	}

	if c.fetch.Stalled {
		return
	}

	if c.fetchFromNextCycle {
		c.fetchFromNextCycle = false
		return
	}

	idx := codeIndex(c.pc)
	if c.pc%InstructionStride != 0 {
		fault(c.pc, "misaligned program counter")
	}
	if idx < 0 || idx >= len(c.code) {
		c.fetch.HasInsn = false
		return
	}

	fill(&c.fetch, c.pc, c.code[idx])

	if !c.decode.Stalled {
		c.pc += InstructionStride
		c.decode = c.fetch
	} else {
		c.fetch.Stalled = true
	}
}

// stepDecode implements spec.md §4.2: operand resolution in priority
// order (register file, then EX tap unless its producer is a load, then
// MEM tap), hazard-driven stalling, and the single-cycle forwarding-tap
// lifetime.
func (c *CPU) stepDecode() {
	// Reset before hazard checks, not after (spec.md §9 design note).
	c.decode.Stalled = false

	if !c.decode.HasInsn {
		return
	}

	shape := isa.ShapeOf(c.decode.Op)
	exIsLoad := isa.IsLoad(c.execute.Op)

	resolve := func(r isa.Reg) (int32, bool) {
		if c.regFile.IsValid(r) {
			return c.regFile.Read(r), true
		}
		return c.forward.resolve(r, exIsLoad)
	}

	ok := true
	var rs1v, rs2v, rs3v int32
	if shape.ReadsRs1 {
		rs1v, ok = resolve(c.decode.Rs1)
	}
	if ok && shape.ReadsRs2 {
		rs2v, ok = resolve(c.decode.Rs2)
	}
	if ok && shape.ReadsRs3 {
		rs3v, ok = resolve(c.decode.Rs3)
	}

	// Taps live for exactly one cycle; clear regardless of outcome.
	c.forward.clear()

	if !ok {
		c.decode.Stalled = true
		return
	}

	c.decode.Rs1Value = rs1v
	c.decode.Rs2Value = rs2v
	c.decode.Rs3Value = rs3v

	c.execute = c.decode
	c.decode.HasInsn = false
	c.fetch.Stalled = false
}

// stepExecute implements spec.md §4.3.
func (c *CPU) stepExecute() {
	if !c.execute.HasInsn {
		return
	}

	// The HALT check must happen before the latch is overwritten below
	// (spec.md §9 design note on the original's latent ordering bug).
	isHalt := c.execute.Op == isa.OpHALT

	if c.execute.Rd.Architectural() {
		c.regFile.MarkInFlight(c.execute.Rd)
	}

	switch c.execute.Op {
	case isa.OpADD:
		c.execute.ResultBuffer = c.execute.Rs1Value + c.execute.Rs2Value
	case isa.OpSUB:
		c.execute.ResultBuffer = c.execute.Rs1Value - c.execute.Rs2Value
	case isa.OpMUL:
		c.execute.ResultBuffer = c.execute.Rs1Value * c.execute.Rs2Value
	case isa.OpDIV:
		if c.execute.Rs2Value == 0 {
			fault(c.execute.PC, "division by zero")
		}
		c.execute.ResultBuffer = c.execute.Rs1Value / c.execute.Rs2Value
	case isa.OpAND:
		c.execute.ResultBuffer = c.execute.Rs1Value & c.execute.Rs2Value
	case isa.OpOR:
		c.execute.ResultBuffer = c.execute.Rs1Value | c.execute.Rs2Value
	case isa.OpXOR:
		c.execute.ResultBuffer = c.execute.Rs1Value ^ c.execute.Rs2Value
	case isa.OpADDL:
		c.execute.ResultBuffer = c.execute.Rs1Value + c.execute.Imm
	case isa.OpSUBL:
		c.execute.ResultBuffer = c.execute.Rs1Value - c.execute.Imm
	case isa.OpCMP:
		c.zeroFlag = (c.execute.Rs1Value - c.execute.Rs2Value) == 0
	case isa.OpMOVC:
		c.execute.ResultBuffer = c.execute.Imm
	case isa.OpLOAD:
		c.execute.MemoryAddress = c.execute.Rs1Value + c.execute.Imm
	case isa.OpLDR:
		c.execute.MemoryAddress = c.execute.Rs1Value + c.execute.Rs2Value
	case isa.OpSTORE:
		c.execute.MemoryAddress = c.execute.Rs2Value + c.execute.Imm
	case isa.OpSTR:
		c.execute.MemoryAddress = c.execute.Rs2Value + c.execute.Rs3Value
	case isa.OpBZ:
		if c.zeroFlag {
			c.takeBranch()
		}
	case isa.OpBNZ:
		if !c.zeroFlag {
			c.takeBranch()
		}
	case isa.OpHALT, isa.OpNOP:
		// No operation.
	}

	// Arithmetic/logical ops (not address computation, compare, or
	// control transfer) also set the zero flag from their result.
	switch c.execute.Op {
	case isa.OpADD, isa.OpSUB, isa.OpMUL, isa.OpDIV, isa.OpAND, isa.OpOR, isa.OpXOR, isa.OpADDL, isa.OpSUBL:
		c.zeroFlag = c.execute.ResultBuffer == 0
	}

	if c.execute.Rd.Architectural() {
		c.forward.publishEX(c.execute.Rd, c.execute.ResultBuffer)
	}

	c.memory = c.execute
	c.execute.HasInsn = false

	if isHalt {
		c.decode.HasInsn = false
		c.fetch.HasInsn = false
	}
}

// takeBranch redirects fetch to a new PC and flushes younger in-flight
// work (spec.md §4.3/§5).
func (c *CPU) takeBranch() {
	target := c.execute.PC + int(c.execute.Imm)
	if c.execute.Imm%InstructionStride != 0 || codeIndex(target) < 0 || codeIndex(target) >= len(c.code) {
		fault(c.execute.PC, "branch target pc(%d) misaligned or out of range", target)
	}

	c.pc = target
	c.fetchFromNextCycle = true
	c.decode.HasInsn = false
	c.fetch.HasInsn = true
	c.branches++
	c.flushes++
}

// stepMemory implements spec.md §4.4.
func (c *CPU) stepMemory(mem *state.Memory) {
	if !c.memory.HasInsn {
		return
	}

	switch {
	case isa.IsLoad(c.memory.Op):
		if !mem.InRange(c.memory.MemoryAddress) {
			fault(c.memory.PC, "data address %d out of range", c.memory.MemoryAddress)
		}
		c.memory.ResultBuffer = mem.Read(c.memory.MemoryAddress)
	case isa.IsStore(c.memory.Op):
		if !mem.InRange(c.memory.MemoryAddress) {
			fault(c.memory.PC, "data address %d out of range", c.memory.MemoryAddress)
		}
		mem.Write(c.memory.MemoryAddress, c.memory.Rs1Value)
	}

	if c.memory.Rd.Architectural() {
		c.forward.publishMEM(c.memory.Rd, c.memory.ResultBuffer)
	}

	c.writeback = c.memory
	c.memory.HasInsn = false
}

// stepWriteback implements spec.md §4.5. Returns true if the retiring
// instruction is HALT.
func (c *CPU) stepWriteback() bool {
	if !c.writeback.HasInsn {
		return false
	}

	shape := isa.ShapeOf(c.writeback.Op)
	if shape.Writes && c.writeback.Rd.Architectural() {
		c.regFile.Commit(c.writeback.Rd, c.writeback.ResultBuffer)
		// A younger producer of the same register that has already passed
		// Execute keeps the register in flight.
		if c.memory.HasInsn && c.memory.Rd == c.writeback.Rd {
			c.regFile.MarkInFlight(c.writeback.Rd)
		}
	}

	c.retired++
	halted := c.writeback.Op == isa.OpHALT
	c.writeback.HasInsn = false
	return halted
}
