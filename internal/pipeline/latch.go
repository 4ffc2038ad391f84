package pipeline

import "github.com/binghamton-arch/apexsim/internal/isa"

// Latch is the uniform carrier between stages (spec.md §3). Every field is
// owned by the stage that holds it and is copied, never referenced, when
// an instruction advances to the next stage.
type Latch struct {
	PC int

	Mnemonic string
	Op       isa.Op
	Rd       isa.Reg
	Rs1      isa.Reg
	Rs2      isa.Reg
	Rs3      isa.Reg
	Imm      int32

	Rs1Value int32
	Rs2Value int32
	Rs3Value int32

	ResultBuffer  int32
	MemoryAddress int32

	HasInsn bool
	Stalled bool
}

// Clear empties the latch. A cleared latch must not influence downstream
// state (spec.md §3 invariant 6).
func (l *Latch) Clear() {
	*l = Latch{Rd: isa.NoReg, Rs1: isa.NoReg, Rs2: isa.NoReg, Rs3: isa.NoReg}
}

// fill populates a latch from an instruction record and its carrying PC.
// Used when Fetch reads code memory; later stages copy whole latches.
func fill(l *Latch, pc int, inst isa.Instruction) {
	l.PC = pc
	l.Mnemonic = inst.Mnemonic
	l.Op = inst.Op
	l.Rd = inst.Rd
	l.Rs1 = inst.Rs1
	l.Rs2 = inst.Rs2
	l.Rs3 = inst.Rs3
	l.Imm = inst.Imm
	l.HasInsn = true
}
