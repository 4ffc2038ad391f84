package trace_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/binghamton-arch/apexsim/internal/isa"
	"github.com/binghamton-arch/apexsim/internal/pipeline"
	"github.com/binghamton-arch/apexsim/internal/state"
	"github.com/binghamton-arch/apexsim/internal/trace"
)

var _ = Describe("WriteCycle", func() {
	It("emits stage lines in Writeback, Memory, Execute, Decode, Fetch order", func() {
		code := []isa.Instruction{
			{Mnemonic: "MOVC", Op: isa.OpMOVC, Rd: isa.Reg(1), Rs1: isa.NoReg, Rs2: isa.NoReg, Rs3: isa.NoReg, Imm: 5},
			{Mnemonic: "HALT", Op: isa.OpHALT, Rd: isa.NoReg, Rs1: isa.NoReg, Rs2: isa.NoReg, Rs3: isa.NoReg},
		}
		cpu := pipeline.New(code, state.NewMemory())
		cpu.Tick()
		cpu.Tick()

		var b strings.Builder
		trace.WriteCycle(&b, 2, cpu)
		out := b.String()

		idxHeader := strings.Index(out, "Clock Cycle #: 2")
		idxWB := strings.Index(out, "Instruction at Writeback")
		idxMEM := strings.Index(out, "Instruction at Memory")
		idxEX := strings.Index(out, "Instruction at Execute")
		idxDEC := strings.Index(out, "Instruction at Decode/RF")
		idxFE := strings.Index(out, "Instruction at Fetch")

		Expect(idxHeader).To(BeNumerically(">=", 0))
		Expect(idxWB).To(BeNumerically("<", idxMEM))
		Expect(idxMEM).To(BeNumerically("<", idxEX))
		Expect(idxEX).To(BeNumerically("<", idxDEC))
		Expect(idxDEC).To(BeNumerically("<", idxFE))
	})

	It("prints empty for a latch with no instruction", func() {
		cpu := pipeline.New(nil, state.NewMemory())
		var b strings.Builder
		trace.WriteCycle(&b, 1, cpu)
		Expect(b.String()).To(ContainSubstring("Instruction at Writeback: empty"))
	})
})

var _ = Describe("WriteRegisterFile", func() {
	It("marks every register VALID before anything executes", func() {
		rf := state.NewRegFile()
		var b strings.Builder
		trace.WriteRegisterFile(&b, rf)
		Expect(b.String()).To(ContainSubstring("REG[0]"))
		Expect(b.String()).To(ContainSubstring("STATUS=VALID"))
		Expect(b.String()).NotTo(ContainSubstring("STATUS=INVALID"))
	})
})

var _ = Describe("WriteDataMemory", func() {
	It("dumps the first 100 words", func() {
		mem := state.NewMemory()
		mem.Write(3, 42)
		var b strings.Builder
		trace.WriteDataMemory(&b, mem)
		Expect(b.String()).To(ContainSubstring("MEM[3]"))
		Expect(b.String()).To(ContainSubstring("Value=42"))
	})
})
