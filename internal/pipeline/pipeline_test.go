package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/binghamton-arch/apexsim/internal/isa"
	"github.com/binghamton-arch/apexsim/internal/pipeline"
	"github.com/binghamton-arch/apexsim/internal/state"
)

func r(i int) isa.Reg { return isa.Reg(i) }

func run(code []isa.Instruction) *pipeline.CPU {
	cpu := pipeline.New(code, state.NewMemory())
	cpu.Run(200, nil)
	return cpu
}

var _ = Describe("CPU", func() {
	It("executes MOVC and ADD, retiring every instruction", func() {
		code := []isa.Instruction{
			{Mnemonic: "MOVC", Op: isa.OpMOVC, Rd: r(1), Rs1: isa.NoReg, Rs2: isa.NoReg, Rs3: isa.NoReg, Imm: 5},
			{Mnemonic: "MOVC", Op: isa.OpMOVC, Rd: r(2), Rs1: isa.NoReg, Rs2: isa.NoReg, Rs3: isa.NoReg, Imm: 7},
			{Mnemonic: "ADD", Op: isa.OpADD, Rd: r(3), Rs1: r(1), Rs2: r(2), Rs3: isa.NoReg},
			{Mnemonic: "HALT", Op: isa.OpHALT, Rd: isa.NoReg, Rs1: isa.NoReg, Rs2: isa.NoReg, Rs3: isa.NoReg},
		}
		cpu := run(code)

		Expect(cpu.RegFile().Read(r(1))).To(Equal(int32(5)))
		Expect(cpu.RegFile().Read(r(2))).To(Equal(int32(7)))
		Expect(cpu.RegFile().Read(r(3))).To(Equal(int32(12)))
		stats := cpu.Stats()
		Expect(stats.Halted).To(BeTrue())
		Expect(stats.Retired).To(Equal(uint64(4)))
	})

	It("forwards a chain of ADDL results without stalling", func() {
		code := []isa.Instruction{
			{Mnemonic: "MOVC", Op: isa.OpMOVC, Rd: r(1), Rs1: isa.NoReg, Rs2: isa.NoReg, Rs3: isa.NoReg, Imm: 1},
			{Mnemonic: "ADDL", Op: isa.OpADDL, Rd: r(1), Rs1: r(1), Rs2: isa.NoReg, Rs3: isa.NoReg, Imm: 1},
			{Mnemonic: "ADDL", Op: isa.OpADDL, Rd: r(1), Rs1: r(1), Rs2: isa.NoReg, Rs3: isa.NoReg, Imm: 1},
			{Mnemonic: "ADDL", Op: isa.OpADDL, Rd: r(1), Rs1: r(1), Rs2: isa.NoReg, Rs3: isa.NoReg, Imm: 1},
			{Mnemonic: "HALT", Op: isa.OpHALT, Rd: isa.NoReg, Rs1: isa.NoReg, Rs2: isa.NoReg, Rs3: isa.NoReg},
		}
		cpu := run(code)

		Expect(cpu.RegFile().Read(r(1))).To(Equal(int32(4)))
		Expect(cpu.Stats().Retired).To(Equal(uint64(5)))
	})

	It("stalls one cycle on a load-use hazard instead of forwarding a stale EX value", func() {
		code := []isa.Instruction{
			{Mnemonic: "MOVC", Op: isa.OpMOVC, Rd: r(1), Rs1: isa.NoReg, Rs2: isa.NoReg, Rs3: isa.NoReg, Imm: 0},
			{Mnemonic: "LOAD", Op: isa.OpLOAD, Rd: r(2), Rs1: r(1), Rs2: isa.NoReg, Rs3: isa.NoReg, Imm: 10},
			{Mnemonic: "ADD", Op: isa.OpADD, Rd: r(3), Rs1: r(2), Rs2: r(2), Rs3: isa.NoReg},
			{Mnemonic: "HALT", Op: isa.OpHALT, Rd: isa.NoReg, Rs1: isa.NoReg, Rs2: isa.NoReg, Rs3: isa.NoReg},
		}
		mem := state.NewMemory()
		mem.Write(10, 41)
		cpu := pipeline.New(code, mem)
		cpu.Run(200, nil)

		Expect(cpu.RegFile().Read(r(2))).To(Equal(int32(41)))
		Expect(cpu.RegFile().Read(r(3))).To(Equal(int32(82)))
	})

	It("round-trips a value through STORE and LOAD", func() {
		code := []isa.Instruction{
			{Mnemonic: "MOVC", Op: isa.OpMOVC, Rd: r(1), Rs1: isa.NoReg, Rs2: isa.NoReg, Rs3: isa.NoReg, Imm: 99},
			{Mnemonic: "MOVC", Op: isa.OpMOVC, Rd: r(2), Rs1: isa.NoReg, Rs2: isa.NoReg, Rs3: isa.NoReg, Imm: 0},
			{Mnemonic: "STORE", Op: isa.OpSTORE, Rd: isa.NoReg, Rs1: r(1), Rs2: r(2), Rs3: isa.NoReg, Imm: 4},
			{Mnemonic: "LOAD", Op: isa.OpLOAD, Rd: r(3), Rs1: r(2), Rs2: isa.NoReg, Rs3: isa.NoReg, Imm: 4},
			{Mnemonic: "HALT", Op: isa.OpHALT, Rd: isa.NoReg, Rs1: isa.NoReg, Rs2: isa.NoReg, Rs3: isa.NoReg},
		}
		cpu := run(code)

		Expect(cpu.RegFile().Read(r(3))).To(Equal(int32(99)))
	})

	It("sets the zero flag and takes BZ, flushing the wrongly fetched instruction", func() {
		code := []isa.Instruction{
			{Mnemonic: "MOVC", Op: isa.OpMOVC, Rd: r(1), Rs1: isa.NoReg, Rs2: isa.NoReg, Rs3: isa.NoReg, Imm: 3},
			{Mnemonic: "SUB", Op: isa.OpSUB, Rd: r(2), Rs1: r(1), Rs2: r(1), Rs3: isa.NoReg},
			{Mnemonic: "BZ", Op: isa.OpBZ, Rd: isa.NoReg, Rs1: isa.NoReg, Rs2: isa.NoReg, Rs3: isa.NoReg, Imm: 8},
			{Mnemonic: "MOVC", Op: isa.OpMOVC, Rd: r(9), Rs1: isa.NoReg, Rs2: isa.NoReg, Rs3: isa.NoReg, Imm: 111},
			{Mnemonic: "MOVC", Op: isa.OpMOVC, Rd: r(4), Rs1: isa.NoReg, Rs2: isa.NoReg, Rs3: isa.NoReg, Imm: 77},
			{Mnemonic: "HALT", Op: isa.OpHALT, Rd: isa.NoReg, Rs1: isa.NoReg, Rs2: isa.NoReg, Rs3: isa.NoReg},
		}
		cpu := run(code)

		Expect(cpu.RegFile().Read(r(2))).To(Equal(int32(0)))
		Expect(cpu.RegFile().Read(r(9))).To(Equal(int32(0)))
		Expect(cpu.RegFile().Read(r(4))).To(Equal(int32(77)))
		Expect(cpu.Stats().Branches).To(Equal(uint64(1)))
		Expect(cpu.Stats().Flushes).To(Equal(uint64(1)))
	})

	It("does not take BNZ when the zero flag is set", func() {
		code := []isa.Instruction{
			{Mnemonic: "MOVC", Op: isa.OpMOVC, Rd: r(1), Rs1: isa.NoReg, Rs2: isa.NoReg, Rs3: isa.NoReg, Imm: 3},
			{Mnemonic: "SUB", Op: isa.OpSUB, Rd: r(2), Rs1: r(1), Rs2: r(1), Rs3: isa.NoReg},
			{Mnemonic: "BNZ", Op: isa.OpBNZ, Rd: isa.NoReg, Rs1: isa.NoReg, Rs2: isa.NoReg, Rs3: isa.NoReg, Imm: 12},
			{Mnemonic: "MOVC", Op: isa.OpMOVC, Rd: r(4), Rs1: isa.NoReg, Rs2: isa.NoReg, Rs3: isa.NoReg, Imm: 77},
			{Mnemonic: "HALT", Op: isa.OpHALT, Rd: isa.NoReg, Rs1: isa.NoReg, Rs2: isa.NoReg, Rs3: isa.NoReg},
		}
		cpu := run(code)

		Expect(cpu.RegFile().Read(r(4))).To(Equal(int32(77)))
		Expect(cpu.Stats().Branches).To(Equal(uint64(0)))
	})

	It("stops retiring once HALT reaches Execute", func() {
		code := []isa.Instruction{
			{Mnemonic: "HALT", Op: isa.OpHALT, Rd: isa.NoReg, Rs1: isa.NoReg, Rs2: isa.NoReg, Rs3: isa.NoReg},
			{Mnemonic: "MOVC", Op: isa.OpMOVC, Rd: r(1), Rs1: isa.NoReg, Rs2: isa.NoReg, Rs3: isa.NoReg, Imm: 123},
		}
		cpu := run(code)

		Expect(cpu.RegFile().Read(r(1))).To(Equal(int32(0)))
		Expect(cpu.Stats().Halted).To(BeTrue())
	})
})
