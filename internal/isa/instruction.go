package isa

// Instruction is a decoded, immutable APEX instruction record. It is
// created once by the assembler/loader and never mutated afterward;
// stage latches copy the fields they need out of it.
type Instruction struct {
	Mnemonic string
	Op       Op

	Rd  Reg
	Rs1 Reg
	Rs2 Reg
	Rs3 Reg

	Imm int32
}

// NOP is a ready-made zero-operand NOP instruction record with every
// register slot set to NoReg.
var NOP = Instruction{Mnemonic: "NOP", Op: OpNOP, Rd: NoReg, Rs1: NoReg, Rs2: NoReg, Rs3: NoReg}
