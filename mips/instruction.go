package mips

import (
	"iter"
)

// Format is one of the three fixed 32-bit instruction layouts.
type Format int

//go:generate go tool stringer -linecomment -type=Format
const (
	FORMAT_R = Format(0) // R
	FORMAT_I = Format(1) // I
	FORMAT_J = Format(2) // J
)

// Operands is the assembly operand pattern of an instruction.
// Each pattern belongs to exactly one Format.
type Operands int

//go:generate go tool stringer -linecomment -type=Operands
const (
	OPERANDS_RD_RS_RT     = Operands(0) // rd, rs, rt
	OPERANDS_RS_RT        = Operands(1) // rs, rt
	OPERANDS_RD_RT_SHAMT  = Operands(2) // rd, rt, shamt
	OPERANDS_RS           = Operands(3) // rs
	OPERANDS_RT_RS_IMM    = Operands(4) // rt, rs, imm
	OPERANDS_RT_RS_BRANCH = Operands(5) // rt, rs, offset
	OPERANDS_RT_OFFSET_RS = Operands(6) // rt, offset(rs)
	OPERANDS_TARGET       = Operands(7) // target
)

// Format returns the instruction layout used by the operand pattern.
func (ops Operands) Format() Format {
	switch ops {
	case OPERANDS_RD_RS_RT, OPERANDS_RS_RT, OPERANDS_RD_RT_SHAMT, OPERANDS_RS:
		return FORMAT_R
	case OPERANDS_RT_RS_IMM, OPERANDS_RT_RS_BRANCH, OPERANDS_RT_OFFSET_RS:
		return FORMAT_I
	case OPERANDS_TARGET:
		return FORMAT_J
	}

	panic("unknown operand pattern")
}

// Count returns the number of operand words the pattern consumes.
func (ops Operands) Count() int {
	switch ops {
	case OPERANDS_RS, OPERANDS_TARGET:
		return 1
	case OPERANDS_RS_RT:
		return 2
	}

	return 3
}

// Numeric returns the word index (mnemonic is 0) of the numeric operand
// of the pattern, or -1 if the pattern only takes registers.
func (ops Operands) Numeric() int {
	switch ops {
	case OPERANDS_RD_RT_SHAMT, OPERANDS_RT_RS_IMM, OPERANDS_RT_RS_BRANCH:
		return 3
	case OPERANDS_RT_OFFSET_RS:
		return 2
	case OPERANDS_TARGET:
		return 1
	}

	return -1
}

// Opcodes
const (
	OP_SPECIAL = 0x00 // All R-format instructions.
	OP_J       = 0x02
	OP_JAL     = 0x03
	OP_BEQ     = 0x04
	OP_BNE     = 0x05
	OP_ADDI    = 0x08
	OP_SLTI    = 0x0a
	OP_ANDI    = 0x0c
	OP_ORI     = 0x0d
	OP_LW      = 0x23
	OP_SW      = 0x2b
)

// Function codes of OP_SPECIAL instructions.
const (
	FUNCT_SLL  = 0x00
	FUNCT_SRL  = 0x02
	FUNCT_JR   = 0x08
	FUNCT_MULT = 0x18
	FUNCT_DIV  = 0x1a
	FUNCT_ADD  = 0x20
	FUNCT_SUB  = 0x22
	FUNCT_AND  = 0x24
	FUNCT_OR   = 0x25
	FUNCT_XOR  = 0x26
	FUNCT_NOR  = 0x27
	FUNCT_SLT  = 0x2a
)

// Instruction describes the encoding of one mnemonic.
type Instruction struct {
	Name       string   // Mnemonic.
	Opcode     uint8    // 6-bit primary opcode.
	Funct      uint8    // 6-bit function code, R-format only.
	Operands   Operands // Operand pattern, which selects the format.
	ZeroExtend bool     // Immediate is zero extended, not sign extended.
}

// Format of the instruction.
func (inst Instruction) Format() Format {
	return inst.Operands.Format()
}

var instructionTable = [...]Instruction{
	{Name: "add", Opcode: OP_SPECIAL, Funct: FUNCT_ADD, Operands: OPERANDS_RD_RS_RT},
	{Name: "addi", Opcode: OP_ADDI, Operands: OPERANDS_RT_RS_IMM},
	{Name: "sub", Opcode: OP_SPECIAL, Funct: FUNCT_SUB, Operands: OPERANDS_RD_RS_RT},
	{Name: "mult", Opcode: OP_SPECIAL, Funct: FUNCT_MULT, Operands: OPERANDS_RS_RT},
	{Name: "div", Opcode: OP_SPECIAL, Funct: FUNCT_DIV, Operands: OPERANDS_RS_RT},
	{Name: "and", Opcode: OP_SPECIAL, Funct: FUNCT_AND, Operands: OPERANDS_RD_RS_RT},
	{Name: "andi", Opcode: OP_ANDI, Operands: OPERANDS_RT_RS_IMM, ZeroExtend: true},
	{Name: "or", Opcode: OP_SPECIAL, Funct: FUNCT_OR, Operands: OPERANDS_RD_RS_RT},
	{Name: "ori", Opcode: OP_ORI, Operands: OPERANDS_RT_RS_IMM, ZeroExtend: true},
	{Name: "xor", Opcode: OP_SPECIAL, Funct: FUNCT_XOR, Operands: OPERANDS_RD_RS_RT},
	{Name: "nor", Opcode: OP_SPECIAL, Funct: FUNCT_NOR, Operands: OPERANDS_RD_RS_RT},
	{Name: "slt", Opcode: OP_SPECIAL, Funct: FUNCT_SLT, Operands: OPERANDS_RD_RS_RT},
	{Name: "slti", Opcode: OP_SLTI, Operands: OPERANDS_RT_RS_IMM},
	{Name: "sll", Opcode: OP_SPECIAL, Funct: FUNCT_SLL, Operands: OPERANDS_RD_RT_SHAMT},
	{Name: "srl", Opcode: OP_SPECIAL, Funct: FUNCT_SRL, Operands: OPERANDS_RD_RT_SHAMT},
	{Name: "lw", Opcode: OP_LW, Operands: OPERANDS_RT_OFFSET_RS},
	{Name: "sw", Opcode: OP_SW, Operands: OPERANDS_RT_OFFSET_RS},
	{Name: "beq", Opcode: OP_BEQ, Operands: OPERANDS_RT_RS_BRANCH},
	{Name: "bne", Opcode: OP_BNE, Operands: OPERANDS_RT_RS_BRANCH},
	{Name: "j", Opcode: OP_J, Operands: OPERANDS_TARGET},
	{Name: "jr", Opcode: OP_SPECIAL, Funct: FUNCT_JR, Operands: OPERANDS_RS},
	{Name: "jal", Opcode: OP_JAL, Operands: OPERANDS_TARGET},
}

// instructionMap maps mnemonics to table entries.
var instructionMap = func() map[string]*Instruction {
	insts := make(map[string]*Instruction, len(instructionTable))
	for n := range instructionTable {
		inst := &instructionTable[n]
		insts[inst.Name] = inst
	}
	return insts
}()

// Instructions iterates over the instruction table in table order.
func Instructions() iter.Seq[Instruction] {
	return func(yield func(inst Instruction) bool) {
		for _, inst := range instructionTable {
			if !yield(inst) {
				return
			}
		}
	}
}

// Lookup finds an instruction by exact mnemonic.
func Lookup(name string) (inst Instruction, ok bool) {
	found, ok := instructionMap[name]
	if ok {
		inst = *found
	}
	return
}

// LookupCode finds an instruction by its opcode, and for R-format opcodes
// by its function code.
func LookupCode(opcode, funct uint8) (inst Instruction, ok bool) {
	for _, entry := range instructionTable {
		if entry.Opcode != opcode {
			continue
		}
		if entry.Format() == FORMAT_R && entry.Funct != funct {
			continue
		}
		inst = entry
		ok = true
		return
	}

	return
}
