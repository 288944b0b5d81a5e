package mips

import (
	"fmt"
)

// Field layout. Both MakeCode* and Decode use these; there is no other
// description of the bit positions.
const (
	OPCODE_SHIFT = 26
	RS_SHIFT     = 21
	RT_SHIFT     = 16
	RD_SHIFT     = 11
	SHAMT_SHIFT  = 6
	FUNCT_SHIFT  = 0

	OPCODE_BITS    = 6
	REGISTER_BITS  = 5
	SHAMT_BITS     = 5
	FUNCT_BITS     = 6
	IMMEDIATE_BITS = 16
	ADDRESS_BITS   = 26

	OPCODE_MASK    = (1 << OPCODE_BITS) - 1
	REGISTER_MASK  = (1 << REGISTER_BITS) - 1
	SHAMT_MASK     = (1 << SHAMT_BITS) - 1
	FUNCT_MASK     = (1 << FUNCT_BITS) - 1
	IMMEDIATE_MASK = (1 << IMMEDIATE_BITS) - 1
	ADDRESS_MASK   = (1 << ADDRESS_BITS) - 1
)

// MakeCodeR creates an R-format instruction word.
func MakeCodeR(opcode uint8, rs, rt, rd Register, shamt uint8, funct uint8) uint32 {
	return (uint32(opcode)&OPCODE_MASK)<<OPCODE_SHIFT |
		(uint32(rs)&REGISTER_MASK)<<RS_SHIFT |
		(uint32(rt)&REGISTER_MASK)<<RT_SHIFT |
		(uint32(rd)&REGISTER_MASK)<<RD_SHIFT |
		(uint32(shamt)&SHAMT_MASK)<<SHAMT_SHIFT |
		(uint32(funct)&FUNCT_MASK)<<FUNCT_SHIFT
}

// MakeCodeI creates an I-format instruction word.
func MakeCodeI(opcode uint8, rs, rt Register, imm uint16) uint32 {
	return (uint32(opcode)&OPCODE_MASK)<<OPCODE_SHIFT |
		(uint32(rs)&REGISTER_MASK)<<RS_SHIFT |
		(uint32(rt)&REGISTER_MASK)<<RT_SHIFT |
		uint32(imm)&IMMEDIATE_MASK
}

// MakeCodeJ creates a J-format instruction word.
func MakeCodeJ(opcode uint8, address uint32) uint32 {
	return (uint32(opcode)&OPCODE_MASK)<<OPCODE_SHIFT |
		address&ADDRESS_MASK
}

// Classify returns the format of an instruction word from its opcode.
func Classify(word uint32) Format {
	switch (word >> OPCODE_SHIFT) & OPCODE_MASK {
	case OP_SPECIAL:
		return FORMAT_R
	case OP_J, OP_JAL:
		return FORMAT_J
	}

	return FORMAT_I
}

// Decoded holds the fields recovered from an instruction word.
// Only the fields of the word's format are set.
type Decoded struct {
	Word      uint32
	Format    Format
	Opcode    uint8
	Rs        Register
	Rt        Register
	Rd        Register
	Shamt     uint8
	Funct     uint8
	Immediate uint16
	Address   uint32
}

// Decode splits an instruction word into its fields.
func Decode(word uint32) (dec Decoded) {
	dec = Decoded{
		Word:   word,
		Format: Classify(word),
		Opcode: uint8((word >> OPCODE_SHIFT) & OPCODE_MASK),
	}

	switch dec.Format {
	case FORMAT_R:
		dec.Rs = Register((word >> RS_SHIFT) & REGISTER_MASK)
		dec.Rt = Register((word >> RT_SHIFT) & REGISTER_MASK)
		dec.Rd = Register((word >> RD_SHIFT) & REGISTER_MASK)
		dec.Shamt = uint8((word >> SHAMT_SHIFT) & SHAMT_MASK)
		dec.Funct = uint8((word >> FUNCT_SHIFT) & FUNCT_MASK)
	case FORMAT_I:
		dec.Rs = Register((word >> RS_SHIFT) & REGISTER_MASK)
		dec.Rt = Register((word >> RT_SHIFT) & REGISTER_MASK)
		dec.Immediate = uint16(word & IMMEDIATE_MASK)
	case FORMAT_J:
		dec.Address = word & ADDRESS_MASK
	}

	return
}

// Instruction looks up the table entry matching the decoded opcode and
// function code.
func (dec Decoded) Instruction() (inst Instruction, ok bool) {
	return LookupCode(dec.Opcode, dec.Funct)
}

// SignedImmediate returns the immediate field sign extended to 32 bits.
func (dec Decoded) SignedImmediate() int32 {
	return int32(int16(dec.Immediate))
}

// String returns the assembly language form of the decoded word.
// Words that match no instruction are shown as a .word directive.
func (dec Decoded) String() string {
	inst, ok := dec.Instruction()
	if !ok {
		return fmt.Sprintf(".word 0x%08x", dec.Word)
	}

	imm := int64(dec.SignedImmediate())
	if inst.ZeroExtend {
		imm = int64(dec.Immediate)
	}

	switch inst.Operands {
	case OPERANDS_RD_RS_RT:
		return fmt.Sprintf("%v %v, %v, %v", inst.Name, dec.Rd, dec.Rs, dec.Rt)
	case OPERANDS_RS_RT:
		return fmt.Sprintf("%v %v, %v", inst.Name, dec.Rs, dec.Rt)
	case OPERANDS_RD_RT_SHAMT:
		return fmt.Sprintf("%v %v, %v, %v", inst.Name, dec.Rd, dec.Rt, dec.Shamt)
	case OPERANDS_RS:
		return fmt.Sprintf("%v %v", inst.Name, dec.Rs)
	case OPERANDS_RT_RS_IMM, OPERANDS_RT_RS_BRANCH:
		return fmt.Sprintf("%v %v, %v, %v", inst.Name, dec.Rt, dec.Rs, imm)
	case OPERANDS_RT_OFFSET_RS:
		return fmt.Sprintf("%v %v, %v(%v)", inst.Name, dec.Rt, imm, dec.Rs)
	case OPERANDS_TARGET:
		return fmt.Sprintf("%v %v", inst.Name, dec.Address)
	}

	panic("unknown operand pattern")
}
