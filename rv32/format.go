package rv32

// Format is a base instruction layout.
type Format int

//go:generate go tool stringer -linecomment -type=Format
const (
	FORMAT_R = Format(0) // R
	FORMAT_I = Format(1) // I
	FORMAT_S = Format(2) // S
	FORMAT_B = Format(3) // B
	FORMAT_U = Format(4) // U
	FORMAT_J = Format(5) // J
)

// Major opcodes.
const (
	OPCODE_LOAD   = 0b0000011
	OPCODE_OP_IMM = 0b0010011
	OPCODE_STORE  = 0b0100011
	OPCODE_OP     = 0b0110011
	OPCODE_LUI    = 0b0110111
	OPCODE_BRANCH = 0b1100011
	OPCODE_JALR   = 0b1100111
	OPCODE_JAL    = 0b1101111
)

const (
	OPCODE_MASK   = 0x7f
	REGISTER_MASK = 0x1f
	FUNCT3_MASK   = 0x7
	FUNCT7_MASK   = 0x7f

	RD_SHIFT     = 7
	FUNCT3_SHIFT = 12
	RS1_SHIFT    = 15
	RS2_SHIFT    = 20
	FUNCT7_SHIFT = 25
)

func bits(value int32, hi, lo uint) uint32 {
	return (uint32(value) >> lo) & ((1 << (hi - lo + 1)) - 1)
}

// EncodeR creates a register-register word.
func EncodeR(opcode uint8, rd Register, funct3 uint8, rs1, rs2 Register, funct7 uint8) uint32 {
	return uint32(funct7&FUNCT7_MASK)<<FUNCT7_SHIFT |
		uint32(rs2&REGISTER_MASK)<<RS2_SHIFT |
		uint32(rs1&REGISTER_MASK)<<RS1_SHIFT |
		uint32(funct3&FUNCT3_MASK)<<FUNCT3_SHIFT |
		uint32(rd&REGISTER_MASK)<<RD_SHIFT |
		uint32(opcode&OPCODE_MASK)
}

// EncodeI creates a word with a 12-bit immediate.
func EncodeI(opcode uint8, rd Register, funct3 uint8, rs1 Register, imm int32) uint32 {
	return bits(imm, 11, 0)<<20 |
		uint32(rs1&REGISTER_MASK)<<RS1_SHIFT |
		uint32(funct3&FUNCT3_MASK)<<FUNCT3_SHIFT |
		uint32(rd&REGISTER_MASK)<<RD_SHIFT |
		uint32(opcode&OPCODE_MASK)
}

// EncodeS creates a store word.
func EncodeS(opcode uint8, funct3 uint8, rs1, rs2 Register, imm int32) uint32 {
	return bits(imm, 11, 5)<<25 |
		uint32(rs2&REGISTER_MASK)<<RS2_SHIFT |
		uint32(rs1&REGISTER_MASK)<<RS1_SHIFT |
		uint32(funct3&FUNCT3_MASK)<<FUNCT3_SHIFT |
		bits(imm, 4, 0)<<7 |
		uint32(opcode&OPCODE_MASK)
}

// EncodeB creates a conditional branch word. imm is a byte offset.
func EncodeB(opcode uint8, funct3 uint8, rs1, rs2 Register, imm int32) uint32 {
	return bits(imm, 12, 12)<<31 |
		bits(imm, 10, 5)<<25 |
		uint32(rs2&REGISTER_MASK)<<RS2_SHIFT |
		uint32(rs1&REGISTER_MASK)<<RS1_SHIFT |
		uint32(funct3&FUNCT3_MASK)<<FUNCT3_SHIFT |
		bits(imm, 4, 1)<<8 |
		bits(imm, 11, 11)<<7 |
		uint32(opcode&OPCODE_MASK)
}

// EncodeU creates an upper immediate word. imm is the 20-bit upper value.
func EncodeU(opcode uint8, rd Register, imm int32) uint32 {
	return bits(imm, 19, 0)<<12 |
		uint32(rd&REGISTER_MASK)<<RD_SHIFT |
		uint32(opcode&OPCODE_MASK)
}

// EncodeJ creates a jump word. imm is a byte offset.
func EncodeJ(opcode uint8, rd Register, imm int32) uint32 {
	return bits(imm, 20, 20)<<31 |
		bits(imm, 10, 1)<<21 |
		bits(imm, 11, 11)<<20 |
		bits(imm, 19, 12)<<12 |
		uint32(rd&REGISTER_MASK)<<RD_SHIFT |
		uint32(opcode&OPCODE_MASK)
}

// signExtend extends the low n bits of value.
func signExtend(value uint32, n uint) int32 {
	shift := 32 - n
	return int32(value<<shift) >> shift
}

// immediate recovers the immediate of a word in the given format.
func immediate(format Format, word uint32) int32 {
	switch format {
	case FORMAT_I:
		return signExtend(word>>20, 12)
	case FORMAT_S:
		return signExtend((word>>25)<<5|(word>>7)&0x1f, 12)
	case FORMAT_B:
		value := (word>>31)<<12 |
			((word>>7)&1)<<11 |
			((word>>25)&0x3f)<<5 |
			((word>>8)&0xf)<<1
		return signExtend(value, 13)
	case FORMAT_U:
		return int32(word >> 12)
	case FORMAT_J:
		value := (word>>31)<<20 |
			((word>>12)&0xff)<<12 |
			((word>>20)&1)<<11 |
			((word>>21)&0x3ff)<<1
		return signExtend(value, 21)
	}

	return 0
}

// FitsSigned returns true if value is representable in a two's complement
// field of n bits.
func FitsSigned(value int64, n uint) bool {
	limit := int64(1) << (n - 1)
	return value >= -limit && value < limit
}
