package rv32

import (
	"fmt"
	"iter"
)

// Spec describes how one mnemonic is encoded.
type Spec struct {
	Mnemonic string
	Format   Format
	Opcode   uint8
	Funct3   uint8
	Funct7   uint8 // R-format, and the upper bits of I-format shifts.
	Shift    bool  // I-format with a 5-bit shift amount.
}

var specTable = [...]Spec{
	{Mnemonic: "add", Format: FORMAT_R, Opcode: OPCODE_OP, Funct3: 0b000},
	{Mnemonic: "sub", Format: FORMAT_R, Opcode: OPCODE_OP, Funct3: 0b000, Funct7: 0b0100000},
	{Mnemonic: "sll", Format: FORMAT_R, Opcode: OPCODE_OP, Funct3: 0b001},
	{Mnemonic: "slt", Format: FORMAT_R, Opcode: OPCODE_OP, Funct3: 0b010},
	{Mnemonic: "xor", Format: FORMAT_R, Opcode: OPCODE_OP, Funct3: 0b100},
	{Mnemonic: "srl", Format: FORMAT_R, Opcode: OPCODE_OP, Funct3: 0b101},
	{Mnemonic: "or", Format: FORMAT_R, Opcode: OPCODE_OP, Funct3: 0b110},
	{Mnemonic: "and", Format: FORMAT_R, Opcode: OPCODE_OP, Funct3: 0b111},
	{Mnemonic: "mul", Format: FORMAT_R, Opcode: OPCODE_OP, Funct3: 0b000, Funct7: 0b0000001},
	{Mnemonic: "mulh", Format: FORMAT_R, Opcode: OPCODE_OP, Funct3: 0b001, Funct7: 0b0000001},
	{Mnemonic: "div", Format: FORMAT_R, Opcode: OPCODE_OP, Funct3: 0b100, Funct7: 0b0000001},
	{Mnemonic: "rem", Format: FORMAT_R, Opcode: OPCODE_OP, Funct3: 0b110, Funct7: 0b0000001},
	{Mnemonic: "addi", Format: FORMAT_I, Opcode: OPCODE_OP_IMM, Funct3: 0b000},
	{Mnemonic: "slti", Format: FORMAT_I, Opcode: OPCODE_OP_IMM, Funct3: 0b010},
	{Mnemonic: "xori", Format: FORMAT_I, Opcode: OPCODE_OP_IMM, Funct3: 0b100},
	{Mnemonic: "ori", Format: FORMAT_I, Opcode: OPCODE_OP_IMM, Funct3: 0b110},
	{Mnemonic: "andi", Format: FORMAT_I, Opcode: OPCODE_OP_IMM, Funct3: 0b111},
	{Mnemonic: "slli", Format: FORMAT_I, Opcode: OPCODE_OP_IMM, Funct3: 0b001, Shift: true},
	{Mnemonic: "srli", Format: FORMAT_I, Opcode: OPCODE_OP_IMM, Funct3: 0b101, Shift: true},
	{Mnemonic: "lw", Format: FORMAT_I, Opcode: OPCODE_LOAD, Funct3: 0b010},
	{Mnemonic: "jalr", Format: FORMAT_I, Opcode: OPCODE_JALR, Funct3: 0b000},
	{Mnemonic: "sw", Format: FORMAT_S, Opcode: OPCODE_STORE, Funct3: 0b010},
	{Mnemonic: "beq", Format: FORMAT_B, Opcode: OPCODE_BRANCH, Funct3: 0b000},
	{Mnemonic: "bne", Format: FORMAT_B, Opcode: OPCODE_BRANCH, Funct3: 0b001},
	{Mnemonic: "lui", Format: FORMAT_U, Opcode: OPCODE_LUI},
	{Mnemonic: "jal", Format: FORMAT_J, Opcode: OPCODE_JAL},
}

var specMap = func() map[string]*Spec {
	specs := make(map[string]*Spec, len(specTable))
	for n := range specTable {
		specs[specTable[n].Mnemonic] = &specTable[n]
	}
	return specs
}()

// Specs iterates over the instruction table.
func Specs() iter.Seq[Spec] {
	return func(yield func(spec Spec) bool) {
		for _, spec := range specTable {
			if !yield(spec) {
				return
			}
		}
	}
}

// Lookup finds an instruction by mnemonic.
func Lookup(mnemonic string) (spec Spec, ok bool) {
	found, ok := specMap[mnemonic]
	if ok {
		spec = *found
	}
	return
}

// Instruction is one encoded RV32 instruction. Operand fields that the
// format does not use are zero.
type Instruction struct {
	Mnemonic string
	Format   Format
	Rd       Register
	Rs1      Register
	Rs2      Register
	Imm      int32
	Word     uint32
}

// check validates the immediate for the instruction.
func (spec Spec) check(imm int32) (err error) {
	fail := func(err error) error {
		return &ErrImmediate{Mnemonic: spec.Mnemonic, Value: int64(imm), Err: err}
	}

	switch spec.Format {
	case FORMAT_R:
		if imm != 0 {
			err = fail(ErrImmediateRange)
		}
	case FORMAT_I, FORMAT_S:
		if spec.Shift {
			if imm < 0 || imm > 31 {
				err = fail(ErrImmediateRange)
			}
		} else if !FitsSigned(int64(imm), 12) {
			err = fail(ErrImmediateRange)
		}
	case FORMAT_B:
		if !FitsSigned(int64(imm), 13) {
			err = fail(ErrImmediateRange)
		} else if imm&1 != 0 {
			err = fail(ErrImmediateAlign)
		}
	case FORMAT_U:
		if imm < 0 || imm > 0xfffff {
			err = fail(ErrImmediateRange)
		}
	case FORMAT_J:
		if !FitsSigned(int64(imm), 21) {
			err = fail(ErrImmediateRange)
		} else if imm&1 != 0 {
			err = fail(ErrImmediateAlign)
		}
	}

	return
}

// encode returns the word for the operands. Unused operands are ignored.
func (spec Spec) encode(rd, rs1, rs2 Register, imm int32) uint32 {
	switch spec.Format {
	case FORMAT_R:
		return EncodeR(spec.Opcode, rd, spec.Funct3, rs1, rs2, spec.Funct7)
	case FORMAT_I:
		if spec.Shift {
			imm = int32(spec.Funct7)<<5 | imm
		}
		return EncodeI(spec.Opcode, rd, spec.Funct3, rs1, imm)
	case FORMAT_S:
		return EncodeS(spec.Opcode, spec.Funct3, rs1, rs2, imm)
	case FORMAT_B:
		return EncodeB(spec.Opcode, spec.Funct3, rs1, rs2, imm)
	case FORMAT_U:
		return EncodeU(spec.Opcode, rd, imm)
	case FORMAT_J:
		return EncodeJ(spec.Opcode, rd, imm)
	}

	panic("unknown format")
}

// Build encodes an instruction. Operands the format does not use must be
// zero. Branch and jump immediates are byte offsets; the lui immediate is
// the 20-bit upper value.
func Build(mnemonic string, rd, rs1, rs2 Register, imm int32) (inst Instruction, err error) {
	spec, ok := Lookup(mnemonic)
	if !ok {
		err = fmt.Errorf("%w: %v", ErrMnemonicUnknown, mnemonic)
		return
	}

	err = spec.check(imm)
	if err != nil {
		return
	}

	switch spec.Format {
	case FORMAT_I:
		rs2 = 0
	case FORMAT_S, FORMAT_B:
		rd = 0
	case FORMAT_U, FORMAT_J:
		rs1, rs2 = 0, 0
	}

	inst = Instruction{
		Mnemonic: spec.Mnemonic,
		Format:   spec.Format,
		Rd:       rd,
		Rs1:      rs1,
		Rs2:      rs2,
		Imm:      imm,
		Word:     spec.encode(rd, rs1, rs2, imm),
	}

	return
}

// Decode recovers an instruction from a word, if the word is one of the
// table's instructions.
func Decode(word uint32) (inst Instruction, ok bool) {
	opcode := uint8(word & OPCODE_MASK)
	funct3 := uint8((word >> FUNCT3_SHIFT) & FUNCT3_MASK)
	funct7 := uint8((word >> FUNCT7_SHIFT) & FUNCT7_MASK)

	for spec := range Specs() {
		if spec.Opcode != opcode {
			continue
		}
		switch spec.Format {
		case FORMAT_R:
			if spec.Funct3 != funct3 || spec.Funct7 != funct7 {
				continue
			}
		case FORMAT_I, FORMAT_S, FORMAT_B:
			if spec.Funct3 != funct3 {
				continue
			}
			if spec.Shift && spec.Funct7 != funct7 {
				continue
			}
		}

		rd := Register((word >> RD_SHIFT) & REGISTER_MASK)
		rs1 := Register((word >> RS1_SHIFT) & REGISTER_MASK)
		rs2 := Register((word >> RS2_SHIFT) & REGISTER_MASK)
		imm := immediate(spec.Format, word)
		if spec.Shift {
			imm &= 0x1f
		}

		built, err := Build(spec.Mnemonic, rd, rs1, rs2, imm)
		if err != nil || built.Word != word {
			return
		}
		inst = built
		ok = true
		return
	}

	return
}

// String returns the assembly language form of the instruction.
func (inst Instruction) String() string {
	switch inst.Format {
	case FORMAT_R:
		return fmt.Sprintf("%v %v, %v, %v", inst.Mnemonic, inst.Rd, inst.Rs1, inst.Rs2)
	case FORMAT_I:
		if inst.Mnemonic == "lw" || inst.Mnemonic == "jalr" {
			return fmt.Sprintf("%v %v, %v(%v)", inst.Mnemonic, inst.Rd, inst.Imm, inst.Rs1)
		}
		return fmt.Sprintf("%v %v, %v, %v", inst.Mnemonic, inst.Rd, inst.Rs1, inst.Imm)
	case FORMAT_S:
		return fmt.Sprintf("%v %v, %v(%v)", inst.Mnemonic, inst.Rs2, inst.Imm, inst.Rs1)
	case FORMAT_B:
		return fmt.Sprintf("%v %v, %v, %v", inst.Mnemonic, inst.Rs1, inst.Rs2, inst.Imm)
	case FORMAT_U:
		return fmt.Sprintf("%v %v, 0x%x", inst.Mnemonic, inst.Rd, inst.Imm)
	case FORMAT_J:
		return fmt.Sprintf("%v %v, %v", inst.Mnemonic, inst.Rd, inst.Imm)
	}

	return fmt.Sprintf(".word 0x%08x", inst.Word)
}
