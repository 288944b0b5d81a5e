package engine

import (
	"fmt"

	"github.com/ezrec/vmachine/mips"
	"github.com/ezrec/vmachine/rv32"
)

// emitter collects the target instructions of one translation. The first
// error stops further emission.
type emitter struct {
	pc  uint32
	out []rv32.Instruction
	err error
}

func (em *emitter) fail(err error) {
	if em.err == nil {
		em.err = fmt.Errorf("%w: %w", ErrTranslationMismatch, err)
	}
}

// reg maps a MIPS register, failing if it has no target.
func (em *emitter) reg(reg mips.Register) rv32.Register {
	target, ok := MapRegister(reg)
	if !ok {
		em.fail(fmt.Errorf("%w: %v", ErrRegisterUnmapped, reg))
	}
	return target
}

// source maps a MIPS register that is read after the scratch register
// has been loaded.
func (em *emitter) source(reg mips.Register) rv32.Register {
	target := em.reg(reg)
	if target == REG_SCRATCH {
		em.fail(fmt.Errorf("%w: %v", ErrScratchRegister, reg))
	}
	return target
}

func (em *emitter) emit(mnemonic string, rd, rs1, rs2 rv32.Register, imm int64) {
	if em.err != nil {
		return
	}

	if imm < -(1<<31) || imm > (1<<31)-1 {
		em.fail(&rv32.ErrImmediate{Mnemonic: mnemonic, Value: imm, Err: rv32.ErrImmediateRange})
		return
	}

	inst, err := rv32.Build(mnemonic, rd, rs1, rs2, int32(imm))
	if err != nil {
		em.fail(err)
		return
	}

	em.out = append(em.out, inst)
}

// loadScratch loads a 32-bit constant into the scratch register.
func (em *emitter) loadScratch(value uint32) {
	lo := int32(value<<20) >> 20
	hi := (value - uint32(lo)) >> 12
	em.emit("lui", REG_SCRATCH, 0, 0, int64(hi))
	em.emit("addi", REG_SCRATCH, REG_SCRATCH, 0, int64(lo))
}

// rule emits the translation of one decoded MIPS instruction.
type rule func(em *emitter, dec mips.Decoded)

func sameR(mnemonic string) rule {
	return func(em *emitter, dec mips.Decoded) {
		em.emit(mnemonic, em.reg(dec.Rd), em.reg(dec.Rs), em.reg(dec.Rt), 0)
	}
}

func shift(mnemonic string) rule {
	return func(em *emitter, dec mips.Decoded) {
		em.emit(mnemonic, em.reg(dec.Rd), em.reg(dec.Rt), 0, int64(dec.Shamt))
	}
}

// pair writes the two halves of a multiply or divide into HI and LO.
func pair(first string, firstRd rv32.Register, second string, secondRd rv32.Register) rule {
	return func(em *emitter, dec mips.Decoded) {
		rs, rt := em.reg(dec.Rs), em.reg(dec.Rt)
		em.emit(first, firstRd, rs, rt, 0)
		em.emit(second, secondRd, rs, rt, 0)
	}
}

// signedImm uses the immediate form when the sign extended value fits in
// 12 bits, and the register form through the scratch register otherwise.
func signedImm(immOp, regOp string) rule {
	return func(em *emitter, dec mips.Decoded) {
		imm := dec.SignedImmediate()
		rt := em.reg(dec.Rt)
		if rv32.FitsSigned(int64(imm), 12) {
			em.emit(immOp, rt, em.reg(dec.Rs), 0, int64(imm))
			return
		}
		rs := em.source(dec.Rs)
		em.loadScratch(uint32(imm))
		em.emit(regOp, rt, rs, REG_SCRATCH, 0)
	}
}

// unsignedImm is signedImm for zero extended immediates.
func unsignedImm(immOp, regOp string) rule {
	return func(em *emitter, dec mips.Decoded) {
		imm := uint32(dec.Immediate)
		rt := em.reg(dec.Rt)
		if imm <= 2047 {
			em.emit(immOp, rt, em.reg(dec.Rs), 0, int64(imm))
			return
		}
		rs := em.source(dec.Rs)
		em.loadScratch(imm)
		em.emit(regOp, rt, rs, REG_SCRATCH, 0)
	}
}

// branch offsets are relative to the next word in MIPS and to the branch
// itself in RV32.
func branch(mnemonic string) rule {
	return func(em *emitter, dec mips.Decoded) {
		offset := (int64(dec.SignedImmediate()) + 1) * 4
		em.emit(mnemonic, 0, em.reg(dec.Rs), em.reg(dec.Rt), offset)
	}
}

// jump converts the word index target to a byte offset from pc.
func jump(link rv32.Register) rule {
	return func(em *emitter, dec mips.Decoded) {
		region := ((uint64(em.pc) + 1) * 4) & 0xf0000000
		target := region | uint64(dec.Address)<<2
		em.emit("jal", link, 0, 0, int64(target)-int64(em.pc)*4)
	}
}

var rules = map[string]rule{
	"add": sameR("add"),
	"sub": sameR("sub"),
	"and": sameR("and"),
	"or":  sameR("or"),
	"xor": sameR("xor"),
	"slt": sameR("slt"),
	"nor": func(em *emitter, dec mips.Decoded) {
		rd := em.reg(dec.Rd)
		em.emit("or", rd, em.reg(dec.Rs), em.reg(dec.Rt), 0)
		em.emit("xori", rd, rd, 0, -1)
	},
	"sll":  shift("slli"),
	"srl":  shift("srli"),
	"mult": pair("mulh", REG_HI, "mul", REG_LO),
	"div":  pair("div", REG_LO, "rem", REG_HI),
	"jr": func(em *emitter, dec mips.Decoded) {
		em.emit("jalr", rv32.REG_ZERO, em.reg(dec.Rs), 0, 0)
	},
	"addi": signedImm("addi", "add"),
	"slti": signedImm("slti", "slt"),
	"andi": unsignedImm("andi", "and"),
	"ori":  unsignedImm("ori", "or"),
	"lw": func(em *emitter, dec mips.Decoded) {
		em.emit("lw", em.reg(dec.Rt), em.reg(dec.Rs), 0, int64(dec.SignedImmediate()))
	},
	"sw": func(em *emitter, dec mips.Decoded) {
		em.emit("sw", 0, em.reg(dec.Rs), em.reg(dec.Rt), int64(dec.SignedImmediate()))
	},
	"beq": branch("beq"),
	"bne": branch("bne"),
	"j":   jump(rv32.REG_ZERO),
	"jal": jump(rv32.REG_RA),
}

