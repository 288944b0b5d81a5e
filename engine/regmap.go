package engine

import (
	"github.com/ezrec/vmachine/mips"
	"github.com/ezrec/vmachine/rv32"
)

// Target registers with no MIPS general purpose counterpart.
const (
	REG_HI      = rv32.REG_S10
	REG_LO      = rv32.REG_S11
	REG_SCRATCH = rv32.REG_T0
)

type regTarget struct {
	reg    rv32.Register
	mapped bool
}

// registerMap maps MIPS registers to RV32 registers. k0 and k1 are
// reserved for the kernel and have no target.
var registerMap = [mips.REGISTER_COUNT]regTarget{
	mips.REG_ZERO: {rv32.REG_ZERO, true},
	mips.REG_AT:   {REG_SCRATCH, true},
	mips.REG_V0:   {rv32.REG_A0, true},
	mips.REG_V1:   {rv32.REG_A1, true},
	mips.REG_A0:   {rv32.REG_A2, true},
	mips.REG_A1:   {rv32.REG_A3, true},
	mips.REG_A2:   {rv32.REG_A4, true},
	mips.REG_A3:   {rv32.REG_A5, true},
	mips.REG_T0:   {rv32.REG_T1, true},
	mips.REG_T1:   {rv32.REG_T2, true},
	mips.REG_T2:   {rv32.REG_T3, true},
	mips.REG_T3:   {rv32.REG_T4, true},
	mips.REG_T4:   {rv32.REG_T5, true},
	mips.REG_T5:   {rv32.REG_T6, true},
	mips.REG_T6:   {rv32.REG_A6, true},
	mips.REG_T7:   {rv32.REG_A7, true},
	mips.REG_S0:   {rv32.REG_S1, true},
	mips.REG_S1:   {rv32.REG_S2, true},
	mips.REG_S2:   {rv32.REG_S3, true},
	mips.REG_S3:   {rv32.REG_S4, true},
	mips.REG_S4:   {rv32.REG_S5, true},
	mips.REG_S5:   {rv32.REG_S6, true},
	mips.REG_S6:   {rv32.REG_S7, true},
	mips.REG_S7:   {rv32.REG_S8, true},
	mips.REG_T8:   {rv32.REG_S9, true},
	mips.REG_T9:   {rv32.REG_TP, true},
	mips.REG_GP:   {rv32.REG_GP, true},
	mips.REG_SP:   {rv32.REG_SP, true},
	mips.REG_FP:   {rv32.REG_S0, true},
	mips.REG_RA:   {rv32.REG_RA, true},
}

// MapRegister returns the RV32 register holding a MIPS register.
func MapRegister(reg mips.Register) (target rv32.Register, ok bool) {
	if int(reg) >= len(registerMap) {
		return
	}

	entry := registerMap[reg]
	return entry.reg, entry.mapped
}
