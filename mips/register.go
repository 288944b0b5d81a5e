package mips

import (
	"iter"
	"strconv"
	"strings"
)

// Register is a 5-bit general purpose register code.
type Register uint8

//go:generate go tool stringer -linecomment -type=Register
const (
	REG_ZERO = Register(0)  // zero
	REG_AT   = Register(1)  // at
	REG_V0   = Register(2)  // v0
	REG_V1   = Register(3)  // v1
	REG_A0   = Register(4)  // a0
	REG_A1   = Register(5)  // a1
	REG_A2   = Register(6)  // a2
	REG_A3   = Register(7)  // a3
	REG_T0   = Register(8)  // t0
	REG_T1   = Register(9)  // t1
	REG_T2   = Register(10) // t2
	REG_T3   = Register(11) // t3
	REG_T4   = Register(12) // t4
	REG_T5   = Register(13) // t5
	REG_T6   = Register(14) // t6
	REG_T7   = Register(15) // t7
	REG_S0   = Register(16) // s0
	REG_S1   = Register(17) // s1
	REG_S2   = Register(18) // s2
	REG_S3   = Register(19) // s3
	REG_S4   = Register(20) // s4
	REG_S5   = Register(21) // s5
	REG_S6   = Register(22) // s6
	REG_S7   = Register(23) // s7
	REG_T8   = Register(24) // t8
	REG_T9   = Register(25) // t9
	REG_K0   = Register(26) // k0
	REG_K1   = Register(27) // k1
	REG_GP   = Register(28) // gp
	REG_SP   = Register(29) // sp
	REG_FP   = Register(30) // fp
	REG_RA   = Register(31) // ra

	REGISTER_COUNT = 32
)

// registerMap maps register names to codes. Built once, never modified.
var registerMap = func() map[string]Register {
	regs := make(map[string]Register, REGISTER_COUNT)
	for reg := range Registers() {
		regs[reg.String()] = reg
	}
	return regs
}()

// Registers iterates over all registers in code order.
func Registers() iter.Seq[Register] {
	return func(yield func(reg Register) bool) {
		for code := range REGISTER_COUNT {
			if !yield(Register(code)) {
				return
			}
		}
	}
}

// RegisterLookup finds a register by symbolic name. The names may be
// prefixed by '$', and '$0' through '$31' name registers by number.
func RegisterLookup(name string) (reg Register, ok bool) {
	name, dollar := strings.CutPrefix(name, "$")

	reg, ok = registerMap[name]
	if ok || !dollar {
		return
	}

	code, err := strconv.ParseUint(name, 10, 8)
	if err != nil || code >= REGISTER_COUNT {
		return
	}

	reg = Register(code)
	ok = true
	return
}
