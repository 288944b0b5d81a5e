package rv32

import (
	"iter"
)

// Register is an integer register x0 to x31, named by its ABI name.
type Register uint8

//go:generate go tool stringer -linecomment -type=Register
const (
	REG_ZERO = Register(0)  // zero
	REG_RA   = Register(1)  // ra
	REG_SP   = Register(2)  // sp
	REG_GP   = Register(3)  // gp
	REG_TP   = Register(4)  // tp
	REG_T0   = Register(5)  // t0
	REG_T1   = Register(6)  // t1
	REG_T2   = Register(7)  // t2
	REG_S0   = Register(8)  // s0
	REG_S1   = Register(9)  // s1
	REG_A0   = Register(10) // a0
	REG_A1   = Register(11) // a1
	REG_A2   = Register(12) // a2
	REG_A3   = Register(13) // a3
	REG_A4   = Register(14) // a4
	REG_A5   = Register(15) // a5
	REG_A6   = Register(16) // a6
	REG_A7   = Register(17) // a7
	REG_S2   = Register(18) // s2
	REG_S3   = Register(19) // s3
	REG_S4   = Register(20) // s4
	REG_S5   = Register(21) // s5
	REG_S6   = Register(22) // s6
	REG_S7   = Register(23) // s7
	REG_S8   = Register(24) // s8
	REG_S9   = Register(25) // s9
	REG_S10  = Register(26) // s10
	REG_S11  = Register(27) // s11
	REG_T3   = Register(28) // t3
	REG_T4   = Register(29) // t4
	REG_T5   = Register(30) // t5
	REG_T6   = Register(31) // t6

	REGISTER_COUNT = 32
)

var registerMap = func() map[string]Register {
	regs := make(map[string]Register, REGISTER_COUNT)
	for reg := range Registers() {
		regs[reg.String()] = reg
	}
	return regs
}()

// Registers iterates over x0 to x31.
func Registers() iter.Seq[Register] {
	return func(yield func(reg Register) bool) {
		for code := range REGISTER_COUNT {
			if !yield(Register(code)) {
				return
			}
		}
	}
}

// RegisterLookup finds a register by ABI name.
func RegisterLookup(name string) (reg Register, ok bool) {
	reg, ok = registerMap[name]
	return
}
