// Package rv32 has the register names, instruction table and field
// encoders of the RV32IM instruction set, as far as the translator needs
// them.
package rv32
