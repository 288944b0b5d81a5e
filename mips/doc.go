// Package mips implements the MIPS32 register and instruction tables, the
// R/I/J field layout shared by the encoder and the decoder, a single line
// encoder, and a small program assembler.
//
// The instruction subset is the integer core used by the virtual machine:
// add, addi, sub, mult, div, and, andi, or, ori, xor, nor, slt, slti, sll,
// srl, lw, sw, beq, bne, j, jr and jal.
//
// The assembler accepts one instruction per line, with labels, equates,
// .word data and compile-time $(...) expressions.
package mips
