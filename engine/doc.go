// Package engine decodes MIPS32 instruction words fetched through the
// instruction cache, and translates each into equivalent RV32 instructions.
//
// A word passes through the states fetch, classify, decode, match and emit,
// and ends in done or error.
package engine
