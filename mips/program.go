package mips

import (
	"iter"
)

// Opcode is one assembled line of a program.
type Opcode struct {
	LineNo int      // Source line number.
	Ip     uint32   // Word address of the opcode.
	Words  []string // Source words, after equate substitution.
	Word   uint32   // Encoded instruction or data word.
	Data   bool     // Set for .word data.
}

// Program is an assembled list of opcodes, in address order.
type Program struct {
	Origin  uint32
	Opcodes []Opcode
}

// Debug returns the opcode assembled at the word address ip.
func (prog *Program) Debug(ip uint32) (op *Opcode) {
	for n := range prog.Opcodes {
		if prog.Opcodes[n].Ip == ip {
			op = &prog.Opcodes[n]
			break
		}
	}

	return
}

// Binary returns the image of the program, starting at Origin.
func (prog *Program) Binary() (bins []uint32) {
	for _, word := range prog.Words() {
		bins = append(bins, word)
	}

	return
}

// Words iterates over the address and word of each opcode.
func (prog *Program) Words() iter.Seq2[uint32, uint32] {
	return func(yield func(ip uint32, word uint32) bool) {
		for _, op := range prog.Opcodes {
			if !yield(op.Ip, op.Word) {
				return
			}
		}
	}
}
