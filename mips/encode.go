package mips

import (
	"log"
	"strconv"
	"strings"
)

// Operand value ranges. Values outside a range are truncated to the
// field width and flagged.
const (
	SHAMT_MIN     = 0
	SHAMT_MAX     = SHAMT_MASK
	IMMEDIATE_MIN = -(1 << (IMMEDIATE_BITS - 1))
	IMMEDIATE_MAX = IMMEDIATE_MASK
	ADDRESS_MIN   = 0
	ADDRESS_MAX   = ADDRESS_MASK
)

// Tokenize splits an assembly line on spaces, tabs, commas and parentheses.
func Tokenize(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		switch r {
		case ' ', '\t', ',', '(', ')':
			return true
		}
		return false
	})
}

// ParseNumber parses a decimal, or 0x/0o/0b prefixed, integer.
func ParseNumber(word string) (value int64, err error) {
	value, err = strconv.ParseInt(word, 0, 64)
	if err != nil {
		err = ErrNumberInvalid
	}
	return
}

// Encode encodes a single line of assembly with a strict Encoder, so an
// out of range operand is an error. Use an Encoder to collect truncations
// as warnings instead.
func Encode(line string) (word uint32, err error) {
	enc := &Encoder{Strict: true}
	return enc.Encode(line)
}

// Encoder converts assembly lines into instruction words.
type Encoder struct {
	Verbose bool // If set, logs each encoded line and every warning.
	Strict  bool // If set, out of range operands are errors, not warnings.

	Warnings []error // Operands truncated to fit their field.
}

// Encode encodes one line of assembly text.
func (enc *Encoder) Encode(line string) (word uint32, err error) {
	return enc.EncodeWords(Tokenize(line))
}

// EncodeWords encodes an already tokenized line. words[0] is the mnemonic.
func (enc *Encoder) EncodeWords(words []string) (word uint32, err error) {
	if len(words) == 0 {
		err = ErrLineEmpty
		return
	}

	inst, ok := Lookup(words[0])
	if !ok {
		err = &ErrOperand{Mnemonic: words[0], Word: words[0], Err: ErrMnemonicUnknown}
		return
	}

	ops := &operandReader{enc: enc, mnemonic: inst.Name, words: words}

	var rs, rt, rd Register
	var value uint32

	switch inst.Operands {
	case OPERANDS_RD_RS_RT:
		rd, rs, rt, err = ops.registers3()
		if err != nil {
			return
		}
		word = MakeCodeR(inst.Opcode, rs, rt, rd, 0, inst.Funct)
	case OPERANDS_RS_RT:
		if rs, err = ops.register(); err != nil {
			return
		}
		if rt, err = ops.register(); err != nil {
			return
		}
		word = MakeCodeR(inst.Opcode, rs, rt, 0, 0, inst.Funct)
	case OPERANDS_RD_RT_SHAMT:
		if rd, err = ops.register(); err != nil {
			return
		}
		if rt, err = ops.register(); err != nil {
			return
		}
		if value, err = ops.number("shamt", SHAMT_MIN, SHAMT_MAX, SHAMT_BITS); err != nil {
			return
		}
		word = MakeCodeR(inst.Opcode, 0, rt, rd, uint8(value), inst.Funct)
	case OPERANDS_RS:
		if rs, err = ops.register(); err != nil {
			return
		}
		word = MakeCodeR(inst.Opcode, rs, 0, 0, 0, inst.Funct)
	case OPERANDS_RT_RS_IMM, OPERANDS_RT_RS_BRANCH:
		if rt, err = ops.register(); err != nil {
			return
		}
		if rs, err = ops.register(); err != nil {
			return
		}
		if value, err = ops.number("immediate", IMMEDIATE_MIN, IMMEDIATE_MAX, IMMEDIATE_BITS); err != nil {
			return
		}
		word = MakeCodeI(inst.Opcode, rs, rt, uint16(value))
	case OPERANDS_RT_OFFSET_RS:
		if rt, err = ops.register(); err != nil {
			return
		}
		if !ops.bareRegister() {
			if value, err = ops.number("offset", IMMEDIATE_MIN, IMMEDIATE_MAX, IMMEDIATE_BITS); err != nil {
				return
			}
		}
		if rs, err = ops.register(); err != nil {
			return
		}
		word = MakeCodeI(inst.Opcode, rs, rt, uint16(value))
	case OPERANDS_TARGET:
		if value, err = ops.number("target", ADDRESS_MIN, ADDRESS_MAX, ADDRESS_BITS); err != nil {
			return
		}
		word = MakeCodeJ(inst.Opcode, value)
	default:
		panic("unknown operand pattern")
	}

	err = ops.done()
	if err != nil {
		word = 0
		return
	}

	if enc.Verbose {
		log.Printf("encode: %v => 0x%08x", strings.Join(words, " "), word)
	}

	return
}

// operandReader consumes the operand words of one instruction.
type operandReader struct {
	enc      *Encoder
	mnemonic string
	words    []string
	index    int
}

// next returns the next operand word.
func (ops *operandReader) next() (word string, err error) {
	ops.index++
	if ops.index >= len(ops.words) {
		err = &ErrOperand{Mnemonic: ops.mnemonic, Index: ops.index, Err: ErrOperandMissing}
		return
	}

	word = ops.words[ops.index]
	return
}

// fail wraps err with the location of the current operand.
func (ops *operandReader) fail(err error) error {
	return &ErrOperand{
		Mnemonic: ops.mnemonic,
		Index:    ops.index,
		Word:     ops.words[ops.index],
		Err:      err,
	}
}

func (ops *operandReader) register() (reg Register, err error) {
	word, err := ops.next()
	if err != nil {
		return
	}

	reg, ok := RegisterLookup(word)
	if !ok {
		err = ops.fail(ErrRegisterInvalid)
	}
	return
}

func (ops *operandReader) registers3() (a, b, c Register, err error) {
	if a, err = ops.register(); err != nil {
		return
	}
	if b, err = ops.register(); err != nil {
		return
	}
	c, err = ops.register()
	return
}

// bareRegister is true if the only operand left is a register, as in the
// zero offset form 'lw t0, (s1)'.
func (ops *operandReader) bareRegister() bool {
	if ops.index+2 != len(ops.words) {
		return false
	}
	_, ok := RegisterLookup(ops.words[ops.index+1])
	return ok
}

// number reads a numeric operand, and truncates it to the low bits of its
// two's complement form.
func (ops *operandReader) number(field string, low, high int64, bits int) (value uint32, err error) {
	word, err := ops.next()
	if err != nil {
		return
	}

	v64, err := ParseNumber(word)
	if err != nil {
		err = ops.fail(err)
		return
	}

	if v64 < low || v64 > high {
		rangeErr := ops.fail(&ErrRange{Field: field, Value: v64, Bits: bits})
		if ops.enc.Strict {
			err = rangeErr
			return
		}
		if ops.enc.Verbose {
			log.Printf("encode: warning: %v", rangeErr)
		}
		ops.enc.Warnings = append(ops.enc.Warnings, rangeErr)
	}

	value = uint32(uint64(v64) & ((1 << bits) - 1))
	return
}

// done checks that every operand word was consumed.
func (ops *operandReader) done() (err error) {
	if ops.index+1 < len(ops.words) {
		ops.index++
		err = ops.fail(ErrOperandExtra)
	}
	return
}
