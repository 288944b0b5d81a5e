package mips

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line string
		word uint32
	}){
		{"add s0, s1, s2", 0x02328020},
		{"add $8, $9, $10", 0x012a4020},
		{"mult s0, s1", 0x02110018},
		{"div t0, t1", 0x0109001a},
		{"sll s0, s1, 1", 0x00118040},
		{"srl t0, t1, 31", 0x000947c2},
		{"jr ra", 0x03e00008},
		{"addi s0, s1, 5", 0x22300005},
		{"ori t0, zero, 0xffff", 0x3408ffff},
		{"beq t0, zero, -1", 0x1008ffff},
		{"lw t0, 4(sp)", 0x8fa80004},
		{"sw t0, -4(sp)", 0xafa8fffc},
		{"sw\tt0,-4($sp)", 0xafa8fffc},
		{"lw t0, (sp)", 0x8fa80000},
		{"sw t0, 0(sp)", 0xafa80000},
		{"j 1024", 0x08000400},
		{"jal 0x3ffffff", 0x0fffffff},
	}

	for _, entry := range table {
		word, err := Encode(entry.line)
		assert.NoError(err, entry.line)
		assert.Equal(entry.word, word, "%v: 0x%08x", entry.line, word)
	}
}

func TestEncodeError(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line string
		err  error
	}){
		{"", ErrLineEmpty},
		{"   ", ErrLineEmpty},
		{"foo t0", ErrMnemonicUnknown},
		{"ADD t0, t1, t2", ErrMnemonicUnknown},
		{"add t0, t1", ErrOperandMissing},
		{"jr", ErrOperandMissing},
		{"add t0, t1, t2, t3", ErrOperandExtra},
		{"jr ra, ra", ErrOperandExtra},
		{"add t0, t1, x9", ErrRegisterInvalid},
		{"add t0, t1, $32", ErrRegisterInvalid},
		{"addi t0, t1, zz", ErrNumberInvalid},
		{"lw t0, 4(q0)", ErrRegisterInvalid},
		{"lw t0, (q0)", ErrNumberInvalid},
		{"lw t0", ErrOperandMissing},
		{"j target", ErrNumberInvalid},
	}

	for _, entry := range table {
		word, err := Encode(entry.line)
		assert.ErrorIs(err, entry.err, entry.line)
		assert.Equal(uint32(0), word, entry.line)
	}

	_, err := Encode("add t0, t1, t2, t3")
	var operr *ErrOperand
	assert.True(errors.As(err, &operr))
	assert.Equal(4, operr.Index)
	assert.Equal("t3", operr.Word)
}

func TestEncodeRange(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line string
		word uint32
	}){
		{"addi t0, t0, 70000", 0x21081170},
		{"addi t0, t0, -32769", 0x21087fff},
		{"sll t0, t0, 32", 0x00084000},
		{"j 0x4000000", 0x08000000},
	}

	for _, entry := range table {
		enc := &Encoder{}
		word, err := enc.Encode(entry.line)
		assert.NoError(err, entry.line)
		assert.Equal(entry.word, word, entry.line)
		assert.Equal(1, len(enc.Warnings), entry.line)
		if len(enc.Warnings) == 1 {
			assert.ErrorIs(enc.Warnings[0], ErrImmediateRange)
		}

		strict := &Encoder{Strict: true}
		word, err = strict.Encode(entry.line)
		assert.ErrorIs(err, ErrImmediateRange, entry.line)
		assert.Equal(uint32(0), word)
		assert.Equal(0, len(strict.Warnings))

		word, err = Encode(entry.line)
		assert.ErrorIs(err, ErrImmediateRange, entry.line)
		assert.Equal(uint32(0), word)
	}

	// Boundaries are accepted without warnings.
	enc := &Encoder{Strict: true}
	for _, line := range []string{
		"addi t0, t0, -32768",
		"addi t0, t0, 65535",
		"sll t0, t0, 31",
		"j 0x3ffffff",
	} {
		_, err := enc.Encode(line)
		assert.NoError(err, line)
	}
}

func TestTokenize(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]string{"lw", "t0", "-4", "sp"}, Tokenize("  lw t0,\t-4(sp) "))
	assert.Equal(0, len(Tokenize(" , ( ) ")))
}

func TestParseNumber(t *testing.T) {
	assert := assert.New(t)

	for text, value := range map[string]int64{
		"0":      0,
		"-1":     -1,
		"0x10":   16,
		"0b101":  5,
		"0o17":   15,
		"017":    15,
		"65535":  65535,
		"-32768": -32768,
	} {
		v64, err := ParseNumber(text)
		assert.NoError(err, text)
		assert.Equal(value, v64, text)
	}

	_, err := ParseNumber("0xg")
	assert.ErrorIs(err, ErrNumberInvalid)
}
