package memory

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemory(t *testing.T) {
	assert := assert.New(t)

	mem := New(16)
	assert.Equal(uint32(16), mem.Capacity())

	word, err := mem.Read(15)
	assert.NoError(err)
	assert.Equal(uint32(0), word)

	assert.NoError(mem.Write(3, 0xdeadbeef))
	word, err = mem.Read(3)
	assert.NoError(err)
	assert.Equal(uint32(0xdeadbeef), word)

	assert.NoError(mem.Write(3, 0x12345678))
	word, err = mem.Read(3)
	assert.NoError(err)
	assert.Equal(uint32(0x12345678), word)

	mem.Reset()
	word, err = mem.Read(3)
	assert.NoError(err)
	assert.Equal(uint32(0), word)
}

func TestMemoryOutOfBounds(t *testing.T) {
	assert := assert.New(t)

	mem := New(4)
	assert.NoError(mem.Write(3, 7))

	before := &bytes.Buffer{}
	assert.NoError(mem.Dump(before))

	err := mem.Write(4, 0xffffffff)
	assert.ErrorIs(err, ErrAddressRange)
	var oob *ErrOutOfBounds
	if assert.True(errors.As(err, &oob)) {
		assert.Equal(uint32(4), oob.Address)
		assert.Equal(uint32(4), oob.Capacity)
	}

	word, err := mem.Read(0xffffffff)
	assert.ErrorIs(err, ErrAddressRange)
	assert.Equal(uint32(0), word)

	err = mem.Load(2, []uint32{1, 2, 3})
	assert.ErrorIs(err, ErrAddressRange)

	err = mem.Load(0xffffffff, []uint32{1, 2})
	assert.ErrorIs(err, ErrAddressRange)

	after := &bytes.Buffer{}
	assert.NoError(mem.Dump(after))
	assert.Equal(before.String(), after.String())
}

func TestMemoryLoad(t *testing.T) {
	assert := assert.New(t)

	mem := New(8)
	assert.NoError(mem.Load(5, []uint32{1, 2, 3}))
	assert.NoError(mem.Load(8, nil))

	var words []uint32
	for addr, word := range mem.Words() {
		assert.Equal(uint32(len(words)), addr)
		words = append(words, word)
	}
	assert.Equal([]uint32{0, 0, 0, 0, 0, 1, 2, 3}, words)
}

func TestMemoryDump(t *testing.T) {
	assert := assert.New(t)

	mem := New(3)
	assert.NoError(mem.Write(1, 0xabc))
	assert.NoError(mem.Write(2, 0xffffffff))

	buff := &bytes.Buffer{}
	assert.NoError(mem.Dump(buff))
	assert.Equal("00000000: 00000000\n00000001: 00000abc\n00000002: ffffffff\n", buff.String())

	buff.Reset()
	assert.NoError(New(0).Dump(buff))
	assert.Equal("", buff.String())
}

func TestMemorySnapshot(t *testing.T) {
	assert := assert.New(t)

	mem := New(8)
	assert.NoError(mem.Load(0, []uint32{0x20080003, 0x2108ffff}))
	assert.NoError(mem.Write(7, 0xcafe))

	data, err := mem.Snapshot()
	assert.NoError(err)

	other := New(8)
	assert.NoError(other.Write(4, 0x1234))
	assert.NoError(other.Restore(data))

	for addr, word := range mem.Words() {
		got, err := other.Read(addr)
		assert.NoError(err)
		assert.Equal(word, got)
	}

	small := New(4)
	assert.NoError(small.Write(0, 99))
	err = small.Restore(data)
	assert.ErrorIs(err, ErrAddressRange)
	word, _ := small.Read(0)
	assert.Equal(uint32(99), word)

	err = small.Restore([]byte{0xff, 0x00})
	assert.Error(err)

	empty, err := EncodeImage(Image{Origin: 2})
	assert.NoError(err)
	assert.ErrorIs(small.Restore(empty), ErrImageEmpty)
}

func TestImage(t *testing.T) {
	assert := assert.New(t)

	img := Image{Origin: 0x10, Words: []uint32{1, 0xffffffff}}
	data, err := EncodeImage(img)
	assert.NoError(err)

	got, err := DecodeImage(data)
	assert.NoError(err)
	assert.Equal(img, got)

	mem := New(0x20)
	assert.NoError(mem.Restore(data))
	word, err := mem.Read(0x11)
	assert.NoError(err)
	assert.Equal(uint32(0xffffffff), word)
}
