// Package memory is a flat, word addressed main memory.
package memory

import (
	"fmt"
	"io"
	"iter"
	"log"
)

// Memory is a fixed size array of 32-bit words, addressed by word index.
type Memory struct {
	Verbose bool // If set, logs every write.

	cells []uint32
}

// New creates a zeroed memory of capacity words.
func New(capacity uint32) (mem *Memory) {
	mem = &Memory{
		cells: make([]uint32, capacity),
	}

	return
}

// Capacity returns the number of words.
func (mem *Memory) Capacity() uint32 {
	return uint32(len(mem.cells))
}

func (mem *Memory) check(addr uint32) (err error) {
	if addr >= mem.Capacity() {
		err = &ErrOutOfBounds{Address: addr, Capacity: mem.Capacity()}
	}
	return
}

// Read returns the word at addr.
func (mem *Memory) Read(addr uint32) (word uint32, err error) {
	err = mem.check(addr)
	if err != nil {
		return
	}

	word = mem.cells[addr]
	return
}

// Write sets the word at addr. A failed write changes nothing.
func (mem *Memory) Write(addr uint32, word uint32) (err error) {
	err = mem.check(addr)
	if err != nil {
		return
	}

	if mem.Verbose {
		log.Printf("memory: [0x%08x] <= 0x%08x", addr, word)
	}

	mem.cells[addr] = word
	return
}

// Load copies words into memory starting at origin. The whole range is
// checked before any word is written.
func (mem *Memory) Load(origin uint32, words []uint32) (err error) {
	if len(words) == 0 {
		return
	}

	end := uint64(origin) + uint64(len(words))
	if end > uint64(mem.Capacity()) {
		err = &ErrOutOfBounds{Address: uint32(min(end-1, 0xffffffff)), Capacity: mem.Capacity()}
		return
	}

	copy(mem.cells[origin:], words)
	return
}

// Reset zeroes every word.
func (mem *Memory) Reset() {
	clear(mem.cells)
}

// Words iterates over every address and word, in address order.
func (mem *Memory) Words() iter.Seq2[uint32, uint32] {
	return func(yield func(addr uint32, word uint32) bool) {
		for n, word := range mem.cells {
			if !yield(uint32(n), word) {
				return
			}
		}
	}
}

// Dump writes one 'address: word' line per cell, in address order.
func (mem *Memory) Dump(w io.Writer) (err error) {
	for addr, word := range mem.Words() {
		_, err = fmt.Fprintf(w, "%08x: %08x\n", addr, word)
		if err != nil {
			return
		}
	}

	return
}
