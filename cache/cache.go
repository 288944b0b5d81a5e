// Package cache models the direct mapped instruction and data caches that
// sit between the engine and main memory.
package cache

import (
	"log"

	"github.com/bits-and-blooms/bitset"
)

// Backing is the storage behind a cache.
type Backing interface {
	Read(addr uint32) (word uint32, err error)
	Write(addr uint32, word uint32) (err error)
}

// Cache is a direct mapped cache of single word lines. The line of an
// address is addr mod Lines(), and the tag is the full address.
type Cache struct {
	Name    string // Name used in logs.
	Verbose bool   // If set, logs misses and evictions.

	Hits      uint64 // Accesses served from a valid line.
	Misses    uint64 // Accesses that filled a line.
	Evictions uint64 // Fills that replaced a different valid address.

	tags  []uint32
	words []uint32
	valid *bitset.BitSet
}

// New creates an empty cache with the given number of lines.
func New(name string, lines uint32) (cache *Cache, err error) {
	if lines == 0 {
		err = ErrLinesZero
		return
	}

	cache = &Cache{
		Name:  name,
		tags:  make([]uint32, lines),
		words: make([]uint32, lines),
		valid: bitset.New(uint(lines)),
	}

	return
}

// Lines returns the number of cache lines.
func (cache *Cache) Lines() uint32 {
	return uint32(len(cache.tags))
}

func (cache *Cache) line(addr uint32) uint {
	return uint(addr % cache.Lines())
}

// Lookup returns the cached word of addr, if present. It does not update
// the statistics.
func (cache *Cache) Lookup(addr uint32) (word uint32, ok bool) {
	line := cache.line(addr)
	if cache.valid.Test(line) && cache.tags[line] == addr {
		word = cache.words[line]
		ok = true
	}
	return
}

// fill places a word in the line of addr, replacing the previous occupant.
func (cache *Cache) fill(addr uint32, word uint32) {
	line := cache.line(addr)
	if cache.valid.Test(line) && cache.tags[line] != addr {
		cache.Evictions++
		if cache.Verbose {
			log.Printf("%v: evict 0x%08x from line %d", cache.Name, cache.tags[line], line)
		}
	}

	cache.tags[line] = addr
	cache.words[line] = word
	cache.valid.Set(line)
}

// Read returns the word at addr. A miss reads the backing and fills the
// line; a failed backing read leaves the line untouched.
func (cache *Cache) Read(backing Backing, addr uint32) (word uint32, err error) {
	word, ok := cache.Lookup(addr)
	if ok {
		cache.Hits++
		return
	}

	word, err = backing.Read(addr)
	if err != nil {
		return
	}

	cache.Misses++
	if cache.Verbose {
		log.Printf("%v: miss 0x%08x", cache.Name, addr)
	}

	cache.fill(addr, word)
	return
}

// Write stores word at addr in the backing, then in the cache line.
// If the backing rejects the address, the cache is not changed.
func (cache *Cache) Write(backing Backing, addr uint32, word uint32) (err error) {
	err = backing.Write(addr, word)
	if err != nil {
		return
	}

	if _, ok := cache.Lookup(addr); ok {
		cache.Hits++
	} else {
		cache.Misses++
	}

	cache.fill(addr, word)
	return
}

// Invalidate drops the line holding addr, if any.
func (cache *Cache) Invalidate(addr uint32) {
	line := cache.line(addr)
	if cache.valid.Test(line) && cache.tags[line] == addr {
		cache.valid.Clear(line)
	}
}

// Valid returns the number of valid lines.
func (cache *Cache) Valid() uint {
	return cache.valid.Count()
}

// Reset invalidates every line and clears the statistics.
func (cache *Cache) Reset() {
	cache.valid.ClearAll()
	cache.Hits = 0
	cache.Misses = 0
	cache.Evictions = 0
}

// String returns the cache statistics.
func (cache *Cache) String() string {
	return f("%v: %d lines, %d valid, %d hits, %d misses, %d evictions",
		cache.Name, cache.Lines(), cache.Valid(), cache.Hits, cache.Misses, cache.Evictions)
}
