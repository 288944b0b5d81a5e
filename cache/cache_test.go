package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/vmachine/memory"
)

// countingBacking counts the traffic reaching memory.
type countingBacking struct {
	*memory.Memory
	reads  int
	writes int
}

func (cb *countingBacking) Read(addr uint32) (word uint32, err error) {
	cb.reads++
	return cb.Memory.Read(addr)
}

func (cb *countingBacking) Write(addr uint32, word uint32) (err error) {
	cb.writes++
	return cb.Memory.Write(addr, word)
}

func newLayer(t *testing.T, capacity, icache, dcache uint32) (layer *Layer, backing *countingBacking) {
	backing = &countingBacking{Memory: memory.New(capacity)}
	layer, err := NewLayer(backing, icache, dcache)
	if err != nil {
		t.Fatal(err)
	}
	return
}

func TestNewLayer(t *testing.T) {
	assert := assert.New(t)

	mem := memory.New(4)

	_, err := NewLayer(mem, 0, 4)
	assert.ErrorIs(err, ErrLinesZero)

	_, err = NewLayer(mem, 4, 0)
	assert.ErrorIs(err, ErrLinesZero)

	layer, err := NewLayer(mem, 2, 8)
	assert.NoError(err)
	assert.Equal(uint32(2), layer.Icache.Lines())
	assert.Equal(uint32(8), layer.Dcache.Lines())
	assert.Equal(uint(0), layer.Icache.Valid())
}

func TestCacheMissThenHit(t *testing.T) {
	assert := assert.New(t)

	layer, backing := newLayer(t, 64, 8, 8)
	assert.NoError(backing.Memory.Write(5, 0x02328020))

	word, err := layer.IcacheRead(5)
	assert.NoError(err)
	assert.Equal(uint32(0x02328020), word)
	assert.Equal(1, backing.reads)
	assert.Equal(uint64(1), layer.Icache.Misses)
	assert.Equal(uint64(0), layer.Icache.Hits)

	word, err = layer.IcacheRead(5)
	assert.NoError(err)
	assert.Equal(uint32(0x02328020), word)
	assert.Equal(1, backing.reads)
	assert.Equal(uint64(1), layer.Icache.Hits)

	// The data cache is separate.
	_, err = layer.DcacheRead(5)
	assert.NoError(err)
	assert.Equal(2, backing.reads)
	assert.Equal(uint64(1), layer.Dcache.Misses)
}

func TestCacheWriteThrough(t *testing.T) {
	assert := assert.New(t)

	layer, backing := newLayer(t, 64, 8, 8)

	assert.NoError(layer.DcacheWrite(9, 0xcafe))
	assert.Equal(1, backing.writes)

	word, err := backing.Memory.Read(9)
	assert.NoError(err)
	assert.Equal(uint32(0xcafe), word)

	// Write allocate: the following read is a hit.
	word, err = layer.DcacheRead(9)
	assert.NoError(err)
	assert.Equal(uint32(0xcafe), word)
	assert.Equal(0, backing.reads)
	assert.Equal(uint64(1), layer.Dcache.Hits)
}

func TestCacheEviction(t *testing.T) {
	assert := assert.New(t)

	layer, backing := newLayer(t, 64, 4, 4)
	assert.NoError(backing.Memory.Write(1, 0x11))
	assert.NoError(backing.Memory.Write(5, 0x55))

	word, err := layer.DcacheRead(1)
	assert.NoError(err)
	assert.Equal(uint32(0x11), word)

	// Address 5 maps to the same line as address 1.
	word, err = layer.DcacheRead(5)
	assert.NoError(err)
	assert.Equal(uint32(0x55), word)
	assert.Equal(uint64(1), layer.Dcache.Evictions)

	word, err = layer.DcacheRead(1)
	assert.NoError(err)
	assert.Equal(uint32(0x11), word)
	assert.Equal(3, backing.reads)
	assert.Equal(uint64(3), layer.Dcache.Misses)
	assert.Equal(uint64(2), layer.Dcache.Evictions)
	assert.Equal(uint(1), layer.Dcache.Valid())
}

func TestCacheOutOfBounds(t *testing.T) {
	assert := assert.New(t)

	layer, backing := newLayer(t, 4, 4, 4)
	assert.NoError(layer.DcacheWrite(0, 0x1234))

	_, err := layer.DcacheRead(4)
	assert.ErrorIs(err, memory.ErrAddressRange)

	_, err = layer.IcacheRead(8)
	assert.ErrorIs(err, memory.ErrAddressRange)

	// Address 4 shares line 0, which must keep its contents.
	err = layer.DcacheWrite(4, 0xffff)
	assert.ErrorIs(err, memory.ErrAddressRange)

	word, ok := layer.Dcache.Lookup(0)
	assert.True(ok)
	assert.Equal(uint32(0x1234), word)
	assert.Equal(uint64(0), layer.Dcache.Evictions)
	assert.Equal(uint(0), layer.Icache.Valid())

	reads := backing.reads
	word, err = layer.DcacheRead(0)
	assert.NoError(err)
	assert.Equal(uint32(0x1234), word)
	assert.Equal(reads, backing.reads)
}

func TestCacheIcacheInvalidate(t *testing.T) {
	assert := assert.New(t)

	layer, backing := newLayer(t, 16, 4, 4)
	assert.NoError(backing.Memory.Write(2, 0x03e00008))

	word, err := layer.IcacheRead(2)
	assert.NoError(err)
	assert.Equal(uint32(0x03e00008), word)

	assert.NoError(layer.DcacheWrite(2, 0x02328020))
	_, ok := layer.Icache.Lookup(2)
	assert.False(ok)

	word, err = layer.IcacheRead(2)
	assert.NoError(err)
	assert.Equal(uint32(0x02328020), word)
	assert.Equal(uint64(2), layer.Icache.Misses)

	// A write to another address in the same line leaves it alone.
	assert.NoError(layer.DcacheWrite(6, 0))
	_, ok = layer.Icache.Lookup(2)
	assert.True(ok)
}

func TestCacheReset(t *testing.T) {
	assert := assert.New(t)

	layer, _ := newLayer(t, 16, 4, 4)
	for addr := range uint32(8) {
		assert.NoError(layer.DcacheWrite(addr, addr))
		_, err := layer.IcacheRead(addr)
		assert.NoError(err)
	}
	assert.Equal(uint(4), layer.Icache.Valid())
	assert.Equal(uint(4), layer.Dcache.Valid())

	layer.Reset()
	assert.Equal(uint(0), layer.Icache.Valid())
	assert.Equal(uint(0), layer.Dcache.Valid())
	assert.Equal(uint64(0), layer.Dcache.Misses)
	assert.Equal("dcache: 4 lines, 0 valid, 0 hits, 0 misses, 0 evictions", layer.Dcache.String())
}
