package cache

// Layer is an instruction cache and a data cache sharing one backing store.
type Layer struct {
	Icache *Cache
	Dcache *Cache

	backing Backing
}

// NewLayer creates empty caches in front of backing.
func NewLayer(backing Backing, icacheLines, dcacheLines uint32) (layer *Layer, err error) {
	icache, err := New("icache", icacheLines)
	if err != nil {
		return
	}

	dcache, err := New("dcache", dcacheLines)
	if err != nil {
		return
	}

	layer = &Layer{
		Icache:  icache,
		Dcache:  dcache,
		backing: backing,
	}

	return
}

// IcacheRead fetches an instruction word.
func (layer *Layer) IcacheRead(addr uint32) (word uint32, err error) {
	return layer.Icache.Read(layer.backing, addr)
}

// DcacheRead loads a data word.
func (layer *Layer) DcacheRead(addr uint32) (word uint32, err error) {
	return layer.Dcache.Read(layer.backing, addr)
}

// DcacheWrite stores a data word through to the backing. The icache line
// holding the same address is invalidated.
func (layer *Layer) DcacheWrite(addr uint32, word uint32) (err error) {
	err = layer.Dcache.Write(layer.backing, addr, word)
	if err != nil {
		return
	}

	layer.Icache.Invalidate(addr)
	return
}

// Reset invalidates both caches.
func (layer *Layer) Reset() {
	layer.Icache.Reset()
	layer.Dcache.Reset()
}
