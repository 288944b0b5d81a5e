package memory

import (
	"slices"

	"github.com/fxamacker/cbor/v2"
)

// Image is a block of words to be placed at Origin.
type Image struct {
	Origin uint32   `cbor:"1,keyasint"`
	Words  []uint32 `cbor:"2,keyasint"`
}

var encMode = func() cbor.EncMode {
	options := cbor.CoreDetEncOptions()
	encMode, err := options.EncMode()
	if err != nil {
		panic(err)
	}
	return encMode
}()

var decMode = func() cbor.DecMode {
	decMode, err := cbor.DecOptions{
		IndefLength:      cbor.IndefLengthForbidden,
		MaxArrayElements: 1 << 26,
		MaxNestedLevels:  4,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return decMode
}()

// EncodeImage returns the CBOR form of the image.
func EncodeImage(img Image) (data []byte, err error) {
	return encMode.Marshal(img)
}

// DecodeImage parses the CBOR form of an image.
func DecodeImage(data []byte) (img Image, err error) {
	err = decMode.Unmarshal(data, &img)
	return
}

// Snapshot returns the CBOR image of the whole memory.
func (mem *Memory) Snapshot() (data []byte, err error) {
	return EncodeImage(Image{Words: slices.Clone(mem.cells)})
}

// Restore zeroes the memory, then loads a CBOR image into it. If the image
// does not parse or does not fit, the memory is unchanged.
func (mem *Memory) Restore(data []byte) (err error) {
	img, err := DecodeImage(data)
	if err != nil {
		return
	}

	if len(img.Words) == 0 {
		err = ErrImageEmpty
		return
	}

	end := uint64(img.Origin) + uint64(len(img.Words))
	if end > uint64(mem.Capacity()) {
		err = &ErrOutOfBounds{Address: uint32(min(end-1, 0xffffffff)), Capacity: mem.Capacity()}
		return
	}

	mem.Reset()
	err = mem.Load(img.Origin, img.Words)
	return
}
