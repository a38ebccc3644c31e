package warehouse

import (
	"encoding/binary"
	"fmt"

	"github.com/TheBitDrifter/bark"
)

// Batch is a system's view over exactly one chunk of one matched table: the
// unit of iteration a running system processes per step.
type Batch struct {
	world   *World
	t       *table
	chunk   []byte
	offsets []int // per-match-index byte offset into chunk, re-ordered to the system's declared MatchComponents order
	sizes   []int
	size    int
}

// Size returns how many entity rows this batch holds.
func (b Batch) Size() int {
	return b.size
}

// Components returns the column base address for the matchIndex-th
// component the owning system declared in MatchComponents, addressable by
// that fixed index regardless of the table signature's sort order.
func (b Batch) Components(matchIndex int) []byte {
	offset := b.offsets[matchIndex]
	size := b.sizes[matchIndex]
	return b.chunk[offset : offset+size*b.size]
}

// Entity returns the handle for the index-th row in this batch. index must
// be in [0, Size()).
func (b Batch) Entity(index int) Entity {
	if index < 0 || index >= b.size {
		panic(bark.AddTrace(fmt.Errorf("warehouse: batch index %d out of bounds [0, %d)", index, b.size)))
	}
	id := binary.LittleEndian.Uint32(b.chunk[index*4:])
	s := &b.world.entities[id-1]
	return Entity{index: id, generation: s.generation}
}
