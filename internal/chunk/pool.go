// Package chunk implements the fixed-size chunk pool, the append-only arena
// with checkpoint/rollback used for scratch and deferred-op storage, and the
// archetype table layout algorithm (component column packing within a
// chunk).
package chunk

// Pool is a per-world free-list of chunk-sized byte buffers, served LIFO so
// that recently released chunks stay hot in cache. Chunks released by a
// table are parked here rather than returned to the allocator; the pool
// acts as a bounded cache over host allocations.
type Pool struct {
	size    int
	maxFree int
	free    [][]byte
}

// NewPool creates a pool that serves buffers of chunkSize bytes, keeping at
// most maxFree of them parked on the free-list.
func NewPool(chunkSize, maxFree int) *Pool {
	if chunkSize <= 0 {
		panic("chunk: chunk size must be positive")
	}
	return &Pool{size: chunkSize, maxFree: maxFree}
}

// Size returns the fixed chunk size this pool serves.
func (p *Pool) Size() int {
	return p.size
}

// Acquire pops a chunk off the free-list, or allocates a fresh one when the
// list is empty.
func (p *Pool) Acquire() []byte {
	if n := len(p.free); n > 0 {
		c := p.free[n-1]
		p.free = p.free[:n-1]
		return c
	}
	return make([]byte, p.size)
}

// Release returns a chunk to the free-list. Once the free-list reaches its
// cap the chunk is simply dropped for the host GC to reclaim.
func (p *Pool) Release(c []byte) {
	if len(p.free) >= p.maxFree {
		return
	}
	p.free = append(p.free, c)
}

// Free reports how many chunks currently sit on the free-list.
func (p *Pool) Free() int {
	return len(p.free)
}
