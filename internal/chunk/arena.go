package chunk

// arenaChunk is one chunk-sized slab owned by an Arena, bump-allocated from
// the front.
type arenaChunk struct {
	buf  []byte
	used int
	prev *arenaChunk
}

// Arena is an append-only bump allocator built from Pool-borrowed chunks. It
// supports rolling back to an earlier Checkpoint (releasing every chunk
// allocated since) and a full Reset. World uses exactly one: its
// deferredArena, holding deferred-op component payloads for the lifetime of
// one table's drain.
type Arena struct {
	pool    *Pool
	current *arenaChunk
}

// NewArena creates an arena that borrows chunks from pool.
func NewArena(pool *Pool) *Arena {
	return &Arena{pool: pool}
}

// Checkpoint marks a rollback point in the arena.
type Checkpoint struct {
	chunk *arenaChunk
	used  int
}

// Alloc returns a zeroed byte slice of the requested size, cut from the
// current chunk or a freshly acquired one. size must not exceed the pool's
// chunk size.
func (a *Arena) Alloc(size int) []byte {
	if size == 0 {
		return nil
	}
	if a.pool != nil && size > a.pool.Size() {
		panic("chunk: requested memory larger than arena chunk")
	}
	if a.current == nil || a.current.used+size > len(a.current.buf) {
		buf := a.pool.Acquire()
		a.current = &arenaChunk{buf: buf, prev: a.current}
	}
	start := a.current.used
	a.current.used = start + size
	out := a.current.buf[start:a.current.used:a.current.used]
	for i := range out {
		out[i] = 0
	}
	return out
}

// Checkpoint captures the arena's current allocation position.
func (a *Arena) Checkpoint() Checkpoint {
	if a.current == nil {
		return Checkpoint{}
	}
	return Checkpoint{chunk: a.current, used: a.current.used}
}

// Rollback releases every chunk allocated since cp was taken and truncates
// the checkpoint chunk back to its recorded usage.
func (a *Arena) Rollback(cp Checkpoint) {
	for a.current != cp.chunk {
		prev := a.current.prev
		a.pool.Release(a.current.buf)
		a.current = prev
	}
	if a.current != nil {
		a.current.used = cp.used
	}
}

// Reset releases every chunk the arena owns back to the pool.
func (a *Arena) Reset() {
	a.Rollback(Checkpoint{})
}
