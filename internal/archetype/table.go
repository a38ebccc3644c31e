// Package archetype implements the columnar, chunked storage for one
// archetype table: a group of entities that all share the same component
// signature, laid out as structure-of-arrays chunks per
// internal/chunk.Layout.
package archetype

import (
	"encoding/binary"

	"github.com/ashgrove-dev/warehouse/internal/bitset"
	"github.com/ashgrove-dev/warehouse/internal/chunk"
)

// Table is the concrete columnar storage for one archetype. It owns no
// callback bookkeeping — that lives one layer up, alongside the registry,
// since it concerns world/registry wiring rather than raw storage.
type Table struct {
	Signature []uint32 // sorted, deduplicated component handles
	Bits      bitset.Set

	pool   *chunk.Pool
	layout chunk.Layout
	chunks [][]byte
	count  int
}

// New builds a table for the given signature. specs must be parallel to
// signature and carry each component's size/alignment.
func New(pool *chunk.Pool, signature []uint32, bits bitset.Set, specs []chunk.ColumnSpec) (*Table, error) {
	layout, err := chunk.ComputeLayout(pool.Size(), specs)
	if err != nil {
		return nil, err
	}
	sig := make([]uint32, len(signature))
	copy(sig, signature)
	return &Table{Signature: sig, Bits: bits, pool: pool, layout: layout}, nil
}

// NumEntities returns the total row count across all chunks.
func (t *Table) NumEntities() int { return t.count }

// RowsPerChunk returns the fixed row capacity of one chunk in this table.
func (t *Table) RowsPerChunk() int { return t.layout.RowsPerChunk }

// NumChunks returns the number of chunks currently backing this table.
func (t *Table) NumChunks() int { return len(t.chunks) }

// Locate splits a table-relative row position into a chunk index and a
// within-chunk row index.
func (t *Table) Locate(pos int) (chunkIdx, posInChunk int) {
	n := t.layout.RowsPerChunk
	return pos / n, pos % n
}

// LastChunkSize returns the row count occupied in the last chunk — the
// exact row count, not num_entities % rows_per_chunk, so a table whose
// entity count is an exact multiple of the chunk capacity still reports a
// full last chunk instead of zero.
func (t *Table) LastChunkSize() int {
	if len(t.chunks) == 0 {
		return 0
	}
	return t.count - (len(t.chunks)-1)*t.layout.RowsPerChunk
}

// Chunk returns the raw backing buffer for chunk i.
func (t *Table) Chunk(i int) []byte { return t.chunks[i] }

// ColumnOffset returns the byte offset and size of the column for the
// signature-index-th component in this table.
func (t *Table) ColumnOffset(signatureIndex int) (offset, size int) {
	c := t.layout.Columns[signatureIndex]
	return c.Offset, c.Size
}

// EntityIDAt reads the entity id stored at a table-relative row.
func (t *Table) EntityIDAt(pos int) uint32 {
	chunkIdx, posInChunk := t.Locate(pos)
	return binary.LittleEndian.Uint32(t.chunks[chunkIdx][posInChunk*4:])
}

// ColumnBytes returns the byte slice backing one component's value at a
// table-relative row.
func (t *Table) ColumnBytes(signatureIndex, pos int) []byte {
	chunkIdx, posInChunk := t.Locate(pos)
	offset, size := t.ColumnOffset(signatureIndex)
	start := offset + posInChunk*size
	return t.chunks[chunkIdx][start : start+size]
}

// AppendRow grows the table by one row, allocating a new chunk if the
// current tail is full, writes the entity id into column 0, and returns the
// new row's table-relative position.
func (t *Table) AppendRow(entityID uint32) int {
	pos := t.count
	t.count++
	chunkIdx, posInChunk := t.Locate(pos)
	if chunkIdx >= len(t.chunks) {
		t.chunks = append(t.chunks, t.pool.Acquire())
	}
	binary.LittleEndian.PutUint32(t.chunks[chunkIdx][posInChunk*4:], entityID)
	return pos
}

// SwapRemove removes the row at pos by copying the last row over it
// (entity-id column and every component column), shrinking the table by
// one. It returns the id of the entity that was moved into pos (equal to
// the removed entity's id when pos was already the last row) and, when the
// tail chunk became empty, the released chunk buffer so the caller can
// return it to a pool.
func (t *Table) SwapRemove(pos int) (movedEntityID uint32, released []byte, didRelease bool) {
	chunkIdx, posInChunk := t.Locate(pos)
	chunkBuf := t.chunks[chunkIdx]

	t.count--
	lastPos := t.count
	lastChunkIdx, lastPosInChunk := t.Locate(lastPos)
	lastChunkBuf := t.chunks[lastChunkIdx]

	movedEntityID = binary.LittleEndian.Uint32(lastChunkBuf[lastPosInChunk*4:])
	binary.LittleEndian.PutUint32(chunkBuf[posInChunk*4:], movedEntityID)

	for _, col := range t.layout.Columns {
		dstStart := col.Offset + posInChunk*col.Size
		srcStart := col.Offset + lastPosInChunk*col.Size
		copy(chunkBuf[dstStart:dstStart+col.Size], lastChunkBuf[srcStart:srcStart+col.Size])
	}

	if lastPosInChunk == 0 {
		didRelease = true
		released = t.chunks[len(t.chunks)-1]
		t.chunks = t.chunks[:len(t.chunks)-1]
	}
	return movedEntityID, released, didRelease
}

// ReleaseAll returns every chunk this table holds to pool and empties it —
// used when the owning world is destroyed.
func (t *Table) ReleaseAll() {
	for _, c := range t.chunks {
		t.pool.Release(c)
	}
	t.chunks = nil
	t.count = 0
}
