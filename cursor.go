package warehouse

import "iter"

// Cursor provides ad hoc, read-only iteration over every entity in every
// table a Query accepts, independent of system registration. It is meant
// for one-off scans (tooling, debug dumps, scripted queries) rather than
// the hot per-frame path, which should instead register a system and let
// RunSystems drive it.
type Cursor struct {
	query QueryNode
	world *World

	matched   []*table
	tableIdx  int
	rowIdx    int // row within the current table; -1 before the first Next()
	remaining int

	initialized bool
}

// NewCursor creates a cursor over world filtered by query.
func NewCursor(query QueryNode, world *World) *Cursor {
	return &Cursor{query: query, world: world}
}

// Initialize syncs the world and snapshots the set of tables the query
// currently accepts. Calling Next or Entities does this automatically.
func (c *Cursor) Initialize() {
	if c.initialized {
		return
	}
	c.world.Sync()
	c.matched = c.matched[:0]
	for _, t := range c.world.tables {
		if c.query.Evaluate(t) {
			c.matched = append(c.matched, t)
		}
	}
	c.tableIdx = 0
	c.rowIdx = -1
	if len(c.matched) > 0 {
		c.remaining = c.matched[0].storage.NumEntities()
	}
	c.initialized = true
}

// Next advances the cursor to the next matching entity, returning false
// once every matched table has been exhausted.
func (c *Cursor) Next() bool {
	if !c.initialized {
		c.Initialize()
	}
	for c.tableIdx < len(c.matched) {
		if c.rowIdx+1 < c.remaining {
			c.rowIdx++
			return true
		}
		c.tableIdx++
		c.rowIdx = -1
		if c.tableIdx < len(c.matched) {
			c.remaining = c.matched[c.tableIdx].storage.NumEntities()
		}
	}
	return false
}

// Reset rewinds the cursor so a subsequent Next/Entities call re-snapshots
// the matched table set.
func (c *Cursor) Reset() {
	c.tableIdx = 0
	c.rowIdx = -1
	c.remaining = 0
	c.matched = nil
	c.initialized = false
}

// CurrentEntity returns the handle for the entity at the cursor's current
// position. Only valid between a Next() call that returned true and the
// next call to Next/Reset.
func (c *Cursor) CurrentEntity() Entity {
	t := c.matched[c.tableIdx]
	id := t.storage.EntityIDAt(c.rowIdx)
	s := &c.world.entities[id-1]
	return Entity{index: id, generation: s.generation}
}

// Entities returns a range-over-func sequence yielding every entity the
// query matches, resetting the cursor on early break.
func (c *Cursor) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for c.Next() {
			if !yield(c.CurrentEntity()) {
				c.Reset()
				return
			}
		}
	}
}

// TotalMatched returns the total entity count across every table the query
// currently matches, without advancing the cursor's own iteration state.
func (c *Cursor) TotalMatched() int {
	c.Initialize()
	total := 0
	for _, t := range c.matched {
		total += t.storage.NumEntities()
	}
	return total
}
