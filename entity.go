package warehouse

import "fmt"

// Entity is an opaque, stable handle identifying a logical object: a 1-based
// slot index plus the generation the slot held when this handle was issued.
// A handle whose slot has since been recycled compares unequal in validity
// even if the index happens to be reused, because the generation differs.
type Entity struct {
	index      uint32
	generation uint32
}

// Index exposes the handle's underlying 1-based slot index, e.g. for
// building external id maps; it carries no meaning without the handle's
// generation.
func (e Entity) Index() uint32 { return e.index }

// Generation exposes the handle's generation at issuance.
func (e Entity) Generation() uint32 { return e.generation }

// IsZero reports whether e is the zero-value (never-issued) handle.
func (e Entity) IsZero() bool { return e.index == 0 }

func (e Entity) String() string {
	return fmt.Sprintf("Entity(%d, gen=%d)", e.index, e.generation)
}

// slot is one entry in World.entities. A live slot points at the table and
// row holding the entity's data; a free slot instead threads the world's
// free-list through pos, and has table == nil.
type slot struct {
	table      *table
	generation uint32
	pos        int // position in table when live; next-free index when free
}
