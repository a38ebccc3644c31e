package warehouse

import (
	"sort"

	"github.com/ashgrove-dev/warehouse/internal/archetype"
	"github.com/ashgrove-dev/warehouse/internal/bitset"
	"github.com/ashgrove-dev/warehouse/internal/chunk"
)

// componentCallback is a recorded per-entity component hook, bound to the
// signature index its data lives at.
type componentCallback struct {
	component      ComponentHandle
	signatureIndex int
	fn             ComponentCallback
	userdata       any
}

// systemEntityCallback is a recorded per-entity system hook.
type systemEntityCallback struct {
	system   SystemHandle
	fn       SystemEntityCallback
	userdata any
}

// table is one archetype's storage plus the world-level bookkeeping the
// registry synchronization protocol maintains on top of it: the cached
// init/cleanup callback lists and (via World.systemData) which systems
// match it.
type table struct {
	storage *archetype.Table

	componentInit    []componentCallback
	componentCleanup []componentCallback
	systemInit       []systemEntityCallback
	systemCleanup    []systemEntityCallback
}

// Signature returns the table's archetype signature, as registered
// component handles (1-based), sorted ascending.
func (t *table) Signature() []ComponentHandle {
	out := make([]ComponentHandle, len(t.storage.Signature))
	for i, c := range t.storage.Signature {
		out[i] = ComponentHandle(c)
	}
	return out
}

// signatureIndexOf returns the position of component c within the table's
// signature, or -1 if the table doesn't carry it.
func (t *table) signatureIndexOf(c ComponentHandle) int {
	// Signatures are small (tens of components); linear scan beats a map
	// lookup at this scale, same rationale as the table lookup below.
	for i, h := range t.storage.Signature {
		if ComponentHandle(h) == c {
			return i
		}
	}
	return -1
}

// sortSignature returns a sorted, deduplicated copy of components.
func sortSignature(components []ComponentHandle) []ComponentHandle {
	out := append([]ComponentHandle(nil), components...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	deduped := out[:0]
	for i, c := range out {
		if i == 0 || c != out[i-1] {
			deduped = append(deduped, c)
		}
	}
	return deduped
}

// signatureBitset builds the fixed-width bitset for a sorted signature.
func signatureBitset(components []ComponentHandle) bitset.Set {
	var b bitset.Set
	for _, c := range components {
		b.Mark(uint32(c) - 1)
	}
	return b
}

// getTable finds the existing table matching signature (by length then
// component-by-component comparison), or builds a new one, recording
// component callbacks and probing every registered system for a match.
// Rationale: the number of distinct signatures per world is small (tens to
// low hundreds), so a linear scan is cheaper than hashing at this scale.
func (w *World) getTable(components []ComponentHandle) (*table, error) {
	signature := sortSignature(components)

	for _, t := range w.tables {
		if signaturesEqual(t.storage.Signature, toRaw(signature)) {
			return t, nil
		}
	}

	specs := make([]chunk.ColumnSpec, len(signature))
	for i, c := range signature {
		opts := w.registry.componentOptions(c)
		specs[i] = chunk.ColumnSpec{Size: opts.Size, Align: opts.Alignment}
	}

	storage, err := archetype.New(w.pool, toRaw(signature), signatureBitset(signature), specs)
	if err != nil {
		return nil, ComponentLayoutError{Signature: signature, Err: err}
	}

	t := &table{storage: storage}
	w.recordComponentCallbacks(t)
	w.tables = append(w.tables, t)

	for i := range w.systemData {
		w.tryMatchSystemWithTable(SystemHandle(i+1), t)
	}

	return t, nil
}

func toRaw(components []ComponentHandle) []uint32 {
	raw := make([]uint32, len(components))
	for i, c := range components {
		raw[i] = uint32(c)
	}
	return raw
}

func signaturesEqual(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// recordComponentCallbacks (re)populates a table's component init/cleanup
// lists from the registry's current descriptors, in signature order.
func (w *World) recordComponentCallbacks(t *table) {
	t.componentInit = t.componentInit[:0]
	t.componentCleanup = t.componentCleanup[:0]
	for i, raw := range t.storage.Signature {
		c := ComponentHandle(raw)
		opts := w.registry.componentOptions(c)
		if opts.Init != nil {
			t.componentInit = append(t.componentInit, componentCallback{
				component: c, signatureIndex: i, fn: opts.Init, userdata: opts.Userdata,
			})
		}
		if opts.Cleanup != nil {
			t.componentCleanup = append(t.componentCleanup, componentCallback{
				component: c, signatureIndex: i, fn: opts.Cleanup, userdata: opts.Userdata,
			})
		}
	}
}
