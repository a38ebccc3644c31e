package warehouse

import (
	"fmt"
	"sort"

	"github.com/TheBitDrifter/bark"
	"github.com/ashgrove-dev/warehouse/internal/bitset"
	"github.com/ashgrove-dev/warehouse/internal/chunk"
)

// WorldOptions configures a World at construction. A zero value uses the
// package-wide Config defaults.
type WorldOptions struct {
	ChunkSize    int
	ChunkPoolCap int
}

// systemWorldState is the per-world, per-system bookkeeping rebuilt on every
// Sync: the system's match bitset and the tables it currently matches.
type systemWorldState struct {
	bits          bitset.Set
	matchedTables []matchRecord
	userdata      any
}

// matchRecord binds one matched table to the column offsets/sizes a system's
// declared MatchComponents resolve to in that table's layout.
type matchRecord struct {
	t       *table
	offsets []int
	sizes   []int
}

// deferredOpKind distinguishes the two operations that can be deferred while
// a system is iterating.
type deferredOpKind int

const (
	deferredDestroy deferredOpKind = iota
	deferredMorph
)

// deferredOp is one queued mutation, linked in enqueue order.
type deferredOp struct {
	kind    deferredOpKind
	handle  Entity
	adds    []ComponentInit
	removes []ComponentHandle
	next    *deferredOp
}

// World is one live instance of the registry's components and systems: an
// entity slot table, the archetype tables currently in use, and the
// deferred-operation queue that makes mutation safe from inside a running
// system. A World lazily reconciles against its Registry's version counter
// at the start of every public call that touches entities or systems.
type World struct {
	registry *Registry
	version  uint64

	entities []slot
	freeHead uint32 // 1-based index of the first free slot, 0 = none

	tables []*table

	systemData []systemWorldState

	pool          *chunk.Pool
	deferredArena *chunk.Arena

	currentUpdateTable *table
	updateMask         uint64

	deferredHead *deferredOp
	deferredTail *deferredOp
}

// NewWorld creates a World attached to registry, applying opts over the
// package Config defaults, and performs an initial Sync.
func NewWorld(r *Registry, opts WorldOptions) *World {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = Config.ChunkSize
	}
	poolCap := opts.ChunkPoolCap
	if poolCap <= 0 {
		poolCap = Config.ChunkPoolCap
	}

	pool := chunk.NewPool(chunkSize, poolCap)
	w := &World{
		registry:      r,
		pool:          pool,
		deferredArena: chunk.NewArena(pool),
	}
	w.Sync()
	return w
}

// Sync reconciles the world against its registry's current version: it
// recomputes every system's match bitset and matched-table list, and fires
// InitPerWorld for systems registered since the world's last sync. It is a
// no-op when the world's cached version already equals the registry's.
func (w *World) Sync() {
	if w.version == w.registry.version {
		return
	}
	w.version = w.registry.version

	oldNumSystems := len(w.systemData)
	newNumSystems := len(w.registry.systems)
	for len(w.systemData) < newNumSystems {
		w.systemData = append(w.systemData, systemWorldState{})
	}

	for _, t := range w.tables {
		t.systemInit = t.systemInit[:0]
		t.systemCleanup = t.systemCleanup[:0]
		w.recordComponentCallbacks(t)
	}

	for i := 0; i < newNumSystems; i++ {
		sh := SystemHandle(i + 1)
		opts := w.registry.systemOptions(sh)
		sd := &w.systemData[i]
		sd.matchedTables = sd.matchedTables[:0]

		var bits bitset.Set
		seen := map[ComponentHandle]bool{}
		for _, c := range opts.MatchComponents {
			if seen[c] {
				continue
			}
			seen[c] = true
			bits.Mark(uint32(c) - 1)
		}
		sd.bits = bits

		for _, t := range w.tables {
			w.tryMatchSystemWithTable(sh, t)
		}
	}

	for i := oldNumSystems; i < newNumSystems; i++ {
		opts := w.registry.systemOptions(SystemHandle(i + 1))
		if opts.InitPerWorld != nil {
			opts.InitPerWorld(w, opts.Userdata)
		}
	}
}

// tryMatchSystemWithTable records sh's per-entity init/cleanup hooks on t
// when t's signature is a superset of sh's MatchComponents. It also adds t
// to sh's matched-table list in that case, unless sh has no Update callback
// or t carries the inactive tag.
func (w *World) tryMatchSystemWithTable(sh SystemHandle, t *table) {
	opts := w.registry.systemOptions(sh)
	sd := &w.systemData[sh-1]
	if !t.storage.Bits.ContainsAll(sd.bits) {
		return
	}

	if opts.InitPerEntity != nil {
		t.systemInit = append(t.systemInit, systemEntityCallback{system: sh, fn: opts.InitPerEntity, userdata: opts.Userdata})
	}
	if opts.CleanupPerEntity != nil {
		t.systemCleanup = append(t.systemCleanup, systemEntityCallback{system: sh, fn: opts.CleanupPerEntity, userdata: opts.Userdata})
	}
	if opts.Update != nil && t.signatureIndexOf(w.registry.inactiveHandle) < 0 {
		offsets := make([]int, len(opts.MatchComponents))
		sizes := make([]int, len(opts.MatchComponents))
		for i, c := range opts.MatchComponents {
			si := t.signatureIndexOf(c)
			off, sz := t.storage.ColumnOffset(si)
			offsets[i] = off
			sizes[i] = sz
		}
		sd.matchedTables = append(sd.matchedTables, matchRecord{t: t, offsets: offsets, sizes: sizes})
	}
}

// allocSlot pops a recycled slot off the free-list, or grows entities by
// one, and binds it to t. It returns the 1-based entity index and the
// generation the issued handle must carry.
func (w *World) allocSlot(t *table) (uint32, uint32) {
	if w.freeHead == 0 {
		w.entities = append(w.entities, slot{table: t})
		idx := uint32(len(w.entities))
		return idx, 0
	}
	idx := w.freeHead
	s := &w.entities[idx-1]
	w.freeHead = uint32(s.pos)
	s.table = t
	return idx, s.generation
}

func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// CreateEntity synchronizes the world, then creates one entity carrying the
// given component inits, deduplicated (first occurrence wins) and sorted
// into the entity's archetype signature. Components with no matching init
// start zero-filled.
func (w *World) CreateEntity(inits ...ComponentInit) (Entity, error) {
	w.Sync()

	seen := map[ComponentHandle]bool{}
	deduped := make([]ComponentInit, 0, len(inits))
	for _, init := range inits {
		if seen[init.Component] {
			continue
		}
		seen[init.Component] = true
		deduped = append(deduped, init)
	}
	sort.Slice(deduped, func(i, j int) bool { return deduped[i].Component < deduped[j].Component })

	signature := make([]ComponentHandle, len(deduped))
	for i, ci := range deduped {
		signature[i] = ci.Component
	}

	t, err := w.getTable(signature)
	if err != nil {
		return Entity{}, err
	}
	return w.createEntityForTable(t, deduped), nil
}

// createEntityForTable allocates a row in t and fires init callbacks. inits
// must be sorted into t's signature order (CreateEntity and
// CreateEntityFromTemplate both guarantee this by construction).
func (w *World) createEntityForTable(t *table, inits []ComponentInit) Entity {
	idx, gen := w.allocSlot(t)
	pos := t.storage.AppendRow(idx)
	w.entities[idx-1].pos = pos

	for i := range t.storage.Signature {
		dst := t.storage.ColumnBytes(i, pos)
		if i < len(inits) && inits[i].Data != nil {
			copy(dst, inits[i].Data)
		} else {
			clearBytes(dst)
		}
	}

	handle := Entity{index: idx, generation: gen}

	for _, cb := range t.componentInit {
		cb.fn(w, handle, t.storage.ColumnBytes(cb.signatureIndex, pos), cb.userdata)
	}
	for _, cb := range t.systemInit {
		cb.fn(w, handle, cb.userdata)
	}
	return handle
}

// isValidEntity reports whether e's slot is in bounds and still holds the
// generation e was issued with. It does not sync, matching IsValidEntity and
// GetComponentInEntity in the original engine this one is modeled on, which
// are safe to call mid-iteration precisely because they never touch the
// registry.
func (w *World) isValidEntity(e Entity) bool {
	if e.index == 0 || int(e.index) > len(w.entities) {
		return false
	}
	return w.entities[e.index-1].generation == e.generation
}

// IsValidEntity reports whether e still identifies a live entity.
func (w *World) IsValidEntity(e Entity) bool {
	return w.isValidEntity(e)
}

// GetComponentInEntity returns the raw byte storage for component c on
// entity e, or nil if e is invalid or its archetype doesn't carry c.
func (w *World) GetComponentInEntity(e Entity, c ComponentHandle) []byte {
	if !w.isValidEntity(e) {
		return nil
	}
	s := &w.entities[e.index-1]
	si := s.table.signatureIndexOf(c)
	if si < 0 {
		return nil
	}
	return s.table.storage.ColumnBytes(si, s.pos)
}

// patchMovedEntity updates the slot of the entity SwapRemove reports as
// moved, but only if that entity's current home is still owner — the moved
// id can coincidentally be the entity being morphed away from owner itself
// (when its old row was the table's last), in which case its slot already
// points at its new table and must not be clobbered back to a position in
// the table it just left.
func (w *World) patchMovedEntity(owner *table, movedID uint32, pos int) {
	if w.entities[movedID-1].table == owner {
		w.entities[movedID-1].pos = pos
	}
}

// DestroyEntity destroys e. If e lives in the table a system is currently
// iterating, the destroy is deferred to the end of that table's chunk
// iteration instead of running immediately. Destroying an already-invalid
// handle is a silent no-op.
func (w *World) DestroyEntity(e Entity) error {
	w.Sync()
	if !w.isValidEntity(e) {
		return nil
	}
	s := &w.entities[e.index-1]
	if s.table == w.currentUpdateTable {
		w.enqueueDestroy(e)
		return nil
	}
	w.destroyEntityNow(e.index, s)
	return nil
}

func (w *World) destroyEntityNow(idx uint32, s *slot) {
	t := s.table
	pos := s.pos
	handle := Entity{index: idx, generation: s.generation}

	for i := len(t.systemCleanup) - 1; i >= 0; i-- {
		cb := t.systemCleanup[i]
		cb.fn(w, handle, cb.userdata)
	}
	for i := len(t.componentCleanup) - 1; i >= 0; i-- {
		cb := t.componentCleanup[i]
		cb.fn(w, handle, t.storage.ColumnBytes(cb.signatureIndex, pos), cb.userdata)
	}

	movedID, released, didRelease := t.storage.SwapRemove(pos)
	w.patchMovedEntity(t, movedID, pos)
	if didRelease {
		w.pool.Release(released)
	}

	s.generation++
	s.table = nil
	s.pos = int(w.freeHead)
	w.freeHead = idx
}

// MorphEntity changes e's archetype: components named in removes drop out,
// components named in adds are added (an add for a component e already
// carries is ignored and the retained value is kept), and everything else
// carries over unchanged. Morphing
// with both adds and removes empty is a no-op that leaves e's observable
// state untouched. Like DestroyEntity, a morph against the table currently
// under system iteration is deferred instead of applied immediately.
func (w *World) MorphEntity(e Entity, adds []ComponentInit, removes []ComponentHandle) error {
	w.Sync()
	if !w.isValidEntity(e) {
		return nil
	}
	s := &w.entities[e.index-1]
	if s.table == w.currentUpdateTable {
		w.enqueueMorph(e, adds, removes)
		return nil
	}
	return w.morphEntityNow(e.index, s, adds, removes)
}

func (w *World) morphEntityNow(idx uint32, s *slot, adds []ComponentInit, removes []ComponentHandle) error {
	oldTable := s.table
	oldPos := s.pos
	handle := Entity{index: idx, generation: s.generation}

	removeSet := make(map[ComponentHandle]bool, len(removes))
	for _, c := range removes {
		removeSet[c] = true
	}

	addSet := make(map[ComponentHandle]bool, len(oldTable.storage.Signature)+len(adds))
	composed := make([]ComponentInit, 0, len(oldTable.storage.Signature)+len(adds))
	for i, raw := range oldTable.storage.Signature {
		c := ComponentHandle(raw)
		if removeSet[c] {
			continue
		}
		addSet[c] = true
		composed = append(composed, ComponentInit{Component: c, Data: oldTable.storage.ColumnBytes(i, oldPos)})
	}
	for _, init := range adds {
		if removeSet[init.Component] || addSet[init.Component] {
			continue
		}
		addSet[init.Component] = true
		composed = append(composed, init)
	}
	sort.Slice(composed, func(i, j int) bool { return composed[i].Component < composed[j].Component })

	newSignature := make([]ComponentHandle, len(composed))
	for i, ci := range composed {
		newSignature[i] = ci.Component
	}

	newTable, err := w.getTable(newSignature)
	if err != nil {
		return err
	}

	for i := len(oldTable.systemCleanup) - 1; i >= 0; i-- {
		cb := oldTable.systemCleanup[i]
		if newTable.storage.Bits.ContainsAll(w.systemData[cb.system-1].bits) {
			continue
		}
		cb.fn(w, handle, cb.userdata)
	}
	for i := len(oldTable.componentCleanup) - 1; i >= 0; i-- {
		cb := oldTable.componentCleanup[i]
		if addSet[cb.component] {
			continue
		}
		cb.fn(w, handle, oldTable.storage.ColumnBytes(cb.signatureIndex, oldPos), cb.userdata)
	}

	newPos := newTable.storage.AppendRow(idx)
	for i, ci := range composed {
		dst := newTable.storage.ColumnBytes(i, newPos)
		if ci.Data != nil {
			copy(dst, ci.Data)
		} else {
			clearBytes(dst)
		}
	}
	s.table = newTable
	s.pos = newPos

	movedID, released, didRelease := oldTable.storage.SwapRemove(oldPos)
	w.patchMovedEntity(oldTable, movedID, oldPos)
	if didRelease {
		w.pool.Release(released)
	}

	for _, cb := range newTable.componentInit {
		if !componentInSignature(oldTable, cb.component) {
			cb.fn(w, handle, newTable.storage.ColumnBytes(cb.signatureIndex, newPos), cb.userdata)
		}
	}
	for _, cb := range newTable.systemInit {
		if !oldTable.storage.Bits.ContainsAll(w.systemData[cb.system-1].bits) {
			cb.fn(w, handle, cb.userdata)
		}
	}

	return nil
}

// componentInSignature reports whether component c was already present in
// t's signature — used to fire init callbacks only for components that are
// genuinely new to the entity, not ones it already carried into the morph.
func componentInSignature(t *table, c ComponentHandle) bool {
	return t.signatureIndexOf(c) >= 0
}

func (w *World) enqueueDestroy(e Entity) {
	w.pushDeferred(&deferredOp{kind: deferredDestroy, handle: e})
}

func (w *World) enqueueMorph(e Entity, adds []ComponentInit, removes []ComponentHandle) {
	op := &deferredOp{kind: deferredMorph, handle: e}
	if len(adds) > 0 {
		copied := make([]ComponentInit, len(adds))
		for i, a := range adds {
			copied[i] = ComponentInit{Component: a.Component}
			if a.Data != nil {
				buf := w.deferredArena.Alloc(len(a.Data))
				copy(buf, a.Data)
				copied[i].Data = buf
			}
		}
		op.adds = copied
	}
	if len(removes) > 0 {
		op.removes = append([]ComponentHandle(nil), removes...)
	}
	w.pushDeferred(op)
}

func (w *World) pushDeferred(op *deferredOp) {
	if w.deferredHead == nil {
		w.deferredHead = op
	} else {
		w.deferredTail.next = op
	}
	w.deferredTail = op
}

// drainDeferred applies every op queued while the current table was being
// iterated, in enqueue order, then clears the queue and reclaims its arena.
// An op against an entity that is no longer valid when its turn comes (e.g.
// a morph queued after a destroy of the same entity in the same batch) is
// skipped.
func (w *World) drainDeferred() {
	for op := w.deferredHead; op != nil; op = op.next {
		if !w.isValidEntity(op.handle) {
			continue
		}
		s := &w.entities[op.handle.index-1]
		switch op.kind {
		case deferredDestroy:
			w.destroyEntityNow(op.handle.index, s)
		case deferredMorph:
			w.morphEntityNow(op.handle.index, s, op.adds, op.removes)
		}
	}
	w.deferredHead = nil
	w.deferredTail = nil
	w.deferredArena.Reset()
}

// RunSystems runs every registered system whose UpdateMask is a subset of
// mask (mask&UpdateMask == UpdateMask), over every table it matches, one
// chunk at a time.
func (w *World) RunSystems(mask uint64) {
	if w.currentUpdateTable != nil {
		panic(bark.AddTrace(fmt.Errorf("warehouse: RunSystems is not reentrant")))
	}
	w.Sync()
	w.updateMask = mask
	for i := range w.systemData {
		opts := w.registry.systemOptions(SystemHandle(i + 1))
		if opts.Update == nil && opts.PreUpdate == nil && opts.PostUpdate == nil {
			continue
		}
		if mask&opts.UpdateMask != opts.UpdateMask {
			continue
		}
		w.doRunSystem(opts, &w.systemData[i])
	}
	w.updateMask = 0
}

// RunSystem runs exactly one system, ignoring its UpdateMask gate — the
// caller is asking for it explicitly. mask is still set as the current
// update mask for the duration of the call, so PreUpdate/Update/PostUpdate
// can read it through GetCurrentUpdateMask, as under RunSystems.
func (w *World) RunSystem(mask uint64, sh SystemHandle) {
	if w.currentUpdateTable != nil {
		panic(bark.AddTrace(fmt.Errorf("warehouse: RunSystem is not reentrant")))
	}
	w.Sync()
	w.updateMask = mask
	opts := w.registry.systemOptions(sh)
	w.doRunSystem(opts, &w.systemData[sh-1])
	w.updateMask = 0
}

func (w *World) doRunSystem(opts SystemOptions, sd *systemWorldState) {
	if opts.PreUpdate != nil {
		opts.PreUpdate(w, opts.Userdata)
	}
	if opts.Update != nil {
		for _, m := range sd.matchedTables {
			w.currentUpdateTable = m.t
			n := m.t.storage.NumChunks()
			for ci := 0; ci < n; ci++ {
				size := m.t.storage.RowsPerChunk()
				if ci == n-1 {
					size = m.t.storage.LastChunkSize()
				}
				batch := Batch{
					world:   w,
					t:       m.t,
					chunk:   m.t.storage.Chunk(ci),
					offsets: m.offsets,
					sizes:   m.sizes,
					size:    size,
				}
				opts.Update(w, batch, opts.Userdata)
			}
			w.drainDeferred()
			w.currentUpdateTable = nil
		}
	}
	if opts.PostUpdate != nil {
		opts.PostUpdate(w, opts.Userdata)
	}
}

// GetCurrentUpdateMask returns the mask RunSystems or RunSystem is currently
// dispatching under, readable from inside a system callback. Outside of a
// run it is 0.
func (w *World) GetCurrentUpdateMask() uint64 {
	return w.updateMask
}

// SetPerWorldUserdata stores ud as sh's per-world userdata. The world must
// be synced against the current registry version first.
func (w *World) SetPerWorldUserdata(sh SystemHandle, ud any) {
	if w.version != w.registry.version {
		panic(bark.AddTrace(fmt.Errorf("warehouse: world is not synced")))
	}
	w.systemData[sh-1].userdata = ud
}

// GetPerWorldUserdata returns sh's per-world userdata, as last set by
// SetPerWorldUserdata or InitPerWorld.
func (w *World) GetPerWorldUserdata(sh SystemHandle) any {
	if w.version != w.registry.version {
		panic(bark.AddTrace(fmt.Errorf("warehouse: world is not synced")))
	}
	return w.systemData[sh-1].userdata
}

// Destroy fires CleanupPerEntity and component Cleanup for every entity
// still live at teardown (reverse system cleanup then reverse component
// cleanup, exactly as destroyEntityNow would for each, but without the
// swap-remove/free-list bookkeeping since the whole world is going away),
// then every registered system's CleanupPerWorld hook in reverse
// registration order, then releases the world's resources for the host GC.
func (w *World) Destroy() {
	for idx := range w.entities {
		s := &w.entities[idx]
		if s.table == nil {
			continue
		}
		t := s.table
		pos := s.pos
		handle := Entity{index: uint32(idx + 1), generation: s.generation}

		for i := len(t.systemCleanup) - 1; i >= 0; i-- {
			cb := t.systemCleanup[i]
			cb.fn(w, handle, cb.userdata)
		}
		for i := len(t.componentCleanup) - 1; i >= 0; i-- {
			cb := t.componentCleanup[i]
			cb.fn(w, handle, t.storage.ColumnBytes(cb.signatureIndex, pos), cb.userdata)
		}
	}

	for i := len(w.systemData) - 1; i >= 0; i-- {
		opts := w.registry.systemOptions(SystemHandle(i + 1))
		if opts.CleanupPerWorld != nil {
			opts.CleanupPerWorld(w, opts.Userdata)
		}
	}
	for _, t := range w.tables {
		t.storage.ReleaseAll()
	}
}
