package warehouse

// inactiveTag is a reserved, zero-sized marker component every Registry
// registers for itself at construction. The activate/deactivate primitive
// spec.md's own source leaves undesigned ("an implementer should either
// omit them or design them as a sparse inactive tag component added via
// morph") is built on top of it: DeactivateEntity adds the tag via morph,
// ActivateEntity removes it, and RunSystems/RunSystem skip every table that
// carries it when dispatching Update — an inactive entity keeps its data
// and its per-entity init/cleanup hooks, it just stops being stepped.
type inactiveTag struct{}

// DeactivateEntity morphs e to carry the registry's reserved inactive tag,
// removing it from every system's Update dispatch until reactivated. Its
// component data and validity are unaffected.
func (w *World) DeactivateEntity(e Entity) error {
	return w.MorphEntity(e, []ComponentInit{{Component: w.registry.inactiveHandle}}, nil)
}

// ActivateEntity morphs e to drop the inactive tag, restoring it to every
// system's Update dispatch. Activating an already-active entity is a no-op.
func (w *World) ActivateEntity(e Entity) error {
	return w.MorphEntity(e, nil, []ComponentHandle{w.registry.inactiveHandle})
}

// IsEntityActive reports whether e is valid and not currently carrying the
// inactive tag.
func (w *World) IsEntityActive(e Entity) bool {
	if !w.isValidEntity(e) {
		return false
	}
	s := &w.entities[e.index-1]
	return s.table.signatureIndexOf(w.registry.inactiveHandle) < 0
}
