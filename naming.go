package warehouse

// defaultNameCacheCap bounds how many named lookups a registry keeps per
// kind (component, system, template) before NameComponent/NameSystem/
// NameTemplate start returning an error — generous enough for hand-authored
// registries, small enough to catch a runaway data-driven loader.
const defaultNameCacheCap = 4096

// NameComponent records name as an alias for h, so later callers can resolve
// it back via ComponentByName without having kept the handle around — e.g.
// a data-driven entity loader parsing component names out of a config file.
func (r *Registry) NameComponent(name string, h ComponentHandle) error {
	if r.componentNames == nil {
		r.componentNames = NewCache[ComponentHandle](defaultNameCacheCap)
	}
	_, err := r.componentNames.Register(name, h)
	return err
}

// ComponentByName resolves a name previously registered with NameComponent.
func (r *Registry) ComponentByName(name string) (ComponentHandle, bool) {
	if r.componentNames == nil {
		return 0, false
	}
	idx, ok := r.componentNames.GetIndex(name)
	if !ok {
		return 0, false
	}
	return *r.componentNames.GetItem(idx), true
}

// NameSystem records name as an alias for h.
func (r *Registry) NameSystem(name string, h SystemHandle) error {
	if r.systemNames == nil {
		r.systemNames = NewCache[SystemHandle](defaultNameCacheCap)
	}
	_, err := r.systemNames.Register(name, h)
	return err
}

// SystemByName resolves a name previously registered with NameSystem.
func (r *Registry) SystemByName(name string) (SystemHandle, bool) {
	if r.systemNames == nil {
		return 0, false
	}
	idx, ok := r.systemNames.GetIndex(name)
	if !ok {
		return 0, false
	}
	return *r.systemNames.GetItem(idx), true
}

// NameTemplate records name as an alias for h.
func (r *Registry) NameTemplate(name string, h TemplateHandle) error {
	if r.templateNames == nil {
		r.templateNames = NewCache[TemplateHandle](defaultNameCacheCap)
	}
	_, err := r.templateNames.Register(name, h)
	return err
}

// TemplateByName resolves a name previously registered with NameTemplate —
// the entry point a data-driven spawner uses to create an entity from a
// template named in external data instead of a compiled-in handle.
func (r *Registry) TemplateByName(name string) (TemplateHandle, bool) {
	if r.templateNames == nil {
		return 0, false
	}
	idx, ok := r.templateNames.GetIndex(name)
	if !ok {
		return 0, false
	}
	return *r.templateNames.GetItem(idx), true
}
