package warehouse

// Registry is the process-wide catalog of component and system descriptors
// shared by every World attached to it. Registration is idempotent per
// handle and bumps Version on every call; a World reconciles against that
// counter lazily, at the start of its next public call.
type Registry struct {
	components []componentDescriptor
	systems    []systemDescriptor
	templates  []templateDescriptor
	version    uint64

	componentNames *Cache[ComponentHandle]
	systemNames    *Cache[SystemHandle]
	templateNames  *Cache[TemplateHandle]

	inactiveHandle ComponentHandle
}

// NewRegistry creates an empty registry, reserving the handle
// DeactivateEntity/ActivateEntity use to tag a sleeping entity.
func NewRegistry() *Registry {
	r := &Registry{}
	RegisterComponent[inactiveTag](r, &r.inactiveHandle, ComponentOptions{})
	return r
}

// Version returns the registry's current version counter.
func (r *Registry) Version() uint64 {
	return r.version
}
