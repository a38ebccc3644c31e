package warehouse

import "sort"

// TemplateHandle is a 1-based index identifying a registered entity
// template. The zero value is the null handle.
type TemplateHandle uint32

// templateDescriptor holds a template's own owned copy of its component
// inits, sorted by component handle, so CreateEntityFromTemplate never
// aliases caller-supplied byte slices across calls.
type templateDescriptor struct {
	inits []ComponentInit
}

// RegisterTemplate registers a reusable set of component inits under
// handle, appending when *handle is the null handle and replacing in place
// otherwise. Component inits are deduplicated (first occurrence wins) and
// sorted; the template keeps its own copy of every Data blob, so the caller
// is free to reuse or discard the inits slice afterwards.
func (r *Registry) RegisterTemplate(handle *TemplateHandle, inits []ComponentInit) TemplateHandle {
	seen := make(map[ComponentHandle]bool, len(inits))
	owned := make([]ComponentInit, 0, len(inits))
	for _, init := range inits {
		if seen[init.Component] {
			continue
		}
		seen[init.Component] = true
		ci := ComponentInit{Component: init.Component}
		if init.Data != nil {
			ci.Data = append([]byte(nil), init.Data...)
		}
		owned = append(owned, ci)
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].Component < owned[j].Component })

	if *handle == 0 {
		r.templates = append(r.templates, templateDescriptor{inits: owned})
		*handle = TemplateHandle(len(r.templates))
	} else {
		r.templates[*handle-1] = templateDescriptor{inits: owned}
	}
	return *handle
}

// CreateEntityFromTemplate synchronizes the world, then creates one entity
// from the template registered under handle, applying overrides on top:
// each override either replaces the template's Data for a component already
// in the template, or adds a component the template didn't carry. Returns
// InvalidTemplateError if handle was never registered.
func (w *World) CreateEntityFromTemplate(handle TemplateHandle, overrides ...ComponentInit) (Entity, error) {
	w.Sync()

	if handle == 0 || int(handle) > len(w.registry.templates) {
		return Entity{}, InvalidTemplateError{Handle: handle}
	}
	tmpl := w.registry.templates[handle-1]

	overrideByComponent := make(map[ComponentHandle]ComponentInit, len(overrides))
	for _, o := range overrides {
		overrideByComponent[o.Component] = o
	}

	merged := make([]ComponentInit, 0, len(tmpl.inits)+len(overrides))
	seen := make(map[ComponentHandle]bool, len(tmpl.inits)+len(overrides))
	for _, ci := range tmpl.inits {
		if o, ok := overrideByComponent[ci.Component]; ok {
			merged = append(merged, o)
		} else {
			merged = append(merged, ci)
		}
		seen[ci.Component] = true
	}
	for _, o := range overrides {
		if seen[o.Component] {
			continue
		}
		seen[o.Component] = true
		merged = append(merged, o)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Component < merged[j].Component })

	signature := make([]ComponentHandle, len(merged))
	for i, ci := range merged {
		signature[i] = ci.Component
	}

	t, err := w.getTable(signature)
	if err != nil {
		return Entity{}, err
	}
	return w.createEntityForTable(t, merged), nil
}
