package warehouse

// SystemHandle is a 1-based index identifying a registered system. The zero
// value is the null handle.
type SystemHandle uint32

// SystemWorldCallback runs a system's per-world init/cleanup hook.
type SystemWorldCallback func(w *World, userdata any)

// SystemEntityCallback runs a system's per-entity init/cleanup hook.
type SystemEntityCallback func(w *World, e Entity, userdata any)

// SystemUpdateCallback is invoked once per chunk of every table the system
// matches.
type SystemUpdateCallback func(w *World, b Batch, userdata any)

// SystemOptions describes a system at registration time.
type SystemOptions struct {
	// MatchComponents is the set of components an archetype's signature
	// must be a superset of for this system to run over it. Duplicates are
	// treated as a single occurrence; order fixes the index a Batch uses to
	// address each requested column.
	MatchComponents []ComponentHandle
	// UpdateMask gates which RunSystems(mask) calls include this system: it
	// runs only when mask&UpdateMask == UpdateMask (UpdateMask is a subset
	// of mask).
	UpdateMask uint64
	Userdata   any

	PreUpdate  SystemWorldCallback
	PostUpdate SystemWorldCallback
	Update     SystemUpdateCallback

	InitPerWorld    SystemWorldCallback
	CleanupPerWorld SystemWorldCallback

	InitPerEntity    SystemEntityCallback
	CleanupPerEntity SystemEntityCallback
}

type systemDescriptor struct {
	SystemOptions
}

// RegisterSystem registers options under handle, appending when *handle is
// null and overwriting in place otherwise. A fresh handle is assigned the
// new length of the systems list (not the components list — the original C
// implementation this engine is modeled on assigns the wrong list's length
// here; this is the corrected behavior).
func (r *Registry) RegisterSystem(handle *SystemHandle, options SystemOptions) SystemHandle {
	if *handle == 0 {
		r.systems = append(r.systems, systemDescriptor{options})
		*handle = SystemHandle(len(r.systems))
	} else {
		r.systems[*handle-1] = systemDescriptor{options}
	}
	r.version++
	return *handle
}

func (r *Registry) systemOptions(h SystemHandle) SystemOptions {
	return r.systems[h-1].SystemOptions
}
