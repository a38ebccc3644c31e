package warehouse

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/TheBitDrifter/bark"
)

// ComponentHandle is a 1-based index identifying a registered component
// type. The zero value is the null handle.
type ComponentHandle uint32

// ComponentCallback runs a component's init or cleanup hook against the raw
// byte storage of one entity's component value.
type ComponentCallback func(w *World, e Entity, data []byte, userdata any)

// ComponentOptions describes a component at registration time. Size and
// Alignment are immutable after first registration — only the callbacks may
// be reassigned on a re-registration call.
type ComponentOptions struct {
	Size      int
	Alignment int
	Init      ComponentCallback
	Cleanup   ComponentCallback
	Userdata  any
}

type componentDescriptor struct {
	ComponentOptions
}

// RegisterComponent registers options under handle, appending a new entry
// when *handle is the null handle and overwriting in place otherwise. It
// bumps the registry version either way. Alignment must be greater than
// zero; a zero alignment is a programmer error and panics.
func (r *Registry) RegisterComponent(handle *ComponentHandle, options ComponentOptions) ComponentHandle {
	if options.Alignment <= 0 {
		panic(bark.AddTrace(fmt.Errorf("warehouse: component alignment must be > 0")))
	}
	if *handle == 0 {
		r.components = append(r.components, componentDescriptor{options})
		*handle = ComponentHandle(len(r.components))
	} else {
		r.components[*handle-1] = componentDescriptor{options}
	}
	r.version++
	return *handle
}

func (r *Registry) componentOptions(h ComponentHandle) ComponentOptions {
	return r.components[h-1].ComponentOptions
}

// ComponentInit pairs a component handle with an optional owned data blob
// to seed a newly created row. A nil Data zero-fills the column.
type ComponentInit struct {
	Component ComponentHandle
	Data      []byte
}

// Component is a typed handle over a registered component, generated via
// RegisterComponent[T]. It provides the ergonomic entry points that convert
// between Go values and the type-erased byte columns the engine stores.
type Component[T any] struct {
	Handle ComponentHandle
}

// RegisterComponent registers a component of Go type T, deriving its size
// and alignment via reflection, and returns a typed accessor bound to the
// assigned handle.
func RegisterComponent[T any](r *Registry, handle *ComponentHandle, options ComponentOptions) Component[T] {
	var zero T
	t := reflect.TypeOf(zero)
	options.Size = int(reflect.TypeOf(zero).Size())
	if t != nil && t.Align() > 0 {
		options.Alignment = t.Align()
	}
	if options.Alignment <= 0 {
		options.Alignment = 1
	}
	r.RegisterComponent(handle, options)
	return Component[T]{Handle: *handle}
}

// Init builds a ComponentInit carrying a copy of value, for use with
// CreateEntity, MorphEntity or RegisterTemplate.
func (c Component[T]) Init(value T) ComponentInit {
	data := make([]byte, unsafe.Sizeof(value))
	*(*T)(unsafe.Pointer(&data[0])) = value
	return ComponentInit{Component: c.Handle, Data: data}
}

// Zero builds a ComponentInit that zero-fills the column instead of copying
// a value — equivalent to omitting Data entirely.
func (c Component[T]) Zero() ComponentInit {
	return ComponentInit{Component: c.Handle}
}

// Get returns a pointer to T's value on entity e, or nil if e is invalid or
// doesn't carry this component.
func (c Component[T]) Get(w *World, e Entity) *T {
	data := w.GetComponentInEntity(e, c.Handle)
	if data == nil {
		return nil
	}
	return (*T)(unsafe.Pointer(&data[0]))
}

// ComponentInBatch returns a pointer to the matchIndex-th requested
// component's value for the row-th entity in batch b. matchIndex is the
// position of the component in the system's declared MatchComponents list,
// not its signature position.
func ComponentInBatch[T any](b Batch, matchIndex, row int) *T {
	data := b.Components(matchIndex)
	var zero T
	size := int(unsafe.Sizeof(zero))
	start := row * size
	return (*T)(unsafe.Pointer(&data[start]))
}
