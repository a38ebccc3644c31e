/*
Package warehouse provides an archetype-based Entity-Component-System (ECS)
runtime for games and simulations.

Warehouse stores entities sharing the same component set ("signature") in a
chunked, column-oriented table: every component type is laid out as a tight
array within each chunk, so systems iterating a table stream through memory
instead of chasing pointers.

Core Concepts:

  - Entity: a stable handle (slot index, generation) identifying one object.
  - Component: a plain-data attribute, registered once with a Registry.
  - System: a callback registered with a Registry, matched against every
    table whose signature is a superset of the system's required components.
  - World: one live instance of storage, synced lazily against its Registry.
  - Batch: a system's view over exactly one chunk of one matched table.

Basic Usage:

	registry := warehouse.NewRegistry()

	var positionHandle warehouse.ComponentHandle
	position := warehouse.RegisterComponent[Position](registry, &positionHandle, warehouse.ComponentOptions{})

	var velocityHandle warehouse.ComponentHandle
	velocity := warehouse.RegisterComponent[Velocity](registry, &velocityHandle, warehouse.ComponentOptions{})

	var moveHandle warehouse.SystemHandle
	registry.RegisterSystem(&moveHandle, warehouse.SystemOptions{
		MatchComponents: []warehouse.ComponentHandle{positionHandle, velocityHandle},
		UpdateMask:      1,
		Update: func(w *warehouse.World, b warehouse.Batch, _ any) {
			for i := 0; i < b.Size(); i++ {
				pos := warehouse.ComponentInBatch[Position](b, 0, i)
				vel := warehouse.ComponentInBatch[Velocity](b, 1, i)
				pos.X += vel.X
				pos.Y += vel.Y
			}
		},
	})

	world := warehouse.NewWorld(registry, warehouse.WorldOptions{})

	e, _ := world.CreateEntity(position.Init(Position{}), velocity.Init(Velocity{X: 1}))
	_ = e

	world.RunSystems(1)

Warehouse's core (registry, world, archetype tables) has no concurrency of
its own: every public call runs to completion on the calling goroutine.
Mutations issued from inside an iterating system are deferred and drained
between per-table iterations, so systems never observe a table changing
shape mid-iteration.
*/
package warehouse
