package warehouse

import "testing"

func TestNameComponentRoundTrip(t *testing.T) {
	r := NewRegistry()
	var posHandle ComponentHandle
	pos := RegisterComponent[Position](r, &posHandle, ComponentOptions{})

	if err := r.NameComponent("position", pos.Handle); err != nil {
		t.Fatalf("NameComponent() error = %v", err)
	}

	got, ok := r.ComponentByName("position")
	if !ok {
		t.Fatalf("ComponentByName() did not find a registered name")
	}
	if got != pos.Handle {
		t.Errorf("ComponentByName() = %d, want %d", got, pos.Handle)
	}

	if _, ok := r.ComponentByName("nonexistent"); ok {
		t.Errorf("ComponentByName() should not find an unregistered name")
	}
}

func TestNameSystemAndTemplateRoundTrip(t *testing.T) {
	r := NewRegistry()

	var sh SystemHandle
	r.RegisterSystem(&sh, SystemOptions{})
	if err := r.NameSystem("mover", sh); err != nil {
		t.Fatalf("NameSystem() error = %v", err)
	}
	got, ok := r.SystemByName("mover")
	if !ok || got != sh {
		t.Errorf("SystemByName() = (%d, %v), want (%d, true)", got, ok, sh)
	}

	var th TemplateHandle
	r.RegisterTemplate(&th, nil)
	if err := r.NameTemplate("grunt", th); err != nil {
		t.Fatalf("NameTemplate() error = %v", err)
	}
	gotT, ok := r.TemplateByName("grunt")
	if !ok || gotT != th {
		t.Errorf("TemplateByName() = (%d, %v), want (%d, true)", gotT, ok, th)
	}
}

func TestNamingDrivenEntitySpawn(t *testing.T) {
	// The pattern NameTemplate/NameComponent exist for: a data-driven loader
	// that only has string names, not compiled-in handles, until runtime.
	r := NewRegistry()
	var posHandle ComponentHandle
	pos := RegisterComponent[Position](r, &posHandle, ComponentOptions{})

	var tmpl TemplateHandle
	r.RegisterTemplate(&tmpl, []ComponentInit{pos.Init(Position{X: 3, Y: 4})})
	if err := r.NameTemplate("grunt", tmpl); err != nil {
		t.Fatalf("NameTemplate() error = %v", err)
	}

	w := NewWorld(r, WorldOptions{})

	handle, ok := r.TemplateByName("grunt")
	if !ok {
		t.Fatalf("TemplateByName() should resolve a name registered before the world existed")
	}
	e, err := w.CreateEntityFromTemplate(handle)
	if err != nil {
		t.Fatalf("CreateEntityFromTemplate() error = %v", err)
	}
	got := pos.Get(w, e)
	if got == nil || got.X != 3 || got.Y != 4 {
		t.Errorf("entity spawned via name-resolved template has wrong data, got %+v", got)
	}
}

func TestNameComponentCapacityLimit(t *testing.T) {
	r := NewRegistry()
	r.componentNames = NewCache[ComponentHandle](1)

	var aHandle, bHandle ComponentHandle
	a := RegisterComponent[Position](r, &aHandle, ComponentOptions{})
	b := RegisterComponent[Velocity](r, &bHandle, ComponentOptions{})

	if err := r.NameComponent("a", a.Handle); err != nil {
		t.Fatalf("first NameComponent() should succeed, error = %v", err)
	}
	if err := r.NameComponent("b", b.Handle); err == nil {
		t.Errorf("NameComponent() should fail once the name cache is at capacity")
	}
}
