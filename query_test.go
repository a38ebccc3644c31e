package warehouse

import "testing"

// TestQueryFiltering tests the basic query filtering capabilities.
func TestQueryFiltering(t *testing.T) {
	r := NewRegistry()
	var posHandle, velHandle, healthHandle ComponentHandle
	pos := RegisterComponent[Position](r, &posHandle, ComponentOptions{})
	vel := RegisterComponent[Velocity](r, &velHandle, ComponentOptions{})
	health := RegisterComponent[Health](r, &healthHandle, ComponentOptions{})

	type entitySetup struct {
		inits []ComponentInit
		count int
	}

	tests := []struct {
		name            string
		entitySetups    []entitySetup
		build           func(q Query) QueryNode
		expectedMatches int
	}{
		{
			name: "And query matches exact",
			entitySetups: []entitySetup{
				{[]ComponentInit{pos.Zero(), vel.Zero()}, 5},
				{[]ComponentInit{pos.Zero()}, 10},
				{[]ComponentInit{vel.Zero()}, 15},
			},
			build: func(q Query) QueryNode {
				return q.And(pos.Handle, vel.Handle)
			},
			expectedMatches: 5,
		},
		{
			name: "Or query matches either",
			entitySetups: []entitySetup{
				{[]ComponentInit{pos.Zero(), vel.Zero()}, 5},
				{[]ComponentInit{pos.Zero()}, 10},
				{[]ComponentInit{vel.Zero()}, 15},
			},
			build: func(q Query) QueryNode {
				return q.Or(pos.Handle, vel.Handle)
			},
			expectedMatches: 30,
		},
		{
			name: "Not query excludes",
			entitySetups: []entitySetup{
				{[]ComponentInit{pos.Zero(), vel.Zero()}, 5},
				{[]ComponentInit{pos.Zero()}, 10},
				{[]ComponentInit{vel.Zero()}, 15},
				{[]ComponentInit{health.Zero()}, 20},
			},
			build: func(q Query) QueryNode {
				return q.Not(vel.Handle)
			},
			expectedMatches: 30, // 10 + 20
		},
		{
			name: "Complex query",
			entitySetups: []entitySetup{
				{[]ComponentInit{pos.Zero(), vel.Zero(), health.Zero()}, 5},
				{[]ComponentInit{pos.Zero(), vel.Zero()}, 10},
				{[]ComponentInit{pos.Zero(), health.Zero()}, 15},
				{[]ComponentInit{vel.Zero(), health.Zero()}, 20},
				{[]ComponentInit{pos.Zero()}, 25},
				{[]ComponentInit{vel.Zero()}, 30},
				{[]ComponentInit{health.Zero()}, 35},
			},
			build: func(q Query) QueryNode {
				left := q.And(pos.Handle, vel.Handle)
				right := q.And(pos.Handle, health.Handle)
				return q.Or(left, right)
			},
			expectedMatches: 30, // (P AND V) OR (P AND H) = 10 + 15 + 5 (counted once)
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorld(r, WorldOptions{})
			for _, setup := range tt.entitySetups {
				for i := 0; i < setup.count; i++ {
					if _, err := w.CreateEntity(setup.inits...); err != nil {
						t.Fatalf("CreateEntity() error = %v", err)
					}
				}
			}

			query := NewQuery()
			node := tt.build(query)
			cursor := NewCursor(node, w)

			matchCount := 0
			for range cursor.Entities() {
				matchCount++
			}

			if matchCount != tt.expectedMatches {
				t.Errorf("Query matched %d entities, want %d", matchCount, tt.expectedMatches)
			}
		})
	}
}

// TestQueryWithCursor tests the cursor-based entity iteration.
func TestQueryWithCursor(t *testing.T) {
	r := NewRegistry()
	var posHandle, velHandle, healthHandle ComponentHandle
	pos := RegisterComponent[Position](r, &posHandle, ComponentOptions{})
	vel := RegisterComponent[Velocity](r, &velHandle, ComponentOptions{})
	health := RegisterComponent[Health](r, &healthHandle, ComponentOptions{})

	tests := []struct {
		name            string
		entityTypes     [][]ComponentInit
		queryComponents []ComponentHandle
		expectedCount   int
	}{
		{
			name: "Query with position",
			entityTypes: [][]ComponentInit{
				{pos.Zero()},
				{pos.Zero(), vel.Zero()},
				{vel.Zero()},
			},
			queryComponents: []ComponentHandle{pos.Handle},
			expectedCount:   20,
		},
		{
			name: "Query with position and velocity",
			entityTypes: [][]ComponentInit{
				{pos.Zero()},
				{pos.Zero(), vel.Zero()},
				{vel.Zero()},
			},
			queryComponents: []ComponentHandle{pos.Handle, vel.Handle},
			expectedCount:   10,
		},
		{
			name: "Query with no matches",
			entityTypes: [][]ComponentInit{
				{pos.Zero()},
				{vel.Zero()},
			},
			queryComponents: []ComponentHandle{health.Handle},
			expectedCount:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorld(r, WorldOptions{})
			for _, set := range tt.entityTypes {
				for i := 0; i < 10; i++ {
					if _, err := w.CreateEntity(set...); err != nil {
						t.Fatalf("CreateEntity() error = %v", err)
					}
				}
			}

			query := NewQuery()
			node := query.And(tt.queryComponents)

			cursor := NewCursor(node, w)
			count1 := 0
			for range cursor.Entities() {
				count1++
			}

			cursor2 := NewCursor(node, w)
			count2 := cursor2.TotalMatched()

			if count1 != count2 {
				t.Errorf("Cursor counts inconsistent: %d vs %d", count1, count2)
			}
			if count1 != tt.expectedCount {
				t.Errorf("Query matched %d entities, want %d", count1, tt.expectedCount)
			}
		})
	}
}

// TestQueryComponentAccess tests accessing and mutating component data
// through a query-driven cursor.
func TestQueryComponentAccess(t *testing.T) {
	r := NewRegistry()
	var posHandle, velHandle ComponentHandle
	pos := RegisterComponent[Position](r, &posHandle, ComponentOptions{})
	vel := RegisterComponent[Velocity](r, &velHandle, ComponentOptions{})
	w := NewWorld(r, WorldOptions{})

	for i := 0; i < 10; i++ {
		p := Position{X: float64(i), Y: float64(i * 2)}
		v := Velocity{X: float64(i) * 0.1, Y: float64(i) * 0.2}
		if _, err := w.CreateEntity(pos.Init(p), vel.Init(v)); err != nil {
			t.Fatalf("CreateEntity() error = %v", err)
		}
	}

	query := NewQuery()
	node := query.And(pos.Handle, vel.Handle)
	cursor := NewCursor(node, w)

	for e := range cursor.Entities() {
		p := pos.Get(w, e)
		v := vel.Get(w, e)
		p.X += v.X
		p.Y += v.Y
	}

	cursor2 := NewCursor(node, w)
	for e := range cursor2.Entities() {
		p := pos.Get(w, e)
		v := vel.Get(w, e)
		if !almostEqual(p.X-v.X, v.X*10, 0.0001) {
			t.Errorf("position X %v with velocity %v doesn't match expected pattern", p.X, v.X)
		}
	}
}

func almostEqual(a, b, epsilon float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < epsilon
}
