package reactive

import "testing"

func TestSignalGetSet(t *testing.T) {
	s := NewSignal(1)
	if got := s.Get(); got != 1 {
		t.Errorf("Get() = %d, want 1", got)
	}
	s.Set(2)
	if got := s.Peek(); got != 2 {
		t.Errorf("Peek() = %d, want 2", got)
	}
	s.Update(func(v int) int { return v * 10 })
	if got := s.Peek(); got != 20 {
		t.Errorf("Update result = %d, want 20", got)
	}
}

func TestSignalNotifiesOnlyOnChange(t *testing.T) {
	s := NewSignal("a")
	runs := 0
	e := NewEffect(func() {
		s.Get()
		runs++
	})
	e.Run()

	s.Set("a")
	if runs != 1 {
		t.Errorf("runs after same value = %d, want 1", runs)
	}
	s.Set("b")
	if runs != 2 {
		t.Errorf("runs after change = %d, want 2", runs)
	}
}

func TestSignalPeekDoesNotTrack(t *testing.T) {
	s := NewSignal(0)
	runs := 0
	e := NewEffect(func() {
		s.Peek()
		runs++
	})
	e.Run()
	s.Set(1)
	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
}

func TestSignalWithEquals(t *testing.T) {
	s := NewSignal([]int{1}).WithEquals(func(a, b []int) bool { return len(a) == len(b) })
	runs := 0
	e := NewEffect(func() {
		s.Get()
		runs++
	})
	e.Run()

	s.Set([]int{2})
	if runs != 1 {
		t.Errorf("runs after equal-length slice = %d, want 1", runs)
	}
	s.Set([]int{1, 2})
	if runs != 2 {
		t.Errorf("runs after longer slice = %d, want 2", runs)
	}
}

func TestComputedCachesUntilSourceChanges(t *testing.T) {
	s := NewSignal(2)
	calls := 0
	c := NewComputed(func() int {
		calls++
		return s.Get() * 2
	})

	if c.Get() != 4 || c.Get() != 4 {
		t.Fatal("unexpected computed value")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	s.Set(3)
	if got := c.Get(); got != 6 {
		t.Errorf("Get() = %d, want 6", got)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestComputedPropagatesToEffect(t *testing.T) {
	s := NewSignal(1)
	c := NewComputed(func() int { return s.Get() + 1 })
	var seen []int
	e := NewEffect(func() { seen = append(seen, c.Get()) })
	e.Run()

	s.Set(5)
	if len(seen) != 2 || seen[1] != 6 {
		t.Errorf("seen = %v, want [2 6]", seen)
	}
}

func TestHasChanged(t *testing.T) {
	fn := func() {}
	slice := []int{1, 2}
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"same int", 1, 1, false},
		{"different int", 1, 2, true},
		{"different types", 1, int64(1), true},
		{"nil nil", nil, nil, false},
		{"nil value", nil, 0, true},
		{"same func", fn, fn, false},
		{"same slice", slice, slice, false},
		{"new slice", slice, []int{1, 2}, true},
		{"struct", struct{ A int }{1}, struct{ A int }{1}, false},
		{"uncomparable struct", struct{ A any }{[]int{1}}, struct{ A any }{[]int{1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasChanged(tt.a, tt.b); got != tt.want {
				t.Errorf("HasChanged(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
