package reactive

import "testing"

func TestMapPerKeyTracking(t *testing.T) {
	m := NewMap(map[string]any{"foo": 1, "bar": 2})
	fooRuns := 0
	e := NewEffect(func() {
		m.Get("foo")
		fooRuns++
	})
	e.Run()

	m.Set("bar", 3)
	if fooRuns != 1 {
		t.Errorf("foo effect ran on bar change: runs = %d", fooRuns)
	}
	m.Set("foo", 1)
	if fooRuns != 1 {
		t.Errorf("foo effect ran on same value: runs = %d", fooRuns)
	}
	m.Set("foo", 5)
	if fooRuns != 2 {
		t.Errorf("runs = %d, want 2", fooRuns)
	}
}

func TestMapKeySetTracking(t *testing.T) {
	m := NewMap(nil)
	var lens []int
	e := NewEffect(func() { lens = append(lens, m.Len()) })
	e.Run()

	m.Set("a", 1)
	m.Set("a", 2)
	m.Delete("a")
	m.Delete("missing")

	want := []int{0, 1, 0}
	if len(lens) != len(want) {
		t.Fatalf("lens = %v, want %v", lens, want)
	}
	for i := range want {
		if lens[i] != want[i] {
			t.Errorf("lens[%d] = %d, want %d", i, lens[i], want[i])
		}
	}
}

func TestMapHasTracksMissingKey(t *testing.T) {
	m := NewMap(nil)
	runs := 0
	e := NewEffect(func() {
		m.Has("x")
		runs++
	})
	e.Run()
	m.Set("x", true)
	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
}

func TestMapKeysSortedAndRawUntracked(t *testing.T) {
	m := NewMap(map[string]any{"b": 1, "a": 2})
	keys := m.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("Keys() = %v", keys)
	}

	raw := m.Raw()
	raw["c"] = 3
	if m.Has("c") {
		t.Error("Raw() should return a copy")
	}
}
