package vdom

import "testing"

type testComp struct{ name string }

func (c *testComp) ComponentName() string { return c.name }

func TestIsSameVNodeType(t *testing.T) {
	compA := &testComp{"A"}
	compB := &testComp{"B"}

	tests := []struct {
		name string
		a, b *VNode
		want bool
	}{
		{"same tag", Div(), Div(), true},
		{"different tag", Div(), Span(), false},
		{"same key", Li(Key("1")), Li(Key("1")), true},
		{"different key", Li(Key("1")), Li(Key("2")), false},
		{"keyed vs unkeyed", Li(Key("1")), Li(), false},
		{"text nodes", Text("a"), Text("b"), true},
		{"text vs comment", Text("a"), Comment("a"), false},
		{"same component", H(compA, nil), H(compA, nil), true},
		{"different component", H(compA, nil), H(compB, nil), false},
		{"nil", nil, Div(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSameVNodeType(tt.a, tt.b); got != tt.want {
				t.Errorf("IsSameVNodeType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCloneKeepsHostStateAndMergesProps(t *testing.T) {
	el := struct{}{}
	v := H("div", Props{"class": "a", "id": "x"})
	v.El = el
	v.PatchFlag = PatchClass

	c := Clone(v, Props{"class": "b", "key": "k"})
	if c == v {
		t.Fatal("Clone returned the same node")
	}
	if c.El != el {
		t.Error("clone should keep El")
	}
	if c.Props["class"] != "a b" {
		t.Errorf("class = %v, want %q", c.Props["class"], "a b")
	}
	if c.Key != "k" {
		t.Errorf("Key = %q, want k", c.Key)
	}
	if !c.PatchFlag.Has(PatchFullProps) || !c.PatchFlag.Has(PatchClass) {
		t.Errorf("PatchFlag = %v, want CLASS|FULL_PROPS", c.PatchFlag)
	}
	if v.Props["class"] != "a" {
		t.Error("Clone mutated the original props")
	}
}

func TestCloneIfMounted(t *testing.T) {
	v := Div()
	if CloneIfMounted(v) != v {
		t.Error("unmounted node should be returned as is")
	}
	v.El = 1
	if CloneIfMounted(v) == v {
		t.Error("mounted node should be cloned")
	}
}

func TestPatchFlagsString(t *testing.T) {
	tests := []struct {
		flag PatchFlags
		want string
	}{
		{PatchText, "TEXT"},
		{PatchClass | PatchProps, "CLASS|PROPS"},
		{PatchKeyedFragment, "KEYED_FRAGMENT"},
		{PatchCached, "CACHED"},
		{PatchBail, "BAIL"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := tt.flag.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int32(tt.flag), got, tt.want)
		}
	}
}

func TestPatchFlagBitValues(t *testing.T) {
	want := map[PatchFlags]int32{
		PatchText:            1,
		PatchClass:           2,
		PatchStyle:           4,
		PatchProps:           8,
		PatchFullProps:       16,
		PatchNeedHydration:   32,
		PatchStableFragment:  64,
		PatchKeyedFragment:   128,
		PatchUnkeyedFragment: 256,
		PatchNeedPatch:       512,
		PatchDynamicSlots:    1024,
		PatchDevRootFragment: 2048,
		PatchCached:          -1,
		PatchBail:            -2,
	}
	for f, v := range want {
		if int32(f) != v {
			t.Errorf("%v = %d, want %d", f, int32(f), v)
		}
	}
	if PatchBail.Has(PatchText) {
		t.Error("negative flags must not report bits")
	}
}
