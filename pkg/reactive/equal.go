package reactive

import "reflect"

// HasChanged reports whether next should be treated as a new value.
//
// Comparable values are compared with ==. Functions, slices, maps, channels
// and pointers are compared by identity, so a freshly built slice always
// counts as a change even when its elements are equal.
func HasChanged(prev, next any) bool {
	return !same(prev, next)
}

func same(a, b any) (eq bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	switch ta.Kind() {
	case reflect.Func, reflect.Slice, reflect.Map, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
		if ta.Kind() == reflect.Slice && va.Len() != vb.Len() {
			return false
		}
		return va.Pointer() == vb.Pointer()
	}
	if !ta.Comparable() {
		return false
	}
	// Structs holding uncomparable dynamic values panic on ==.
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
