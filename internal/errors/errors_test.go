package errors

import (
	"fmt"
	"strings"
	"testing"

	crdb "github.com/cockroachdb/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    ErrorCode
		wantMsg string
		wantCat Category
	}{
		{
			name:    "render function",
			code:    RenderFunction,
			wantMsg: "render function",
			wantCat: CategoryUser,
		},
		{
			name:    "lifecycle hook",
			code:    MountedHook,
			wantMsg: "mounted hook",
			wantCat: CategoryLifecycle,
		},
		{
			name:    "recursive update",
			code:    RecursiveUpdate,
			wantMsg: "maximum recursive updates exceeded",
			wantCat: CategoryScheduler,
		},
		{
			name:    "unknown code",
			code:    ErrorCode(999),
			wantMsg: "unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %v, want %v", err.Code, tt.code)
			}
		})
	}
}

func TestEveryCodeRegistered(t *testing.T) {
	for c := SetupFunction; c <= ErrorCapturedHook; c++ {
		if _, ok := Lookup(c); !ok {
			t.Errorf("code %d has no template", int(c))
		}
	}
}

func TestWrapKeepsFirstClassification(t *testing.T) {
	base := fmt.Errorf("boom")
	inner := Wrap(base, WatchCallback)
	outer := Wrap(fmt.Errorf("scheduler: %w", inner), Scheduler)

	if outer.Code != WatchCallback {
		t.Errorf("Code = %v, want %v", outer.Code, WatchCallback)
	}
	if !Is(outer, base) {
		t.Error("wrapped error should match base error")
	}
	if Wrap(nil, Scheduler) != nil {
		t.Error("Wrap(nil) should be nil")
	}
}

func TestFromPanic(t *testing.T) {
	if FromPanic(nil) != nil {
		t.Error("FromPanic(nil) should be nil")
	}

	sentinel := crdb.New("sentinel")
	if err := FromPanic(sentinel); !Is(err, sentinel) {
		t.Errorf("FromPanic(error) = %v, want wrapping sentinel", err)
	}

	err := FromPanic("index out of range")
	if !strings.Contains(err.Error(), "index out of range") {
		t.Errorf("FromPanic(string) = %q", err.Error())
	}
}

func TestCodeOf(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(DirectiveHook))
	code, ok := CodeOf(err)
	if !ok || code != DirectiveHook {
		t.Errorf("CodeOf = %v, %v; want %v, true", code, ok, DirectiveHook)
	}
	if _, ok := CodeOf(fmt.Errorf("plain")); ok {
		t.Error("CodeOf(plain) should report false")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := Wrap(fmt.Errorf("nil map"), RenderFunction).WithComponent("<App> > <List>")
	out := err.Format()

	for _, want := range []string{"ERROR render function: nil map", "in <App> > <List>", "Hint:"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four", 9)
	want := []string{"one two", "three", "four"}
	if len(lines) != len(want) {
		t.Fatalf("wrapText = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
