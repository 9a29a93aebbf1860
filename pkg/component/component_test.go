package component

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/scheduler"
	"github.com/vango-dev/vrt/pkg/vdom"
)

func newTestApp(t *testing.T) (*AppContext, *scheduler.Loop) {
	t.Helper()
	loop := scheduler.NewLoop()
	app := NewAppContext(scheduler.New(loop), slog.New(slog.NewTextHandler(io.Discard, nil)))
	return app, loop
}

func mountInstance(t *testing.T, def *Definition, props vdom.Props, parent *Instance, app *AppContext) *Instance {
	t.Helper()
	v := vdom.NewComponent(def, props, nil)
	inst := NewInstance(v, parent, app, nil)
	v.Instance = inst
	SetupComponent(inst)
	return inst
}

func emptyRender(*Ctx) *vdom.VNode { return vdom.Div() }

func TestPropsAttrsSplit(t *testing.T) {
	app, _ := newTestApp(t)
	def := &Definition{
		Name:   "Split",
		Props:  PropsOptions{"foo": {}},
		Emits:  []string{"baz"},
		Render: emptyRender,
	}
	inst := mountInstance(t, def, vdom.Props{"foo": 1, "bar": 2, "onBaz": func() {}}, nil, app)

	assert.Equal(t, map[string]any{"foo": 1}, inst.Props().Raw())
	assert.Equal(t, vdom.Props{"bar": 2}, inst.attrs)
}

func TestDeclaredPropsAlwaysPresent(t *testing.T) {
	app, _ := newTestApp(t)
	def := &Definition{Props: PropsOptions{"a": {}, "b": {}}, Render: emptyRender}
	inst := mountInstance(t, def, nil, nil, app)

	assert.True(t, inst.Props().Has("a"))
	assert.True(t, inst.Props().Has("b"))
	assert.Nil(t, inst.Props().Get("a"))
}

func TestPropCasting(t *testing.T) {
	app, _ := newTestApp(t)
	def := &Definition{
		Props: PropsOptions{
			"disabled": {Type: PropBool},
			"label":    {Type: PropString, Default: "untitled"},
			"mode":     {Type: PropBool | PropString},
			"loose":    {Type: PropBool | PropString, StringFirst: true},
			"items":    {DefaultFunc: func(map[string]any) any { return []string{"x"} }},
		},
		Render: emptyRender,
	}

	inst := mountInstance(t, def, vdom.Props{"mode": "", "loose": ""}, nil, app)
	props := inst.Props().Raw()
	assert.Equal(t, false, props["disabled"])
	assert.Equal(t, "untitled", props["label"])
	assert.Equal(t, true, props["mode"])
	assert.Equal(t, "", props["loose"])
	assert.Equal(t, []string{"x"}, props["items"])

	inst = mountInstance(t, def, vdom.Props{"disabled": "disabled"}, nil, app)
	assert.Equal(t, true, inst.Props().Get("disabled"))
}

func TestPropNameMatching(t *testing.T) {
	app, _ := newTestApp(t)
	def := &Definition{Props: PropsOptions{"fooBar": {}}, Render: emptyRender}

	inst := mountInstance(t, def, vdom.Props{"foo-bar": 1}, nil, app)
	assert.Equal(t, 1, inst.Props().Get("fooBar"))

	inst = mountInstance(t, def, vdom.Props{"FOOBAR": 2}, nil, app)
	assert.Equal(t, 2, inst.Props().Get("fooBar"))
	assert.Empty(t, inst.attrs)
}

func TestUpdatePropsFull(t *testing.T) {
	app, _ := newTestApp(t)
	def := &Definition{Props: PropsOptions{"foo": {}}, Render: emptyRender}
	oldRaw := vdom.Props{"foo": 1, "bar": 2}
	inst := mountInstance(t, def, oldRaw, nil, app)

	var renders int
	e := reactive.NewEffect(func() {
		inst.Attrs()
		renders++
	})
	e.Run()

	newRaw := vdom.Props{"foo": 3}
	inst.VNode = vdom.NewComponent(def, newRaw, nil)
	changed := inst.UpdateProps(newRaw, oldRaw, false)

	assert.True(t, changed)
	assert.Equal(t, 3, inst.Props().Get("foo"))
	assert.Empty(t, inst.attrs)
	assert.Equal(t, 2, renders, "attrs readers re-run when attrs change")
}

func TestUpdatePropsResetsRemovedProp(t *testing.T) {
	app, _ := newTestApp(t)
	def := &Definition{Props: PropsOptions{"size": {Default: 10}}, Render: emptyRender}
	oldRaw := vdom.Props{"size": 20}
	inst := mountInstance(t, def, oldRaw, nil, app)
	require.Equal(t, 20, inst.Props().Get("size"))

	inst.VNode = vdom.NewComponent(def, nil, nil)
	inst.UpdateProps(nil, oldRaw, false)
	assert.Equal(t, 10, inst.Props().Get("size"))
}

func TestUpdatePropsResetsPropPassedInOtherCase(t *testing.T) {
	app, _ := newTestApp(t)
	def := &Definition{Props: PropsOptions{"foo": {}}, Render: emptyRender}
	oldRaw := vdom.Props{"FOO": 1}
	inst := mountInstance(t, def, oldRaw, nil, app)
	require.Equal(t, 1, inst.Props().Get("foo"))

	newRaw := vdom.Props{"bar": 2}
	inst.VNode = vdom.NewComponent(def, newRaw, nil)
	inst.UpdateProps(newRaw, oldRaw, false)

	assert.Nil(t, inst.Props().Get("foo"))
	assert.Equal(t, 2, inst.attrs["bar"])
}

func TestUpdatePropsOptimized(t *testing.T) {
	app, _ := newTestApp(t)
	def := &Definition{Props: PropsOptions{"foo": {}, "other": {}}, Render: emptyRender}
	oldRaw := vdom.Props{"foo": 1, "other": 1, "title": "a"}
	inst := mountInstance(t, def, oldRaw, nil, app)

	newRaw := vdom.Props{"foo": 2, "other": 2, "title": "b"}
	inst.VNode = vdom.ComponentVNode(def, newRaw, nil, vdom.PatchProps, []string{"foo", "title"})
	changed := inst.UpdateProps(newRaw, oldRaw, true)

	assert.True(t, changed)
	assert.Equal(t, 2, inst.Props().Get("foo"))
	assert.Equal(t, 1, inst.Props().Get("other"), "props outside DynamicProps are not examined")
	assert.Equal(t, "b", inst.attrs["title"])
}

func TestEmit(t *testing.T) {
	app, _ := newTestApp(t)
	var got []any
	var onceCalls int
	props := vdom.Props{
		"onChange":      func(v any) { got = append(got, v) },
		"onUpdateValue": func(args ...any) { got = append(got, args...) },
		"onSaveOnce":    func() { onceCalls++ },
	}
	def := &Definition{Emits: []string{"change", "update-value", "save"}, Render: emptyRender}
	inst := mountInstance(t, def, props, nil, app)

	inst.Emit("change", 1)
	inst.Emit("update-value", "a", "b")
	inst.Emit("save")
	inst.Emit("save")

	assert.Equal(t, []any{1, "a", "b"}, got)
	assert.Equal(t, 1, onceCalls)
	assert.Empty(t, inst.attrs, "declared listeners are not attrs")
}

func TestEmitHandlerErrorReported(t *testing.T) {
	app, _ := newTestApp(t)
	var codes []errors.ErrorCode
	app.Config.ErrorHandler = func(err error, _ *Instance, code errors.ErrorCode) {
		codes = append(codes, code)
	}
	def := &Definition{Emits: []string{"boom"}, Render: emptyRender}
	inst := mountInstance(t, def, vdom.Props{"onBoom": func() { panic("handler") }}, nil, app)

	inst.Emit("boom")
	assert.Equal(t, []errors.ErrorCode{errors.ComponentEventHandler}, codes)
}

func TestProvideInject(t *testing.T) {
	app, _ := newTestApp(t)
	app.Provides.Set("theme", "dark")

	var parentSawOwn, childValue, childTheme any
	var parentFound bool
	parentDef := &Definition{
		Setup: func(*Ctx) any {
			Provide("user", "ada")
			parentSawOwn, parentFound = Inject("user")
			return nil
		},
		Render: emptyRender,
	}
	childDef := &Definition{
		Setup: func(*Ctx) any {
			childValue, _ = Inject("user")
			childTheme = InjectOr("theme", "light")
			return nil
		},
		Render: emptyRender,
	}

	parent := mountInstance(t, parentDef, nil, nil, app)
	mountInstance(t, childDef, nil, parent, app)

	assert.False(t, parentFound, "an instance does not see its own provides")
	assert.Nil(t, parentSawOwn)
	assert.Equal(t, "ada", childValue)
	assert.Equal(t, "dark", childTheme)
	assert.NotSame(t, app.Provides, parent.Provides)
}

func TestErrorCapturedStopsPropagation(t *testing.T) {
	app, _ := newTestApp(t)
	var appErrors int
	app.Config.ErrorHandler = func(error, *Instance, errors.ErrorCode) { appErrors++ }

	var captured []errors.ErrorCode
	parentDef := &Definition{
		Setup: func(*Ctx) any {
			OnErrorCaptured(func(_ error, _ *Instance, code errors.ErrorCode) bool {
				captured = append(captured, code)
				return true
			})
			return nil
		},
		Render: emptyRender,
	}
	childDef := &Definition{
		Setup:  func(*Ctx) any { panic("setup failed") },
		Render: emptyRender,
	}

	parent := mountInstance(t, parentDef, nil, nil, app)
	mountInstance(t, childDef, nil, parent, app)

	assert.Equal(t, []errors.ErrorCode{errors.SetupFunction}, captured)
	assert.Zero(t, appErrors)
}

func TestUnhandledErrorReachesAppHandler(t *testing.T) {
	app, _ := newTestApp(t)
	var got []errors.ErrorCode
	var source *Instance
	app.Config.ErrorHandler = func(_ error, inst *Instance, code errors.ErrorCode) {
		got = append(got, code)
		source = inst
	}
	def := &Definition{
		Name:  "Broken",
		Setup: func(*Ctx) any { panic("nope") },
	}
	inst := mountInstance(t, def, nil, nil, app)

	assert.Equal(t, []errors.ErrorCode{errors.SetupFunction}, got)
	assert.Same(t, inst, source)
	assert.True(t, inst.HasRender(), "a broken setup still gets a placeholder render")
}

func TestThrowUnhandledErrors(t *testing.T) {
	app, _ := newTestApp(t)
	app.Config.ThrowUnhandledErrors = true
	def := &Definition{Setup: func(*Ctx) any { panic("nope") }, Render: emptyRender}

	assert.Panics(t, func() { mountInstance(t, def, nil, nil, app) })
}

func TestLifecycleHooks(t *testing.T) {
	app, _ := newTestApp(t)
	var current *Instance
	var calls int
	def := &Definition{
		Setup: func(*Ctx) any {
			OnMounted(func() {
				calls++
				current = CurrentInstance()
			})
			return nil
		},
		Render: emptyRender,
	}
	inst := mountInstance(t, def, nil, nil, app)

	require.Len(t, inst.Hooks(HookMounted), 1)
	inst.InvokeHooks(HookMounted)
	assert.Equal(t, 1, calls)
	assert.Same(t, inst, current)
	assert.Nil(t, CurrentInstance(), "hooks restore the current instance")

	inst.InvalidateMount()
	app.Scheduler.QueuePostFlushCbs(inst.Hooks(HookMounted))
	app.Scheduler.FlushPostFlushCbs()
	assert.Equal(t, 1, calls, "invalidated hooks are skipped by the queue")
}

func TestHookJobErrorReported(t *testing.T) {
	app, _ := newTestApp(t)
	var got []errors.ErrorCode
	app.Config.ErrorHandler = func(_ error, _ *Instance, code errors.ErrorCode) {
		got = append(got, code)
	}
	inst := mountInstance(t, &Definition{Render: emptyRender}, nil, nil, app)
	inst.hooks[HookBeforeUpdate] = append(inst.hooks[HookBeforeUpdate], &scheduler.Job{
		ID:    scheduler.NoID,
		Owner: inst,
		Fn:    func() error { return errors.Errorf("hook failed") },
	})

	inst.InvokeHooks(HookBeforeUpdate)
	assert.Equal(t, []errors.ErrorCode{errors.BeforeUpdateHook}, got)
}

func TestHookOutsideSetupWarns(t *testing.T) {
	var warned bool
	emptyAppContext().Config.WarnHandler = func(string, *Instance, string) { warned = true }
	defer func() { emptyAppContext().Config.WarnHandler = nil }()

	OnMounted(func() {})
	assert.True(t, warned)
}

func TestSetupStateAndExpose(t *testing.T) {
	app, _ := newTestApp(t)
	def := &Definition{
		Setup: func(ctx *Ctx) any {
			ctx.Expose(map[string]any{"reset": func() {}})
			return map[string]any{"label": "hi"}
		},
		Render: func(ctx *Ctx) *vdom.VNode { return vdom.Text(ctx.State("label").(string)) },
	}
	inst := mountInstance(t, def, nil, nil, app)

	root := RenderComponentRoot(inst)
	assert.Equal(t, "hi", root.Text)
	assert.Contains(t, inst.PublicValue(), "reset")
}
