package remote_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vrt/pkg/component"
	"github.com/vango-dev/vrt/pkg/host/memdom"
	"github.com/vango-dev/vrt/pkg/host/remote"
	"github.com/vango-dev/vrt/pkg/protocol"
	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/renderer"
	"github.com/vango-dev/vrt/pkg/vdom"
)

type frameCounter struct{ frames, bytes int }

func (c *frameCounter) FramesSent(frames, bytes int) {
	c.frames += frames
	c.bytes += bytes
}

func setup(t *testing.T, opts ...remote.Option) (*remote.Host, *memdom.Node, *renderer.Renderer) {
	t.Helper()
	doc := memdom.New(memdom.WithOpLog(false))
	root := doc.Element("div")
	doc.Insert(root, doc.Body(), nil)
	h := remote.New(doc, opts...)
	return h, root, renderer.New(h)
}

func decodeAll(t *testing.T, frames []*protocol.Frame) []protocol.HostOp {
	t.Helper()
	var ops []protocol.HostOp
	for _, f := range frames {
		require.Equal(t, protocol.FrameOps, f.Type)
		got, err := protocol.DecodeOps(f.Payload)
		require.NoError(t, err)
		ops = append(ops, got...)
	}
	return ops
}

func kinds(ops []protocol.HostOp) []protocol.OpKind {
	out := make([]protocol.OpKind, len(ops))
	for i, op := range ops {
		out[i] = op.Kind
	}
	return out
}

func TestMountStreamsOps(t *testing.T) {
	h, root, r := setup(t)

	hello, err := protocol.DecodeHello(h.Hello(root).Payload)
	require.NoError(t, err)
	assert.Equal(t, root.ID(), hello.Root)

	r.Render(vdom.Div(vdom.Class("box"), vdom.OnClick(func() {}), "hi"), root)
	ops := decodeAll(t, h.Flush())

	assert.Equal(t, []protocol.OpKind{
		protocol.OpCreateElement,
		protocol.OpSetElementText,
		protocol.OpSetAttr,
		protocol.OpListen,
		protocol.OpInsert,
	}, kinds(ops))
	div := root.FirstChild()
	assert.Equal(t, protocol.HostOp{Kind: protocol.OpInsert, Node: div.ID(), Parent: root.ID()}, ops[len(ops)-1])
	assert.Nil(t, h.Flush(), "nothing pending after a flush")
}

func TestPatchPropSendsNormalizedState(t *testing.T) {
	h, root, r := setup(t)
	handlerA, handlerB := func() {}, func() {}

	r.Render(vdom.Input(vdom.Class("a"), vdom.Value("x"), vdom.OnInput(handlerA)), root)
	h.Flush()
	input := root.FirstChild()

	r.Render(vdom.Input(vdom.Class("b"), vdom.Value("y"), vdom.OnInput(handlerB)), root)
	ops := decodeAll(t, h.Flush())
	assert.ElementsMatch(t, []protocol.HostOp{
		{Kind: protocol.OpSetAttr, Node: input.ID(), Key: "class", Value: "b"},
		{Kind: protocol.OpSetProp, Node: input.ID(), Key: "value", Value: "y"},
	}, ops, "swapping a handler sends nothing")

	r.Render(vdom.Input(), root)
	ops = decodeAll(t, h.Flush())
	assert.ElementsMatch(t, []protocol.HostOp{
		{Kind: protocol.OpRemoveAttr, Node: input.ID(), Key: "class"},
		{Kind: protocol.OpRemoveProp, Node: input.ID(), Key: "value"},
		{Kind: protocol.OpUnlisten, Node: input.ID(), Key: "input"},
	}, ops)
}

func TestHandleEventUpdatesState(t *testing.T) {
	h, root, r := setup(t)
	text := reactive.NewSignal("")
	loop := r.Scheduler().Loop()
	form := &component.Definition{
		Name: "Form",
		Setup: func(*component.Ctx) any {
			return component.RenderFunc(func() *vdom.VNode {
				return vdom.Div(
					vdom.Input(vdom.Value(text.Get()), vdom.OnInput(func(e *memdom.Event) {
						text.Set(e.Target.Prop("value").(string))
					})),
					vdom.Span(text.Get()),
				)
			})
		},
	}
	r.Render(vdom.H(form, nil), root)
	h.Flush()

	input := root.QuerySelector("input")
	require.NotNil(t, input)
	loop.Do(func() {
		require.NoError(t, h.HandleEvent(protocol.Event{Node: input.ID(), Type: "input", Value: "hey"}))
	})
	assert.Equal(t, "hey", root.QuerySelector("span").TextContent())

	ops := decodeAll(t, h.Flush())
	assert.Contains(t, ops, protocol.HostOp{Kind: protocol.OpSetElementText, Node: root.QuerySelector("span").ID(), Value: "hey"})

	err := h.HandleEvent(protocol.Event{Node: 9999, Type: "click"})
	assert.ErrorContains(t, err, "no node #9999")
}

func TestCheckboxChange(t *testing.T) {
	h, root, r := setup(t)
	var got []any
	r.Render(vdom.Input(vdom.Type("checkbox"), vdom.OnChange(func(e *memdom.Event) { got = append(got, e.Payload) })), root)
	box := root.FirstChild()

	require.NoError(t, h.HandleEvent(protocol.Event{Node: box.ID(), Type: "change", Value: "true"}))
	assert.Equal(t, true, box.Prop("checked"))
	assert.Equal(t, []any{true}, got)

	assert.Error(t, h.HandleEvent(protocol.Event{Node: box.ID(), Type: "change", Value: "maybe"}))
}

func TestStaticContentIDs(t *testing.T) {
	h, root, r := setup(t)
	r.Render(vdom.Div(vdom.Static("<p>a</p><p>b</p>", 2)), root)
	ops := decodeAll(t, h.Flush())

	var static protocol.HostOp
	for _, op := range ops {
		if op.Kind == protocol.OpInsertStatic {
			static = op
		}
	}
	require.Equal(t, protocol.OpInsertStatic, static.Kind)
	first := root.FirstChild().FirstChild()
	assert.Equal(t, first.ID(), static.Node)
	assert.Equal(t, "<p>a</p><p>b</p>", static.Value)
	// Preorder ids: <p> a <p> b.
	assert.Equal(t, first.ID()+2, root.FirstChild().Children()[1].ID())
}

func TestFlushSplitsAndReports(t *testing.T) {
	counter := &frameCounter{}
	h, root, r := setup(t, remote.WithFrameLimit(32), remote.WithObserver(counter))
	items := make([]*vdom.VNode, 20)
	for i := range items {
		items[i] = vdom.Li(vdom.Key(i), "item")
	}
	r.Render(vdom.Ul(items), root)

	var sent []*protocol.Frame
	require.NoError(t, h.FlushTo(remote.SinkFunc(func(f *protocol.Frame) error {
		sent = append(sent, f)
		return nil
	})))
	require.Greater(t, len(sent), 1)
	assert.Equal(t, len(sent), counter.frames)
	assert.Positive(t, counter.bytes)
	assert.Len(t, decodeAll(t, sent), 1+1+20*3, "ul create, ul insert, and create, text, insert per item")
}
