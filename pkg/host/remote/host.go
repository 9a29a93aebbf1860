// Package remote is a host that renders into a memdom shadow tree and
// records every mutation as a protocol.HostOp, so a client holding the
// real tree can replay them.
//
// A Host is driven from the renderer's loop goroutine like any other host.
// Call Flush after each scheduler flush to collect the pending frames, and
// feed client events back through HandleEvent on the same goroutine.
package remote

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/vango-dev/vrt/pkg/host/memdom"
	"github.com/vango-dev/vrt/pkg/protocol"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// Sink receives encoded frames, typically a websocket connection.
type Sink interface {
	Send(f *protocol.Frame) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(f *protocol.Frame) error

// Send implements Sink.
func (fn SinkFunc) Send(f *protocol.Frame) error { return fn(f) }

// Observer is told about every batch of frames produced by Flush.
type Observer interface {
	FramesSent(frames, bytes int)
}

// Option configures a Host.
type Option func(*Host)

// WithFrameLimit caps the payload size of a single ops frame.
func WithFrameLimit(n int) Option {
	return func(h *Host) {
		h.limit = n
	}
}

// WithLogger sets the logger used for dropped client events.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) {
		h.logger = l
	}
}

// WithObserver reports flushed frames to o.
func WithObserver(o Observer) Option {
	return func(h *Host) {
		h.observer = o
	}
}

// Host implements the renderer host operations on top of a memdom
// document and queues the equivalent protocol ops.
type Host struct {
	doc      *memdom.Document
	pending  []protocol.HostOp
	limit    int
	logger   *slog.Logger
	observer Observer
}

// New creates a host mirroring doc.
func New(doc *memdom.Document, opts ...Option) *Host {
	h := &Host{doc: doc, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Document returns the shadow tree.
func (h *Host) Document() *memdom.Document { return h.doc }

// Pending returns the ops recorded since the last Flush.
func (h *Host) Pending() []protocol.HostOp { return h.pending }

func (h *Host) record(op protocol.HostOp) {
	h.pending = append(h.pending, op)
}

func id(n vdom.Node) uint32 {
	if node, ok := n.(*memdom.Node); ok && node != nil {
		return node.ID()
	}
	return 0
}

func (h *Host) CreateElement(tag, namespace string, props vdom.Props) vdom.Node {
	n := h.doc.CreateElement(tag, namespace, props)
	h.record(protocol.HostOp{Kind: protocol.OpCreateElement, Node: id(n), Tag: tag, Namespace: namespace})
	if v, ok := n.(*memdom.Node).Attr("multiple"); ok {
		h.record(protocol.HostOp{Kind: protocol.OpSetAttr, Node: id(n), Key: "multiple", Value: v})
	}
	return n
}

func (h *Host) CreateText(text string) vdom.Node {
	n := h.doc.CreateText(text)
	h.record(protocol.HostOp{Kind: protocol.OpCreateText, Node: id(n), Value: text})
	return n
}

func (h *Host) CreateComment(text string) vdom.Node {
	n := h.doc.CreateComment(text)
	h.record(protocol.HostOp{Kind: protocol.OpCreateComment, Node: id(n), Value: text})
	return n
}

func (h *Host) Insert(child, parent, anchor vdom.Node) {
	h.doc.Insert(child, parent, anchor)
	h.record(protocol.HostOp{Kind: protocol.OpInsert, Node: id(child), Parent: id(parent), Anchor: id(anchor)})
}

func (h *Host) Remove(child vdom.Node) {
	h.doc.Remove(child)
	h.record(protocol.HostOp{Kind: protocol.OpRemove, Node: id(child)})
}

func (h *Host) SetText(node vdom.Node, text string) {
	h.doc.SetText(node, text)
	h.record(protocol.HostOp{Kind: protocol.OpSetText, Node: id(node), Value: text})
}

func (h *Host) SetElementText(el vdom.Node, text string) {
	h.doc.SetElementText(el, text)
	h.record(protocol.HostOp{Kind: protocol.OpSetElementText, Node: id(el), Value: text})
}

func (h *Host) ParentNode(node vdom.Node) vdom.Node { return h.doc.ParentNode(node) }

func (h *Host) NextSibling(node vdom.Node) vdom.Node { return h.doc.NextSibling(node) }

// PatchProp applies the change to the shadow tree, then sends the
// resulting state: normalized attribute values, DOM property values, or a
// listener subscription. Handlers never leave the server; swapping one
// handler for another sends nothing.
func (h *Host) PatchProp(el vdom.Node, key string, prev, next any, namespace string) {
	h.doc.PatchProp(el, key, prev, next, namespace)
	n, ok := el.(*memdom.Node)
	if !ok || n == nil {
		return
	}
	op := protocol.HostOp{Node: n.ID(), Key: key}
	switch {
	case vdom.IsListenerKey(key):
		op.Key = memdom.ListenerEvent(key)
		switch {
		case next == nil:
			op.Kind = protocol.OpUnlisten
		case prev == nil:
			op.Kind = protocol.OpListen
		default:
			return
		}
	case memdom.IsDOMProp(key):
		v := n.Prop(key)
		if v == nil {
			op.Kind = protocol.OpRemoveProp
			break
		}
		op.Kind = protocol.OpSetProp
		op.Value = fmt.Sprint(v)
	default:
		if v, ok := n.Attr(key); ok {
			op.Kind, op.Value = protocol.OpSetAttr, v
		} else {
			op.Kind = protocol.OpRemoveAttr
		}
	}
	h.record(op)
}

// QuerySelector resolves teleport targets in the shadow tree.
func (h *Host) QuerySelector(selector string) vdom.Node {
	return h.doc.QuerySelector(selector)
}

// SetScopeID implements the renderer's scope id extension.
func (h *Host) SetScopeID(el vdom.Node, scope string) {
	h.doc.SetScopeID(el, scope)
	h.record(protocol.HostOp{Kind: protocol.OpSetScopeID, Node: id(el), Key: scope})
}

// InsertStaticContent sends the markup once; the client assigns the
// parsed nodes the ids the shadow tree gave them, in document order.
func (h *Host) InsertStaticContent(content string, parent, anchor vdom.Node, namespace string) (first, last vdom.Node) {
	first, last = h.doc.InsertStaticContent(content, parent, anchor, namespace)
	h.record(protocol.HostOp{
		Kind:      protocol.OpInsertStatic,
		Node:      id(first),
		Parent:    id(parent),
		Anchor:    id(anchor),
		Namespace: namespace,
		Value:     content,
	})
	return first, last
}

// Hello returns the greeting for a client mounting container.
func (h *Host) Hello(container *memdom.Node) *protocol.Frame {
	return protocol.Hello{Version: protocol.Version, Root: container.ID()}.Frame()
}

// Flush returns the pending ops as frames and clears them. It returns nil
// when nothing changed.
func (h *Host) Flush() []*protocol.Frame {
	if len(h.pending) == 0 {
		return nil
	}
	frames := protocol.OpsFrames(h.pending, h.limit)
	h.pending = h.pending[:0]
	if h.observer != nil {
		size := 0
		for _, f := range frames {
			size += protocol.FrameHeaderSize + len(f.Payload)
		}
		h.observer.FramesSent(len(frames), size)
	}
	return frames
}

// FlushTo sends the pending frames to s, stopping at the first error.
func (h *Host) FlushTo(s Sink) error {
	for _, f := range h.Flush() {
		if err := s.Send(f); err != nil {
			return errors.Wrap(err, "sending ops frame")
		}
	}
	return nil
}

// HandleEvent replays a client event on the shadow tree. Form events
// update the control's value before listeners run, so handlers read the
// value the user typed.
func (h *Host) HandleEvent(ev protocol.Event) error {
	n := h.doc.NodeByID(ev.Node)
	if n == nil {
		h.logger.Debug("event for unknown node dropped",
			slog.Uint64("node", uint64(ev.Node)),
			slog.String("event", ev.Type),
		)
		return errors.Newf("remote: no node #%d", ev.Node)
	}
	switch {
	case ev.Type == "input" && n.Type == memdom.ElementNode:
		h.doc.SetValue(n, ev.Value)
	case ev.Type == "change" && isCheckable(n):
		checked, err := strconv.ParseBool(ev.Value)
		if err != nil {
			return errors.Wrapf(err, "change event for #%d", ev.Node)
		}
		h.doc.SetChecked(n, checked)
	default:
		h.doc.Dispatch(n, ev.Type, ev.Value)
	}
	return nil
}

func isCheckable(n *memdom.Node) bool {
	if n.Tag != "input" {
		return false
	}
	t, _ := n.Attr("type")
	return t == "checkbox" || t == "radio"
}
