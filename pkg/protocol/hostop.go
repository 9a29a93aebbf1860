package protocol

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// OpKind is the type of a host operation.
type OpKind uint8

const (
	OpCreateElement OpKind = iota + 1 // Node Tag Namespace
	OpCreateText                      // Node Value
	OpCreateComment                   // Node Value
	OpInsert                          // Node Parent Anchor
	OpRemove                          // Node
	OpSetText                         // Node Value
	OpSetElementText                  // Node Value
	OpSetAttr                         // Node Key Value
	OpRemoveAttr                      // Node Key
	OpSetProp                         // Node Key Value
	OpRemoveProp                      // Node Key
	OpListen                          // Node Key
	OpUnlisten                        // Node Key
	OpSetScopeID                      // Node Key
	OpInsertStatic                    // Node Parent Anchor Namespace Value

	opKindEnd
)

var opNames = [...]string{
	OpCreateElement:  "CreateElement",
	OpCreateText:     "CreateText",
	OpCreateComment:  "CreateComment",
	OpInsert:         "Insert",
	OpRemove:         "Remove",
	OpSetText:        "SetText",
	OpSetElementText: "SetElementText",
	OpSetAttr:        "SetAttr",
	OpRemoveAttr:     "RemoveAttr",
	OpSetProp:        "SetProp",
	OpRemoveProp:     "RemoveProp",
	OpListen:         "Listen",
	OpUnlisten:       "Unlisten",
	OpSetScopeID:     "SetScopeID",
	OpInsertStatic:   "InsertStatic",
}

func (k OpKind) String() string {
	if k > 0 && k < opKindEnd {
		return opNames[k]
	}
	return fmt.Sprintf("OpKind(%d)", uint8(k))
}

// HostOp is one host mutation. Which fields are meaningful depends on
// Kind, see the OpKind constants.
//
// For OpInsertStatic the client parses Value and assigns consecutive ids,
// starting at Node, to the parsed nodes in document order. Empty markup
// produces a single empty text node.
type HostOp struct {
	Kind      OpKind
	Node      uint32
	Parent    uint32
	Anchor    uint32
	Tag       string
	Namespace string
	Key       string
	Value     string
}

func (op HostOp) String() string {
	switch op.Kind {
	case OpCreateElement:
		return fmt.Sprintf("%s #%d <%s>", op.Kind, op.Node, op.Tag)
	case OpInsert:
		return fmt.Sprintf("%s #%d into #%d before #%d", op.Kind, op.Node, op.Parent, op.Anchor)
	case OpSetAttr, OpSetProp:
		return fmt.Sprintf("%s #%d %s=%q", op.Kind, op.Node, op.Key, op.Value)
	case OpRemoveAttr, OpRemoveProp, OpListen, OpUnlisten, OpSetScopeID:
		return fmt.Sprintf("%s #%d %s", op.Kind, op.Node, op.Key)
	case OpRemove:
		return fmt.Sprintf("%s #%d", op.Kind, op.Node)
	}
	return fmt.Sprintf("%s #%d %q", op.Kind, op.Node, op.Value)
}

func (op HostOp) encode(e *Encoder) {
	e.WriteUint8(byte(op.Kind))
	e.WriteUvarint(uint64(op.Node))
	switch op.Kind {
	case OpCreateElement:
		e.WriteString(op.Tag)
		e.WriteString(op.Namespace)
	case OpCreateText, OpCreateComment, OpSetText, OpSetElementText:
		e.WriteString(op.Value)
	case OpInsert:
		e.WriteUvarint(uint64(op.Parent))
		e.WriteUvarint(uint64(op.Anchor))
	case OpSetAttr, OpSetProp:
		e.WriteString(op.Key)
		e.WriteString(op.Value)
	case OpRemoveAttr, OpRemoveProp, OpListen, OpUnlisten, OpSetScopeID:
		e.WriteString(op.Key)
	case OpInsertStatic:
		e.WriteUvarint(uint64(op.Parent))
		e.WriteUvarint(uint64(op.Anchor))
		e.WriteString(op.Namespace)
		e.WriteString(op.Value)
	}
}

func decodeOp(d *Decoder) (HostOp, error) {
	var op HostOp
	k, err := d.ReadByte()
	if err != nil {
		return op, err
	}
	op.Kind = OpKind(k)
	if op.Kind == 0 || op.Kind >= opKindEnd {
		return op, errors.Newf("protocol: unknown host op 0x%02x", k)
	}
	if op.Node, err = d.ReadUint32(); err != nil {
		return op, err
	}

	str := func(dst *string) {
		if err == nil {
			*dst, err = d.ReadString()
		}
	}
	id := func(dst *uint32) {
		if err == nil {
			*dst, err = d.ReadUint32()
		}
	}
	switch op.Kind {
	case OpCreateElement:
		str(&op.Tag)
		str(&op.Namespace)
	case OpCreateText, OpCreateComment, OpSetText, OpSetElementText:
		str(&op.Value)
	case OpInsert:
		id(&op.Parent)
		id(&op.Anchor)
	case OpSetAttr, OpSetProp:
		str(&op.Key)
		str(&op.Value)
	case OpRemoveAttr, OpRemoveProp, OpListen, OpUnlisten, OpSetScopeID:
		str(&op.Key)
	case OpInsertStatic:
		id(&op.Parent)
		id(&op.Anchor)
		str(&op.Namespace)
		str(&op.Value)
	}
	return op, errors.Wrapf(err, "decoding %s", op.Kind)
}

// EncodeOps encodes ops as a FrameOps payload.
func EncodeOps(ops []HostOp) []byte {
	e := NewEncoder(16 * (len(ops) + 1))
	e.WriteUvarint(uint64(len(ops)))
	for _, op := range ops {
		op.encode(e)
	}
	return e.Bytes()
}

// DecodeOps decodes a FrameOps payload.
func DecodeOps(payload []byte) ([]HostOp, error) {
	d := NewDecoder(payload)
	n, err := d.ReadCount()
	if err != nil {
		return nil, err
	}
	ops := make([]HostOp, 0, n)
	for i := 0; i < n; i++ {
		op, err := decodeOp(d)
		if err != nil {
			return nil, errors.Wrapf(err, "op %d", i)
		}
		ops = append(ops, op)
	}
	if !d.Done() {
		return nil, errors.Newf("protocol: %d trailing bytes after ops", d.Remaining())
	}
	return ops, nil
}

// OpsFrames packs ops into FrameOps frames whose payloads stay below
// limit bytes where possible. A single op larger than limit gets a frame
// of its own. Every frame but the last carries FlagContinued.
func OpsFrames(ops []HostOp, limit int) []*Frame {
	if limit <= 0 || limit > MaxPayloadSize {
		limit = MaxPayloadSize
	}
	var frames []*Frame
	var batch []HostOp
	size := 0
	scratch := NewEncoder(64)
	for _, op := range ops {
		scratch.Reset()
		op.encode(scratch)
		if len(batch) > 0 && size+scratch.Len() > limit {
			frames = append(frames, &Frame{Type: FrameOps, Flags: FlagContinued, Payload: EncodeOps(batch)})
			batch, size = nil, 0
		}
		batch = append(batch, op)
		size += scratch.Len()
	}
	frames = append(frames, &Frame{Type: FrameOps, Payload: EncodeOps(batch)})
	return frames
}
