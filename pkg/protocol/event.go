package protocol

// Event is a user event reported by the client for a node of the shadow
// tree. Value carries the new value of form controls ("input", "change")
// and is empty otherwise.
type Event struct {
	Node  uint32
	Type  string
	Value string
}

// Frame encodes ev.
func (ev Event) Frame() *Frame {
	e := NewEncoder(8 + len(ev.Type) + len(ev.Value))
	e.WriteUvarint(uint64(ev.Node))
	e.WriteString(ev.Type)
	e.WriteString(ev.Value)
	return &Frame{Type: FrameEvent, Payload: e.Bytes()}
}

// DecodeEvent decodes a FrameEvent payload.
func DecodeEvent(payload []byte) (Event, error) {
	d := NewDecoder(payload)
	var ev Event
	var err error
	if ev.Node, err = d.ReadUint32(); err != nil {
		return ev, err
	}
	if ev.Type, err = d.ReadString(); err != nil {
		return ev, err
	}
	if ev.Value, err = d.ReadString(); err != nil {
		return ev, err
	}
	return ev, nil
}
