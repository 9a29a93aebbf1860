// Package protocol is the binary wire format between a server-side
// renderer and a remote client that owns the real host tree.
//
// The server renders against a shadow tree and streams the host operations
// it performed; the client replays them in order and reports user events
// back. Nothing else crosses the wire.
//
// # Wire Format
//
// Every message is a frame with a 6-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (4 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameHello (0x00): server greeting with the protocol version and
//     the id of the container node
//   - FrameOps (0x01): a batch of host operations, one flush worth
//   - FrameEvent (0x02): a client event targeting a node
//   - FrameError (0x03): a fatal error description
//
// # Encoding
//
// Integers are varints (protobuf style) and signed integers are ZigZag
// encoded. Strings are a varint length followed by UTF-8 bytes. Node ids
// are the shadow tree's ids; 0 means "no node".
//
// # Host Operations
//
// A FrameOps payload is a varint count followed by that many operations.
// Each operation starts with its OpKind byte; the fields that follow
// depend on the kind, see HostOp.
package protocol
