package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOps() []HostOp {
	return []HostOp{
		{Kind: OpCreateElement, Node: 3, Tag: "svg", Namespace: "svg"},
		{Kind: OpCreateText, Node: 4, Value: "hello"},
		{Kind: OpCreateComment, Node: 5},
		{Kind: OpInsert, Node: 4, Parent: 3},
		{Kind: OpInsert, Node: 5, Parent: 3, Anchor: 4},
		{Kind: OpSetText, Node: 4, Value: "bye"},
		{Kind: OpSetElementText, Node: 3, Value: ""},
		{Kind: OpSetAttr, Node: 3, Key: "class", Value: "a b"},
		{Kind: OpRemoveAttr, Node: 3, Key: "id"},
		{Kind: OpSetProp, Node: 3, Key: "value", Value: "typed"},
		{Kind: OpRemoveProp, Node: 3, Key: "checked"},
		{Kind: OpListen, Node: 3, Key: "click"},
		{Kind: OpUnlisten, Node: 3, Key: "click"},
		{Kind: OpSetScopeID, Node: 3, Key: "data-v-1"},
		{Kind: OpInsertStatic, Node: 9, Parent: 1, Anchor: 2, Namespace: "", Value: "<b>x</b>"},
		{Kind: OpRemove, Node: 5},
	}
}

func TestOpsRoundTrip(t *testing.T) {
	ops := sampleOps()
	got, err := DecodeOps(EncodeOps(ops))
	require.NoError(t, err)
	assert.Equal(t, ops, got)

	got, err = DecodeOps(EncodeOps(nil))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeOpsRejectsBadInput(t *testing.T) {
	_, err := DecodeOps([]byte{0x01, 0x7f, 0x01})
	assert.ErrorContains(t, err, "unknown host op")

	payload := EncodeOps(sampleOps()[:1])
	_, err = DecodeOps(payload[:len(payload)-1])
	assert.Error(t, err)

	_, err = DecodeOps(append(EncodeOps(nil), 0x00))
	assert.ErrorContains(t, err, "trailing")
}

func TestOpsFramesSplits(t *testing.T) {
	ops := sampleOps()
	frames := OpsFrames(ops, 24)
	require.Greater(t, len(frames), 1)

	var all []HostOp
	for i, f := range frames {
		assert.Equal(t, FrameOps, f.Type)
		assert.Equal(t, i < len(frames)-1, f.Flags.Has(FlagContinued), "frame %d", i)
		got, err := DecodeOps(f.Payload)
		require.NoError(t, err)
		require.NotEmpty(t, got)
		all = append(all, got...)
	}
	assert.Equal(t, ops, all)

	single := OpsFrames(ops, 0)
	require.Len(t, single, 1)
	assert.False(t, single[0].Flags.Has(FlagContinued))
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "Insert #4 into #3 before #0", HostOp{Kind: OpInsert, Node: 4, Parent: 3}.String())
	assert.Equal(t, `SetAttr #3 class="a"`, HostOp{Kind: OpSetAttr, Node: 3, Key: "class", Value: "a"}.String())
	assert.Equal(t, "OpKind(99)", OpKind(99).String())
}
