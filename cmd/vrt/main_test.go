package main

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vrt/internal/config"
	"github.com/vango-dev/vrt/pkg/protocol"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(append([]string{"--config", t.TempDir()}, args...))
	require.NoError(t, cmd.Execute(), "stderr: %s", errOut.String())
	return out.String()
}

func TestRenderCommand(t *testing.T) {
	out := execute(t, "render")
	assert.True(t, strings.HasPrefix(out, `<div id="app"><h1>vrt demo</h1>`), out)
	assert.Contains(t, out, "<li>alpha</li><li>beta</li>")

	out = execute(t, "render", "--ticks", "1")
	assert.Contains(t, out, "<span>ticks: 1</span>")
	assert.Contains(t, out, "<li>beta</li><li>gamma</li><li>delta</li><li>alpha</li>")
}

func TestRenderPretty(t *testing.T) {
	out := execute(t, "render", "--pretty")
	assert.Contains(t, out, "\n  <h1>vrt demo</h1>\n")
}

func TestTreeCommand(t *testing.T) {
	out := execute(t, "tree", "--ids")
	assert.Contains(t, out, "section")
	assert.Contains(t, out, `"vrt demo"`)
	assert.Contains(t, out, "└── ")
}

func TestVersionCommand(t *testing.T) {
	assert.Equal(t, "dev\n", execute(t, "version", "--short"))
	assert.Contains(t, execute(t, "version"), "Go version:")
}

func TestInvalidConfigFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName),
		[]byte(`{"serve": {"port": 99999}}`), 0644))

	cmd := newRootCmd(io.Discard, io.Discard)
	cmd.SetArgs([]string{"--config", dir, "render"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serve.port")
}

func TestServeStreamsAndHandlesEvents(t *testing.T) {
	cfg := config.New()
	cfg.Serve.Tick = "1h"
	cfg.Metrics.Enabled = true
	srv := newServer(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), prometheus.NewRegistry())
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() *protocol.Frame {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		f, err := protocol.DecodeFrame(data)
		require.NoError(t, err)
		return f
	}

	hello := read()
	require.Equal(t, protocol.FrameHello, hello.Type)
	h, err := protocol.DecodeHello(hello.Payload)
	require.NoError(t, err)
	assert.Equal(t, uint32(protocol.Version), h.Version)
	assert.NotZero(t, h.Root)

	var mounted []protocol.HostOp
	for {
		f := read()
		require.Equal(t, protocol.FrameOps, f.Type)
		ops, err := protocol.DecodeOps(f.Payload)
		require.NoError(t, err)
		mounted = append(mounted, ops...)
		if !f.Flags.Has(protocol.FlagContinued) {
			break
		}
	}

	var button uint32
	for _, op := range mounted {
		if op.Kind == protocol.OpCreateElement && op.Tag == "button" {
			button = op.Node
		}
	}
	require.NotZero(t, button, "ops: %v", mounted)

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage,
		protocol.Event{Node: button, Type: "click"}.Frame().Encode()))

	f := read()
	require.Equal(t, protocol.FrameOps, f.Type)
	ops, err := protocol.DecodeOps(f.Payload)
	require.NoError(t, err)
	var texts []string
	for _, op := range ops {
		if op.Kind == protocol.OpSetText {
			texts = append(texts, op.Value)
		}
	}
	assert.Equal(t, []string{"clicks: 1"}, texts)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "vrt demo")
	assert.Contains(t, string(body), "Active sessions: 1")

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "vrt_remote_frames_sent_total")
}
