package main

import (
	"context"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vrt"
	"github.com/vango-dev/vrt/internal/config"
	"github.com/vango-dev/vrt/internal/demo"
	"github.com/vango-dev/vrt/pkg/host/memdom"
	"github.com/vango-dev/vrt/pkg/host/remote"
	"github.com/vango-dev/vrt/pkg/metrics"
	"github.com/vango-dev/vrt/pkg/protocol"
)

// maxEventSize bounds a single client message.
const maxEventSize = 64 << 10

func serveCmd(load configLoader) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo application to remote clients",
		Long: `Start an HTTP server that runs one demo application per WebSocket
connection and streams its host operations as binary frames.

Endpoints:
  /         status page with a static render
  /ws       host-op stream (Hello, then Ops frames; clients send Event frames)
  /metrics  Prometheus metrics (when metrics.enabled is set)

Examples:
  vrt serve
  vrt serve --port=8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Serve.Port = port
			}
			if host != "" {
				cfg.Serve.Host = host
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, newLogger(cfg, cmd.ErrOrStderr()))
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from vrt.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from vrt.json)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	srv := newServer(cfg, logger, prometheus.NewRegistry())
	httpSrv := &http.Server{
		Addr:              cfg.Serve.Address(),
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving", slog.String("addr", httpSrv.Addr))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

type server struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader
	sessions atomic.Int64
}

func newServer(cfg *config.Config, logger *slog.Logger, reg *prometheus.Registry) *server {
	s := &server{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	if cfg.Metrics.Enabled {
		s.metrics = metrics.New(
			metrics.WithRegistry(reg),
			metrics.WithNamespace(cfg.Metrics.Namespace),
		)
	}
	return s
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.handleStatus)
	r.Get("/ws", s.handleWS)
	if s.metrics != nil {
		r.Handle(s.cfg.Metrics.Path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var b strings.Builder
	_, root := renderDemo(s.cfg, io.Discard, 0)
	_ = root.WriteHTML(&b, memdom.RenderOptions{})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>vrt</title></head>
<body>
<h1>vrt %s</h1>
<p>Active sessions: %d</p>
<p>Connect to <code>/ws</code> for the host-op stream.</p>
<pre>%s</pre>
</body>
</html>
`, html.EscapeString(version), s.sessions.Load(), html.EscapeString(b.String()))
}

func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}
	s.sessions.Add(1)
	defer s.sessions.Add(-1)

	sess := s.newSession(conn)
	sess.run(r.Context())
}

// session runs one demo application for one connection. Everything
// touching the document or the connection's writer runs on the loop
// goroutine.
type session struct {
	conn   *websocket.Conn
	logger *slog.Logger
	tick   time.Duration

	doc   *memdom.Document
	host  *remote.Host
	rt    *vrt.Runtime
	state *demo.State
	sink  remote.Sink

	cancel context.CancelFunc
}

func (s *server) newSession(conn *websocket.Conn) *session {
	logger := s.logger.With(slog.String("remote", conn.RemoteAddr().String()))
	doc := memdom.New(memdom.WithOpLog(false), memdom.WithLogger(logger))
	hostOpts := []remote.Option{
		remote.WithFrameLimit(s.cfg.Serve.FrameLimit),
		remote.WithLogger(logger),
	}
	rc := runtimeConfig(s.cfg, logger)
	if s.metrics != nil {
		hostOpts = append(hostOpts, remote.WithObserver(s.metrics))
		rc.Metrics = s.metrics
	}
	host := remote.New(doc, hostOpts...)

	return &session{
		conn:   conn,
		logger: logger,
		tick:   s.cfg.Serve.TickDuration(),
		doc:    doc,
		host:   host,
		rt:     vrt.New(host, rc),
		state:  demo.NewState(),
		sink: remote.SinkFunc(func(f *protocol.Frame) error {
			return conn.WriteMessage(websocket.BinaryMessage, f.Encode())
		}),
	}
}

func (s *session) run(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	defer cancel()
	defer s.conn.Close()

	s.conn.SetReadLimit(maxEventSize)
	s.rt.Dispatch(s.mount)
	go s.readLoop(ctx)
	go s.tickLoop(ctx)

	if err := s.rt.Loop().Serve(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("loop stopped", slog.Any("error", err))
	}
	s.logger.Debug("session closed")
}

func (s *session) mount() {
	root := mountDemo(s.rt, s.doc, s.state)
	if err := s.sink.Send(s.host.Hello(root)); err != nil {
		s.fail(err)
		return
	}
	s.flush()
}

// update runs fn, drains the flush it scheduled and sends the resulting
// ops.
func (s *session) update(fn func()) {
	fn()
	s.rt.Loop().Drain()
	s.flush()
}

func (s *session) flush() {
	if err := s.host.FlushTo(s.sink); err != nil {
		s.fail(err)
	}
}

func (s *session) fail(err error) {
	s.logger.Warn("session write failed", slog.Any("error", err))
	s.cancel()
}

func (s *session) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.rt.Dispatch(func() { s.update(s.state.Tick) })
		}
	}
}

func (s *session) readLoop(ctx context.Context) {
	defer s.cancel()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", slog.Any("error", err))
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		frame, err := protocol.DecodeFrame(data)
		if err != nil {
			s.logger.Warn("bad frame from client", slog.Any("error", err))
			continue
		}
		if frame.Type != protocol.FrameEvent {
			s.logger.Debug("ignoring client frame", slog.String("type", frame.Type.String()))
			continue
		}
		ev, err := protocol.DecodeEvent(frame.Payload)
		if err != nil {
			s.logger.Warn("bad event from client", slog.Any("error", err))
			continue
		}
		s.rt.Dispatch(func() {
			s.update(func() {
				if err := s.host.HandleEvent(ev); err != nil {
					s.logger.Debug("event dropped", slog.Any("error", err))
				}
			})
		})
	}
}
