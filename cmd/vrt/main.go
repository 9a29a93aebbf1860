package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vrt"
	"github.com/vango-dev/vrt/internal/config"
	"github.com/vango-dev/vrt/internal/demo"
	"github.com/vango-dev/vrt/pkg/host/memdom"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var configDir string

	rootCmd := &cobra.Command{
		Use:   "vrt",
		Short: "Render and serve vrt component trees",
		Long: `vrt drives the runtime against an in-memory host.

It renders the bundled demo application to HTML, prints the host tree,
or serves it to remote clients as a stream of host operations over a
WebSocket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", ".", "Directory containing "+config.ConfigFileName)

	load := func() (*config.Config, error) { return loadConfig(configDir) }
	rootCmd.AddCommand(
		renderCmd(load),
		treeCmd(load),
		serveCmd(load),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig reads vrt.json from dir. A missing file yields the defaults.
func loadConfig(dir string) (*config.Config, error) {
	cfg, err := config.Load(dir)
	if errors.Is(err, config.ErrNotFound) {
		cfg, err = config.New(), nil
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level, _ := cfg.Log.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func runtimeConfig(cfg *config.Config, logger *slog.Logger) vrt.Config {
	return vrt.Config{
		Dev:                  cfg.Dev,
		MaxRecursion:         cfg.MaxRecursion,
		ThrowUnhandledErrors: cfg.ThrowUnhandledErrors,
		Logger:               logger,
	}
}

// mountDemo mounts the demo app into a fresh #root container of doc.
func mountDemo(rt *vrt.Runtime, doc *memdom.Document, state *demo.State) *memdom.Node {
	root := doc.Element("div")
	doc.Insert(root, doc.Body(), nil)
	doc.PatchProp(root, "id", nil, "root", "")
	rt.CreateApp(state.App(), nil).Mount(root)
	return root
}
