package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vrt"
	"github.com/vango-dev/vrt/internal/config"
	"github.com/vango-dev/vrt/internal/demo"
	"github.com/vango-dev/vrt/pkg/host/memdom"
)

type configLoader func() (*config.Config, error)

func renderCmd(load configLoader) *cobra.Command {
	var (
		pretty   bool
		comments bool
		ticks    int
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the demo application to HTML",
		Long: `Mount the demo application into an in-memory document and print
the resulting HTML.

Examples:
  vrt render
  vrt render --pretty
  vrt render --ticks=3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("pretty") {
				cfg.Render.Pretty = pretty
			}
			if cmd.Flags().Changed("comments") {
				cfg.Render.Comments = comments
			}
			return runRender(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, ticks)
		},
	}

	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Indent block elements")
	cmd.Flags().BoolVar(&comments, "comments", false, "Keep comment nodes")
	cmd.Flags().IntVarP(&ticks, "ticks", "t", 0, "Advance the demo state this many times before printing")

	return cmd
}

// renderDemo mounts the demo and advances it ticks times.
func renderDemo(cfg *config.Config, logOut io.Writer, ticks int) (*memdom.Document, *memdom.Node) {
	doc := memdom.New(memdom.WithOpLog(false))
	rt := vrt.New(doc, runtimeConfig(cfg, newLogger(cfg, logOut)))
	state := demo.NewState()
	root := mountDemo(rt, doc, state)
	for i := 0; i < ticks; i++ {
		rt.Do(state.Tick)
	}
	return doc, root
}

func runRender(w, logOut io.Writer, cfg *config.Config, ticks int) error {
	_, root := renderDemo(cfg, logOut, ticks)
	if err := root.WriteHTML(w, memdom.RenderOptions{
		Pretty:   cfg.Render.Pretty,
		Comments: cfg.Render.Comments,
	}); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
