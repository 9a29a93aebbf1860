package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vrt/pkg/host/memdom"
)

var (
	muted = lipgloss.Color("#6B7280")

	tagStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	attrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	textStyle = lipgloss.NewStyle()

	commentStyle = lipgloss.NewStyle().
			Foreground(muted).
			Italic(true)

	idStyle     = lipgloss.NewStyle().Foreground(muted)
	branchStyle = lipgloss.NewStyle().Foreground(muted)
)

func treeCmd(load configLoader) *cobra.Command {
	var (
		ticks int
		ids   bool
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the host tree of the demo application",
		Long: `Mount the demo application and print the in-memory host tree,
one node per line.

Examples:
  vrt tree
  vrt tree --ids`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			_, root := renderDemo(cfg, cmd.ErrOrStderr(), ticks)
			return printTree(cmd.OutOrStdout(), root, ids)
		},
	}

	cmd.Flags().IntVarP(&ticks, "ticks", "t", 0, "Advance the demo state this many times before printing")
	cmd.Flags().BoolVar(&ids, "ids", false, "Show node ids")

	return cmd
}

func printTree(w io.Writer, root *memdom.Node, ids bool) error {
	var b strings.Builder
	writeTreeNode(&b, root, "", "", ids)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeTreeNode(b *strings.Builder, n *memdom.Node, prefix, branch string, ids bool) {
	label := nodeLabel(n)
	if label == "" {
		return
	}
	b.WriteString(prefix + branchStyle.Render(branch) + label)
	if ids {
		b.WriteString(" " + idStyle.Render(fmt.Sprintf("#%d", n.ID())))
	}
	b.WriteString("\n")

	children := visibleChildren(n)
	childPrefix := prefix
	switch branch {
	case "├── ":
		childPrefix += branchStyle.Render("│   ")
	case "└── ":
		childPrefix += "    "
	}
	for i, c := range children {
		next := "├── "
		if i == len(children)-1 {
			next = "└── "
		}
		writeTreeNode(b, c, childPrefix, next, ids)
	}
}

// visibleChildren drops the empty text nodes used as fragment anchors.
func visibleChildren(n *memdom.Node) []*memdom.Node {
	out := make([]*memdom.Node, 0, len(n.Children()))
	for _, c := range n.Children() {
		if nodeLabel(c) != "" {
			out = append(out, c)
		}
	}
	return out
}

func nodeLabel(n *memdom.Node) string {
	switch n.Type {
	case memdom.TextNode:
		if n.Data == "" {
			return ""
		}
		return textStyle.Render(fmt.Sprintf("%q", n.Data))
	case memdom.CommentNode:
		return commentStyle.Render("<!--" + n.Data + "-->")
	}
	attrs := n.Attrs()
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := []string{tagStyle.Render(n.Tag)}
	for _, k := range keys {
		parts = append(parts, attrStyle.Render(fmt.Sprintf("%s=%q", k, attrs[k])))
	}
	if v, ok := n.Prop("value").(string); ok {
		parts = append(parts, attrStyle.Render(fmt.Sprintf("value=%q", v)))
	}
	return strings.Join(parts, " ")
}
