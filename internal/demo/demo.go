// Package demo holds the sample application rendered by the vrt command.
package demo

import (
	"fmt"
	"strings"

	"github.com/vango-dev/vrt/pkg/component"
	"github.com/vango-dev/vrt/pkg/host/memdom"
	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// ThemeKey is the injection key of the theme name.
const ThemeKey = "demo.theme"

// State is the reactive state behind the demo. Tick advances it the way
// the serve command's ticker does.
type State struct {
	Ticks  *reactive.Signal[int]
	Clicks *reactive.Signal[int]
	Items  *reactive.Signal[[]string]
	Text   *reactive.Signal[string]
	Theme  string
}

// NewState returns the initial demo state.
func NewState() *State {
	return &State{
		Ticks:  reactive.NewSignal(0),
		Clicks: reactive.NewSignal(0),
		Items:  reactive.NewSignal([]string{"alpha", "beta", "gamma", "delta"}),
		Text:   reactive.NewSignal(""),
		Theme:  "light",
	}
}

// Tick advances the tick counter and rotates the list by one, which the
// keyed diff turns into a single move.
func (s *State) Tick() {
	reactive.Batch(func() {
		s.Ticks.Update(func(n int) int { return n + 1 })
		s.Items.Update(func(items []string) []string {
			if len(items) < 2 {
				return items
			}
			out := make([]string, 0, len(items))
			out = append(out, items[1:]...)
			return append(out, items[0])
		})
	})
}

// App returns the root component of the demo.
func (s *State) App() *component.Definition {
	counter := s.counter()
	list := s.list()
	echo := s.echo()
	return &component.Definition{
		Name: "Demo",
		Setup: func(*component.Ctx) any {
			component.Provide(ThemeKey, s.Theme)
			return component.RenderFunc(func() *vdom.VNode {
				return vdom.Div(vdom.ID("app"),
					vdom.H1("vrt demo"),
					vdom.H(counter, vdom.Props{"label": "clicks"}),
					vdom.H(list, nil),
					vdom.H(echo, nil),
				)
			})
		},
	}
}

func (s *State) counter() *component.Definition {
	return &component.Definition{
		Name:  "Counter",
		Props: component.PropsOptions{"label": {Type: component.PropString}},
		Setup: func(ctx *component.Ctx) any {
			theme, _ := component.InjectOr(ThemeKey, "plain").(string)
			return component.RenderFunc(func() *vdom.VNode {
				return vdom.Section(vdom.Class("counter", theme),
					vdom.Button(vdom.OnClick(func() {
						s.Clicks.Update(func(n int) int { return n + 1 })
					}), "+1"),
					vdom.Span(vdom.Textf("%v: %d", ctx.Prop("label"), s.Clicks.Get())),
					vdom.Span(vdom.Textf("ticks: %d", s.Ticks.Get())),
				)
			})
		},
	}
}

func (s *State) list() *component.Definition {
	return &component.Definition{
		Name: "List",
		Setup: func(*component.Ctx) any {
			return component.RenderFunc(func() *vdom.VNode {
				items := s.Items.Get()
				lis := make([]*vdom.VNode, len(items))
				for i, item := range items {
					lis[i] = vdom.Li(vdom.Key(item), item)
				}
				return vdom.Ul(vdom.Class("list"), lis)
			})
		},
	}
}

func (s *State) echo() *component.Definition {
	return &component.Definition{
		Name: "Echo",
		Setup: func(*component.Ctx) any {
			return component.RenderFunc(func() *vdom.VNode {
				text := s.Text.Get()
				return vdom.Div(vdom.Class("echo"),
					vdom.Input(
						vdom.Value(text),
						vdom.Placeholder("type here"),
						vdom.OnInput(func(e *memdom.Event) {
							v, _ := e.Payload.(string)
							s.Text.Set(v)
						}),
					),
					vdom.Span(strings.ToUpper(text)),
					vdom.Small(fmt.Sprintf("%d chars", len(text))),
				)
			})
		},
	}
}
