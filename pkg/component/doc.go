// Package component implements the component instance: props and attrs,
// emits, slots, provide/inject, lifecycle hooks, watchers and the error
// funnel. The renderer drives instances through SetupComponent,
// RenderComponentRoot and UpdateProps; this package never touches host
// nodes.
//
// Definitions are plain values:
//
//	var Counter = &component.Definition{
//		Name: "Counter",
//		Props: component.PropsOptions{
//			"start": {Type: component.PropNumber, Default: 0},
//		},
//		Setup: func(ctx *component.Ctx) any {
//			n := reactive.NewSignal(ctx.Prop("start").(int))
//			return component.RenderFunc(func() *vdom.VNode {
//				return vdom.Button(
//					vdom.OnClick(func() { n.Set(n.Peek() + 1) }),
//					vdom.Textf("%d", n.Get()),
//				)
//			})
//		},
//	}
//
// Hooks such as OnMounted and helpers such as Provide only work while a
// setup function runs, because they attach to the current instance.
package component
