// Package talui runs window-oriented applications described by a layered
// model configuration.
//
// An application is a graph of pages and windows. Each node carries a model
// layer declaring typed attributes, controllers performing named actions and
// events tying attribute changes to actions. Windows map controller results
// to views, and every view names a template that is compiled to a render tree
// by the template compiler.
//
// # Core Concepts
//
// Attributes declared by a window can merge into the page or app layer when
// they are aliasable and a shared attribute matches by name or alias. The
// merge happens once, when the configuration is initialised:
//
//	app, err := config.NewCompiler(
//	    config.WithController("save", saveCart),
//	).Compile(def)
//
// At request time a model is built from the app, page and window layers, in
// that order, so the window is the most specific:
//
//	rt := talui.New(app, compiler, store.NewMemory())
//	resp, err := rt.Dispatch(ctx, talui.Request{
//	    Page:   "cart",
//	    Window: "summary",
//	    Action: "save",
//	    Params: map[string]any{"items": "3"},
//	})
//
// # Views and Templates
//
// The controller's result selects a view. An empty or unmapped result falls
// back to the window's default view. The view's template is compiled with the
// view's styles active, and the compiled tree is cached per style set:
//
//	err = resp.Render(ctx, w)
//
// Render ends the render and flash lifecycles and flushes the model to its
// resolver when the resolver persists values.
//
// # Events
//
// Setting an eventable attribute records a change. Changes that match a
// configured event perform the event's action once, after the requested
// action. Pass-through events are reported in Response.Triggers instead.
//
// # Testing
//
// TestDispatch runs a request and renders it in one step:
//
//	result, err := talui.TestDispatch(rt, talui.Request{Page: "cart", Window: "summary"})
//	if !result.HTMLContains("Checkout") {
//	    t.Fatal("missing checkout command")
//	}
package talui
