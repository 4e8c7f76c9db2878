// Package config holds the compiled configuration graph of a talui app.
//
// An AppConfig owns pages, a PageConfig owns windows, and each node may own
// a model layer, controllers keyed by action name and events. Windows also
// map controller results to views and carry exactly one default view.
//
// Graphs are built either directly with NewApp/NewPage/NewWindow or from a
// Definition tree through a Compiler, whose element compilers are looked up
// in a dispatch table keyed by Tag. Before use a graph must be initialised:
//
//	app, err := config.NewCompiler(config.WithControllers(ctrls)).Compile(def)
//
// Init reconciles the model layers. Window and page attributes that can be
// served by a shared page or app attribute are merged upwards and removed
// from the more specific layer, and events are re-keyed to the layer that now
// owns their attribute. Init never modifies the receiver; it returns a new
// graph.
package config
