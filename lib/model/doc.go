// Package model implements the layered model used by talui windows.
//
// A model is a stack of Configurations (app, page, window), each declaring a
// set of named Attributes. Lookups scan the stack from the most specific layer
// outwards and stop at the first layer declaring the name:
//
//	m := model.NewStandardModel(resolver)
//	m.Push(appCfg)
//	m.Push(pageCfg)
//	m.Push(windowCfg)
//	count, err := m.Attribute("count")
//
// Values live in per-layer maps fetched lazily from a Resolver, so the same
// session store can back many short-lived StandardModel instances. Attributes
// come in three kinds:
//   - Simple: the value comes from the layer store, falling back to a default
//   - Resolved: the value is computed from the model by a bound function
//   - Config: the value is fixed at configuration time
//
// Configurations are immutable snapshots. Alias merging (see
// Configuration.Merge) returns a new configuration with the extra key, which
// lets an attribute declared by a window be served by a shared page or app
// attribute.
//
// StandardModel is not safe for concurrent use. Build one per request.
package model
