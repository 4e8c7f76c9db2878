package model

// Model is the read/write view over attribute values used by controllers,
// resolvers and views.
type Model interface {
	Attribute(name string) (any, error)
	SetAttribute(name string, value any) error
	RemoveAttribute(name string) error
	ContainsValueFor(name string) (bool, error)
}

// Resolver supplies the value map backing one layer.
//
// The returned map is used and mutated in place by the model, so a resolver
// that hands out the same map for the same configuration makes values
// survive across model instances.
type Resolver interface {
	ModelAttributes(cfg *Configuration) (map[string]any, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(cfg *Configuration) (map[string]any, error)

// ModelAttributes calls f(cfg).
func (f ResolverFunc) ModelAttributes(cfg *Configuration) (map[string]any, error) {
	return f(cfg)
}

// Saver is implemented by resolvers that need an explicit write-back of layer
// values, such as a persistent store.
type Saver interface {
	SaveModelAttributes(cfg *Configuration, values map[string]any) error
}

// Boundary is implemented by resolvers that track lifecycle boundaries
// themselves.
type Boundary interface {
	EndLifecycle(lc Lifecycle) error
}

// Event records a change to an eventable attribute.
type Event struct {
	Source    string
	Layer     *Configuration
	Attribute *Attribute
	Old       any
	New       any
}

// Removed reports whether the event records a removal.
func (e Event) Removed() bool {
	return e.New == nil
}
