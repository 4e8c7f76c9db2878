package model

import (
	"fmt"
	"slices"
	"strings"
)

// Lifecycle determines how long a stored attribute value survives.
type Lifecycle int

const (
	// LifecycleFlash values are dropped at the end of the request.
	LifecycleFlash Lifecycle = iota
	// LifecycleRender values are dropped once the view has rendered.
	LifecycleRender
	// LifecycleAction values are dropped once the controller has run.
	LifecycleAction
	// LifecyclePersist values are kept by the session store.
	LifecyclePersist
)

var lifecycleNames = [...]string{"flash", "render", "action", "persist"}

func (lc Lifecycle) String() string {
	if lc < 0 || int(lc) >= len(lifecycleNames) {
		return fmt.Sprintf("Lifecycle(%d)", int(lc))
	}
	return lifecycleNames[lc]
}

// ParseLifecycle parses a lifecycle name as produced by Lifecycle.String.
func ParseLifecycle(s string) (Lifecycle, error) {
	for i, name := range lifecycleNames {
		if strings.EqualFold(s, name) {
			return Lifecycle(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown lifecycle %q", ErrInvalidArgument, s)
}

// Kind distinguishes the three attribute variants.
type Kind int

const (
	// KindSimple attributes hold whatever the layer store holds.
	KindSimple Kind = iota
	// KindResolved attributes compute their value from the model.
	KindResolved
	// KindConfig attributes carry a value fixed at configuration time.
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindResolved:
		return "resolved"
	case KindConfig:
		return "config"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ResolveFunc computes the value of a resolved attribute. m is nil when the
// attribute is resolved from inside another resolver.
type ResolveFunc func(m Model) any

// SetterFunc transforms a value before it is stored.
type SetterFunc func(m Model, old, value any) (any, error)

// Attribute describes a single named model value.
//
// Construct attributes with Simple, Resolved or Config and refine them with
// the chained builder methods:
//
//	count := model.Simple("count", model.Int).WithDefault(0).Eventable()
//	title := model.Simple("title", model.String).WithAliases("pageTitle").Aliasable()
//
// The name never changes after construction.
type Attribute struct {
	name          string
	typ           *Type
	kind          Kind
	aliases       []string
	def           any
	defFunc       ResolveFunc
	lifecycle     Lifecycle
	eventable     bool
	aliasable     bool
	aliasExpected bool
	resolve       ResolveFunc
	value         any
	setter        SetterFunc
}

// Simple creates a store-backed attribute. Simple attributes are persistent
// until SetFlash or SetLifecycle says otherwise.
func Simple(name string, t *Type) *Attribute {
	return newAttribute(name, t, KindSimple, LifecyclePersist)
}

// Resolved creates an attribute whose value is computed by fn. fn may be nil
// and bound later with Bind.
func Resolved(name string, t *Type, fn ResolveFunc) *Attribute {
	a := newAttribute(name, t, KindResolved, LifecycleFlash)
	a.resolve = fn
	return a
}

// Config creates an attribute carrying a fixed configured value.
func Config(name string, t *Type, value any) *Attribute {
	a := newAttribute(name, t, KindConfig, LifecycleFlash)
	a.value = value
	return a
}

func newAttribute(name string, t *Type, kind Kind, lc Lifecycle) *Attribute {
	if t == nil {
		t = Any
	}
	return &Attribute{name: name, typ: t, kind: kind, lifecycle: lc}
}

// WithAliases adds alternate names under which a shared layer may serve this
// attribute.
func (a *Attribute) WithAliases(aliases ...string) *Attribute {
	a.aliases = append(a.aliases, aliases...)
	return a
}

// WithDefault sets a constant default value.
func (a *Attribute) WithDefault(v any) *Attribute {
	a.def = v
	a.defFunc = nil
	return a
}

// WithDefaultFunc sets a default computed from the model.
func (a *Attribute) WithDefaultFunc(fn ResolveFunc) *Attribute {
	a.defFunc = fn
	a.def = nil
	return a
}

// WithSetter replaces the default type coercion applied by SetValue.
func (a *Attribute) WithSetter(fn SetterFunc) *Attribute {
	a.setter = fn
	return a
}

// Eventable makes changes to the attribute produce model events.
func (a *Attribute) Eventable() *Attribute {
	a.eventable = true
	return a
}

// Aliasable allows the attribute to be merged into a shared layer.
func (a *Attribute) Aliasable() *Attribute {
	a.aliasable = true
	return a
}

// AliasExpected marks the attribute as one that must merge into a shared
// layer. It implies Aliasable.
func (a *Attribute) AliasExpected() *Attribute {
	a.aliasable = true
	a.aliasExpected = true
	return a
}

// Bind sets the resolver of a resolved attribute.
func (a *Attribute) Bind(fn ResolveFunc) error {
	if a.kind != KindResolved {
		return fmt.Errorf("%w: cannot bind resolver to %s attribute %q", ErrInvalidArgument, a.kind, a.name)
	}
	a.resolve = fn
	return nil
}

// SetLifecycle changes the lifecycle. Resolved and config attributes cannot
// be made persistent.
func (a *Attribute) SetLifecycle(lc Lifecycle) error {
	if lc == LifecyclePersist && a.kind != KindSimple {
		return fmt.Errorf("%w: %s attribute %q is always flash", ErrInvalidArgument, a.kind, a.name)
	}
	a.lifecycle = lc
	return nil
}

// SetFlash switches between flash and persistent storage.
func (a *Attribute) SetFlash(flash bool) error {
	if flash {
		if a.lifecycle == LifecyclePersist {
			a.lifecycle = LifecycleFlash
		}
		return nil
	}
	return a.SetLifecycle(LifecyclePersist)
}

// Name returns the attribute name.
func (a *Attribute) Name() string { return a.name }

// Type returns the declared type.
func (a *Attribute) Type() *Type { return a.typ }

// Kind returns the attribute variant.
func (a *Attribute) Kind() Kind { return a.kind }

// Aliases returns the declared aliases.
func (a *Attribute) Aliases() []string { return slices.Clone(a.aliases) }

// Lifecycle returns the lifecycle tag.
func (a *Attribute) Lifecycle() Lifecycle { return a.lifecycle }

// IsFlash reports whether stored values are dropped at some lifecycle boundary.
func (a *Attribute) IsFlash() bool { return a.lifecycle != LifecyclePersist }

// IsEventable reports whether changes produce events.
func (a *Attribute) IsEventable() bool { return a.eventable }

// IsAliasable reports whether the attribute may merge into a shared layer.
func (a *Attribute) IsAliasable() bool { return a.aliasable }

// IsAliasExpected reports whether failing to merge is a configuration error.
func (a *Attribute) IsAliasExpected() bool { return a.aliasExpected }

// IsSimple reports whether the attribute type is a primitive.
func (a *Attribute) IsSimple() bool { return a.typ.Simple() }

// IsResolved reports whether the attribute always has a value of its own.
func (a *Attribute) IsResolved() bool { return a.kind != KindSimple }

// HasAlias reports whether name is one of the declared aliases.
func (a *Attribute) HasAlias(name string) bool {
	return slices.Contains(a.aliases, name)
}

// Value returns the attribute's own value. Simple attributes have none.
func (a *Attribute) Value(m Model) any {
	switch a.kind {
	case KindResolved:
		if a.resolve == nil {
			return nil
		}
		return a.resolve(m)
	case KindConfig:
		return a.value
	default:
		return nil
	}
}

// DefaultValue returns the value used when nothing is stored or resolved.
func (a *Attribute) DefaultValue(m Model) any {
	if a.defFunc != nil {
		return a.defFunc(m)
	}
	return a.def
}

// SetValue returns the value to store when value replaces old.
func (a *Attribute) SetValue(m Model, old, value any) (any, error) {
	if a.setter != nil {
		return a.setter(m, old, value)
	}
	return a.typ.Coerce(value)
}

func (a *Attribute) String() string {
	return fmt.Sprintf("%s %s (%s, %s)", a.name, a.typ, a.kind, a.lifecycle)
}
