package model

import (
	"fmt"
	"log/slog"
	"slices"
)

// StandardModel resolves attributes through a stack of configurations.
type StandardModel struct {
	layers    []*Configuration // most specific first
	values    map[*Configuration]map[string]any
	resolver  Resolver
	events    []Event
	record    bool
	source    string
	resolving bool
	logger    *slog.Logger
}

// Option configures a StandardModel.
type Option func(*StandardModel)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(m *StandardModel) {
		m.logger = l
	}
}

// WithSource sets the source tag recorded on events.
func WithSource(source string) Option {
	return func(m *StandardModel) {
		m.source = source
	}
}

// WithoutEvents disables event recording.
func WithoutEvents() Option {
	return func(m *StandardModel) {
		m.record = false
	}
}

// NewStandardModel creates an empty model fetching layer values from r. A nil
// resolver gives every layer a fresh, private value map.
func NewStandardModel(r Resolver, opts ...Option) *StandardModel {
	m := &StandardModel{
		values:   make(map[*Configuration]map[string]any),
		resolver: r,
		record:   true,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Push makes cfg the most specific layer.
func (m *StandardModel) Push(cfg *Configuration) {
	m.layers = slices.Insert(m.layers, 0, cfg)
}

// Pop removes the most specific layer. Values already fetched for it are
// kept until Clear.
func (m *StandardModel) Pop() (*Configuration, error) {
	if len(m.layers) == 0 {
		return nil, fmt.Errorf("%w: pop from empty model", ErrInvalidArgument)
	}
	top := m.layers[0]
	m.layers = m.layers[1:]
	return top, nil
}

// Layers returns the layer stack, most specific first.
func (m *StandardModel) Layers() []*Configuration {
	return slices.Clone(m.layers)
}

// SetSource sets the source tag recorded on subsequent events.
func (m *StandardModel) SetSource(source string) {
	m.source = source
}

// RecordEvents turns event recording on or off.
func (m *StandardModel) RecordEvents(on bool) {
	m.record = on
}

// Events returns the recorded events in order.
func (m *StandardModel) Events() []Event {
	return slices.Clone(m.events)
}

// ClearEvents discards the recorded events.
func (m *StandardModel) ClearEvents() {
	m.events = nil
}

// Lookup returns the layer and attribute serving name.
func (m *StandardModel) Lookup(name string) (*Configuration, *Attribute, error) {
	for _, layer := range m.layers {
		if a, ok := layer.Lookup(name); ok {
			return layer, a, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedAttribute, name)
}

func (m *StandardModel) layerValues(cfg *Configuration) (map[string]any, error) {
	if values, ok := m.values[cfg]; ok {
		return values, nil
	}
	var values map[string]any
	if m.resolver != nil {
		var err error
		values, err = m.resolver.ModelAttributes(cfg)
		if err != nil {
			return nil, fmt.Errorf("model: resolve layer %q: %w", cfg.Name(), err)
		}
	}
	if values == nil {
		values = make(map[string]any)
	}
	m.logger.Debug("layer values fetched", "layer", cfg.Name(), "count", len(values))
	m.values[cfg] = values
	return values, nil
}

// guarded runs fn with the model withheld when a resolver is already active,
// so resolvers calling back into the model cannot recurse indefinitely.
func (m *StandardModel) guarded(fn func(Model) any) any {
	var arg Model
	if !m.resolving {
		arg = m
	}
	prev := m.resolving
	m.resolving = true
	defer func() { m.resolving = prev }()
	return fn(arg)
}

// Attribute returns the value of name from the first layer declaring it.
//
// A stored value wins. Otherwise the attribute's own value is resolved and
// stored when non-nil. Otherwise the default value is returned without being
// stored. Resolution never records events.
func (m *StandardModel) Attribute(name string) (any, error) {
	layer, attr, err := m.Lookup(name)
	if err != nil {
		return nil, err
	}
	values, err := m.layerValues(layer)
	if err != nil {
		return nil, err
	}
	if v, ok := values[attr.Name()]; ok && v != nil {
		return v, nil
	}
	if v := m.guarded(attr.Value); v != nil {
		values[attr.Name()] = v
		return v, nil
	}
	return m.guarded(attr.DefaultValue), nil
}

// SetAttribute stores value for name in the first layer declaring it.
func (m *StandardModel) SetAttribute(name string, value any) error {
	layer, attr, err := m.Lookup(name)
	if err != nil {
		return err
	}
	values, err := m.layerValues(layer)
	if err != nil {
		return err
	}
	old := values[attr.Name()]
	stored, err := attr.SetValue(m, old, value)
	if err != nil {
		return fmt.Errorf("model: set %q: %w", name, err)
	}
	values[attr.Name()] = stored
	m.emit(layer, attr, old, stored)
	return nil
}

// RemoveAttribute drops the stored value for name. The attribute stays
// declared and falls back to resolution or its default.
func (m *StandardModel) RemoveAttribute(name string) error {
	layer, attr, err := m.Lookup(name)
	if err != nil {
		return err
	}
	values, err := m.layerValues(layer)
	if err != nil {
		return err
	}
	old := values[attr.Name()]
	delete(values, attr.Name())
	m.emit(layer, attr, old, nil)
	return nil
}

// ContainsValueFor reports whether name has a value of its own: resolved and
// config attributes always do, simple ones only once stored.
func (m *StandardModel) ContainsValueFor(name string) (bool, error) {
	layer, attr, err := m.Lookup(name)
	if err != nil {
		return false, err
	}
	if attr.IsResolved() {
		return true, nil
	}
	values, err := m.layerValues(layer)
	if err != nil {
		return false, err
	}
	_, ok := values[attr.Name()]
	return ok, nil
}

func (m *StandardModel) emit(layer *Configuration, attr *Attribute, old, value any) {
	if !attr.IsEventable() || !m.record {
		return
	}
	m.events = append(m.events, Event{
		Source:    m.source,
		Layer:     layer,
		Attribute: attr,
		Old:       old,
		New:       value,
	})
}

// EndLifecycle drops stored values of every attribute with lifecycle lc from
// the layers fetched so far and notifies the resolver when it implements
// Boundary.
func (m *StandardModel) EndLifecycle(lc Lifecycle) error {
	for layer, values := range m.values {
		for _, attr := range layer.Attributes() {
			if attr.Lifecycle() == lc {
				delete(values, attr.Name())
			}
		}
	}
	if b, ok := m.resolver.(Boundary); ok {
		return b.EndLifecycle(lc)
	}
	return nil
}

// Flush hands every fetched layer back to the resolver when it implements
// Saver.
func (m *StandardModel) Flush() error {
	saver, ok := m.resolver.(Saver)
	if !ok {
		return nil
	}
	for layer, values := range m.values {
		if err := saver.SaveModelAttributes(layer, values); err != nil {
			return fmt.Errorf("model: save layer %q: %w", layer.Name(), err)
		}
	}
	return nil
}

// Clear forgets every fetched layer so the next access asks the resolver
// again.
func (m *StandardModel) Clear() {
	m.values = make(map[*Configuration]map[string]any)
}
