package model

import "maps"

// SimpleModel is a single-layer, map-backed model. Any name is accepted and
// unset names read as nil.
type SimpleModel struct {
	values map[string]any
}

// NewSimpleModel returns a model seeded with a copy of values.
func NewSimpleModel(values map[string]any) *SimpleModel {
	m := &SimpleModel{values: make(map[string]any, len(values))}
	maps.Copy(m.values, values)
	return m
}

// Attribute returns the stored value of name.
func (m *SimpleModel) Attribute(name string) (any, error) {
	return m.values[name], nil
}

// SetAttribute stores value under name.
func (m *SimpleModel) SetAttribute(name string, value any) error {
	m.values[name] = value
	return nil
}

// RemoveAttribute deletes name.
func (m *SimpleModel) RemoveAttribute(name string) error {
	delete(m.values, name)
	return nil
}

// ContainsValueFor reports whether name has been stored.
func (m *SimpleModel) ContainsValueFor(name string) (bool, error) {
	_, ok := m.values[name]
	return ok, nil
}

// Values returns a copy of the stored values.
func (m *SimpleModel) Values() map[string]any {
	return maps.Clone(m.values)
}
