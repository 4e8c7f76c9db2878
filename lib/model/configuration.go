package model

import (
	"fmt"
	"maps"
	"slices"
	"sort"
)

// Configuration is a named, immutable set of attributes forming one layer of
// a model.
//
// Every key maps to exactly one attribute. A key is either the attribute's
// own name or an alias registered for it, typically by Merge. Methods that
// change the set return a new Configuration and leave the receiver untouched,
// so a configuration can be shared between apps without defensive copies.
type Configuration struct {
	name  string
	attrs []*Attribute
	index map[string]*Attribute
}

// NewConfiguration builds a configuration from attrs. Two attributes with the
// same name are a configuration error.
func NewConfiguration(name string, attrs ...*Attribute) (*Configuration, error) {
	c := &Configuration{name: name, index: make(map[string]*Attribute, len(attrs))}
	for _, a := range attrs {
		if err := c.add(a); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustConfiguration is like NewConfiguration but panics on error.
func MustConfiguration(name string, attrs ...*Attribute) *Configuration {
	c, err := NewConfiguration(name, attrs...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Configuration) add(a *Attribute) error {
	if a == nil {
		return fmt.Errorf("%w: nil attribute in %q", ErrConfiguration, c.name)
	}
	if existing, ok := c.index[a.name]; ok && existing != a {
		return fmt.Errorf("%w: %q declares %q twice", ErrConfiguration, c.name, a.name)
	} else if ok {
		return nil
	}
	c.attrs = append(c.attrs, a)
	c.index[a.name] = a
	return nil
}

// Name returns the layer name.
func (c *Configuration) Name() string {
	return c.name
}

// Len returns the number of distinct attributes.
func (c *Configuration) Len() int {
	return len(c.attrs)
}

// Attributes returns the distinct attributes in declaration order.
func (c *Configuration) Attributes() []*Attribute {
	return slices.Clone(c.attrs)
}

// Lookup returns the attribute registered under name.
func (c *Configuration) Lookup(name string) (*Attribute, bool) {
	a, ok := c.index[name]
	return a, ok
}

// Declares reports whether name is a key of this configuration.
func (c *Configuration) Declares(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Keys returns every key, sorted.
func (c *Configuration) Keys() []string {
	keys := make([]string, 0, len(c.index))
	for k := range c.index {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// KeysFor returns the sorted keys under which a is registered.
func (c *Configuration) KeysFor(a *Attribute) []string {
	var keys []string
	for k, v := range c.index {
		if v == a {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a copy sharing the attribute values.
func (c *Configuration) Clone() *Configuration {
	return &Configuration{
		name:  c.name,
		attrs: slices.Clone(c.attrs),
		index: maps.Clone(c.index),
	}
}

// With returns a configuration that also declares a.
func (c *Configuration) With(a *Attribute) (*Configuration, error) {
	next := c.Clone()
	if err := next.add(a); err != nil {
		return nil, err
	}
	return next, nil
}

// WithAlias returns a configuration where alias is an additional key for the
// attribute registered under name.
func (c *Configuration) WithAlias(alias, name string) (*Configuration, error) {
	a, ok := c.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q has no attribute %q to alias", ErrConfiguration, c.name, name)
	}
	if existing, ok := c.index[alias]; ok {
		if existing == a {
			return c, nil
		}
		return nil, fmt.Errorf("%w: %q already maps %q to %q", ErrConfiguration, c.name, alias, existing.name)
	}
	next := c.Clone()
	next.index[alias] = a
	return next, nil
}

// Without returns a configuration with the attribute registered under name,
// and every key pointing at it, removed.
func (c *Configuration) Without(name string) *Configuration {
	a, ok := c.index[name]
	if !ok {
		return c
	}
	next := &Configuration{name: c.name, index: make(map[string]*Attribute, len(c.index))}
	for _, attr := range c.attrs {
		if attr != a {
			next.attrs = append(next.attrs, attr)
		}
	}
	for k, v := range c.index {
		if v != a {
			next.index[k] = v
		}
	}
	return next
}

// Merge tries to fold attr, declared by a more specific layer, into this
// configuration.
//
// Existing attributes are scanned in declaration order. An attribute matches
// when it has the same name as attr, declares attr's name as an alias, or is
// named by one of attr's aliases; the match name is attr's name. The first
// match whose type is assignable to attr's type wins: the shared attribute is
// registered under the match name and the extended configuration returned.
// If the key is already registered for that attribute the receiver is
// returned unchanged. A key already taken by a different attribute is
// skipped.
//
// ok is false when attr is not aliasable or nothing matched.
func (c *Configuration) Merge(attr *Attribute) (merged *Configuration, name string, ok bool) {
	if attr == nil || !attr.IsAliasable() {
		return c, "", false
	}
	for _, a := range c.attrs {
		match := matchName(a, attr)
		if match == "" {
			continue
		}
		if !attr.Type().AssignableFrom(a.Type()) {
			continue
		}
		existing, taken := c.index[match]
		if !taken {
			next := c.Clone()
			next.index[match] = a
			return next, match, true
		}
		if existing == a {
			return c, match, true
		}
		// Matches the name of a different attribute. Not treated as a failure;
		// keep looking for another candidate.
	}
	return c, "", false
}

func matchName(shared, attr *Attribute) string {
	switch {
	case shared.name == attr.name:
		return shared.name
	case shared.HasAlias(attr.name), attr.HasAlias(shared.name):
		return attr.name
	default:
		return ""
	}
}

func (c *Configuration) String() string {
	return fmt.Sprintf("%s%v", c.name, c.Keys())
}
