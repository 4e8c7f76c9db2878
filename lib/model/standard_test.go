package model

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var identity = cmp.Options{
	cmp.Comparer(func(a, b *Configuration) bool { return a == b }),
	cmp.Comparer(func(a, b *Attribute) bool { return a == b }),
}

// mapResolver hands out one shared map per configuration name.
type mapResolver struct {
	layers map[string]map[string]any
	calls  map[string]int
	saved  map[string]map[string]any
	ended  []Lifecycle
}

func newMapResolver() *mapResolver {
	return &mapResolver{
		layers: make(map[string]map[string]any),
		calls:  make(map[string]int),
		saved:  make(map[string]map[string]any),
	}
}

func (r *mapResolver) ModelAttributes(cfg *Configuration) (map[string]any, error) {
	r.calls[cfg.Name()]++
	values, ok := r.layers[cfg.Name()]
	if !ok {
		values = make(map[string]any)
		r.layers[cfg.Name()] = values
	}
	return values, nil
}

func (r *mapResolver) SaveModelAttributes(cfg *Configuration, values map[string]any) error {
	r.saved[cfg.Name()] = values
	return nil
}

func (r *mapResolver) EndLifecycle(lc Lifecycle) error {
	r.ended = append(r.ended, lc)
	return nil
}

func TestLayerPrecedence(t *testing.T) {
	window := MustConfiguration("window", Simple("x", String).WithDefault("window-x"))
	page := MustConfiguration("page",
		Simple("y", String).WithDefault("page-y"),
		Simple("x", String).WithDefault("page-x"),
	)

	m := NewStandardModel(nil)
	m.Push(page)
	m.Push(window)

	tests := []struct {
		name      string
		wantLayer *Configuration
		wantValue any
	}{
		{"x", window, "window-x"},
		{"y", page, "page-y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layer, _, err := m.Lookup(tt.name)
			if err != nil {
				t.Fatalf("Lookup() error = %v", err)
			}
			if layer != tt.wantLayer {
				t.Errorf("Lookup(%q) layer = %s, want %s", tt.name, layer.Name(), tt.wantLayer.Name())
			}
			got, err := m.Attribute(tt.name)
			if err != nil {
				t.Fatalf("Attribute() error = %v", err)
			}
			if got != tt.wantValue {
				t.Errorf("Attribute(%q) = %v, want %v", tt.name, got, tt.wantValue)
			}
		})
	}

	if _, err := m.Pop(); err != nil {
		t.Fatalf("Pop() error = %v", err)
	}
	if got, _ := m.Attribute("x"); got != "page-x" {
		t.Errorf("after Pop Attribute(x) = %v, want page-x", got)
	}
}

func TestUnsupportedAttribute(t *testing.T) {
	m := NewStandardModel(nil)
	m.Push(MustConfiguration("window", Simple("a", Int)))

	if _, err := m.Attribute("b"); !IsUnsupportedAttribute(err) {
		t.Errorf("Attribute(b) error = %v, want ErrUnsupportedAttribute", err)
	}
	if err := m.SetAttribute("b", 1); !IsUnsupportedAttribute(err) {
		t.Errorf("SetAttribute(b) error = %v, want ErrUnsupportedAttribute", err)
	}
	if err := m.RemoveAttribute("b"); !IsUnsupportedAttribute(err) {
		t.Errorf("RemoveAttribute(b) error = %v, want ErrUnsupportedAttribute", err)
	}
	if _, err := m.ContainsValueFor("b"); !IsUnsupportedAttribute(err) {
		t.Errorf("ContainsValueFor(b) error = %v, want ErrUnsupportedAttribute", err)
	}
}

// Defaults are never stored, so the first set of an attribute records a nil
// old value even when the default was read beforehand.
func TestSetThenGetRecordsEvent(t *testing.T) {
	count := Simple("count", Int).WithDefault(0).Eventable()
	window := MustConfiguration("window", count)

	m := NewStandardModel(nil, WithSource("test"))
	m.Push(window)

	if got, _ := m.Attribute("count"); got != 0 {
		t.Fatalf("Attribute(count) before set = %v, want 0", got)
	}
	if err := m.SetAttribute("count", 5); err != nil {
		t.Fatalf("SetAttribute() error = %v", err)
	}
	got, err := m.Attribute("count")
	if err != nil {
		t.Fatalf("Attribute() error = %v", err)
	}
	if got != 5 {
		t.Errorf("Attribute(count) = %v, want 5", got)
	}

	want := []Event{{Source: "test", Layer: window, Attribute: count, Old: nil, New: 5}}
	if diff := cmp.Diff(want, m.Events(), identity); diff != "" {
		t.Errorf("Events() mismatch (-want +got):\n%s", diff)
	}
}

func TestEventsOnlyForEventable(t *testing.T) {
	window := MustConfiguration("window",
		Simple("quiet", Int),
		Simple("loud", Int).Eventable(),
	)
	m := NewStandardModel(nil)
	m.Push(window)

	_ = m.SetAttribute("quiet", 1)
	_ = m.SetAttribute("loud", 1)
	_ = m.SetAttribute("loud", 2)
	_ = m.RemoveAttribute("loud")

	events := m.Events()
	if len(events) != 3 {
		t.Fatalf("len(Events()) = %d, want 3", len(events))
	}
	last := events[2]
	if !last.Removed() || last.Old != 2 {
		t.Errorf("removal event = %+v, want Old=2 New=nil", last)
	}

	m.ClearEvents()
	m.RecordEvents(false)
	_ = m.SetAttribute("loud", 3)
	if len(m.Events()) != 0 {
		t.Errorf("events recorded while disabled: %v", m.Events())
	}
}

func TestSetAttributeCoerces(t *testing.T) {
	m := NewStandardModel(nil)
	m.Push(MustConfiguration("window", Simple("count", Int)))

	if err := m.SetAttribute("count", "41"); err != nil {
		t.Fatalf("SetAttribute() error = %v", err)
	}
	if got, _ := m.Attribute("count"); got != 41 {
		t.Errorf("Attribute(count) = %#v, want 41", got)
	}
	if err := m.SetAttribute("count", "many"); !IsInvalidArgument(err) {
		t.Errorf("SetAttribute(many) error = %v, want ErrInvalidArgument", err)
	}
}

func TestResolvedAttributeCachedAndGuarded(t *testing.T) {
	calls := 0
	var seen []Model
	total := Resolved("total", Int, func(m Model) any {
		calls++
		seen = append(seen, m)
		if m == nil {
			return nil
		}
		// Calls back into the model; the nested resolver must not see it.
		v, _ := m.Attribute("nested")
		if v == nil {
			return 1
		}
		return 2
	})
	var nestedSaw Model = &SimpleModel{}
	nested := Resolved("nested", Int, func(m Model) any {
		nestedSaw = m
		return nil
	})
	m := NewStandardModel(nil)
	m.Push(MustConfiguration("window", total, nested))

	got, err := m.Attribute("total")
	if err != nil {
		t.Fatalf("Attribute() error = %v", err)
	}
	if got != 1 {
		t.Errorf("Attribute(total) = %v, want 1", got)
	}
	if nestedSaw != nil {
		t.Errorf("nested resolver received %v, want nil model", nestedSaw)
	}
	if seen[0] != Model(m) {
		t.Errorf("outer resolver received %v, want the model", seen[0])
	}

	if _, err := m.Attribute("total"); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("resolver calls = %d, want 1 (cached)", calls)
	}
}

func TestResolvedNilFallsBackToDefault(t *testing.T) {
	a := Resolved("maybe", String, func(Model) any { return nil }).WithDefault("fallback")
	m := NewStandardModel(nil)
	m.Push(MustConfiguration("window", a))

	got, err := m.Attribute("maybe")
	if err != nil || got != "fallback" {
		t.Fatalf("Attribute(maybe) = %v, %v; want fallback", got, err)
	}
	ok, err := m.ContainsValueFor("maybe")
	if err != nil || !ok {
		t.Errorf("ContainsValueFor(resolved) = %v, %v; want true", ok, err)
	}
}

func TestContainsValueFor(t *testing.T) {
	m := NewStandardModel(nil)
	m.Push(MustConfiguration("window",
		Simple("s", String).WithDefault("d"),
		Config("c", String, "fixed"),
	))

	tests := []struct {
		name string
		want bool
	}{
		{"s", false},
		{"c", true},
	}
	for _, tt := range tests {
		if got, err := m.ContainsValueFor(tt.name); err != nil || got != tt.want {
			t.Errorf("ContainsValueFor(%q) = %v, %v; want %v", tt.name, got, err, tt.want)
		}
	}

	_ = m.SetAttribute("s", "v")
	if got, _ := m.ContainsValueFor("s"); !got {
		t.Error("ContainsValueFor(s) after set = false, want true")
	}
	_ = m.RemoveAttribute("s")
	if got, _ := m.ContainsValueFor("s"); got {
		t.Error("ContainsValueFor(s) after remove = true, want false")
	}
	if got, _ := m.Attribute("s"); got != "d" {
		t.Errorf("Attribute(s) after remove = %v, want default d", got)
	}
}

func TestResolverSharedAcrossModels(t *testing.T) {
	r := newMapResolver()
	window := MustConfiguration("window", Simple("count", Int))

	first := NewStandardModel(r)
	first.Push(window)
	_ = first.SetAttribute("count", 3)
	_, _ = first.Attribute("count")

	second := NewStandardModel(r)
	second.Push(window)
	got, err := second.Attribute("count")
	if err != nil || got != 3 {
		t.Fatalf("second model Attribute(count) = %v, %v; want 3", got, err)
	}
	if r.calls["window"] != 2 {
		t.Errorf("resolver calls = %d, want one per model", r.calls["window"])
	}

	second.Clear()
	_, _ = second.Attribute("count")
	if r.calls["window"] != 3 {
		t.Errorf("resolver calls after Clear = %d, want 3", r.calls["window"])
	}
}

func TestAliasSharesValue(t *testing.T) {
	title := Simple("title", String)
	page := MustConfiguration("page", title)
	page, _, ok := page.Merge(Simple("name", String).WithAliases("title").Aliasable())
	if !ok {
		t.Fatal("Merge() failed")
	}
	m := NewStandardModel(nil)
	m.Push(page)

	_ = m.SetAttribute("name", "Ada")
	if got, _ := m.Attribute("title"); got != "Ada" {
		t.Errorf("Attribute(title) = %v, want Ada", got)
	}
}

func TestEndLifecycleAndFlush(t *testing.T) {
	r := newMapResolver()
	flash := Simple("notice", String)
	_ = flash.SetFlash(true)
	window := MustConfiguration("window", flash, Simple("count", Int))

	m := NewStandardModel(r)
	m.Push(window)
	_ = m.SetAttribute("notice", "saved")
	_ = m.SetAttribute("count", 1)

	if err := m.EndLifecycle(LifecycleFlash); err != nil {
		t.Fatalf("EndLifecycle() error = %v", err)
	}
	if ok, _ := m.ContainsValueFor("notice"); ok {
		t.Error("flash value survived EndLifecycle(flash)")
	}
	if ok, _ := m.ContainsValueFor("count"); !ok {
		t.Error("persistent value dropped by EndLifecycle(flash)")
	}
	if diff := cmp.Diff([]Lifecycle{LifecycleFlash}, r.ended); diff != "" {
		t.Errorf("resolver boundaries mismatch (-want +got):\n%s", diff)
	}

	if err := m.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if diff := cmp.Diff(map[string]any{"count": 1}, r.saved["window"]); diff != "" {
		t.Errorf("saved values mismatch (-want +got):\n%s", diff)
	}
}

func TestResolverError(t *testing.T) {
	boom := errors.New("boom")
	m := NewStandardModel(ResolverFunc(func(*Configuration) (map[string]any, error) {
		return nil, boom
	}))
	m.Push(MustConfiguration("window", Simple("a", Int)))

	if _, err := m.Attribute("a"); !errors.Is(err, boom) {
		t.Errorf("Attribute() error = %v, want boom", err)
	}
}

func TestPopEmpty(t *testing.T) {
	if _, err := NewStandardModel(nil).Pop(); !IsInvalidArgument(err) {
		t.Errorf("Pop() error = %v, want ErrInvalidArgument", err)
	}
}

func TestSimpleModel(t *testing.T) {
	m := NewSimpleModel(map[string]any{"a": 1})
	if v, _ := m.Attribute("missing"); v != nil {
		t.Errorf("Attribute(missing) = %v, want nil", v)
	}
	_ = m.SetAttribute("b", 2)
	_ = m.RemoveAttribute("a")
	if diff := cmp.Diff(map[string]any{"b": 2}, m.Values()); diff != "" {
		t.Errorf("Values() mismatch (-want +got):\n%s", diff)
	}
	if ok, _ := m.ContainsValueFor("b"); !ok {
		t.Error("ContainsValueFor(b) = false")
	}
}
