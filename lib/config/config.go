package config

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/pthm/talui/lib/model"
)

// Controller performs an action against the model and returns a result name
// used to pick the view.
type Controller interface {
	Perform(ctx context.Context, m model.Model) (string, error)
}

// ControllerFunc adapts a function to the Controller interface.
type ControllerFunc func(ctx context.Context, m model.Model) (string, error)

// Perform calls f(ctx, m).
func (f ControllerFunc) Perform(ctx context.Context, m model.Model) (string, error) {
	return f(ctx, m)
}

// View names the template rendered for a controller result.
type View struct {
	Result   string
	Template string
	Styles   []string
	Default  bool
}

// node holds what apps, pages and windows have in common.
type node struct {
	name        string
	layerName   string
	model       *model.Configuration
	controllers map[string]Controller
	events      map[string]*Event
}

func newNode(name string) node {
	return node{
		name:        name,
		controllers: make(map[string]Controller),
		events:      make(map[string]*Event),
	}
}

func (n *node) clone() node {
	return node{
		name:        n.name,
		layerName:   n.layerName,
		model:       n.model,
		controllers: maps.Clone(n.controllers),
		events:      maps.Clone(n.events),
	}
}

// Name returns the node name.
func (n *node) Name() string { return n.name }

// LayerName returns the name given to the node's model layer when its
// definition does not name it. Windows qualify it with their page, as in
// "cart.summary", so that same-named windows of different pages keep apart.
func (n *node) LayerName() string {
	if n.layerName != "" {
		return n.layerName
	}
	return n.name
}

// Model returns the node's model layer, which is never nil after Init.
func (n *node) Model() *model.Configuration { return n.model }

// SetModel replaces the model layer.
func (n *node) SetModel(cfg *model.Configuration) { n.model = cfg }

// AddController registers c for action.
func (n *node) AddController(action string, c Controller) error {
	if c == nil {
		return fmt.Errorf("%w: nil controller for action %q in %q", ErrConfiguration, action, n.name)
	}
	if _, exists := n.controllers[action]; exists {
		return fmt.Errorf("%w: duplicate controller for action %q in %q", ErrConfiguration, action, n.name)
	}
	n.controllers[action] = c
	return nil
}

// Actions returns the sorted action names with a controller on this node.
func (n *node) Actions() []string {
	return sortedKeys(n.controllers)
}

// AddEvent registers e under the attribute it targets.
func (n *node) AddEvent(e *Event) error {
	key := e.Attribute
	if key == "" {
		return fmt.Errorf("%w: event %q in %q has no attribute", ErrConfiguration, e.Name, n.name)
	}
	if _, exists := n.events[key]; exists {
		return fmt.Errorf("%w: two events on attribute %q in %q", ErrConfiguration, key, n.name)
	}
	n.events[key] = e
	return nil
}

// Events returns the events keyed by target. After Init keys have the form
// "<layer>.<attribute>".
func (n *node) Events() map[string]*Event {
	return maps.Clone(n.events)
}

// EventKeys returns the sorted event keys.
func (n *node) EventKeys() []string {
	return sortedKeys(n.events)
}

func (n *node) layer() *model.Configuration {
	if n.model == nil {
		return model.MustConfiguration(n.LayerName())
	}
	return n.model
}

// AppConfig is the root of the configuration graph.
type AppConfig struct {
	node
	pages []*PageConfig
}

// NewApp creates an empty app.
func NewApp(name string) *AppConfig {
	return &AppConfig{node: newNode(name)}
}

// AddPage attaches p to the app.
func (a *AppConfig) AddPage(p *PageConfig) error {
	if a.Page(p.name) != nil {
		return fmt.Errorf("%w: duplicate page %q in app %q", ErrConfiguration, p.name, a.name)
	}
	p.app = a
	a.pages = append(a.pages, p)
	return nil
}

// Pages returns the pages in declaration order.
func (a *AppConfig) Pages() []*PageConfig {
	return slices.Clone(a.pages)
}

// Page returns the named page or nil.
func (a *AppConfig) Page(name string) *PageConfig {
	for _, p := range a.pages {
		if p.name == name {
			return p
		}
	}
	return nil
}

// Window returns the named window of the named page.
func (a *AppConfig) Window(page, window string) (*WindowConfig, error) {
	p := a.Page(page)
	if p == nil {
		return nil, fmt.Errorf("%w: app %q has no page %q", ErrConfiguration, a.name, page)
	}
	w := p.Window(window)
	if w == nil {
		return nil, fmt.Errorf("%w: page %q has no window %q", ErrConfiguration, page, window)
	}
	return w, nil
}

// PageConfig groups windows sharing a page model.
type PageConfig struct {
	node
	app     *AppConfig
	windows []*WindowConfig
}

// NewPage creates an empty page.
func NewPage(name string) *PageConfig {
	return &PageConfig{node: newNode(name)}
}

// App returns the owning app.
func (p *PageConfig) App() *AppConfig {
	return p.app
}

// AddWindow attaches w to the page.
func (p *PageConfig) AddWindow(w *WindowConfig) error {
	if p.Window(w.name) != nil {
		return fmt.Errorf("%w: duplicate window %q in page %q", ErrConfiguration, w.name, p.name)
	}
	w.page = p
	if w.layerName == "" {
		w.layerName = p.name + "." + w.name
	}
	p.windows = append(p.windows, w)
	return nil
}

// Windows returns the windows in declaration order.
func (p *PageConfig) Windows() []*WindowConfig {
	return slices.Clone(p.windows)
}

// Window returns the named window or nil.
func (p *PageConfig) Window(name string) *WindowConfig {
	for _, w := range p.windows {
		if w.name == name {
			return w
		}
	}
	return nil
}

// WindowConfig is the most specific configuration node.
type WindowConfig struct {
	node
	page        *PageConfig
	views       map[string]*View
	defaultView *View
}

// NewWindow creates a window without views.
func NewWindow(name string) *WindowConfig {
	return &WindowConfig{node: newNode(name), views: make(map[string]*View)}
}

// Page returns the owning page.
func (w *WindowConfig) Page() *PageConfig {
	return w.page
}

// AddView maps v.Result to v. A second default view is an error.
func (w *WindowConfig) AddView(v *View) error {
	if _, exists := w.views[v.Result]; exists {
		return fmt.Errorf("%w: duplicate view for result %q in window %q", ErrConfiguration, v.Result, w.name)
	}
	if v.Default {
		if w.defaultView != nil {
			return fmt.Errorf("%w: window %q has more than one default view", ErrConfiguration, w.name)
		}
		w.defaultView = v
	}
	w.views[v.Result] = v
	return nil
}

// Validate checks that the window has exactly one default view.
func (w *WindowConfig) Validate() error {
	if w.defaultView == nil {
		return fmt.Errorf("%w: window %q has no default view", ErrConfiguration, w.name)
	}
	return nil
}

// DefaultView returns the default view.
func (w *WindowConfig) DefaultView() *View {
	return w.defaultView
}

// View returns the view mapped to result, or the default view.
func (w *WindowConfig) View(result string) *View {
	if v, ok := w.views[result]; ok {
		return v
	}
	return w.defaultView
}

// Results returns the sorted result names with a view.
func (w *WindowConfig) Results() []string {
	return sortedKeys(w.views)
}

// Controller finds the controller for action on the window, then its page,
// then the app.
func (w *WindowConfig) Controller(action string) (Controller, bool) {
	if c, ok := w.controllers[action]; ok {
		return c, true
	}
	if w.page == nil {
		return nil, false
	}
	if c, ok := w.page.controllers[action]; ok {
		return c, true
	}
	if w.page.app == nil {
		return nil, false
	}
	c, ok := w.page.app.controllers[action]
	return c, ok
}

// Layers returns the model layers from app to window.
func (w *WindowConfig) Layers() []*model.Configuration {
	var layers []*model.Configuration
	if w.page != nil {
		if w.page.app != nil {
			layers = append(layers, w.page.app.layer())
		}
		layers = append(layers, w.page.layer())
	}
	return append(layers, w.layer())
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
